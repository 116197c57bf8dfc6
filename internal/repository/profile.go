package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"peerform/internal/model"
)

// profileRepository implements ProfileRepository using sqlx
type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// GetByID retrieves a profile by its ID
func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT id, username, first_name, last_name, avatar_url, email, created_at
		FROM profiles
		WHERE id = $1
	`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return &p, nil
}

func (r *profileRepository) GetSummaries(ctx context.Context, ids []uuid.UUID) ([]model.ProfileSummary, error) {
	if len(ids) == 0 {
		return []model.ProfileSummary{}, nil
	}

	query := `
		SELECT id, username, first_name, last_name, avatar_url
		FROM profiles
		WHERE id = ANY($1)
	`
	var rows []model.ProfileSummary
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get profile summaries: %w", err)
	}

	// Re-order to match input order
	byID := make(map[uuid.UUID]model.ProfileSummary, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	ordered := make([]model.ProfileSummary, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// Search matches handles case-insensitively by prefix.
func (r *profileRepository) Search(ctx context.Context, query string, excludeID *uuid.UUID, limit int) ([]model.ProfileSummary, error) {
	searchQuery := `
		SELECT id, username, first_name, last_name, avatar_url
		FROM profiles
		WHERE username ILIKE $1 AND ($2::uuid IS NULL OR id <> $2)
		ORDER BY username
		LIMIT $3
	`

	var users []model.ProfileSummary
	err := r.db.SelectContext(ctx, &users, searchQuery, escapeLike(query)+"%", excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	return users, nil
}

// ExistsByUsername checks if a username is taken by an account other than excludeID
func (r *profileRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE lower(username) = lower($1) AND ($2::uuid IS NULL OR id <> $2))`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

func (r *profileRepository) Update(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.Profile, error) {
	query := `
		UPDATE profiles SET
			username   = COALESCE($2, username),
			first_name = COALESCE($3, first_name),
			last_name  = COALESCE($4, last_name),
			avatar_url = COALESCE($5, avatar_url)
		WHERE id = $1
		RETURNING id, username, first_name, last_name, avatar_url, email, created_at
	`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, id, req.Username, req.FirstName, req.LastName, req.AvatarPath)
	if err == sql.ErrNoRows {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &p, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
