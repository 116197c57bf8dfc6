package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"peerform/internal/model"
)

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) GroupRepository {
	return &groupRepository{db: db}
}

const groupColumns = `g.id, g.name, g.goal, g.description, g.owner_id, g.is_private, g.created_at`

func (r *groupRepository) Create(ctx context.Context, ownerID uuid.UUID, req model.CreateGroupRequest) (*model.Group, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var group model.Group
	err = tx.GetContext(ctx, &group, `
		INSERT INTO groups (name, goal, description, owner_id, is_private)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, goal, description, owner_id, is_private, created_at
	`, req.Name, req.Goal, req.Description, ownerID, req.IsPrivate)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)
	`, group.ID, ownerID, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &group, nil
}

func (r *groupRepository) GetByID(ctx context.Context, groupID uuid.UUID) (*model.Group, error) {
	var group model.Group
	err := r.db.GetContext(ctx, &group, `SELECT `+groupColumns+` FROM groups g WHERE g.id = $1`, groupID)
	if err == sql.ErrNoRows {
		return nil, model.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &group, nil
}

// ListByMember returns the groups userID belongs to, newest first.
func (r *groupRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]model.Group, error) {
	query := `SELECT ` + groupColumns + `
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at DESC
	`
	groups := []model.Group{}
	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, fmt.Errorf("list groups by member: %w", err)
	}
	return groups, nil
}

// SearchPublic matches public group names case-insensitively.
func (r *groupRepository) SearchPublic(ctx context.Context, query string, limit int) ([]model.Group, error) {
	q := `SELECT ` + groupColumns + `
		FROM groups g
		WHERE g.is_private = false AND g.name ILIKE $1
		ORDER BY g.name
		LIMIT $2
	`
	groups := []model.Group{}
	if err := r.db.SelectContext(ctx, &groups, q, "%"+escapeLike(query)+"%", limit); err != nil {
		return nil, fmt.Errorf("search groups: %w", err)
	}
	return groups, nil
}

// AddMember reports false when the account was already a member.
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID, role string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID, role)
	if err != nil {
		return false, fmt.Errorf("insert group member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("delete group member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("check group member: %w", err)
	}
	return exists, nil
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.GroupMember, error) {
	query := `
		SELECT m.group_id, m.user_id, m.role,
		       u.id as "profile.id", u.username as "profile.username",
		       u.first_name as "profile.first_name", u.last_name as "profile.last_name",
		       u.avatar_url as "profile.avatar_url"
		FROM group_members m
		JOIN profiles u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.role, u.username
	`
	members := []model.GroupMember{}
	if err := r.db.SelectContext(ctx, &members, query, groupID); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return members, nil
}

func (r *groupRepository) GetMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM group_members WHERE group_id = $1`, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group member ids: %w", err)
	}
	return ids, nil
}
