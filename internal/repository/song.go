package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"peerform/internal/model"
)

type songRepository struct {
	db *sqlx.DB
}

func NewSongRepository(db *sqlx.DB) SongRepository {
	return &songRepository{db: db}
}

func (r *songRepository) Create(ctx context.Context, userID uuid.UUID, req model.AddSongRequest) (*model.Song, error) {
	query := `
		INSERT INTO songs (user_id, title, artist, cover_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, title, artist, cover_url, created_at
	`
	var song model.Song
	if err := r.db.GetContext(ctx, &song, query, userID, req.Title, req.Artist, req.CoverURL); err != nil {
		return nil, fmt.Errorf("insert song: %w", err)
	}
	return &song, nil
}

// ListRecent returns the song feed, newest first, with the sharer joined.
func (r *songRepository) ListRecent(ctx context.Context, limit int) ([]model.Song, error) {
	query := `
		SELECT s.id, s.user_id, s.title, s.artist, s.cover_url, s.created_at,
		       u.id as "author.id", u.username as "author.username",
		       u.first_name as "author.first_name", u.last_name as "author.last_name",
		       u.avatar_url as "author.avatar_url"
		FROM songs s
		JOIN profiles u ON u.id = s.user_id
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $1
	`
	songs := []model.Song{}
	if err := r.db.SelectContext(ctx, &songs, query, limit); err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return songs, nil
}
