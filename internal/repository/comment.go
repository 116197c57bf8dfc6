package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"peerform/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment and returns it with the author joined.
func (r *commentRepository) Create(ctx context.Context, postID, userID uuid.UUID, content string) (*model.Comment, error) {
	query := `
		WITH c AS (
			INSERT INTO comments (post_id, user_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, post_id, user_id, content, created_at
		)
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
		       u.id as "author.id", u.username as "author.username",
		       u.first_name as "author.first_name", u.last_name as "author.last_name",
		       u.avatar_url as "author.avatar_url"
		FROM c
		JOIN profiles u ON u.id = c.user_id
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, postID, userID, content)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// Delete removes a comment. Only the comment owner can delete.
func (r *commentRepository) Delete(ctx context.Context, commentID, userID uuid.UUID) (uuid.UUID, error) {
	var comment struct {
		PostID uuid.UUID `db:"post_id"`
		UserID uuid.UUID `db:"user_id"`
	}
	err := r.db.GetContext(ctx, &comment, `SELECT post_id, user_id FROM comments WHERE id = $1`, commentID)
	if err == sql.ErrNoRows {
		return uuid.Nil, model.ErrCommentNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("get comment: %w", err)
	}

	if comment.UserID != userID {
		return uuid.Nil, model.ErrNotCommentOwner
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("delete comment: %w", err)
	}

	return comment.PostID, nil
}

// ListByPost returns every comment on a post, oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
		       u.id as "author.id", u.username as "author.username",
		       u.first_name as "author.first_name", u.last_name as "author.last_name",
		       u.avatar_url as "author.avatar_url"
		FROM comments c
		JOIN profiles u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`
	comments := []model.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	return comments, nil
}
