package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"peerform/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `
	p.id, p.user_id, p.image_path, p.caption, p.type, p.group_id, p.created_at,
	u.id as "author.id", u.username as "author.username",
	u.first_name as "author.first_name", u.last_name as "author.last_name",
	u.avatar_url as "author.avatar_url"
`

// Create inserts a new post.
func (r *postRepository) Create(ctx context.Context, userID uuid.UUID, req model.CreatePostRequest) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, image_path, caption, type, group_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, image_path, caption, type, group_id, created_at
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, userID, req.ImagePath, req.Caption, req.Kind, req.GroupID)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return &post, nil
}

// GetByID retrieves a single post with its author.
func (r *postRepository) GetByID(ctx context.Context, postID uuid.UUID) (*model.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		JOIN profiles u ON u.id = p.user_id
		WHERE p.id = $1
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// Delete removes a post owned by userID. Likes and comments cascade.
func (r *postRepository) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		// Check if post exists but belongs to different user
		exists, err := r.Exists(ctx, postID)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrNotPostOwner
		}
		return model.ErrPostNotFound
	}
	return nil
}

// List returns the base rows of a feed, newest first with id as tie-break.
func (r *postRepository) List(ctx context.Context, filter model.FeedFilter) ([]model.Post, error) {
	conds := []string{"p.type = $1"}
	args := []interface{}{filter.Kind}

	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		conds = append(conds, fmt.Sprintf("p.group_id = $%d", len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		conds = append(conds, fmt.Sprintf("p.user_id = $%d", len(args)))
	}

	query := `SELECT ` + postColumns + `
		FROM posts p
		JOIN profiles u ON u.id = p.user_id
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY p.created_at DESC, p.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// GetAuthorID returns the author of a post (for event publishing).
func (r *postRepository) GetAuthorID(ctx context.Context, postID uuid.UUID) (uuid.UUID, error) {
	var authorID uuid.UUID
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = $1`, postID)
	if err == sql.ErrNoRows {
		return uuid.Nil, model.ErrPostNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("get author id: %w", err)
	}
	return authorID, nil
}

func (r *postRepository) CountComments(ctx context.Context, postID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

func (r *postRepository) CountLikes(ctx context.Context, postID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}
