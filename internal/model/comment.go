package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	PostID    uuid.UUID      `db:"post_id" json:"post_id"`
	UserID    uuid.UUID      `db:"user_id" json:"user_id"`
	Content   string         `db:"content" json:"content"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	Author    ProfileSummary `db:"author" json:"author"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

const (
	MaxCommentLength = 2200
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrContentRequired = errors.New("comment content is required")
	ErrContentTooLong  = errors.New("comment content too long")
)
