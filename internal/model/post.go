package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PostKind distinguishes regular workout posts from achievements.
type PostKind string

const (
	PostKindPost        PostKind = "post"
	PostKindAchievement PostKind = "achievement"
)

// Valid reports whether k is one of the two known kinds.
func (k PostKind) Valid() bool {
	return k == PostKindPost || k == PostKindAchievement
}

// Storage buckets used by the app.
const (
	BucketPostImages = "post-images"
	BucketAvatars    = "avatars"
)

// Post is a row of the posts table.
type Post struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	ImagePath string     `db:"image_path" json:"image_path"`
	Caption   *string    `db:"caption" json:"caption"`
	Kind      PostKind   `db:"type" json:"type"`
	GroupID   *uuid.UUID `db:"group_id" json:"group_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`

	// Joined from profiles
	Author ProfileSummary `db:"author" json:"author"`
}

// FeedPost is a post hydrated with the derived, viewer-relative fields.
// The resolved author avatar lives in Author.AvatarURL.
type FeedPost struct {
	Post
	ImageURL     string `json:"image_url"`
	CommentCount int    `json:"comment_count"`
	LikeCount    int    `json:"like_count"`
	IsLiked      bool   `json:"is_liked"`
}

// FeedFilter selects the base rows of a feed.
// Limit 0 means the default for the view: DefaultFeedLimit for the main feed,
// unbounded when GroupID or AuthorID is set.
type FeedFilter struct {
	Kind     PostKind   `json:"kind"`
	GroupID  *uuid.UUID `json:"group_id,omitempty"`
	AuthorID *uuid.UUID `json:"author_id,omitempty"`
	Limit    int        `json:"limit"`
}

// IsMainFeed reports whether the filter targets the global feed rather
// than a group or profile view.
func (f FeedFilter) IsMainFeed() bool {
	return f.GroupID == nil && f.AuthorID == nil
}

// CreatePostRequest is the request body for creating a post.
// The image must already be uploaded to the post-images bucket.
type CreatePostRequest struct {
	Kind      PostKind   `json:"type"`
	ImagePath string     `json:"image_path"`
	Caption   *string    `json:"caption"`
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
}

const (
	DefaultFeedLimit     = 20
	MaxPostCaptionLength = 2200
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrNotPostOwner     = errors.New("not the owner of this post")
	ErrInvalidPostKind  = errors.New("invalid post kind")
	ErrImageRequired    = errors.New("image path is required")
	ErrCaptionTooLong   = errors.New("caption too long")
	ErrInvalidFeedLimit = errors.New("invalid feed limit")
)

var (
	// ErrFeedLoad wraps a failure of the base feed query.
	ErrFeedLoad = errors.New("failed to load feed")
	// ErrSuperseded is returned to a feed load replaced by a newer one.
	ErrSuperseded = errors.New("feed load superseded")
)
