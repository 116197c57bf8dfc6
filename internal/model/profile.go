package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Profile is an account row of the profiles table.
type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	AvatarURL *string   `db:"avatar_url" json:"-"` // object path or absolute URL
	Email     *string   `db:"email" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProfileSummary is the author/actor shape embedded in other responses.
type ProfileSummary struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Username   string    `db:"username" json:"username"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	AvatarPath *string   `db:"avatar_url" json:"-"`

	AvatarURL   string `json:"avatar_url,omitempty"`
	IsFollowing bool   `json:"is_following"`
}

// ProfileResponse is returned by GET /profiles/{id}.
type ProfileResponse struct {
	ProfileSummary
	FollowerCount  int           `json:"follower_count"`
	FollowingCount int           `json:"following_count"`
	Stats          *WorkoutStats `json:"stats,omitempty"`
}

// UpdateProfileRequest carries settings edits. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Username   *string `json:"username"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	AvatarPath *string `json:"avatar_path"`
}

// SignupCheckRequest is validated before the app calls the hosted auth service.
type SignupCheckRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

const (
	MinUsernameLength  = 3
	MaxUsernameLength  = 30
	MinPasswordLength  = 6
	ProfileSearchLimit = 25
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameInvalid  = errors.New("username must be 3-30 characters")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNameRequired     = errors.New("first and last name are required")
	ErrEmptySearchQuery = errors.New("search query is required")
)
