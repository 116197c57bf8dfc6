package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Goal        string    `db:"goal" json:"goal"`
	Description *string   `db:"description" json:"description"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	IsPrivate   bool      `db:"is_private" json:"is_private"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Member roles. Plain members have RoleMember.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type GroupMember struct {
	GroupID uuid.UUID      `db:"group_id" json:"group_id"`
	UserID  uuid.UUID      `db:"user_id" json:"user_id"`
	Role    string         `db:"role" json:"role"`
	Profile ProfileSummary `db:"profile" json:"profile"`
}

type CreateGroupRequest struct {
	Name        string  `json:"name"`
	Goal        string  `json:"goal"`
	Description *string `json:"description"`
	IsPrivate   bool    `json:"is_private"`
}

const (
	GroupSearchLimit   = 20
	MaxGroupNameLength = 60
)

var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrGroupNameRequired = errors.New("group name is required")
	ErrGroupNameTooLong  = errors.New("group name too long")
	ErrGroupGoalRequired = errors.New("group goal is required")
	ErrGroupPrivate      = errors.New("group is private")
	ErrNotGroupMember    = errors.New("not a member of this group")
	ErrOwnerCannotLeave  = errors.New("group owner cannot leave")
)
