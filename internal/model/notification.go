package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Notification represents a single row of the notifications table.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"-"` // Recipient
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// MarkReadRequest marks the listed notifications read; an empty list marks all.
type MarkReadRequest struct {
	NotificationIDs []uuid.UUID `json:"notification_ids"`
}

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)
