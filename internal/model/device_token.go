package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DeviceToken is a row of user_tokens: one FCM registration per device.
type DeviceToken struct {
	UserID    uuid.UUID `db:"user_id" json:"-"`
	Token     string    `db:"fcm_token" json:"-"`
	Platform  string    `db:"platform" json:"platform"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RegisterTokenRequest is the request body for registering a device token.
type RegisterTokenRequest struct {
	Token    string `json:"fcm_token"`
	Platform string `json:"platform"`
}

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

var (
	ErrTokenRequired = errors.New("fcm token is required")
)
