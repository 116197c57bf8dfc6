package model

import (
	"errors"

	"github.com/google/uuid"
)

// ToggleKind names the binary relationship being toggled.
type ToggleKind string

const (
	ToggleLike   ToggleKind = "like"
	ToggleFollow ToggleKind = "follow"
)

// ToggleRequest carries the caller's last-known state. The service does not
// re-read the store before acting on it.
type ToggleRequest struct {
	Kind         ToggleKind `json:"kind"`
	Actor        uuid.UUID  `json:"-"`
	Target       uuid.UUID  `json:"target"`
	Current      bool       `json:"current"`
	DisplayCount int        `json:"display_count"`
}

// ToggleResult is the state the caller should display afterwards.
type ToggleResult struct {
	State      bool `json:"state"`
	Count      int  `json:"count"`
	Reconciled bool `json:"reconciled"`
}

var (
	ErrInvalidToggleKind = errors.New("invalid toggle kind")
	ErrToggleFailed      = errors.New("toggle failed")
)
