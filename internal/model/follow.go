package model

import "errors"

type FollowListResponse struct {
	Users []ProfileSummary `json:"users"`
}

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
