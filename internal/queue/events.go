package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types for the engagement stream
const (
	EventPostLiked     = "post_liked"
	EventUserFollowed  = "user_followed"
	EventPostCommented = "post_commented"
	EventPostCreated   = "post_created"
)

// Stream names
const (
	StreamEngagement = "stream:engagement"
)

// Consumer group name for engagement workers
const (
	ConsumerGroupEngagement = "engagement_workers"
)

// EngagementEvent is published after a like, follow, comment or post
// succeeds. All event types share this structure.
type EngagementEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix seconds

	ActorID     uuid.UUID `json:"actor_id"`
	RecipientID uuid.UUID `json:"recipient_id,omitempty"` // zero for post_created

	PostID    *uuid.UUID `json:"post_id,omitempty"`
	CommentID *uuid.UUID `json:"comment_id,omitempty"`
	Preview   string     `json:"preview,omitempty"` // comment text excerpt
}

// NewPostLikedEvent is published when actor likes a post owned by author.
func NewPostLikedEvent(actorID, authorID, postID uuid.UUID) EngagementEvent {
	return EngagementEvent{
		Type:        EventPostLiked,
		Timestamp:   time.Now().Unix(),
		ActorID:     actorID,
		RecipientID: authorID,
		PostID:      &postID,
	}
}

// NewUserFollowedEvent is published when follower starts following followee.
func NewUserFollowedEvent(followerID, followeeID uuid.UUID) EngagementEvent {
	return EngagementEvent{
		Type:        EventUserFollowed,
		Timestamp:   time.Now().Unix(),
		ActorID:     followerID,
		RecipientID: followeeID,
	}
}

// NewPostCommentedEvent is published when actor comments on author's post.
func NewPostCommentedEvent(actorID, authorID, postID, commentID uuid.UUID, content string) EngagementEvent {
	return EngagementEvent{
		Type:        EventPostCommented,
		Timestamp:   time.Now().Unix(),
		ActorID:     actorID,
		RecipientID: authorID,
		PostID:      &postID,
		CommentID:   &commentID,
		Preview:     excerpt(content, 80),
	}
}

// NewPostCreatedEvent is published when author creates a post.
func NewPostCreatedEvent(authorID, postID uuid.UUID) EngagementEvent {
	return EngagementEvent{
		Type:      EventPostCreated,
		Timestamp: time.Now().Unix(),
		ActorID:   authorID,
		PostID:    &postID,
	}
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e EngagementEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEngagementEvent parses an event from Redis stream message values.
func ParseEngagementEvent(values map[string]interface{}) (EngagementEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return EngagementEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event EngagementEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return EngagementEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
