package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"peerform/internal/cache"
	"peerform/internal/observability"
	"peerform/internal/queue"
)

// Notifier turns an engagement event into a stored notification and push.
type Notifier interface {
	NotifyEngagement(ctx context.Context, event queue.EngagementEvent) error
}

// Handler processes engagement events from the queue.
type Handler struct {
	notifier  Notifier
	feedCache cache.FeedCache
}

func NewHandler(notifier Notifier, feedCache cache.FeedCache) *Handler {
	if feedCache == nil {
		feedCache = cache.NopFeedCache{}
	}
	return &Handler{notifier: notifier, feedCache: feedCache}
}

// HandleEvent routes an event by type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.EngagementEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostLiked, queue.EventUserFollowed, queue.EventPostCommented:
		err = h.notifier.NotifyEngagement(ctx, event)
	case queue.EventPostCreated:
		err = h.handlePostCreated(ctx, event)
	default:
		err = fmt.Errorf("unknown event type: %s", event.Type)
	}

	observability.RecordEventHandled(event.Type, err)
	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s actor=%s duration=%v err=%v",
			event.Type, event.ActorID, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s actor=%s duration=%v", event.Type, event.ActorID, time.Since(startTime))
	return nil
}

// handlePostCreated drops cached feeds so the new post shows up. Posts
// created through the API already did this; the worker covers clients that
// insert posts straight into the database and publish the event.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.EngagementEvent) error {
	if err := h.feedCache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate feed cache: %w", err)
	}
	return nil
}
