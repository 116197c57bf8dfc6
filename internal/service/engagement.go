package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"peerform/internal/cache"
	"peerform/internal/model"
	"peerform/internal/observability"
	"peerform/internal/queue"
	"peerform/internal/repository"
)

// EngagementService toggles likes and follows.
//
// The caller sends the state it is currently displaying. The service acts on
// that state without re-reading the store: a displayed "liked" deletes the
// like, anything else inserts it. Inserting a row that already exists and
// deleting one that is already gone both count as success, so repeating a
// toggle converges on the requested state.
type EngagementService struct {
	likeRepo   repository.LikeRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
	publisher  queue.Publisher
	feedCache  cache.FeedCache
	timeout    time.Duration
}

func NewEngagementService(
	likeRepo repository.LikeRepository,
	followRepo repository.FollowRepository,
	postRepo repository.PostRepository,
	publisher queue.Publisher,
	feedCache cache.FeedCache,
	timeout time.Duration,
) *EngagementService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	if feedCache == nil {
		feedCache = cache.NopFeedCache{}
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &EngagementService{
		likeRepo:   likeRepo,
		followRepo: followRepo,
		postRepo:   postRepo,
		publisher:  publisher,
		feedCache:  feedCache,
		timeout:    timeout,
	}
}

// Toggle flips the relationship from req.Current and moves the display count
// by one in the same direction.
//
// When the store call fails, the real state is read back and returned with
// Reconciled set, together with an error wrapping ErrToggleFailed. If that
// read also fails the caller's original state and count are returned.
func (s *EngagementService) Toggle(ctx context.Context, req model.ToggleRequest) (model.ToggleResult, error) {
	startTime := time.Now()
	original := model.ToggleResult{State: req.Current, Count: req.DisplayCount}

	switch req.Kind {
	case model.ToggleLike, model.ToggleFollow:
	default:
		return original, model.ErrInvalidToggleKind
	}
	if req.Kind == model.ToggleFollow && req.Actor == req.Target {
		observability.RecordToggle(string(req.Kind), "rejected")
		return original, model.ErrCannotFollowSelf
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	changed, err := s.apply(callCtx, req)
	cancel()

	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) || errors.Is(err, model.ErrProfileNotFound) {
			observability.RecordToggle(string(req.Kind), "rejected")
			return original, err
		}
		log.Printf("[EngagementService] Toggle FAILED: kind=%s actor=%s target=%s current=%t err=%v",
			req.Kind, req.Actor, req.Target, req.Current, err)
		return s.reconcile(ctx, req, err)
	}

	result := model.ToggleResult{State: !req.Current, Count: moveCount(req.DisplayCount, !req.Current)}

	if changed {
		s.afterChange(ctx, req)
	}

	observability.RecordToggle(string(req.Kind), "ok")
	log.Printf("[EngagementService] Toggle OK: kind=%s actor=%s target=%s state=%t changed=%t duration=%v",
		req.Kind, req.Actor, req.Target, result.State, changed, time.Since(startTime))
	return result, nil
}

// apply performs the insert or delete. changed reports whether a row was
// actually written.
func (s *EngagementService) apply(ctx context.Context, req model.ToggleRequest) (bool, error) {
	switch {
	case req.Kind == model.ToggleLike && req.Current:
		return s.likeRepo.Delete(ctx, req.Actor, req.Target)
	case req.Kind == model.ToggleLike:
		return s.likeRepo.Insert(ctx, req.Actor, req.Target)
	case req.Current:
		return s.followRepo.Delete(ctx, req.Actor, req.Target)
	default:
		return s.followRepo.Insert(ctx, req.Actor, req.Target)
	}
}

func (s *EngagementService) exists(ctx context.Context, req model.ToggleRequest) (bool, error) {
	if req.Kind == model.ToggleLike {
		return s.likeRepo.Exists(ctx, req.Actor, req.Target)
	}
	return s.followRepo.Exists(ctx, req.Actor, req.Target)
}

func (s *EngagementService) reconcile(ctx context.Context, req model.ToggleRequest, cause error) (model.ToggleResult, error) {
	wrapped := fmt.Errorf("%w: %w", model.ErrToggleFailed, cause)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	actual, err := s.exists(callCtx, req)
	if err != nil {
		log.Printf("[EngagementService] Reconcile FAILED, rolling back: kind=%s target=%s err=%v", req.Kind, req.Target, err)
		observability.RecordToggle(string(req.Kind), "rolled_back")
		return model.ToggleResult{State: req.Current, Count: req.DisplayCount}, wrapped
	}

	count := req.DisplayCount
	if actual != req.Current {
		count = moveCount(count, actual)
	}
	observability.RecordToggle(string(req.Kind), "reconciled")
	return model.ToggleResult{State: actual, Count: count, Reconciled: true}, wrapped
}

// afterChange publishes the engagement event and drops cached feeds.
// Failures here are logged; the toggle itself already succeeded.
func (s *EngagementService) afterChange(ctx context.Context, req model.ToggleRequest) {
	if req.Kind == model.ToggleLike {
		if err := s.feedCache.Invalidate(ctx); err != nil {
			log.Printf("[EngagementService] Cache invalidate failed: %v", err)
		}
	}

	// Only new relationships notify anyone
	if req.Current {
		return
	}

	var event queue.EngagementEvent
	if req.Kind == model.ToggleLike {
		authorID, err := s.postRepo.GetAuthorID(ctx, req.Target)
		if err != nil {
			log.Printf("[EngagementService] Author lookup failed: post=%s err=%v", req.Target, err)
			return
		}
		event = queue.NewPostLikedEvent(req.Actor, authorID, req.Target)
	} else {
		event = queue.NewUserFollowedEvent(req.Actor, req.Target)
	}

	if _, err := s.publisher.Publish(ctx, queue.StreamEngagement, event); err != nil {
		log.Printf("[EngagementService] Publish failed: type=%s err=%v", event.Type, err)
	}
}

// moveCount returns count moved one step towards state, never below zero.
func moveCount(count int, state bool) int {
	if state {
		return count + 1
	}
	if count > 0 {
		return count - 1
	}
	return 0
}
