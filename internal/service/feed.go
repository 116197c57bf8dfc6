package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"peerform/internal/cache"
	"peerform/internal/model"
	"peerform/internal/observability"
	"peerform/internal/repository"
	"peerform/internal/storage"
	"peerform/internal/supersede"
)

const (
	// DefaultRequestTimeout bounds every remote call made while building a feed
	DefaultRequestTimeout = 12 * time.Second

	// DefaultFeedFanout is the number of enrichment calls in flight per load
	DefaultFeedFanout = 16
)

// FeedRequest is a feed load as issued by the HTTP layer.
type FeedRequest struct {
	Filter  model.FeedFilter
	Viewer  *uuid.UUID
	Refresh bool   // skip the cache read
	Scope   string // loads sharing a scope supersede each other; empty disables
}

type FeedService struct {
	postRepo  repository.PostRepository
	likeRepo  repository.LikeRepository
	urls      storage.URLResolver
	feedCache cache.FeedCache
	tracker   *supersede.Tracker
	timeout   time.Duration
	fanout    int
}

func NewFeedService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	urls storage.URLResolver,
	feedCache cache.FeedCache,
	tracker *supersede.Tracker,
	timeout time.Duration,
	fanout int,
) *FeedService {
	if feedCache == nil {
		feedCache = cache.NopFeedCache{}
	}
	if tracker == nil {
		tracker = supersede.NewTracker()
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if fanout <= 0 {
		fanout = DefaultFeedFanout
	}
	return &FeedService{
		postRepo:  postRepo,
		likeRepo:  likeRepo,
		urls:      urls,
		feedCache: feedCache,
		tracker:   tracker,
		timeout:   timeout,
		fanout:    fanout,
	}
}

// normalizeFilter validates filter and resolves the default limit.
func normalizeFilter(filter model.FeedFilter) (model.FeedFilter, error) {
	if filter.Kind == "" {
		filter.Kind = model.PostKindPost
	}
	if !filter.Kind.Valid() {
		return filter, model.ErrInvalidPostKind
	}
	if filter.Limit < 0 {
		return filter, model.ErrInvalidFeedLimit
	}
	if filter.Limit == 0 && filter.IsMainFeed() {
		filter.Limit = model.DefaultFeedLimit
	}
	return filter, nil
}

// GetFeed serves a feed through the result cache, cancelling any older load
// in the same scope.
func (s *FeedService) GetFeed(ctx context.Context, req FeedRequest) ([]model.FeedPost, error) {
	startTime := time.Now()

	filter, err := normalizeFilter(req.Filter)
	if err != nil {
		return nil, err
	}

	var ticket *supersede.Ticket
	if req.Scope != "" {
		ticket = s.tracker.Begin(ctx, req.Scope)
		defer ticket.Done()
		ctx = ticket.Context()
	}

	// Epoch is captured before loading so a result computed across an
	// invalidation is written under the stale epoch and never served.
	key := cache.FeedKey{Kind: filter.Kind, GroupID: filter.GroupID, AuthorID: filter.AuthorID, Limit: filter.Limit, Viewer: req.Viewer}
	epoch, epochErr := s.feedCache.Epoch(ctx)
	if epochErr != nil {
		log.Printf("[FeedService] Cache epoch failed, bypassing cache: %v", epochErr)
		observability.RecordCacheLookup("error")
	}
	key.Epoch = epoch

	if epochErr == nil && !req.Refresh {
		posts, found, err := s.feedCache.Get(ctx, key)
		switch {
		case err != nil:
			log.Printf("[FeedService] Cache read failed: key=%s err=%v", key, err)
			observability.RecordCacheLookup("error")
		case found:
			observability.RecordCacheLookup("hit")
			observability.ObserveFeedLoad(string(filter.Kind), "cache_hit", startTime)
			return posts, nil
		default:
			observability.RecordCacheLookup("miss")
		}
	}

	posts, degraded, err := s.loadFeed(ctx, filter, req.Viewer)
	if ticket != nil && ticket.Superseded() {
		log.Printf("[FeedService] GetFeed superseded: scope=%s", req.Scope)
		observability.ObserveFeedLoad(string(filter.Kind), "superseded", startTime)
		return nil, model.ErrSuperseded
	}
	if err != nil {
		observability.ObserveFeedLoad(string(filter.Kind), "error", startTime)
		return nil, err
	}

	// A degraded result is served once but never cached
	if epochErr == nil && !degraded {
		if err := s.feedCache.Set(ctx, key, posts); err != nil {
			log.Printf("[FeedService] Cache write failed: key=%s err=%v", key, err)
		}
	}

	observability.ObserveFeedLoad(string(filter.Kind), "ok", startTime)
	return posts, nil
}

// LoadFeed fetches the base rows for filter and hydrates each one.
//
// Enrichment calls run concurrently, bounded by the fan-out width. Each call
// writes only its own field of its own row, so the result keeps the base
// query order. A failed enrichment leaves that field at its zero value.
func (s *FeedService) LoadFeed(ctx context.Context, filter model.FeedFilter, viewer *uuid.UUID) ([]model.FeedPost, error) {
	posts, _, err := s.loadFeed(ctx, filter, viewer)
	return posts, err
}

// loadFeed is LoadFeed that also reports whether any enrichment failed.
func (s *FeedService) loadFeed(ctx context.Context, filter model.FeedFilter, viewer *uuid.UUID) ([]model.FeedPost, bool, error) {
	startTime := time.Now()

	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, false, err
	}

	baseCtx, cancel := context.WithTimeout(ctx, s.timeout)
	rows, err := s.postRepo.List(baseCtx, filter)
	cancel()
	if err != nil {
		log.Printf("[FeedService] LoadFeed FAILED: kind=%s err=%v", filter.Kind, err)
		return nil, false, fmt.Errorf("%w: %w", model.ErrFeedLoad, err)
	}

	var degraded atomic.Bool
	out := make([]model.FeedPost, len(rows))
	for i := range rows {
		out[i].Post = rows[i]
	}

	var g errgroup.Group
	g.SetLimit(s.fanout)

	for i := range out {
		p := &out[i]
		postID := p.ID

		s.enrich(ctx, &g, &degraded, postID, "comment_count", func(ctx context.Context) error {
			n, err := s.postRepo.CountComments(ctx, postID)
			if err != nil {
				return err
			}
			p.CommentCount = n
			return nil
		})
		s.enrich(ctx, &g, &degraded, postID, "like_count", func(ctx context.Context) error {
			n, err := s.postRepo.CountLikes(ctx, postID)
			if err != nil {
				return err
			}
			p.LikeCount = n
			return nil
		})
		if viewer != nil {
			viewerID := *viewer
			s.enrich(ctx, &g, &degraded, postID, "is_liked", func(ctx context.Context) error {
				liked, err := s.likeRepo.Exists(ctx, viewerID, postID)
				if err != nil {
					return err
				}
				p.IsLiked = liked
				return nil
			})
		}
		s.enrich(ctx, &g, &degraded, postID, "image_url", func(ctx context.Context) error {
			u, err := s.urls.URL(ctx, model.BucketPostImages, p.ImagePath)
			if err != nil {
				return err
			}
			p.ImageURL = u
			return nil
		})
		if avatar := p.Author.AvatarPath; avatar != nil && *avatar != "" {
			path := *avatar
			s.enrich(ctx, &g, &degraded, postID, "avatar_url", func(ctx context.Context) error {
				u, err := s.urls.URL(ctx, model.BucketAvatars, path)
				if err != nil {
					return err
				}
				p.Author.AvatarURL = u
				return nil
			})
		}
	}

	// Branches never return errors
	_ = g.Wait()

	log.Printf("[FeedService] LoadFeed OK: kind=%s posts=%d degraded=%t duration=%v",
		filter.Kind, len(out), degraded.Load(), time.Since(startTime))
	return out, degraded.Load(), nil
}

// enrich schedules fn with its own timeout. fn assigns its field only on
// success, so a failure leaves the zero value in place.
func (s *FeedService) enrich(ctx context.Context, g *errgroup.Group, degraded *atomic.Bool, postID uuid.UUID, field string, fn func(context.Context) error) {
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if err := fn(callCtx); err != nil {
			if !errors.Is(ctx.Err(), context.Canceled) {
				log.Printf("[FeedService] Enrich FAILED: post=%s field=%s err=%v", postID, field, err)
			}
			observability.RecordEnrichmentFailure(field)
			degraded.Store(true)
		}
		return nil
	})
}
