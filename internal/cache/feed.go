package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"peerform/internal/model"
)

const (
	// FeedCachePrefix is the key prefix for cached feed results
	FeedCachePrefix = "feed:result:"

	// FeedEpochKey holds the counter that versions every cached feed.
	// Bumping it makes all previously written results unreachable.
	FeedEpochKey = "feed:epoch"

	// DefaultFeedCacheTTL applies when the caller passes a zero TTL
	DefaultFeedCacheTTL = 30 * time.Second
)

// FeedKey identifies one cached feed result.
type FeedKey struct {
	Epoch    int64
	Kind     model.PostKind
	GroupID  *uuid.UUID
	AuthorID *uuid.UUID
	Limit    int
	Viewer   *uuid.UUID
}

func (k FeedKey) String() string {
	return fmt.Sprintf("%sv%d:%s:%s:%s:%d:%s",
		FeedCachePrefix, k.Epoch, k.Kind, idOrDash(k.GroupID), idOrDash(k.AuthorID), k.Limit, idOrDash(k.Viewer))
}

func idOrDash(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

// FeedCache stores hydrated feed results for a short time.
type FeedCache interface {
	// Epoch returns the current cache version. Keys built from an older
	// epoch are never read again.
	Epoch(ctx context.Context) (int64, error)

	// Get returns the cached posts for key. found=false on a miss.
	Get(ctx context.Context, key FeedKey) (posts []model.FeedPost, found bool, err error)

	// Set stores posts under key with the cache TTL.
	Set(ctx context.Context, key FeedKey, posts []model.FeedPost) error

	// Invalidate drops every cached feed by bumping the epoch.
	Invalidate(ctx context.Context) error
}

// RedisFeedCache implements FeedCache using Redis string keys with TTL.
type RedisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFeedCache creates a new FeedCache backed by Redis.
func NewFeedCache(client *redis.Client, ttl time.Duration) FeedCache {
	if ttl <= 0 {
		ttl = DefaultFeedCacheTTL
	}
	return &RedisFeedCache{client: client, ttl: ttl}
}

func (c *RedisFeedCache) Epoch(ctx context.Context) (int64, error) {
	epoch, err := c.client.Get(ctx, FeedEpochKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		log.Printf("[FeedCache] Epoch FAILED: err=%v", err)
		return 0, fmt.Errorf("get feed epoch: %w", err)
	}
	return epoch, nil
}

func (c *RedisFeedCache) Get(ctx context.Context, key FeedKey) ([]model.FeedPost, bool, error) {
	startTime := time.Now()

	raw, err := c.client.Get(ctx, key.String()).Bytes()
	if err == redis.Nil {
		log.Printf("[FeedCache] Get: key=%s MISS", key)
		return nil, false, nil
	}
	if err != nil {
		log.Printf("[FeedCache] Get FAILED: key=%s err=%v", key, err)
		return nil, false, fmt.Errorf("get cached feed: %w", err)
	}

	var posts []model.FeedPost
	if err := json.Unmarshal(raw, &posts); err != nil {
		log.Printf("[FeedCache] Get decode FAILED: key=%s err=%v", key, err)
		return nil, false, fmt.Errorf("decode cached feed: %w", err)
	}

	log.Printf("[FeedCache] Get OK: key=%s posts=%d duration=%v", key, len(posts), time.Since(startTime))
	return posts, true, nil
}

func (c *RedisFeedCache) Set(ctx context.Context, key FeedKey, posts []model.FeedPost) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}

	if err := c.client.Set(ctx, key.String(), raw, c.ttl).Err(); err != nil {
		log.Printf("[FeedCache] Set FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("set cached feed: %w", err)
	}

	log.Printf("[FeedCache] Set OK: key=%s posts=%d ttl=%v", key, len(posts), c.ttl)
	return nil
}

func (c *RedisFeedCache) Invalidate(ctx context.Context) error {
	epoch, err := c.client.Incr(ctx, FeedEpochKey).Result()
	if err != nil {
		log.Printf("[FeedCache] Invalidate FAILED: err=%v", err)
		return fmt.Errorf("bump feed epoch: %w", err)
	}
	log.Printf("[FeedCache] Invalidate OK: epoch=%d", epoch)
	return nil
}

// NopFeedCache never stores anything. Used when Redis is not configured.
type NopFeedCache struct{}

func (NopFeedCache) Epoch(context.Context) (int64, error) { return 0, nil }

func (NopFeedCache) Get(context.Context, FeedKey) ([]model.FeedPost, bool, error) {
	return nil, false, nil
}

func (NopFeedCache) Set(context.Context, FeedKey, []model.FeedPost) error { return nil }

func (NopFeedCache) Invalidate(context.Context) error { return nil }
