package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"peerform/internal/cache"
	"peerform/internal/model"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func samplePosts() []model.FeedPost {
	return []model.FeedPost{
		{Post: model.Post{ID: uuid.New(), Kind: model.PostKindPost, ImagePath: "a.jpg"}, LikeCount: 3, IsLiked: true},
		{Post: model.Post{ID: uuid.New(), Kind: model.PostKindPost, ImagePath: "b.jpg"}, CommentCount: 1},
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestFeedKeyDistinguishesViews(t *testing.T) {
	viewer := uuid.New()
	group := uuid.New()

	mainFeed := cache.FeedKey{Kind: model.PostKindPost, Limit: 20, Viewer: &viewer}
	grouped := cache.FeedKey{Kind: model.PostKindPost, Limit: 20, Viewer: &viewer, GroupID: &group}
	anon := cache.FeedKey{Kind: model.PostKindPost, Limit: 20}
	nextEpoch := mainFeed
	nextEpoch.Epoch = 1

	keys := map[string]bool{}
	for _, k := range []cache.FeedKey{mainFeed, grouped, anon, nextEpoch} {
		keys[k.String()] = true
	}
	if len(keys) != 4 {
		t.Errorf("expected 4 distinct keys, got %d: %v", len(keys), keys)
	}
}

func TestFeedCacheRoundTripAndInvalidate(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	feedCache := cache.NewFeedCache(client, time.Minute)

	epoch, err := feedCache.Epoch(ctx)
	if err != nil {
		t.Fatalf("Epoch failed: %v", err)
	}
	key := cache.FeedKey{Epoch: epoch, Kind: model.PostKindPost, Limit: 20}

	if _, found, _ := feedCache.Get(ctx, key); found {
		t.Fatal("expected miss on empty cache")
	}

	posts := samplePosts()
	if err := feedCache.Set(ctx, key, posts); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found, err := feedCache.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if len(got) != 2 || got[0].ID != posts[0].ID || got[1].ID != posts[1].ID {
		t.Errorf("cached order changed: %+v", got)
	}
	if !got[0].IsLiked || got[0].LikeCount != 3 {
		t.Errorf("derived fields lost: %+v", got[0])
	}

	if err := feedCache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	newEpoch, _ := feedCache.Epoch(ctx)
	if newEpoch != epoch+1 {
		t.Errorf("epoch: got %d, want %d", newEpoch, epoch+1)
	}

	key.Epoch = newEpoch
	if _, found, _ := feedCache.Get(ctx, key); found {
		t.Error("expected miss after invalidation")
	}
}

func TestFeedCacheExpires(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	feedCache := cache.NewFeedCache(client, time.Second)

	key := cache.FeedKey{Kind: model.PostKindAchievement}
	if err := feedCache.Set(ctx, key, samplePosts()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	ttl := client.TTL(ctx, key.String()).Val()
	if ttl <= 0 || ttl > time.Second {
		t.Errorf("ttl: got %v, want (0, 1s]", ttl)
	}
}

func TestNopFeedCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c cache.FeedCache = cache.NopFeedCache{}

	if err := c.Set(ctx, cache.FeedKey{}, samplePosts()); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found, _ := c.Get(ctx, cache.FeedKey{}); found {
		t.Error("NopFeedCache should never hit")
	}
}
