package queue_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"peerform/internal/queue"
)

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}
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

func TestParseEngagementEventRejectsMissingData(t *testing.T) {
	if _, err := queue.ParseEngagementEvent(map[string]interface{}{"type": "post_liked"}); err == nil {
		t.Error("expected error for missing data field")
	}
	if _, err := queue.ParseEngagementEvent(map[string]interface{}{"data": "{not json"}); err == nil {
		t.Error("expected error for malformed json")
	}
}

func TestCommentEventPreviewIsTruncated(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "a"
	}
	e := queue.NewPostCommentedEvent(uuid.New(), uuid.New(), uuid.New(), uuid.New(), long)
	if n := len([]rune(e.Preview)); n != 80 {
		t.Errorf("preview length: got %d, want 80", n)
	}

	short := queue.NewPostCommentedEvent(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "nice lift")
	if short.Preview != "nice lift" {
		t.Errorf("preview: got %q", short.Preview)
	}
}

func TestPublishConsumeAck(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	pub := queue.NewPublisher(client)
	con := queue.NewConsumer(client)

	if err := con.EnsureGroup(ctx, queue.StreamEngagement, queue.ConsumerGroupEngagement); err != nil {
		t.Fatalf("EnsureGroup failed: %v", err)
	}
	// Second call hits BUSYGROUP and must still succeed
	if err := con.EnsureGroup(ctx, queue.StreamEngagement, queue.ConsumerGroupEngagement); err != nil {
		t.Fatalf("EnsureGroup (existing) failed: %v", err)
	}

	actor, author, post := uuid.New(), uuid.New(), uuid.New()
	if _, err := pub.Publish(ctx, queue.StreamEngagement, queue.NewPostLikedEvent(actor, author, post)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// A malformed entry is acked and skipped
	client.XAdd(ctx, &redis.XAddArgs{Stream: queue.StreamEngagement, Values: map[string]interface{}{"type": "junk"}})

	msgs, err := con.Read(ctx, queue.StreamEngagement, queue.ConsumerGroupEngagement, "test-1", 10, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("messages: got %d, want 1", len(msgs))
	}
	ev := msgs[0].Event
	if ev.Type != queue.EventPostLiked || ev.ActorID != actor || ev.RecipientID != author || ev.PostID == nil || *ev.PostID != post {
		t.Errorf("unexpected event: %+v", ev)
	}

	pending, _ := con.Pending(ctx, queue.StreamEngagement, queue.ConsumerGroupEngagement)
	if pending != 1 {
		t.Errorf("pending before ack: got %d, want 1", pending)
	}

	again, err := con.ReadPending(ctx, queue.StreamEngagement, queue.ConsumerGroupEngagement, "test-1", 10)
	if err != nil || len(again) != 1 {
		t.Fatalf("ReadPending: got %d msgs err=%v", len(again), err)
	}

	if err := con.Ack(ctx, queue.StreamEngagement, queue.ConsumerGroupEngagement, msgs[0].ID); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}
	pending, _ = con.Pending(ctx, queue.StreamEngagement, queue.ConsumerGroupEngagement)
	if pending != 0 {
		t.Errorf("pending after ack: got %d, want 0", pending)
	}
}
