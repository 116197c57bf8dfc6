package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"peerform/internal/cache"
	"peerform/internal/model"
	"peerform/internal/queue"
	"peerform/internal/repository"
	"peerform/internal/storage"
)

type PostService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	urls      storage.URLResolver
	publisher queue.Publisher
	feedCache cache.FeedCache
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	urls storage.URLResolver,
	publisher queue.Publisher,
	feedCache cache.FeedCache,
) *PostService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	if feedCache == nil {
		feedCache = cache.NopFeedCache{}
	}
	return &PostService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		urls:      urls,
		publisher: publisher,
		feedCache: feedCache,
	}
}

// Create stores a post whose image was already uploaded to the post-images
// bucket. Posting into a group requires membership.
func (s *PostService) Create(ctx context.Context, userID uuid.UUID, req model.CreatePostRequest) (*model.FeedPost, error) {
	if req.Kind == "" {
		req.Kind = model.PostKindPost
	}
	if !req.Kind.Valid() {
		return nil, model.ErrInvalidPostKind
	}
	req.ImagePath = strings.TrimSpace(req.ImagePath)
	if req.ImagePath == "" {
		return nil, model.ErrImageRequired
	}
	if req.Caption != nil {
		caption := strings.TrimSpace(*req.Caption)
		if utf8.RuneCountInString(caption) > model.MaxPostCaptionLength {
			return nil, model.ErrCaptionTooLong
		}
		if caption == "" {
			req.Caption = nil
		} else {
			req.Caption = &caption
		}
	}

	if req.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *req.GroupID); err != nil {
			return nil, err
		}
		member, err := s.groupRepo.IsMember(ctx, *req.GroupID, userID)
		if err != nil {
			return nil, fmt.Errorf("check group member: %w", err)
		}
		if !member {
			return nil, model.ErrNotGroupMember
		}
	}

	post, err := s.postRepo.Create(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := s.feedCache.Invalidate(ctx); err != nil {
		log.Printf("[PostService] Cache invalidate failed: %v", err)
	}

	event := queue.NewPostCreatedEvent(userID, post.ID)
	msgID, err := s.publisher.Publish(ctx, queue.StreamEngagement, event)
	if err != nil {
		// Log but don't fail - the post exists either way
		log.Printf("[PostService] Failed to publish PostCreated event: post=%s err=%v", post.ID, err)
	} else {
		log.Printf("[PostService] Published PostCreated: post=%s msgID=%s", post.ID, msgID)
	}

	out := &model.FeedPost{Post: *post}
	if u, err := s.urls.URL(ctx, model.BucketPostImages, post.ImagePath); err == nil {
		out.ImageURL = u
	} else {
		log.Printf("[PostService] Image URL failed: post=%s err=%v", post.ID, err)
	}
	return out, nil
}

// Delete removes a post. Only its author may delete it.
func (s *PostService) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	if err := s.postRepo.Delete(ctx, postID, userID); err != nil {
		return err
	}

	if err := s.feedCache.Invalidate(ctx); err != nil {
		log.Printf("[PostService] Cache invalidate failed: %v", err)
	}

	log.Printf("[PostService] User %s deleted post %s", userID, postID)
	return nil
}
