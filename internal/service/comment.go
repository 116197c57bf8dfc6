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

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	urls        storage.URLResolver
	publisher   queue.Publisher
	feedCache   cache.FeedCache
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	urls storage.URLResolver,
	publisher queue.Publisher,
	feedCache cache.FeedCache,
) *CommentService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	if feedCache == nil {
		feedCache = cache.NopFeedCache{}
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		urls:        urls,
		publisher:   publisher,
		feedCache:   feedCache,
	}
}

// List returns a post's comments oldest first.
func (s *CommentService) List(ctx context.Context, postID uuid.UUID) (*model.CommentListResponse, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	for i := range comments {
		comments[i].Author.AvatarURL = resolveAvatar(ctx, s.urls, comments[i].Author.AvatarPath)
	}

	return &model.CommentListResponse{Comments: comments}, nil
}

// Add creates a comment and notifies the post author.
func (s *CommentService) Add(ctx context.Context, postID, userID uuid.UUID, req model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if utf8.RuneCountInString(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	// FK violation on insert maps to ErrPostNotFound
	comment, err := s.commentRepo.Create(ctx, postID, userID, content)
	if err != nil {
		return nil, err
	}
	comment.Author.AvatarURL = resolveAvatar(ctx, s.urls, comment.Author.AvatarPath)

	log.Printf("[CommentService] User %s commented on post %s", userID, postID)

	if err := s.feedCache.Invalidate(ctx); err != nil {
		log.Printf("[CommentService] Cache invalidate failed: %v", err)
	}

	// Publish notification event (after insert, best-effort)
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		log.Printf("[CommentService] Author lookup failed: post=%s err=%v", postID, err)
		return comment, nil
	}
	event := queue.NewPostCommentedEvent(userID, authorID, postID, comment.ID, content)
	if _, err := s.publisher.Publish(ctx, queue.StreamEngagement, event); err != nil {
		log.Printf("[CommentService] Failed to publish PostCommented event: %v", err)
	}

	return comment, nil
}

// Delete removes a comment. Only its author may delete it.
func (s *CommentService) Delete(ctx context.Context, commentID, userID uuid.UUID) error {
	postID, err := s.commentRepo.Delete(ctx, commentID, userID)
	if err != nil {
		return err
	}

	if err := s.feedCache.Invalidate(ctx); err != nil {
		log.Printf("[CommentService] Cache invalidate failed: %v", err)
	}

	log.Printf("[CommentService] User %s deleted comment %s from post %s", userID, commentID, postID)
	return nil
}
