package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"peerform/internal/model"
	"peerform/internal/queue"
	"peerform/internal/repository"
)

// NotificationService handles the in-app notification list and turns
// engagement events into notifications and pushes.
type NotificationService struct {
	notifRepo   repository.NotificationRepository
	profileRepo repository.ProfileRepository
	push        *PushService // nil disables push
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	profileRepo repository.ProfileRepository,
	push *PushService,
) *NotificationService {
	return &NotificationService{
		notifRepo:   notifRepo,
		profileRepo: profileRepo,
		push:        push,
	}
}

// List returns the newest notifications for userID and the unread count.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) (*model.NotificationListResponse, error) {
	if limit <= 0 {
		limit = model.DefaultNotificationLimit
	}
	if limit > model.MaxNotificationLimit {
		limit = model.MaxNotificationLimit
	}

	notifications, err := s.notifRepo.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

// UnreadCount returns the badge count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

// MarkRead marks the given notifications read. An empty list marks all.
func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return s.notifRepo.MarkAllAsRead(ctx, userID)
	}
	return s.notifRepo.MarkAsRead(ctx, userID, ids)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.notifRepo.Delete(ctx, userID, notificationID)
}

// Clear deletes every notification of userID.
func (s *NotificationService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.DeleteAll(ctx, userID)
}

// NotifyEngagement stores a notification for the event's recipient and
// pushes it to their devices. Self-actions and post_created are ignored.
// A push failure is logged; the notification row is already stored.
func (s *NotificationService) NotifyEngagement(ctx context.Context, event queue.EngagementEvent) error {
	if event.RecipientID == uuid.Nil || event.RecipientID == event.ActorID {
		return nil
	}

	actorName := "Someone"
	if actor, err := s.profileRepo.GetByID(ctx, event.ActorID); err == nil {
		actorName = actor.Username
	} else {
		log.Printf("[NotificationService] Actor lookup failed: actor=%s err=%v", event.ActorID, err)
	}

	title, body, ok := buildMessage(actorName, event)
	if !ok {
		return nil
	}

	if err := s.notifRepo.Create(ctx, event.RecipientID, title, body); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	log.Printf("[NotificationService] Notified user=%s type=%s actor=%s", event.RecipientID, event.Type, event.ActorID)

	if s.push == nil || !s.push.Enabled() {
		return nil
	}

	data := map[string]string{
		"type":     event.Type,
		"actor_id": event.ActorID.String(),
	}
	if event.PostID != nil {
		data["post_id"] = event.PostID.String()
	}
	if err := s.push.SendToUser(ctx, event.RecipientID, title, body, data); err != nil {
		log.Printf("[NotificationService] Push FAILED: user=%s err=%v", event.RecipientID, err)
	}
	return nil
}

// buildMessage creates the title and body for an event. ok is false for
// events that do not notify anyone.
func buildMessage(actorName string, event queue.EngagementEvent) (title, body string, ok bool) {
	switch event.Type {
	case queue.EventUserFollowed:
		return "New Follower", actorName + " started following you", true
	case queue.EventPostLiked:
		return "New Like", actorName + " liked your post", true
	case queue.EventPostCommented:
		body = actorName + " commented on your post"
		if event.Preview != "" {
			body += ": " + event.Preview
		}
		return "New Comment", body, true
	default:
		return "", "", false
	}
}
