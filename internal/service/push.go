package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"peerform/internal/model"
	"peerform/internal/repository"
)

// Pusher delivers a notification to device tokens. It returns the tokens
// FCM reported as no longer registered.
type Pusher interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) (stale []string, err error)
}

// FCMClient wraps the Firebase Cloud Messaging client.
//
// Credentials come from a Firebase service account:
// Project Settings -> Service Accounts -> Generate New Private Key.
type FCMClient struct {
	client *messaging.Client
}

// NewFCMClient builds a messaging client from service account fields.
// privateKey may carry literal "\n" sequences as stored in .env files.
func NewFCMClient(ctx context.Context, projectID, clientEmail, privateKey string) (*FCMClient, error) {
	privateKey = strings.ReplaceAll(privateKey, "\\n", "\n")

	credsJSON := fmt.Sprintf(`{
		"type": "service_account",
		"project_id": %q,
		"private_key": %q,
		"client_email": %q,
		"token_uri": "https://oauth2.googleapis.com/token"
	}`, projectID, privateKey, clientEmail)

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON([]byte(credsJSON)))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	log.Printf("[FCM] Initialized for project: %s", projectID)
	return &FCMClient{client: client}, nil
}

// SendToTokens sends one multicast message. FCM accepts up to 500 tokens
// per call, far above what one account registers.
func (c *FCMClient) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	response, err := c.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("send multicast: %w", err)
	}

	log.Printf("[FCM] Sent to %d tokens: %d success, %d failure",
		len(tokens), response.SuccessCount, response.FailureCount)

	var stale []string
	for i, resp := range response.Responses {
		if resp.Success {
			continue
		}
		if messaging.IsUnregistered(resp.Error) {
			stale = append(stale, tokens[i])
			continue
		}
		log.Printf("[FCM] Token %d failed: %v", i, resp.Error)
	}
	return stale, nil
}

// PushService manages device tokens and sends pushes to an account's devices.
type PushService struct {
	tokenRepo repository.DeviceTokenRepository
	pusher    Pusher // nil when FCM is not configured
}

func NewPushService(tokenRepo repository.DeviceTokenRepository, pusher Pusher) *PushService {
	return &PushService{tokenRepo: tokenRepo, pusher: pusher}
}

// Enabled reports whether pushes are actually delivered.
func (s *PushService) Enabled() bool {
	return s.pusher != nil
}

// Register stores a device token. A token already held by another account
// moves to userID.
func (s *PushService) Register(ctx context.Context, userID uuid.UUID, req model.RegisterTokenRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return model.ErrTokenRequired
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform == "" {
		platform = model.PlatformAndroid
	}

	if err := s.tokenRepo.Upsert(ctx, userID, token, platform); err != nil {
		return err
	}
	log.Printf("[PushService] Registered token: user=%s platform=%s", userID, platform)
	return nil
}

// Remove deletes a device token, e.g. on sign-out.
func (s *PushService) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.ErrTokenRequired
	}
	return s.tokenRepo.Delete(ctx, userID, token)
}

// SendToUser pushes to every device of userID and prunes tokens FCM no
// longer recognises. It is a no-op when push is disabled.
func (s *PushService) SendToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) error {
	if s.pusher == nil {
		return nil
	}

	tokens, err := s.tokenRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	values := make([]string, len(tokens))
	for i, t := range tokens {
		values[i] = t.Token
	}

	stale, err := s.pusher.SendToTokens(ctx, values, title, body, data)
	if err != nil {
		return err
	}
	for _, token := range stale {
		if err := s.tokenRepo.Delete(ctx, userID, token); err != nil {
			log.Printf("[PushService] Prune token FAILED: user=%s err=%v", userID, err)
		}
	}
	return nil
}
