package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"peerform/internal/model"
	"peerform/internal/repository"
	"peerform/internal/storage"
)

// ProfileService handles profile reads, settings edits and the pre-signup check.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	followRepo  repository.FollowRepository
	statsRepo   repository.StatsRepository
	urls        storage.URLResolver
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	followRepo repository.FollowRepository,
	statsRepo repository.StatsRepository,
	urls storage.URLResolver,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		followRepo:  followRepo,
		statsRepo:   statsRepo,
		urls:        urls,
	}
}

// Get returns a profile with follow counts, workout stats and, when viewerID
// is someone else, whether the viewer follows it.
//
// Counts and stats degrade to zero/nil on failure; only a missing profile
// fails the call.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID, viewerID *uuid.UUID) (*model.ProfileResponse, error) {
	p, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &model.ProfileResponse{
		ProfileSummary: model.ProfileSummary{
			ID:         p.ID,
			Username:   p.Username,
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			AvatarPath: p.AvatarURL,
		},
	}
	resp.AvatarURL = resolveAvatar(ctx, s.urls, p.AvatarURL)

	if n, err := s.followRepo.CountFollowers(ctx, userID); err == nil {
		resp.FollowerCount = n
	} else {
		log.Printf("[ProfileService] Follower count failed: user=%s err=%v", userID, err)
	}
	if n, err := s.followRepo.CountFollowing(ctx, userID); err == nil {
		resp.FollowingCount = n
	} else {
		log.Printf("[ProfileService] Following count failed: user=%s err=%v", userID, err)
	}
	if stats, err := s.statsRepo.FetchWorkoutStats(ctx, userID); err == nil {
		resp.Stats = &stats
	} else {
		log.Printf("[ProfileService] Stats failed: user=%s err=%v", userID, err)
	}

	if viewerID != nil && *viewerID != userID {
		if following, err := s.followRepo.Exists(ctx, *viewerID, userID); err == nil {
			resp.IsFollowing = following
		}
	}

	return resp, nil
}

// Search finds profiles by handle, leaving out the viewer.
func (s *ProfileService) Search(ctx context.Context, query string, viewerID *uuid.UUID) ([]model.ProfileSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.ErrEmptySearchQuery
	}

	users, err := s.profileRepo.Search(ctx, query, viewerID, model.ProfileSearchLimit)
	if err != nil {
		return nil, err
	}
	s.decorate(ctx, users, viewerID)
	return users, nil
}

// Followers lists the accounts following userID.
func (s *ProfileService) Followers(ctx context.Context, userID uuid.UUID, viewerID *uuid.UUID) (*model.FollowListResponse, error) {
	if _, err := s.profileRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.GetFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get followers: %w", err)
	}
	s.decorate(ctx, users, viewerID)
	return &model.FollowListResponse{Users: users}, nil
}

// Following lists the accounts userID follows.
func (s *ProfileService) Following(ctx context.Context, userID uuid.UUID, viewerID *uuid.UUID) (*model.FollowListResponse, error) {
	if _, err := s.profileRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.GetFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get following: %w", err)
	}
	s.decorate(ctx, users, viewerID)
	return &model.FollowListResponse{Users: users}, nil
}

// decorate resolves avatars and sets IsFollowing relative to viewerID with a
// single batch lookup.
func (s *ProfileService) decorate(ctx context.Context, users []model.ProfileSummary, viewerID *uuid.UUID) {
	for i := range users {
		users[i].AvatarURL = resolveAvatar(ctx, s.urls, users[i].AvatarPath)
	}
	if viewerID == nil || len(users) == 0 {
		return
	}

	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	followMap, err := s.followRepo.CheckFollows(ctx, *viewerID, ids)
	if err != nil {
		log.Printf("[ProfileService] CheckFollows failed: viewer=%s err=%v", *viewerID, err)
		return
	}
	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}
}

// Update applies a settings edit. Nil fields are left as they are.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.ProfileResponse, error) {
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		req.Username = &username

		taken, err := s.profileRepo.ExistsByUsername(ctx, username, &userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, model.ErrUsernameTaken
		}
	}
	for _, name := range []*string{req.FirstName, req.LastName} {
		if name != nil && strings.TrimSpace(*name) == "" {
			return nil, model.ErrNameRequired
		}
	}

	if _, err := s.profileRepo.Update(ctx, userID, req); err != nil {
		return nil, err
	}

	log.Printf("[ProfileService] User %s updated profile", userID)
	return s.Get(ctx, userID, nil)
}

// ValidateSignup checks a signup form before the client creates the account.
// All local checks run before the username lookup.
func (s *ProfileService) ValidateSignup(ctx context.Context, req model.SignupCheckRequest) error {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return model.ErrUsernameRequired
	}
	if err := validateUsername(username); err != nil {
		return err
	}
	if req.Password == "" {
		return model.ErrPasswordRequired
	}
	if utf8.RuneCountInString(req.Password) < model.MinPasswordLength {
		return model.ErrPasswordTooShort
	}
	if req.Password != req.ConfirmPassword {
		return model.ErrPasswordMismatch
	}

	taken, err := s.profileRepo.ExistsByUsername(ctx, username, nil)
	if err != nil {
		return err
	}
	if taken {
		return model.ErrUsernameTaken
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return model.ErrUsernameRequired
	}
	n := utf8.RuneCountInString(username)
	if n < model.MinUsernameLength || n > model.MaxUsernameLength || strings.ContainsAny(username, " \t\n") {
		return model.ErrUsernameInvalid
	}
	return nil
}
