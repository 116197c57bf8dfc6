package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"peerform/internal/model"
)

// =============================================================================
// SIGNUP VALIDATION TESTS
// =============================================================================

func TestProfileService_ValidateSignup(t *testing.T) {
	tests := []struct {
		name       string
		req        model.SignupCheckRequest
		taken      bool
		wantErr    error
		wantLookup bool
	}{
		{
			name:       "valid",
			req:        model.SignupCheckRequest{Username: "lifter", Password: "secret1", ConfirmPassword: "secret1"},
			wantLookup: true,
		},
		{
			name:    "missing username",
			req:     model.SignupCheckRequest{Username: "  ", Password: "secret1", ConfirmPassword: "secret1"},
			wantErr: model.ErrUsernameRequired,
		},
		{
			name:    "username too short",
			req:     model.SignupCheckRequest{Username: "ab", Password: "secret1", ConfirmPassword: "secret1"},
			wantErr: model.ErrUsernameInvalid,
		},
		{
			name:    "missing password",
			req:     model.SignupCheckRequest{Username: "lifter"},
			wantErr: model.ErrPasswordRequired,
		},
		{
			name:    "short password",
			req:     model.SignupCheckRequest{Username: "lifter", Password: "abc", ConfirmPassword: "abc"},
			wantErr: model.ErrPasswordTooShort,
		},
		{
			name:    "passwords differ",
			req:     model.SignupCheckRequest{Username: "lifter", Password: "secret1", ConfirmPassword: "secret2"},
			wantErr: model.ErrPasswordMismatch,
		},
		{
			name:       "username taken",
			req:        model.SignupCheckRequest{Username: "lifter", Password: "secret1", ConfirmPassword: "secret1"},
			taken:      true,
			wantErr:    model.ErrUsernameTaken,
			wantLookup: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ARRANGE
			repo := &mockProfileRepository{
				existsByUsernameFn: func(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
					return tt.taken, nil
				},
			}
			svc := NewProfileService(repo, &mockFollowRepository{}, &mockStatsRepository{}, &mockURLResolver{})

			// ACT
			err := svc.ValidateSignup(context.Background(), tt.req)

			// ASSERT
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if got := repo.existsCalls > 0; got != tt.wantLookup {
				t.Errorf("username lookup made = %v, want %v", got, tt.wantLookup)
			}
		})
	}
}

// =============================================================================
// PROFILE READ TESTS
// =============================================================================

func TestProfileService_Get(t *testing.T) {
	owner, viewer := uuid.New(), uuid.New()
	avatar := "owner.png"
	repo := &mockProfileRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
			return &model.Profile{ID: owner, Username: "owner", AvatarURL: &avatar}, nil
		},
	}
	follows := &mockFollowRepository{
		existsFn: func(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
			return followerID == viewer && followingID == owner, nil
		},
	}
	stats := &mockStatsRepository{
		fetchFn: func(ctx context.Context, id uuid.UUID) (model.WorkoutStats, error) {
			return model.WorkoutStats{WeeklyCount: 3}, nil
		},
	}
	svc := NewProfileService(repo, follows, stats, &mockURLResolver{})

	got, err := svc.Get(context.Background(), owner, &viewer)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if got.Username != "owner" {
		t.Errorf("username = %q, want %q", got.Username, "owner")
	}
	if got.AvatarURL != "https://cdn.test/avatars/owner.png" {
		t.Errorf("avatar_url = %q", got.AvatarURL)
	}
	if !got.IsFollowing {
		t.Error("expected viewer to follow owner")
	}
	if got.Stats == nil || got.Stats.WeeklyCount != 3 {
		t.Errorf("stats = %+v, want weekly 3", got.Stats)
	}
}

func TestProfileService_Get_StatsFailureStillReturnsProfile(t *testing.T) {
	id := uuid.New()
	repo := &mockProfileRepository{
		getByIDFn: func(ctx context.Context, _ uuid.UUID) (*model.Profile, error) {
			return &model.Profile{ID: id, Username: "x"}, nil
		},
	}
	stats := &mockStatsRepository{
		fetchFn: func(ctx context.Context, _ uuid.UUID) (model.WorkoutStats, error) {
			return model.WorkoutStats{}, errors.New("rpc failed")
		},
	}
	svc := NewProfileService(repo, &mockFollowRepository{}, stats, &mockURLResolver{})

	got, err := svc.Get(context.Background(), id, nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got.Stats != nil {
		t.Errorf("stats = %+v, want nil", got.Stats)
	}
}

func TestProfileService_Followers_MarksViewerFollows(t *testing.T) {
	owner, viewer, a, b := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	repo := &mockProfileRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
			return &model.Profile{ID: id}, nil
		},
	}
	follows := &mockFollowRepository{
		getFollowersFn: func(ctx context.Context, userID uuid.UUID) ([]model.ProfileSummary, error) {
			return []model.ProfileSummary{{ID: a, Username: "a"}, {ID: b, Username: "b"}}, nil
		},
		checkFollowsFn: func(ctx context.Context, followerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
			return map[uuid.UUID]bool{b: true}, nil
		},
	}
	svc := NewProfileService(repo, follows, &mockStatsRepository{}, &mockURLResolver{})

	got, err := svc.Followers(context.Background(), owner, &viewer)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(got.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(got.Users))
	}
	if got.Users[0].IsFollowing || !got.Users[1].IsFollowing {
		t.Errorf("is_following = [%v %v], want [false true]", got.Users[0].IsFollowing, got.Users[1].IsFollowing)
	}
}

func TestProfileService_Update_UsernameTaken(t *testing.T) {
	me := uuid.New()
	repo := &mockProfileRepository{
		existsByUsernameFn: func(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
			if excludeID == nil || *excludeID != me {
				t.Error("own profile should be excluded from the uniqueness check")
			}
			return true, nil
		},
	}
	svc := NewProfileService(repo, &mockFollowRepository{}, &mockStatsRepository{}, &mockURLResolver{})

	name := "taken_name"
	_, err := svc.Update(context.Background(), me, model.UpdateProfileRequest{Username: &name})

	if !errors.Is(err, model.ErrUsernameTaken) {
		t.Errorf("error = %v, want %v", err, model.ErrUsernameTaken)
	}
}

func TestProfileService_Search_RequiresQuery(t *testing.T) {
	svc := NewProfileService(&mockProfileRepository{}, &mockFollowRepository{}, &mockStatsRepository{}, &mockURLResolver{})

	if _, err := svc.Search(context.Background(), "   ", nil); !errors.Is(err, model.ErrEmptySearchQuery) {
		t.Errorf("error = %v, want %v", err, model.ErrEmptySearchQuery)
	}
}
