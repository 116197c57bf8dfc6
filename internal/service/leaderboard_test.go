package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"peerform/internal/model"
)

func newTestLeaderboardService(stats *mockStatsRepository, follows *mockFollowRepository, groups *mockGroupRepository, profiles *mockProfileRepository) *LeaderboardService {
	return NewLeaderboardService(stats, follows, groups, profiles, &mockURLResolver{}, time.Second, 4)
}

func weeklyStats(counts map[uuid.UUID]int) *mockStatsRepository {
	return &mockStatsRepository{
		fetchFn: func(ctx context.Context, id uuid.UUID) (model.WorkoutStats, error) {
			n, ok := counts[id]
			if !ok {
				return model.WorkoutStats{}, errors.New("function fetch_workout_stats failed")
			}
			return model.WorkoutStats{WeeklyCount: n, MonthlyCount: n * 4, YearlyCount: n * 50}, nil
		},
	}
}

// =============================================================================
// RANK TESTS
// =============================================================================

func TestAssignRanks_CompetitionRanking(t *testing.T) {
	tests := []struct {
		name      string
		counts    []int
		wantRanks []int
	}{
		{"ties share a rank and skip", []int{9, 9, 7, 3}, []int{1, 1, 3, 4}},
		{"all equal", []int{4, 4, 4}, []int{1, 1, 1}},
		{"strictly decreasing", []int{5, 3, 1}, []int{1, 2, 3}},
		{"tie at the bottom", []int{8, 2, 2}, []int{1, 2, 2}},
		{"unsorted input", []int{3, 9, 7, 9}, []int{1, 1, 3, 4}},
		{"single entry", []int{0}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]model.LeaderboardEntry, len(tt.counts))
			for i, c := range tt.counts {
				entries[i] = model.LeaderboardEntry{AccountID: uuid.New(), Count: c}
			}

			assignRanks(entries)

			ranks := make([]int, len(entries))
			for i, e := range entries {
				ranks[i] = e.Rank
				if i > 0 {
					require.GreaterOrEqual(t, entries[i-1].Count, e.Count, "not sorted descending")
				}
			}
			require.Equal(t, tt.wantRanks, ranks)
		})
	}
}

func TestLeaderboardService_Rank_TiesKeepInputOrder(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	svc := newTestLeaderboardService(weeklyStats(map[uuid.UUID]int{a: 5, b: 5, c: 2}), nil, nil, nil)

	got, err := svc.Rank(context.Background(), []uuid.UUID{a, b, c}, model.PeriodWeek)

	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []uuid.UUID{a, b, c}, []uuid.UUID{got[0].AccountID, got[1].AccountID, got[2].AccountID})
	require.Equal(t, []int{1, 1, 3}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
	require.Equal(t, []int{5, 5, 2}, []int{got[0].Count, got[1].Count, got[2].Count})
}

func TestLeaderboardService_Rank_UsesPeriod(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	stats := &mockStatsRepository{
		fetchFn: func(ctx context.Context, id uuid.UUID) (model.WorkoutStats, error) {
			if id == a {
				return model.WorkoutStats{WeeklyCount: 1, MonthlyCount: 10, YearlyCount: 10}, nil
			}
			return model.WorkoutStats{WeeklyCount: 3, MonthlyCount: 4, YearlyCount: 40}, nil
		},
	}
	svc := newTestLeaderboardService(stats, nil, nil, nil)
	ctx := context.Background()

	week, err := svc.Rank(ctx, []uuid.UUID{a, b}, model.PeriodWeek)
	require.NoError(t, err)
	require.Equal(t, b, week[0].AccountID)

	month, err := svc.Rank(ctx, []uuid.UUID{a, b}, model.PeriodMonth)
	require.NoError(t, err)
	require.Equal(t, a, month[0].AccountID)

	year, err := svc.Rank(ctx, []uuid.UUID{a, b}, model.PeriodYear)
	require.NoError(t, err)
	require.Equal(t, b, year[0].AccountID)
	require.Equal(t, 40, year[0].Count)
}

func TestLeaderboardService_Rank_ExcludesFailures(t *testing.T) {
	a, b, broken := uuid.New(), uuid.New(), uuid.New()
	svc := newTestLeaderboardService(weeklyStats(map[uuid.UUID]int{a: 2, b: 6}), nil, nil, nil)

	got, err := svc.Rank(context.Background(), []uuid.UUID{a, broken, b}, model.PeriodWeek)

	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, b, got[0].AccountID)
	require.Equal(t, 1, got[0].Rank)
	require.Equal(t, a, got[1].AccountID)
	require.Equal(t, 2, got[1].Rank)
}

func TestLeaderboardService_Rank_AllFail(t *testing.T) {
	svc := newTestLeaderboardService(weeklyStats(nil), nil, nil, nil)

	got, err := svc.Rank(context.Background(), []uuid.UUID{uuid.New(), uuid.New()}, model.PeriodWeek)

	require.Nil(t, got)
	require.ErrorIs(t, err, model.ErrStatsUnavailable)
}

func TestLeaderboardService_Rank_EmptyAndDuplicates(t *testing.T) {
	a := uuid.New()
	stats := weeklyStats(map[uuid.UUID]int{a: 3})
	svc := newTestLeaderboardService(stats, nil, nil, nil)
	ctx := context.Background()

	empty, err := svc.Rank(ctx, nil, model.PeriodWeek)
	require.NoError(t, err)
	require.Empty(t, empty)

	got, err := svc.Rank(ctx, []uuid.UUID{a, a, a}, model.PeriodWeek)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, stats.calls[a], "duplicate candidates fetched more than once")
}

// =============================================================================
// LEADERBOARD VIEW TESTS
// =============================================================================

func TestLeaderboardService_FriendLeaderboard(t *testing.T) {
	viewer, f1, f2 := uuid.New(), uuid.New(), uuid.New()
	avatar := "f1.png"

	follows := &mockFollowRepository{
		getFollowerIDsFn: func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
			require.Equal(t, viewer, userID)
			return []uuid.UUID{f1, f2}, nil
		},
	}
	profiles := &mockProfileRepository{
		getSummariesFn: func(ctx context.Context, ids []uuid.UUID) ([]model.ProfileSummary, error) {
			return []model.ProfileSummary{
				{ID: f1, Username: "runner", AvatarPath: &avatar},
				{ID: viewer, Username: "me"},
			}, nil
		},
	}
	stats := weeklyStats(map[uuid.UUID]int{viewer: 4, f1: 9, f2: 4})
	svc := newTestLeaderboardService(stats, follows, nil, profiles)

	got, err := svc.FriendLeaderboard(context.Background(), viewer, model.PeriodWeek)

	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, f1, got[0].AccountID)
	require.Equal(t, "runner", got[0].Username)
	require.Equal(t, "https://cdn.test/avatars/f1.png", got[0].AvatarURL)

	// viewer is appended after followers, so the tie keeps f2 first
	require.Equal(t, f2, got[1].AccountID)
	require.Equal(t, viewer, got[2].AccountID)
	require.Equal(t, 2, got[2].Rank)
	require.Equal(t, "me", got[2].Username)
	require.Empty(t, got[1].Username, "unknown profile leaves the handle empty")
}

func TestLeaderboardService_FriendLeaderboard_NoFollowers(t *testing.T) {
	viewer := uuid.New()
	svc := newTestLeaderboardService(weeklyStats(map[uuid.UUID]int{viewer: 0}), &mockFollowRepository{}, nil, &mockProfileRepository{})

	got, err := svc.FriendLeaderboard(context.Background(), viewer, model.PeriodWeek)

	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, got[0].Rank)
}

func TestLeaderboardService_GroupLeaderboard(t *testing.T) {
	groupID, m1, m2 := uuid.New(), uuid.New(), uuid.New()
	groups := &mockGroupRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Group, error) {
			if id != groupID {
				return nil, model.ErrGroupNotFound
			}
			return &model.Group{ID: groupID}, nil
		},
		getMemberIDsFn: func(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{m1, m2}, nil
		},
	}
	svc := newTestLeaderboardService(weeklyStats(map[uuid.UUID]int{m1: 1, m2: 2}), nil, groups, &mockProfileRepository{})
	ctx := context.Background()

	got, err := svc.GroupLeaderboard(ctx, groupID, model.PeriodWeek)
	require.NoError(t, err)
	require.Equal(t, m2, got[0].AccountID)

	_, err = svc.GroupLeaderboard(ctx, uuid.New(), model.PeriodWeek)
	require.ErrorIs(t, err, model.ErrGroupNotFound)
}
