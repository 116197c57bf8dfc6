package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"peerform/internal/model"
	"peerform/internal/observability"
	"peerform/internal/repository"
	"peerform/internal/storage"
)

// DefaultLeaderboardFanout is the number of stats calls in flight per ranking
const DefaultLeaderboardFanout = 8

type LeaderboardService struct {
	statsRepo   repository.StatsRepository
	followRepo  repository.FollowRepository
	groupRepo   repository.GroupRepository
	profileRepo repository.ProfileRepository
	urls        storage.URLResolver
	timeout     time.Duration
	fanout      int
}

func NewLeaderboardService(
	statsRepo repository.StatsRepository,
	followRepo repository.FollowRepository,
	groupRepo repository.GroupRepository,
	profileRepo repository.ProfileRepository,
	urls storage.URLResolver,
	timeout time.Duration,
	fanout int,
) *LeaderboardService {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if fanout <= 0 {
		fanout = DefaultLeaderboardFanout
	}
	return &LeaderboardService{
		statsRepo:   statsRepo,
		followRepo:  followRepo,
		groupRepo:   groupRepo,
		profileRepo: profileRepo,
		urls:        urls,
		timeout:     timeout,
		fanout:      fanout,
	}
}

// Rank orders candidates by their workout count for period, highest first,
// using competition ranking: equal counts share a rank and the next distinct
// count takes its 1-based position, so [9,9,7,3] ranks as [1,1,3,4].
//
// Candidates whose stats cannot be fetched are left out. If none can be
// fetched the call fails with ErrStatsUnavailable.
func (s *LeaderboardService) Rank(ctx context.Context, candidates []uuid.UUID, period model.Period) ([]model.LeaderboardEntry, error) {
	startTime := time.Now()
	candidates = dedupeIDs(candidates)
	if len(candidates) == 0 {
		return []model.LeaderboardEntry{}, nil
	}

	type slot struct {
		stats model.WorkoutStats
		err   error
	}
	slots := make([]slot, len(candidates))

	var g errgroup.Group
	g.SetLimit(s.fanout)
	for i, id := range candidates {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			slots[i].stats, slots[i].err = s.statsRepo.FetchWorkoutStats(callCtx, id)
			return nil
		})
	}
	_ = g.Wait()

	entries := make([]model.LeaderboardEntry, 0, len(candidates))
	var firstErr error
	for i, id := range candidates {
		if err := slots[i].err; err != nil {
			log.Printf("[LeaderboardService] Stats FAILED: account=%s err=%v", id, err)
			observability.RecordStatsFailure()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			AccountID: id,
			Count:     slots[i].stats.Count(period),
			Stats:     slots[i].stats,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %w", model.ErrStatsUnavailable, firstErr)
	}

	assignRanks(entries)

	log.Printf("[LeaderboardService] Rank OK: period=%s candidates=%d ranked=%d duration=%v",
		period, len(candidates), len(entries), time.Since(startTime))
	return entries, nil
}

// assignRanks sorts entries by Count descending, keeping input order on ties,
// and sets competition ranks.
func assignRanks(entries []model.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	for i := range entries {
		if i > 0 && entries[i].Count == entries[i-1].Count {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
}

// FriendLeaderboard ranks the viewer against the accounts following them.
func (s *LeaderboardService) FriendLeaderboard(ctx context.Context, viewer uuid.UUID, period model.Period) ([]model.LeaderboardEntry, error) {
	followerIDs, err := s.followRepo.GetFollowerIDs(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("get follower ids: %w", err)
	}
	candidates := append(followerIDs, viewer)

	entries, err := s.Rank(ctx, candidates, period)
	if err != nil {
		return nil, err
	}
	s.attachProfiles(ctx, entries)
	return entries, nil
}

// GroupLeaderboard ranks the members of a group.
func (s *LeaderboardService) GroupLeaderboard(ctx context.Context, groupID uuid.UUID, period model.Period) ([]model.LeaderboardEntry, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	memberIDs, err := s.groupRepo.GetMemberIDs(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get member ids: %w", err)
	}

	entries, err := s.Rank(ctx, memberIDs, period)
	if err != nil {
		return nil, err
	}
	s.attachProfiles(ctx, entries)
	return entries, nil
}

// Stats returns one account's workout counts.
func (s *LeaderboardService) Stats(ctx context.Context, accountID uuid.UUID) (model.WorkoutStats, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stats, err := s.statsRepo.FetchWorkoutStats(callCtx, accountID)
	if err != nil {
		return model.WorkoutStats{}, fmt.Errorf("%w: %w", model.ErrStatsUnavailable, err)
	}
	return stats, nil
}

// attachProfiles fills handle and avatar URL. Failures leave them empty.
func (s *LeaderboardService) attachProfiles(ctx context.Context, entries []model.LeaderboardEntry) {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.AccountID
	}

	profiles, err := s.profileRepo.GetSummaries(ctx, ids)
	if err != nil {
		log.Printf("[LeaderboardService] Profiles FAILED: count=%d err=%v", len(ids), err)
		return
	}
	byID := make(map[uuid.UUID]model.ProfileSummary, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	for i := range entries {
		p, ok := byID[entries[i].AccountID]
		if !ok {
			continue
		}
		entries[i].Username = p.Username
		entries[i].AvatarURL = resolveAvatar(ctx, s.urls, p.AvatarPath)
	}
}

// resolveAvatar returns the avatar URL or "" when unset or unresolvable.
func resolveAvatar(ctx context.Context, urls storage.URLResolver, path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	u, err := urls.URL(ctx, model.BucketAvatars, *path)
	if err != nil {
		log.Printf("[Storage] Avatar URL FAILED: path=%s err=%v", *path, err)
		return ""
	}
	return u
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
