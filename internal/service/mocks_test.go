package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"peerform/internal/cache"
	"peerform/internal/model"
	"peerform/internal/queue"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Each mock implements a repository interface with optional function fields.
// An unset field returns a zero value. Mocks used from fan-out code must be
// safe for concurrent use, so any call tracking goes through a mutex.

type mockPostRepository struct {
	createFn        func(ctx context.Context, userID uuid.UUID, req model.CreatePostRequest) (*model.Post, error)
	getByIDFn       func(ctx context.Context, postID uuid.UUID) (*model.Post, error)
	deleteFn        func(ctx context.Context, postID, userID uuid.UUID) error
	listFn          func(ctx context.Context, filter model.FeedFilter) ([]model.Post, error)
	existsFn        func(ctx context.Context, postID uuid.UUID) (bool, error)
	getAuthorIDFn   func(ctx context.Context, postID uuid.UUID) (uuid.UUID, error)
	countCommentsFn func(ctx context.Context, postID uuid.UUID) (int, error)
	countLikesFn    func(ctx context.Context, postID uuid.UUID) (int, error)

	mu        sync.Mutex
	listCalls []model.FeedFilter
}

func (m *mockPostRepository) Create(ctx context.Context, userID uuid.UUID, req model.CreatePostRequest) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return &model.Post{ID: uuid.New(), UserID: userID, ImagePath: req.ImagePath, Caption: req.Caption, Kind: req.Kind, GroupID: req.GroupID}, nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID uuid.UUID) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) List(ctx context.Context, filter model.FeedFilter) ([]model.Post, error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, filter)
	m.mu.Unlock()
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []model.Post{}, nil
}

func (m *mockPostRepository) listCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listCalls)
}

func (m *mockPostRepository) Exists(ctx context.Context, postID uuid.UUID) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return true, nil
}

func (m *mockPostRepository) GetAuthorID(ctx context.Context, postID uuid.UUID) (uuid.UUID, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, postID)
	}
	return uuid.Nil, model.ErrPostNotFound
}

func (m *mockPostRepository) CountComments(ctx context.Context, postID uuid.UUID) (int, error) {
	if m.countCommentsFn != nil {
		return m.countCommentsFn(ctx, postID)
	}
	return 0, nil
}

func (m *mockPostRepository) CountLikes(ctx context.Context, postID uuid.UUID) (int, error) {
	if m.countLikesFn != nil {
		return m.countLikesFn(ctx, postID)
	}
	return 0, nil
}

type mockLikeRepository struct {
	insertFn func(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	deleteFn func(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	existsFn func(ctx context.Context, userID, postID uuid.UUID) (bool, error)
}

func (m *mockLikeRepository) Insert(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, userID, postID)
	}
	return true, nil
}

func (m *mockLikeRepository) Delete(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, postID)
	}
	return true, nil
}

func (m *mockLikeRepository) Exists(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, postID)
	}
	return false, nil
}

type mockFollowRepository struct {
	insertFn         func(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	deleteFn         func(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	existsFn         func(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	getFollowersFn   func(ctx context.Context, userID uuid.UUID) ([]model.ProfileSummary, error)
	getFollowerIDsFn func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	checkFollowsFn   func(ctx context.Context, followerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

func (m *mockFollowRepository) Insert(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, followerID, followingID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followingID)
	}
	return true, nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followingID)
	}
	return false, nil
}

func (m *mockFollowRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

func (m *mockFollowRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID uuid.UUID) ([]model.ProfileSummary, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID)
	}
	return []model.ProfileSummary{}, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID uuid.UUID) ([]model.ProfileSummary, error) {
	return []model.ProfileSummary{}, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return []uuid.UUID{}, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, ids)
	}
	return map[uuid.UUID]bool{}, nil
}

type mockStatsRepository struct {
	fetchFn func(ctx context.Context, accountID uuid.UUID) (model.WorkoutStats, error)

	mu    sync.Mutex
	calls map[uuid.UUID]int
}

func (m *mockStatsRepository) FetchWorkoutStats(ctx context.Context, accountID uuid.UUID) (model.WorkoutStats, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[uuid.UUID]int)
	}
	m.calls[accountID]++
	m.mu.Unlock()
	if m.fetchFn != nil {
		return m.fetchFn(ctx, accountID)
	}
	return model.WorkoutStats{}, nil
}

type mockGroupRepository struct {
	getByIDFn      func(ctx context.Context, groupID uuid.UUID) (*model.Group, error)
	addMemberFn    func(ctx context.Context, groupID, userID uuid.UUID, role string) (bool, error)
	removeMemberFn func(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	isMemberFn     func(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	getMemberIDsFn func(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

func (m *mockGroupRepository) Create(ctx context.Context, ownerID uuid.UUID, req model.CreateGroupRequest) (*model.Group, error) {
	return &model.Group{ID: uuid.New(), Name: req.Name, Goal: req.Goal, Description: req.Description, OwnerID: ownerID, IsPrivate: req.IsPrivate}, nil
}

func (m *mockGroupRepository) GetByID(ctx context.Context, groupID uuid.UUID) (*model.Group, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, groupID)
	}
	return nil, model.ErrGroupNotFound
}

func (m *mockGroupRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]model.Group, error) {
	return []model.Group{}, nil
}

func (m *mockGroupRepository) SearchPublic(ctx context.Context, query string, limit int) ([]model.Group, error) {
	return []model.Group{}, nil
}

func (m *mockGroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID, role string) (bool, error) {
	if m.addMemberFn != nil {
		return m.addMemberFn(ctx, groupID, userID, role)
	}
	return true, nil
}

func (m *mockGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	if m.removeMemberFn != nil {
		return m.removeMemberFn(ctx, groupID, userID)
	}
	return true, nil
}

func (m *mockGroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	if m.isMemberFn != nil {
		return m.isMemberFn(ctx, groupID, userID)
	}
	return false, nil
}

func (m *mockGroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.GroupMember, error) {
	return []model.GroupMember{}, nil
}

func (m *mockGroupRepository) GetMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	if m.getMemberIDsFn != nil {
		return m.getMemberIDsFn(ctx, groupID)
	}
	return []uuid.UUID{}, nil
}

type mockProfileRepository struct {
	getByIDFn          func(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	getSummariesFn     func(ctx context.Context, ids []uuid.UUID) ([]model.ProfileSummary, error)
	existsByUsernameFn func(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error)

	existsCalls int
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) GetSummaries(ctx context.Context, ids []uuid.UUID) ([]model.ProfileSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, ids)
	}
	return []model.ProfileSummary{}, nil
}

func (m *mockProfileRepository) Search(ctx context.Context, query string, excludeID *uuid.UUID, limit int) ([]model.ProfileSummary, error) {
	return []model.ProfileSummary{}, nil
}

func (m *mockProfileRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	m.existsCalls++
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username, excludeID)
	}
	return false, nil
}

func (m *mockProfileRepository) Update(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.Profile, error) {
	return &model.Profile{ID: id}, nil
}

type mockNotificationRepository struct {
	mu      sync.Mutex
	created []createdNotification
}

type createdNotification struct {
	UserID uuid.UUID
	Title  string
	Body   string
}

func (m *mockNotificationRepository) Create(ctx context.Context, userID uuid.UUID, title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, createdNotification{UserID: userID, Title: title, Body: body})
	return nil
}

func (m *mockNotificationRepository) List(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	return []model.Notification{}, nil
}

func (m *mockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

func (m *mockNotificationRepository) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	return nil
}

func (m *mockNotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (m *mockNotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return nil
}

func (m *mockNotificationRepository) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type mockDeviceTokenRepository struct {
	tokens  map[uuid.UUID][]model.DeviceToken
	deleted []string
}

func (m *mockDeviceTokenRepository) Upsert(ctx context.Context, userID uuid.UUID, token, platform string) error {
	if m.tokens == nil {
		m.tokens = make(map[uuid.UUID][]model.DeviceToken)
	}
	m.tokens[userID] = append(m.tokens[userID], model.DeviceToken{UserID: userID, Token: token, Platform: platform})
	return nil
}

func (m *mockDeviceTokenRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]model.DeviceToken, error) {
	return m.tokens[userID], nil
}

func (m *mockDeviceTokenRepository) Delete(ctx context.Context, userID uuid.UUID, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

// =============================================================================
// MOCK COLLABORATORS
// =============================================================================

// mockURLResolver returns "<bucket>/<path>" or the error from errFn.
type mockURLResolver struct {
	errFn func(bucket, path string) error
}

func (m *mockURLResolver) URL(ctx context.Context, bucket, path string) (string, error) {
	if m.errFn != nil {
		if err := m.errFn(bucket, path); err != nil {
			return "", err
		}
	}
	return "https://cdn.test/" + bucket + "/" + path, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.EngagementEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, stream string, event queue.EngagementEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, event)
	return "1-0", nil
}

func (p *recordingPublisher) published() []queue.EngagementEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.EngagementEvent(nil), p.events...)
}

// memoryFeedCache is an in-process FeedCache keyed by FeedKey.String().
type memoryFeedCache struct {
	mu            sync.Mutex
	epoch         int64
	entries       map[string][]model.FeedPost
	invalidations int
}

var _ cache.FeedCache = (*memoryFeedCache)(nil)

func (c *memoryFeedCache) Epoch(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch, nil
}

func (c *memoryFeedCache) Get(ctx context.Context, key cache.FeedKey) ([]model.FeedPost, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	posts, ok := c.entries[key.String()]
	return posts, ok, nil
}

func (c *memoryFeedCache) Set(ctx context.Context, key cache.FeedKey, posts []model.FeedPost) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string][]model.FeedPost)
	}
	c.entries[key.String()] = posts
	return nil
}

func (c *memoryFeedCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.invalidations++
	return nil
}

func (c *memoryFeedCache) invalidationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}

type mockPusher struct {
	stale []string
	sent  [][]string
}

func (m *mockPusher) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	m.sent = append(m.sent, tokens)
	return m.stale, nil
}

type mockCommentRepository struct {
	createFn func(ctx context.Context, postID, userID uuid.UUID, content string) (*model.Comment, error)
	deleteFn func(ctx context.Context, commentID, userID uuid.UUID) (uuid.UUID, error)
	listFn   func(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, postID, userID uuid.UUID, content string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, postID, userID, content)
	}
	return &model.Comment{ID: uuid.New(), PostID: postID, UserID: userID, Content: content}, nil
}

func (m *mockCommentRepository) Delete(ctx context.Context, commentID, userID uuid.UUID) (uuid.UUID, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID, userID)
	}
	return uuid.New(), nil
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	if m.listFn != nil {
		return m.listFn(ctx, postID)
	}
	return []model.Comment{}, nil
}

type mockSongRepository struct {
	listLimit int
	songs     []model.Song
}

func (m *mockSongRepository) Create(ctx context.Context, userID uuid.UUID, req model.AddSongRequest) (*model.Song, error) {
	return &model.Song{ID: 1, UserID: userID, Title: req.Title, Artist: req.Artist, CoverURL: req.CoverURL}, nil
}

func (m *mockSongRepository) ListRecent(ctx context.Context, limit int) ([]model.Song, error) {
	m.listLimit = limit
	return m.songs, nil
}

type mockSearcher struct {
	tracks []model.Track
	err    error
	calls  int
}

func (m *mockSearcher) Search(ctx context.Context, query string) ([]model.Track, error) {
	m.calls++
	return m.tracks, m.err
}
