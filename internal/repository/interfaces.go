package repository

import (
	"context"

	"github.com/google/uuid"

	"peerform/internal/model"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	// GetSummaries returns the summaries for ids in input order, skipping unknown ids.
	GetSummaries(ctx context.Context, ids []uuid.UUID) ([]model.ProfileSummary, error)
	Search(ctx context.Context, query string, excludeID *uuid.UUID, limit int) ([]model.ProfileSummary, error)
	ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.Profile, error)
}

type PostRepository interface {
	Create(ctx context.Context, userID uuid.UUID, req model.CreatePostRequest) (*model.Post, error)
	GetByID(ctx context.Context, postID uuid.UUID) (*model.Post, error)
	Delete(ctx context.Context, postID, userID uuid.UUID) error
	// List returns posts matching filter newest first. Limit <= 0 means unbounded.
	List(ctx context.Context, filter model.FeedFilter) ([]model.Post, error)
	Exists(ctx context.Context, postID uuid.UUID) (bool, error)
	GetAuthorID(ctx context.Context, postID uuid.UUID) (uuid.UUID, error)
	CountComments(ctx context.Context, postID uuid.UUID) (int, error)
	CountLikes(ctx context.Context, postID uuid.UUID) (int, error)
}

type LikeRepository interface {
	// Insert reports false when the like was already present.
	Insert(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	// Delete reports false when there was nothing to delete.
	Delete(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	Exists(ctx context.Context, userID, postID uuid.UUID) (bool, error)
}

type FollowRepository interface {
	Insert(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, userID uuid.UUID) (int, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int, error)
	GetFollowers(ctx context.Context, userID uuid.UUID) ([]model.ProfileSummary, error)
	GetFollowing(ctx context.Context, userID uuid.UUID) ([]model.ProfileSummary, error)
	GetFollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CheckFollows(ctx context.Context, followerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, postID, userID uuid.UUID, content string) (*model.Comment, error)
	// Delete removes a comment owned by userID and returns its post.
	Delete(ctx context.Context, commentID, userID uuid.UUID) (uuid.UUID, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
}

type StatsRepository interface {
	FetchWorkoutStats(ctx context.Context, accountID uuid.UUID) (model.WorkoutStats, error)
}

type GroupRepository interface {
	// Create inserts the group and its owner as admin in one transaction.
	Create(ctx context.Context, ownerID uuid.UUID, req model.CreateGroupRequest) (*model.Group, error)
	GetByID(ctx context.Context, groupID uuid.UUID) (*model.Group, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]model.Group, error)
	SearchPublic(ctx context.Context, query string, limit int) ([]model.Group, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID, role string) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.GroupMember, error)
	GetMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, userID uuid.UUID, title, body string) error
	List(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}

type SongRepository interface {
	Create(ctx context.Context, userID uuid.UUID, req model.AddSongRequest) (*model.Song, error)
	ListRecent(ctx context.Context, limit int) ([]model.Song, error)
}

type DeviceTokenRepository interface {
	// Upsert registers a token, moving it to userID if another account held it.
	Upsert(ctx context.Context, userID uuid.UUID, token, platform string) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]model.DeviceToken, error)
	Delete(ctx context.Context, userID uuid.UUID, token string) error
}
