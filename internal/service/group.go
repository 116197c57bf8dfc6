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

type GroupService struct {
	groupRepo repository.GroupRepository
	urls      storage.URLResolver
}

func NewGroupService(groupRepo repository.GroupRepository, urls storage.URLResolver) *GroupService {
	return &GroupService{groupRepo: groupRepo, urls: urls}
}

// Create makes a new group with ownerID as its admin.
func (s *GroupService) Create(ctx context.Context, ownerID uuid.UUID, req model.CreateGroupRequest) (*model.Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Goal = strings.TrimSpace(req.Goal)
	if req.Name == "" {
		return nil, model.ErrGroupNameRequired
	}
	if utf8.RuneCountInString(req.Name) > model.MaxGroupNameLength {
		return nil, model.ErrGroupNameTooLong
	}
	if req.Goal == "" {
		return nil, model.ErrGroupGoalRequired
	}

	group, err := s.groupRepo.Create(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}

	log.Printf("[GroupService] User %s created group %s private=%t", ownerID, group.ID, group.IsPrivate)
	return group, nil
}

// Mine returns the groups userID belongs to.
func (s *GroupService) Mine(ctx context.Context, userID uuid.UUID) ([]model.Group, error) {
	return s.groupRepo.ListByMember(ctx, userID)
}

// Search matches public group names case-insensitively.
func (s *GroupService) Search(ctx context.Context, query string) ([]model.Group, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.ErrEmptySearchQuery
	}
	return s.groupRepo.SearchPublic(ctx, query, model.GroupSearchLimit)
}

// Join adds userID to a public group. Joining twice is a no-op.
func (s *GroupService) Join(ctx context.Context, groupID, userID uuid.UUID) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.IsPrivate {
		return model.ErrGroupPrivate
	}

	added, err := s.groupRepo.AddMember(ctx, groupID, userID, model.RoleMember)
	if err != nil {
		return err
	}
	if added {
		log.Printf("[GroupService] User %s joined group %s", userID, groupID)
	}
	return nil
}

// Leave removes userID from a group. The owner cannot leave.
func (s *GroupService) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID == userID {
		return model.ErrOwnerCannotLeave
	}

	removed, err := s.groupRepo.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return model.ErrNotGroupMember
	}

	log.Printf("[GroupService] User %s left group %s", userID, groupID)
	return nil
}

// Members lists a group's members with avatar URLs.
func (s *GroupService) Members(ctx context.Context, groupID uuid.UUID) ([]model.GroupMember, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	members, err := s.groupRepo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	for i := range members {
		members[i].Profile.AvatarURL = resolveAvatar(ctx, s.urls, members[i].Profile.AvatarPath)
	}
	return members, nil
}
