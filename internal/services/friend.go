package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/repos"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type FriendView struct {
	User      *types.User `json:"user"`
	RequestID uuid.UUID   `json:"request_id"`
}

type FriendService interface {
	SendRequest(ctx context.Context, fromUserID, toUserID uuid.UUID) (*types.FriendRequest, error)
	AcceptRequest(ctx context.Context, userID, requestID uuid.UUID) (*types.FriendRequest, error)
	DeclineRequest(ctx context.Context, userID, requestID uuid.UUID) error
	ListPending(ctx context.Context, userID uuid.UUID) ([]FriendView, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]FriendView, error)
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error
}

type friendService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	friendRepo repos.FriendRepo
}

func NewFriendService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	friendRepo repos.FriendRepo,
) FriendService {
	serviceLog := log.With("service", "FriendService")
	return &friendService{
		db:         db,
		log:        serviceLog,
		userRepo:   userRepo,
		friendRepo: friendRepo,
	}
}

func (s *friendService) SendRequest(ctx context.Context, fromUserID, toUserID uuid.UUID) (*types.FriendRequest, error) {
	if fromUserID == toUserID {
		return nil, apierr.Invalid("cannot friend yourself")
	}
	target, err := s.userRepo.GetByID(ctx, nil, toUserID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load target user: %w", err)
	}
	if target == nil {
		return nil, apierr.NotFound("user not found")
	}
	existing, err := s.friendRepo.GetBetween(ctx, nil, fromUserID, toUserID)
	if err != nil {
		return nil, fmt.Errorf("Failed to check existing request: %w", err)
	}
	if existing != nil {
		if existing.Status == types.FriendStatusAccepted {
			return nil, apierr.Conflict(apierr.CodeConflict, "already friends")
		}
		return nil, apierr.Conflict(apierr.CodeConflict, "request already pending")
	}
	request := &types.FriendRequest{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     types.FriendStatusPending,
	}
	created, err := s.friendRepo.Create(ctx, nil, request)
	if err != nil {
		return nil, fmt.Errorf("Failed to create friend request: %w", err)
	}
	s.log.Info("Friend request sent", "from", fromUserID, "to", toUserID)
	return created, nil
}

func (s *friendService) AcceptRequest(ctx context.Context, userID, requestID uuid.UUID) (*types.FriendRequest, error) {
	request, err := s.friendRepo.GetByID(ctx, nil, requestID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load friend request: %w", err)
	}
	if request == nil || request.ToUserID != userID {
		return nil, apierr.NotFound("friend request not found")
	}
	if request.Status != types.FriendStatusPending {
		return nil, apierr.Conflict(apierr.CodeConflict, "request is not pending")
	}
	if err := s.friendRepo.UpdateStatus(ctx, nil, requestID, types.FriendStatusAccepted); err != nil {
		return nil, fmt.Errorf("Failed to accept friend request: %w", err)
	}
	request.Status = types.FriendStatusAccepted
	s.log.Info("Friend request accepted", "request_id", requestID, "user_id", userID)
	return request, nil
}

func (s *friendService) DeclineRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	request, err := s.friendRepo.GetByID(ctx, nil, requestID)
	if err != nil {
		return fmt.Errorf("Failed to load friend request: %w", err)
	}
	if request == nil || request.ToUserID != userID {
		return apierr.NotFound("friend request not found")
	}
	if request.Status != types.FriendStatusPending {
		return apierr.Conflict(apierr.CodeConflict, "request is not pending")
	}
	return s.friendRepo.Delete(ctx, nil, requestID)
}

func (s *friendService) ListPending(ctx context.Context, userID uuid.UUID) ([]FriendView, error) {
	pending, err := s.friendRepo.ListPendingFor(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to list pending requests: %w", err)
	}
	return s.buildViews(ctx, userID, pending)
}

func (s *friendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]FriendView, error) {
	accepted, err := s.friendRepo.ListAcceptedFor(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to list friends: %w", err)
	}
	return s.buildViews(ctx, userID, accepted)
}

func (s *friendService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	request, err := s.friendRepo.GetBetween(ctx, nil, userID, friendID)
	if err != nil {
		return fmt.Errorf("Failed to load friendship: %w", err)
	}
	if request == nil || request.Status != types.FriendStatusAccepted {
		return apierr.NotFound("friendship not found")
	}
	return s.friendRepo.Delete(ctx, nil, request.ID)
}

func (s *friendService) buildViews(ctx context.Context, userID uuid.UUID, requests []types.FriendRequest) ([]FriendView, error) {
	otherIDs := make([]uuid.UUID, 0, len(requests))
	otherByRequest := map[uuid.UUID]uuid.UUID{}
	for _, r := range requests {
		other := r.FromUserID
		if other == userID {
			other = r.ToUserID
		}
		otherIDs = append(otherIDs, other)
		otherByRequest[r.ID] = other
	}
	users, err := s.userRepo.GetByIDs(ctx, nil, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("Failed to load users: %w", err)
	}
	byID := map[uuid.UUID]*types.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	views := make([]FriendView, 0, len(requests))
	for _, r := range requests {
		if u, ok := byID[otherByRequest[r.ID]]; ok {
			views = append(views, FriendView{User: u, RequestID: r.ID})
		}
	}
	return views, nil
}
