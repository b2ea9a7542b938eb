package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/repos"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type ClanInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Photo       string `json:"photo"`
	Banner      string `json:"banner"`
}

type ClanView struct {
	Clan    *types.Clan   `json:"clan"`
	Members []*types.User `json:"members"`
}

type ClanService interface {
	CreateClan(ctx context.Context, leaderID uuid.UUID, input ClanInput) (*types.Clan, error)
	GetClan(ctx context.Context, clanID uuid.UUID) (*ClanView, error)
	JoinClan(ctx context.Context, userID, clanID uuid.UUID) (*types.Clan, error)
	LeaveClan(ctx context.Context, userID uuid.UUID) error
}

type clanService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	clanRepo repos.ClanRepo
}

func NewClanService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	clanRepo repos.ClanRepo,
) ClanService {
	serviceLog := log.With("service", "ClanService")
	return &clanService{
		db:       db,
		log:      serviceLog,
		userRepo: userRepo,
		clanRepo: clanRepo,
	}
}

func (s *clanService) CreateClan(ctx context.Context, leaderID uuid.UUID, input ClanInput) (*types.Clan, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apierr.Invalid("clan name required")
	}

	var clan *types.Clan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		leader, uErr := s.userRepo.GetByIDForUpdate(ctx, tx, leaderID)
		if uErr != nil {
			return fmt.Errorf("Failed to lock user row: %w", uErr)
		}
		if leader == nil {
			return apierr.NotFound("user not found")
		}
		if leader.ClanID != nil {
			return apierr.Conflict(apierr.CodeConflict, "already in a clan")
		}
		exists, nErr := s.clanRepo.NameExists(ctx, tx, name)
		if nErr != nil {
			return fmt.Errorf("Failed to check clan name: %w", nErr)
		}
		if exists {
			return apierr.Conflict(apierr.CodeConflict, "clan name already taken")
		}

		clan = &types.Clan{
			ID:          uuid.New(),
			Name:        name,
			Description: input.Description,
			Photo:       input.Photo,
			Banner:      input.Banner,
			LeaderID:    leaderID,
		}
		clan.SetMemberList([]string{leaderID.String()})
		if _, cErr := s.clanRepo.Create(ctx, tx, clan); cErr != nil {
			return fmt.Errorf("Failed to create clan: %w", cErr)
		}
		if upErr := s.userRepo.UpdateFields(ctx, tx, leaderID, map[string]interface{}{"clan_id": clan.ID}); upErr != nil {
			return fmt.Errorf("Failed to link leader to clan: %w", upErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Clan created", "clan_id", clan.ID, "leader_id", leaderID)
	return clan, nil
}

func (s *clanService) GetClan(ctx context.Context, clanID uuid.UUID) (*ClanView, error) {
	clan, err := s.clanRepo.GetByID(ctx, nil, clanID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load clan: %w", err)
	}
	if clan == nil {
		return nil, apierr.NotFound("clan not found")
	}
	memberIDs := []uuid.UUID{}
	for _, raw := range clan.MemberList() {
		if id, pErr := uuid.Parse(raw); pErr == nil {
			memberIDs = append(memberIDs, id)
		}
	}
	members, err := s.userRepo.GetByIDs(ctx, nil, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("Failed to load clan members: %w", err)
	}
	return &ClanView{Clan: clan, Members: members}, nil
}

func (s *clanService) JoinClan(ctx context.Context, userID, clanID uuid.UUID) (*types.Clan, error) {
	var clan *types.Clan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, uErr := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if uErr != nil {
			return fmt.Errorf("Failed to lock user row: %w", uErr)
		}
		if user == nil {
			return apierr.NotFound("user not found")
		}
		if user.ClanID != nil {
			return apierr.Conflict(apierr.CodeConflict, "already in a clan")
		}
		var cErr error
		clan, cErr = s.clanRepo.GetByID(ctx, tx, clanID)
		if cErr != nil {
			return fmt.Errorf("Failed to load clan: %w", cErr)
		}
		if clan == nil {
			return apierr.NotFound("clan not found")
		}

		members := clan.MemberList()
		members = append(members, userID.String())
		clan.SetMemberList(members)
		if upErr := s.clanRepo.UpdateFields(ctx, tx, clanID, map[string]interface{}{"members": clan.Members}); upErr != nil {
			return fmt.Errorf("Failed to add clan member: %w", upErr)
		}
		if upErr := s.userRepo.UpdateFields(ctx, tx, userID, map[string]interface{}{"clan_id": clanID}); upErr != nil {
			return fmt.Errorf("Failed to link user to clan: %w", upErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("User joined clan", "user_id", userID, "clan_id", clanID)
	return clan, nil
}

func (s *clanService) LeaveClan(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, uErr := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if uErr != nil {
			return fmt.Errorf("Failed to lock user row: %w", uErr)
		}
		if user == nil {
			return apierr.NotFound("user not found")
		}
		if user.ClanID == nil {
			return apierr.Conflict(apierr.CodeConflict, "not in a clan")
		}
		clan, cErr := s.clanRepo.GetByID(ctx, tx, *user.ClanID)
		if cErr != nil {
			return fmt.Errorf("Failed to load clan: %w", cErr)
		}
		if clan != nil {
			members := []string{}
			for _, m := range clan.MemberList() {
				if m != userID.String() {
					members = append(members, m)
				}
			}
			if len(members) == 0 {
				if dErr := s.clanRepo.Delete(ctx, tx, clan.ID); dErr != nil {
					return fmt.Errorf("Failed to delete empty clan: %w", dErr)
				}
			} else {
				clan.SetMemberList(members)
				updates := map[string]interface{}{"members": clan.Members}
				if clan.LeaderID == userID {
					if newLeader, pErr := uuid.Parse(members[0]); pErr == nil {
						updates["leader_id"] = newLeader
					}
				}
				if upErr := s.clanRepo.UpdateFields(ctx, tx, clan.ID, updates); upErr != nil {
					return fmt.Errorf("Failed to remove clan member: %w", upErr)
				}
			}
		}
		return s.userRepo.UpdateFields(ctx, tx, userID, map[string]interface{}{"clan_id": nil})
	})
	if err != nil {
		return err
	}
	s.log.Info("User left clan", "user_id", userID)
	return nil
}
