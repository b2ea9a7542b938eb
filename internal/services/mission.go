package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/progression"
	"github.com/estuda-app/estuda-backend/internal/repos"
	"github.com/estuda-app/estuda-backend/internal/types"
)

const defaultMissionSubject = "Matemática"

type MissionClaimResult struct {
	XP        int               `json:"xp"`
	TotalXP   int               `json:"total_xp"`
	LevelInfo progression.Level `json:"level_info"`
}

type MissionService interface {
	GetMissions(ctx context.Context, userID uuid.UUID) ([]types.Mission, error)
	ClaimMission(ctx context.Context, userID uuid.UUID, missionID string) (*MissionClaimResult, error)
}

type missionService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	activityRepo repos.ActivityRepo
	missionRepo  repos.MissionSetRepo
	badgeService BadgeService

	// generation dedupes concurrent first reads for the same (user, day)
	generation singleflight.Group
}

func NewMissionService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	activityRepo repos.ActivityRepo,
	missionRepo repos.MissionSetRepo,
	badgeService BadgeService,
) MissionService {
	serviceLog := log.With("service", "MissionService")
	return &missionService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		missionRepo:  missionRepo,
		badgeService: badgeService,
	}
}

// generateMissions builds the fixed daily set. Targets and rewards are
// frozen once the row is written; only the subject pick is randomized.
func generateMissions(user *types.User) []types.Mission {
	subjects := user.SubjectList()
	subject := defaultMissionSubject
	if len(subjects) > 0 {
		subject = subjects[rand.Intn(len(subjects))]
	}
	return []types.Mission{
		{ID: "m1", Title: "Complete 3 atividades", Type: types.MissionTypeActivities, Target: 3, Reward: 100},
		{ID: "m2", Title: "Estude " + subject, Type: types.MissionTypeSubject, Subject: subject, Target: 1, Reward: 75},
		{ID: "m3", Title: "Estude 60 minutos", Type: types.MissionTypeTime, Target: 60, Reward: 150},
	}
}

func (s *missionService) getOrCreateSet(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.MissionSet, error) {
	existing, err := s.missionRepo.Get(ctx, tx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("Failed to load mission set: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	key := userID.String() + ":" + date
	created, err, _ := s.generation.Do(key, func() (interface{}, error) {
		user, uErr := s.userRepo.GetByID(ctx, tx, userID)
		if uErr != nil {
			return nil, fmt.Errorf("Failed to load user for mission generation: %w", uErr)
		}
		if user == nil {
			return nil, apierr.NotFound("user not found")
		}
		seed := &types.MissionSet{}
		seed.SetMissionList(generateMissions(user))
		return s.missionRepo.GetOrCreate(ctx, tx, userID, date, seed)
	})
	if err != nil {
		return nil, err
	}
	return created.(*types.MissionSet), nil
}

// recomputeProgress derives progress and completion from today's
// completed activities; claimed flags and targets pass through untouched.
// The subject mission is a study suggestion, so any completion today
// counts toward it regardless of the activity's subject.
func recomputeProgress(missions []types.Mission, completed []*types.Activity) []types.Mission {
	count := len(completed)
	minutes := 0
	for _, a := range completed {
		minutes += a.EstimatedTime
	}
	out := make([]types.Mission, len(missions))
	for i, m := range missions {
		switch m.Type {
		case types.MissionTypeActivities:
			m.Progress = count
		case types.MissionTypeSubject:
			m.Progress = 0
			if count > 0 {
				m.Progress = 1
			}
		case types.MissionTypeTime:
			m.Progress = minutes
		}
		if m.Progress > m.Target {
			m.Progress = m.Target
		}
		m.Completed = m.Progress >= m.Target
		out[i] = m
	}
	return out
}

func (s *missionService) GetMissions(ctx context.Context, userID uuid.UUID) ([]types.Mission, error) {
	today := progression.Today()
	set, err := s.getOrCreateSet(ctx, nil, userID, today)
	if err != nil {
		return nil, err
	}
	completed, err := s.activityRepo.ListCompletedByUserDates(ctx, nil, userID, []string{today})
	if err != nil {
		return nil, fmt.Errorf("Failed to load completed activities: %w", err)
	}
	return recomputeProgress(set.MissionList(), completed), nil
}

func (s *missionService) ClaimMission(ctx context.Context, userID uuid.UUID, missionID string) (*MissionClaimResult, error) {
	today := progression.Today()

	var result MissionClaimResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, uErr := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if uErr != nil {
			return fmt.Errorf("Failed to lock user row: %w", uErr)
		}
		if user == nil {
			return apierr.NotFound("user not found")
		}

		set, gErr := s.missionRepo.Get(ctx, tx, userID, today)
		if gErr != nil {
			return fmt.Errorf("Failed to load mission set: %w", gErr)
		}
		if set == nil {
			return apierr.NotFound("no missions generated for today")
		}

		completed, cErr := s.activityRepo.ListCompletedByUserDates(ctx, tx, userID, []string{today})
		if cErr != nil {
			return fmt.Errorf("Failed to load completed activities: %w", cErr)
		}
		missions := recomputeProgress(set.MissionList(), completed)

		idx := -1
		for i, m := range missions {
			if m.ID == missionID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apierr.NotFound("mission not found")
		}
		mission := missions[idx]
		if mission.Claimed {
			return apierr.Conflict(apierr.CodeAlreadyClaimed, "mission reward already claimed")
		}
		if !mission.Completed {
			return apierr.Conflict(apierr.CodeNotCompleted, "mission not completed yet")
		}

		missions[idx].Claimed = true
		set.SetMissionList(missions)
		if svErr := s.missionRepo.SaveMissions(ctx, tx, set); svErr != nil {
			return fmt.Errorf("Failed to persist mission claim: %w", svErr)
		}

		newLevelXP := user.LevelXP + mission.Reward
		newTotalXP := user.TotalXP + mission.Reward
		info := progression.LevelInfo(newLevelXP)
		if upErr := s.userRepo.UpdateProgress(ctx, tx, userID, newLevelXP, newTotalXP, info.Level, user.Streak, user.LastActivityDate); upErr != nil {
			return fmt.Errorf("Failed to grant mission reward: %w", upErr)
		}

		result = MissionClaimResult{
			XP:        mission.Reward,
			TotalXP:   newTotalXP,
			LevelInfo: info,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.badgeService != nil {
		if _, bErr := s.badgeService.EvaluateAndAward(ctx, userID); bErr != nil {
			s.log.Warn("Badge evaluation failed after claim", "error", bErr, "user_id", userID)
		}
	}

	s.log.Info("Mission claimed", "user_id", userID, "mission_id", missionID, "xp", result.XP)
	return &result, nil
}
