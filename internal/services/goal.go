package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/progression"
	"github.com/estuda-app/estuda-backend/internal/repos"
)

type WeeklyGoalView struct {
	Week               string `json:"week"`
	XPGoal             int    `json:"xp_goal"`
	MinutesGoal        int    `json:"minutes_goal"`
	ActivitiesGoal     int    `json:"activities_goal"`
	XPProgress         int    `json:"xp_progress"`
	MinutesProgress    int    `json:"minutes_progress"`
	ActivitiesProgress int    `json:"activities_progress"`
}

type WeeklyGoalTargets struct {
	XPGoal         *int `json:"xp_goal"`
	MinutesGoal    *int `json:"minutes_goal"`
	ActivitiesGoal *int `json:"activities_goal"`
}

type GoalService interface {
	GetWeeklyGoals(ctx context.Context, userID uuid.UUID) (*WeeklyGoalView, error)
	UpdateWeeklyGoals(ctx context.Context, userID uuid.UUID, targets WeeklyGoalTargets) (*WeeklyGoalView, error)
}

type goalService struct {
	db           *gorm.DB
	log          *logger.Logger
	goalRepo     repos.WeeklyGoalRepo
	dailyXPRepo  repos.DailyXPRepo
	activityRepo repos.ActivityRepo
}

func NewGoalService(
	db *gorm.DB,
	log *logger.Logger,
	goalRepo repos.WeeklyGoalRepo,
	dailyXPRepo repos.DailyXPRepo,
	activityRepo repos.ActivityRepo,
) GoalService {
	serviceLog := log.With("service", "GoalService")
	return &goalService{
		db:           db,
		log:          serviceLog,
		goalRepo:     goalRepo,
		dailyXPRepo:  dailyXPRepo,
		activityRepo: activityRepo,
	}
}

// elapsedWeekDays returns the study days from the week start through
// today. Future days never count toward progress.
func elapsedWeekDays(week string) []string {
	today := progression.Today()
	days := []string{}
	for _, d := range progression.WeekDays(week) {
		if d > today {
			break
		}
		days = append(days, d)
	}
	return days
}

func (s *goalService) GetWeeklyGoals(ctx context.Context, userID uuid.UUID) (*WeeklyGoalView, error) {
	week := progression.WeekStart(time.Now())
	goal, err := s.goalRepo.GetOrCreate(ctx, nil, userID, week)
	if err != nil {
		return nil, fmt.Errorf("Failed to load weekly goal: %w", err)
	}
	return s.buildView(ctx, userID, goal.Week, goal.XPGoal, goal.MinutesGoal, goal.ActivitiesGoal)
}

func (s *goalService) UpdateWeeklyGoals(ctx context.Context, userID uuid.UUID, targets WeeklyGoalTargets) (*WeeklyGoalView, error) {
	week := progression.WeekStart(time.Now())
	if _, err := s.goalRepo.GetOrCreate(ctx, nil, userID, week); err != nil {
		return nil, fmt.Errorf("Failed to load weekly goal: %w", err)
	}
	fields := map[string]interface{}{}
	if targets.XPGoal != nil {
		if *targets.XPGoal <= 0 {
			return nil, apierr.Invalid("xp_goal must be positive")
		}
		fields["xp_goal"] = *targets.XPGoal
	}
	if targets.MinutesGoal != nil {
		if *targets.MinutesGoal <= 0 {
			return nil, apierr.Invalid("minutes_goal must be positive")
		}
		fields["minutes_goal"] = *targets.MinutesGoal
	}
	if targets.ActivitiesGoal != nil {
		if *targets.ActivitiesGoal <= 0 {
			return nil, apierr.Invalid("activities_goal must be positive")
		}
		fields["activities_goal"] = *targets.ActivitiesGoal
	}
	goal, err := s.goalRepo.UpdateTargets(ctx, nil, userID, week, fields)
	if err != nil {
		return nil, fmt.Errorf("Failed to update weekly goal: %w", err)
	}
	return s.buildView(ctx, userID, goal.Week, goal.XPGoal, goal.MinutesGoal, goal.ActivitiesGoal)
}

func (s *goalService) buildView(ctx context.Context, userID uuid.UUID, week string, xpGoal, minutesGoal, activitiesGoal int) (*WeeklyGoalView, error) {
	days := elapsedWeekDays(week)

	ledger, err := s.dailyXPRepo.GetByUserDates(ctx, nil, userID, days)
	if err != nil {
		return nil, fmt.Errorf("Failed to read daily ledger: %w", err)
	}
	xpProgress := 0
	for _, entry := range ledger {
		xpProgress += entry.XP
	}

	completed, err := s.activityRepo.ListCompletedByUserDates(ctx, nil, userID, days)
	if err != nil {
		return nil, fmt.Errorf("Failed to read completed activities: %w", err)
	}
	minutesProgress := 0
	for _, a := range completed {
		minutesProgress += a.EstimatedTime
	}

	return &WeeklyGoalView{
		Week:               week,
		XPGoal:             xpGoal,
		MinutesGoal:        minutesGoal,
		ActivitiesGoal:     activitiesGoal,
		XPProgress:         xpProgress,
		MinutesProgress:    minutesProgress,
		ActivitiesProgress: len(completed),
	}, nil
}
