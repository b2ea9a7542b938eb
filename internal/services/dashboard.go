package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/progression"
	"github.com/estuda-app/estuda-backend/internal/repos"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type DayXPPoint struct {
	Date string `json:"date"`
	XP   int    `json:"xp"`
}

type DashboardView struct {
	LevelInfo      progression.Level   `json:"level_info"`
	TotalXP        int                 `json:"total_xp"`
	Streak         int                 `json:"streak"`
	TodayXP        int                 `json:"today_xp"`
	PendingToday   int                 `json:"pending_today"`
	CompletedToday int                 `json:"completed_today"`
	Last7Days      []DayXPPoint        `json:"last_7_days"`
	SubjectStats   []repos.SubjectStat `json:"subject_stats"`
	WeeklyGoals    *WeeklyGoalView     `json:"weekly_goals"`
	Missions       []types.Mission     `json:"missions"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context, userID uuid.UUID) (*DashboardView, error)
}

type dashboardService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	activityRepo   repos.ActivityRepo
	dailyXPRepo    repos.DailyXPRepo
	goalService    GoalService
	missionService MissionService
}

func NewDashboardService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	activityRepo repos.ActivityRepo,
	dailyXPRepo repos.DailyXPRepo,
	goalService GoalService,
	missionService MissionService,
) DashboardService {
	serviceLog := log.With("service", "DashboardService")
	return &dashboardService{
		db:             db,
		log:            serviceLog,
		userRepo:       userRepo,
		activityRepo:   activityRepo,
		dailyXPRepo:    dailyXPRepo,
		goalService:    goalService,
		missionService: missionService,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uuid.UUID) (*DashboardView, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load user: %w", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user not found")
	}

	today := progression.Today()
	days := progression.LastNDays(7)

	ledger, err := s.dailyXPRepo.GetByUserDates(ctx, nil, userID, days)
	if err != nil {
		return nil, fmt.Errorf("Failed to read daily ledger: %w", err)
	}
	xpByDay := map[string]int{}
	for _, entry := range ledger {
		xpByDay[entry.Date] = entry.XP
	}
	chart := make([]DayXPPoint, 0, len(days))
	for _, d := range days {
		chart = append(chart, DayXPPoint{Date: d, XP: xpByDay[d]})
	}

	pendingToday, err := s.activityRepo.CountByUserDateStatus(ctx, nil, userID, today, types.ActivityStatusPending)
	if err != nil {
		return nil, fmt.Errorf("Failed to count pending activities: %w", err)
	}
	completedToday, err := s.activityRepo.CountByUserDateStatus(ctx, nil, userID, today, types.ActivityStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("Failed to count completed activities: %w", err)
	}
	subjectStats, err := s.activityRepo.SubjectStats(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to read subject stats: %w", err)
	}

	goals, err := s.goalService.GetWeeklyGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	missions, err := s.missionService.GetMissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &DashboardView{
		LevelInfo:      progression.LevelInfo(user.LevelXP),
		TotalXP:        user.TotalXP,
		Streak:         user.Streak,
		TodayXP:        xpByDay[today],
		PendingToday:   int(pendingToday),
		CompletedToday: int(completedToday),
		Last7Days:      chart,
		SubjectStats:   subjectStats,
		WeeklyGoals:    goals,
		Missions:       missions,
	}, nil
}
