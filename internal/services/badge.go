package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/repos"
)

// BadgeDef is a catalog entry. Unlock is nil for badges that are only
// granted through other paths.
type BadgeDef struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Icon        string                  `json:"icon"`
	Unlock      func(s BadgeStats) bool `json:"-"`
}

// BadgeStats is the aggregate snapshot the rule table evaluates against.
type BadgeStats struct {
	CompletedCount int
	Streak         int
	Level          int
}

type BadgeView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Earned      bool   `json:"earned"`
}

// BadgeCatalog is the full set of badges. Adding a badge is a new entry
// here, not new evaluation code.
var BadgeCatalog = []BadgeDef{
	{ID: "first_activity", Name: "First Steps", Description: "Complete your first activity", Icon: "🎯",
		Unlock: func(s BadgeStats) bool { return s.CompletedCount >= 1 }},
	{ID: "streak_7", Name: "Week Warrior", Description: "Keep a 7 day streak", Icon: "🔥",
		Unlock: func(s BadgeStats) bool { return s.Streak >= 7 }},
	{ID: "streak_30", Name: "Unstoppable", Description: "Keep a 30 day streak", Icon: "⚡",
		Unlock: func(s BadgeStats) bool { return s.Streak >= 30 }},
	{ID: "activities_100", Name: "Centurion", Description: "Complete 100 activities", Icon: "💯",
		Unlock: func(s BadgeStats) bool { return s.CompletedCount >= 100 }},
	{ID: "level_10", Name: "Rising Star", Description: "Reach level 10", Icon: "⭐",
		Unlock: func(s BadgeStats) bool { return s.Level >= 10 }},
	{ID: "level_25", Name: "Silver Scholar", Description: "Reach level 25", Icon: "🥈",
		Unlock: func(s BadgeStats) bool { return s.Level >= 25 }},
	{ID: "level_50", Name: "Golden Mind", Description: "Reach level 50", Icon: "🥇",
		Unlock: func(s BadgeStats) bool { return s.Level >= 50 }},
	{ID: "hours_10", Name: "Deep Focus", Description: "Study for 10 hours total", Icon: "⏳"},
	{ID: "weekly_goal", Name: "Goal Getter", Description: "Hit a weekly goal", Icon: "🏆"},
}

type BadgeService interface {
	EvaluateAndAward(ctx context.Context, userID uuid.UUID) ([]string, error)
	GetBadges(ctx context.Context, userID uuid.UUID) ([]BadgeView, error)
}

type badgeService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	activityRepo  repos.ActivityRepo
	userBadgeRepo repos.UserBadgeRepo
}

func NewBadgeService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	activityRepo repos.ActivityRepo,
	userBadgeRepo repos.UserBadgeRepo,
) BadgeService {
	serviceLog := log.With("service", "BadgeService")
	return &badgeService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		activityRepo:  activityRepo,
		userBadgeRepo: userBadgeRepo,
	}
}

// EvaluateAndAward runs the rule table against current aggregates and
// grants every newly satisfied badge. Grants are write-once; rules are
// never re-evaluated to revoke.
func (bs *badgeService) EvaluateAndAward(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := bs.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load user for badge evaluation: %w", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user not found")
	}
	completed, err := bs.activityRepo.CountCompletedByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to count completed activities: %w", err)
	}
	stats := BadgeStats{
		CompletedCount: int(completed),
		Streak:         user.Streak,
		Level:          user.Level,
	}

	earned, err := bs.userBadgeRepo.ListBadgeIDs(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to list earned badges: %w", err)
	}
	earnedSet := map[string]bool{}
	for _, id := range earned {
		earnedSet[id] = true
	}

	newlyEarned := []string{}
	for _, def := range BadgeCatalog {
		if def.Unlock == nil || earnedSet[def.ID] || !def.Unlock(stats) {
			continue
		}
		created, awErr := bs.userBadgeRepo.Award(ctx, nil, userID, def.ID)
		if awErr != nil {
			return nil, fmt.Errorf("Failed to award badge %s: %w", def.ID, awErr)
		}
		if created {
			bs.log.Info("Badge awarded", "user_id", userID, "badge_id", def.ID)
			newlyEarned = append(newlyEarned, def.ID)
		}
	}
	return newlyEarned, nil
}

func (bs *badgeService) GetBadges(ctx context.Context, userID uuid.UUID) ([]BadgeView, error) {
	earned, err := bs.userBadgeRepo.ListBadgeIDs(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to list earned badges: %w", err)
	}
	earnedSet := map[string]bool{}
	for _, id := range earned {
		earnedSet[id] = true
	}
	views := make([]BadgeView, 0, len(BadgeCatalog))
	for _, def := range BadgeCatalog {
		views = append(views, BadgeView{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Earned:      earnedSet[def.ID],
		})
	}
	return views, nil
}
