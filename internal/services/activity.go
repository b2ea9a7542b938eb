package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/clients/redis"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/progression"
	"github.com/estuda-app/estuda-backend/internal/repos"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type ActivityInput struct {
	Title         string   `json:"title"`
	Subject       string   `json:"subject"`
	Description   string   `json:"description"`
	Difficulty    int      `json:"difficulty"`
	EstimatedTime int      `json:"estimated_time"`
	Checklist     []string `json:"checklist"`
	ImageURL      string   `json:"image_url"`
}

// CompletionResult is returned by CompleteActivity. XPEarned includes the
// queue-clear bonus when granted.
type CompletionResult struct {
	XPEarned  int               `json:"xp_earned"`
	LeveledUp bool              `json:"leveled_up"`
	NewLevel  int               `json:"new_level"`
	LevelInfo progression.Level `json:"level_info"`
	Streak    int               `json:"streak"`
	TotalXP   int               `json:"total_xp"`
	NewBadges []string          `json:"new_badges"`
}

type ActivityService interface {
	CreateActivity(ctx context.Context, userID uuid.UUID, input ActivityInput) (*types.Activity, error)
	GetActivity(ctx context.Context, userID, activityID uuid.UUID) (*types.Activity, error)
	ListActivities(ctx context.Context, userID uuid.UUID, filter repos.ActivityFilter) ([]*types.Activity, error)
	UpdateActivity(ctx context.Context, userID, activityID uuid.UUID, fields map[string]interface{}) (*types.Activity, error)
	DeleteActivity(ctx context.Context, userID, activityID uuid.UUID) error
	SetActualTime(ctx context.Context, userID, activityID uuid.UUID, start, end *string) (*types.Activity, error)
	CompleteActivity(ctx context.Context, userID, activityID uuid.UUID) (*CompletionResult, error)
}

type activityService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	activityRepo repos.ActivityRepo
	dailyXPRepo  repos.DailyXPRepo
	fraudLogRepo repos.FraudLogRepo
	clanRepo     repos.ClanRepo
	badgeService BadgeService
	leaderboard  redis.Leaderboard
}

func NewActivityService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	activityRepo repos.ActivityRepo,
	dailyXPRepo repos.DailyXPRepo,
	fraudLogRepo repos.FraudLogRepo,
	clanRepo repos.ClanRepo,
	badgeService BadgeService,
	leaderboard redis.Leaderboard,
) ActivityService {
	serviceLog := log.With("service", "ActivityService")
	return &activityService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		dailyXPRepo:  dailyXPRepo,
		fraudLogRepo: fraudLogRepo,
		clanRepo:     clanRepo,
		badgeService: badgeService,
		leaderboard:  leaderboard,
	}
}

func encodeChecklist(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	raw, _ := json.Marshal(items)
	return raw
}

const titleVowels = "aeiouáéíóúâêîôûãõAEIOUÁÉÍÓÚÂÊÎÔÛÃÕ"

// short letter prefix followed by digits, e.g. "ab1234"
var spamTitlePattern = regexp.MustCompile(`^[a-zA-Z]{1,3}[0-9]+$`)

// validateTitle filters out gibberish and keyboard-mash titles before an
// activity enters the XP pipeline.
func validateTitle(title string) error {
	runes := []rune(title)
	if len(runes) < 4 {
		return apierr.Invalid("title must have at least 4 characters")
	}
	if !strings.ContainsAny(title, titleVowels) {
		return apierr.Invalid("title must contain at least one vowel")
	}
	if runes[0] == runes[1] && runes[1] == runes[2] && runes[2] == runes[3] {
		return apierr.Invalid("title starts with excessive repetition")
	}
	if spamTitlePattern.MatchString(title) {
		return apierr.Invalid("title looks like spam")
	}
	return nil
}

func clampDifficulty(d int) int {
	if d < 1 {
		return 1
	}
	if d > 5 {
		return 5
	}
	return d
}

func (s *activityService) CreateActivity(ctx context.Context, userID uuid.UUID, input ActivityInput) (*types.Activity, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	today := progression.Today()

	// Duplicate-title guards keep copy-paste farming out of the ledger.
	sameDay, err := s.activityRepo.CountByUserTitleDate(ctx, nil, userID, title, today)
	if err != nil {
		return nil, fmt.Errorf("Failed to check same-day titles: %w", err)
	}
	if sameDay > 0 {
		return nil, apierr.Invalid("an activity with this title already exists today")
	}
	weekCount, err := s.activityRepo.CountByUserTitleSince(ctx, nil, userID, title, time.Now().UTC().AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("Failed to check weekly titles: %w", err)
	}
	if weekCount >= 5 {
		return nil, apierr.Invalid("too many activities with this title this week")
	}

	estimated := input.EstimatedTime
	if estimated <= 0 {
		estimated = 30
	}
	activity := &types.Activity{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         title,
		Subject:       strings.TrimSpace(input.Subject),
		Description:   input.Description,
		Difficulty:    clampDifficulty(input.Difficulty),
		EstimatedTime: estimated,
		ImageURL:      input.ImageURL,
		Status:        types.ActivityStatusPending,
		Date:          today,
	}
	activity.Checklist = encodeChecklist(input.Checklist)
	created, err := s.activityRepo.Create(ctx, nil, []*types.Activity{activity})
	if err != nil {
		return nil, fmt.Errorf("Failed to create activity: %w", err)
	}
	return created[0], nil
}

func (s *activityService) GetActivity(ctx context.Context, userID, activityID uuid.UUID) (*types.Activity, error) {
	activity, err := s.activityRepo.GetByIDForUser(ctx, nil, activityID, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load activity: %w", err)
	}
	if activity == nil {
		return nil, apierr.NotFound("activity not found")
	}
	return activity, nil
}

func (s *activityService) ListActivities(ctx context.Context, userID uuid.UUID, filter repos.ActivityFilter) ([]*types.Activity, error) {
	return s.activityRepo.List(ctx, nil, userID, filter, 200)
}

func (s *activityService) UpdateActivity(ctx context.Context, userID, activityID uuid.UUID, fields map[string]interface{}) (*types.Activity, error) {
	activity, err := s.GetActivity(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	if activity.Status == types.ActivityStatusCompleted {
		return nil, apierr.Conflict(apierr.CodeAlreadyCompleted, "completed activities are immutable")
	}
	allowed := map[string]bool{
		"title": true, "subject": true, "description": true,
		"difficulty": true, "estimated_time": true, "checklist": true,
		"image_url": true,
	}
	updates := map[string]interface{}{}
	for k, v := range fields {
		if allowed[k] {
			updates[k] = v
		}
	}
	if d, ok := updates["difficulty"]; ok {
		if di, ok := d.(int); ok {
			updates["difficulty"] = clampDifficulty(di)
		}
	}
	if err := s.activityRepo.UpdateFields(ctx, nil, activityID, updates); err != nil {
		return nil, fmt.Errorf("Failed to update activity: %w", err)
	}
	return s.GetActivity(ctx, userID, activityID)
}

func (s *activityService) DeleteActivity(ctx context.Context, userID, activityID uuid.UUID) error {
	deleted, err := s.activityRepo.DeleteByIDForUser(ctx, nil, activityID, userID)
	if err != nil {
		return fmt.Errorf("Failed to delete activity: %w", err)
	}
	if !deleted {
		return apierr.NotFound("activity not found")
	}
	return nil
}

func (s *activityService) SetActualTime(ctx context.Context, userID, activityID uuid.UUID, start, end *string) (*types.Activity, error) {
	activity, err := s.GetActivity(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	if activity.Status == types.ActivityStatusCompleted {
		return nil, apierr.Conflict(apierr.CodeAlreadyCompleted, "completed activities are immutable")
	}
	updates := map[string]interface{}{}
	if start != nil {
		updates["actual_time_start"] = *start
	}
	if end != nil {
		updates["actual_time_end"] = *end
	}
	if err := s.activityRepo.UpdateFields(ctx, nil, activityID, updates); err != nil {
		return nil, fmt.Errorf("Failed to set actual time: %w", err)
	}
	return s.GetActivity(ctx, userID, activityID)
}

// CompleteActivity is the single entry point that mutates progression
// state. The whole transition runs in one transaction with the user row
// locked, so concurrent completions for the same user serialize. If
// anything fails the activity stays pending and no partial XP, streak or
// ledger write is observable.
func (s *activityService) CompleteActivity(ctx context.Context, userID, activityID uuid.UUID) (*CompletionResult, error) {
	activity, err := s.GetActivity(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	if activity.Status == types.ActivityStatusCompleted {
		return nil, apierr.Conflict(apierr.CodeAlreadyCompleted, "activity already completed")
	}

	minutes, fraud := progression.EffectiveDuration(activity.ActualTimeStart, activity.ActualTimeEnd, activity.EstimatedTime)
	if fraud {
		// The audit row is written outside the completion path so the
		// rejection itself cannot roll it back.
		if _, flErr := s.fraudLogRepo.Create(ctx, nil, &types.FraudLog{
			UserID:     userID,
			ActivityID: activityID,
			Reason:     progression.FraudReasonDuration,
		}); flErr != nil {
			s.log.Error("Failed to write fraud log", "error", flErr, "activity_id", activityID)
		}
		s.log.Warn("Completion rejected by fraud guard", "user_id", userID, "activity_id", activityID)
		return nil, apierr.New(http.StatusUnprocessableEntity, apierr.CodeFraudRejected, fmt.Errorf("reported duration exceeds %d minutes", progression.MaxPlausibleMinutes))
	}

	today := progression.Today()
	yesterday := progression.Yesterday()

	var result CompletionResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, uErr := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if uErr != nil {
			return fmt.Errorf("Failed to lock user row: %w", uErr)
		}
		if user == nil {
			return apierr.NotFound("user not found")
		}

		completedToday, cErr := s.activityRepo.CountByUserDateStatus(ctx, tx, userID, today, types.ActivityStatusCompleted)
		if cErr != nil {
			return fmt.Errorf("Failed to count completed activities: %w", cErr)
		}
		pendingToday, pErr := s.activityRepo.CountByUserDateStatus(ctx, tx, userID, today, types.ActivityStatusPending)
		if pErr != nil {
			return fmt.Errorf("Failed to count pending activities: %w", pErr)
		}

		streak := progression.NextStreak(user.Streak, user.LastActivityDate, today, yesterday)
		xp := progression.XP(minutes, activity.Difficulty, streak, int(completedToday))
		if pendingToday <= 1 {
			xp += progression.DayClearBonus
		}

		transitioned, mcErr := s.activityRepo.MarkCompleted(ctx, tx, activityID, xp, time.Now().UTC())
		if mcErr != nil {
			return fmt.Errorf("Failed to mark activity completed: %w", mcErr)
		}
		if !transitioned {
			return apierr.Conflict(apierr.CodeAlreadyCompleted, "activity already completed")
		}

		// Derive the previous level from level_xp; the level column is a
		// denormalized cache, never an input.
		oldLevel := progression.LevelInfo(user.LevelXP).Level
		newLevelXP := user.LevelXP + xp
		newTotalXP := user.TotalXP + xp
		info := progression.LevelInfo(newLevelXP)

		if upErr := s.userRepo.UpdateProgress(ctx, tx, userID, newLevelXP, newTotalXP, info.Level, streak, today); upErr != nil {
			return fmt.Errorf("Failed to update user progression: %w", upErr)
		}

		if lErr := s.dailyXPRepo.Accumulate(ctx, tx, userID, today, xp, user.DisplayName, user.AvatarURL); lErr != nil {
			return fmt.Errorf("Failed to accumulate daily xp: %w", lErr)
		}

		if user.ClanID != nil {
			if clErr := s.clanRepo.AddTotalXP(ctx, tx, *user.ClanID, xp); clErr != nil {
				return fmt.Errorf("Failed to add clan xp: %w", clErr)
			}
		}

		result = CompletionResult{
			XPEarned:  xp,
			LeveledUp: info.Level > oldLevel,
			NewLevel:  info.Level,
			LevelInfo: info,
			Streak:    streak,
			TotalXP:   newTotalXP,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects are best effort; progression state is
	// already durable.
	if s.badgeService != nil {
		newBadges, bErr := s.badgeService.EvaluateAndAward(ctx, userID)
		if bErr != nil {
			s.log.Warn("Badge evaluation failed after completion", "error", bErr, "user_id", userID)
		} else {
			result.NewBadges = newBadges
		}
	}
	if s.leaderboard != nil {
		if lbErr := s.leaderboard.IncrDaily(ctx, today, userID, result.XPEarned); lbErr != nil {
			s.log.Warn("Leaderboard mirror update failed", "error", lbErr, "user_id", userID)
		}
	}

	s.log.Info("Activity completed",
		"user_id", userID,
		"activity_id", activityID,
		"xp_earned", result.XPEarned,
		"streak", result.Streak,
		"level", result.NewLevel,
	)
	return &result, nil
}
