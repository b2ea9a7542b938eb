package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/types"
)

// Default weekly targets applied when a week's row is first created.
const (
	DefaultXPGoal         = 500
	DefaultMinutesGoal    = 120
	DefaultActivitiesGoal = 10
)

type WeeklyGoalRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, week string) (*types.WeeklyGoal, error)
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, week string) (*types.WeeklyGoal, error)
	UpdateTargets(ctx context.Context, tx *gorm.DB, userID uuid.UUID, week string, fields map[string]interface{}) (*types.WeeklyGoal, error)
}

type weeklyGoalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeeklyGoalRepo(db *gorm.DB, baseLog *logger.Logger) WeeklyGoalRepo {
	repoLog := baseLog.With("repo", "WeeklyGoalRepo")
	return &weeklyGoalRepo{db: db, log: repoLog}
}

func (r *weeklyGoalRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, week string) (*types.WeeklyGoal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := types.WeeklyGoal{
		ID:             uuid.New(),
		UserID:         userID,
		Week:           week,
		XPGoal:         DefaultXPGoal,
		MinutesGoal:    DefaultMinutesGoal,
		ActivitiesGoal: DefaultActivitiesGoal,
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "week"}},
			DoNothing: true,
		}).
		Create(&row).Error; err != nil {
		return nil, err
	}
	// Re-read so concurrent creators all observe the winning row.
	return r.Get(ctx, transaction, userID, week)
}

func (r *weeklyGoalRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, week string) (*types.WeeklyGoal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.WeeklyGoal
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND week = ?", userID, week).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *weeklyGoalRepo) UpdateTargets(ctx context.Context, tx *gorm.DB, userID uuid.UUID, week string, fields map[string]interface{}) (*types.WeeklyGoal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) > 0 {
		if err := transaction.WithContext(ctx).
			Model(&types.WeeklyGoal{}).
			Where("user_id = ? AND week = ?", userID, week).
			Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, transaction, userID, week)
}
