package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type DailyXPRepo interface {
	// Accumulate upserts the (user, day) ledger row, incrementing xp and
	// refreshing the denormalized display fields. Never overwrites the total.
	Accumulate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string, delta int, displayName, picture string) error
	GetByUserDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.DailyXP, error)
	GetByUserDates(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dates []string) ([]*types.DailyXP, error)
	// TopNByDate orders by xp descending with stable insertion-order ties.
	TopNByDate(ctx context.Context, tx *gorm.DB, date string, n int) ([]*types.DailyXP, error)
	ListByDate(ctx context.Context, tx *gorm.DB, date string) ([]*types.DailyXP, error)
	ListByUsersDate(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, date string) ([]*types.DailyXP, error)
}

type dailyXPRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyXPRepo(db *gorm.DB, baseLog *logger.Logger) DailyXPRepo {
	repoLog := baseLog.With("repo", "DailyXPRepo")
	return &dailyXPRepo{db: db, log: repoLog}
}

func (r *dailyXPRepo) Accumulate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string, delta int, displayName, picture string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row := types.DailyXP{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        date,
		XP:          delta,
		DisplayName: displayName,
		Picture:     picture,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"xp":           gorm.Expr("xp + ?", delta),
				"display_name": displayName,
				"picture":      picture,
				"updated_at":   now,
			}),
		}).
		Create(&row).Error
}

func (r *dailyXPRepo) GetByUserDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.DailyXP, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.DailyXP
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *dailyXPRepo) GetByUserDates(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dates []string) ([]*types.DailyXP, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.DailyXP
	if len(dates) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND date IN ?", userID, dates).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dailyXPRepo) TopNByDate(ctx context.Context, tx *gorm.DB, date string, n int) ([]*types.DailyXP, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.DailyXP
	if err := transaction.WithContext(ctx).
		Where("date = ?", date).
		Order("xp DESC, created_at ASC").
		Limit(n).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dailyXPRepo) ListByDate(ctx context.Context, tx *gorm.DB, date string) ([]*types.DailyXP, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.DailyXP
	if err := transaction.WithContext(ctx).
		Where("date = ?", date).
		Order("xp DESC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dailyXPRepo) ListByUsersDate(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, date string) ([]*types.DailyXP, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.DailyXP
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id IN ? AND date = ?", userIDs, date).
		Order("xp DESC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
