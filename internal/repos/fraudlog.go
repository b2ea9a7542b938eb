package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type FraudLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.FraudLog) (*types.FraudLog, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]types.FraudLog, error)
}

type fraudLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFraudLogRepo(db *gorm.DB, baseLog *logger.Logger) FraudLogRepo {
	repoLog := baseLog.With("repo", "FraudLogRepo")
	return &fraudLogRepo{db: db, log: repoLog}
}

func (r *fraudLogRepo) Create(ctx context.Context, tx *gorm.DB, row *types.FraudLog) (*types.FraudLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *fraudLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]types.FraudLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	rows := []types.FraudLog{}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
