package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type ClanRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Clan) (*types.Clan, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Clan, error)
	NameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	AddTotalXP(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error
	ListByTotalXP(ctx context.Context, tx *gorm.DB, limit int) ([]types.Clan, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type clanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClanRepo(db *gorm.DB, baseLog *logger.Logger) ClanRepo {
	repoLog := baseLog.With("repo", "ClanRepo")
	return &clanRepo{db: db, log: repoLog}
}

func (r *clanRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Clan) (*types.Clan, error) {
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

func (r *clanRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Clan, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Clan
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *clanRepo) NameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Clan{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *clanRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Clan{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *clanRepo) AddTotalXP(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Clan{}).
		Where("id = ?", id).
		Update("total_xp", gorm.Expr("total_xp + ?", delta)).Error
}

func (r *clanRepo) ListByTotalXP(ctx context.Context, tx *gorm.DB, limit int) ([]types.Clan, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	rows := []types.Clan{}
	q := transaction.WithContext(ctx).
		Order("total_xp DESC, created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *clanRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Clan{}).Error
}
