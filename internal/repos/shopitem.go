package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type ShopItemRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, rows []types.ShopItem) error
	GetByID(ctx context.Context, tx *gorm.DB, itemID string) (*types.ShopItem, error)
	List(ctx context.Context, tx *gorm.DB) ([]types.ShopItem, error)
}

type shopItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShopItemRepo(db *gorm.DB, baseLog *logger.Logger) ShopItemRepo {
	repoLog := baseLog.With("repo", "ShopItemRepo")
	return &shopItemRepo{db: db, log: repoLog}
}

// Upsert reconciles the catalog rows with the seed file at boot,
// updating display fields in place for items that already exist.
func (r *shopItemRepo) Upsert(ctx context.Context, tx *gorm.DB, rows []types.ShopItem) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "type", "rarity", "price", "description", "preview", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *shopItemRepo) GetByID(ctx context.Context, tx *gorm.DB, itemID string) (*types.ShopItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.ShopItem
	if err := transaction.WithContext(ctx).
		Where("item_id = ?", itemID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *shopItemRepo) List(ctx context.Context, tx *gorm.DB) ([]types.ShopItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	rows := []types.ShopItem{}
	if err := transaction.WithContext(ctx).
		Order("price ASC, item_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
