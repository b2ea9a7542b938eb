package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type UserBadgeRepo interface {
	Award(ctx context.Context, tx *gorm.DB, userID uuid.UUID, badgeID string) (bool, error)
	ListBadgeIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]string, error)
}

type userBadgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserBadgeRepo(db *gorm.DB, baseLog *logger.Logger) UserBadgeRepo {
	repoLog := baseLog.With("repo", "UserBadgeRepo")
	return &userBadgeRepo{db: db, log: repoLog}
}

// Award inserts the badge grant if the user does not already hold it.
// Returns true when this call created the grant.
func (r *userBadgeRepo) Award(ctx context.Context, tx *gorm.DB, userID uuid.UUID, badgeID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := types.UserBadge{
		ID:       uuid.New(),
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: time.Now().UTC(),
	}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userBadgeRepo) ListBadgeIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []string
	if err := transaction.WithContext(ctx).
		Model(&types.UserBadge{}).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Pluck("badge_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
