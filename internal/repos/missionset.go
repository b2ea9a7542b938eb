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

type MissionSetRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string, seed *types.MissionSet) (*types.MissionSet, error)
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.MissionSet, error)
	SaveMissions(ctx context.Context, tx *gorm.DB, row *types.MissionSet) error
}

type missionSetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMissionSetRepo(db *gorm.DB, baseLog *logger.Logger) MissionSetRepo {
	repoLog := baseLog.With("repo", "MissionSetRepo")
	return &missionSetRepo{db: db, log: repoLog}
}

func (r *missionSetRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string, seed *types.MissionSet) (*types.MissionSet, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if seed.ID == uuid.Nil {
		seed.ID = uuid.New()
	}
	seed.UserID = userID
	seed.Date = date
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(seed).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, transaction, userID, date)
}

func (r *missionSetRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.MissionSet, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.MissionSet
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

func (r *missionSetRepo) SaveMissions(ctx context.Context, tx *gorm.DB, row *types.MissionSet) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.MissionSet{}).
		Where("id = ?", row.ID).
		Update("missions", row.Missions).Error
}
