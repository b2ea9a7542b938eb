package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type FriendRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.FriendRequest) (*types.FriendRequest, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FriendRequest, error)
	GetBetween(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) (*types.FriendRequest, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
	ListPendingFor(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.FriendRequest, error)
	ListAcceptedFor(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.FriendRequest, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type friendRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFriendRepo(db *gorm.DB, baseLog *logger.Logger) FriendRepo {
	repoLog := baseLog.With("repo", "FriendRepo")
	return &friendRepo{db: db, log: repoLog}
}

func (r *friendRepo) Create(ctx context.Context, tx *gorm.DB, row *types.FriendRequest) (*types.FriendRequest, error) {
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

func (r *friendRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FriendRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.FriendRequest
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

// GetBetween returns the request joining the two users in either
// direction, regardless of status.
func (r *friendRepo) GetBetween(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) (*types.FriendRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.FriendRequest
	if err := transaction.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *friendRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.FriendRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *friendRepo) ListPendingFor(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.FriendRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	rows := []types.FriendRequest{}
	if err := transaction.WithContext(ctx).
		Where("to_user_id = ? AND status = ?", userID, types.FriendStatusPending).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *friendRepo) ListAcceptedFor(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.FriendRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	rows := []types.FriendRequest{}
	if err := transaction.WithContext(ctx).
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?", userID, userID, types.FriendStatusAccepted).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *friendRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.FriendRequest{}).Error
}
