package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/types"
)

type ActivityFilter struct {
	Status  string
	Subject string
	Date    string
}

type SubjectStat struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
	TotalXP int    `json:"total_xp"`
}

type ActivityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Activity) ([]*types.Activity, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, activityID, userID uuid.UUID) (*types.Activity, error)
	List(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ActivityFilter, limit int) ([]*types.Activity, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, fields map[string]interface{}) error
	DeleteByIDForUser(ctx context.Context, tx *gorm.DB, activityID, userID uuid.UUID) (bool, error)
	// MarkCompleted performs the one-way pending -> completed transition;
	// xp_earned and completed_at are set atomically with it. Returns false
	// when the row was not pending anymore.
	MarkCompleted(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, xpEarned int, completedAt time.Time) (bool, error)
	CountByUserDateStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, status string) (int64, error)
	CountByUserTitleDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, title, date string) (int64, error)
	CountByUserTitleSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string, since time.Time) (int64, error)
	CountCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	ListCompletedByUserDates(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dates []string) ([]*types.Activity, error)
	SubjectStats(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]SubjectStat, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	repoLog := baseLog.With("repo", "ActivityRepo")
	return &activityRepo{db: db, log: repoLog}
}

func (r *activityRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Activity) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Activity{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *activityRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, activityID, userID uuid.UUID) (*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Activity
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", activityID, userID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *activityRepo) List(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ActivityFilter, limit int) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Subject != "" {
		q = q.Where("subject = ?", filter.Subject)
	}
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	var results []*types.Activity
	if err := q.Order("created_at DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityRepo) UpdateFields(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("id = ?", activityID).
		Updates(fields).Error
}

func (r *activityRepo) DeleteByIDForUser(ctx context.Context, tx *gorm.DB, activityID, userID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", activityID, userID).
		Delete(&types.Activity{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *activityRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, xpEarned int, completedAt time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("id = ? AND status = ?", activityID, types.ActivityStatusPending).
		Updates(map[string]interface{}{
			"status":       types.ActivityStatusCompleted,
			"xp_earned":    xpEarned,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *activityRepo) CountByUserDateStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, status string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("user_id = ? AND date = ? AND status = ?", userID, date, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *activityRepo) CountByUserTitleDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, title, date string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("user_id = ? AND title = ? AND date = ?", userID, title, date).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *activityRepo) CountByUserTitleSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("user_id = ? AND title = ? AND created_at >= ?", userID, title, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *activityRepo) CountCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("user_id = ? AND status = ?", userID, types.ActivityStatusCompleted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *activityRepo) ListCompletedByUserDates(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dates []string) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Activity
	if len(dates) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND date IN ? AND status = ?", userID, dates, types.ActivityStatusCompleted).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityRepo) SubjectStats(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]SubjectStat, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []SubjectStat
	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Select("subject, COUNT(*) AS count, COALESCE(SUM(xp_earned), 0) AS total_xp").
		Where("user_id = ? AND status = ?", userID, types.ActivityStatusCompleted).
		Group("subject").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
