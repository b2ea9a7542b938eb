package types

import (
	"time"

	"github.com/google/uuid"
)

// UserBadge is an append-only unlock record; at most one per (user, badge),
// never revoked.
type UserBadge struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID  string    `gorm:"not null;uniqueIndex:idx_user_badge;column:badge_id" json:"badge_id"`
	EarnedAt time.Time `gorm:"column:earned_at;not null" json:"earned_at"`
}

func (UserBadge) TableName() string { return "user_badge" }
