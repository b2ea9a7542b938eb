package types

import (
	"time"

	"github.com/google/uuid"
)

// DailyXP is the per-(user, study-day) ledger entry behind the daily
// leaderboard. Exactly one row per key; every write is an accumulation.
// It survives deletion of the activities that fed it.
type DailyXP struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_xp_user_date" json:"user_id"`
	Date        string    `gorm:"not null;uniqueIndex:idx_daily_xp_user_date;index;column:date" json:"date"`
	XP          int       `gorm:"column:xp;not null;default:0" json:"xp"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	Picture     string    `gorm:"column:picture" json:"picture"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (DailyXP) TableName() string { return "daily_xp" }
