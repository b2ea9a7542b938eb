package types

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyGoal stores targets only; progress is always recomputed from the
// daily ledger and the activity log.
type WeeklyGoal struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_goal_user_week" json:"user_id"`
	Week           string    `gorm:"not null;uniqueIndex:idx_weekly_goal_user_week;column:week" json:"week"`
	XPGoal         int       `gorm:"column:xp_goal;not null;default:500" json:"xp_goal"`
	MinutesGoal    int       `gorm:"column:minutes_goal;not null;default:120" json:"minutes_goal"`
	ActivitiesGoal int       `gorm:"column:activities_goal;not null;default:10" json:"activities_goal"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (WeeklyGoal) TableName() string { return "weekly_goal" }
