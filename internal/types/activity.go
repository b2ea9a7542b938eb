package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActivityStatusPending   = "pending"
	ActivityStatusCompleted = "completed"
)

// Activity is created pending and transitions to completed exactly once.
// Date is the creation-day bucket (study-day key), not the completion day;
// per-day duplicate and rate checks key off it.
type Activity struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_activity_user_date" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Subject     string    `gorm:"column:subject" json:"subject"`
	Description string    `gorm:"column:description" json:"description"`
	Difficulty  int       `gorm:"column:difficulty;not null;default:3" json:"difficulty"`

	EstimatedTime   int     `gorm:"column:estimated_time;not null;default:30" json:"estimated_time"`
	ActualTimeStart *string `gorm:"column:actual_time_start" json:"actual_time_start,omitempty"`
	ActualTimeEnd   *string `gorm:"column:actual_time_end" json:"actual_time_end,omitempty"`

	Checklist datatypes.JSON `gorm:"column:checklist" json:"checklist"`
	ImageURL  string         `gorm:"column:image_url" json:"image_url"`

	Status      string     `gorm:"column:status;not null;default:'pending';index" json:"status"`
	XPEarned    int        `gorm:"column:xp_earned;not null;default:0" json:"xp_earned"`
	Date        string     `gorm:"column:date;not null;index:idx_activity_user_date" json:"date"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Activity) TableName() string { return "activity" }
