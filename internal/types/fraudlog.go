package types

import (
	"time"

	"github.com/google/uuid"
)

// FraudLog is an append-only audit trail of rejected work intervals. The
// engine writes it and never reads it back.
type FraudLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ActivityID uuid.UUID `gorm:"type:uuid;not null" json:"activity_id"`
	Reason     string    `gorm:"not null;column:reason" json:"reason"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (FraudLog) TableName() string { return "fraud_log" }
