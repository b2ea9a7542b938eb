package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
)

type FriendRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FromUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"from_user_id"`
	ToUserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"to_user_id"`
	Status     string    `gorm:"not null;default:'pending';column:status" json:"status"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (FriendRequest) TableName() string { return "friend_request" }
