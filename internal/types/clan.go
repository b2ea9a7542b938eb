package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Clan struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	Photo       string         `gorm:"column:photo" json:"photo"`
	Banner      string         `gorm:"column:banner" json:"banner"`
	LeaderID    uuid.UUID      `gorm:"type:uuid;not null" json:"leader_id"`
	Members     datatypes.JSON `gorm:"column:members" json:"members"`
	TotalXP     int            `gorm:"column:total_xp;not null;default:0" json:"total_xp"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Clan) TableName() string { return "clan" }

func (c *Clan) MemberList() []string {
	return decodeStringList(c.Members)
}

func (c *Clan) SetMemberList(members []string) {
	c.Members = encodeStringList(members)
}
