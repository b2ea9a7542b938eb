package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MissionTypeActivities = "activities"
	MissionTypeSubject    = "subject"
	MissionTypeTime       = "time"
)

// Mission is one entry of a user's daily set. Target and Reward are fixed at
// generation; Progress and Completed are recomputed from the day's activity
// log on every read; Claimed is write-once.
type Mission struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Subject   string `json:"subject,omitempty"`
	Target    int    `json:"target"`
	Reward    int    `json:"reward"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
	Claimed   bool   `json:"claimed"`
}

// MissionSet is the per-(user, study-day) mission document. Generation is
// idempotent: once a row exists for the day, its ids/targets/rewards never
// change.
type MissionSet struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_mission_set_user_date" json:"user_id"`
	Date      string         `gorm:"not null;uniqueIndex:idx_mission_set_user_date;column:date" json:"date"`
	Missions  datatypes.JSON `gorm:"column:missions" json:"missions"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (MissionSet) TableName() string { return "mission_set" }

func (ms *MissionSet) MissionList() []Mission {
	out := []Mission{}
	if len(ms.Missions) > 0 {
		_ = json.Unmarshal(ms.Missions, &out)
	}
	return out
}

func (ms *MissionSet) SetMissionList(missions []Mission) {
	raw, _ := json.Marshal(missions)
	ms.Missions = raw
}
