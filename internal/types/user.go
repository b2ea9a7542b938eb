package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password    string    `gorm:"not null;column:password" json:"-"`
	FirstName   string    `gorm:"column:first_name" json:"first_name"`
	LastName    string    `gorm:"column:last_name" json:"last_name"`
	DisplayName string    `gorm:"index;column:display_name" json:"display_name"`

	City     string         `gorm:"column:city" json:"city"`
	School   string         `gorm:"column:school" json:"school"`
	Grade    string         `gorm:"column:grade" json:"grade"`
	Subjects datatypes.JSON `gorm:"column:subjects" json:"subjects"`

	Bio           string         `gorm:"column:bio" json:"bio"`
	CollegePlan   string         `gorm:"column:college_plan" json:"college_plan"`
	CurrentCourse string         `gorm:"column:current_course" json:"current_course"`
	AvatarPath    string         `gorm:"column:avatar_path" json:"-"`
	AvatarURL     string         `gorm:"column:avatar_url" json:"avatar_url"`
	Banner        string         `gorm:"column:banner" json:"banner"`
	ProfileColor  string         `gorm:"column:profile_color" json:"profile_color"`
	Frame         string         `gorm:"column:frame" json:"frame"`
	ActiveBadge   string         `gorm:"column:active_badge" json:"active_badge"`
	SocialLinks   datatypes.JSON `gorm:"column:social_links" json:"social_links"`
	Inventory     datatypes.JSON `gorm:"column:inventory" json:"inventory"`

	// Progression state. Level is a cache of progression.LevelInfo(LevelXP);
	// TotalXP is the spendable lifetime currency and must never go negative.
	LevelXP          int    `gorm:"column:level_xp;not null;default:0" json:"level_xp"`
	TotalXP          int    `gorm:"column:total_xp;not null;default:0" json:"total_xp"`
	Level            int    `gorm:"column:level;not null;default:0" json:"level"`
	Streak           int    `gorm:"column:streak;not null;default:0" json:"streak"`
	LastActivityDate string `gorm:"column:last_activity_date" json:"last_activity_date"`

	OnboardingComplete bool       `gorm:"column:onboarding_complete;not null;default:false" json:"onboarding_complete"`
	RivalID            *uuid.UUID `gorm:"type:uuid;column:rival_id" json:"rival_id,omitempty"`
	ClanID             *uuid.UUID `gorm:"type:uuid;column:clan_id;index" json:"clan_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) SubjectList() []string {
	return decodeStringList(u.Subjects)
}

func (u *User) SetSubjectList(subjects []string) {
	u.Subjects = encodeStringList(subjects)
}

func (u *User) InventoryList() []string {
	return decodeStringList(u.Inventory)
}

func (u *User) SetInventoryList(items []string) {
	u.Inventory = encodeStringList(items)
}

func (u *User) SocialLinkMap() map[string]string {
	out := map[string]string{}
	if len(u.SocialLinks) > 0 {
		_ = json.Unmarshal(u.SocialLinks, &out)
	}
	return out
}

func (u *User) SetSocialLinkMap(links map[string]string) {
	if links == nil {
		links = map[string]string{}
	}
	raw, _ := json.Marshal(links)
	u.SocialLinks = raw
}

func decodeStringList(raw datatypes.JSON) []string {
	out := []string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func encodeStringList(list []string) datatypes.JSON {
	if list == nil {
		list = []string{}
	}
	raw, _ := json.Marshal(list)
	return raw
}
