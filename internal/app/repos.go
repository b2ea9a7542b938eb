package app

import (
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/repos"
)

type Repos struct {
	User       repos.UserRepo
	UserToken  repos.UserTokenRepo
	Activity   repos.ActivityRepo
	DailyXP    repos.DailyXPRepo
	WeeklyGoal repos.WeeklyGoalRepo
	MissionSet repos.MissionSetRepo
	UserBadge  repos.UserBadgeRepo
	FraudLog   repos.FraudLogRepo
	Clan       repos.ClanRepo
	ShopItem   repos.ShopItemRepo
	Friend     repos.FriendRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		UserToken:  repos.NewUserTokenRepo(db, log),
		Activity:   repos.NewActivityRepo(db, log),
		DailyXP:    repos.NewDailyXPRepo(db, log),
		WeeklyGoal: repos.NewWeeklyGoalRepo(db, log),
		MissionSet: repos.NewMissionSetRepo(db, log),
		UserBadge:  repos.NewUserBadgeRepo(db, log),
		FraudLog:   repos.NewFraudLogRepo(db, log),
		Clan:       repos.NewClanRepo(db, log),
		ShopItem:   repos.NewShopItemRepo(db, log),
		Friend:     repos.NewFriendRepo(db, log),
	}
}
