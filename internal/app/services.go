package app

import (
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/clients/redis"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Avatar    services.AvatarService
	User      services.UserService
	Activity  services.ActivityService
	Mission   services.MissionService
	Goal      services.GoalService
	Badge     services.BadgeService
	Ranking   services.RankingService
	Shop      services.ShopService
	Clan      services.ClanService
	Friend    services.FriendService
	Dashboard services.DashboardService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, leaderboard redis.Leaderboard) (Services, error) {
	log.Info("Wiring services...")

	// The avatar service needs a TTF font; without one the rest of the
	// platform still runs, users just keep the default picture.
	avatarService, err := services.NewAvatarService(db, log, cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		log.Warn("Avatar service disabled", "error", err)
		avatarService = nil
	}

	badgeService := services.NewBadgeService(db, log, reposet.User, reposet.Activity, reposet.UserBadge)
	authService := services.NewAuthService(db, log, reposet.User, reposet.UserToken, avatarService, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := services.NewUserService(db, log, reposet.User, badgeService, avatarService)
	activityService := services.NewActivityService(db, log, reposet.User, reposet.Activity, reposet.DailyXP, reposet.FraudLog, reposet.Clan, badgeService, leaderboard)
	missionService := services.NewMissionService(db, log, reposet.User, reposet.Activity, reposet.MissionSet, badgeService)
	goalService := services.NewGoalService(db, log, reposet.WeeklyGoal, reposet.DailyXP, reposet.Activity)
	rankingService := services.NewRankingService(db, log, reposet.User, reposet.DailyXP, reposet.Friend, reposet.Clan, leaderboard)
	shopService := services.NewShopService(db, log, reposet.User, reposet.ShopItem)
	clanService := services.NewClanService(db, log, reposet.User, reposet.Clan)
	friendService := services.NewFriendService(db, log, reposet.User, reposet.Friend)
	dashboardService := services.NewDashboardService(db, log, reposet.User, reposet.Activity, reposet.DailyXP, goalService, missionService)

	return Services{
		Auth:      authService,
		Avatar:    avatarService,
		User:      userService,
		Activity:  activityService,
		Mission:   missionService,
		Goal:      goalService,
		Badge:     badgeService,
		Ranking:   rankingService,
		Shop:      shopService,
		Clan:      clanService,
		Friend:    friendService,
		Dashboard: dashboardService,
	}, nil
}
