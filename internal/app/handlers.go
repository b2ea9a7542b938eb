package app

import (
	"github.com/gin-gonic/gin"

	"github.com/estuda-app/estuda-backend/internal/handlers"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/middleware"
	"github.com/estuda-app/estuda-backend/internal/server"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Activity  *handlers.ActivityHandler
	Mission   *handlers.MissionHandler
	Goal      *handlers.GoalHandler
	Dashboard *handlers.DashboardHandler
	Ranking   *handlers.RankingHandler
	Shop      *handlers.ShopHandler
	Clan      *handlers.ClanHandler
	Friend    *handlers.FriendHandler
}

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireHandlers(svc Services) Handlers {
	return Handlers{
		Auth:      handlers.NewAuthHandler(svc.Auth),
		User:      handlers.NewUserHandler(svc.User, svc.Badge),
		Activity:  handlers.NewActivityHandler(svc.Activity),
		Mission:   handlers.NewMissionHandler(svc.Mission),
		Goal:      handlers.NewGoalHandler(svc.Goal),
		Dashboard: handlers.NewDashboardHandler(svc.Dashboard),
		Ranking:   handlers.NewRankingHandler(svc.Ranking),
		Shop:      handlers.NewShopHandler(svc.Shop),
		Clan:      handlers.NewClanHandler(svc.Clan),
		Friend:    handlers.NewFriendHandler(svc.Friend),
	}
}

func wireMiddleware(log *logger.Logger, svc Services) Middleware {
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, svc.Auth),
	}
}

func wireRouter(cfg Config, h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:      cfg.ServiceName,
		MediaDir:         cfg.MediaDir,
		AuthMiddleware:   m.Auth,
		AuthHandler:      h.Auth,
		UserHandler:      h.User,
		ActivityHandler:  h.Activity,
		MissionHandler:   h.Mission,
		GoalHandler:      h.Goal,
		DashboardHandler: h.Dashboard,
		RankingHandler:   h.Ranking,
		ShopHandler:      h.Shop,
		ClanHandler:      h.Clan,
		FriendHandler:    h.Friend,
	})
}
