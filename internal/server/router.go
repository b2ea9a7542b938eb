package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/estuda-app/estuda-backend/internal/handlers"
	"github.com/estuda-app/estuda-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName      string
	MediaDir         string
	AuthMiddleware   *middleware.AuthMiddleware
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	ActivityHandler  *handlers.ActivityHandler
	MissionHandler   *handlers.MissionHandler
	GoalHandler      *handlers.GoalHandler
	DashboardHandler *handlers.DashboardHandler
	RankingHandler   *handlers.RankingHandler
	ShopHandler      *handlers.ShopHandler
	ClanHandler      *handlers.ClanHandler
	FriendHandler    *handlers.FriendHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	if cfg.MediaDir != "" {
		router.Static("/media", cfg.MediaDir)
	}
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PATCH("/user", cfg.UserHandler.UpdateProfile)
	protected.POST("/user/onboarding", cfg.UserHandler.CompleteOnboarding)
	protected.PUT("/user/subjects", cfg.UserHandler.UpdateSubjects)
	protected.POST("/user/avatar", cfg.UserHandler.UploadAvatar)
	protected.PUT("/user/rival", cfg.UserHandler.SetRival)
	protected.GET("/user/search", cfg.UserHandler.Search)
	protected.GET("/user/badges", cfg.UserHandler.GetBadges)
	// Activities
	protected.POST("/activities", cfg.ActivityHandler.Create)
	protected.GET("/activities", cfg.ActivityHandler.List)
	protected.GET("/activities/:id", cfg.ActivityHandler.Get)
	protected.PATCH("/activities/:id", cfg.ActivityHandler.Update)
	protected.DELETE("/activities/:id", cfg.ActivityHandler.Delete)
	protected.PUT("/activities/:id/time", cfg.ActivityHandler.SetActualTime)
	protected.POST("/activities/:id/complete", cfg.ActivityHandler.Complete)
	// Missions
	protected.GET("/missions", cfg.MissionHandler.List)
	protected.POST("/missions/:id/claim", cfg.MissionHandler.Claim)
	// Weekly goals
	protected.GET("/goals/weekly", cfg.GoalHandler.Get)
	protected.PATCH("/goals/weekly", cfg.GoalHandler.Update)
	// Dashboard
	protected.GET("/dashboard", cfg.DashboardHandler.Get)
	// Rankings
	protected.GET("/rankings/global", cfg.RankingHandler.Global)
	protected.GET("/rankings/streaks", cfg.RankingHandler.Streaks)
	protected.GET("/rankings/friends", cfg.RankingHandler.Friends)
	protected.GET("/rankings/clans", cfg.RankingHandler.Clans)
	// Shop
	protected.GET("/shop/items", cfg.ShopHandler.List)
	protected.POST("/shop/items/:id/buy", cfg.ShopHandler.Buy)
	// Clans
	protected.POST("/clans", cfg.ClanHandler.Create)
	protected.GET("/clans/:id", cfg.ClanHandler.Get)
	protected.POST("/clans/:id/join", cfg.ClanHandler.Join)
	protected.POST("/clans/leave", cfg.ClanHandler.Leave)
	// Friends
	protected.POST("/friends/requests", cfg.FriendHandler.Send)
	protected.GET("/friends/requests", cfg.FriendHandler.Pending)
	protected.POST("/friends/requests/:id/accept", cfg.FriendHandler.Accept)
	protected.POST("/friends/requests/:id/decline", cfg.FriendHandler.Decline)
	protected.GET("/friends", cfg.FriendHandler.List)
	protected.DELETE("/friends/:id", cfg.FriendHandler.Remove)

	return router
}
