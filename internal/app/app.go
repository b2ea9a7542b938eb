package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/estuda-app/estuda-backend/internal/clients/redis"
	"github.com/estuda-app/estuda-backend/internal/db"
	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/observability"
)

type App struct {
	Log         *logger.Logger
	DB          *gorm.DB
	Router      *gin.Engine
	Cfg         Config
	Repos       Repos
	Services    Services
	Leaderboard redis.Leaderboard

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	// The leaderboard mirror is optional. Rankings fall back to the
	// daily ledger when redis is not configured.
	leaderboard, err := redis.NewLeaderboard(log)
	if err != nil {
		log.Warn("Redis leaderboard disabled", "error", err)
		leaderboard = nil
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, leaderboard)
	if err != nil {
		log.Sync()
		return nil, err
	}

	if err := serviceset.Shop.SeedCatalog(context.Background(), cfg.ShopCatalogPath); err != nil {
		log.Warn("Failed to seed shop catalog", "path", cfg.ShopCatalogPath, "error", err)
	}

	handlerset := wireHandlers(serviceset)
	middlewareset := wireMiddleware(log, serviceset)
	router := wireRouter(cfg, handlerset, middlewareset)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Leaderboard:  leaderboard,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Leaderboard != nil {
		if err := a.Leaderboard.Close(); err != nil {
			a.Log.Warn("Failed to close redis leaderboard", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("Failed to shut down tracing", "error", err)
		}
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
