package app

import (
	"time"

	"github.com/estuda-app/estuda-backend/internal/logger"
	"github.com/estuda-app/estuda-backend/internal/utils"
)

type Config struct {
	ServiceName     string
	Environment     string
	Version         string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	MediaDir        string
	MediaBaseURL    string
	ShopCatalogPath string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	return Config{
		ServiceName:     "estuda-backend",
		Environment:     utils.GetEnv("APP_ENV", "development", log),
		Version:         utils.GetEnv("APP_VERSION", "dev", log),
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		MediaDir:        utils.GetEnv("MEDIA_DIR", "./media", log),
		MediaBaseURL:    utils.GetEnv("MEDIA_BASE_URL", "http://localhost:8080", log),
		ShopCatalogPath: utils.GetEnv("SHOP_CATALOG_PATH", "configs/shop_items.yaml", log),
	}
}
