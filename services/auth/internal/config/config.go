package config

import (
	"os"
	"time"

	shared "github.com/Skotchmaster/sport_shop/pkg/config"
	"github.com/Skotchmaster/sport_shop/pkg/db"
)

type Config struct {
	shared.Config

	TokenTTL     time.Duration
	SecureCookie bool

	AdminEmail    string
	AdminPassword string
}

func Load() *Config {
	cfg := &Config{
		Config:       shared.Load(),
		TokenTTL:     time.Duration(shared.EnvIntDefault("TOKEN_TTL_HOURS", 24)) * time.Hour,
		SecureCookie: shared.EnvDefault("COOKIE_SECURE", "true") == "true",

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "auth"
	}

	shared.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	shared.MustOneOf(cfg.DBDriver, "DB_DRIVER", db.DriverPgx, db.DriverPQ, db.DriverSQLite)
	shared.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	return cfg
}
