package config

import (
	shared "github.com/Skotchmaster/sport_shop/pkg/config"
	"github.com/Skotchmaster/sport_shop/pkg/db"
)

type Config struct {
	shared.Config
}

func Load() *Config {
	cfg := &Config{Config: shared.Load()}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cart"
	}

	shared.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	shared.MustOneOf(cfg.DBDriver, "DB_DRIVER", db.DriverPgx, db.DriverPQ, db.DriverSQLite)
	return cfg
}
