package config

import (
	shared "github.com/Skotchmaster/sport_shop/pkg/config"
	"github.com/Skotchmaster/sport_shop/pkg/db"
	"github.com/Skotchmaster/sport_shop/pkg/es"
)

type Config struct {
	shared.Config
}

func Load() *Config {
	cfg := &Config{Config: shared.Load()}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "catalog"
	}

	shared.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	shared.MustOneOf(cfg.DBDriver, "DB_DRIVER", db.DriverPgx, db.DriverPQ, db.DriverSQLite)
	return cfg
}

// Search returns the Elasticsearch settings and whether search is enabled at all.
func (c *Config) Search() (es.Config, bool) {
	return es.Config{URL: c.ESURL, User: c.ESUser, Password: c.ESPassword}, c.ESURL != ""
}
