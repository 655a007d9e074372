package config

import (
	"os"

	shared "github.com/Skotchmaster/sport_shop/pkg/config"
	"github.com/Skotchmaster/sport_shop/pkg/db"
)

type Config struct {
	shared.Config

	StripeSecretKey      string
	StripeWebhookSecret  string
	StripePublishableKey string
}

// Load reads the order service settings. Stripe keys are optional: without them the
// payment endpoints answer 500 and orders keep working.
func Load() *Config {
	cfg := &Config{
		Config:               shared.Load(),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "order"
	}

	shared.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	shared.MustOneOf(cfg.DBDriver, "DB_DRIVER", db.DriverPgx, db.DriverPQ, db.DriverSQLite)
	return cfg
}
