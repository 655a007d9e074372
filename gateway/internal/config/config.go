package config

import (
	"os"

	shared "github.com/Skotchmaster/sport_shop/pkg/config"
)

type Config struct {
	shared.Config

	AuthURL    string
	CatalogURL string
	CartURL    string
	OrderURL   string
	ReviewURL  string

	AllowOrigins []string
	SecureCookie bool
}

func Load() *Config {
	cfg := &Config{
		Config:     shared.Load(),
		AuthURL:    os.Getenv("AUTH_URL"),
		CatalogURL: os.Getenv("CATALOG_URL"),
		CartURL:    os.Getenv("CART_URL"),
		OrderURL:   os.Getenv("ORDER_URL"),
		ReviewURL:  os.Getenv("REVIEW_URL"),

		AllowOrigins: shared.CSV(shared.EnvDefault("CORS_ORIGINS", "http://localhost:3000")),
		SecureCookie: shared.EnvDefault("COOKIE_SECURE", "true") == "true",
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "gateway"
	}

	shared.MustNonEmpty(cfg.AuthURL, "AUTH_URL")
	shared.MustNonEmpty(cfg.CatalogURL, "CATALOG_URL")
	shared.MustNonEmpty(cfg.CartURL, "CART_URL")
	shared.MustNonEmpty(cfg.OrderURL, "ORDER_URL")
	shared.MustNonEmpty(cfg.ReviewURL, "REVIEW_URL")
	shared.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	return cfg
}
