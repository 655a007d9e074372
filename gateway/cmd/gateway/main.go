package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/gateway/internal/config"
	"github.com/Skotchmaster/sport_shop/gateway/internal/httpserver"
	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpx.ErrorHandler

	if err := httpserver.Register(e, &httpserver.Deps{
		AuthURL:      cfg.AuthURL,
		CatalogURL:   cfg.CatalogURL,
		CartURL:      cfg.CartURL,
		OrderURL:     cfg.OrderURL,
		ReviewURL:    cfg.ReviewURL,
		JWTSecret:    cfg.JWTSecret,
		Logger:       logger,
		AllowOrigins: cfg.AllowOrigins,
		SecureCookie: cfg.SecureCookie,
	}); err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("gateway starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
