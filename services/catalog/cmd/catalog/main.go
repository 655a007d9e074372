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
	"github.com/labstack/echo/v4/middleware"

	pkgdb "github.com/Skotchmaster/sport_shop/pkg/db"
	"github.com/Skotchmaster/sport_shop/pkg/es"
	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	loggingmw "github.com/Skotchmaster/sport_shop/pkg/middleware/logging"
	"github.com/Skotchmaster/sport_shop/pkg/mykafka"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/config"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/search"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	events, closeEvents, err := mykafka.FromBrokers(cfg.KafkaBrokers)
	if err != nil {
		log.Fatalf("kafka producer: %v", err)
	}

	svc := &service.CatalogService{
		Repo:   &repo.GormRepo{DB: db},
		Events: events,
	}

	if esCfg, ok := cfg.Search(); ok {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(esCtx, esCfg)
		esCancel()
		if err != nil {
			logger.Warn("elasticsearch unavailable, search falls back to database", "error", err)
		} else {
			svc.Index = search.NewESIndex(client, cfg.ESIndex)
			go func() {
				ctx := logging.IntoContext(context.Background(), logger)
				n, err := svc.Reindex(ctx)
				if err != nil {
					logger.Warn("reindex failed", "indexed", n, "error", err)
					return
				}
				logger.Info("reindex done", "indexed", n)
			}()
		}
	} else {
		logger.Info("ES_URL not set, search uses the database")
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpx.ErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: svc},
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("catalog service starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := closeEvents(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close", "error", err)
	}

	logger.Info("server stopped")
}
