package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/videotube-backend/internal/api"
	"github.com/dom/videotube-backend/internal/config"
	"github.com/dom/videotube-backend/internal/logging"
	"github.com/dom/videotube-backend/internal/media"
	"github.com/dom/videotube-backend/internal/repository"
	"github.com/dom/videotube-backend/internal/repository/mongodb"
	"github.com/dom/videotube-backend/internal/repository/postgres"
	"github.com/dom/videotube-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.Environment, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize store
	repos, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to store", "driver", cfg.StoreDriver(), "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Initialize media relay
	var relay media.Relay = media.UnavailableRelay{}
	if cfg.MediaConfigured() {
		s3Relay, err := media.NewS3Relay(ctx, cfg)
		if err != nil {
			log.Error("failed to configure media relay", "error", err)
			os.Exit(1)
		}
		relay = s3Relay
	} else {
		log.Warn("S3_BUCKET not set, uploads will fail")
	}

	services := service.NewServices(repos, relay, cfg, log)
	router := api.NewRouter(ctx, services, repos, cfg, log)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver(), "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// openStore picks the backend from the DATABASE_URL scheme.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Repositories, func(), error) {
	if cfg.StoreDriver() == "mongo" {
		client, err := mongodb.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return mongodb.NewRepositories(db), func() { _ = client.Disconnect(context.Background()) }, nil
	}

	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return postgres.NewRepositories(db), closeDB, nil
}
