package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New(false, "info").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(config.IsProduction(), cfg.LogLevel)

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.RunMigrations(context.Background(), db, log); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Redis backs the tag cache and the recipe rate limit; both are optional.
	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = database.NewRedisClient(cfg, log)
		if err != nil {
			log.Warn("redis unavailable, continuing without cache and rate limiting", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var images storage.ImageStore
	if cfg.S3BucketName != "" {
		s3cfg, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			log.Error("failed to configure S3", "error", err)
			os.Exit(1)
		}
		images = storage.NewS3StoreFromConfig(s3cfg)
		log.Info("storing recipe images in S3", "bucket", s3cfg.BucketName)
	} else {
		images = storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
		log.Info("storing recipe images on disk", "root", cfg.MediaRoot)
	}

	srv, err := server.New(cfg, db, rdb, images, log)
	if err != nil {
		log.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		log.Info("received signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", "error", err)
	}
	log.Info("server stopped")
}
