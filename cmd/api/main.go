package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"sportrent/internal/cache"
	"sportrent/internal/config"
	"sportrent/internal/database"
	"sportrent/internal/handlers"
	"sportrent/internal/jobs"
	"sportrent/internal/log"
	"sportrent/internal/repository"
	"sportrent/internal/seed"
	"sportrent/internal/server"
	"sportrent/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	mongoClient, db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect mongodb")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	localStore, err := storage.NewLocalStore(cfg.Storage.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init upload directory")
	}

	archive, err := storage.NewObjectStore(cfg.Storage.Archive)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init archive store")
	}
	if archive != nil {
		if err := archive.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure archive bucket failed")
		}
	}

	users := repository.NewUserRepository(db)
	equipment := repository.NewEquipmentRepository(db)

	if cfg.Seed {
		err := seed.Run(ctx, seed.Stores{
			Users:     users,
			Equipment: equipment,
			Reviews:   repository.NewReviewRepository(db),
			Messages:  repository.NewMessageRepository(db),
		}, cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("seeding failed")
		}
	}

	handlerSet := handlers.NewHandlerSet(logger, db, redisClient, localStore, archive, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(redisClient, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	cleanerCtx, stopCleaner := context.WithCancel(ctx)
	cleaner := jobs.NewCleaner(redisClient, localStore, users, equipment, logger)
	go func() {
		if err := cleaner.Start(cleanerCtx); err != nil && cleanerCtx.Err() == nil {
			logger.Error().Err(err).Msg("cleanup consumer stopped")
		}
	}()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, stopCleaner, mongoClient, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, stopCleaner context.CancelFunc, mongoClient *mongo.Client, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if scheduler != nil {
		cancel := scheduler.Stop()
		cancel()
	}
	stopCleaner()

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("mongodb disconnect error")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
