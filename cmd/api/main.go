package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/awsconfig"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/cache"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/classifier/bedrock"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/config"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/handlers"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/log"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/moderation/rekognition"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/pipeline"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/server"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	awsCfg, err := awsconfig.Load(ctx, cfg.AWS)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load aws config")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		if !errors.Is(err, cache.ErrNotConfigured) || cfg.Guardrail.Backend == "redis" {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
	}

	store, err := newStore(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	mode, err := pipeline.ParseMode(cfg.Pipeline.Mode)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid pipeline mode")
	}

	provisioner, err := newProvisioner(cfg, awsCfg, redisClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init policy registry")
	}

	validator, err := pipeline.New(pipeline.Options{
		Mode:              mode,
		Moderator:         rekognition.NewClient(awsCfg),
		Classifier:        bedrock.NewClient(awsCfg),
		Provisioner:       provisioner,
		SafetyModel:       cfg.Models.Safety,
		CatModel:          cfg.Models.Cat,
		ModerationTimeout: cfg.Pipeline.ModerationTimeout,
		ClassifierTimeout: cfg.Pipeline.ClassifierTimeout,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	if mode == pipeline.ModeGuardrail {
		if _, err := provisioner.Resolve(ctx); err != nil {
			// Uploads retry resolution, so a cold registry is not fatal here.
			logger.Warn().Err(err).Str("aws_error_code", awsconfig.ErrorCode(err)).Msg("content policy warm-up failed")
		}
	}

	uploads := service.NewUploadService(validator, store, cfg, logger)
	handlerSet := handlers.NewHandlerSet(logger, cfg, uploads, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, redisClient *redis.Client) {
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

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
