package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/config"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail"
	guardrailbedrock "github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail/bedrock"
	guardrailmemory "github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail/memory"
	guardrailredis "github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail/redis"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/storage"
	storagememory "github.com/gregwiedeman/cat-validator-hate-guard/internal/storage/memory"
	storageminio "github.com/gregwiedeman/cat-validator-hate-guard/internal/storage/minio"
	storages3 "github.com/gregwiedeman/cat-validator-hate-guard/internal/storage/s3"
)

func newStore(ctx context.Context, cfg *config.AppConfig, awsCfg aws.Config, logger zerolog.Logger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storages3.NewStore(awsCfg, cfg.Storage, logger), nil
	case "minio":
		store, err := storageminio.NewObjectStore(cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		return store, nil
	case "memory":
		logger.Warn().Msg("using in-memory object store, accepted images are not persisted")
		return storagememory.NewInMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func newProvisioner(cfg *config.AppConfig, awsCfg aws.Config, redisClient *redis.Client, logger zerolog.Logger) (*guardrail.Provisioner, error) {
	var registry guardrail.Registry
	switch cfg.Guardrail.Backend {
	case "bedrock":
		registry = guardrailbedrock.NewRegistry(awsCfg)
	case "redis":
		if redisClient == nil {
			return nil, errors.New("guardrail backend redis needs redis.addr")
		}
		registry = guardrailredis.NewRegistry(redisClient, cfg.Redis.Prefix)
	case "memory":
		registry = guardrailmemory.NewRegistry()
	default:
		return nil, fmt.Errorf("unknown guardrail backend %q", cfg.Guardrail.Backend)
	}

	policy := guardrail.DefaultPolicy(cfg.Guardrail.Name, cfg.Guardrail.Description)
	return guardrail.NewProvisioner(registry, policy, cfg.Guardrail.Version, logger), nil
}
