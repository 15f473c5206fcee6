package minio

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/config"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/storage"
)

// ObjectStore writes objects to an S3-compatible server through minio-go.
type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
	log    zerolog.Logger
}

func NewObjectStore(cfg config.StorageConfig, logger zerolog.Logger) (*ObjectStore, error) {
	return newObjectStore(cfg, nil, logger)
}

func newObjectStore(cfg config.StorageConfig, transport http.RoundTripper, logger zerolog.Logger) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    useSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
		log:    logger.With().Str("component", "minio_store").Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

// EnsureBucket creates the configured bucket when it does not exist yet.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
	}
	s.log.Info().Msg("bucket created")
	return nil
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := storage.Validate(key, data); err != nil {
		return "", err
	}

	info, err := s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.log.Debug().Str("key", info.Key).Str("etag", info.ETag).Int64("bytes", info.Size).Msg("object stored")
	return key, nil
}
