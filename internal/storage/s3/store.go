package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/config"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/storage"
)

// Store writes objects to a single Amazon S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
	log    zerolog.Logger
}

// NewStore builds an S3 store. A configured storage endpoint switches the
// client to path-style addressing for S3-compatible stand-ins.
func NewStore(awsCfg aws.Config, cfg config.StorageConfig, logger zerolog.Logger) *Store {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Region != "" {
			o.Region = cfg.Region
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		log:    logger.With().Str("component", "s3_store").Str("bucket", cfg.Bucket).Logger(),
	}
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := storage.Validate(key, data); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("object stored")
	return key, nil
}
