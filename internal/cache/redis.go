package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/config"
)

var ErrNotConfigured = errors.New("redis address not configured")

const pingTimeout = 5 * time.Second

// NewRedisClient connects and pings. An empty address yields
// ErrNotConfigured so callers can treat redis as optional.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrNotConfigured
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// Key joins a namespace prefix and key parts with ':'. Empty parts are skipped.
func Key(prefix string, parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	for _, p := range append([]string{prefix}, parts...) {
		if p = strings.Trim(p, ":"); p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, ":")
}
