// Package kv provides the Redis client used as the shared key-value store
// for configuration blobs, option snapshots, and ensure locks.
// This is part of the platform layer and contains no business logic.
package kv

import (
	"context"
	"crypto/tls"
	"fmt"

	"dealerbridge_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from the configured URL and verifies the
// connection with a ping.
func NewClient(ctx context.Context, cfg config.KVConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.GetRedisTLSInsecure() && opt.TLSConfig != nil {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
