// Package cache owns the shared Redis client used for the market data cache
// and the trade execution store.
package cache

import (
	"context"
	"fmt"
	"strings"

	"swapscout/internal/logger"

	"github.com/redis/go-redis/v9"
)

const defaultRedisAddr = "localhost:6379"

var Client *redis.Client

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// Options turns REDIS_URL into client options. Plain host:port and
// redis:// or rediss:// URLs are accepted.
func Options(addr string) (*redis.Options, error) {
	if addr == "" {
		addr = defaultRedisAddr
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := parseRedisURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}

// InitRedis connects Client and verifies it with a PING.
func InitRedis(ctx context.Context, addr string) error {
	opts, err := Options(addr)
	if err != nil {
		return err
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	Client = client
	logger.GetLogger().WithComponent("cache").WithField("addr", opts.Addr).Info("connected to redis")
	return nil
}
