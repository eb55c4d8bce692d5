// Package db owns the shared Postgres pool used for quote telemetry storage.
package db

import (
	"context"
	"fmt"
	"time"

	"swapscout/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

var (
	newPool = func(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
		return pgxpool.NewWithConfig(ctx, cfg)
	}
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// Config parses dsn and applies pool limits.
func Config(dsn string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute
	return cfg, nil
}

// InitPostgres connects Pool. An empty dsn leaves Pool nil; callers fall back
// to log-only telemetry.
func InitPostgres(ctx context.Context, dsn string) error {
	log := logger.GetLogger().WithComponent("db")
	if dsn == "" {
		log.Warn("DATABASE_URL not set, postgres disabled")
		return nil
	}

	cfg, err := Config(dsn)
	if err != nil {
		return err
	}
	pool, err := newPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pingPool(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}

	Pool = pool
	log.WithField("host", cfg.ConnConfig.Host).Info("connected to postgres")
	return nil
}

// Close releases Pool if it was opened.
func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
