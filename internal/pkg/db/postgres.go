// Package db provides PostgreSQL connection management and schema migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"dice-games-bot/internal/config"
)

const (
	defaultConnectTimeout  = 10 * time.Second
	defaultMaxConnLifetime = time.Hour
	defaultMaxConnIdleTime = 30 * time.Minute
	healthCheckPeriod      = 30 * time.Second
)

// Pool wraps pgxpool.Pool so callers can close it with logging.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a PostgreSQL connection pool and verifies it with a ping.
// Any failure here is a startup failure for the bot.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	applyPoolSettings(poolConfig, cfg)

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Int32("max_conns", poolConfig.MaxConns).
		Msg("Connecting to PostgreSQL")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Connected to PostgreSQL")
	return &Pool{Pool: pool}, nil
}

func applyPoolSettings(pc *pgxpool.Config, cfg *config.DatabaseConfig) {
	if cfg.PoolSize > 0 {
		pc.MaxConns = int32(cfg.PoolSize)
		pc.MinConns = max(int32(cfg.PoolSize/4), 1)
	}

	pc.ConnConfig.ConnectTimeout = orDefault(cfg.ConnectTimeout, defaultConnectTimeout)
	pc.MaxConnLifetime = orDefault(cfg.MaxConnLifetime, defaultMaxConnLifetime)
	pc.MaxConnIdleTime = orDefault(cfg.MaxConnIdleTime, defaultMaxConnIdleTime)
	pc.HealthCheckPeriod = healthCheckPeriod
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// Close closes the connection pool.
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
		log.Info().Msg("PostgreSQL connection pool closed")
	}
}
