// Package database builds the shared pgx connection pool. Pool sizing is
// not the usual request-serving arithmetic here: every advisory lock held
// by a sync worker pins one connection for the whole cycle, so the pool
// needs headroom beyond the lock count or the runtime-state and import
// queries starve while a cycle runs.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the subset of pgxpool.Pool the HTTP readiness probe depends on.
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// PoolConfig holds connection pool sizing. Zero fields take the defaults
// from constants.go.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
	ConnectTimeout  time.Duration
}

// DefaultPoolConfig returns sizing suited to the sync workload: MinConns
// covers one pinned lock connection per worker kind plus query traffic.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:        DefaultMaxConns,
		MinConns:        DefaultMinConns,
		MaxConnIdleTime: DefaultMaxConnIdleTime,
		MaxConnLifetime: DefaultMaxConnLifetime,
		ConnectTimeout:  DefaultConnectTimeout,
	}
}

// withDefaults fills zero fields from the package defaults
func (c PoolConfig) withDefaults() PoolConfig {
	d := DefaultPoolConfig()
	if c.MaxConns <= 0 {
		c.MaxConns = d.MaxConns
	}
	if c.MinConns <= 0 {
		c.MinConns = d.MinConns
	}
	if c.MinConns > c.MaxConns {
		c.MinConns = c.MaxConns
	}
	if c.MaxConnIdleTime <= 0 {
		c.MaxConnIdleTime = d.MaxConnIdleTime
	}
	if c.MaxConnLifetime <= 0 {
		c.MaxConnLifetime = d.MaxConnLifetime
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	return c
}

// buildPoolConfig parses the connection string and applies the pool sizing
func buildPoolConfig(connString string, cfg PoolConfig) (*pgxpool.Config, error) {
	parsed, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}

	cfg = cfg.withDefaults()
	parsed.MaxConns = cfg.MaxConns
	parsed.MinConns = cfg.MinConns
	parsed.MaxConnIdleTime = cfg.MaxConnIdleTime
	parsed.MaxConnLifetime = cfg.MaxConnLifetime
	parsed.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	return parsed, nil
}

// NewPool creates a PostgreSQL connection pool and verifies connectivity
// before returning it.
func NewPool(ctx context.Context, connString string, cfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := buildPoolConfig(connString, cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.ConnConfig.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	slog.Default().Info(LogMsgConnectedToDatabase,
		"max_conns", config.MaxConns,
		"min_conns", config.MinConns,
	)
	return pool, nil
}
