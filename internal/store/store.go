// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package store provides PostgreSQL connection and schema management.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connect retry parameters. A freshly provisioned database container can take
// a few seconds to accept connections, so the initial ping is retried with
// exponential backoff.
const (
	pingRetryBase  = 250 * time.Millisecond
	pingRetryCap   = 10 * time.Second
	pingMaxRetries = 6
)

// Store owns the pgx connection pool shared by all repositories.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool and verifies it with a retried ping.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, oops.Code("DB_CONFIG_INVALID").Errorf("database URL is required")
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "create connection pool").
			Wrap(err)
	}

	backoff := retry.WithCappedDuration(pingRetryCap,
		retry.WithMaxRetries(pingMaxRetries, retry.NewExponential(pingRetryBase)))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}

	return &Store{pool: pool}, nil
}

// Pool returns the underlying connection pool for repository construction.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
