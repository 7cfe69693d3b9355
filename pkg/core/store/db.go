package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the shared connection pool from databaseURL.
func InitDB(ctx context.Context, databaseURL string) error {
	var err error
	once.Do(func() {
		if databaseURL == "" {
			err = fmt.Errorf("database URL not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(databaseURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			err = fmt.Errorf("failed to create pool: %w", err)
			return
		}
		if pingErr := pool.Ping(ctx); pingErr != nil {
			err = fmt.Errorf("failed to reach database: %w", pingErr)
		}
	})
	return err
}

// GetPool returns the database connection pool
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}
