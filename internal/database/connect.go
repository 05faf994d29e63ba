package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/moodlog/moodlog/internal/config"
)

// Pool sizing for the api process. Every request holds at most one
// connection, so a small pool keeps Postgres comfortable even at the
// rate limiter's ceiling.
const (
	maxOpenConns = 25
	maxIdleConns = 5
)

// Connect opens the Postgres pool, verifies it responds, applies pending
// migrations and returns the bun handle the repositories run on.
func Connect(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)

	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return NewBunDB(sqlDB), nil
}

// NewBunDB wraps an existing pool in a bun handle with the Postgres
// dialect. Repository tests use it to run queries against a mock pool.
func NewBunDB(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, pgdialect.New())
}
