package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Open initializes a PostgreSQL connection pool using sqlx and lib/pq.
func Open(ctx context.Context, dsn string, maxConns, minConns int) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}
	pool, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(maxConns)
	pool.SetMaxIdleConns(minConns)
	pool.SetConnMaxLifetime(time.Hour)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}
