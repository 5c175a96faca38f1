package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jairoandre/maggie/internal/core/config"
)

// ConnectDB initializes the Postgres connection pool.
func ConnectDB(cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	// Pool size bounds the number of in-flight operations: each request
	// borrows one connection for its whole duration.
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = 0
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	// Server-side bound on how long a row lock can be held. In-flight
	// transactions are never cancelled from this side.
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] =
		strconv.Itoa(cfg.StatementTimeoutMS)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	return pool, nil
}
