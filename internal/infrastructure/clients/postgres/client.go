package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/reelspot/backend/pkg/config"
	"github.com/reelspot/backend/pkg/retry"
	"github.com/rs/zerolog/log"
)

const (
	maxOpenConns    = 10
	maxIdleConns    = 2
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Client is the PostgreSQL marker store connection
type Client struct {
	db *sql.DB
}

// NewClient opens a pool for cfg and waits for the server to answer, retrying
// with backoff while it starts up
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	client := &Client{db: db}
	if err := client.waitReady(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres at %s:%d not reachable: %w", cfg.Host, cfg.Port, err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connected to PostgreSQL")
	return client, nil
}

func (c *Client) waitReady(ctx context.Context) error {
	return retry.DoWithLog(ctx, retry.DefaultConfig(), "PostgreSQL",
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			return c.Ping(pingCtx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("PostgreSQL not ready")
		},
	)
}

// DB returns the underlying pool
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect is the goqu dialect for this backend
func (c *Client) Dialect() string {
	return "postgres"
}

// Close closes the pool
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
