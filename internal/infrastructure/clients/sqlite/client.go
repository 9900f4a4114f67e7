package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reelspot/backend/pkg/config"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Client represents an embedded SQLite database client
type Client struct {
	db   *sql.DB
	path string
}

// NewClient opens (and creates if needed) the SQLite file at cfg.SQLitePath
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	return Open(cfg.SQLitePath)
}

// Open opens the SQLite database at path. ":memory:" is accepted for tests.
func Open(path string) (*Client, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single writer connection keeps sqlite from returning SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	log.Info().Str("path", path).Msg("Opened SQLite database")
	return &Client{db: db, path: path}, nil
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the goqu dialect name for this database
func (c *Client) Dialect() string {
	return "sqlite3"
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
