package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/restaurantdiscovery/backend/pkg/config"
	"github.com/zatekoja/restaurantdiscovery/backend/pkg/retry"
)

const pingTimeout = 5 * time.Second

// Client owns the connection pool to the restaurant database
type Client struct {
	db *sql.DB
}

// NewClient opens the pool and waits for PostgreSQL to accept connections,
// backing off between attempts while the database is starting up.
func NewClient(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	configurePool(db, cfg)

	client := &Client{db: db}
	err = retry.DoWithLog(ctx, retry.DefaultConfig(), "PostgreSQL", func() error {
		return client.Ping(ctx)
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("PostgreSQL connection attempt failed")
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Connected to PostgreSQL")
	return client, nil
}

// NewClientFromDB wraps an already opened pool, e.g. a sqlmock connection in tests
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

func configurePool(db *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

func (c *Client) DB() *sql.DB {
	return c.db
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Ping checks the database within pingTimeout
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.db.PingContext(ctx)
}
