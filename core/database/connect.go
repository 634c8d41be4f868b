package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/iptvbot/core/logger"
)

const (
	pingTimeout   = 5 * time.Second
	waitStep      = 2 * time.Second
	connLifetime  = 30 * time.Minute
	connIdleCount = 5
)

// Connect opens a pooled sqlx handle and verifies connectivity with one ping.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(connIdleCount)
	db.SetConnMaxLifetime(connLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

// WaitForPostgres retries Connect until the server accepts connections or the
// context expires. Useful when the bot starts alongside the database container.
func WaitForPostgres(ctx context.Context, cfg Config, attempts int) (*sqlx.DB, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := Connect(ctx, cfg)
		if err == nil {
			if i > 1 {
				logger.Info(ctx, "database", "connected_after_retry", slog.Int("attempt", i))
			}
			return db, nil
		}
		lastErr = err
		logger.Warn(ctx, "database", "connect_retry",
			slog.Int("attempt", i),
			slog.Int("max", attempts),
			logger.Err(err),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database: wait canceled: %w", ctx.Err())
		case <-time.After(waitStep):
		}
	}
	return nil, fmt.Errorf("database: not reachable after %d attempts: %w", attempts, lastErr)
}
