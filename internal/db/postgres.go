package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrMissingDSN = errors.New("DATABASE_URL not set")

// ConnectPostgres opens the pool, checks it and makes sure the cash
// tables exist.
func ConnectPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to postgres")

	if err := InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("schema initialized")

	return pool, nil
}

// InitSchema creates or updates the database schema
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	// -------------------------------
	// BACKUP RECORDS
	// -------------------------------
	backupsSQL := `
		CREATE TABLE IF NOT EXISTS cash_backups (
			order_id TEXT PRIMARY KEY,
			discount NUMERIC(5, 2) NOT NULL DEFAULT 0,
			split BOOLEAN NOT NULL DEFAULT FALSE,
			portions JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS cash_backups_updated_at_idx
			ON cash_backups (updated_at);
	`
	if _, err := pool.Exec(ctx, backupsSQL); err != nil {
		return err
	}

	// -------------------------------
	// CASH LEDGER
	// -------------------------------
	paymentsSQL := `
		CREATE TABLE IF NOT EXISTS cash_payments (
			id UUID PRIMARY KEY,
			order_id TEXT NOT NULL,
			split INTEGER NOT NULL DEFAULT 0,
			invoice_id TEXT NOT NULL,
			cashier_id TEXT NOT NULL DEFAULT '',
			amount_due NUMERIC(14, 2) NOT NULL,
			received NUMERIC(14, 2) NOT NULL,
			change_amount BIGINT NOT NULL DEFAULT 0,
			declared JSONB NOT NULL DEFAULT '{}'::jsonb,
			returned JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS cash_payments_created_at_idx
			ON cash_payments (created_at);
	`
	if _, err := pool.Exec(ctx, paymentsSQL); err != nil {
		return err
	}

	return nil
}
