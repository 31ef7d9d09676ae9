package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gastropos/internal/backup"
	"gastropos/internal/config"
	"gastropos/internal/db"
	"gastropos/internal/observability"

	"go.uber.org/zap"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backups only outlive a request in Postgres.
	pool, err := db.ConnectPostgres(ctx, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()

	service := backup.NewService(backup.NewPostgresRepository(pool), logger.Named("backup"))

	logger.Info("backup sweeper running",
		zap.Duration("ttl", cfg.Cash.BackupTTL),
		zap.Duration("interval", cfg.Cash.SweepInterval),
	)

	ticker := time.NewTicker(cfg.Cash.SweepInterval)
	defer ticker.Stop()

	for {
		sweep(ctx, service, cfg.Cash.BackupTTL, logger)

		select {
		case <-ctx.Done():
			logger.Info("backup sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func sweep(ctx context.Context, service *backup.Service, ttl time.Duration, logger *zap.Logger) {
	if _, err := service.SweepStale(ctx, ttl); err != nil && ctx.Err() == nil {
		logger.Warn("backup sweep failed", zap.Error(err))
	}
}
