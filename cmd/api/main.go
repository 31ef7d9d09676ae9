package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gastropos/internal/backup"
	"gastropos/internal/billing"
	"gastropos/internal/cash"
	"gastropos/internal/config"
	"gastropos/internal/db"
	"gastropos/internal/ledger"
	"gastropos/internal/observability"
	"gastropos/internal/payment"
	"gastropos/internal/router"
	"gastropos/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// ───────────────────────── ENV ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if err := cfg.ValidateAPI(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── CASH TABLE ─────────────────────────
	denoms, err := cfg.Cash.Denominations()
	if err != nil {
		logger.Fatal("failed to load denominations", zap.Error(err))
	}
	if !denoms.IsCanonical() {
		logger.Warn("denomination table is not canonical, greedy change may not be minimal",
			zap.Int64s("values", amounts(denoms)))
	}

	// ───────────────────────── REPOS ─────────────────────────
	var (
		backupRepo backup.Repository = backup.NewInMemoryRepository()
		ledgerRepo ledger.Repository = ledger.NewInMemoryRepository()
	)
	if cfg.Database.URL != "" {
		pool, err := db.ConnectPostgres(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("postgres connection failed", zap.Error(err))
		}
		defer pool.Close()

		backupRepo = backup.NewPostgresRepository(pool)
		ledgerRepo = ledger.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, backups and ledger are kept in memory")
	}

	// ───────────────────────── STORAGE ─────────────────────────
	var store storage.InvoiceStore
	switch cfg.Storage.Driver {
	case config.StorageR2:
		store, err = storage.NewR2Store(ctx, storage.R2Config{
			Endpoint:      cfg.Storage.R2Endpoint,
			AccessKey:     cfg.Storage.R2AccessKey,
			SecretKey:     cfg.Storage.R2SecretKey,
			Bucket:        cfg.Storage.R2Bucket,
			PublicBaseURL: cfg.Storage.R2PublicBaseURL,
		})
		if err != nil {
			logger.Fatal("R2 init failed", zap.Error(err))
		}
	default:
		store = storage.NewMemoryStore(cfg.Server.PublicBaseURL)
	}

	// ───────────────────────── SERVICES ─────────────────────────
	backupService := backup.NewService(backupRepo, logger.Named("backup"))
	ledgerService := ledger.NewService(ledgerRepo, denoms, logger.Named("ledger"))
	registry := payment.NewRegistry(denoms)

	paymentService := payment.NewService(
		backupService,
		billing.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout),
		ledgerService,
		store,
		registry,
		payment.Defaults{
			Address: cfg.Invoice.Address,
			Phone:   cfg.Invoice.Phone,
			DV:      cfg.Invoice.DV,
			Notes:   cfg.Invoice.Notes,
		},
		logger.Named("payment"),
	)

	go pruneSessions(ctx, registry, cfg.Cash.SessionTTL, logger)

	// ───────────────────────── HTTP ─────────────────────────
	engine := router.NewRouter(
		router.Options{
			Logger:         logger,
			JWTSecret:      []byte(cfg.Auth.JWTSecret),
			AllowedOrigins: cfg.Server.AllowedOrigins,
		},
		router.Handlers{
			Backup:  backup.NewHandler(backupService),
			Payment: payment.NewHandler(paymentService, denoms),
			Storage: storage.NewHandler(store),
			Ledger:  ledger.NewHandler(ledgerService),
		},
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("API running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// pruneSessions drops cash screens left open longer than ttl.
func pruneSessions(ctx context.Context, registry *payment.Registry, ttl time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := registry.Prune(now.Add(-ttl)); n > 0 {
				logger.Info("pruned idle cash sessions", zap.Int("count", n))
			}
		}
	}
}

func amounts(denoms *cash.Denominations) []int64 {
	values := denoms.Values()
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}
