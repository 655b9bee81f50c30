package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daftarhq/daftar/internal/accounting/mappings"
	"github.com/daftarhq/daftar/internal/accounting/reports"
	"github.com/daftarhq/daftar/internal/accounting/vouchers"
	"github.com/daftarhq/daftar/internal/app"
	"github.com/daftarhq/daftar/internal/backup"
	"github.com/daftarhq/daftar/internal/masterdata/accounts"
	"github.com/daftarhq/daftar/internal/masterdata/dimensions"
	"github.com/daftarhq/daftar/internal/masterdata/items"
	"github.com/daftarhq/daftar/internal/masterdata/settings"
	"github.com/daftarhq/daftar/internal/masterdata/taxes"
	"github.com/daftarhq/daftar/internal/observability"
	"github.com/daftarhq/daftar/internal/platform/cache"
	"github.com/daftarhq/daftar/internal/platform/db"
	"github.com/daftarhq/daftar/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Redis is optional: without it, report caching degrades to pass-through.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	settingsService := settings.NewService(settings.NewRepository(dbpool))
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)

	voucherRepo := vouchers.NewRepository(dbpool)
	voucherService := vouchers.NewService(voucherRepo, settingsService, auditLogger, reportCache, logger)
	voucherHandler := vouchers.NewHandler(voucherService, logger, metrics)

	reportService := reports.NewService(reports.NewRepository(dbpool), reportCache)
	reportHandler := reports.NewHandler(reportService, logger)

	backupService := backup.NewService(dbpool, reportCache, logger)
	backupHandler := backup.NewHandler(backupService, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Pool:              dbpool,
		VoucherHandler:    voucherHandler,
		ReportHandler:     reportHandler,
		BackupHandler:     backupHandler,
		AccountsHandler:   accounts.NewHandler(logger, accounts.NewRepository(dbpool)),
		ItemsHandler:      items.NewHandler(logger, items.NewRepository(dbpool)),
		SettingsHandler:   settings.NewHandler(logger, settingsService),
		TaxesHandler:      taxes.NewHandler(logger, taxes.NewRepository(dbpool)),
		DimensionsHandler: dimensions.NewHandler(logger, dimensions.NewRepository(dbpool)),
		MappingsHandler:   mappings.NewHandler(logger, mappings.NewPgStore(dbpool)),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
