package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/acmecorp/campaign-pulse/internal/config"
	"github.com/acmecorp/campaign-pulse/internal/database"
	"github.com/acmecorp/campaign-pulse/internal/generator"
	"github.com/acmecorp/campaign-pulse/internal/httpserver"
	"github.com/acmecorp/campaign-pulse/internal/metrics"
	"github.com/acmecorp/campaign-pulse/internal/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	defer logger.Sync()

	logger.Info("starting campaign-pulse",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics("pulse")
	}

	ctx := context.Background()

	// Optional backends.  The service runs fully in memory when none
	// are reachable.
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		db, err = database.NewPostgresDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Warn("PostgreSQL not available, dimension archiving disabled", zap.Error(err))
			db = nil
		} else {
			defer db.Close()
		}
	}

	var rdb *database.RedisDB
	if cfg.Redis.Enabled {
		rdb, err = database.NewRedisDB(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis not available, using in-memory report cache", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var ch *database.ClickHouseDB
	if cfg.ClickHouse.Enabled {
		ch, err = database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			logger.Warn("ClickHouse not available, event archiving disabled", zap.Error(err))
			ch = nil
		} else {
			defer ch.Close()
		}
	}

	deps := &httpserver.Dependencies{
		DB:         db,
		Redis:      rdb,
		ClickHouse: ch,
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
	}

	server, handler := httpserver.NewServer(deps)

	if err := server.EnsureSchemas(ctx); err != nil {
		logger.Error("failed to prepare archive schemas", zap.Error(err))
	}

	// Generate the initial dataset before serving.
	params := httpserver.BaseParams(cfg.Generator)
	start := time.Now()
	ds, err := generator.Generate(params)
	if m != nil {
		m.RecordGeneration(time.Since(start), err)
	}
	if err != nil {
		logger.Fatal("initial dataset generation failed", zap.Error(err))
	}
	server.SetDataset(ctx, ds)
	logger.Info("initial dataset generated",
		zap.String("dataset_id", ds.ID),
		zap.Int64("seed", ds.Seed),
		zap.Int("impressions", ds.Counts().Impressions),
		zap.Duration("duration", time.Since(start)),
	)
	go server.Archive(ctx, ds)

	// Middleware chain: recovery outermost, then logging, then rate
	// limiting.
	rateLimiter := middleware.NewRateLimitMiddleware(cfg.RateLimit, logger, m)
	chain := middleware.NewRecoveryMiddleware(logger).Handler(
		middleware.NewLoggingMiddleware(logger, m).Handler(
			rateLimiter.Handler(handler),
		),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      chain,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Periodically clear accumulated per-IP limiters.
	limiterCleanup := time.NewTicker(time.Hour)
	defer limiterCleanup.Stop()
	go func() {
		for range limiterCleanup.C {
			rateLimiter.CleanupIPLimiters()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func setupLogger(cfg *config.Config) *zap.Logger {
	var zapCfg zap.Config

	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	switch cfg.Log.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}

	return logger
}
