// Package main provides the entry point for the feedback API server.
// It wires configuration, observability, the database, the sentiment
// analyzer, and the HTTP routes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"happymeter/internal/config"
	"happymeter/internal/database"
	"happymeter/internal/handlers"
	"happymeter/internal/observability"
	"happymeter/internal/sentiment"
	"happymeter/internal/services"

	"go.uber.org/zap/zapcore"
)

const serverShutdownTimeout = 30 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, parseErr := zapcore.ParseLevel(cfg.Server.LogLevel)
	if parseErr != nil {
		level = zapcore.InfoLevel
	}

	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "happymeter")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	if level != zapcore.InfoLevel {
		logger = observability.NewLoggerWithLevel(&cfg.OpenTelemetry, level)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		type shutdowner interface {
			Shutdown(context.Context) error
		}
		if sd, ok := tp.(shutdowner); ok && sd != nil {
			if err := sd.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error()})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error()})
			}
		}
		_ = logger.Sync()
	}()

	logger.Info(ctx, "Starting feedback service", map[string]interface{}{
		"port":     cfg.Server.Port,
		"logLevel": cfg.Server.LogLevel,
	})

	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDB(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to initialize database", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error(ctx, "Error closing database connection", err)
		}
	}()

	feedbackService := services.NewFeedbackService(db, logger)

	analyzer := sentiment.NewAnalyzer(cfg.Sentiment, logger)
	if cfg.Sentiment.WarmupOnStart {
		// Warmup is best effort. A cold classifier only delays the first
		// submission; it does not block startup.
		if err := analyzer.Warmup(ctx); err != nil {
			logger.Warn(ctx, "Sentiment model warmup failed, will retry on first request", map[string]interface{}{"error": err.Error()})
		}
	}

	router := handlers.NewRouter(cfg, feedbackService, analyzer, db, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-shutdownCh:
		logger.Info(ctx, "Received shutdown signal, shutting down gracefully")
	case err := <-serverErr:
		logger.Error(ctx, "Server failed", err)
		os.Exit(1)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during server shutdown", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Shutdown completed successfully")
}
