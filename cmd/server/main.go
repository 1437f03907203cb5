package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/ecommerce-query/internal/app"
	"github.com/utafrali/ecommerce-query/internal/config"
	"github.com/utafrali/ecommerce-query/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		return 1
	}

	// Initialize structured logger.
	log, closeLog := logger.New(logger.Config{
		Service: "ecommerce-query",
		Level:   cfg.LogLevel,
		File: logger.FileConfig{
			Filename:   cfg.LogFile,
			MaxSizeMB:  cfg.LogFileMaxSizeMB,
			MaxBackups: cfg.LogFileMaxBackups,
			MaxAgeDays: cfg.LogFileMaxAgeDays,
			Compress:   true,
		},
	})
	defer func() { _ = closeLog() }()

	log.Info("starting ecommerce query service",
		slog.String("environment", cfg.Environment),
		slog.String("version", app.Version),
		slog.String("engine", cfg.SearchEngine),
		slog.Int("http_port", cfg.HTTPPort),
	)

	// Create a context that is cancelled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create the application with all dependencies wired.
	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		return 1
	}

	// Run the application. This blocks until shutdown.
	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		return 1
	}

	log.Info("ecommerce query service stopped")
	return 0
}
