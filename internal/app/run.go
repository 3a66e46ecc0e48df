package app

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"content-router/internal/common/logging"
	"content-router/internal/config"

	"github.com/joho/godotenv"
)

// Run is the main entry point for the application
func Run() error {
	// Load environment variables
	_ = godotenv.Load()

	cfg := config.Load()

	if err := logging.InitGlobalLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}
	defer logging.MustSync()

	logging.Info("Starting content router",
		logging.Int("cpus", runtime.NumCPU()),
		logging.String("database", cfg.DatabaseType),
	)

	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return err
	}

	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}
	defer app.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- app.RunIngest(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			logging.Error("Ingest worker failed", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("Shutting down...")

	select {
	case err := <-done:
		if err != nil {
			logging.Warn("Error during ingest shutdown", logging.Err(err))
		}
	case <-time.After(30 * time.Second):
		logging.Warn("Ingest worker did not stop in time")
	}

	logging.Info("Content router exited")
	return nil
}
