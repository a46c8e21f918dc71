package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hugh/alumni-hub/internal/mailer"
	"github.com/hugh/alumni-hub/internal/tasks"
	"github.com/hugh/alumni-hub/pkg/config"
	"github.com/hugh/alumni-hub/pkg/queue"
	"github.com/hugh/alumni-hub/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting alumni-hub worker")

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 10)

	// The worker delivers email inline through the provider API
	sender := mailer.NewHTTPMailer(&cfg.Email, logger)
	handler := tasks.NewHandler(sender, logger)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	// Start the server
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	<-ctx.Done()

	logger.Info("worker stopped")
}
