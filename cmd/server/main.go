package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/alumni-hub/internal/alumni"
	"github.com/hugh/alumni-hub/internal/api"
	"github.com/hugh/alumni-hub/internal/auth"
	"github.com/hugh/alumni-hub/internal/database"
	"github.com/hugh/alumni-hub/internal/events"
	"github.com/hugh/alumni-hub/internal/mailer"
	"github.com/hugh/alumni-hub/pkg/config"
	"github.com/hugh/alumni-hub/pkg/queue"
	"github.com/hugh/alumni-hub/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
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

	logger.Info("starting alumni-hub server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the bootstrap admin account
	if err := database.SeedAdmin(db, &cfg.Admin, logger); err != nil {
		logger.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	// Connect to Redis. Without it, email falls back to inline delivery.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis, email will be sent inline", "error", err)
		redisClient = nil
	}

	var asynqClient *asynq.Client
	var mailDispatcher mailer.Mailer
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
		mailDispatcher = mailer.NewQueueMailer(asynqClient)
	} else {
		mailDispatcher = mailer.NewHTTPMailer(&cfg.Email, logger)
	}

	// Initialize services
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiry())
	if err != nil {
		logger.Error("failed to create JWT service", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(db, jwtService, mailDispatcher, logger)
	alumniService := alumni.NewService(db, logger)
	eventService := events.NewService(db, logger)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:            db,
		Redis:         redisClient,
		Logger:        logger,
		JWTService:    jwtService,
		AuthService:   authService,
		AlumniService: alumniService,
		EventService:  eventService,
		Production:    cfg.Server.IsProduction(),
		RateLimitReqs: cfg.RateLimit.Requests,
		RateLimitSecs: cfg.RateLimit.WindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
