package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/moodlog/moodlog/docs" // Swagger docs (generated)
	"github.com/moodlog/moodlog/internal/config"
	"github.com/moodlog/moodlog/internal/database"
	"github.com/moodlog/moodlog/internal/email"
	httpServer "github.com/moodlog/moodlog/internal/http"
	"github.com/moodlog/moodlog/internal/logging"
	"github.com/moodlog/moodlog/internal/mood"
	"github.com/moodlog/moodlog/internal/ratelimit"
	"github.com/moodlog/moodlog/internal/token"
	"github.com/moodlog/moodlog/internal/user"
)

// @title           Moodlog API
// @version         1.0
// @description     A multi-tenant mood-tracking backend with account management and capability-scoped API tokens.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection and apply migrations
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	tokenRepo := token.NewRepository(db)
	moodRepo := mood.NewRepository(db)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromAddress,
		cfg.Email.FrontendURL,
	)

	// Initialize services; the token authority doubles as the grant
	// resolver for the registry and the mood ledger
	opTimeout := cfg.Database.OpTimeout
	tokenService := token.NewService(tokenRepo, userRepo, logger, opTimeout)
	userService := user.NewService(userRepo, tokenService, emailService, logger, opTimeout)
	moodService := mood.NewService(moodRepo, tokenService, logger, opTimeout)

	// Initialize HTTP handlers
	userHandler := user.NewHandler(userService, rateLimiter, logger)
	tokenHandler := token.NewHandler(tokenService, rateLimiter, logger)
	moodHandler := mood.NewHandler(moodService, logger)

	// Initialize router
	router := httpServer.NewRouter(cfg, userHandler, tokenHandler, moodHandler, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
