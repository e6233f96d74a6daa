package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/telbinapp/telbin-backend/internal/config"
	"github.com/telbinapp/telbin-backend/internal/database"
	"github.com/telbinapp/telbin-backend/internal/events"
	"github.com/telbinapp/telbin-backend/internal/handlers"
	"github.com/telbinapp/telbin-backend/internal/logging"
	"github.com/telbinapp/telbin-backend/internal/middleware"
	"github.com/telbinapp/telbin-backend/internal/routes"
	"github.com/telbinapp/telbin-backend/internal/services"
	"github.com/telbinapp/telbin-backend/internal/vision"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}
	if cfg.RoboflowAPIKey == "" {
		slog.Warn("ROBOFLOW_API_KEY is empty, classification will fail")
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Catalogs must exist before the first registration: every new
	// ledger binds the starter medal.
	if err := database.SeedCatalogs(database.DB); err != nil {
		slog.Error("catalog seeding failed", "error", err)
		os.Exit(1)
	}

	// Domain event bus with the notification writer subscribed
	bus := events.NewBus(256)
	bus.Subscribe(events.NewNotificationWriter(database.DB))

	// Services
	visionClient := vision.NewClient(cfg)
	ledgerService := services.NewLedgerService(database.DB)
	medalService := services.NewMedalService(database.DB, ledgerService, bus)
	rewardService := services.NewRewardService(database.DB, ledgerService, medalService, bus)
	feedService := services.NewFeedService(database.DB)
	scanService := services.NewScanService(cfg, visionClient, ledgerService, medalService, feedService, bus)
	moderationService := services.NewModerationService(database.DB)
	authService := services.NewAuthService(database.DB, cfg, ledgerService, moderationService)
	authService.StartTokenCleanup(cleanupDone)
	notificationService := services.NewNotificationService(database.DB)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler()
	scanHandler := handlers.NewScanHandler(scanService, ledgerService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, medalService)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	feedHandler := handlers.NewFeedHandler(feedService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	moderationHandler := handlers.NewModerationHandler(moderationService)
	legalHandler := handlers.NewLegalHandler()
	configHandler := handlers.NewRemoteConfigHandler(database.DB)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app. Body limit is generous: submissions carry two base64
	// camera images.
	app := fiber.New(fiber.Config{
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB,
		authHandler, healthHandler, scanHandler, ledgerHandler, rewardHandler,
		feedHandler, notificationHandler, moderationHandler, legalHandler, configHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	bus.Close()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
