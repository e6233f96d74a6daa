package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/telbinapp/telbin-backend/internal/config"
	"github.com/telbinapp/telbin-backend/internal/handlers"
	"github.com/telbinapp/telbin-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	scanHandler *handlers.ScanHandler,
	ledgerHandler *handlers.LedgerHandler,
	rewardHandler *handlers.RewardHandler,
	feedHandler *handlers.FeedHandler,
	notificationHandler *handlers.NotificationHandler,
	moderationHandler *handlers.ModerationHandler,
	legalHandler *handlers.LegalHandler,
	configHandler *handlers.RemoteConfigHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Remote config and legal pages are public
	api.Get("/config", configHandler.GetConfig)
	api.Get("/legal/privacy", legalHandler.PrivacyPolicy)
	api.Get("/legal/terms", legalHandler.TermsOfService)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/google", authHandler.GoogleSignIn)

	// Protected routes (JWT required) - apply middleware to individual
	// routes so public routes stay public
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Put("/auth/profile", middleware.JWTProtected(cfg), authHandler.UpdateProfile)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Scan intake
	api.Post("/scans/classify", middleware.JWTProtected(cfg), scanHandler.Classify)
	api.Post("/scans", middleware.JWTProtected(cfg), scanHandler.Submit)
	api.Get("/scans/history", middleware.JWTProtected(cfg), scanHandler.History)

	// Progression
	api.Get("/ledger", middleware.JWTProtected(cfg), ledgerHandler.Get)
	api.Get("/medals", middleware.JWTProtected(cfg), ledgerHandler.Medals)
	api.Get("/rewards", middleware.JWTProtected(cfg), rewardHandler.List)
	api.Post("/rewards/:id/claim", middleware.JWTProtected(cfg), rewardHandler.Claim)

	// Community feed and notifications
	api.Get("/feed", middleware.JWTProtected(cfg), feedHandler.List)
	api.Get("/notifications", middleware.JWTProtected(cfg), notificationHandler.List)
	api.Put("/notifications/read-all", middleware.JWTProtected(cfg), notificationHandler.MarkAllRead)
	api.Put("/notifications/:id/read", middleware.JWTProtected(cfg), notificationHandler.MarkRead)

	// Moderation, user endpoints (protected)
	api.Post("/reports", middleware.JWTProtected(cfg), moderationHandler.CreateReport)
	api.Post("/blocks", middleware.JWTProtected(cfg), moderationHandler.BlockUser)
	api.Delete("/blocks/:id", middleware.JWTProtected(cfg), moderationHandler.UnblockUser)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/moderation/reports", moderationHandler.ListReports)
	admin.Put("/moderation/reports/:id", moderationHandler.ActionReport)
	admin.Put("/medals", ledgerHandler.UpsertMedal)
	admin.Put("/rewards", rewardHandler.Upsert)
	admin.Put("/config/:key", configHandler.SetConfigKey)
	admin.Delete("/config/:key", configHandler.DeleteConfigKey)
}
