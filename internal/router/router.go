package router

import (
	"fmt"
	"log/slog"

	"github.com/anonto42/post-app/backend/internal/handlers"
	"github.com/anonto42/post-app/backend/internal/likes"
	"github.com/anonto42/post-app/backend/internal/middleware"
	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/anonto42/post-app/backend/internal/notifications"
	"github.com/anonto42/post-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Dependencies are the services and repositories the HTTP surface is built on.
type Dependencies struct {
	Posts         repositories.PostRepository
	Likes         repositories.LikeRepository
	Coordinator   *likes.Coordinator
	Moderator     handlers.Moderator
	Notifications *notifications.Service
	// Inbox is nil when no relational database is configured.
	Inbox repositories.NotificationRepository

	RequireAuth  echo.MiddlewareFunc
	OptionalAuth echo.MiddlewareFunc

	// TriggerSecret guards the internal trigger routes; empty disables them.
	TriggerSecret    string
	InlineModeration bool
	Logger           *slog.Logger
}

// MigrateRelational creates the PostgreSQL tables for inbox and profiles.
func MigrateRelational(pgdb *gorm.DB) error {
	if err := pgdb.AutoMigrate(&models.User{}, &models.Notification{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	slog.Info("PostgreSQL auto-migrations completed")
	return nil
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps *Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.GET("/health", handlers.HealthCheck)

	public := e.Group("/api/v1", deps.OptionalAuth)
	api := e.Group("/api/v1", deps.RequireAuth)

	postHandler := handlers.NewPostHandler(deps.Posts, deps.Moderator, deps.InlineModeration, logger)
	postHandler.RegisterPublicPostRoutes(public)
	postHandler.RegisterPostRoutes(api)

	feedHandler := handlers.NewFeedHandler(deps.Posts, deps.Likes, logger)
	feedHandler.RegisterFeedRoutes(public)

	likeHandler := handlers.NewLikeHandler(deps.Coordinator)
	likeHandler.RegisterLikeRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(deps.Notifications, deps.Inbox)
	notificationHandler.RegisterNotificationRoutes(api)

	if deps.TriggerSecret != "" {
		internal := e.Group("/api/v1/internal", middleware.TriggerSecretMiddleware(deps.TriggerSecret))
		handlers.NewTriggerHandler(deps.Moderator).RegisterTriggerRoutes(internal)
	} else {
		logger.Warn("TRIGGER_SECRET not set, post-created trigger route disabled")
	}

	logger.Info("routes configured", "inbox", deps.Inbox != nil, "inlineModeration", deps.InlineModeration)
}
