package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/post-app/backend/internal/likes"
	"github.com/anonto42/post-app/backend/internal/middleware"
	"github.com/anonto42/post-app/backend/internal/moderation"
	"github.com/anonto42/post-app/backend/internal/notifications"
	"github.com/anonto42/post-app/backend/internal/repositories"
	"github.com/anonto42/post-app/backend/internal/router"
	"github.com/anonto42/post-app/backend/pkg/config"
	"github.com/anonto42/post-app/backend/pkg/firebase"
	"github.com/anonto42/post-app/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

// store bundles the document-store repositories of one backend.
type store struct {
	posts  repositories.PostRepository
	likes  repositories.LikeRepository
	logs   repositories.ModerationLogRepository
	tokens repositories.TokenRepository
}

func serve(cctx *cli.Context) error {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize databases: %w", err)
	}
	defer db.CloseDB()

	needsFirebase := cfg.StoreBackend == config.StoreFirestore || cfg.AuthMode == config.AuthFirebase
	fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID, cfg.StoreBackend == config.StoreFirestore)
	if err != nil {
		if needsFirebase {
			return fmt.Errorf("initialize firebase: %w", err)
		}
		logger.Warn("firebase unavailable, push notifications are only logged", "err", err)
		fb = nil
	} else {
		defer fb.Close()
	}

	st, err := openStore(cfg, db, fb)
	if err != nil {
		return err
	}

	var (
		inbox repositories.NotificationRepository
		users repositories.UserRepository
	)
	if db.Postgres != nil {
		if err := router.MigrateRelational(db.Postgres); err != nil {
			return err
		}
		inbox = repositories.NewPostgresNotificationRepository(db.Postgres)
		users = repositories.NewPostgresUserRepository(db.Postgres)
	}

	var messenger notifications.Messenger = notifications.LogMessenger{Logger: logger}
	if fb != nil {
		messenger = fb.MessagingClient
	}
	notifier := notifications.NewService(messenger, st.tokens, inbox, users, logger)
	matcher := buildMatcher(cfg)
	engine := moderation.NewEngine(matcher, st.posts, st.logs, notifier, logger)
	coordinator := likes.NewCoordinator(st.likes, notifier, logger)
	logger.Info("moderation ready", "terms", matcher.Len(), "backend", cfg.StoreBackend)

	requireAuth, optionalAuth, err := authMiddleware(cfg, fb)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, logger)

	router.SetupRoutes(e, &router.Dependencies{
		Posts:            st.posts,
		Likes:            st.likes,
		Coordinator:      coordinator,
		Moderator:        engine,
		Notifications:    notifier,
		Inbox:            inbox,
		RequireAuth:      requireAuth,
		OptionalAuth:     optionalAuth,
		TriggerSecret:    cfg.TriggerSecret,
		InlineModeration: cfg.InlineModeration,
		Logger:           logger,
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		logger.Info("metrics server listening", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("metrics server: %w", err)
		}
	}()
	go func() {
		logger.Info("api server listening", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("api server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err = <-errc:
		logger.Error("server failed", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if sherr := e.Shutdown(shutdownCtx); sherr != nil {
		logger.Error("api shutdown", "err", sherr)
	}
	if sherr := metricsServer.Shutdown(shutdownCtx); sherr != nil {
		logger.Error("metrics shutdown", "err", sherr)
	}
	return err
}

func openStore(cfg *config.Config, db *config.DB, fb *firebase.App) (*store, error) {
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		fs := repositories.NewFirestoreStore(fb.Firestore, cfg.TxMaxAttempts)
		return &store{posts: fs, likes: fs, logs: fs, tokens: fs}, nil
	case config.StoreMongo:
		mdb := db.Mongo.Database(cfg.MongoDatabase)
		return &store{
			posts:  repositories.NewMongoPostRepository(mdb),
			likes:  repositories.NewMongoLikeRepository(db.Mongo, mdb),
			logs:   repositories.NewMongoModerationLogRepository(mdb),
			tokens: repositories.NewMongoTokenRepository(mdb),
		}, nil
	case config.StoreMemory:
		ms := repositories.NewMemoryStore().WithMaxAttempts(cfg.TxMaxAttempts)
		return &store{posts: ms, likes: ms, logs: ms, tokens: ms}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func authMiddleware(cfg *config.Config, fb *firebase.App) (required, optional echo.MiddlewareFunc, err error) {
	switch cfg.AuthMode {
	case config.AuthFirebase:
		return middleware.FirebaseAuthMiddleware(fb.AuthClient, true), middleware.FirebaseAuthMiddleware(fb.AuthClient, false), nil
	case config.AuthJWT:
		if cfg.JWTSecret == "" {
			return nil, nil, fmt.Errorf("AUTH_MODE=jwt requires JWT_SECRET")
		}
		return middleware.JWTAuthMiddleware(cfg.JWTSecret, true), middleware.JWTAuthMiddleware(cfg.JWTSecret, false), nil
	default:
		return nil, nil, fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
	}
}
