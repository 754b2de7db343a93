package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imamportal_backend/internal/adapters"
	"imamportal_backend/internal/applications"
	"imamportal_backend/internal/email"
	apphttp "imamportal_backend/internal/http"
	"imamportal_backend/internal/http/router"
	"imamportal_backend/internal/messages"
	messagesrepo "imamportal_backend/internal/messages/repository"
	"imamportal_backend/internal/notification"
	notifhandler "imamportal_backend/internal/notification/handler"
	"imamportal_backend/internal/profiles"
	profilesrepo "imamportal_backend/internal/profiles/repository"
	"imamportal_backend/internal/users"
	"imamportal_backend/platform/config"
	"imamportal_backend/platform/db"
	"imamportal_backend/platform/events"
	"imamportal_backend/platform/logger"
	"imamportal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus carrying committed-record events to the dispatch engine
	eventBus := events.NewInMemoryBus(cfg.GetNotifyWorkerPoolSize(), log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Template administration surface (HTTP-facing) owns the template and
	// delivery log repositories.
	notificationAdminModule := notifhandler.NewModule(pool, val, log)

	// Repositories shared with the dispatch engine through adapters
	profileRepo := profilesrepo.New(pool)
	messageRepo := messagesrepo.New(pool)
	userRepo := users.New(pool)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.NewModule(
		sender,
		notificationAdminModule.TemplateSource(),
		notificationAdminModule.Deliveries(),
		adapters.NewProfileLookupAdapter(profileRepo),
		userRepo,
		adapters.NewParticipantsAdapter(messageRepo),
		cfg,
		eventBus,
		log,
	)
	hook := notificationModule.Hook()

	profilesModule := profiles.NewModule(pool, hook, val, log)
	applicationsModule := applications.NewModule(pool, hook, val, log)
	messagesModule := messages.NewModule(pool, hook, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			profilesModule,
			applicationsModule,
			messagesModule,
			notificationAdminModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		eventBus.Drain(10 * time.Second)
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
