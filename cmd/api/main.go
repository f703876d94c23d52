// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

// Command api is the entry point for the Veriden HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leminhduc/veriden/internal/api"
	"github.com/leminhduc/veriden/internal/identity"
	"github.com/leminhduc/veriden/internal/platform/config"
	"github.com/leminhduc/veriden/internal/platform/constants"
	"github.com/leminhduc/veriden/internal/platform/gate"
	"github.com/leminhduc/veriden/internal/platform/messaging"
	"github.com/leminhduc/veriden/internal/platform/migration"
	pgstore "github.com/leminhduc/veriden/internal/platform/postgres"
	"github.com/leminhduc/veriden/internal/platform/recaptcha"
	redisstore "github.com/leminhduc/veriden/internal/platform/redis"
	"github.com/leminhduc/veriden/internal/platform/sec"
	"github.com/leminhduc/veriden/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "veriden"))
	slog.SetDefault(log)

	log.Info("[Veriden] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "veriden"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security Collaborators ─────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	recaptchaClient := recaptcha.NewClient(cfg.RecaptchaVerifyURL, cfg.RecaptchaSecret, cfg.RecaptchaTimeout)

	var mailer messaging.Mailer
	switch cfg.MailMode {
	case "postmark":
		mailer, err = messaging.NewPostmarkMailer(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.SenderEmail)
		must(log, err, "initialize postmark mailer")
	default:
		mailer = messaging.NewDevMailer(cfg.MailDevDirectory)
	}
	smsSender := messaging.NewLogSMSSender(log)

	// ── 7. Health Handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	accountRepository := identity.NewAccountRepository(pool)
	profileRepository := identity.NewProfileRepository(pool)
	sessionStore := session.NewRedisStore(rdb)

	tokenManager := identity.NewTokenManager(cfg)
	lockoutGuard := identity.NewLockoutGuard(accountRepository, sessionStore,
		cfg.LoginFailedThreshold, cfg.LockOutThreshold, cfg.LockOutDuration)
	twoFactor := identity.NewTwoFactorChallenge(cfg)

	identityService := identity.NewService(accountRepository, profileRepository,
		sessionStore, tokenManager, lockoutGuard, twoFactor, jwtSvc, mailer, smsSender, cfg)

	identityHandler := identity.NewHandler(identityService, identity.Gates{
		Recaptcha:     gate.Recaptcha(cfg.RecaptchaEnabled, recaptchaClient),
		Authenticated: gate.Authenticated(sessionStore),
		TwoFactor:     gate.TwoFactor(cfg.TwoFactorEnabled),
		Association:   gate.Association(identityService),
	})

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Identity:  identityHandler,
	}

	// The server context outlives startup; it scopes background middleware
	// work (rate-limit eviction) to the process lifetime.
	server := api.NewServer(context.Background(), cfg, log, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
