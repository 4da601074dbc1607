package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"ucsbexample/api/internal/app"
	"ucsbexample/api/internal/config"
	"ucsbexample/api/internal/logging"
	"ucsbexample/api/internal/session"
	"ucsbexample/api/internal/store"
)

type sessionBackend interface {
	app.SessionStore
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	var (
		repos  store.Repositories
		checks []func(context.Context) error
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("database connection failed")
		}
		defer db.Close()

		if err := store.ApplyMigrations(cfg.DatabaseURL, store.Migrations()); err != nil {
			logger.WithError(err).Fatal("migrations failed")
		}
		repos = store.NewPostgresRepositories(db)
		checks = append(checks, db.PingContext)
		logger.Info("using postgres entity store")
	case config.BackendMemory:
		repos = store.NewMemoryRepositories()
		logger.Info("using in-memory entity store")
	default:
		logger.WithField("backend", cfg.StoreBackend).Fatal("unknown STORE_BACKEND")
	}

	var sessions sessionBackend
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("redis connection failed")
		}
		sessions = redisStore
		logger.Info("using redis for refresh token storage")
	} else {
		sessions = session.NewMemoryStore()
		logger.Info("using in-process refresh token storage")
	}
	defer sessions.Close()
	checks = append(checks, sessions.Ping)

	if cfg.DevLoginEnabled {
		logger.Warn("dev login is enabled; any caller can obtain a USER token")
	}

	service := app.New(cfg, repos, sessions, app.PingFunc(func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}))

	httpServer := app.NewHTTPServer(service, logger, cfg.CORSOrigin).
		WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.Addr).Info("UCSB API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.WithFields(logrus.Fields{"signal": sig.String()}).Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
}
