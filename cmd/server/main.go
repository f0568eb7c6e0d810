package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	web "rollcall/internal/adapters/http"
	"rollcall/internal/adapters/storage"
	attendanceStore "rollcall/internal/adapters/storage/attendance"
	memberStore "rollcall/internal/adapters/storage/member"
	"rollcall/internal/config"
	"rollcall/internal/logger"
	"rollcall/internal/observability/metrics"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, cfg.Env)
	m := metrics.New()

	dialect, err := storage.ParseDialect(cfg.DBDriver)
	if err != nil {
		l.Fatalf("Invalid database driver: %v", err)
	}
	db, err := storage.Open(dialect, cfg.DatabaseURL)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(db, dialect); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}
	l.WithField("driver", dialect).Info("Database initialized")

	timedDB := storage.NewTimedDB(db, dialect, storage.TimedDBConfig{
		Logger:    l,
		Metrics:   m,
		SlowQuery: cfg.SlowQuery,
	})

	stores := web.Stores{
		MemberStore:     memberStore.NewSQLStore(timedDB),
		AttendanceStore: attendanceStore.NewSQLStore(timedDB),
	}
	server := web.NewServer(web.Config{
		Development:        !cfg.IsProduction(),
		CSRFKey:            cfg.CSRFKey,
		SecureCookies:      cfg.IsProduction(),
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SlowRequest:        cfg.SlowRequest,
	}, stores, timedDB, l, m)
	defer server.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		l.WithFields(logrus.Fields{
			"addr":    httpServer.Addr,
			"env":     cfg.Env,
			"version": version,
		}).Info("Rollcall starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		l.Info("Received shutdown signal")
	case err, ok := <-errCh:
		if ok {
			l.Errorf("HTTP server error: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("Graceful shutdown failed: %v", err)
	}
	l.Info("Rollcall stopped")
}
