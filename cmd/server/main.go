// Package main is the entrypoint for the queueview API server.
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

	"github.com/kiranshivaraju/queueview/internal/api"
	"github.com/kiranshivaraju/queueview/internal/api/handler"
	mw "github.com/kiranshivaraju/queueview/internal/api/middleware"
	"github.com/kiranshivaraju/queueview/internal/api/response"
	"github.com/kiranshivaraju/queueview/internal/auth"
	"github.com/kiranshivaraju/queueview/internal/cache"
	"github.com/kiranshivaraju/queueview/internal/config"
	"github.com/kiranshivaraju/queueview/internal/jobs"
	"github.com/kiranshivaraju/queueview/internal/store"
	"github.com/kiranshivaraju/queueview/internal/tabular"
	"github.com/kiranshivaraju/queueview/internal/tabular/xlsx"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "jobs_source", cfg.Jobs.Source, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Token service and gate
	pgStore := store.NewPostgresStore(pool)

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, auth.WithTTL(cfg.Auth.TokenTTL))
	if err != nil {
		return fmt.Errorf("create token service: %w", err)
	}
	gate := auth.NewGate(pgStore, tokens)

	// 6. Job source and engine
	source, err := jobSource(cfg.Jobs, pgStore)
	if err != nil {
		return fmt.Errorf("select job source: %w", err)
	}
	engine := jobs.NewEngine(source, cfg.Jobs.Timeout)
	slog.Info("job source ready", "source", cfg.Jobs.Source)

	// 7. Build router with dependencies
	deps := api.Dependencies{
		Auth:        mw.NewAuth(gate),
		RateLimit:   mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMinute),
		AllJobsRole: cfg.Auth.AllJobsRole,

		HealthHandler:  healthHandler(pgStore, redisCache),
		LoginHandler:   handler.NewLoginHandler(gate),
		MyJobsHandler:  handler.NewMyJobsHandler(engine),
		AllJobsHandler: handler.NewAllJobsHandler(engine),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// jobSource picks the tabular store the engine reads from. The postgres
// source shares the credential store's pool.
func jobSource(cfg config.JobsConfig, pg tabular.Store) (tabular.Store, error) {
	switch cfg.Source {
	case config.SourceXLSX:
		if _, err := os.Stat(cfg.DataPath); err != nil {
			return nil, fmt.Errorf("jobs data file: %w", err)
		}
		return xlsx.NewStore(cfg.DataPath, xlsx.DefaultSheets), nil
	case config.SourcePostgres:
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown job source %q", cfg.Source)
	}
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, response.CodeDegraded,
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
