// Package main is the entrypoint for the BrandBeacon API server.
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

	"github.com/brandbeacon/brandbeacon/internal/ai/factory"
	"github.com/brandbeacon/brandbeacon/internal/analytics"
	"github.com/brandbeacon/brandbeacon/internal/api"
	"github.com/brandbeacon/brandbeacon/internal/api/handler"
	mw "github.com/brandbeacon/brandbeacon/internal/api/middleware"
	"github.com/brandbeacon/brandbeacon/internal/cache"
	"github.com/brandbeacon/brandbeacon/internal/config"
	"github.com/brandbeacon/brandbeacon/internal/industry"
	"github.com/brandbeacon/brandbeacon/internal/job"
	"github.com/brandbeacon/brandbeacon/internal/queries"
	"github.com/brandbeacon/brandbeacon/internal/store"
	"github.com/joho/godotenv"
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
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	providers, err := factory.NewProviders(cfg.Providers)
	if err != nil {
		return fmt.Errorf("create answer providers: %w", err)
	}
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	slog.Info("answer providers initialized", "providers", names)

	textGen, err := factory.NewTextGenerator(cfg.Providers)
	if err != nil {
		return fmt.Errorf("create text generator: %w", err)
	}

	pgStore := store.NewPostgresStore(pool)

	detector := industry.NewDetector(textGen)
	queryGen := queries.NewGenerator(redisCache, textGen, cfg.Analysis.QueryCacheTTL)
	executor := job.NewExecutor(pgStore, redisCache, providers, cfg.Analysis)
	engine := analytics.NewEngine(redisCache, textGen, cfg.Analysis.ArtifactCacheTTL)
	svc := job.NewService(pgStore, redisCache, detector, queryGen, executor, engine, cfg.Analysis)

	rateLimit := mw.NewRateLimit(redisCache, 60)

	deps := api.Dependencies{
		RateLimit: rateLimit,

		HealthHandler:   handler.NewHealthHandler(pgStore, redisCache),
		SubmitHandler:   handler.NewSubmitHandler(svc),
		ListHandler:     handler.NewListHandler(pgStore),
		StatusHandler:   handler.NewStatusHandler(svc),
		ReportHandler:   handler.NewReportHandler(svc),
		SimulateHandler: handler.NewSimulateHandler(svc),
		CancelHandler:   handler.NewCancelHandler(svc),
	}

	router := api.NewRouter(deps)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
