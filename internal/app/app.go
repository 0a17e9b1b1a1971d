// Package app holds the process wiring shared by the API and the reactor binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobapi/internal/config"
	"jobapi/internal/database"
	"jobapi/internal/database/migration"
	"jobapi/internal/http/handler"
	"jobapi/internal/http/middleware"
	"jobapi/internal/repository"
	"jobapi/internal/repository/dynamodb"
	"jobapi/internal/repository/postgres"
)

// ShutdownTimeout bounds graceful HTTP shutdown.
const ShutdownTimeout = 10 * time.Second

// NewJobRepository opens the record store selected by RECORD_STORE. The returned
// cleanup releases its connections and is never nil.
func NewJobRepository(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (repository.JobRepository, func(), error) {
	switch cfg.RecordStore {
	case config.RecordStorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect to database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, cfg.JobsTable, logger); err != nil {
			_ = db.Close()
			return nil, func() {}, fmt.Errorf("migrate database: %w", err)
		}
		return postgres.NewJobPostgres(db, cfg.JobsTable), func() { _ = db.Close() }, nil

	case config.RecordStoreDynamoDB:
		repo, err := dynamodb.New(ctx, cfg.DynamoDB, cfg.JobsTable)
		if err != nil {
			return nil, func() {}, fmt.Errorf("create DynamoDB client: %w", err)
		}
		return repo, func() {}, nil

	default:
		return nil, func() {}, fmt.Errorf("unsupported record store %q", cfg.RecordStore)
	}
}

// NewRegistry returns a Prometheus registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewFiber builds a Fiber app with the common middleware chain:
// request id, request log, request metrics, tracing, CORS, then auth.
// GET /metrics is mounted behind auth.
func NewFiber(name string, cfg *config.AppConfig, auth fiber.Handler, logger *slog.Logger, reg *prometheus.Registry) (*fiber.App, error) {
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("register HTTP metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               name,
		ErrorHandler:          handler.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(prom.Handler())
	// otelfiber renders errors through ErrorHandler itself, so the middlewares
	// above always see the final status.
	app.Use(otelfiber.Middleware())
	app.Use(middleware.CORS(cfg.CORSOrigin))
	app.Use(auth)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return app, nil
}

// Serve runs app on addr until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, app *fiber.App, addr string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
