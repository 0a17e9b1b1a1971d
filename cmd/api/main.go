package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"jobapi/internal/app"
	"jobapi/internal/config"
	handlers "jobapi/internal/http/handler"
	"jobapi/internal/http/middleware"
	"jobapi/internal/logger"
	"jobapi/internal/objectkey"
	"jobapi/internal/service"
	"jobapi/internal/storage"
	"jobapi/internal/telemetry"
)

// @title						Upload Job API
// @version					1.0
// @description				Issues pre-signed upload URLs and tracks upload jobs.
// @BasePath					/
// @securityDefinitions.apikey	ApiToken
// @in							header
// @name						X-API-TOKEN
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(cfg.Log, os.Stdout)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if !cfg.Auth.Enabled {
		log.Warn("API token auth disabled, running in open mode")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, "jobapi", log)
	if err != nil {
		log.Error("failed to initialize tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	repo, closeRepo, err := app.NewJobRepository(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize record store", slog.String("store", cfg.RecordStore), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeRepo()

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Error("failed to initialize object storage", slog.Any("error", err))
		os.Exit(1)
	}

	jobSvc := service.NewJobService(objStore, repo, service.Config{
		Stage:           cfg.Stage,
		Keys:            objectkey.New(cfg.UploadPrefix),
		UploadURLExpiry: cfg.UploadURLExpiry,
		Logger:          log,
	})

	server, err := app.NewFiber("jobapi", cfg, middleware.APIToken(cfg.Auth), log, app.NewRegistry())
	if err != nil {
		log.Error("failed to build http app", slog.Any("error", err))
		os.Exit(1)
	}

	handlers.RegisterRoutes(server, jobSvc)
	handlers.RegisterSwagger(server)

	log.Info("starting job api",
		slog.String("stage", cfg.Stage),
		slog.String("record_store", cfg.RecordStore),
		slog.String("bucket", cfg.MinIO.Bucket),
	)

	if err := app.Serve(ctx, server, ":"+cfg.Port, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
