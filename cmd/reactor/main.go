package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"jobapi/internal/app"
	"jobapi/internal/config"
	"jobapi/internal/http/middleware"
	"jobapi/internal/logger"
	"jobapi/internal/notify"
	"jobapi/internal/objectkey"
	"jobapi/internal/reactor"
	"jobapi/internal/storage"
	"jobapi/internal/telemetry"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log, os.Stdout)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.ValidateReactor(); err != nil {
		log.Error("invalid reactor configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, "jobapi-reactor", log)
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

	reg := app.NewRegistry()
	metrics, err := reactor.NewMetrics(reg)
	if err != nil {
		log.Error("failed to register reactor metrics", slog.Any("error", err))
		os.Exit(1)
	}
	r := reactor.New(repo, objectkey.New(cfg.UploadPrefix), log, metrics)

	log.Info("starting upload reactor",
		slog.String("stage", cfg.Stage),
		slog.String("source", cfg.Reactor.Source),
		slog.String("record_store", cfg.RecordStore),
	)

	if err := run(ctx, cfg, r, reg, log); err != nil {
		log.Error("reactor stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, r *reactor.Reactor, reg *prometheus.Registry, log *slog.Logger) error {
	switch cfg.Reactor.Source {
	case config.SourceListen:
		client, err := storage.NewClient(cfg.MinIO)
		if err != nil {
			return err
		}
		return ignoreCanceled(notify.Listen(ctx, client, cfg.MinIO.Bucket, cfg.UploadPrefix, r, log))

	case config.SourceAMQP:
		return notify.NewConsumer(cfg.Reactor.AMQPURL, cfg.Reactor.AMQPQueue, r, log).Run(ctx)

	default:
		server, err := app.NewFiber("jobapi-reactor", cfg, middleware.WebhookToken(cfg.Auth), log, reg)
		if err != nil {
			return err
		}
		server.Post("/events", notify.Webhook(r))
		return app.Serve(ctx, server, ":"+cfg.Reactor.Port, log)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
