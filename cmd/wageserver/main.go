package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/h1b-wage-explorer/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/h1b-wage-explorer/internal/adapter/kafka"
	"github.com/couchcryptid/h1b-wage-explorer/internal/adapter/mapbox"
	"github.com/couchcryptid/h1b-wage-explorer/internal/config"
	"github.com/couchcryptid/h1b-wage-explorer/internal/dashboard"
	"github.com/couchcryptid/h1b-wage-explorer/internal/dataset"
	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	"github.com/couchcryptid/h1b-wage-explorer/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	format, err := dataset.ParseFormat(cfg.DataFormat)
	if err != nil {
		logger.Error("invalid data format", "error", err)
		os.Exit(1)
	}
	snapshot, err := dataset.Load(cfg.DataPath, format, dataset.Options{
		Logger: logger,
		OnFile: func(name string, rows int) {
			logger.Info("source file read", "file", name, "rows", rows)
		},
	})
	if err != nil {
		logger.Error("failed to load wage data", "path", cfg.DataPath, "format", format, "error", err)
		os.Exit(1)
	}
	logger.Info("wage data loaded",
		"path", snapshot.Source,
		"format", snapshot.Format,
		"records", len(snapshot.Records),
		"duplicates", snapshot.Duplicates,
	)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Query events are optional; without a publisher the service never blocks on Kafka.
	var (
		publisher dashboard.EventPublisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("query events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaEventsTopic)
	}

	svc := dashboard.New(snapshot, logger, metrics, dashboard.Options{
		PageSize:      cfg.PageSize,
		MaxDetailRows: cfg.MaxDetailRows,
		Geocoder:      geocoder,
		Publisher:     publisher,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start query event delivery.
	go func() {
		if err := svc.Run(ctx); err != nil {
			logger.Error("event delivery error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
