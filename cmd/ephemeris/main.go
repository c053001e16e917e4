package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/twilight-ephemeris-service/internal/adapter/astro"
	httpadapter "github.com/couchcryptid/twilight-ephemeris-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/twilight-ephemeris-service/internal/adapter/kafka"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/adapter/mapbox"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/adapter/tz"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/config"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/domain"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/observability"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocode cache", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	provider := astro.NewInstrumentedProvider(astro.NewProvider(), metrics)
	engine := domain.NewEngine(provider, domain.DefaultSettings(cfg.DefaultTimezone))
	zones := tz.NewResolver(logger)

	api := pipeline.NewTransformer(engine, geocoder, zones, metrics, logger, "http")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pipelineReady sharedobs.ReadinessChecker
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(engine, geocoder, zones, metrics, logger, "pipeline")
		p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
		pipelineReady = p

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, api, httpadapter.AlwaysReady, cfg.DefaultSite, cfg.RequestTimeout, logger)
	if pipelineReady != nil {
		srv.AddReadinessCheck("pipeline", pipelineReady)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
