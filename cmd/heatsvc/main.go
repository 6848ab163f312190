// Command heatsvc serves thermoregulation predictions over HTTP and, when
// enabled, computes sweep requests from Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/heat-response/internal/adapter/cache"
	"github.com/couchcryptid/heat-response/internal/adapter/greenspace"
	httpadapter "github.com/couchcryptid/heat-response/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/heat-response/internal/adapter/kafka"
	"github.com/couchcryptid/heat-response/internal/config"
	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/model"
	"github.com/couchcryptid/heat-response/internal/observability"
	"github.com/couchcryptid/heat-response/internal/pipeline"
	"github.com/couchcryptid/heat-response/internal/sweep"
	"github.com/couchcryptid/heat-response/internal/thermo"
	"github.com/joho/godotenv"
)

// alwaysReady is the readiness check when no pipeline runs.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	params, err := model.ResolveParams(cfg.ModelParamsPath)
	if err != nil {
		logger.Error("failed to load model parameters", "path", cfg.ModelParamsPath, "error", err)
		os.Exit(1)
	}
	svc, err := thermo.NewService(params, logger, metrics)
	if err != nil {
		logger.Error("invalid model parameters", "error", err)
		os.Exit(1)
	}
	logger.Info("model loaded",
		"params_path", cfg.ModelParamsPath,
		"max_vapour_pressure_kpa", params.MaxVapourPressureKPa,
	)

	sweeper := sweep.New(sweep.Options{
		YieldEvery: cfg.SweepYieldEvery,
		Workers:    cfg.SweepWorkers,
		MaxCells:   cfg.SweepMaxCells,
	}, logger, metrics)
	sweeps := sweep.NewService(svc, sweeper)

	// Green-space lookup is feature-flagged via GREENSPACE_ENABLED / GREENSPACE_URL.
	var lookup domain.GreenspaceProvider
	if cfg.GreenspaceEnabled {
		client := greenspace.NewClient(cfg.GreenspaceURL, cfg.GreenspaceTimeout, metrics, logger)
		lookup = greenspace.NewCachedProvider(client, cfg.GreenspaceCacheSize, metrics)
		metrics.GreenspaceEnabled.Set(1)
		logger.Info("greenspace lookup enabled", "url", cfg.GreenspaceURL, "cache_size", cfg.GreenspaceCacheSize)
	} else {
		logger.Info("greenspace lookup disabled")
	}

	api := httpadapter.API{
		Raw:        svc,
		Exposures:  cache.NewCachedPredictor(svc, cfg.PredictionCacheSize, metrics),
		Sweeps:     sweeps,
		Greenspace: lookup,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		ready  httpadapter.ReadinessChecker = alwaysReady{}
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		done   = make(chan struct{})
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(sweeps, logger), writer, logger, metrics, cfg.BatchSize)
		ready = p

		go func() {
			defer close(done)
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
		logger.Info("sweep pipeline enabled",
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
			"group_id", cfg.KafkaGroupID,
		)
	} else {
		close(done)
		logger.Info("sweep pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, api, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
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
