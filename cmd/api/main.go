// Command api runs the flight delay prediction service: a small HTTP surface
// over a pre-trained model artifact. The model and training column manifest
// load once at startup; a failed model load leaves the service running in a
// degraded state that reports "model not loaded" instead of crashing, so the
// health endpoints stay observable.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aerostat/flight-delay-service/internal/adapter/httpapi"
	kafkaadapter "github.com/aerostat/flight-delay-service/internal/adapter/kafka"
	"github.com/aerostat/flight-delay-service/internal/audit"
	"github.com/aerostat/flight-delay-service/internal/config"
	"github.com/aerostat/flight-delay-service/internal/domain"
	"github.com/aerostat/flight-delay-service/internal/model"
	"github.com/aerostat/flight-delay-service/internal/observability"
	"github.com/aerostat/flight-delay-service/internal/predict"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	aligner, predictor := loadArtifacts(cfg, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var auditor predict.Auditor
	var auditWriter *kafkaadapter.Writer
	var dispatcherDone chan struct{}
	if cfg.AuditEnabled {
		auditWriter = kafkaadapter.NewWriter(cfg, logger)
		dispatcher := audit.NewDispatcher(
			auditWriter,
			cfg.AuditQueueSize,
			cfg.AuditBatchSize,
			cfg.AuditFlushInterval,
			metrics,
			logger,
		)
		dispatcherDone = make(chan struct{})
		go func() {
			_ = dispatcher.Run(ctx)
			close(dispatcherDone)
		}()
		auditor = dispatcher
		logger.Info("prediction audit trail enabled", "topic", cfg.KafkaAuditTopic)
	} else {
		logger.Info("prediction audit trail disabled")
	}

	svc := predict.New(aligner, predictor, auditor, metrics, logger)
	srv := httpapi.NewPredictionServer(cfg.HTTPAddr, svc, logger)

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
	if dispatcherDone != nil {
		// The dispatcher drains its queue once the signal context is
		// cancelled; wait for that before closing the producer.
		select {
		case <-dispatcherDone:
		case <-shutdownCtx.Done():
			logger.Warn("audit dispatcher did not drain before shutdown deadline")
		}
	}
	if auditWriter != nil {
		if err := auditWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// loadArtifacts loads the training column manifest and the model artifact.
// Either may fail: a missing manifest only matters for schema-encoded
// artifacts, and a missing model degrades the service rather than killing it.
func loadArtifacts(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*domain.Aligner, model.Predictor) {
	var schema *domain.TrainingSchema
	if cfg.ColumnsPath != "" {
		s, err := model.LoadSchema(cfg.ColumnsPath)
		if err != nil {
			logger.Warn("training column manifest not loaded", "path", cfg.ColumnsPath, "error", err)
		} else {
			schema = s
			metrics.SchemaLoaded.Set(1)
			logger.Info("training column manifest loaded", "path", cfg.ColumnsPath, "columns", s.Len())
		}
	}

	m, err := model.Load(cfg.ModelPath, schema)
	if err != nil {
		logger.Error("model artifact not loaded, serving degraded", "path", cfg.ModelPath, "error", err)
		return nil, nil
	}

	aligner, err := domain.NewAligner(m.Encoding(), domain.AirlineVocabulary(), domain.AirportVocabulary(), schema)
	if err != nil {
		logger.Error("aligner init failed, serving degraded", "error", err)
		return nil, nil
	}

	metrics.ModelLoaded.Set(1)
	logger.Info("model artifact loaded",
		"path", cfg.ModelPath,
		"name", m.Name(),
		"kind", m.Kind(),
		"encoding", m.Encoding(),
	)

	var predictor model.Predictor = m
	if cfg.PredictionCacheSize > 0 {
		predictor = model.NewCachedPredictor(m, cfg.PredictionCacheSize)
		logger.Info("prediction score cache enabled", "max_entries", cfg.PredictionCacheSize)
	}
	return aligner, predictor
}
