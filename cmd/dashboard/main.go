// Command dashboard runs the aggregation service: one full pass over the
// historical flight dataset at startup, then an HTTP API serving the summary
// counts and grouped tables to the visualization layer. Re-run the binary to
// recompute against fresh data; there is no incremental update path.
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
	"github.com/aerostat/flight-delay-service/internal/aggregate"
	"github.com/aerostat/flight-delay-service/internal/config"
	"github.com/aerostat/flight-delay-service/internal/domain"
	"github.com/aerostat/flight-delay-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	records, err := aggregate.ReadDataset(cfg.DatasetPath)
	if err != nil {
		logger.Error("failed to read historical dataset", "path", cfg.DatasetPath, "error", err)
		os.Exit(1)
	}

	builder := aggregate.NewBuilder(
		domain.AirlineVocabulary(),
		domain.AirportVocabulary(),
		metrics,
		logger,
	)
	report := builder.Build(records)

	srv := httpapi.NewStatsServer(cfg.DashboardAddr, report, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	logger.Info("shutdown complete")
}
