package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matkgb/mat-assistant/internal/bootstrap"
	"github.com/matkgb/mat-assistant/internal/config"
	"github.com/matkgb/mat-assistant/internal/observability/logging"
	"github.com/matkgb/mat-assistant/internal/observability/metrics"
)

const serviceName = "ingest"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	ingestMetrics := metrics.NewIngestMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.IngestMetricsPort,
		Handler: ingestMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	start := time.Now()
	report, err := app.IngestUC.Refresh(runCtx)
	duration := time.Since(start)
	if err != nil {
		ingestMetrics.FinishRefresh(serviceName, duration, 0, 0, err)
		log.Fatalf("corpus refresh failed: %v", err)
	}
	ingestMetrics.FinishRefresh(serviceName, duration, report.Kept, report.GraphStats.Entities, nil)

	// Snapshot the fresh corpus so the api can start without the database.
	docs, err := app.Corpus.ListAll(runCtx)
	if err != nil {
		logger.Warn("corpus snapshot skipped, listing failed", "error", err)
	} else if err := app.Storage.SaveCorpusCSV(runCtx, docs); err != nil {
		logger.Warn("corpus snapshot skipped, write failed", "error", err)
	}

	logger.Info("corpus refresh completed",
		"scraped", report.Scraped,
		"kept", report.Kept,
		"sources", report.Sources,
		"graph_entities", report.GraphStats.Entities,
		"graph_relationships", report.GraphStats.Relationships,
		"duration_seconds", duration.Seconds(),
	)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
