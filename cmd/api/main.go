package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/matkgb/mat-assistant/internal/adapters/http"
	"github.com/matkgb/mat-assistant/internal/bootstrap"
	"github.com/matkgb/mat-assistant/internal/config"
	"github.com/matkgb/mat-assistant/internal/observability/logging"
	"github.com/matkgb/mat-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if err := app.LoadAndFit(ctx); err != nil {
		log.Fatalf("load corpus error: %v", err)
	}

	// Refit when an ingest run announces a new corpus generation.
	go func() {
		err := app.Events.SubscribeCorpusUpdated(ctx, func(handlerCtx context.Context) error {
			refitCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
			defer cancel()
			return app.LoadAndFit(refitCtx)
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("corpus update subscription failed", "error", err)
		}
	}()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(app.AnswerUC, httpMetrics, logger,
		httpadapter.WithRateLimit(cfg.APIRateLimitRPS, cfg.APIRateLimitBurst),
	).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
