package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/matkgb/mat-assistant/internal/bootstrap"
	"github.com/matkgb/mat-assistant/internal/config"
	"github.com/matkgb/mat-assistant/internal/evaluation"
	"github.com/matkgb/mat-assistant/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("evaluate", cfg.LogLevel)
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

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	results, err := app.Evaluator.Run(runCtx, nil)
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}

	runID := uuid.NewString()
	if err := app.Results.SaveRun(runCtx, runID, results); err != nil {
		logger.Warn("saving evaluation run to database failed", "run_id", runID, "error", err)
	}
	if err := app.Storage.SaveResultsJSON(runCtx, results); err != nil {
		logger.Warn("writing evaluation results file failed", "error", err)
	}

	fmt.Println(evaluation.RenderReport(results))
}
