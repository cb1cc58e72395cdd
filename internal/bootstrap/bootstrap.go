package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matkgb/mat-assistant/internal/config"
	"github.com/matkgb/mat-assistant/internal/core/domain"
	"github.com/matkgb/mat-assistant/internal/core/ports"
	"github.com/matkgb/mat-assistant/internal/core/usecase"
	"github.com/matkgb/mat-assistant/internal/evaluation"
	neo4jstore "github.com/matkgb/mat-assistant/internal/infrastructure/factstore/neo4j"
	"github.com/matkgb/mat-assistant/internal/infrastructure/index/tfidf"
	"github.com/matkgb/mat-assistant/internal/infrastructure/llm/ollama"
	"github.com/matkgb/mat-assistant/internal/infrastructure/normalize"
	natsqueue "github.com/matkgb/mat-assistant/internal/infrastructure/queue/nats"
	"github.com/matkgb/mat-assistant/internal/infrastructure/repository/postgres"
	"github.com/matkgb/mat-assistant/internal/infrastructure/resilience"
	"github.com/matkgb/mat-assistant/internal/infrastructure/scraper/web"
	"github.com/matkgb/mat-assistant/internal/infrastructure/storage/localfs"
)

// App wires the shared infrastructure once; the api, ingest and evaluate
// commands each use the slice of it they need.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Corpus  *postgres.CorpusRepository
	Results *postgres.ResultsRepository
	Storage *localfs.Storage
	Events  ports.CorpusEvents
	Index   *tfidf.Index

	AnswerUC ports.AnswerService
	IngestUC ports.CorpusIngestor

	Evaluator *evaluation.Evaluator

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	corpusRepo := postgres.NewCorpusRepository(db)
	if err := corpusRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure corpus schema: %w", err)
	}
	resultsRepo := postgres.NewResultsRepository(db)
	if err := resultsRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure results schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init processed-data storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	events, err := natsqueue.New(cfg.NATSURL, natsqueue.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init corpus events: %w", err)
	}

	generator := ollama.New(cfg.OllamaURL, cfg.OllamaModel, executor)

	// The assistant answers from the text corpus alone when the graph
	// database is unreachable.
	var facts ports.FactStore
	var graph ports.GraphBuilder
	store, err := neo4jstore.New(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase, executor, logger)
	if err != nil {
		logger.Warn("knowledge graph unavailable, continuing without it", "error", err)
	} else {
		facts = store
		graph = store
	}

	index := tfidf.New(cfg.RetrieverMaxFeatures)

	genOpts := domain.GenerationOptions{
		MaxNewTokens: cfg.GenMaxNewTokens,
		Temperature:  cfg.GenTemperature,
	}
	answerUC := usecase.NewAnswerUseCase(index, facts, generator, logger, cfg.RetrieverTopK, genOpts)

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load scrape sources: %w", err)
	}
	scraper := web.New(logger)
	ingestUC := usecase.NewIngestCorpusUseCase(scraper, normalize.New(), corpusRepo, graph, events, logger, sources.URLs)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Corpus:    corpusRepo,
		Results:   resultsRepo,
		Storage:   storage,
		Events:    events,
		Index:     index,
		AnswerUC:  answerUC,
		IngestUC:  ingestUC,
		Evaluator: evaluation.NewEvaluator(answerUC, logger),
		closeFn: func() {
			events.Close()
			_ = db.Close()
			if store != nil {
				_ = store.Close(context.Background())
			}
		},
	}, nil
}

// LoadAndFit builds the index from the persisted corpus, preferring the
// database and falling back to the CSV snapshot. An empty corpus leaves the
// index unfitted; queries then fail until an ingest run completes.
func (a *App) LoadAndFit(ctx context.Context) error {
	docs, err := a.Corpus.ListAll(ctx)
	if err != nil || len(docs) == 0 {
		if err != nil {
			a.Logger.Warn("database corpus unavailable, trying snapshot", "error", err)
		}
		docs, err = a.Storage.LoadCorpusCSV(ctx)
		if err != nil {
			a.Logger.Warn("no corpus available, index stays unfitted", "error", err)
			return nil
		}
	}
	if len(docs) == 0 {
		a.Logger.Warn("corpus is empty, index stays unfitted")
		return nil
	}

	if err := a.Index.Fit(docs); err != nil {
		return fmt.Errorf("fit index: %w", err)
	}
	a.Logger.Info("index fitted", "documents", len(docs))
	return nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
