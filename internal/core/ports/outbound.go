package ports

import (
	"context"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

// CorpusSource produces raw text segments from the configured origins.
type CorpusSource interface {
	Scrape(ctx context.Context, urls []string) ([]domain.RawDocument, error)
}

// Normalizer cleans raw segments into the immutable document collection.
type Normalizer interface {
	Normalize(raw []domain.RawDocument) []domain.Document
}

// CorpusRepository persists and reads the normalized corpus.
type CorpusRepository interface {
	ReplaceAll(ctx context.Context, docs []domain.Document) error
	ListAll(ctx context.Context) ([]domain.Document, error)
}

// Retriever is the fitted lexical index. Fit fully replaces the vector
// space; Retrieve and RetrieveByKeywords never observe a partial fit.
// All methods are pure in-memory computation, hence no context.
type Retriever interface {
	Fit(docs []domain.Document) error
	Retrieve(query string, k int) ([]domain.RetrievalResult, error)
	RetrieveByKeywords(keywords []string, k int) ([]domain.RetrievalResult, error)
	Statistics() domain.CollectionStats
	Fitted() bool
}

// FactStore is the read-only view of the knowledge graph. Query accepts a
// Cypher MATCH ... RETURN statement and yields ordered key-value rows.
type FactStore interface {
	Query(ctx context.Context, cypher string) ([]map[string]any, error)
	Ready(ctx context.Context) bool
}

// GraphBuilder derives entities and relationships from the corpus and
// writes them to the knowledge graph.
type GraphBuilder interface {
	BuildGraph(ctx context.Context, docs []domain.Document) (domain.GraphStats, error)
}

// Generator is the opaque text generator: one prompt in, one completion out.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error)
}

// CorpusEvents publishes/consumes corpus refresh notifications.
type CorpusEvents interface {
	PublishCorpusUpdated(ctx context.Context) error
	SubscribeCorpusUpdated(ctx context.Context, handler func(context.Context) error) error
	Close()
}

// ResultsRepository persists evaluation runs.
type ResultsRepository interface {
	SaveRun(ctx context.Context, runID string, results *domain.EvaluationResults) error
}
