package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/matkgb/mat-assistant/internal/core/domain"
	"github.com/matkgb/mat-assistant/internal/core/ports"
)

type IngestCorpusUseCase struct {
	source     ports.CorpusSource
	normalizer ports.Normalizer
	repo       ports.CorpusRepository
	graph      ports.GraphBuilder
	events     ports.CorpusEvents
	logger     *slog.Logger
	urls       []string
}

func NewIngestCorpusUseCase(
	source ports.CorpusSource,
	normalizer ports.Normalizer,
	repo ports.CorpusRepository,
	graph ports.GraphBuilder,
	events ports.CorpusEvents,
	logger *slog.Logger,
	urls []string,
) *IngestCorpusUseCase {
	return &IngestCorpusUseCase{
		source:     source,
		normalizer: normalizer,
		repo:       repo,
		graph:      graph,
		events:     events,
		logger:     logger,
		urls:       urls,
	}
}

// Refresh scrapes the configured sources, normalizes the result, replaces
// the persisted corpus, rebuilds the knowledge graph and announces the new
// corpus generation. A graph-build failure degrades to a corpus-only
// refresh; everything else is fatal to the run.
func (uc *IngestCorpusUseCase) Refresh(ctx context.Context) (*domain.IngestReport, error) {
	raw, err := uc.source.Scrape(ctx, uc.urls)
	if err != nil {
		return nil, fmt.Errorf("scrape sources: %w", err)
	}

	docs := uc.normalizer.Normalize(raw)
	if len(docs) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyCollection, "refresh corpus", errors.New("no documents survived normalization"))
	}
	uc.logger.Info("corpus normalized", "scraped", len(raw), "kept", len(docs))

	if err := uc.repo.ReplaceAll(ctx, docs); err != nil {
		return nil, fmt.Errorf("persist corpus: %w", err)
	}

	report := &domain.IngestReport{
		Scraped: len(raw),
		Kept:    len(docs),
		Sources: countSources(docs),
	}

	if uc.graph != nil {
		stats, err := uc.graph.BuildGraph(ctx, docs)
		if err != nil {
			uc.logger.Warn("knowledge graph build failed", "error", err)
		} else {
			report.GraphStats = stats
		}
	}

	if uc.events != nil {
		if err := uc.events.PublishCorpusUpdated(ctx); err != nil {
			return nil, fmt.Errorf("publish corpus update: %w", err)
		}
	}
	return report, nil
}

func countSources(docs []domain.Document) int {
	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if doc.SourceURL != "" {
			seen[doc.SourceURL] = struct{}{}
		}
	}
	return len(seen)
}
