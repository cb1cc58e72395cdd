package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

type sourceFake struct {
	raw  []domain.RawDocument
	err  error
	urls []string
}

func (f *sourceFake) Scrape(_ context.Context, urls []string) ([]domain.RawDocument, error) {
	f.urls = urls
	return f.raw, f.err
}

type normalizerFake struct {
	docs []domain.Document
}

func (f *normalizerFake) Normalize([]domain.RawDocument) []domain.Document { return f.docs }

type corpusRepoFake struct {
	saved []domain.Document
	err   error
}

func (f *corpusRepoFake) ReplaceAll(_ context.Context, docs []domain.Document) error {
	f.saved = docs
	return f.err
}
func (f *corpusRepoFake) ListAll(context.Context) ([]domain.Document, error) { return f.saved, nil }

type graphBuilderFake struct {
	stats domain.GraphStats
	err   error
	calls int
}

func (f *graphBuilderFake) BuildGraph(context.Context, []domain.Document) (domain.GraphStats, error) {
	f.calls++
	return f.stats, f.err
}

type eventsFake struct {
	published int
	err       error
}

func (f *eventsFake) PublishCorpusUpdated(context.Context) error {
	f.published++
	return f.err
}
func (f *eventsFake) SubscribeCorpusUpdated(context.Context, func(context.Context) error) error {
	return nil
}
func (f *eventsFake) Close() {}

func ingestFixtureDocs() []domain.Document {
	return []domain.Document{
		{ID: 0, Text: "MAT standards are important for treatment", SourceURL: "https://a", Length: 41},
		{ID: 1, Text: "Recovery is the main goal of MAT services", SourceURL: "https://b", Length: 41},
	}
}

func TestRefreshHappyPath(t *testing.T) {
	source := &sourceFake{raw: []domain.RawDocument{{SourceURL: "https://a", Text: "x"}, {SourceURL: "https://b", Text: "y"}, {SourceURL: "https://b", Text: "z"}}}
	repo := &corpusRepoFake{}
	graph := &graphBuilderFake{stats: domain.GraphStats{Entities: 4, Relationships: 2}}
	events := &eventsFake{}
	uc := NewIngestCorpusUseCase(source, &normalizerFake{docs: ingestFixtureDocs()}, repo, graph, events, testLogger(), []string{"https://a", "https://b"})

	report, err := uc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if report.Scraped != 3 || report.Kept != 2 || report.Sources != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.GraphStats.Entities != 4 {
		t.Fatalf("graph stats not propagated: %+v", report.GraphStats)
	}
	if len(repo.saved) != 2 {
		t.Fatalf("corpus not persisted")
	}
	if events.published != 1 {
		t.Fatalf("expected one corpus-updated event, got %d", events.published)
	}
	if len(source.urls) != 2 {
		t.Fatalf("configured urls not passed to scraper")
	}
}

func TestRefreshEmptyCorpusFails(t *testing.T) {
	uc := NewIngestCorpusUseCase(&sourceFake{}, &normalizerFake{}, &corpusRepoFake{}, nil, nil, testLogger(), nil)

	_, err := uc.Refresh(context.Background())
	if err == nil {
		t.Fatalf("expected error for empty corpus")
	}
	if !domain.IsKind(err, domain.ErrEmptyCollection) {
		t.Fatalf("expected ErrEmptyCollection, got %v", err)
	}
}

func TestRefreshGraphFailureDegrades(t *testing.T) {
	graph := &graphBuilderFake{err: errors.New("neo4j unavailable")}
	events := &eventsFake{}
	uc := NewIngestCorpusUseCase(&sourceFake{raw: []domain.RawDocument{{Text: "x"}}}, &normalizerFake{docs: ingestFixtureDocs()}, &corpusRepoFake{}, graph, events, testLogger(), nil)

	report, err := uc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("graph failure must not abort refresh, got %v", err)
	}
	if report.GraphStats.Entities != 0 {
		t.Fatalf("expected zero graph stats on failure")
	}
	if events.published != 1 {
		t.Fatalf("event must still publish after graph failure")
	}
}

func TestRefreshScrapeFailureIsFatal(t *testing.T) {
	uc := NewIngestCorpusUseCase(&sourceFake{err: errors.New("network down")}, &normalizerFake{}, &corpusRepoFake{}, nil, nil, testLogger(), nil)
	if _, err := uc.Refresh(context.Background()); err == nil {
		t.Fatalf("expected scrape failure to surface")
	}
}

func TestRefreshPersistFailureIsFatal(t *testing.T) {
	repo := &corpusRepoFake{err: errors.New("disk full")}
	uc := NewIngestCorpusUseCase(&sourceFake{raw: []domain.RawDocument{{Text: "x"}}}, &normalizerFake{docs: ingestFixtureDocs()}, repo, nil, nil, testLogger(), nil)
	if _, err := uc.Refresh(context.Background()); err == nil {
		t.Fatalf("expected persist failure to surface")
	}
}
