package ports

import (
	"context"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

// AnswerService is the inbound contract for question answering. Answer must
// degrade to a best-effort response on runtime failures; the only hard error
// it surfaces is an unfit index.
type AnswerService interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
	Statistics() domain.CollectionStats
	SystemInfo(ctx context.Context) domain.SystemInfo
}

// CorpusIngestor is the inbound contract for corpus refresh orchestration.
type CorpusIngestor interface {
	Refresh(ctx context.Context) (*domain.IngestReport, error)
}
