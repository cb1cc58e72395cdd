package usecase

import (
	"github.com/matkgb/mat-assistant/internal/core/domain"
)

const (
	contextPassageLimit = 3
	passageCharLimit    = 200
	truncationMarker    = "..."
)

// composeContext assembles the bounded generation context: graph facts
// first, then up to three passages in descending similarity order, each
// hard-truncated to the character limit.
func composeContext(retrieved []domain.RetrievalResult, graphFacts string) domain.Context {
	ctx := domain.Context{GraphFacts: graphFacts}

	limit := len(retrieved)
	if limit > contextPassageLimit {
		limit = contextPassageLimit
	}
	for _, res := range retrieved[:limit] {
		ctx.Passages = append(ctx.Passages, truncateRunes(res.Document.Text, passageCharLimit))
	}
	return ctx
}

// truncateRunes cuts at a character boundary, never mid-rune, so truncated
// text stays valid UTF-8.
func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + truncationMarker
}
