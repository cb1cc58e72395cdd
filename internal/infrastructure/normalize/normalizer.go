package normalize

import (
	"regexp"
	"strings"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

const minTextLength = 20

var (
	disallowedChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?()-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// Normalizer cleans scraped text into the indexed document collection:
// strip disallowed characters, collapse whitespace, drop empties and exact
// duplicates, drop texts under 20 characters, re-index from 0.
type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Normalize(raw []domain.RawDocument) []domain.Document {
	out := make([]domain.Document, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, r := range raw {
		text := CleanText(r.Text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		if len(text) < minTextLength {
			continue
		}
		out = append(out, domain.Document{
			ID:        len(out),
			Text:      text,
			SourceURL: r.SourceURL,
			Length:    len(text),
		})
	}
	return out
}

// CleanText strips characters outside the allowed set, then collapses
// whitespace runs. Stripping before collapsing keeps the result a fixed
// point under repeated application.
func CleanText(text string) string {
	text = disallowedChars.ReplaceAllString(text, "")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
