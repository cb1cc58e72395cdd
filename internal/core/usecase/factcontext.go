package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/matkgb/mat-assistant/internal/core/ports"
)

// factRule gates one read query on question keywords. Rules run in fixed
// order; the first matching rule with results wins.
type factRule struct {
	keywords []string
	cypher   string
	label    string
}

var factRules = []factRule{
	{
		keywords: []string{"standard"},
		cypher:   "MATCH (n:MATStandard) RETURN n.name AS name LIMIT 5",
		label:    "Related MAT Standards",
	},
	{
		keywords: []string{"organization", "organisation"},
		cypher:   "MATCH (n:Organization) RETURN n.name AS name LIMIT 3",
		label:    "Related Organizations",
	},
}

// graphFactsFor renders the knowledge-graph context line for a question.
// Fact-store failures degrade to an empty string; they are never fatal to
// the answer pipeline.
func graphFactsFor(ctx context.Context, store ports.FactStore, question string, logger *slog.Logger) string {
	if store == nil {
		return ""
	}
	lowered := strings.ToLower(question)

	for _, rule := range factRules {
		if !containsAny(lowered, rule.keywords) {
			continue
		}

		rows, err := store.Query(ctx, rule.cypher)
		if err != nil {
			logger.Warn("fact store query failed", "label", rule.label, "error", err)
			continue
		}

		names := make([]string, 0, len(rows))
		for _, row := range rows {
			if name, ok := row["name"].(string); ok && name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			return rule.label + ": " + strings.Join(names, ", ")
		}
	}
	return ""
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
