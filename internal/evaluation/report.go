package evaluation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

// RenderReport formats an evaluation run as a human-readable markdown
// summary. Pure formatting over the aggregate report, no recomputation.
func RenderReport(results *domain.EvaluationResults) string {
	agg := results.AggregateMetrics

	var b strings.Builder
	b.WriteString("# MAT Assistant Evaluation Report\n\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Test Cases:** %d\n", results.TestCasesCount)
	fmt.Fprintf(&b, "- **Total Evaluation Time:** %.2f seconds\n", agg["total_evaluation_time"])
	fmt.Fprintf(&b, "- **Average Response Time:** %.2f seconds\n\n", agg["average_response_time"])

	b.WriteString("## Performance Metrics (Mean Scores)\n")
	fmt.Fprintf(&b, "- **ROUGE-1 F-Score:** %.3f\n", agg["rouge1_f_mean"])
	fmt.Fprintf(&b, "- **ROUGE-2 F-Score:** %.3f\n", agg["rouge2_f_mean"])
	fmt.Fprintf(&b, "- **ROUGE-L F-Score:** %.3f\n", agg["rougeL_f_mean"])
	fmt.Fprintf(&b, "- **BLEU Score:** %.3f\n", agg["bleu_mean"])
	fmt.Fprintf(&b, "- **Keyword Overlap:** %.3f\n\n", agg["keyword_overlap_mean"])

	b.WriteString("## Performance Range\n")
	fmt.Fprintf(&b, "- **Best ROUGE-1:** %.3f\n", agg["rouge1_f_max"])
	fmt.Fprintf(&b, "- **Worst ROUGE-1:** %.3f\n", agg["rouge1_f_min"])
	fmt.Fprintf(&b, "- **Best BLEU:** %.3f\n", agg["bleu_max"])
	fmt.Fprintf(&b, "- **Worst BLEU:** %.3f\n\n", agg["bleu_min"])

	b.WriteString("## Category Performance\n")
	for _, category := range reportCategories(agg) {
		fmt.Fprintf(&b, "- **%s:** ROUGE-1: %.3f, BLEU: %.3f\n",
			titleCase(category),
			agg[category+"_rouge1_f_mean"],
			agg[category+"_bleu_mean"])
	}
	return b.String()
}

// reportCategories recovers the category names from the flat aggregate keys.
func reportCategories(agg map[string]float64) []string {
	const suffix = "_rouge1_f_mean"
	var categories []string
	for key := range agg {
		if category, ok := strings.CutSuffix(key, suffix); ok && category != "" {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	return categories
}

func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
