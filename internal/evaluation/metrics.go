package evaluation

import (
	"math"
	"regexp"
	"strings"
)

// Metric names produced by Score, in report order.
const (
	MetricRouge1F        = "rouge1_f"
	MetricRouge2F        = "rouge2_f"
	MetricRougeLF        = "rougeL_f"
	MetricBLEU           = "bleu"
	MetricLengthRatio    = "length_ratio"
	MetricKeywordOverlap = "keyword_overlap"
)

const (
	bleuMaxOrder      = 4
	bleuSmoothEpsilon = 0.1
)

var overlapTokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Score computes the answer-quality metrics for one generated response
// against its reference. Every score lives in [0,1] except length_ratio,
// which is the raw token-count ratio. Empty inputs score zero, never panic.
func Score(reference, generated string) map[string]float64 {
	refOverlap := overlapTokens(reference)
	genOverlap := overlapTokens(generated)

	refTokens := strings.Fields(reference)
	genTokens := strings.Fields(generated)

	return map[string]float64{
		MetricRouge1F:        rougeN(refOverlap, genOverlap, 1),
		MetricRouge2F:        rougeN(refOverlap, genOverlap, 2),
		MetricRougeLF:        rougeL(refOverlap, genOverlap),
		MetricBLEU:           bleu(refTokens, genTokens),
		MetricLengthRatio:    float64(len(genTokens)) / math.Max(float64(len(refTokens)), 1),
		MetricKeywordOverlap: keywordOverlap(refTokens, genTokens),
	}
}

// overlapTokens lowercases and keeps alphanumeric runs only, so that
// punctuation never counts toward n-gram overlap.
func overlapTokens(text string) []string {
	return overlapTokenPattern.FindAllString(strings.ToLower(text), -1)
}

func ngramCounts(tokens []string, n int) map[string]int {
	if len(tokens) < n {
		return nil
	}
	counts := make(map[string]int, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x1f")]++
	}
	return counts
}

// rougeN is the n-gram overlap F-measure: clipped match count against both
// the reference and candidate n-gram totals.
func rougeN(ref, gen []string, n int) float64 {
	refCounts := ngramCounts(ref, n)
	genCounts := ngramCounts(gen, n)

	refTotal := len(ref) - n + 1
	genTotal := len(gen) - n + 1
	if refTotal <= 0 || genTotal <= 0 {
		return 0
	}

	matches := 0
	for gram, count := range genCounts {
		matches += min(count, refCounts[gram])
	}
	precision := float64(matches) / float64(genTotal)
	recall := float64(matches) / float64(refTotal)
	return fMeasure(precision, recall)
}

// rougeL is the longest-common-subsequence F-measure over token sequences.
func rougeL(ref, gen []string) float64 {
	if len(ref) == 0 || len(gen) == 0 {
		return 0
	}
	lcs := lcsLength(ref, gen)
	precision := float64(lcs) / float64(len(gen))
	recall := float64(lcs) / float64(len(ref))
	return fMeasure(precision, recall)
}

func fMeasure(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// bleu is the sentence-level score over n-gram orders 1..4: geometric mean
// of modified precisions with a brevity penalty. Orders with zero matches
// are smoothed with a small epsilon numerator instead of zeroing the whole
// score, which keeps short answers comparable.
func bleu(ref, gen []string) float64 {
	if len(gen) == 0 {
		return 0
	}

	logSum := 0.0
	for n := 1; n <= bleuMaxOrder; n++ {
		matches, total := modifiedPrecision(ref, gen, n)
		numerator := float64(matches)
		if matches == 0 {
			numerator = bleuSmoothEpsilon
		}
		logSum += math.Log(numerator / float64(total))
	}
	score := math.Exp(logSum / bleuMaxOrder)

	return brevityPenalty(len(ref), len(gen)) * score
}

// modifiedPrecision clips each candidate n-gram count by its reference
// count. The denominator is floored at 1 so short candidates stay defined.
func modifiedPrecision(ref, gen []string, n int) (matches, total int) {
	refCounts := ngramCounts(ref, n)
	genCounts := ngramCounts(gen, n)
	for gram, count := range genCounts {
		matches += min(count, refCounts[gram])
		total += count
	}
	if total < 1 {
		total = 1
	}
	return matches, total
}

func brevityPenalty(refLen, genLen int) float64 {
	if genLen >= refLen {
		return 1
	}
	return math.Exp(1 - float64(refLen)/float64(genLen))
}

// keywordOverlap is the case-folded token-set intersection over the
// reference token-set size.
func keywordOverlap(ref, gen []string) float64 {
	refSet := make(map[string]struct{}, len(ref))
	for _, tok := range ref {
		refSet[strings.ToLower(tok)] = struct{}{}
	}
	genSet := make(map[string]struct{}, len(gen))
	for _, tok := range gen {
		genSet[strings.ToLower(tok)] = struct{}{}
	}

	shared := 0
	for tok := range genSet {
		if _, ok := refSet[tok]; ok {
			shared++
		}
	}
	return float64(shared) / math.Max(float64(len(refSet)), 1)
}
