package domain

// TestCase is one evaluation question with its reference answer.
type TestCase struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
	Category       string `json:"category"`
}

// EvaluationRecord is the scored outcome of one test case. Metrics maps
// metric name to score; Failed marks cases where the answer pipeline itself
// errored and all scores were zeroed.
type EvaluationRecord struct {
	Question     string             `json:"question"`
	Expected     string             `json:"expected"`
	Generated    string             `json:"generated"`
	Category     string             `json:"category"`
	Metrics      map[string]float64 `json:"metrics"`
	ResponseTime float64            `json:"response_time"`
	SourcesFound int                `json:"sources_found"`
	ContextUsed  bool               `json:"context_used"`
	Failed       bool               `json:"failed"`
}

// EvaluationResults is the serialized output of one evaluation run.
// AggregateMetrics is intentionally flat, including synthesized
// "{category}_{metric}_mean" keys, to keep report templating trivial.
type EvaluationResults struct {
	IndividualResults []EvaluationRecord `json:"individual_results"`
	AggregateMetrics  map[string]float64 `json:"aggregate_metrics"`
	TestCasesCount    int                `json:"test_cases_count"`
}
