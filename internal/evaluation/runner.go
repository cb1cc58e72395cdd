package evaluation

import (
	"context"
	"log/slog"
	"time"

	"github.com/matkgb/mat-assistant/internal/core/domain"
	"github.com/matkgb/mat-assistant/internal/core/ports"
)

// aggregatedMetrics are the scores that roll up into the aggregate report.
// length_ratio is informational per record and deliberately left out.
var aggregatedMetrics = []string{
	MetricRouge1F,
	MetricRouge2F,
	MetricRougeLF,
	MetricBLEU,
	MetricKeywordOverlap,
}

// Evaluator drives the answer pipeline over a test dataset and scores each
// generated response against its reference answer. Cases run strictly in
// order so per-case wall-clock attribution stays meaningful.
type Evaluator struct {
	service ports.AnswerService
	logger  *slog.Logger
	now     func() time.Time
}

func NewEvaluator(service ports.AnswerService, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// DefaultTestCases is the built-in MAT standards dataset used when no
// external dataset is supplied.
func DefaultTestCases() []domain.TestCase {
	return []domain.TestCase{
		{
			Question:       "What are the MAT standards?",
			ExpectedAnswer: "MAT standards are Medication-Assisted Treatment standards that provide guidelines for treatment implementation.",
			Category:       "general",
		},
		{
			Question:       "What is MAT Standard 1?",
			ExpectedAnswer: "MAT Standard 1 focuses on access and choice in medication-assisted treatment.",
			Category:       "specific_standard",
		},
		{
			Question:       "How are MAT standards implemented?",
			ExpectedAnswer: "MAT standards are implemented through healthcare organizations and supported by various agencies.",
			Category:       "implementation",
		},
		{
			Question:       "What is the aim of MAT?",
			ExpectedAnswer: "The aim of MAT is to provide effective medication-assisted treatment for substance use disorders.",
			Category:       "purpose",
		},
		{
			Question:       "Which organizations support MAT?",
			ExpectedAnswer: "Organizations like Public Health Scotland and NHS support MAT implementation.",
			Category:       "organizations",
		},
	}
}

// Run evaluates every test case and returns individual records plus the
// flat aggregate report. A failing answer pipeline never aborts the run:
// the case is recorded with zeroed scores and the Failed flag set.
func (e *Evaluator) Run(ctx context.Context, cases []domain.TestCase) (*domain.EvaluationResults, error) {
	if len(cases) == 0 {
		cases = DefaultTestCases()
	}
	e.logger.Info("evaluation started", "cases", len(cases))

	records := make([]domain.EvaluationRecord, 0, len(cases))
	totalTime := 0.0

	for i, tc := range cases {
		e.logger.Info("evaluating case", "index", i+1, "total", len(cases), "category", tc.Category)

		start := e.now()
		answer, err := e.service.Answer(ctx, tc.Question)
		elapsed := e.now().Sub(start).Seconds()
		totalTime += elapsed

		record := domain.EvaluationRecord{
			Question:     tc.Question,
			Expected:     tc.ExpectedAnswer,
			Category:     tc.Category,
			ResponseTime: elapsed,
		}
		if err != nil {
			e.logger.Warn("answer pipeline failed for case", "question", tc.Question, "error", err)
			record.Failed = true
			record.Metrics = zeroMetrics()
		} else {
			record.Generated = answer.Response
			record.Metrics = Score(tc.ExpectedAnswer, answer.Response)
			record.SourcesFound = len(answer.Sources)
			record.ContextUsed = answer.ContextUsed
		}
		records = append(records, record)
	}

	aggregate := aggregateMetrics(records)
	aggregate["total_evaluation_time"] = totalTime
	aggregate["average_response_time"] = totalTime / float64(len(cases))

	e.logger.Info("evaluation completed", "cases", len(cases), "total_time_seconds", totalTime)
	return &domain.EvaluationResults{
		IndividualResults: records,
		AggregateMetrics:  aggregate,
		TestCasesCount:    len(cases),
	}, nil
}

func zeroMetrics() map[string]float64 {
	zero := make(map[string]float64, len(aggregatedMetrics)+1)
	for _, name := range aggregatedMetrics {
		zero[name] = 0
	}
	zero[MetricLengthRatio] = 0
	return zero
}

// aggregateMetrics flattens per-record scores into "{metric}_mean",
// "{metric}_min", "{metric}_max" and per-category "{category}_{metric}_mean"
// keys. Categories come from the record set itself.
func aggregateMetrics(records []domain.EvaluationRecord) map[string]float64 {
	aggregate := make(map[string]float64)
	if len(records) == 0 {
		return aggregate
	}

	for _, metric := range aggregatedMetrics {
		mean, lo, hi := summarize(records, metric)
		aggregate[metric+"_mean"] = mean
		aggregate[metric+"_min"] = lo
		aggregate[metric+"_max"] = hi
	}

	byCategory := make(map[string][]domain.EvaluationRecord)
	for _, r := range records {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}
	for category, group := range byCategory {
		for _, metric := range aggregatedMetrics {
			mean, _, _ := summarize(group, metric)
			aggregate[category+"_"+metric+"_mean"] = mean
		}
	}
	return aggregate
}

func summarize(records []domain.EvaluationRecord, metric string) (mean, lo, hi float64) {
	sum := 0.0
	lo = records[0].Metrics[metric]
	hi = lo
	for _, r := range records {
		v := r.Metrics[metric]
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return sum / float64(len(records)), lo, hi
}
