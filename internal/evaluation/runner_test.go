package evaluation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

type answerServiceFake struct {
	responses map[string]*domain.Answer
	failOn    string
	calls     []string
}

func (f *answerServiceFake) Answer(_ context.Context, question string) (*domain.Answer, error) {
	f.calls = append(f.calls, question)
	if question == f.failOn {
		return nil, errors.New("pipeline exploded")
	}
	if answer, ok := f.responses[question]; ok {
		return answer, nil
	}
	return &domain.Answer{Response: "generic response about treatment standards."}, nil
}

func (f *answerServiceFake) Statistics() domain.CollectionStats { return domain.CollectionStats{} }
func (f *answerServiceFake) SystemInfo(context.Context) domain.SystemInfo {
	return domain.SystemInfo{}
}

// steppingClock advances one second per call so each case gets a
// deterministic one-second response time.
func steppingClock() func() time.Time {
	base := time.Unix(0, 0)
	calls := 0
	return func() time.Time {
		t := base.Add(time.Duration(calls) * time.Second)
		calls++
		return t
	}
}

func newTestEvaluator(service *answerServiceFake) *Evaluator {
	e := NewEvaluator(service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.now = steppingClock()
	return e
}

func evalCases() []domain.TestCase {
	return []domain.TestCase{
		{Question: "q1", ExpectedAnswer: "the cat sat on the mat", Category: "general"},
		{Question: "q2", ExpectedAnswer: "standards guide treatment", Category: "general"},
		{Question: "q3", ExpectedAnswer: "organizations support implementation", Category: "organizations"},
	}
}

func TestRunScoresEveryCaseInOrder(t *testing.T) {
	service := &answerServiceFake{responses: map[string]*domain.Answer{
		"q1": {Response: "the cat sat on the mat", Sources: []string{"https://a"}, ContextUsed: true},
	}}
	e := newTestEvaluator(service)

	results, err := e.Run(context.Background(), evalCases())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if results.TestCasesCount != 3 || len(results.IndividualResults) != 3 {
		t.Fatalf("expected 3 records, got %d", len(results.IndividualResults))
	}
	if service.calls[0] != "q1" || service.calls[2] != "q3" {
		t.Fatalf("cases ran out of order: %v", service.calls)
	}

	first := results.IndividualResults[0]
	if !almostEqual(first.Metrics[MetricRouge1F], 1.0) {
		t.Fatalf("identical answer should score 1.0, got %v", first.Metrics[MetricRouge1F])
	}
	if first.SourcesFound != 1 || !first.ContextUsed {
		t.Fatalf("answer metadata not carried into record: %+v", first)
	}
	if !almostEqual(first.ResponseTime, 1.0) {
		t.Fatalf("response_time = %v, want 1.0", first.ResponseTime)
	}
}

func TestRunAggregates(t *testing.T) {
	service := &answerServiceFake{responses: map[string]*domain.Answer{
		"q1": {Response: "the cat sat on the mat"},
	}}
	e := newTestEvaluator(service)

	results, err := e.Run(context.Background(), evalCases())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	agg := results.AggregateMetrics

	records := results.IndividualResults
	wantMean := (records[0].Metrics[MetricRouge1F] + records[1].Metrics[MetricRouge1F] + records[2].Metrics[MetricRouge1F]) / 3
	if !almostEqual(agg["rouge1_f_mean"], wantMean) {
		t.Fatalf("rouge1_f_mean = %v, want %v", agg["rouge1_f_mean"], wantMean)
	}
	if !almostEqual(agg["rouge1_f_max"], 1.0) {
		t.Fatalf("rouge1_f_max = %v, want 1.0", agg["rouge1_f_max"])
	}

	wantGeneral := (records[0].Metrics[MetricRouge1F] + records[1].Metrics[MetricRouge1F]) / 2
	if !almostEqual(agg["general_rouge1_f_mean"], wantGeneral) {
		t.Fatalf("general_rouge1_f_mean = %v, want %v", agg["general_rouge1_f_mean"], wantGeneral)
	}
	if _, ok := agg["organizations_bleu_mean"]; !ok {
		t.Fatalf("missing per-category bleu mean")
	}
	if _, ok := agg["length_ratio_mean"]; ok {
		t.Fatalf("length_ratio must not be aggregated")
	}

	if !almostEqual(agg["total_evaluation_time"], 3.0) {
		t.Fatalf("total_evaluation_time = %v, want 3.0", agg["total_evaluation_time"])
	}
	if !almostEqual(agg["average_response_time"], 1.0) {
		t.Fatalf("average_response_time = %v, want 1.0", agg["average_response_time"])
	}
}

func TestRunContinuesPastFailingCase(t *testing.T) {
	service := &answerServiceFake{failOn: "q2"}
	e := newTestEvaluator(service)

	results, err := e.Run(context.Background(), evalCases())
	if err != nil {
		t.Fatalf("a failing case must not abort the run, got %v", err)
	}
	if len(results.IndividualResults) != 3 {
		t.Fatalf("expected all 3 records, got %d", len(results.IndividualResults))
	}

	failed := results.IndividualResults[1]
	if !failed.Failed {
		t.Fatalf("failed flag not set")
	}
	for name, value := range failed.Metrics {
		if value != 0 {
			t.Fatalf("failed case metric %s = %v, want 0", name, value)
		}
	}
	if agg := results.AggregateMetrics["rouge1_f_min"]; agg != 0 {
		t.Fatalf("failed case must pull min to 0, got %v", agg)
	}
}

func TestRunDefaultsDataset(t *testing.T) {
	e := newTestEvaluator(&answerServiceFake{})

	results, err := e.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if results.TestCasesCount != 5 {
		t.Fatalf("expected built-in dataset of 5 cases, got %d", results.TestCasesCount)
	}
}

func TestRenderReportFields(t *testing.T) {
	e := newTestEvaluator(&answerServiceFake{})
	results, err := e.Run(context.Background(), evalCases())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	report := RenderReport(results)
	for _, want := range []string{
		"# MAT Assistant Evaluation Report",
		"- **Test Cases:** 3",
		"- **Total Evaluation Time:** 3.00 seconds",
		"- **Average Response Time:** 1.00 seconds",
		"**ROUGE-1 F-Score:**",
		"**BLEU Score:**",
		"**Keyword Overlap:**",
		"**Best ROUGE-1:**",
		"**Worst BLEU:**",
		"- **General:** ROUGE-1:",
		"- **Organizations:** ROUGE-1:",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}
