package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

func retryConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
		BreakerEnabled:    false,
	}
}

func transientClassifier(target error) Classifier {
	return func(err error) Outcome {
		return Outcome{Retryable: errors.Is(err, target), RecordFailure: true}
	}
}

func TestDoRetriesTransientFailure(t *testing.T) {
	errDown := errors.New("connection refused")
	op := NewExecutor(retryConfig()).For("graph query", transientClassifier(errDown))

	attempts := 0
	err := op.Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errDown
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoWrapsExhaustedRetriesAsTemporary(t *testing.T) {
	errDown := errors.New("no servers available")
	op := NewExecutor(retryConfig()).For("corpus publish", transientClassifier(errDown))

	err := op.Do(context.Background(), func(context.Context) error {
		return errDown
	})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("exhausted transient failure must carry the temporary kind, got %v", err)
	}
	if !errors.Is(err, errDown) {
		t.Fatalf("original error must stay in the chain, got %v", err)
	}
}

func TestDoDoesNotRetryOrWrapPermanentFailure(t *testing.T) {
	errBad := errors.New("model not found")
	op := NewExecutor(retryConfig()).For("generate", func(error) Outcome {
		return Outcome{Retryable: false, RecordFailure: false}
	})

	attempts := 0
	err := op.Do(context.Background(), func(context.Context) error {
		attempts++
		return errBad
	})
	if !errors.Is(err, errBad) {
		t.Fatalf("expected the permanent error, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("permanent failure must not be marked temporary")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoReturnsCancellationUnwrapped(t *testing.T) {
	op := NewExecutor(retryConfig()).For("generate", func(error) Outcome {
		return Outcome{Retryable: true, RecordFailure: true}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := op.Do(ctx, func(context.Context) error {
		attempts++
		return errors.New("should not run")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("cancellation must not be marked temporary")
	}
	if attempts != 0 {
		t.Fatalf("cancelled context must not invoke the call, got %d attempts", attempts)
	}
}

func TestDoOpenBreakerRejectsAndMarksTemporary(t *testing.T) {
	exec := NewExecutor(Config{
		MaxAttempts:         1,
		InitialBackoff:      time.Millisecond,
		MaxBackoff:          time.Millisecond,
		BackoffMultiplier:   2,
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerCooldown:     time.Minute,
		BreakerProbeCalls:   1,
	})
	errDown := errors.New("store unavailable")
	op := exec.For("graph query", func(error) Outcome {
		return Outcome{Retryable: false, RecordFailure: true}
	})

	for i := 0; i < 2; i++ {
		if err := op.Do(context.Background(), func(context.Context) error { return errDown }); !errors.Is(err, errDown) {
			t.Fatalf("call %d: expected store error, got %v", i, err)
		}
	}

	err := op.Do(context.Background(), func(context.Context) error {
		t.Fatalf("open breaker must not invoke the call")
		return nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open-state rejection, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("open-state rejection must carry the temporary kind, got %v", err)
	}
}

func TestForSharesBreakerStateByName(t *testing.T) {
	exec := NewExecutor(retryConfig())
	first := exec.For("generate", nil)
	second := exec.For("generate", nil)
	if first != second {
		t.Fatalf("same operation name must bind to the same policy instance")
	}
}

func TestNilExecutorRunsOnceAndStillClassifies(t *testing.T) {
	errDown := errors.New("timeout awaiting response")
	var exec *Executor
	op := exec.For("corpus publish", transientClassifier(errDown))

	attempts := 0
	err := op.Do(context.Background(), func(context.Context) error {
		attempts++
		return errDown
	})
	if attempts != 1 {
		t.Fatalf("nil executor must run exactly once, got %d attempts", attempts)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("transient failure must still be marked temporary, got %v", err)
	}
}
