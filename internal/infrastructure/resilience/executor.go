package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

// Outcome is a classifier's verdict on one failed call. Retryable drives the
// retry loop, RecordFailure drives the breaker counters.
type Outcome struct {
	Retryable     bool
	RecordFailure bool
}

// Classifier maps an adapter error to an Outcome. Context cancellation and
// circuit-open errors are handled before a classifier runs, so adapters only
// describe their own failure modes.
type Classifier func(err error) Outcome

// Executor holds the shared retry and circuit-breaker policy for the
// assistant's remote dependencies (Ollama, Neo4j, NATS). Adapters bind it to
// a named Operation once and route every call through it.
type Executor struct {
	cfg Config

	mu  sync.Mutex
	ops map[string]*Operation
}

func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg: cfg.withDefaults(),
		ops: make(map[string]*Operation),
	}
}

// Operation is the executor's policy bound to one named remote call. Calls
// sharing a name share breaker state.
type Operation struct {
	name     string
	cfg      Config
	classify Classifier
	breaker  *gobreaker.CircuitBreaker[any]
}

// For binds the policy to a named operation. A nil executor yields a
// pass-through operation (single attempt, no breaker), which keeps the
// executor optional for callers.
func (e *Executor) For(name string, classify Classifier) *Operation {
	if e == nil {
		return &Operation{
			name:     name,
			cfg:      Config{MaxAttempts: 1},
			classify: guard(classify),
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if op, ok := e.ops[name]; ok {
		return op
	}

	op := &Operation{
		name:     name,
		cfg:      e.cfg,
		classify: guard(classify),
	}
	if e.cfg.BreakerEnabled {
		op.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        name,
			MaxRequests: e.cfg.BreakerProbeCalls,
			Timeout:     e.cfg.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= e.cfg.BreakerMinRequests &&
					float64(counts.TotalFailures)/float64(counts.Requests) >= e.cfg.BreakerFailureRatio
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !op.classify(err).RecordFailure
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("breaker state changed", "operation", name, "from", from.String(), "to", to.String())
			},
		})
	}
	e.ops[name] = op
	return op
}

// guard front-runs the adapter classifier: a cancelled caller is neither
// retried nor held against the remote service.
func guard(classify Classifier) Classifier {
	return func(err error) Outcome {
		switch {
		case err == nil:
			return Outcome{}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return Outcome{}
		case classify == nil:
			return Outcome{RecordFailure: true}
		default:
			return classify(err)
		}
	}
}

// Do runs fn under the operation's policy. Errors that the classifier marks
// retryable, and circuit-open rejections, come back wrapped with the
// domain's temporary kind so callers map transience uniformly.
func (op *Operation) Do(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("resilience: nil operation body")
	}

	var err error
	if op.breaker == nil {
		err = op.attempt(ctx, fn)
	} else {
		_, err = op.breaker.Execute(func() (any, error) {
			return nil, op.attempt(ctx, fn)
		})
	}
	return op.finalize(err)
}

func (op *Operation) attempt(ctx context.Context, fn func(context.Context) error) error {
	backoff := op.cfg.InitialBackoff
	var err error
	for remaining := op.cfg.MaxAttempts; remaining > 0; remaining-- {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = fn(ctx); err == nil {
			return nil
		}
		if remaining == 1 || !op.classify(err).Retryable {
			return err
		}

		slog.Warn("remote call retrying",
			"operation", op.name,
			"remaining_attempts", remaining-1,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * op.cfg.BackoffMultiplier)
		if backoff > op.cfg.MaxBackoff {
			backoff = op.cfg.MaxBackoff
		}
	}
	return err
}

func (op *Operation) finalize(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if IsCircuitOpen(err) || op.classify(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, op.name, err)
	}
	return err
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
