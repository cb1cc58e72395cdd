package nats

import (
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/matkgb/mat-assistant/internal/infrastructure/resilience"
)

// Connection-level publish failures heal once the client reconnects, so they
// retry; anything else (bad subject, oversized payload) will not.
func classifyPublishError(err error) resilience.Outcome {
	switch {
	case errors.Is(err, nats.ErrNoServers),
		errors.Is(err, nats.ErrTimeout),
		errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrDisconnected):
		return resilience.Outcome{Retryable: true, RecordFailure: true}
	default:
		return resilience.Outcome{RecordFailure: true}
	}
}
