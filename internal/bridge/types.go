package bridge

import (
	"context"
	"time"
)

// Module is the bibliography generator the bridge drives. Init must succeed
// before CreateBibString is called; the bridge guarantees that ordering.
type Module interface {
	Init(ctx context.Context) error
	// CreateBibString receives the caller's input unmodified.
	CreateBibString(ctx context.Context, input any) (string, error)
}

// State represents the lifecycle state of the loader.
type State string

const (
	StateNotStarted State = "not_started"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// Outcome classifies a settled adapter call.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeRejected Outcome = "rejected" // module not initialized or failed to start
)

// Observer is notified once per settled adapter call. Implementations must
// be safe for concurrent use and must not block.
type Observer interface {
	ObserveCall(outcome Outcome, d time.Duration)
}

// FailureHandler receives every failed call. It replaces the default
// diagnostic log line when set.
type FailureHandler func(input any, err error)

// Stats is a snapshot of adapter counters.
type Stats struct {
	Inflight  int64
	Succeeded uint64
	Failed    uint64
}
