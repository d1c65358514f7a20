package bridge

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// fakeModule records every input and delegates generation to gen.
type fakeModule struct {
	initErr   error
	initGate  chan struct{}
	initPanic bool
	initCalls atomic.Int32

	mu     sync.Mutex
	inputs []any
	gen    func(input any) (string, error)
}

func (m *fakeModule) Init(ctx context.Context) error {
	m.initCalls.Add(1)
	if m.initGate != nil {
		select {
		case <-m.initGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.initPanic {
		panic("init exploded")
	}
	return m.initErr
}

func (m *fakeModule) CreateBibString(_ context.Context, input any) (string, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	gen := m.gen
	m.mu.Unlock()
	if gen == nil {
		return "ok", nil
	}
	return gen(input)
}

func (m *fakeModule) Inputs() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.inputs))
	copy(out, m.inputs)
	return out
}

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := strings.TrimSpace(b.buf.String())
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (o *recordingObserver) ObserveCall(outcome Outcome, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

func (o *recordingObserver) Outcomes() []Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Outcome(nil), o.outcomes...)
}

func waitCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// eventRecorder is an EventPublisher that keeps every lifecycle event.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *eventRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
