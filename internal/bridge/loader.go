package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Loader initializes a Module exactly once and records the outcome as an
// explicit State. The transition out of loading happens at most once and is
// never reset.
type Loader struct {
	mod Module
	log zerolog.Logger
	pub EventPublisher

	mu    sync.Mutex
	state State
	err   error
	done  chan struct{}

	startedAt time.Time
}

// NewLoader returns a Loader in StateNotStarted.
func NewLoader(mod Module, cfg LoaderConfig) *Loader {
	pub := cfg.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	return &Loader{
		mod:   mod,
		log:   cfg.Logger,
		pub:   pub,
		state: StateNotStarted,
		done:  make(chan struct{}),
	}
}

// Module returns the wrapped module.
func (l *Loader) Module() Module { return l.mod }

// State returns the current lifecycle state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err returns the startup failure, or nil unless State is StateFailed.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Ready reports whether initialization completed successfully.
func (l *Loader) Ready() bool { return l.State() == StateReady }

// Done is closed once initialization has settled, successfully or not.
func (l *Loader) Done() <-chan struct{} { return l.done }

// Load initializes the module and waits for the outcome. Only the first call
// runs Module.Init; later and concurrent calls wait for that same outcome.
// A context ending while waiting returns ctx.Err() without affecting the
// initialization run by another caller.
func (l *Loader) Load(ctx context.Context) error {
	if l.begin() {
		l.run(ctx)
		return l.Err()
	}
	return l.wait(ctx)
}

// Start begins initialization in the background and returns a channel that
// receives its outcome once. The loader is in StateLoading when Start
// returns, so adapter calls made right after Start are queued rather than
// rejected.
func (l *Loader) Start(ctx context.Context) <-chan error {
	out := make(chan error, 1)
	if l.begin() {
		go l.run(ctx)
	}
	go func() {
		<-l.done
		out <- l.Err()
	}()
	return out
}

// begin moves not_started to loading and reports whether the caller owns
// the initialization.
func (l *Loader) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateNotStarted {
		return false
	}
	l.state = StateLoading
	l.startedAt = time.Now()
	return true
}

func (l *Loader) run(ctx context.Context) {
	l.pub.Publish(Event{Name: EventLoadStart})
	l.log.Debug().Msg("bibliography module loading")

	err := l.initModule(ctx)

	l.mu.Lock()
	dur := time.Since(l.startedAt)
	if err != nil {
		l.state = StateFailed
		l.err = &startupError{cause: err}
	} else {
		l.state = StateReady
	}
	failure := l.err
	close(l.done)
	l.mu.Unlock()

	if failure != nil {
		l.log.Error().Err(err).Dur("duration", dur).Msg("bibliography module failed to initialize")
		l.pub.Publish(Event{Name: EventLoadFailed, Fields: map[string]any{"error": err.Error(), "dur_ms": dur.Milliseconds()}})
		return
	}
	l.log.Info().Dur("duration", dur).Msg("bibliography module ready")
	l.pub.Publish(Event{Name: EventLoadReady, Fields: map[string]any{"dur_ms": dur.Milliseconds()}})
}

func (l *Loader) initModule(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return l.mod.Init(ctx)
}

func (l *Loader) wait(ctx context.Context) error {
	select {
	case <-l.done:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Await applies the readiness policy used for adapter calls: nil when ready,
// ErrNotInitialized before Start/Load, the startup failure after a failed
// initialization, and a wait for the outcome while loading.
func (l *Loader) Await(ctx context.Context) error {
	l.mu.Lock()
	st, err := l.state, l.err
	l.mu.Unlock()
	switch st {
	case StateReady:
		return nil
	case StateFailed:
		return err
	case StateLoading:
		return l.wait(ctx)
	default:
		return ErrNotInitialized
	}
}
