package bridge

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Adapter forwards generation requests to the loader's module. Each call is
// independent and runs on its own goroutine; there is no shared result slot.
type Adapter struct {
	loader    *Loader
	log       zerolog.Logger
	onFailure FailureHandler
	silent    bool
	observer  Observer

	inflight  atomic.Int64
	succeeded atomic.Uint64
	failed    atomic.Uint64
}

// NewAdapter returns an Adapter bound to l. The adapter may be created
// before l is started; calls then follow the readiness policy of l.
func NewAdapter(l *Loader, cfg AdapterConfig) *Adapter {
	return &Adapter{
		loader:    l,
		log:       cfg.Logger,
		onFailure: cfg.FailureHandler,
		silent:    cfg.SilentFailures,
		observer:  cfg.Observer,
	}
}

// CreateBibString passes input, unmodified, to the module's CreateBibString
// exactly once and returns the deferred result. Success is silent. A failure
// produces one diagnostic record (or one FailureHandler call) and settles the
// future with the error; it never panics into the caller.
func (a *Adapter) CreateBibString(ctx context.Context, input any) *Future {
	f := newFuture()
	a.inflight.Add(1)
	go a.run(ctx, input, f)
	return f
}

// Fire is the fire-and-forget form of CreateBibString.
func (a *Adapter) Fire(input any) {
	a.CreateBibString(context.Background(), input)
}

// Stats returns a snapshot of the adapter counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		Inflight:  a.inflight.Load(),
		Succeeded: a.succeeded.Load(),
		Failed:    a.failed.Load(),
	}
}

// Loader returns the loader the adapter forwards through.
func (a *Adapter) Loader() *Loader { return a.loader }

func (a *Adapter) run(ctx context.Context, input any, f *Future) {
	start := time.Now()
	outcome := OutcomeSuccess
	var out string
	err := a.loader.Await(ctx)
	if err != nil {
		outcome = OutcomeRejected
	} else if out, err = a.call(ctx, input); err != nil {
		outcome = OutcomeFailure
	}
	a.inflight.Add(-1)
	if err != nil {
		a.failed.Add(1)
		a.report(input, err)
	} else {
		a.succeeded.Add(1)
	}
	if a.observer != nil {
		a.observer.ObserveCall(outcome, time.Since(start))
	}
	f.settle(out, err)
}

func (a *Adapter) call(ctx context.Context, input any) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", &PanicError{Value: r}
		}
	}()
	return a.loader.mod.CreateBibString(ctx, input)
}

func (a *Adapter) report(input any, err error) {
	if a.onFailure != nil {
		a.onFailure(input, err)
		return
	}
	if a.silent {
		return
	}
	a.log.Error().Err(err).Str("input_type", fmt.Sprintf("%T", input)).Msg("create_bib_string failed")
}
