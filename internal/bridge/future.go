package bridge

import (
	"context"
	"sync"
)

// Future is the deferred result of one adapter call. It settles exactly once
// to either a string or an error.
type Future struct {
	done chan struct{}

	mu      sync.Mutex
	settled bool
	val     string
	err     error
	conts   []func()
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

// Done is closed when the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result blocks until the future settles and returns its outcome.
func (f *Future) Result() (string, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val, f.err
}

// Wait is Result bounded by ctx. A context ending does not cancel the call
// that will settle the future.
func (f *Future) Wait(ctx context.Context) (string, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Then registers continuations. Exactly one of them runs, once, on the
// settling goroutine, or immediately on the caller's goroutine if the future
// has already settled. Either may be nil.
func (f *Future) Then(onValue func(string), onError func(error)) {
	run := func() {
		if f.err != nil {
			if onError != nil {
				onError(f.err)
			}
			return
		}
		if onValue != nil {
			onValue(f.val)
		}
	}
	f.mu.Lock()
	if !f.settled {
		f.conts = append(f.conts, run)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	run()
}

func (f *Future) settle(val string, err error) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.val, f.err = val, err
	conts := f.conts
	f.conts = nil
	close(f.done)
	f.mu.Unlock()
	for _, c := range conts {
		c()
	}
}
