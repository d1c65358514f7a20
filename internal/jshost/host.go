// Package jshost embeds a JavaScript runtime (goja) and registers the
// bibliography bridge in its global scope:
//
//	crate2bib_init()         Promise settling once the module is loaded
//	create_bib_string(input) Promise of the BibLaTeX text; failures are also
//	                         reported once through the diagnostic logger
//	console.log/info/warn/error/debug
//
// The runtime is owned by a goja_nodejs event loop; Go callbacks re-enter it
// only through RunOnLoop.
package jshost

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/rs/zerolog"

	"crate2bib/internal/bridge"
)

// ErrClosed is returned for work submitted after Close.
var ErrClosed = errors.New("js host closed")

// Options configures a Host.
type Options struct {
	// Logger backs console.* and the adapter's failure diagnostics.
	Logger   zerolog.Logger
	Observer bridge.Observer
}

// Host runs scripts against a goja runtime with the bridge globals installed.
type Host struct {
	loop    *eventloop.EventLoop
	loader  *bridge.Loader
	adapter *bridge.Adapter
	log     zerolog.Logger

	closeOnce sync.Once
	closed    atomic.Bool
	// outstanding counts promises handed to scripts that have not settled
	outstanding sync.WaitGroup
}

// New creates the runtime, its adapter and starts the event loop. Call
// Install before running scripts that use the globals, and Close when done.
func New(loader *bridge.Loader, opts Options) *Host {
	adapter := bridge.NewAdapter(loader, bridge.AdapterConfig{
		Logger:   opts.Logger,
		Observer: opts.Observer,
	})
	h := &Host{
		// console is replaced by the zerolog-backed object in Install
		loop:    eventloop.NewEventLoop(eventloop.EnableConsole(false)),
		loader:  loader,
		adapter: adapter,
		log:     opts.Logger,
	}
	h.loop.Start()
	return h
}

// Adapter returns the adapter behind create_bib_string.
func (h *Host) Adapter() *bridge.Adapter { return h.adapter }

// Install registers the globals on the runtime.
func (h *Host) Install(ctx context.Context) error {
	return h.sync(ctx, func(vm *goja.Runtime) error {
		console := vm.NewObject()
		for name, level := range map[string]zerolog.Level{
			"log":   zerolog.InfoLevel,
			"info":  zerolog.InfoLevel,
			"debug": zerolog.DebugLevel,
			"warn":  zerolog.WarnLevel,
			"error": zerolog.ErrorLevel,
		} {
			if err := console.Set(name, h.consoleFunc(level)); err != nil {
				return err
			}
		}
		if err := vm.Set("console", console); err != nil {
			return err
		}
		if err := vm.Set("crate2bib_init", h.initFunc(vm)); err != nil {
			return err
		}
		return vm.Set("create_bib_string", h.createBibString(vm))
	})
}

// RunScript evaluates src on the loop and returns the exported completion
// value.
func (h *Host) RunScript(ctx context.Context, name, src string) (any, error) {
	var out any
	err := h.sync(ctx, func(vm *goja.Runtime) error {
		v, err := vm.RunScript(name, src)
		if err != nil {
			return err
		}
		out = v.Export()
		return nil
	})
	return out, err
}

// Drain waits until every promise handed out by the globals has settled and
// its continuations have run.
func (h *Host) Drain(ctx context.Context) error {
	if h.closed.Load() {
		return ErrClosed
	}
	settled := make(chan struct{})
	go func() {
		h.outstanding.Wait()
		close(settled)
	}()
	select {
	case <-settled:
	case <-ctx.Done():
		return ctx.Err()
	}
	// settlements run their reaction jobs before returning to the loop, so a
	// single round trip is enough to observe them
	return h.sync(ctx, func(*goja.Runtime) error { return nil })
}

// Close stops the loop. Settlements arriving afterwards are dropped.
func (h *Host) Close() {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		h.loop.Stop()
	})
}

// submit schedules job on the loop; it reports false once the host is closed.
func (h *Host) submit(job func(*goja.Runtime)) bool {
	if h.closed.Load() {
		return false
	}
	return h.loop.RunOnLoop(func(vm *goja.Runtime) {
		defer func() {
			if r := recover(); r != nil {
				h.log.Error().Interface("panic", r).Msg("js job panicked")
			}
		}()
		job(vm)
	})
}

func (h *Host) sync(ctx context.Context, fn func(*goja.Runtime) error) error {
	done := make(chan error, 1)
	if !h.submit(func(vm *goja.Runtime) { done <- fn(vm) }) {
		return ErrClosed
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
