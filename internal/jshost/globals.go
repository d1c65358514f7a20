package jshost

import (
	"context"
	"strings"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

func (h *Host) consoleFunc(level zerolog.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		h.log.WithLevel(level).Str("source", "console").Msg(strings.Join(parts, " "))
		return goja.Undefined()
	}
}

// createBibString builds the create_bib_string global. The argument is
// exported to its Go value and handed to the adapter without further changes.
// The returned promise already carries a no-op rejection handler, so callers
// that ignore it do not raise an unhandled rejection on top of the logged
// diagnostic.
func (h *Host) createBibString(vm *goja.Runtime) func(goja.FunctionCall) goja.Value {
	noop := vm.ToValue(func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	return func(call goja.FunctionCall) goja.Value {
		input := call.Argument(0).Export()
		promise, resolve, reject := vm.NewPromise()
		h.outstanding.Add(1)
		h.adapter.CreateBibString(context.Background(), input).Then(
			func(v string) {
				h.settle(func(*goja.Runtime) { resolve(v) })
			},
			func(err error) {
				h.settle(func(vm *goja.Runtime) { reject(vm.NewGoError(err)) })
			},
		)
		p := vm.ToValue(promise)
		if catch, ok := goja.AssertFunction(p.ToObject(vm).Get("catch")); ok {
			if _, err := catch(p, noop); err != nil {
				h.log.Warn().Err(err).Msg("mark promise handled")
			}
		}
		return p
	}
}

// initFunc builds the crate2bib_init global: it starts the loader and returns
// a Promise of its outcome.
func (h *Host) initFunc(vm *goja.Runtime) func(goja.FunctionCall) goja.Value {
	return func(goja.FunctionCall) goja.Value {
		promise, resolve, reject := vm.NewPromise()
		h.outstanding.Add(1)
		outcome := h.loader.Start(context.Background())
		go func() {
			err := <-outcome
			h.settle(func(vm *goja.Runtime) {
				if err != nil {
					reject(vm.NewGoError(err))
					return
				}
				resolve(goja.Undefined())
			})
		}()
		return vm.ToValue(promise)
	}
}

func (h *Host) settle(job func(*goja.Runtime)) {
	if !h.submit(func(vm *goja.Runtime) {
		defer h.outstanding.Done()
		job(vm)
	}) {
		h.outstanding.Done()
	}
}
