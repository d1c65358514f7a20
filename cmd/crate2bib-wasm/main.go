//go:build js && wasm

// Command crate2bib-wasm is the browser build. Loading it installs
// globalThis.create_bib_string, which returns a Promise of the BibLaTeX text,
// and sets globalThis.crate2bibReady once the module has initialized.
// Failures are also written to the browser console.
package main

import (
	"context"
	"net/http"
	"os"
	"syscall/js"
	"time"

	"crate2bib/internal/bridge"
	"crate2bib/internal/config"
	"crate2bib/internal/logging"
	"crate2bib/internal/resolver"
)

func main() {
	log := logging.New(logging.Options{
		App:    "crate2bib-wasm",
		Level:  config.DefaultLogLevel,
		Format: logging.FormatConsole,
		Out:    os.Stdout,
	})
	mod := resolver.New(resolver.Config{
		UserAgent: config.DefaultUserAgent,
		Interval:  time.Duration(config.DefaultRequestIntervalMS) * time.Millisecond,
		// the default transport is backed by fetch()
		HTTPClient: http.DefaultClient,
		Logger:     log,
	})
	loader := bridge.NewLoader(mod, bridge.LoaderConfig{Logger: log})
	adapter := bridge.NewAdapter(loader, bridge.AdapterConfig{Logger: log})

	global := js.Global()
	global.Set("crate2bibReady", false)
	noop := js.FuncOf(func(js.Value, []js.Value) any { return nil })
	createBibString := js.FuncOf(func(this js.Value, args []js.Value) any {
		var input any
		if len(args) > 0 {
			input = export(args[0], nil)
		}
		p := newPromise(func(resolve, reject js.Value) {
			adapter.CreateBibString(context.Background(), input).Then(
				func(bib string) { resolve.Invoke(bib) },
				func(err error) { reject.Invoke(js.Global().Get("Error").New(err.Error())) },
			)
		})
		// mark handled; the adapter has logged the failure
		p.Call("catch", noop)
		return p
	})
	global.Set("create_bib_string", createBibString)

	go func() {
		if err := <-loader.Start(context.Background()); err != nil {
			global.Set("crate2bibError", err.Error())
			return
		}
		global.Set("crate2bibReady", true)
	}()

	// the exported function must outlive main
	select {}
}

// newPromise returns a JS Promise whose executor hands its resolvers to run.
// run must not block.
func newPromise(run func(resolve, reject js.Value)) js.Value {
	executor := js.FuncOf(func(this js.Value, args []js.Value) any {
		run(args[0], args[1])
		return nil
	})
	defer executor.Release()
	return js.Global().Get("Promise").New(executor)
}

// maxExportDepth bounds how deeply nested objects and arrays are converted.
const maxExportDepth = 32

// export converts a JS value to the Go value the resolver accepts: strings,
// numbers, booleans, arrays and plain objects. parents holds the objects
// being converted above v; a value that refers back to one of them, or sits
// deeper than maxExportDepth, becomes nil.
func export(v js.Value, parents []js.Value) any {
	switch v.Type() {
	case js.TypeString:
		return v.String()
	case js.TypeNumber:
		return v.Float()
	case js.TypeBoolean:
		return v.Bool()
	case js.TypeObject:
		if len(parents) >= maxExportDepth {
			return nil
		}
		for _, p := range parents {
			if p.Equal(v) {
				return nil
			}
		}
		parents = append(parents, v)
		if js.Global().Get("Array").Call("isArray", v).Bool() {
			out := make([]any, v.Length())
			for i := range out {
				out[i] = export(v.Index(i), parents)
			}
			return out
		}
		keys := js.Global().Get("Object").Call("keys", v)
		m := make(map[string]any, keys.Length())
		for i := 0; i < keys.Length(); i++ {
			k := keys.Index(i).String()
			m[k] = export(v.Get(k), parents)
		}
		return m
	default:
		return nil
	}
}
