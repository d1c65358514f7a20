// Package bridge connects callers to the bibliography module: it loads the
// module once and forwards generation requests to it. It is structured into
// small files by concern:
//
//   - types.go: Module contract, loader State and call Outcome.
//   - config.go: LoaderConfig/AdapterConfig and their defaults.
//   - errors.go: ErrNotInitialized, ErrStartupFailed and helpers.
//   - events.go: lifecycle events and the EventPublisher they go to.
//   - loader.go: one-time initialization with an explicit readiness state.
//   - future.go: the deferred result of one call.
//   - adapter.go: CreateBibString/Fire, failure reporting and stats.
//
// Readiness policy for adapter calls:
//
//   - not_started: the call fails with ErrNotInitialized.
//   - loading: the call waits until the loader settles (or its context ends).
//   - ready: the call is forwarded immediately.
//   - failed: the call fails with an error matching ErrStartupFailed.
//
// Global-style entry points (a JavaScript create_bib_string, the wasm build)
// are thin registrations on top of Adapter.Fire and Adapter.CreateBibString;
// see internal/jshost and cmd/crate2bib-wasm.
package bridge
