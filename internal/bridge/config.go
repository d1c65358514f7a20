package bridge

import "github.com/rs/zerolog"

// LoaderConfig encapsulates all tunables for Loader construction.
type LoaderConfig struct {
	Logger zerolog.Logger
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
}

// AdapterConfig encapsulates all tunables for Adapter construction.
type AdapterConfig struct {
	// Logger is the diagnostic channel for failed calls.
	Logger zerolog.Logger
	// FailureHandler replaces the default "create_bib_string failed" log line.
	FailureHandler FailureHandler
	// SilentFailures disables the default failure log. Failures are then
	// observable only through the returned Future.
	SilentFailures bool
	Observer       Observer
}
