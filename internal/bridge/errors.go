package bridge

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned for calls made before the loader was started.
var ErrNotInitialized = errors.New("bibliography module not initialized")

// ErrStartupFailed matches (errors.Is) every call rejected because
// initialization failed; the original cause is available via errors.Unwrap.
var ErrStartupFailed = errors.New("bibliography module failed to initialize")

type startupError struct{ cause error }

func (e *startupError) Error() string { return ErrStartupFailed.Error() + ": " + e.cause.Error() }

func (e *startupError) Unwrap() error { return e.cause }

func (e *startupError) Is(target error) bool { return target == ErrStartupFailed }

// IsNotInitialized reports whether err indicates a call before Start/Load.
func IsNotInitialized(err error) bool { return errors.Is(err, ErrNotInitialized) }

// IsStartupFailed reports whether err indicates a failed initialization.
func IsStartupFailed(err error) bool { return errors.Is(err, ErrStartupFailed) }

// PanicError carries a panic raised inside the module.
type PanicError struct{ Value any }

func (e *PanicError) Error() string { return fmt.Sprintf("bibliography module panicked: %v", e.Value) }
