package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"crate2bib/internal/bridge"
	"crate2bib/internal/cratesio"
	"crate2bib/internal/resolver"
	"crate2bib/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps well-known lookup errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case resolver.IsBadInput(err):
		return http.StatusBadRequest
	case cratesio.IsNotFound(err):
		return http.StatusNotFound
	case bridge.IsNotInitialized(err), bridge.IsStartupFailed(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case cratesio.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FailureLogger is the adapter FailureHandler for the HTTP service. Failures
// that map to a 4xx response are client mistakes and are logged at warn; the
// rest at error.
func FailureLogger(log zerolog.Logger) bridge.FailureHandler {
	return func(input any, err error) {
		status := statusFor(err)
		level := zerolog.ErrorLevel
		if status < http.StatusInternalServerError {
			level = zerolog.WarnLevel
		}
		log.WithLevel(level).Err(err).
			Int("status", status).
			Str("input_type", fmt.Sprintf("%T", input)).
			Msg("create_bib_string failed")
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
