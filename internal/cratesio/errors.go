package cratesio

import (
	"errors"
	"fmt"
)

// NotFoundError signals a missing crate or a requirement no version matches.
type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string { return e.Msg }

// IsNotFound reports whether err indicates a missing crate or version.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// UpstreamError is a non-2xx answer from a remote service.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s http error: %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s http error: %d: %s", e.Service, e.Status, e.Body)
}

// IsUpstream reports whether err came from a failing remote service.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
