//go:build js

package resolver

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"crate2bib/internal/cratesio"
)

// openCache is unavailable in the browser build; the browser's HTTP cache
// serves repeated lookups instead.
func openCache(context.Context, string, time.Duration, zerolog.Logger) (cratesio.Cache, io.Closer, error) {
	return nil, nil, errors.New("response cache is not supported on js")
}
