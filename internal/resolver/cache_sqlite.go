//go:build !js

package resolver

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"crate2bib/internal/common/fsutil"
	"crate2bib/internal/cratesio"
	"crate2bib/internal/store"
)

// openCache opens the sqlite response cache at path and drops entries older
// than ttl.
func openCache(ctx context.Context, path string, ttl time.Duration, log zerolog.Logger) (cratesio.Cache, io.Closer, error) {
	path, err := fsutil.PrepareFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cache path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if ttl > 0 {
		n, err := st.Prune(ctx, time.Now().Add(-ttl))
		if err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("prune cache: %w", err)
		}
		log.Debug().Int64("removed", n).Str("path", path).Msg("cache pruned")
	}
	return st, st, nil
}
