package httpapi

import (
	"context"
	"time"

	"crate2bib/internal/biblatex"
	"crate2bib/internal/bridge"
	"crate2bib/internal/resolver"
	"crate2bib/pkg/types"
)

// BridgeService implements Service on top of the bridge adapter and the
// resolver module it drives.
type BridgeService struct {
	adapter *bridge.Adapter
	mod     *resolver.Module
	started time.Time
}

// NewBridgeService returns a Service. mod must be the module wrapped by the
// adapter's loader.
func NewBridgeService(adapter *bridge.Adapter, mod *resolver.Module) *BridgeService {
	return &BridgeService{adapter: adapter, mod: mod, started: time.Now()}
}

func (s *BridgeService) Ready() bool { return s.adapter.Loader().Ready() }

func (s *BridgeService) Status() types.StatusResponse {
	l := s.adapter.Loader()
	st := s.adapter.Stats()
	resp := types.StatusResponse{
		State:          string(l.State()),
		Inflight:       st.Inflight,
		Succeeded:      st.Succeeded,
		Failed:         st.Failed,
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	if err := l.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// Resolve applies the loader's readiness policy, then returns the structured
// results.
func (s *BridgeService) Resolve(ctx context.Context, req types.BibRequest) ([]biblatex.Result, error) {
	if err := s.adapter.Loader().Await(ctx); err != nil {
		return nil, err
	}
	return s.mod.GetBibLaTeX(ctx, resolver.Query{
		Crate:     req.Crate,
		Version:   req.Version,
		Branch:    req.Branch,
		Filenames: req.Filenames,
	})
}

// CreateBibString forwards req through the adapter and waits for the result.
func (s *BridgeService) CreateBibString(ctx context.Context, req types.BibRequest) (string, error) {
	return s.adapter.CreateBibString(ctx, req).Wait(ctx)
}
