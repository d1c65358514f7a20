package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crate2bib/internal/biblatex"
	"crate2bib/internal/bridge"
	"crate2bib/internal/cratesio"
	"crate2bib/internal/resolver"
	"crate2bib/pkg/types"
)

type mockService struct {
	status  types.StatusResponse
	ready   bool
	results []biblatex.Result
	err     error
	lastReq types.BibRequest
}

func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }

func (m *mockService) Resolve(ctx context.Context, req types.BibRequest) ([]biblatex.Result, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockService) CreateBibString(ctx context.Context, req types.BibRequest) (string, error) {
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	return biblatex.Join(m.results), nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func sampleResults() []biblatex.Result {
	d := time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC)
	return []biblatex.Result{
		{Origin: biblatex.OriginCratesIO, Source: "https://crates.io/crates/serde", Entry: &biblatex.Entry{
			Key: "Tolnay2024", WorkType: "software", Author: "David Tolnay", Title: "{serde}", Version: "1.0.217", Date: &d,
		}},
		{Origin: biblatex.OriginCitationBib, Raw: "@misc{serde,\n  title={serde}\n}\n"},
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{State: "ready", Succeeded: 10}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.State != "ready" || body.Succeeded != 10 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReadyz(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	r := NewMux(&mockService{status: types.StatusResponse{State: "loading"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security header")
	}
}

func TestBibPost(t *testing.T) {
	svc := &mockService{results: sampleResults()}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bib", bytes.NewBufferString(`{"crate":"serde","version":"1","filenames":["CITATION.cff"]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body types.BibResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Crate != "serde" || len(body.Results) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	first := body.Results[0]
	if first.Origin != "crates.io" || first.Entry == nil || first.Entry.Date != "2024-12-27" || !strings.HasPrefix(first.BibTeX, "@software {Tolnay2024,") {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if body.Results[1].Entry != nil || !strings.HasPrefix(body.Results[1].BibTeX, "@misc{serde") {
		t.Fatalf("unexpected raw result: %+v", body.Results[1])
	}
	if svc.lastReq.Version != "1" || len(svc.lastReq.Filenames) != 1 {
		t.Fatalf("request not forwarded: %+v", svc.lastReq)
	}
}

func TestBibPost_Validation(t *testing.T) {
	r := NewMux(&mockService{})
	cases := []struct {
		ct, body string
		want     int
	}{
		{"", `{"crate":"serde"}`, http.StatusUnsupportedMediaType},
		{"application/json", `{"crate":`, http.StatusBadRequest},
		{"application/json", `{"crate":"  "}`, http.StatusBadRequest},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bib", bytes.NewBufferString(c.body))
		if c.ct != "" {
			req.Header.Set("Content-Type", c.ct)
		}
		r.ServeHTTP(w, req)
		if w.Code != c.want {
			t.Fatalf("body %q: status=%d want %d", c.body, w.Code, c.want)
		}
		var er types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != c.want {
			t.Fatalf("unexpected error payload %q", w.Body.String())
		}
	}
}

func TestBibPost_BodyTooLarge(t *testing.T) {
	t.Cleanup(func() { SetMaxBodyBytes(0) })
	SetMaxBodyBytes(8)
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bib", bytes.NewBufferString(`{"crate":"serde"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestBibGet_JSONAndText(t *testing.T) {
	svc := &mockService{results: sampleResults()}
	r := NewMux(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bib/serde?version=%5E1.0&branch=main", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("status=%d ct=%s", w.Code, w.Header().Get("Content-Type"))
	}
	if svc.lastReq.Crate != "serde" || svc.lastReq.Version != "^1.0" || svc.lastReq.Branch != "main" {
		t.Fatalf("unexpected request: %+v", svc.lastReq)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bib/serde.bib?log=debug", nil))
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/x-bibtex") {
		t.Fatalf("status=%d ct=%s", w.Code, w.Header().Get("Content-Type"))
	}
	if svc.lastReq.Crate != "serde" {
		t.Fatalf(".bib suffix not stripped: %+v", svc.lastReq)
	}
	want := biblatex.Join(sampleResults()) + "\n"
	if w.Body.String() != want {
		t.Fatalf("body:\n%s\nwant:\n%s", w.Body.String(), want)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&resolver.BadInputError{Msg: "invalid crate name"}, http.StatusBadRequest},
		{&cratesio.NotFoundError{Msg: "Could not find crate nope"}, http.StatusNotFound},
		{bridge.ErrNotInitialized, http.StatusServiceUnavailable},
		{&cratesio.UpstreamError{Service: "crates.io", Status: 500}, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		r := NewMux(&mockService{err: c.err})
		for _, path := range []string{"/bib/serde", "/bib/serde.bib"} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != c.want {
				t.Fatalf("%s with %v: status=%d want %d", path, c.err, w.Code, c.want)
			}
			var er types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Error != c.err.Error() {
				t.Fatalf("unexpected error payload %q", w.Body.String())
			}
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "crate2bib_http_requests_total") {
		t.Fatalf("metrics not exposed: status=%d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Cleanup(func() { SetCORSOptions(false, nil, nil, nil) })
	SetCORSOptions(true, []string{"https://docs.example"}, nil, nil)
	r := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodOptions, "/bib", nil)
	req.Header.Set("Origin", "https://docs.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://docs.example" {
		t.Fatalf("allow-origin=%q status=%d", got, w.Code)
	}
}
