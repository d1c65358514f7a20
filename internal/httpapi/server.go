package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crate2bib/internal/biblatex"
	"crate2bib/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Ready() bool
	Resolve(ctx context.Context, req types.BibRequest) ([]biblatex.Result, error)
	CreateBibString(ctx context.Context, req types.BibRequest) (string, error)
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(MetricsMiddleware)
	// Compression for JSON and BibTeX responses
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/status", statusHandler(svc))
	r.Post("/bib", bibPostHandler(svc))
	r.Get("/bib/{crate}", bibGetHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(svc.Status().State))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// statusHandler godoc
//
//	@Summary	Loader state and adapter counters
//	@Tags		status
//	@Produce	json
//	@Success	200	{object}	types.StatusResponse
//	@Router		/status [get]
func statusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}

// bibPostHandler godoc
//
//	@Summary	Citations of a crate
//	@Tags		bib
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.BibRequest	true	"crate and optional version requirement"
//	@Success	200		{object}	types.BibResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Failure	503		{object}	types.ErrorResponse
//	@Router		/bib [post]
func bibPostHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Content-Type check
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.BibRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Crate) == "" {
			writeJSONError(w, http.StatusBadRequest, "crate is required")
			return
		}
		serveJSON(w, r, svc, req)
	}
}

// bibGetHandler godoc
//
//	@Summary		Citations of a crate
//	@Description	A ".bib" suffix on the crate name returns all entries as BibTeX text.
//	@Tags			bib
//	@Produce		json
//	@Produce		plain
//	@Param			crate	path		string	true	"crate name, optionally followed by .bib"
//	@Param			version	query		string	false	"Cargo version requirement"
//	@Param			branch	query		string	false	"repository branch searched for citation files"
//	@Success		200		{object}	types.BibResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Failure		503		{object}	types.ErrorResponse
//	@Router			/bib/{crate} [get]
func bibGetHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		crate := chi.URLParam(r, "crate")
		asText := strings.HasSuffix(crate, ".bib")
		req := types.BibRequest{
			Crate:   strings.TrimSuffix(crate, ".bib"),
			Version: r.URL.Query().Get("version"),
			Branch:  r.URL.Query().Get("branch"),
		}
		if asText {
			serveText(w, r, svc, req)
			return
		}
		serveJSON(w, r, svc, req)
	}
}

func serveJSON(w http.ResponseWriter, r *http.Request, svc Service, req types.BibRequest) {
	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, req.Crate)
	ctx, cancel := lookupContext(r)
	defer cancel()

	results, err := svc.Resolve(ctx, req)
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := statusFor(err)
		writeJSONError(w, status, err.Error())
		logEnd(r, lvl, status, start, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(types.BibResponse{Crate: req.Crate, Results: toResults(results)}); err != nil {
		logEnd(r, lvl, http.StatusInternalServerError, start, err)
		return
	}
	logEnd(r, lvl, http.StatusOK, start, nil)
}

func serveText(w http.ResponseWriter, r *http.Request, svc Service, req types.BibRequest) {
	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, req.Crate)
	ctx, cancel := lookupContext(r)
	defer cancel()

	bib, err := svc.CreateBibString(ctx, req)
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := statusFor(err)
		writeJSONError(w, status, err.Error())
		logEnd(r, lvl, status, start, err)
		return
	}
	w.Header().Set("Content-Type", "text/x-bibtex; charset=utf-8")
	out := io.Writer(w)
	var lw *loggingLineWriter
	if lvl >= LevelDebug {
		lw = &loggingLineWriter{prefix: "bib> "}
		out = io.MultiWriter(w, lw)
	}
	_, _ = io.WriteString(out, bib+"\n")
	if lw != nil {
		lw.Flush()
	}
	logEnd(r, lvl, http.StatusOK, start, nil)
}
