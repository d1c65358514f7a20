package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"crate2bib/internal/bridge"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crate2bib",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crate2bib",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "crate2bib",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
	)

	bridgeCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crate2bib",
			Subsystem: "bridge",
			Name:      "calls_total",
			Help:      "Settled create_bib_string calls by outcome",
		},
		[]string{"outcome"},
	)

	bridgeCallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "crate2bib",
			Subsystem: "bridge",
			Name:      "call_duration_seconds",
			Help:      "Duration of create_bib_string calls in seconds, including readiness waits",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight, bridgeCallsTotal, bridgeCallDuration)
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming working behind the recorder.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MetricsMiddleware instruments requests for Prometheus. Labels are taken
// after the handler ran so that chi has resolved the route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInflight.Inc()
		defer httpInflight.Dec()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		path := routePatternOrPath(r)
		statusLabel := strconv.Itoa(sr.status)
		dur := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(path, r.Method, statusLabel).Inc()
		httpRequestDuration.WithLabelValues(path, r.Method, statusLabel).Observe(dur)
	})
}

// routePatternOrPath returns the chi route pattern if available, otherwise
// falls back to URL path. This avoids high-cardinality label values.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

type bridgeObserver struct{}

func (bridgeObserver) ObserveCall(outcome bridge.Outcome, d time.Duration) {
	bridgeCallsTotal.WithLabelValues(string(outcome)).Inc()
	bridgeCallDuration.Observe(d.Seconds())
}

// BridgeObserver records adapter calls as Prometheus metrics. Pass it as
// bridge.AdapterConfig.Observer.
var BridgeObserver bridge.Observer = bridgeObserver{}
