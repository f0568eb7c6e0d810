package middleware

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"rollcall/internal/observability/metrics"
)

// DefaultSlowRequest is the default threshold for slow request warnings.
const DefaultSlowRequest = 200 * time.Millisecond

// unmatchedRoute labels requests no route pattern claimed.
const unmatchedRoute = "unmatched"

// requestIDCounter is an atomic counter for request IDs.
var requestIDCounter uint64

type routeKey struct{}

// routeHolder is filled by Route once the mux has matched a pattern.
type routeHolder struct {
	pattern string
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// statusWriterPool reduces allocations on the hot path.
var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// TimingConfig configures request timing.
type TimingConfig struct {
	Logger      logrus.FieldLogger // nil uses the logrus standard logger
	Metrics     *metrics.Metrics   // nil disables request metrics
	SlowRequest time.Duration      // zero uses DefaultSlowRequest
}

// Timing returns middleware that logs request duration and records it to metrics.
// Normal requests log at DEBUG; slow requests (at or above threshold) log at WARN.
// Pair it with Route on the mux so metrics carry the route pattern, not the raw path.
func Timing(cfg TimingConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	threshold := cfg.SlowRequest
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := atomic.AddUint64(&requestIDCounter, 1)
			holder := &routeHolder{}
			r = r.WithContext(context.WithValue(r.Context(), routeKey{}, holder))

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				route := holder.pattern
				if route == "" {
					route = unmatchedRoute
				}

				entry := logger.WithFields(logrus.Fields{
					"request_id":  reqID,
					"method":      r.Method,
					"path":        r.URL.Path,
					"route":       route,
					"status":      sw.status,
					"duration_ms": float64(elapsed.Microseconds()) / 1000.0,
				})
				if elapsed >= threshold {
					entry.Warn("slow_request")
				} else {
					entry.Debug("request")
				}
				cfg.Metrics.ObserveRequest(r.Method, route, sw.status, elapsed)

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

// Route wraps the mux and reports the matched pattern back to Timing.
// It must be the innermost middleware so it sees the request the mux annotated.
func Route(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if holder, ok := r.Context().Value(routeKey{}).(*routeHolder); ok {
			holder.pattern = r.Pattern
		}
	})
}
