package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Un3xpecteed/Search-Engine/pkg/metrics"
)

// Metrics returns middleware recording request count, latency, and the
// in-flight gauge for every API request.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			path := routeLabel(r.URL.Path)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// statusWriter captures the response status code for the request counter.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.wroteHeader {
		sw.wroteHeader = true
	}
	return sw.ResponseWriter.Write(b)
}

// routeLabel maps a request path onto the service's fixed route set so the
// path label stays low-cardinality: document names collapse into one
// placeholder label, and anything unrecognised (scanners, typos) becomes
// "other" instead of minting a metric series per path.
func routeLabel(path string) string {
	switch path {
	case "/api/v1/documents",
		"/api/v1/search",
		"/api/v1/cache/stats",
		"/api/v1/cache/invalidate",
		"/api/v1/analytics",
		"/api/v1/analytics/snapshot",
		"/health",
		"/health/live",
		"/health/ready":
		return path
	}
	if strings.HasPrefix(path, "/api/v1/documents/") {
		return "/api/v1/documents/{name}"
	}
	return "other"
}
