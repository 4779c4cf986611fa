// Package middleware provides HTTP middleware for metrics collection.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stintapp/stint/internal/metrics"
)

// recordHTTPRequest is swappable so tests can observe recordings without a
// registry.
var recordHTTPRequest = metrics.RecordHTTPRequest

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		endpoint := normalizeEndpoint(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		recordHTTPRequest(r.Method, endpoint, status, duration)
	})
}

// normalizeEndpoint collapses per-task paths so task ids do not explode
// metric cardinality.
func normalizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/timers/"):
		rest := strings.TrimPrefix(path, "/api/timers/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) == 1 {
			return "/api/timers/:id"
		}

		return "/api/timers/:id/" + parts[1]
	default:
		return path
	}
}
