package middleware

import (
	"net/http"
	"time"
)

// HTTPRecorder receives one observation per served request.
type HTTPRecorder interface {
	RecordHTTPRequest(pattern, method string, status int, d time.Duration)
}

// Metrics returns middleware that records request counts and latency keyed
// by the ServeMux pattern that handled the request, which keeps label
// cardinality bounded regardless of path parameters.
func Metrics(recorder HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}
			recorder.RecordHTTPRequest(pattern, r.Method, rec.status, time.Since(start))
		})
	}
}
