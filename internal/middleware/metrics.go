package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hongminglow/messagely/internal/metrics"
)

// Metrics records request counts and latencies labelled by matched route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := record(w)
		next.ServeHTTP(rec, r)

		// ServeMux stores the matched pattern on the request it was handed.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		labels := prometheus.Labels{"method": r.Method, "route": route, "status": strconv.Itoa(rec.status)}
		metrics.HTTPRequestsTotal.With(labels).Inc()
		metrics.HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}
