// Package metrics provides Prometheus instrumentation for the proxy.
// Everything is registered on the default registry and exposed at
// GET /metrics via Handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPRequests counts inbound requests by method, route pattern, and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "instaproxy_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "path", "status"})

// HTTPDuration tracks inbound request latency by route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "instaproxy_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path"})

// RefererDenials counts requests rejected by the referer blacklist check.
var RefererDenials = promauto.NewCounter(prometheus.CounterOpts{
	Name: "instaproxy_referer_denials_total",
	Help: "Requests denied because the referer domain is blacklisted.",
})

// UpstreamFetches counts upstream Instagram fetches by result ("ok"/"error").
var UpstreamFetches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "instaproxy_upstream_fetches_total",
	Help: "Upstream fetch attempts by result.",
}, []string{"result"})

// Handler returns the Prometheus scrape handler for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency for a route. pattern should
// be the templated route (e.g. "/{username}/media/"), not the raw URL, to
// keep label cardinality bounded.
func Middleware(pattern string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			HTTPRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(rw.status)).Inc()
			HTTPDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
