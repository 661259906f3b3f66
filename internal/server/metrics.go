package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smolpaste_http_requests_total",
			Help: "HTTP requests handled, by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smolpaste_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	pastesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smolpaste_pastes_created_total",
		Help: "Pastes successfully created.",
	})

	pastesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smolpaste_pastes_deleted_total",
		Help: "Pastes successfully deleted.",
	})

	ingestBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smolpaste_ingest_bytes_total",
		Help: "Bytes written to the storage directory by uploads.",
	})

	authFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smolpaste_auth_failures_total",
		Help: "Requests rejected for a missing or unknown token.",
	})
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

// withMetrics records request counts and latency. The route label is the
// matched ServeMux pattern so paste filenames never become label values.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
