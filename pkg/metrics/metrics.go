// Package metrics exposes Prometheus counters for authentication outcomes and
// HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignUps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idm_signups_total",
			Help: "Accounts provisioned, by kind.",
		},
		[]string{"kind"},
	)

	SignIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idm_signins_total",
			Help: "Sign-in attempts, by result.",
		},
		[]string{"result"},
	)

	Verifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idm_verifications_total",
			Help: "Verification flow outcomes, by flow and result.",
		},
		[]string{"flow", "result"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idm_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "idm_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	registerOnce sync.Once
)

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SignUps, SignIns, Verifications, httpRequestsTotal, httpRequestDuration)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request counts and latency labelled by chi route
// pattern, so path parameters do not explode cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
