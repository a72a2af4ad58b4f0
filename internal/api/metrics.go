// ABOUTME: Prometheus collectors for the HTTP API.
// ABOUTME: Counts requests, times them, and counts degraded meal computations.
package api

import (
	"strconv"
	"time"

	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the API collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	degraded *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrition_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nutrition_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		degraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrition_degraded_items_total",
				Help: "Meal items aggregated as zero, by reason",
			},
			[]string{"reason"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.degraded)
	return m
}

func (m *Metrics) observe(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) warnings(ws []nutrition.Warning) {
	for _, w := range ws {
		m.degraded.WithLabelValues(string(w.Reason)).Inc()
	}
}
