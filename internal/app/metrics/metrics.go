// Package metrics exposes the Prometheus collectors for the flights service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "flights_service",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flights_service",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flights_service",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	flightsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "flights_service",
			Subsystem: "flights",
			Name:      "total",
			Help:      "Number of flights currently stored.",
		},
	)

	tasksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flights_service",
			Subsystem: "tasks",
			Name:      "processed_total",
			Help:      "Total number of background tasks processed.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(httpInFlight, httpRequests, httpDuration, flightsTotal, tasksProcessed)
}

// Handler returns the HTTP handler serving the registry in Prometheus text
// format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncrementInFlight marks a request as in progress.
func IncrementInFlight() { httpInFlight.Inc() }

// DecrementInFlight marks a request as finished.
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetFlightsTotal refreshes the stored-flights gauge.
func SetFlightsTotal(n int64) { flightsTotal.Set(float64(n)) }

// RecordTaskProcessed counts a processed background task by final status.
func RecordTaskProcessed(status string) { tasksProcessed.WithLabelValues(status).Inc() }
