package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceName labels logs and the health payload.
const ServiceName = "process-dashboard"

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Liveness probes against the dashboard API, by result ("ok" or an error category).
	APIProbesTotal *prometheus.CounterVec

	// Probe latency. Watch for: p95 creeping toward the page request timeout.
	APIProbeDuration *prometheus.HistogramVec

	// Rate limit denials on /api routes.
	RateLimitDeniedTotal prometheus.Counter

	// Status pages rendered, by API availability shown to the user.
	PageRendersTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	APIProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiProbesTotal",
			Help: "Total number of API liveness probes by result",
		},
		[]string{"result"},
	)
	APIProbeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apiProbeDurationSeconds",
			Help:    "API liveness probe latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"result"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)
	PageRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pageRendersTotal",
			Help: "Total number of status pages rendered, by displayed API state",
		},
		[]string{"api"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		APIProbesTotal, APIProbeDuration,
		RateLimitDeniedTotal,
		PageRendersTotal,
	)
}

// RecordProbe records one probe outcome. result is "ok" or an error category.
func RecordProbe(result string, seconds float64) {
	APIProbesTotal.WithLabelValues(result).Inc()
	APIProbeDuration.WithLabelValues(result).Observe(seconds)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
