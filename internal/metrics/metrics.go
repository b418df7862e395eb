package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Geolocation Metrics
	GeoLookupsTotal   *prometheus.CounterVec
	GeoLookupDuration prometheus.Histogram

	// Rate Limiting Metrics
	RateLimitRejectedTotal prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// HTTP Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		// Geolocation Metrics
		// result is one of: success, error, skipped (loopback), invalid_ip
		GeoLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geo_lookups_total",
				Help: "Total number of geolocation lookups by result",
			},
			[]string{"result"},
		),

		GeoLookupDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "geo_lookup_duration_seconds",
				Help:    "Latency of outbound geolocation lookups in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Rate Limiting Metrics
		RateLimitRejectedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limit_rejected_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),
	}
}
