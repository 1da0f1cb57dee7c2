// Package metrics provides Prometheus collectors for the HTTP surface and
// the geocoding providers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector wraps the Prometheus registry and the application's collectors.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	geocodeLookups *prometheus.CounterVec
	geocodeLatency *prometheus.HistogramVec
	cacheHits      *prometheus.CounterVec
}

// NewCollector creates a collector with all metrics registered.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "pos"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route, and status",
		},
		[]string{"method", "route", "status"},
	)

	c.httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route"},
	)

	c.httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight",
			Help:      "Current number of in-flight HTTP requests",
		},
	)

	c.geocodeLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocode",
			Name:      "lookups_total",
			Help:      "Total geocoding provider lookups by source and result",
		},
		[]string{"source", "result"},
	)

	c.geocodeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "geocode",
			Name:      "lookup_duration_seconds",
			Help:      "Geocoding provider lookup latency by source",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"source"},
	)

	c.cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by cache name and outcome",
		},
		[]string{"cache", "outcome"},
	)

	c.registry.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.httpInFlight,
		c.geocodeLookups,
		c.geocodeLatency,
		c.cacheHits,
	)

	return c
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordHTTPRequest records one completed HTTP request.
func (c *Collector) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, status).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncrementInFlight marks an HTTP request as started.
func (c *Collector) IncrementInFlight() { c.httpInFlight.Inc() }

// DecrementInFlight marks an HTTP request as finished.
func (c *Collector) DecrementInFlight() { c.httpInFlight.Dec() }

// RecordGeocodeLookup records one provider lookup.
func (c *Collector) RecordGeocodeLookup(source string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.geocodeLookups.WithLabelValues(source, result).Inc()
	c.geocodeLatency.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func (c *Collector) RecordCacheLookup(cache string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	c.cacheHits.WithLabelValues(cache, outcome).Inc()
}
