// Package metrics exposes the Prometheus collectors referenced in
// spec.md §5's "shared resources" (persistence pool, cache client,
// webhook worker) as a process-wide singleton registered once at startup,
// per spec.md §9 "Global state".
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles every collector Tessera exports under /metrics.
type Registry struct {
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	WebhookAttempts *prometheus.CounterVec
	WebhookLatency  prometheus.Histogram
	PoolInUse       prometheus.Gauge
	PoolIdle        prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
}

// New constructs and registers every collector against reg. Passing
// prometheus.NewRegistry() (rather than the global DefaultRegisterer)
// keeps tests hermetic.
func New(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tessera",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups that found a value, by namespace.",
		}, []string{"namespace"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tessera",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that missed (including degraded-backend misses), by namespace.",
		}, []string{"namespace"}),
		WebhookAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tessera",
			Subsystem: "webhook",
			Name:      "attempts_total",
			Help:      "Outbound webhook delivery attempts, by outcome.",
		}, []string{"outcome"}),
		WebhookLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tessera",
			Subsystem: "webhook",
			Name:      "delivery_latency_seconds",
			Help:      "Outbound webhook HTTP round-trip latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		PoolInUse: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tessera",
			Subsystem: "persistence",
			Name:      "pool_in_use_connections",
			Help:      "Connections currently checked out of the persistence pool.",
		}),
		PoolIdle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tessera",
			Subsystem: "persistence",
			Name:      "pool_idle_connections",
			Help:      "Idle connections in the persistence pool.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tessera",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route and status class.",
		}, []string{"route", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tessera",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveCacheLookup records whether a cache lookup was a hit or miss for
// the given namespace.
func (r *Registry) ObserveCacheLookup(namespace string, hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.CacheHits.WithLabelValues(namespace).Inc()
	} else {
		r.CacheMisses.WithLabelValues(namespace).Inc()
	}
}
