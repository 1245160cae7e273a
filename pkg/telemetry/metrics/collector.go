// Package metrics exposes the gateway's Prometheus instrumentation:
// request counts, token and cost totals, request latency, probe outcomes,
// and per-provider connectivity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "relay"
	subsystem = "gateway"
)

// Collector holds the gateway's Prometheus metrics. All methods are safe
// for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokensTotal     *prometheus.CounterVec
	costTotal       *prometheus.CounterVec
	probesTotal     *prometheus.CounterVec
	connected       *prometheus.GaugeVec
	providerCount   prometheus.Gauge
}

// NewCollector creates a collector registered against the given registry.
// If registry is nil a fresh one is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Completion requests by provider, model, and terminal status.",
		}, []string{"provider", "model", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Completion request latency.",
			// LLM latencies run from sub-second to tens of seconds.
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		}, []string{"provider", "model"}),

		tokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_total",
			Help:      "Tokens consumed by completed requests.",
		}, []string{"provider", "model"}),

		costTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cost_usd_total",
			Help:      "Accumulated USD cost of completed requests.",
		}, []string{"provider", "model"}),

		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "probes_total",
			Help:      "Connection probes by provider and result.",
		}, []string{"provider", "result"}),

		connected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_connected",
			Help:      "Last known reachability per provider (1 connected, 0 not).",
		}, []string{"provider"}),

		providerCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "providers",
			Help:      "Number of configured providers.",
		}),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.tokensTotal,
		c.costTotal,
		c.probesTotal,
		c.connected,
		c.providerCount,
	)

	return c
}

// RecordRequest records a terminal request outcome.
func (c *Collector) RecordRequest(provider, model, status string, duration time.Duration, tokens int, cost float64) {
	c.requestsTotal.WithLabelValues(provider, model, status).Inc()
	c.requestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
	if tokens > 0 {
		c.tokensTotal.WithLabelValues(provider, model).Add(float64(tokens))
	}
	if cost > 0 {
		c.costTotal.WithLabelValues(provider, model).Add(cost)
	}
}

// RecordProbe records a connection probe outcome and updates the
// connectivity gauge.
func (c *Collector) RecordProbe(provider string, reachable bool) {
	result := "failure"
	value := 0.0
	if reachable {
		result = "success"
		value = 1.0
	}
	c.probesTotal.WithLabelValues(provider, result).Inc()
	c.connected.WithLabelValues(provider).Set(value)
}

// SetProviderCount updates the configured-provider gauge.
func (c *Collector) SetProviderCount(n int) {
	c.providerCount.Set(float64(n))
}

// RemoveProvider drops per-provider series after a delete so stale labels
// do not linger in scrapes.
func (c *Collector) RemoveProvider(provider string) {
	c.connected.DeleteLabelValues(provider)
}

// Handler returns the Prometheus scrape handler for this collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
