// Package metrics provides Prometheus metrics collection for rpcgate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for rpcgate.
type Collector struct {
	// Dispatch metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Descriptor metrics
	DescriptorRequests prometheus.Counter

	// Auth metrics
	AuthFailures *prometheus.CounterVec

	// Bundle metrics
	BundleReloads      prometheus.Counter
	BundleReloadErrors prometheus.Counter
	BundleLastReload   prometheus.Gauge
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return build(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return build(promauto.With(reg))
}

func build(factory promauto.Factory) *Collector {
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rpcgate",
				Name:      "requests_total",
				Help:      "Total number of operation dispatches",
			},
			[]string{"operation", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rpcgate",
				Name:      "request_duration_seconds",
				Help:      "Dispatch duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "rpcgate",
				Name:      "requests_in_flight",
				Help:      "Number of dispatches currently being processed",
			},
		),
		DescriptorRequests: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "rpcgate",
				Name:      "descriptor_requests_total",
				Help:      "Total number of operation descriptor listings served",
			},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rpcgate",
				Name:      "auth_failures_total",
				Help:      "Total number of authentication failures",
			},
			[]string{"reason"},
		),
		BundleReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "rpcgate",
				Name:      "bundle_reloads_total",
				Help:      "Total number of descriptor bundle reloads",
			},
		),
		BundleReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "rpcgate",
				Name:      "bundle_reload_errors_total",
				Help:      "Total number of failed descriptor bundle reloads",
			},
		),
		BundleLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "rpcgate",
				Name:      "bundle_last_reload_timestamp_seconds",
				Help:      "Unix timestamp of the last successful bundle reload",
			},
		),
	}
}
