// Package metrics records Prometheus metrics for the session and cart stores.
//
// The storefront has no HTTP surface, so metrics are exported by writing the
// registry to a node-exporter textfile (see WriteTextfile) when the CLI exits.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	opDuration *prometheus.HistogramVec
	cartItems  prometheus.Gauge
	loggedIn   prometheus.Gauge
}

// New creates the metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Store operations by store, operation and result.",
			},
			[]string{"store", "op", "result"},
		),
		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of store operations in seconds.",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"store", "op"},
		),
		cartItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "items",
			Help:      "Units currently in the cart.",
		}),
		loggedIn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "1 while a session is active.",
		}),
	}

	m.registry.MustRegister(m.operations, m.opDuration, m.cartItems, m.loggedIn)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOp counts one operation and its duration since start.
//
//	defer func() { m.ObserveOp("cart", "add", start, err) }()
func (m *Metrics) ObserveOp(store, op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.operations.WithLabelValues(store, op, result).Inc()
	m.opDuration.WithLabelValues(store, op).Observe(time.Since(start).Seconds())
}

// SetCartItems sets the cart badge count gauge.
func (m *Metrics) SetCartItems(n int) {
	if m == nil {
		return
	}
	m.cartItems.Set(float64(n))
}

// SetLoggedIn sets the session gauge.
func (m *Metrics) SetLoggedIn(active bool) {
	if m == nil {
		return
	}
	if active {
		m.loggedIn.Set(1)
		return
	}
	m.loggedIn.Set(0)
}

// WriteTextfile writes all metrics in the text exposition format to path,
// atomically, for the node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
