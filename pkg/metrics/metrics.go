// Package metrics instruments the matching engine with Prometheus
// counters, a histogram, and a depth gauge. Nothing here runs inside
// pkg/lx's hot path: callers observe a Limit call and report it here
// after the fact, exactly as the matching core's own contract (spec.md
// §5) requires zero internal instrumentation overhead.
package metrics

import (
	"net/http"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one engine instance.
type Metrics struct {
	registry *prometheus.Registry
	logger   log.Logger

	ordersProcessed prometheus.Counter
	tradesExecuted  prometheus.Counter
	matchingLatency prometheus.Histogram
	bookDepth       *prometheus.GaugeVec
}

// New creates a fresh metrics registry under namespace.
func New(namespace string) *Metrics {
	logger := log.Root().New("module", "metrics")
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		logger:   logger,

		ordersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_processed_total",
			Help:      "Total number of limit orders submitted to the engine.",
		}),
		tradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_executed_total",
			Help:      "Total number of trades (execution pairs) emitted by the engine.",
		}),
		matchingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matching_latency_nanoseconds",
			Help:      "Wall-clock duration of a single Limit call, in nanoseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000},
		}),
		bookDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orderbook_depth",
			Help:      "Resting share count at the current best price, by side.",
		}, []string{"symbol", "side"}),
	}

	registry.MustRegister(m.ordersProcessed, m.tradesExecuted, m.matchingLatency, m.bookDepth)
	return m
}

// ObserveLimit records one Limit call: it always counts the order, and
// counts a trade (and records latency) only when the call produced at
// least one execution pair.
func (m *Metrics) ObserveLimit(latencyNanos float64, trades int) {
	m.ordersProcessed.Inc()
	if trades > 0 {
		m.tradesExecuted.Add(float64(trades))
		m.matchingLatency.Observe(latencyNanos)
	}
}

// SetDepth updates the depth gauge for symbol/side from a periodic
// book snapshot; it is never called from inside a Limit/Cancel call.
func (m *Metrics) SetDepth(symbol, side string, size uint64) {
	m.bookDepth.WithLabelValues(symbol, side).Set(float64(size))
}

// Handler exposes the registry over HTTP in the standard Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
