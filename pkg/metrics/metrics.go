package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OrderMetrics tracks the outcome of order placements.
type OrderMetrics struct {
	placed   prometheus.Counter
	failed   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewOrderMetrics registers the order placement collectors on reg.
// Taking the registerer lets tests use a fresh registry per app instance.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	m := &OrderMetrics{
		placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "panganlink",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders committed successfully.",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panganlink",
			Subsystem: "orders",
			Name:      "failed_total",
			Help:      "Order placements rolled back, by reason.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "panganlink",
			Subsystem: "orders",
			Name:      "placement_duration_ms",
			Help:      "Order placement transaction duration in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
	}
	reg.MustRegister(m.placed, m.failed, m.duration)
	return m
}

// ObserveSuccess records a committed placement and its duration.
// Safe on a nil receiver so callers without metrics wired need no checks.
func (m *OrderMetrics) ObserveSuccess(d time.Duration) {
	if m == nil {
		return
	}
	m.placed.Inc()
	m.duration.Observe(float64(d.Milliseconds()))
}

// ObserveFailure records a rolled-back placement by reason.
func (m *OrderMetrics) ObserveFailure(reason string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(reason).Inc()
}

// HandlerFor exposes the given registry in Prometheus text format.
func HandlerFor(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
