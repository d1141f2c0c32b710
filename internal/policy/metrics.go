package policy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks policy server round trips.
type Metrics struct {
	QueryDuration *prometheus.HistogramVec
	QueryErrors   *prometheus.CounterVec
}

// NewMetrics registers the policy client metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pbd_policy_query_duration_seconds",
			Help:    "Duration of policy server queries by endpoint",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		QueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pbd_policy_query_errors_total",
			Help: "Failed policy server queries by endpoint and category",
		}, []string{"endpoint", "category"}),
	}
}

func (m *Metrics) observe(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metrics) recordError(endpoint string, category ErrorCategory) {
	if m == nil {
		return
	}
	m.QueryErrors.WithLabelValues(endpoint, string(category)).Inc()
}
