package authorization

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pbd_authorization_decisions_total",
			Help: "Authorization decisions by capability and outcome",
		}, []string{"capability", "decision"}),
	}
}

func (m *Metrics) record(c Capability, d Decision) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(string(c), d.String()).Inc()
}
