package credential

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Exchanges   *prometheus.CounterVec
	Credentials prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Exchanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pbd_credential_exchanges_total",
			Help: "Token exchanges by kind (bootstrap, refresh, cached) and outcome",
		}, []string{"kind", "outcome"}),
		Credentials: f.NewGauge(prometheus.GaugeOpts{
			Name: "pbd_credentials_cached",
			Help: "Number of apps with a stored credential bundle",
		}),
	}
}

func (m *Metrics) record(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.Exchanges.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) setCached(n int) {
	if m == nil {
		return
	}
	m.Credentials.Set(float64(n))
}
