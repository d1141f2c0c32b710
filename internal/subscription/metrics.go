package subscription

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Active prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Active: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "pbd_location_subscriptions_active",
			Help: "Number of apps with a location subscription",
		}),
	}
}

func (m *Metrics) addActive(delta float64) {
	if m == nil {
		return
	}
	m.Active.Add(delta)
}
