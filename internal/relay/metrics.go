package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Queued           *prometheus.CounterVec
	Dropped          *prometheus.CounterVec
	Deliveries       *prometheus.CounterVec
	DeliveryDuration prometheus.Histogram
	QueueDepth       prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Queued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pbd_relay_queued_total",
			Help: "Records accepted onto the relay queue by kind",
		}, []string{"kind"}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pbd_relay_dropped_total",
			Help: "Records dropped before delivery by kind",
		}, []string{"kind"}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pbd_relay_deliveries_total",
			Help: "Delivery attempts by kind and outcome",
		}, []string{"kind", "outcome"}),
		DeliveryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pbd_relay_delivery_duration_seconds",
			Help:    "Duration of collector exchanges",
			Buckets: prometheus.DefBuckets,
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "pbd_relay_queue_depth",
			Help: "Records waiting for a relay worker",
		}),
	}
}

func (m *Metrics) recordQueued(kind string, depth int) {
	if m == nil {
		return
	}
	m.Queued.WithLabelValues(kind).Inc()
	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) recordDropped(kind string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(kind).Inc()
}

func (m *Metrics) recordDelivery(kind string, err error, seconds float64, depth int) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.Deliveries.WithLabelValues(kind, outcome).Inc()
	m.DeliveryDuration.Observe(seconds)
	m.QueueDepth.Set(float64(depth))
}
