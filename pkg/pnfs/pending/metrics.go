package pending

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks pending assignments. All methods are nil-safe.
type Metrics struct {
	PublishedTotal prometheus.Counter
	ExpiredTotal   prometheus.Counter
	PendingGauge   prometheus.Gauge
}

// NewMetrics creates and registers pending-table metrics. If reg is nil,
// metrics are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PublishedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dittomds",
			Subsystem: "pnfs_pending",
			Name:      "published_total",
			Help:      "Total number of pool-ready assignments published",
		}),
		ExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dittomds",
			Subsystem: "pnfs_pending",
			Name:      "expired_total",
			Help:      "Total number of assignments evicted because nobody consumed them",
		}),
		PendingGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dittomds",
			Subsystem: "pnfs_pending",
			Name:      "entries",
			Help:      "Current number of pending table entries",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.PublishedTotal, m.ExpiredTotal, m.PendingGauge} {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	}
	return m
}

func (m *Metrics) recordPublished() {
	if m == nil {
		return
	}
	m.PublishedTotal.Inc()
}

func (m *Metrics) recordExpired(n int) {
	if m == nil {
		return
	}
	m.ExpiredTotal.Add(float64(n))
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.PendingGauge.Set(float64(n))
}
