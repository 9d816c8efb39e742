package device

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks device allocation. All methods are nil-safe.
type Metrics struct {
	AllocatedTotal prometheus.Counter
	RetiredTotal   prometheus.Counter
	LiveGauge      prometheus.Gauge
}

// NewMetrics creates and registers device metrics. If reg is nil, metrics
// are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AllocatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dittomds",
			Subsystem: "pnfs_devices",
			Name:      "allocated_total",
			Help:      "Total number of pNFS device ids allocated",
		}),
		RetiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dittomds",
			Subsystem: "pnfs_devices",
			Name:      "retired_total",
			Help:      "Total number of pNFS device ids retired after a pool address change",
		}),
		LiveGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dittomds",
			Subsystem: "pnfs_devices",
			Name:      "live",
			Help:      "Current number of live pNFS devices",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.AllocatedTotal, m.RetiredTotal, m.LiveGauge} {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	}
	return m
}

func (m *Metrics) recordAllocated(live int) {
	if m == nil {
		return
	}
	m.AllocatedTotal.Inc()
	m.LiveGauge.Set(float64(live))
}

func (m *Metrics) recordRetired() {
	if m == nil {
		return
	}
	m.RetiredTotal.Inc()
}
