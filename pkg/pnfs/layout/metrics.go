package layout

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LAYOUTGET outcomes.
const (
	outcomeLocal    = "local"
	outcomeGranted  = "granted"
	outcomeTimeout  = "timeout"
	outcomeNoRoute  = "no_route"
	outcomeFailed   = "failed"
	outcomeStale    = "stale"
	outcomeCanceled = "canceled"
)

// Metrics instruments the coordinator. All methods are nil-safe.
type Metrics struct {
	LayoutGets     *prometheus.CounterVec
	Kills          *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
	WaitDuration   prometheus.Histogram
}

// NewMetrics creates and registers coordinator metrics. If reg is nil,
// metrics are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LayoutGets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dittomds",
			Subsystem: "pnfs_layout",
			Name:      "layoutget_total",
			Help:      "Total number of LAYOUTGET requests by outcome",
		}, []string{"outcome"}),
		Kills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dittomds",
			Subsystem: "pnfs_layout",
			Name:      "mover_kills_total",
			Help:      "Total number of kill-mover instructions by result",
		}, []string{"result"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dittomds",
			Subsystem: "pnfs_layout",
			Name:      "active_sessions",
			Help:      "Current number of layout sessions bound to a mover",
		}),
		WaitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dittomds",
			Subsystem: "pnfs_layout",
			Name:      "pool_wait_seconds",
			Help:      "Time LAYOUTGET spent waiting for a pool to become ready",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 27},
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.LayoutGets, m.Kills, m.ActiveSessions, m.WaitDuration} {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	}
	return m
}

func (m *Metrics) recordLayoutGet(outcome string) {
	if m == nil {
		return
	}
	m.LayoutGets.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordKill(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Kills.WithLabelValues("error").Inc()
		return
	}
	m.Kills.WithLabelValues("sent").Inc()
}

func (m *Metrics) setSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) observeWait(d time.Duration) {
	if m == nil {
		return
	}
	m.WaitDuration.Observe(d.Seconds())
}
