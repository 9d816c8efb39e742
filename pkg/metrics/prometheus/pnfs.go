package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/dittomds/pkg/metrics"
)

func init() {
	metrics.RegisterPNFSMetricsConstructor(func() metrics.PNFSMetrics {
		return NewPNFSMetrics()
	})
}

// pnfsMetrics is the Prometheus implementation of metrics.PNFSMetrics.
type pnfsMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestsActive  *prometheus.GaugeVec
	queueWait       prometheus.Histogram
	threadCount     prometheus.Gauge
}

// NewPNFSMetrics creates a Prometheus-backed PNFSMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewPNFSMetrics() metrics.PNFSMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &pnfsMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittomds_pnfs_requests_total",
				Help: "Total number of pNFS operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dittomds_pnfs_request_duration_milliseconds",
				Help: "Duration of pNFS operations in milliseconds",
				Buckets: []float64{
					0.1,   // local layouts, device lookups
					1,     //
					10,    //
					100,   // pool already warm
					1000,  //
					5000,  //
					27000, // wait timeout
				},
			},
			[]string{"operation"},
		),
		requestsActive: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dittomds_pnfs_requests_in_flight",
				Help: "Number of pNFS operations currently being processed",
			},
			[]string{"operation"},
		),
		queueWait: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dittomds_pnfs_queue_wait_milliseconds",
				Help:    "Time operations waited for a free worker in milliseconds",
				Buckets: []float64{0.01, 0.1, 1, 10, 100, 1000, 10000},
			},
		),
		threadCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dittomds_pnfs_worker_limit",
				Help: "Maximum number of pNFS operations processed concurrently",
			},
		),
	}
}

func (m *pnfsMetrics) RecordRequest(operation string, duration time.Duration, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, status).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(float64(duration.Microseconds()) / 1000)
}

func (m *pnfsMetrics) RecordRequestStart(operation string) {
	if m == nil {
		return
	}
	m.requestsActive.WithLabelValues(operation).Inc()
}

func (m *pnfsMetrics) RecordRequestEnd(operation string) {
	if m == nil {
		return
	}
	m.requestsActive.WithLabelValues(operation).Dec()
}

func (m *pnfsMetrics) RecordQueueWait(duration time.Duration) {
	if m == nil {
		return
	}
	m.queueWait.Observe(float64(duration.Microseconds()) / 1000)
}

func (m *pnfsMetrics) SetThreadCount(n int) {
	if m == nil {
		return
	}
	m.threadCount.Set(float64(n))
}
