package metrics

import (
	"time"
)

// PNFSMetrics observes pNFS operations served by the metadata server.
//
// Implementations must be safe for concurrent use. Pass nil to disable
// collection.
type PNFSMetrics interface {
	// RecordRequest records a completed operation with its NFS4 status name
	// ("NFS4_OK" on success).
	RecordRequest(operation string, duration time.Duration, status string)

	// RecordRequestStart and RecordRequestEnd bracket an operation for the
	// in-flight gauge.
	RecordRequestStart(operation string)
	RecordRequestEnd(operation string)

	// RecordQueueWait records how long an operation waited for a worker.
	RecordQueueWait(duration time.Duration)

	// SetThreadCount reports the current worker limit.
	SetThreadCount(n int)
}

// NewPNFSMetrics returns the Prometheus-backed PNFSMetrics, or nil when
// metrics are disabled or no implementation is linked in.
func NewPNFSMetrics() PNFSMetrics {
	if !IsEnabled() || newPrometheusPNFSMetrics == nil {
		return nil
	}
	return newPrometheusPNFSMetrics()
}

// newPrometheusPNFSMetrics is set by pkg/metrics/prometheus so this package
// does not import its own implementation.
var newPrometheusPNFSMetrics func() PNFSMetrics

// RegisterPNFSMetricsConstructor registers the PNFSMetrics implementation.
func RegisterPNFSMetricsConstructor(constructor func() PNFSMetrics) {
	newPrometheusPNFSMetrics = constructor
}
