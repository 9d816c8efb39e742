package config

import (
	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/pkg/metrics"
)

// MetricsResult holds what InitializeMetrics set up. Server is nil when
// metrics are disabled.
type MetricsResult struct {
	Server *metrics.Server
}

// InitializeMetrics enables the Prometheus registry and creates the metrics
// HTTP server when cfg.Metrics.Enabled is set. It must run before any
// component that records metrics is constructed.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		logger.Debug("Metrics collection disabled")
		return &MetricsResult{}
	}

	metrics.InitRegistry()
	logger.Info("Metrics collection enabled", "port", cfg.Metrics.Port)

	return &MetricsResult{Server: metrics.NewServer(cfg.Metrics.Port)}
}
