package config

import (
	"strings"
	"time"

	"github.com/marmos91/dittomds/internal/bytesize"
	"github.com/marmos91/dittomds/pkg/nfs/pnfs"
	"github.com/marmos91/dittomds/pkg/pnfs/layout"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values (0, "", false, nil) are replaced with defaults; explicit
// values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyMetricsDefaults(&cfg.Metrics)
	cfg.API.ApplyDefaults()
	applyLayoutDefaults(&cfg.Layout)
	applyPoolManagerDefaults(&cfg.PoolManager)
	applyCatalogDefaults(&cfg.Catalog)
	applyNFSDefaults(&cfg.NFS)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyMetricsDefaults sets the port only when metrics are enabled.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyLayoutDefaults(cfg *LayoutConfig) {
	if cfg.WaitTimeout == 0 {
		cfg.WaitTimeout = layout.DefaultWaitTimeout
	}
	if cfg.PendingGrace == 0 {
		cfg.PendingGrace = 2 * cfg.WaitTimeout
	}
	if cfg.KillTimeout == 0 {
		cfg.KillTimeout = layout.DefaultKillTimeout
	}
}

func applyPoolManagerDefaults(cfg *PoolManagerConfig) {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:8081"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Door == "" {
		cfg.Door = "dmds"
	}
}

// applyCatalogDefaults defaults to a persistent badger catalog. The path
// has no default outside GetDefaultConfig.
func applyCatalogDefaults(cfg *CatalogConfig) {
	if cfg.Type == "" {
		cfg.Type = "badger"
	}
	cfg.Type = strings.ToLower(cfg.Type)

	if cfg.Type == "badger" {
		if cfg.BlockCacheSize == 0 {
			cfg.BlockCacheSize = 256 * bytesize.MiB
		}
		if cfg.IndexCacheSize == 0 {
			cfg.IndexCacheSize = 64 * bytesize.MiB
		}
	}
	if cfg.Type == "sql" {
		cfg.SQL.ApplyDefaults()
	}
}

func applyNFSDefaults(cfg *NFSConfig) {
	if cfg.Threads == 0 {
		cfg.Threads = pnfs.DefaultThreadCount
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Catalog: CatalogConfig{
			Type: "badger",
			Path: "/tmp/dmds-catalog",
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
