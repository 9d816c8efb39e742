package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_API(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.API.Port != 8080 {
		t.Errorf("Expected default API port 8080, got %d", cfg.API.Port)
	}
	if cfg.API.ReadTimeout != 10*time.Second {
		t.Errorf("Expected default read timeout 10s, got %v", cfg.API.ReadTimeout)
	}
	if cfg.API.IdleTimeout != 60*time.Second {
		t.Errorf("Expected default idle timeout 60s, got %v", cfg.API.IdleTimeout)
	}
	if cfg.API.JWT.TokenDuration != 24*time.Hour {
		t.Errorf("Expected default token duration 24h, got %v", cfg.API.JWT.TokenDuration)
	}
}

func TestApplyDefaults_Layout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Layout.WaitTimeout != 27*time.Second {
		t.Errorf("Expected default wait timeout 27s, got %v", cfg.Layout.WaitTimeout)
	}
	if cfg.Layout.PendingGrace != 54*time.Second {
		t.Errorf("Expected default pending grace 54s, got %v", cfg.Layout.PendingGrace)
	}
	if cfg.Layout.KillTimeout != 5*time.Second {
		t.Errorf("Expected default kill timeout 5s, got %v", cfg.Layout.KillTimeout)
	}
}

func TestApplyDefaults_MetricsPortOnlyWhenEnabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 0 {
		t.Errorf("Expected no metrics port while disabled, got %d", cfg.Metrics.Port)
	}

	cfg = &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/dmds.log",
		},
		ShutdownTimeout: 60 * time.Second,
		Layout: LayoutConfig{
			WaitTimeout:  5 * time.Second,
			PendingGrace: 7 * time.Second,
		},
		PoolManager: PoolManagerConfig{Door: "mds-east"},
		NFS:         NFSConfig{Threads: 4},
	}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "/var/log/dmds.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit timeout 60s to be preserved, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Layout.PendingGrace != 7*time.Second {
		t.Errorf("Expected explicit pending grace to be preserved, got %v", cfg.Layout.PendingGrace)
	}
	if cfg.PoolManager.Door != "mds-east" {
		t.Errorf("Expected explicit door to be preserved, got %q", cfg.PoolManager.Door)
	}
	if cfg.NFS.Threads != 4 {
		t.Errorf("Expected explicit thread count to be preserved, got %d", cfg.NFS.Threads)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}
