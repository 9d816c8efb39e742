package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidAPIPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.API.Port = 70000

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.API.JWT.Secret = "short"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for a short JWT secret")
	}
}

func TestValidate_Catalog(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Catalog.Type = "mysql"
	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unknown catalog type")
	}

	cfg = GetDefaultConfig()
	cfg.Catalog.Path = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for badger catalog without path")
	}
	if !strings.Contains(err.Error(), "catalog.path") {
		t.Errorf("Expected error about catalog path, got: %v", err)
	}

	cfg = GetDefaultConfig()
	cfg.Catalog = CatalogConfig{Type: "memory"}
	if err := Validate(cfg); err != nil {
		t.Errorf("Memory catalog needs no path, got: %v", err)
	}
}

func TestValidate_SQLCatalog(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Catalog = CatalogConfig{Type: "sql"}
	ApplyDefaults(cfg)
	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for sql catalog without sqlite path")
	}
	if !strings.Contains(err.Error(), "catalog.sql") {
		t.Errorf("Expected error about catalog.sql, got: %v", err)
	}

	cfg.Catalog.SQL.SQLite.Path = "/var/lib/dmds/catalog.db"
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid sqlite catalog, got: %v", err)
	}
}

func TestValidate_PoolManagerURL(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.PoolManager.URL = "not a url"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for malformed pool manager URL")
	}
}

func TestValidate_LayoutTiming(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Layout.PendingGrace = time.Second

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for pending grace below wait timeout")
	}
	if !strings.Contains(err.Error(), "pending_grace") {
		t.Errorf("Expected error about pending_grace, got: %v", err)
	}
}

func TestValidate_Threads(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.NFS.Threads = 0

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for zero threads")
	}
}

func TestValidate_MetricsPortClash(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = cfg.API.Port

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for metrics and API on the same port")
	}
}

func TestValidate_TelemetryEnabledWithoutEndpoint(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for telemetry enabled without endpoint")
	}
	if !strings.Contains(err.Error(), "telemetry") {
		t.Errorf("Expected error about telemetry endpoint, got: %v", err)
	}
}

func TestValidate_TelemetrySampleRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.SampleRate = 1.5

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for sample rate out of range")
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	for _, level := range []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"} {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		if err := Validate(cfg); err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}
		if cfg.Logging.Level != level {
			t.Errorf("Expected level to remain %q after validation, got %q", level, cfg.Logging.Level)
		}
	}

	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected ApplyDefaults to normalize 'info' to 'INFO', got %q", cfg.Logging.Level)
	}
}
