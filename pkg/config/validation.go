package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return errors.New("telemetry.endpoint is required when telemetry is enabled")
	}
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return errors.New("telemetry.profiling.endpoint is required when profiling is enabled")
	}
	if cfg.Catalog.Type == "badger" && cfg.Catalog.Path == "" {
		return errors.New("catalog.path is required for the badger catalog")
	}
	if cfg.Catalog.Type == "sql" {
		if err := cfg.Catalog.SQL.Validate(); err != nil {
			return fmt.Errorf("catalog.sql: %w", err)
		}
	}
	if cfg.Layout.PendingGrace < cfg.Layout.WaitTimeout {
		return fmt.Errorf("layout.pending_grace (%s) must not be shorter than layout.wait_timeout (%s)",
			cfg.Layout.PendingGrace, cfg.Layout.WaitTimeout)
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.API.Port {
		return fmt.Errorf("metrics.port and api.port must differ (both %d)", cfg.API.Port)
	}

	return nil
}
