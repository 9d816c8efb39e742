package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/internal/cli/output"
	"github.com/marmos91/dittomds/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the dmds configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  dmds config validate

  # Validate specific config file
  dmds config validate --config /etc/dmds/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if warnings := configWarnings(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintln(out, "\nConfiguration summary:")
	return output.KeyValueTable(out, [][2]string{
		{"Catalog", cfg.Catalog.Type},
		{"Pool manager", cfg.PoolManager.URL},
		{"API port", fmt.Sprintf("%d", cfg.API.Port)},
		{"Layout wait", cfg.Layout.WaitTimeout.String()},
		{"pNFS threads", fmt.Sprintf("%d", cfg.NFS.Threads)},
		{"Log level", cfg.Logging.Level},
	})
}

// configWarnings reports settings that are valid but probably unintended.
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if !cfg.API.HasJWTSecret() {
		warnings = append(warnings, "API secret not configured - notification and admin routes are unauthenticated")
	}
	if cfg.Catalog.Type == "memory" {
		warnings = append(warnings, "memory catalog loses all entries on restart")
	}
	if cfg.Layout.PendingGrace < cfg.Layout.WaitTimeout {
		warnings = append(warnings, "layout.pending_grace is shorter than layout.wait_timeout - late readiness notifications may be dropped")
	}
	return warnings
}
