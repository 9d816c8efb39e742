package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/internal/cli/output"
	"github.com/marmos91/dittomds/pkg/config"
)

var (
	showOutput      string
	showWithSecrets bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective dmds configuration, defaults applied.

Secrets are masked unless --show-secrets is given.

Examples:
  # Show default config as YAML
  dmds config show

  # Show as JSON
  dmds config show --output json`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
	showCmd.Flags().BoolVar(&showWithSecrets, "show-secrets", false, "Print secrets in clear")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	if !showWithSecrets {
		maskSecrets(cfg)
	}

	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	return output.PrintYAML(cmd.OutOrStdout(), cfg)
}

const masked = "********"

func maskSecrets(cfg *config.Config) {
	if cfg.API.JWT.Secret != "" {
		cfg.API.JWT.Secret = masked
	}
	if cfg.PoolManager.Token != "" {
		cfg.PoolManager.Token = masked
	}
	if cfg.Catalog.SQL.Postgres.Password != "" {
		cfg.Catalog.SQL.Postgres.Password = masked
	}
}
