package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/pkg/config"
	"github.com/marmos91/dittomds/pkg/controlplane/api"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample dmds configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/dmds/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  dmds init

  # Initialize with custom path
  dmds init --config /etc/dmds/config.yaml

  # Force overwrite existing config
  dmds init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()

	var err error
	if configPath != "" {
		err = config.InitConfigToPath(configPath, initForce)
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Point poolmanager.url at your pool manager")
	_, _ = fmt.Fprintln(out, "  2. Start the server with: dmds start")
	_, _ = fmt.Fprintln(out, "  3. Issue an admin token with: dmds token --role admin --save")
	_, _ = fmt.Fprintln(out, "\nSecurity note:")
	_, _ = fmt.Fprintln(out, "  A random API signing secret has been generated for development use.")
	_, _ = fmt.Fprintln(out, "  For production, provide it through the environment instead:")
	_, _ = fmt.Fprintf(out, "    export %s=$(openssl rand -hex 32)\n", api.EnvAPISecret)
	return nil
}
