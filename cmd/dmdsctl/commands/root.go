// Package commands implements the CLI commands for the dmdsctl client.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	catalogcmd "github.com/marmos91/dittomds/cmd/dmdsctl/commands/catalog"
	ctxcmd "github.com/marmos91/dittomds/cmd/dmdsctl/commands/context"
	devicecmd "github.com/marmos91/dittomds/cmd/dmdsctl/commands/device"
	movercmd "github.com/marmos91/dittomds/cmd/dmdsctl/commands/mover"
	notifycmd "github.com/marmos91/dittomds/cmd/dmdsctl/commands/notify"
	sessioncmd "github.com/marmos91/dittomds/cmd/dmdsctl/commands/session"
	settingscmd "github.com/marmos91/dittomds/cmd/dmdsctl/commands/settings"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dmdsctl",
	Short: "dmds Control - Remote management client",
	Long: `dmdsctl is the command-line client for dmds metadata servers.

Use it to inspect pool devices and layout sessions, kill movers, tune the
pNFS worker limit, manage the storage-class catalog, and send the pool
notifications a data server would send.

Use "dmdsctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Token, _ = cmd.Flags().GetString("token")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Server URL (overrides stored context)")
	rootCmd.PersistentFlags().String("token", "", "Bearer token (overrides stored context)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(ctxcmd.Cmd)
	rootCmd.AddCommand(devicecmd.Cmd)
	rootCmd.AddCommand(sessioncmd.Cmd)
	rootCmd.AddCommand(movercmd.Cmd)
	rootCmd.AddCommand(settingscmd.Cmd)
	rootCmd.AddCommand(catalogcmd.Cmd)
	rootCmd.AddCommand(notifycmd.Cmd)
	rootCmd.AddCommand(completionCmd)

	// Hide the default completion command (we provide our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
