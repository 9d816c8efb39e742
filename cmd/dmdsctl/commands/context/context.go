// Package context implements the saved-context subcommands.
package context

import (
	"github.com/spf13/cobra"
)

// Cmd is the context subcommand.
var Cmd = &cobra.Command{
	Use:     "context",
	Aliases: []string{"ctx"},
	Short:   "Manage saved server contexts",
	Long: `Manage the dmds servers dmdsctl knows about.

A context is a server URL and the token presented to it. 'dmdsctl login'
and 'dmds token --save' create contexts.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(deleteCmd)
}
