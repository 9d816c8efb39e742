// Package settings implements the server settings subcommands.
package settings

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

// Cmd is the settings subcommand.
var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change run-time settings",
}

var threadsCmd = &cobra.Command{
	Use:   "threads [count]",
	Short: "Show or set the pNFS worker limit",
	Long: `Show the number of pNFS operations processed concurrently, or change it.

A lower limit takes effect as running operations finish; queued operations
are admitted in arrival order. The value is not written back to the
configuration file.

Examples:
  # Show the limit and current use
  dmdsctl settings threads

  # Raise the limit
  dmdsctl settings threads 64`,
	Args: cobra.MaximumNArgs(1),
	RunE: runThreads,
}

func init() {
	Cmd.AddCommand(threadsCmd)
}

// ThreadsView renders the worker limit.
type ThreadsView apiclient.Threads

// Headers implements TableRenderer.
func (v ThreadsView) Headers() []string { return []string{"THREADS", "IN FLIGHT"} }

// Rows implements TableRenderer.
func (v ThreadsView) Rows() [][]string {
	return [][]string{{strconv.Itoa(v.Count), strconv.Itoa(v.InFlight)}}
}

func runThreads(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		threads, err := client.GetThreads()
		if err != nil {
			return fmt.Errorf("failed to get threads: %w", err)
		}
		return cmdutil.PrintResource(os.Stdout, threads, ThreadsView(*threads))
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid thread count %q: must be a positive integer", args[0])
	}

	threads, err := client.SetThreadCount(n)
	if err != nil {
		return fmt.Errorf("failed to set threads: %w", err)
	}
	return cmdutil.PrintResourceWithSuccess(os.Stdout, threads, fmt.Sprintf("Thread count set to %d", threads.Count))
}
