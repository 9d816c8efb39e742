// Package mover implements the mover subcommands.
package mover

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
)

// Cmd is the mover subcommand.
var Cmd = &cobra.Command{
	Use:   "mover",
	Short: "Control data movers",
}

var killForce bool

var killCmd = &cobra.Command{
	Use:   "kill <pool> <mover-id>",
	Short: "Kill a mover on a pool",
	Long: `Ask the server to instruct pool to stop a mover.

The client holding a layout served by the mover will see I/O errors and
fall back to the metadata server.

Examples:
  dmdsctl mover kill poolA 17
  dmdsctl mover kill poolA 17 --force`,
	Args: cobra.ExactArgs(2),
	RunE: runKill,
}

func init() {
	killCmd.Flags().BoolVarP(&killForce, "force", "f", false, "Skip confirmation")
	Cmd.AddCommand(killCmd)
}

func runKill(cmd *cobra.Command, args []string) error {
	pool := args[0]
	moverID, err := parseMoverID(args[1])
	if err != nil {
		return err
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	return cmdutil.RunWithConfirmation(
		fmt.Sprintf("Kill mover %d on pool '%s'?", moverID, pool), killForce,
		fmt.Sprintf("Kill sent to mover %d on pool '%s'", moverID, pool),
		func() error { return client.KillMover(pool, moverID) })
}

func parseMoverID(s string) (int32, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid mover id %q", s)
	}
	return int32(id), nil
}
