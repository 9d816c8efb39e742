// Package session implements the layout session subcommands.
package session

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/internal/cli/timeutil"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

// Cmd is the session subcommand.
var Cmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Inspect active layout sessions",
	Long: `Inspect the layouts currently granted to clients and the movers serving
them. A session ends when the client returns its layout or the mover
reports the transfer finished.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active layout sessions",
	Long: `List active layout sessions, oldest first.

Examples:
  dmdsctl session list
  dmdsctl session list -o yaml`,
	RunE: runList,
}

func init() {
	Cmd.AddCommand(listCmd)
}

// SessionList is a list of sessions for table rendering.
type SessionList []apiclient.Session

// Headers implements TableRenderer.
func (sl SessionList) Headers() []string {
	return []string{"STATEID", "POOL", "MOVER", "FILE", "IOMODE", "AGE"}
}

// Rows implements TableRenderer.
func (sl SessionList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, s := range sl {
		mover := "-"
		if s.MoverID >= 0 {
			mover = strconv.Itoa(int(s.MoverID))
		}
		rows = append(rows, []string{s.Stateid, s.Pool, mover, s.FileID, s.IOMode, timeutil.FormatAge(s.Started)})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	sessions, err := client.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, sessions, len(sessions) == 0, "No active sessions.", SessionList(sessions))
}
