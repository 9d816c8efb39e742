// Package notify implements the pool notification subcommands. They post
// what a data server posts and are meant for testing and recovery.
package notify

import (
	"encoding/base64"
	"fmt"
	"net/netip"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
)

// Cmd is the notify subcommand.
var Cmd = &cobra.Command{
	Use:   "notify",
	Short: "Send pool notifications",
	Long: `Send the notifications a data server sends to the metadata server.

Transfers are identified either by the stateid printed by
'dmdsctl session list' (seqid:other-hex) or by the base64 challenge the
pool manager forwarded to the pool.`,
}

var readyCmd = &cobra.Command{
	Use:   "ready <pool> <host:port> <stateid|challenge>",
	Short: "Report a pool ready to serve a transfer",
	Long: `Report that pool serves the transfer on host:port. A LAYOUTGET waiting
for the transfer is answered with a layout pointing at that address.

Examples:
  dmdsctl notify ready poolA 10.0.0.5:2049 7:0102030405060708090a0b0c`,
	Args: cobra.ExactArgs(3),
	RunE: runReady,
}

var finishedCmd = &cobra.Command{
	Use:   "finished <stateid|challenge>",
	Short: "Report a transfer finished",
	Long: `Report that the mover of a transfer exited. The matching layout session
is ended.

Examples:
  dmdsctl notify finished 7:0102030405060708090a0b0c`,
	Args: cobra.ExactArgs(1),
	RunE: runFinished,
}

func init() {
	Cmd.AddCommand(readyCmd)
	Cmd.AddCommand(finishedCmd)
}

func runReady(cmd *cobra.Command, args []string) error {
	pool, addr := args[0], args[1]
	if _, err := netip.ParseAddrPort(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	challenge, err := parseChallenge(args[2])
	if err != nil {
		return err
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}
	if err := client.PoolReady(cmd.Context(), pool, addr, challenge); err != nil {
		return fmt.Errorf("failed to send ready notification: %w", err)
	}
	cmdutil.PrintSuccess(fmt.Sprintf("Pool '%s' reported ready at %s", pool, addr))
	return nil
}

func runFinished(cmd *cobra.Command, args []string) error {
	challenge, err := parseChallenge(args[0])
	if err != nil {
		return err
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}
	found, err := client.TransferFinished(cmd.Context(), challenge)
	if err != nil {
		return fmt.Errorf("failed to send finished notification: %w", err)
	}
	if found {
		cmdutil.PrintSuccess("Transfer finished, session ended")
	} else {
		cmdutil.PrintSuccess("Transfer finished, no session was open")
	}
	return nil
}

// parseChallenge accepts a seqid:other-hex stateid or a base64 challenge.
func parseChallenge(s string) ([]byte, error) {
	if strings.Contains(s, ":") {
		sid, err := types.ParseStateid4(s)
		if err != nil {
			return nil, err
		}
		return types.EncodeChallengeStateid(sid), nil
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("challenge %q is neither a stateid nor base64", s)
	}
	if _, err := types.DecodeChallengeStateid(raw); err != nil {
		return nil, err
	}
	return raw, nil
}
