package context

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/internal/cli/credentials"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return fmt.Errorf("failed to initialize credential store: %w", err)
		}
		return cmdutil.RunDeleteWithConfirmation("Context", args[0], deleteForce, func() error {
			if err := store.Delete(args[0]); err != nil {
				if errors.Is(err, credentials.ErrContextNotFound) {
					return fmt.Errorf("context %q not found", args[0])
				}
				return err
			}
			return nil
		})
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}
