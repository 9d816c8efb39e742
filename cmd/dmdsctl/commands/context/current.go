package context

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/internal/cli/credentials"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return fmt.Errorf("failed to initialize credential store: %w", err)
		}
		ctx, err := store.Current()
		if errors.Is(err, credentials.ErrNoCurrentContext) {
			return errors.New("no current context. Run 'dmdsctl login' first")
		}
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", store.CurrentName(), ctx.ServerURL)
		return nil
	},
}
