package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/internal/cli/credentials"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the token of the current context",
	Long: `Remove the token of the current context. The server URL is kept so a
later 'dmdsctl login' only asks for a new token.`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	if err := store.Logout(); err != nil {
		if errors.Is(err, credentials.ErrNoCurrentContext) {
			fmt.Println("Not logged in.")
			return nil
		}
		return err
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Logged out of context %q", store.CurrentName()))
	return nil
}
