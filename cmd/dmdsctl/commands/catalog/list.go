package catalog

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Long: `List all catalog entries ordered by file id.

Examples:
  dmdsctl catalog list
  dmdsctl catalog list -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.GetClient()
		if err != nil {
			return err
		}
		entries, err := client.ListCatalog()
		if err != nil {
			return fmt.Errorf("failed to list catalog: %w", err)
		}
		return cmdutil.PrintOutput(os.Stdout, entries, len(entries) == 0, "Catalog is empty.", EntryList(entries))
	},
}
