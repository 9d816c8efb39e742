package catalog

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

var getCmd = &cobra.Command{
	Use:   "get <file-id>",
	Short: "Show a catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.GetClient()
		if err != nil {
			return err
		}
		entry, err := client.GetCatalogEntry(args[0])
		if err != nil {
			return fmt.Errorf("failed to get catalog entry: %w", err)
		}
		return cmdutil.PrintResource(os.Stdout, entry, EntryList([]apiclient.CatalogEntry{*entry}))
	},
}
