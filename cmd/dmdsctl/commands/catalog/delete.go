package catalog

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <file-id>",
	Short: "Delete a catalog entry",
	Long: `Delete the catalog entry of a file. Later LAYOUTGETs for the file are
answered with NFS4ERR_STALE.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.GetClient()
		if err != nil {
			return err
		}
		return cmdutil.RunDeleteWithConfirmation("Catalog entry", args[0], deleteForce, func() error {
			return client.DeleteCatalogEntry(args[0])
		})
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}
