package catalog

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

var (
	putType         string
	putStorageClass string
	putSize         string
	putCreatedOnly  bool
)

var putCmd = &cobra.Command{
	Use:   "put <file-id>",
	Short: "Create or replace a catalog entry",
	Long: `Create or replace the catalog entry of a file.

Sizes accept human-readable values such as "4GiB" or "1.5 GB".

Examples:
  # A regular file on tape-backed storage
  dmdsctl catalog put 0a1b2c --type regular --storage-class tape:raw --size 4GiB

  # A file that was just created and has no data yet
  dmdsctl catalog put 0a1b2d --type regular --created-only`,
	Args: cobra.ExactArgs(1),
	RunE: runPut,
}

func init() {
	putCmd.Flags().StringVar(&putType, "type", "regular", "File type (regular|directory|symlink|control)")
	putCmd.Flags().StringVar(&putStorageClass, "storage-class", "", "Storage class passed to the pool manager")
	putCmd.Flags().StringVar(&putSize, "size", "0", "File size")
	putCmd.Flags().BoolVar(&putCreatedOnly, "created-only", false, "File is newly created and holds no data")
}

func runPut(cmd *cobra.Command, args []string) error {
	size, err := humanize.ParseBytes(putSize)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", putSize, err)
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	entry, err := client.PutCatalogEntry(args[0], &apiclient.PutCatalogEntryRequest{
		Type:         putType,
		StorageClass: putStorageClass,
		CreatedOnly:  putCreatedOnly,
		Size:         size,
	})
	if err != nil {
		return fmt.Errorf("failed to put catalog entry: %w", err)
	}
	return cmdutil.PrintResourceWithSuccess(os.Stdout, entry,
		fmt.Sprintf("Catalog entry '%s' saved (%s, %s)", entry.FileID, entry.Type, humanize.IBytes(entry.Size)))
}
