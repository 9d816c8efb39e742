// Package catalog implements the storage-class catalog subcommands.
package catalog

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

// Cmd is the catalog subcommand.
var Cmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the storage-class catalog",
	Long: `Manage the storage-class catalog the server consults on LAYOUTGET.

Each entry classifies a file by its id (the hex-encoded NFS file handle):
its type, its storage class, its size and whether it has only been
created so far. Files without an entry are answered with NFS4ERR_STALE.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(putCmd)
	Cmd.AddCommand(deleteCmd)
}

// EntryList is a list of catalog entries for table rendering.
type EntryList []apiclient.CatalogEntry

// Headers implements TableRenderer.
func (el EntryList) Headers() []string {
	return []string{"FILE ID", "TYPE", "STORAGE CLASS", "SIZE", "CREATED ONLY"}
}

// Rows implements TableRenderer.
func (el EntryList) Rows() [][]string {
	rows := make([][]string, 0, len(el))
	for _, e := range el {
		rows = append(rows, []string{
			e.FileID,
			e.Type,
			cmdutil.EmptyOr(e.StorageClass, "-"),
			humanize.IBytes(e.Size),
			cmdutil.BoolToYesNo(e.CreatedOnly),
		})
	}
	return rows
}
