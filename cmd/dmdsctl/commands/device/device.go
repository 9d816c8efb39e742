// Package device implements the pool device subcommands.
package device

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

// Cmd is the device subcommand.
var Cmd = &cobra.Command{
	Use:     "device",
	Aliases: []string{"devices"},
	Short:   "Inspect pool devices",
	Long: `Inspect the pNFS devices the server allocated for storage pools.

A pool gets a device id the first time it reports ready. A pool that
comes back on a different address gets a new id; the old one is retired.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pool devices",
	Long: `List every known pool device.

Examples:
  dmdsctl device list
  dmdsctl device list -o json`,
	RunE: runList,
}

func init() {
	Cmd.AddCommand(listCmd)
}

// DeviceList is a list of devices for table rendering.
type DeviceList []apiclient.Device

// Headers implements TableRenderer.
func (dl DeviceList) Headers() []string {
	return []string{"DEVICE ID", "POOL", "ADDRESS"}
}

// Rows implements TableRenderer.
func (dl DeviceList) Rows() [][]string {
	rows := make([][]string, 0, len(dl))
	for _, d := range dl {
		rows = append(rows, []string{d.DeviceID, d.Pool, d.Address})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	devices, err := client.ListDevices()
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, devices, len(devices) == 0, "No pool devices.", DeviceList(devices))
}
