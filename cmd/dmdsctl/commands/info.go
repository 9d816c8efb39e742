package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/internal/cli/output"
	"github.com/marmos91/dittomds/internal/cli/timeutil"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the door summary",
	Long: `Show the worker limit, pending readiness notifications, known pools and
running movers of the server.

Examples:
  dmdsctl info
  dmdsctl info -o yaml`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	info, err := client.GetInfo()
	if err != nil {
		return fmt.Errorf("failed to get info: %w", err)
	}

	p, err := cmdutil.NewPrinter(os.Stdout)
	if err != nil {
		return err
	}
	if p.Format() != output.FormatTable {
		return p.Print(info)
	}
	return printInfoTable(info)
}

func printInfoTable(info *apiclient.Info) error {
	if err := output.KeyValueTable(os.Stdout, [][2]string{
		{"Threads", strconv.Itoa(info.Threads)},
		{"In flight", strconv.Itoa(info.InFlight)},
		{"Pending", strconv.Itoa(info.Pending)},
		{"Pools", strconv.Itoa(len(info.Pools))},
		{"Movers", strconv.Itoa(len(info.Movers))},
	}); err != nil {
		return err
	}

	if len(info.Movers) > 0 {
		fmt.Println()
		movers := output.NewTableData("POOL", "MOVER", "FILE", "IOMODE", "AGE")
		for _, m := range info.Movers {
			movers.AddRow(m.Pool, strconv.Itoa(int(m.MoverID)), m.FileID, m.IOMode, timeutil.FormatAge(m.Started))
		}
		return output.PrintTable(os.Stdout, movers)
	}
	return nil
}
