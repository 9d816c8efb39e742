package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/internal/cli/output"
	"github.com/marmos91/dittomds/internal/cli/timeutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server health",
	Long: `Show the liveness and readiness of the server of the current context.

Examples:
  dmdsctl status
  dmdsctl status -o json`,
	RunE: runStatus,
}

// Status is the combined health report.
type Status struct {
	Healthy        bool   `json:"healthy"`
	Ready          bool   `json:"ready"`
	Service        string `json:"service,omitempty"`
	StartedAt      string `json:"started_at,omitempty"`
	Uptime         string `json:"uptime,omitempty"`
	CatalogLatency string `json:"catalog_latency,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Headers implements TableRenderer.
func (s Status) Headers() []string {
	return []string{"HEALTHY", "READY", "UPTIME", "STARTED", "CATALOG LATENCY"}
}

// Rows implements TableRenderer.
func (s Status) Rows() [][]string {
	return [][]string{{
		cmdutil.BoolToYesNo(s.Healthy),
		cmdutil.BoolToYesNo(s.Ready),
		cmdutil.EmptyOr(timeutil.FormatUptime(s.Uptime), "-"),
		cmdutil.EmptyOr(timeutil.FormatTime(s.StartedAt), "-"),
		cmdutil.EmptyOr(s.CatalogLatency, "-"),
	}}
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	health, err := client.Health()
	if err != nil {
		return err
	}
	status := Status{
		Healthy:   health.Healthy(),
		Service:   health.Data.Service,
		StartedAt: health.Data.StartedAt,
		Uptime:    health.Data.Uptime,
		Error:     health.Error,
	}

	ready, err := client.Ready()
	if err != nil {
		return err
	}
	status.Ready = ready.Healthy()
	status.CatalogLatency = ready.Data.CatalogLatency
	if status.Error == "" {
		status.Error = ready.Error
	}

	if err := cmdutil.PrintResource(os.Stdout, status, status); err != nil {
		return err
	}
	if status.Error != "" {
		if p, perr := cmdutil.NewPrinter(os.Stdout); perr == nil && p.Format() == output.FormatTable {
			p.Warning(status.Error)
		}
	}
	return nil
}
