package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/internal/cli/output"
	"github.com/marmos91/dittomds/internal/cli/timeutil"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

var (
	statusOutput  string
	statusPidFile string
	statusAPIPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the current status of the dmds server.

This command checks the PID file, then calls the liveness and readiness
endpoints of the local API. A server is ready when its catalog answers.

Examples:
  # Check status (uses default settings)
  dmds status

  # Check status with custom API port
  dmds status --api-port 9080

  # Output as JSON
  dmds status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/dmds/dmds.pid)")
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 8080, "API server port")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	Running        bool   `json:"running" yaml:"running"`
	PID            int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Message        string `json:"message" yaml:"message"`
	StartedAt      string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime         string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Healthy        bool   `json:"healthy" yaml:"healthy"`
	Ready          bool   `json:"ready" yaml:"ready"`
	CatalogLatency string `json:"catalog_latency,omitempty" yaml:"catalog_latency,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	pidPath := statusPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	status := ServerStatus{Message: "Server is not running"}
	if pid, running := isProcessRunning(pidPath); running {
		status.Running = true
		status.PID = pid
	}

	client := apiclient.New(fmt.Sprintf("http://localhost:%d", statusAPIPort)).WithTimeout(2 * time.Second)
	checkHealth(client, &status)

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		return printStatusTable(status)
	}
}

// checkHealth fills status from the health endpoints. Works for daemon and
// foreground servers alike.
func checkHealth(client *apiclient.Client, status *ServerStatus) {
	health, err := client.Health()
	if err != nil {
		if status.Running {
			status.Message = "Server process exists but health check failed"
		}
		return
	}

	status.Running = true
	status.Healthy = health.Healthy()
	status.StartedAt = health.Data.StartedAt
	status.Uptime = health.Data.Uptime

	ready, err := client.Ready()
	if err == nil {
		status.Ready = ready.Healthy()
		status.CatalogLatency = ready.Data.CatalogLatency
	}

	switch {
	case status.Healthy && status.Ready:
		status.Message = "Server is running and ready"
	case status.Healthy:
		msg := "Server is running but not ready"
		if ready != nil && ready.Error != "" {
			msg += ": " + ready.Error
		}
		status.Message = msg
	default:
		status.Message = fmt.Sprintf("Server is running but unhealthy: %s", health.Error)
	}
}

func printStatusTable(status ServerStatus) error {
	state := "stopped"
	switch {
	case status.Running && status.Ready:
		state = "running"
	case status.Running && status.Healthy:
		state = "running (not ready)"
	case status.Running:
		state = "running (unhealthy)"
	}

	pairs := [][2]string{{"Status", state}}
	if status.PID > 0 {
		pairs = append(pairs, [2]string{"PID", strconv.Itoa(status.PID)})
	}
	if status.StartedAt != "" {
		pairs = append(pairs, [2]string{"Started", timeutil.FormatTime(status.StartedAt)})
	}
	if status.Uptime != "" {
		pairs = append(pairs, [2]string{"Uptime", timeutil.FormatUptime(status.Uptime)})
	}
	if status.CatalogLatency != "" {
		pairs = append(pairs, [2]string{"Catalog latency", status.CatalogLatency})
	}
	pairs = append(pairs, [2]string{"Message", status.Message})

	return output.KeyValueTable(os.Stdout, pairs)
}
