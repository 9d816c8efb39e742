package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/internal/telemetry"
	"github.com/marmos91/dittomds/pkg/catalog"
	catalogbadger "github.com/marmos91/dittomds/pkg/catalog/badger"
	"github.com/marmos91/dittomds/pkg/config"
	"github.com/marmos91/dittomds/pkg/controlplane/api"
	"github.com/marmos91/dittomds/pkg/controlplane/runtime"
	"github.com/marmos91/dittomds/pkg/metrics"
	"github.com/marmos91/dittomds/pkg/metrics/prometheus"
	"github.com/marmos91/dittomds/pkg/nfs/pnfs"
	"github.com/marmos91/dittomds/pkg/pnfs/device"
	"github.com/marmos91/dittomds/pkg/pnfs/layout"
	"github.com/marmos91/dittomds/pkg/pnfs/pending"
	"github.com/marmos91/dittomds/pkg/poolmanager"
)

// badgerMetricsInterval is how often badger cache statistics are sampled.
const badgerMetricsInterval = 30 * time.Second

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the dmds server",
	Long: `Start the dmds metadata server with the specified configuration.

By default, the server runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process supervisor.

While running, changes to logging.level and nfs.threads in the configuration
file are applied without a restart.

Examples:
  # Start in background (default)
  dmds start

  # Start in foreground
  dmds start --foreground

  # Start with custom config file
  dmds start --config /etc/dmds/config.yaml

  # Start with environment variable overrides
  DMDS_LOGGING_LEVEL=DEBUG dmds start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/dmds/dmds.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/dmds/dmds.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "dmds",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "dmds",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	configPath := resolveConfigPath(GetConfigFile())
	logger.Info("dmds starting", "version", Version, "commit", Commit)
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", configSource(configPath))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	// Must run before anything that records metrics is constructed.
	metricsResult := config.InitializeMetrics(cfg)

	store, err := config.CreateCatalog(ctx, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	logger.Info("Catalog opened", "type", cfg.Catalog.Type)

	pm := config.CreatePoolManagerClient(cfg.PoolManager)
	logger.Info("Pool manager configured", "url", cfg.PoolManager.URL, "door", cfg.PoolManager.Door)

	coord, err := newCoordinator(cfg, metrics.Registerer(), store, pm)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create layout coordinator: %w", err)
	}

	pnfsMetrics := metrics.NewPNFSMetrics()
	workers := pnfs.NewDispatcher(pnfs.NewHandler(coord, pnfsMetrics), cfg.NFS.Threads, pnfsMetrics)
	logger.Info("pNFS dispatcher ready", "threads", workers.ThreadCount())

	apiServer, err := api.NewServer(cfg.API, api.Deps{
		Coordinator: coord,
		Workers:     workers,
		Catalog:     store,
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create API server: %w", err)
	}

	rt := runtime.New(coord)
	rt.SetShutdownTimeout(cfg.ShutdownTimeout)
	rt.SetAPIServer(apiServer)
	if metricsResult.Server != nil {
		rt.SetMetricsServer(metricsResult.Server)
	}
	rt.AddCloser("catalog", store.Close)

	if bs, ok := store.(*catalogbadger.Store); ok {
		if bm := prometheus.NewBadgerMetrics(); bm != nil {
			rt.AddTask(runtime.Task{
				Name: "badger-metrics",
				Run: func(ctx context.Context) {
					bm.Run(ctx, bs.DB(), badgerMetricsInterval)
				},
			})
		}
	}

	if configPath != "" {
		watcher := runtime.NewSettingsWatcher(configPath, runtime.Settings{
			LogLevel: cfg.Logging.Level,
			Threads:  cfg.NFS.Threads,
		}, settingsLoader(configPath), workers)
		rt.AddTask(runtime.Task{
			Name: "settings-watcher",
			Run: func(ctx context.Context) {
				if err := watcher.Run(ctx); err != nil {
					logger.Warn("Configuration watcher stopped", logger.Err(err))
				}
			},
		})
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	logger.Info("Server is running. Press Ctrl+C to stop.", "api_port", cfg.API.Port)

	if err := rt.Serve(ctx); err != nil {
		logger.Error("Server error", logger.Err(err))
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// settingsLoader re-reads the reloadable settings from path.
func settingsLoader(path string) runtime.SettingsLoader {
	return func() (runtime.Settings, error) {
		cfg, err := config.Load(path)
		if err != nil {
			return runtime.Settings{}, err
		}
		return runtime.Settings{
			LogLevel: cfg.Logging.Level,
			Threads:  cfg.NFS.Threads,
		}, nil
	}
}

func configSource(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}

// newCoordinator builds the layout coordinator with its device registry and
// pending table. Their metrics are registered with reg when it is non-nil.
func newCoordinator(cfg *config.Config, reg promclient.Registerer, store catalog.Store, pm *poolmanager.Client) (*layout.Coordinator, error) {
	var (
		deviceMetrics  *device.Metrics
		pendingMetrics *pending.Metrics
		layoutMetrics  *layout.Metrics
	)
	if reg != nil {
		deviceMetrics = device.NewMetrics(reg)
		pendingMetrics = pending.NewMetrics(reg)
		layoutMetrics = layout.NewMetrics(reg)
	}

	return layout.New(layout.Config{
		WaitTimeout:  cfg.Layout.WaitTimeout,
		PendingGrace: cfg.Layout.PendingGrace,
		KillTimeout:  cfg.Layout.KillTimeout,
	}, layout.Deps{
		Devices:  device.NewRegistry(deviceMetrics),
		Pending:  layout.NewPendingTable(cfg.Layout.PendingGrace, pending.WithMetrics(pendingMetrics)),
		Selector: pm,
		Killer:   pm,
		Catalog:  store,
		Metrics:  layoutMetrics,
	})
}
