// Package runtime runs the dmds server components: the layout coordinator,
// the API and metrics servers and background tasks, and shuts them down
// together.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/dittomds/internal/logger"
)

// DefaultShutdownTimeout is the default budget for a graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// AuxiliaryServer is an HTTP server (API, metrics) run next to the
// coordinator.
type AuxiliaryServer interface {
	// Start serves until ctx is cancelled or the server fails.
	Start(ctx context.Context) error
	// Stop initiates graceful shutdown.
	Stop(ctx context.Context) error
	// Port returns the configured TCP port.
	Port() int
}

// Coordinator is the part of the layout coordinator the runtime drives.
type Coordinator interface {
	// Run evicts late readiness notifications until ctx is done.
	Run(ctx context.Context)
	// Close waits for in-flight kill instructions.
	Close() error
}

// Task is a background loop that runs until its context is done.
type Task struct {
	Name string
	Run  func(ctx context.Context)
}

// Runtime owns the server components for the lifetime of Serve.
type Runtime struct {
	coordinator Coordinator
	closers     []namedCloser

	apiServer     AuxiliaryServer
	metricsServer AuxiliaryServer
	tasks         []Task

	shutdownTimeout time.Duration

	serveOnce sync.Once
	served    bool
}

type namedCloser struct {
	name  string
	close func() error
}

// New creates a runtime around coordinator.
func New(coordinator Coordinator) *Runtime {
	return &Runtime{
		coordinator:     coordinator,
		shutdownTimeout: DefaultShutdownTimeout,
	}
}

// SetShutdownTimeout sets the graceful shutdown budget. Zero selects the
// default.
func (r *Runtime) SetShutdownTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultShutdownTimeout
	}
	r.shutdownTimeout = d
}

// SetAPIServer sets the notification and admin API server.
func (r *Runtime) SetAPIServer(server AuxiliaryServer) {
	r.mustNotBeServing()
	r.apiServer = server
	if server != nil {
		logger.Info("API server registered", "port", server.Port())
	}
}

// SetMetricsServer sets the Prometheus metrics server.
func (r *Runtime) SetMetricsServer(server AuxiliaryServer) {
	r.mustNotBeServing()
	r.metricsServer = server
	if server != nil {
		logger.Info("Metrics server registered", "port", server.Port())
	}
}

// AddTask registers a background loop started by Serve.
func (r *Runtime) AddTask(task Task) {
	r.mustNotBeServing()
	r.tasks = append(r.tasks, task)
}

// AddCloser registers a resource closed after everything else stopped.
// Closers run in reverse registration order.
func (r *Runtime) AddCloser(name string, close func() error) {
	r.mustNotBeServing()
	r.closers = append(r.closers, namedCloser{name: name, close: close})
}

func (r *Runtime) mustNotBeServing() {
	if r.served {
		panic("runtime: cannot change components after Serve() has been called")
	}
}

// Serve runs all components and blocks until ctx is cancelled or one of
// the servers fails. It may only be called once.
func (r *Runtime) Serve(ctx context.Context) error {
	err := errors.New("runtime: Serve called twice")
	r.serveOnce.Do(func() {
		r.served = true
		err = r.serve(ctx)
	})
	return err
}

func (r *Runtime) serve(ctx context.Context) error {
	logger.Info("Starting dmds runtime", "tasks", len(r.tasks))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.coordinator.Run(gctx)
		return nil
	})
	for _, task := range r.tasks {
		task := task
		g.Go(func() error {
			logger.Debug("Background task started", "task", task.Name)
			task.Run(gctx)
			logger.Debug("Background task stopped", "task", task.Name)
			return nil
		})
	}
	if r.apiServer != nil {
		g.Go(func() error {
			if err := r.apiServer.Start(gctx); err != nil {
				return fmt.Errorf("API server error: %w", err)
			}
			return nil
		})
	}
	if r.metricsServer != nil {
		g.Go(func() error {
			if err := r.metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	<-gctx.Done()
	if ctx.Err() != nil {
		logger.Info("Shutdown signal received", "reason", ctx.Err())
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var serveErr error
	select {
	case serveErr = <-done:
	case <-time.After(r.shutdownTimeout):
		serveErr = fmt.Errorf("shutdown timed out after %s", r.shutdownTimeout)
	}
	if serveErr != nil {
		logger.Error("Runtime stopped with error", logger.Err(serveErr))
	}

	r.shutdown()
	logger.Info("dmds runtime stopped")
	return serveErr
}

// shutdown releases what outlives the serving goroutines.
func (r *Runtime) shutdown() {
	if err := r.coordinator.Close(); err != nil {
		logger.Warn("Coordinator close error", logger.Err(err))
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		c := r.closers[i]
		logger.Debug("Closing", "component", c.name)
		if err := c.close(); err != nil {
			logger.Warn("Close error", "component", c.name, logger.Err(err))
		}
	}
}
