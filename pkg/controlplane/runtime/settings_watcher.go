package runtime

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/dittomds/internal/logger"
)

// DefaultReloadDelay coalesces the burst of events editors produce when
// saving a file.
const DefaultReloadDelay = 250 * time.Millisecond

// Settings are the values that can change without a restart.
type Settings struct {
	LogLevel string
	Threads  int
}

// SettingsLoader reads the current settings from the configuration file.
type SettingsLoader func() (Settings, error)

// ThreadSetter is the pNFS worker pool.
type ThreadSetter interface {
	SetThreadCount(n int) error
	ThreadCount() int
}

// SettingsWatcher reloads settings when the configuration file changes
// and applies the ones that differ.
//
// The directory is watched rather than the file so that editors replacing
// the file by rename are seen.
type SettingsWatcher struct {
	path    string
	load    SettingsLoader
	workers ThreadSetter
	delay   time.Duration

	mu      sync.Mutex
	current Settings
}

// NewSettingsWatcher creates a watcher for the configuration file at path.
// initial is the configuration the server started with.
func NewSettingsWatcher(path string, initial Settings, load SettingsLoader, workers ThreadSetter) *SettingsWatcher {
	return &SettingsWatcher{
		path:    filepath.Clean(path),
		load:    load,
		workers: workers,
		delay:   DefaultReloadDelay,
		current: initial,
	}
}

// Current returns the last applied settings.
func (w *SettingsWatcher) Current() Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run watches until ctx is done.
func (w *SettingsWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("settings watcher: watch %s: %w", filepath.Dir(w.path), err)
	}
	logger.Info("Settings watcher started", "path", w.path)

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Settings watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			reload = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Settings watcher error", logger.Err(err))

		case <-reload:
			reload = nil
			w.Reload()
		}
	}
}

// Reload reads the configuration file and applies changed settings. A file
// that fails to load leaves the running settings untouched.
func (w *SettingsWatcher) Reload() {
	next, err := w.load()
	if err != nil {
		logger.Warn("Configuration reload failed, keeping current settings", "path", w.path, logger.Err(err))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if next.LogLevel != "" && next.LogLevel != w.current.LogLevel {
		logger.SetLevel(next.LogLevel)
		logger.Info("Log level reloaded", "from", w.current.LogLevel, "to", next.LogLevel)
		w.current.LogLevel = next.LogLevel
	}

	if next.Threads > 0 && next.Threads != w.current.Threads && w.workers != nil {
		if err := w.workers.SetThreadCount(next.Threads); err != nil {
			logger.Warn("Thread count reload rejected", "threads", next.Threads, logger.Err(err))
		} else {
			logger.Info("Thread count reloaded", "from", w.current.Threads, "to", next.Threads)
			w.current.Threads = next.Threads
		}
	}
}
