package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 500 * time.Millisecond

// Watcher reloads the YAML overlay when it changes and notifies listeners
// with the new reloadable settings. Only active in development.
type Watcher struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(Reloadable)
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewWatcher creates a watcher for initial.ConfigFile. When the file is unset
// or the environment is not development the watcher is inert.
func NewWatcher(initial *Config, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		config: initial,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	if initial.ConfigFile == "" || !initial.IsDevelopment() {
		logger.Debug("Configuration hot reloading disabled",
			zap.String("environment", initial.Environment),
		)
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(initial.ConfigFile); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", initial.ConfigFile, err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled",
		zap.String("file", initial.ConfigFile),
	)
	return w, nil
}

func (w *Watcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.Reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

// Reload rebuilds the configuration from defaults, the file and the
// environment, and adopts its reloadable settings. Invalid files are logged
// and ignored.
func (w *Watcher) Reload() {
	w.mu.RLock()
	current := *w.config
	w.mu.RUnlock()

	loaded, err := loadSources(current.ConfigFile)
	if err != nil {
		w.logger.Error("Failed to reload configuration", zap.Error(err))
		return
	}
	next := current
	next.LogLevel = loaded.LogLevel
	next.DefaultNodeLimit = loaded.DefaultNodeLimit
	next.DefaultEdgeLimit = loaded.DefaultEdgeLimit
	next.MaxListLimit = loaded.MaxListLimit
	if err := next.validateLimits(); err != nil {
		w.logger.Error("Invalid configuration after reload", zap.Error(err))
		return
	}

	if next.Reloadable() == current.Reloadable() {
		w.logger.Debug("Configuration unchanged after reload")
		return
	}

	w.mu.Lock()
	w.config = &next
	callbacks := make([]func(Reloadable), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("Configuration reloaded",
		zap.String("log_level", next.LogLevel),
		zap.Int("default_node_limit", next.DefaultNodeLimit),
		zap.Int("default_edge_limit", next.DefaultEdgeLimit),
		zap.Int("max_list_limit", next.MaxListLimit),
	)

	for _, cb := range callbacks {
		cb(next.Reloadable())
	}
}

// OnChange registers a callback invoked after each effective reload
func (w *Watcher) OnChange(callback func(Reloadable)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, callback)
	w.mu.Unlock()
}

// Config returns the current configuration
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop stops watching. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
}
