package baseline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps the manifest at a path current, reloading it when the file
// changes. A manifest that fails to load is logged and ignored; the last
// good one stays current.
//
// The parent directory is watched so that editors replacing the file by
// rename are noticed.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce *debouncer

	mu       sync.RWMutex
	current  *Manifest
	onReload func(*Manifest, error)
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher loads the manifest at path and starts watching it for changes.
// Events are delivered once Watch is running.
func NewWatcher(path string, interval time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	m, err := LoadManifest(abs)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		watcher:  fw,
		logger:   logger.With("component", "baseline.watcher"),
		debounce: newDebouncer(interval),
		current:  m,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Current returns the last successfully loaded manifest.
func (w *Watcher) Current() *Manifest {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnReload registers fn to be called after every reload attempt with the
// new manifest or the load error.
func (w *Watcher) OnReload(fn func(*Manifest, error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// Reload loads the manifest now. On failure the current manifest is kept.
func (w *Watcher) Reload() error {
	m, err := LoadManifest(w.path)

	w.mu.Lock()
	if err == nil {
		w.current = m
	}
	fn := w.onReload
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("manifest reload failed, keeping previous manifest", "path", w.path, "error", err)
	} else {
		w.logger.Info("manifest reloaded", "path", w.path, "policies", len(m.Policies))
	}
	if fn != nil {
		fn(m, err)
	}
	return err
}

// Watch processes file events until ctx is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	w.logger.Info("manifest watcher started", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-w.stopCh:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("manifest event", "op", event.Op.String())
			w.debounce.trigger(func() { _ = w.Reload() })

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("manifest watcher error", "error", err)
		}
	}
}

// Stop ends Watch, if running, and releases the file watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// debouncer coalesces bursts of events into one callback after interval.
type debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			callback()
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
