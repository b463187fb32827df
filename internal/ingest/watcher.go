package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher triggers a callback when capture files are created or written in
// the logs directory. Bursts of events are collapsed by a debounce window and
// the callback never runs concurrently with itself.
type Watcher struct {
	discoverer *DirDiscoverer
	debounce   time.Duration
	logger     *zap.Logger
}

// NewWatcher creates a watcher over the discoverer's directory.
func NewWatcher(d *DirDiscoverer, debounce time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{discoverer: d, debounce: debounce, logger: logger}
}

// Run blocks until ctx is done, calling trigger after each settled burst of
// relevant events.
func (w *Watcher) Run(ctx context.Context, trigger func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.discoverer.Dir); err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrConfiguration, w.discoverer.Dir, err)
	}
	w.logger.Info("watching logs directory",
		zap.String("dir", w.discoverer.Dir),
		zap.Duration("debounce", w.debounce))

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	var pendingSince time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				w.logger.Debug("capture file event",
					zap.String("file", event.Name),
					zap.String("op", event.Op.String()))
				pendingSince = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-ticker.C:
			if !pendingSince.IsZero() && time.Since(pendingSince) >= w.debounce {
				pendingSince = time.Time{}
				trigger()
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if filepath.Dir(event.Name) != filepath.Clean(w.discoverer.Dir) {
		return false
	}
	name := filepath.Base(event.Name)
	if !w.discoverer.Matches(name) {
		return false
	}
	if abs, err := filepath.Abs(event.Name); err == nil && w.discoverer.exclude[abs] {
		return false
	}
	return true
}
