// Package watch re-runs a build whenever watched directories change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Run is given a non-positive debounce.
const DefaultDebounce = 200 * time.Millisecond

// BuildFunc performs one full build.
type BuildFunc func(ctx context.Context) error

// Run watches dirs (non-recursively) and calls fn once per burst of changes,
// after debounce has elapsed without further events. Build errors are logged
// and the watch continues. Run blocks until ctx is cancelled.
func Run(ctx context.Context, dirs []string, debounce time.Duration, logger *slog.Logger, fn BuildFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	seen := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return fmt.Errorf("watch: resolve %s: %w", d, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		if err := w.Add(abs); err != nil {
			return fmt.Errorf("watch: add %s: %w", abs, err)
		}
		logger.Info("watch: started", slog.String("dir", abs))
	}

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watch: stopped")
			return nil

		case <-fire:
			if err := fn(ctx); err != nil {
				logger.Error("watch: build failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ev) {
				continue
			}
			logger.Debug("watch: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch: error", slog.String("error", watchErr.Error()))
		}
	}
}

// ignored filters editor swap files, temp files from atomic writes and
// attribute-only changes.
func ignored(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	base := filepath.Base(ev.Name)
	switch {
	case strings.HasPrefix(base, ".quire-tmp-"),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasPrefix(base, ".#"):
		return true
	}
	return false
}
