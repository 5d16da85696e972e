// Package watch converts message files as they are dropped into a
// directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler is called once per settled file, never concurrently.
type Handler func(ctx context.Context, path string)

type Options struct {
	Dir      string
	Pattern  string // filepath.Match pattern on the base name.
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watch calls handle for every file in opts.Dir matching opts.Pattern that
// is created or written, once no further writes have been seen for
// opts.Debounce. It returns nil when ctx is cancelled.
func Watch(ctx context.Context, opts Options, handle Handler) error {
	if _, err := filepath.Match(opts.Pattern, ""); err != nil {
		return fmt.Errorf("watch pattern %q: %w", opts.Pattern, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", opts.Dir, err)
	}
	logger.Info("watcher: started", slog.String("dir", opts.Dir), slog.String("pattern", opts.Pattern))

	// pending maps a path to the time it is considered settled.
	pending := make(map[string]time.Time)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	flush := func(now time.Time) {
		var next time.Duration
		for path, at := range pending {
			if wait := at.Sub(now); wait > 0 {
				if next == 0 || wait < next {
					next = wait
				}
				continue
			}
			delete(pending, path)
			logger.Debug("watcher: converting", slog.String("path", path))
			handle(ctx, path)
		}
		if next > 0 {
			timer.Reset(next)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case now := <-timer.C:
			flush(now)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if ok, _ := filepath.Match(opts.Pattern, filepath.Base(ev.Name)); !ok {
				continue
			}
			if opts.Debounce <= 0 {
				handle(ctx, ev.Name)
				continue
			}
			pending[ev.Name] = time.Now().Add(opts.Debounce)
			timer.Reset(opts.Debounce)

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", werr.Error()))
		}
	}
}
