// Package watch re-triggers work when an input document changes on disk.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/tgaquery/internal/checksum"
)

// ChangeFunc is called with the new checksum after the document changed.
type ChangeFunc func(ctx context.Context, sum string)

// Options tunes a watch.
type Options struct {
	// Debounce is how long the file must stay quiet before it is re-read.
	Debounce time.Duration
	// Initial is the checksum of the content already processed.
	Initial string
}

// File watches path until ctx is cancelled and calls fn once per distinct new
// content. The parent directory is watched so that editors replacing the file
// by rename are noticed.
func File(ctx context.Context, path string, opts Options, logger *slog.Logger, fn ChangeFunc) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("path", abs))

	last := opts.Initial
	var settle *time.Timer
	var settleCh <-chan time.Time

	schedule := func() {
		if settle == nil {
			settle = time.NewTimer(opts.Debounce)
			settleCh = settle.C
		} else {
			settle.Reset(opts.Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			sum, err := checksum.File(abs)
			if err != nil {
				logger.Warn("watcher: read failed", slog.String("path", abs), slog.String("error", err.Error()))
				continue
			}
			if sum == last {
				logger.Debug("watcher: content unchanged", slog.String("path", abs))
				continue
			}
			last = sum
			logger.Info("watcher: document changed", slog.String("path", abs), slog.String("checksum", sum))
			fn(ctx, sum)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
