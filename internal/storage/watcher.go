package storage

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/bptracker/internal/checksum"
)

// settleDelay debounces bursts of events (editors often write, chmod and
// rename in quick succession).
const settleDelay = 200 * time.Millisecond

// ChangeCallback is called after the watched file's content changed.
type ChangeCallback func()

// WatchFile watches the data file at path until ctx is cancelled and calls cb
// whenever its content checksum changes. The parent directory is watched so
// that atomic replace-by-rename is observed.
func WatchFile(ctx context.Context, path string, logger *slog.Logger, cb ChangeCallback) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	last := fileChecksum(abs)
	logger.Info("watcher: started", slog.String("path", abs))

	var settle *time.Timer
	var settleCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			settleCh = nil
			cs := fileChecksum(abs)
			if cs == last {
				continue
			}
			last = cs
			logger.Debug("watcher: data file changed", slog.String("path", abs))
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(settleDelay)
			} else {
				settle.Reset(settleDelay)
			}
			settleCh = settle.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// fileChecksum returns the checksum of the file, or "" if it does not exist.
func fileChecksum(path string) string {
	cs, err := checksum.File(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ""
		}
		return "unreadable"
	}
	return cs
}
