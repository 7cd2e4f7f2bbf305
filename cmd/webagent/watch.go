package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// watchConfig reports debounced changes to file on the returned channel
// until ctx is done. The parent directory is watched so editors that save
// by rename are still seen.
func watchConfig(ctx context.Context, logger *slog.Logger, file string) <-chan struct{} {
	reloads := make(chan struct{}, 1)

	path, err := filepath.Abs(file)
	if err != nil {
		logger.Warn("could not resolve config path", "file", file, "error", err)
		close(reloads)
		return reloads
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create config watcher", "error", err)
		close(reloads)
		return reloads
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("could not watch config", "file", path, "error", err)
		watcher.Close()
		close(reloads)
		return reloads
	}
	logger.Debug("watching config", "file", path)

	go func() {
		defer watcher.Close()
		defer close(reloads)

		timer := time.NewTimer(reloadDebounce)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
					timer.Reset(reloadDebounce)
				}
			case <-timer.C:
				logger.Info("config change detected", "file", path)
				select {
				case reloads <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("config watcher error", "error", err)
			}
		}
	}()

	return reloads
}
