package tables

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch reloads the tables file into store whenever it changes, until ctx is
// done. An invalid file is logged and the previous tables stay in effect.
// The parent directory is watched so that editors which replace the file by
// rename are picked up.
func Watch(ctx context.Context, path string, store *Store, logger *logrus.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				reload(path, store, logger)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithError(err).Warn("Tables.Watch.watcher error")
			}
		}
	}()

	return nil
}

func reload(path string, store *Store, logger *logrus.Logger) {
	next, err := LoadFile(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Error("Tables.Watch.reload rejected")
		return
	}
	if _, err := store.Swap(next); err != nil {
		logger.WithError(err).WithField("path", path).Error("Tables.Watch.swap rejected")
		return
	}
	logger.WithField("path", path).Info("Tables.Watch.reloaded")
}
