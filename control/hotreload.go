// control/hotreload.go
// Reloads the configuration file into a ConfigStore when it changes on disk.

package control

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// WatchConfig reloads path into store whenever the file is written or
// replaced, until ctx is done. A file that fails to parse or validate is
// logged and the previous snapshot stays active.
func WatchConfig(ctx context.Context, path string, store *ConfigStore, log logrus.FieldLogger) error {
	if path == "" {
		return ErrNoConfigPath
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	// watch the directory: editors often replace the file by rename
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return fmt.Errorf("config watch %s: %w", filepath.Dir(target), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				reloadConfig(target, store, log)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("config watcher error")
			}
		}
	}()
	return nil
}

func reloadConfig(path string, store *ConfigStore, log logrus.FieldLogger) {
	cfg, err := LoadConfig(path)
	if err == nil {
		err = store.SetConfig(cfg)
	}
	if err != nil {
		log.WithError(err).WithField("config", path).Warn("config reload rejected")
		return
	}
	log.WithField("config", path).Info("configuration reloaded")
}
