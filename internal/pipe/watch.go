package pipe

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weedbox/rollingfile/internal/config"
)

// fileReloader loads path and overlays the environment
func fileReloader(path string) func() (config.Config, error) {
	return func() (config.Config, error) {
		cfg, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		config.FromEnv(&cfg)
		return cfg, nil
	}
}

// watchConfig calls reload whenever path is written or replaced and sends
// the new configuration. The directory is watched so editors that replace
// the file are seen too.
func watchConfig(ctx context.Context, path string, reload func() (config.Config, error), log logrus.FieldLogger) (<-chan config.Config, error) {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create config watcher")
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watch %s", filepath.Dir(path))
	}

	reloads := make(chan config.Config)
	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				cfg, err := reload()
				if err != nil {
					log.WithError(err).Warn("Failed to reload config")
					continue
				}

				select {
				case reloads <- cfg:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("Config watcher error")
			}
		}
	}()

	return reloads, nil
}
