// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package watcher reloads the configuration file while the server runs.
// Only logging behavior is adjustable at runtime; the provenance record is
// resolved once per process and never revisited.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/traylinx/buildstamp/internal/config"
)

// ConfigWatcher observes one configuration file and invokes a callback with
// the freshly parsed config whenever the file changes on disk.
type ConfigWatcher struct {
	configPath string
	reload     func(*config.Config)

	watcher     *fsnotify.Watcher
	stopWatcher chan struct{}
}

// NewConfigWatcher creates a watcher for configPath. The reload callback
// receives every successfully parsed config; it decides what to apply.
func NewConfigWatcher(configPath string, reload func(*config.Config)) (*ConfigWatcher, error) {
	if configPath == "" {
		return nil, fmt.Errorf("watcher: config path is empty")
	}
	return &ConfigWatcher{
		configPath:  configPath,
		reload:      reload,
		stopWatcher: make(chan struct{}),
	}, nil
}

// Start begins watching in the background. The parent directory is watched
// rather than the file itself so that editors and deploy tooling replacing
// the file do not silently detach the watch.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(filepath.Dir(w.configPath)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.configPath) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					log.Infof("config file changed (%s), reloading...", event.Name)
					// Let the writer finish; saves often arrive as several events.
					time.Sleep(100 * time.Millisecond)
					w.applyReload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("config watcher error: %v", err)
			case <-ctx.Done():
				return
			case <-w.stopWatcher:
				return
			}
		}
	}()

	return nil
}

// applyReload parses the config file and hands it to the callback. Parse
// failures keep the previous settings in force.
func (w *ConfigWatcher) applyReload() {
	cfg, err := config.LoadConfigOptional(w.configPath, true)
	if err != nil {
		log.Errorf("failed to reload config: %v", err)
		return
	}
	if w.reload != nil {
		w.reload(cfg)
	}
}

// Stop terminates the watcher. It is safe to call more than once.
func (w *ConfigWatcher) Stop() error {
	if w.watcher != nil {
		select {
		case <-w.stopWatcher:
			// Channel already closed
		default:
			close(w.stopWatcher)
		}
		err := w.watcher.Close()
		w.watcher = nil
		return err
	}
	return nil
}
