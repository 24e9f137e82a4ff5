// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cmd provides the service startup path for the buildstamp server:
// resolver construction, HTTP server lifecycle, config watching and graceful
// shutdown.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/traylinx/buildstamp/internal/api"
	"github.com/traylinx/buildstamp/internal/config"
	"github.com/traylinx/buildstamp/internal/gitcmd"
	"github.com/traylinx/buildstamp/internal/logging"
	"github.com/traylinx/buildstamp/internal/provenance"
	"github.com/traylinx/buildstamp/internal/util"
	"github.com/traylinx/buildstamp/internal/watcher"
)

// StartService runs the buildstamp server until a shutdown signal arrives or
// the listener fails. A deployment without an application manifest is the one
// startup error treated as fatal.
//
// Parameters:
//   - cfg: The application configuration
//   - configPath: The path to the configuration file, watched for changes
func StartService(cfg *config.Config, configPath string) {
	ctxSignal, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	vcs := gitcmd.NewClient(
		filepath.Join(cfg.DeployRoot, ".git"),
		gitcmd.WithBinary(cfg.GitBinary),
		gitcmd.WithTimeout(cfg.VCSTimeout()),
	)

	resolver, err := provenance.NewResolver(cfg.DeployRoot, provenance.WithVCS(vcs))
	if err != nil {
		log.Fatalf("failed to initialize provenance resolver: %v", err)
	}

	// Resolve ahead of the first request so the provenance log lines appear
	// at startup and the first /version hit answers from memory.
	go func() {
		resolver.Record(ctxSignal)
	}()

	server := api.NewServer(cfg, resolver)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	time.Sleep(100 * time.Millisecond)
	fmt.Printf("API server started successfully on: %s:%d\n", cfg.Host, cfg.Port)

	// Config changes adjust logging only. The record is settled for the
	// lifetime of the process; anything else needs a restart.
	reload := func(newCfg *config.Config) {
		util.SetLogLevel(newCfg)
		if errOut := logging.ConfigureLogOutput(newCfg.LoggingToFile, newCfg.LogsDir, newCfg.LogsMaxTotalSizeMB); errOut != nil {
			log.Errorf("failed to reconfigure log output: %v", errOut)
		}
		if newCfg.DeployRoot != cfg.DeployRoot {
			log.Warnf("deploy-root changed to %s; provenance is resolved once per process, restart to apply", newCfg.DeployRoot)
		}
		if newCfg.Host != cfg.Host || newCfg.Port != cfg.Port {
			log.Warn("listen address changes require a restart")
		}
	}

	w, err := watcher.NewConfigWatcher(configPath, reload)
	if err != nil {
		log.Warnf("config watcher unavailable: %v", err)
	} else if err := w.Start(ctxSignal); err != nil {
		log.Warnf("failed to start config watcher: %v", err)
	} else {
		log.Info("file watcher started for config changes")
		defer func() {
			if errStop := w.Stop(); errStop != nil {
				log.Errorf("failed to stop file watcher: %v", errStop)
			}
		}()
	}

	select {
	case <-ctxSignal.Done():
		log.Debug("service context cancelled, shutting down...")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("API server exited with error: %v", err)
		}
		return
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Errorf("error stopping API server: %v", err)
	}
}
