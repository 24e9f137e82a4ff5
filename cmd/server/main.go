// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for the buildstamp server.
// The server reports the provenance of one deployed application tree: its
// manifest version, the commit and repository it was built from, and the
// revisions of vendored localization and legal content.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/traylinx/buildstamp/internal/buildinfo"
	"github.com/traylinx/buildstamp/internal/cmd"
	"github.com/traylinx/buildstamp/internal/config"
	"github.com/traylinx/buildstamp/internal/logging"
	"github.com/traylinx/buildstamp/internal/util"
)

var (
	Version           = "dev"
	Commit            = "none"
	BuildDate         = "unknown"
	DefaultConfigPath = ""
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

// main is the entry point of the application.
// It parses command-line flags, loads configuration, and starts the server.
func main() {
	fmt.Printf("buildstamp Version: %s, Commit: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	var configPath string
	var printConfig bool

	flag.StringVar(&configPath, "config", DefaultConfigPath, "Configure File Path")
	flag.BoolVar(&printConfig, "print-config", false, "Print the effective configuration and exit")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Errorf("failed to get working directory: %v", err)
		return
	}

	// Load environment variables from .env if present.
	if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
		if !errors.Is(errLoad, os.ErrNotExist) {
			log.WithError(errLoad).Warn("failed to load .env file")
		}
	}

	var configFilePath string
	if configPath != "" {
		configFilePath = configPath
	} else {
		configFilePath = filepath.Join(wd, "config.yaml")
	}

	// The config file is optional: the defaults describe a working server
	// rooted at the working directory.
	cfg, err := config.LoadConfigOptional(configFilePath, true)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return
	}

	lookupEnv := func(keys ...string) (string, bool) {
		for _, key := range keys {
			if value, ok := os.LookupEnv(key); ok {
				if trimmed := strings.TrimSpace(value); trimmed != "" {
					return trimmed, true
				}
			}
		}
		return "", false
	}
	if value, ok := lookupEnv("BUILDSTAMP_PORT", "buildstamp_port"); ok {
		if port, errConv := strconv.Atoi(value); errConv == nil && port > 0 && port <= 65535 {
			cfg.Port = port
		} else {
			log.Warnf("ignoring invalid BUILDSTAMP_PORT value %q", value)
		}
	}
	if value, ok := lookupEnv("BUILDSTAMP_DEPLOY_ROOT", "buildstamp_deploy_root"); ok {
		cfg.DeployRoot = value
	}

	if err = logging.ConfigureLogOutput(cfg.LoggingToFile, cfg.LogsDir, cfg.LogsMaxTotalSizeMB); err != nil {
		log.Errorf("failed to configure log output: %v", err)
		return
	}

	log.Infof("buildstamp Version: %s, Commit: %s, BuiltAt: %s", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	// Set the log level based on the configuration.
	util.SetLogLevel(cfg)

	if printConfig {
		printEffectiveConfig(cfg, configFilePath)
		return
	}

	cmd.StartService(cfg, configFilePath)
}

// printEffectiveConfig writes the fully resolved configuration to stdout,
// defaults and environment overrides included.
func printEffectiveConfig(cfg *config.Config, configFilePath string) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		log.Errorf("failed to render config: %v", err)
		return
	}
	fmt.Printf("# effective configuration (%s)\n", configFilePath)
	fmt.Print(string(data))
}
