// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for the buildstamp server.
// It handles loading and parsing YAML configuration files, and provides
// structured access to application settings including the listen address,
// the deployment root that provenance is resolved against, logging behavior,
// and VCS lookup limits.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the port the API server listens on when the config
	// file does not specify one.
	DefaultPort = 8617

	// DefaultLogsDir is where rotating log files are written when
	// logging-to-file is enabled.
	DefaultLogsDir = "logs"

	// DefaultGitBinary is the executable used for VCS metadata lookups.
	DefaultGitBinary = "git"

	// DefaultVCSTimeoutSeconds bounds each git subprocess invocation.
	DefaultVCSTimeoutSeconds = 5
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Host is the network host/interface on which the API server will bind.
	// Default is empty ("") to bind all interfaces (IPv4 + IPv6). Use
	// "127.0.0.1" or "localhost" for local-only access.
	Host string `yaml:"host" json:"-"`

	// Port is the network port on which the API server will listen.
	Port int `yaml:"port" json:"-"`

	// Debug enables or disables debug-level logging and other debug features.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile controls whether application logs are written to rotating
	// files or stdout.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogsDir is the directory rotating log files are written to when
	// LoggingToFile is enabled. Relative paths are resolved against the
	// working directory.
	LogsDir string `yaml:"logs-dir" json:"logs-dir"`

	// LogsMaxTotalSizeMB limits the total size (in MB) of log files under the
	// logs directory. When exceeded, the oldest log files are deleted until
	// within the limit. Set to 0 to disable.
	LogsMaxTotalSizeMB int `yaml:"logs-max-total-size-mb" json:"logs-max-total-size-mb"`

	// DeployRoot is the installation directory holding the deployed
	// application tree: the build descriptor (build.json), the application
	// manifest (package.json), vendored third_party content and, for source
	// checkouts, the .git directory.
	DeployRoot string `yaml:"deploy-root" json:"deploy-root"`

	// GitBinary is the name or path of the git executable used for VCS
	// metadata lookups when no build descriptor is present. Resolved via
	// PATH when not absolute.
	GitBinary string `yaml:"git-binary" json:"git-binary"`

	// VCSTimeoutSeconds bounds each git subprocess invocation. Lookups that
	// exceed it are treated as absent metadata, never as a fatal error.
	VCSTimeoutSeconds int `yaml:"vcs-timeout-seconds" json:"vcs-timeout-seconds"`
}

// Default returns a Config populated with the documented defaults.
func Default() *Config {
	return &Config{
		Host:               "", // Default empty: binds to all interfaces (IPv4 + IPv6)
		Port:               DefaultPort,
		Debug:              false,
		LoggingToFile:      false,
		LogsDir:            DefaultLogsDir,
		LogsMaxTotalSizeMB: 0,
		DeployRoot:         ".",
		GitBinary:          DefaultGitBinary,
		VCSTimeoutSeconds:  DefaultVCSTimeoutSeconds,
	}
}

// VCSTimeout returns the per-invocation budget for git subprocess calls.
func (cfg *Config) VCSTimeout() time.Duration {
	seconds := cfg.VCSTimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultVCSTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// LoadConfig reads a YAML configuration file from the given path,
// unmarshals it into a Config struct, and returns it.
//
// Parameters:
//   - configFile: The path to the YAML configuration file
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if the configuration could not be loaded
func LoadConfig(configFile string) (*Config, error) {
	return LoadConfigOptional(configFile, false)
}

// LoadConfigOptional reads YAML from configFile.
// If optional is true and the file is missing, it returns the default
// configuration so the server can run without a config file at all.
func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	// Read the entire configuration file into memory.
	data, err := os.ReadFile(configFile)
	if err != nil {
		if optional {
			if os.IsNotExist(err) || errors.Is(err, syscall.EISDIR) {
				// Missing and optional: run with defaults.
				return Default(), nil
			}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal the YAML data into the Config struct.
	// Defaults are set before unmarshal so that absent keys keep defaults.
	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.sanitize()

	// Return the populated configuration struct.
	return cfg, nil
}

// sanitize normalizes loaded values and restores defaults for fields that
// were set to unusable values (blank paths, out-of-range numbers).
func (cfg *Config) sanitize() {
	cfg.Host = strings.TrimSpace(cfg.Host)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = DefaultPort
	}

	cfg.LogsDir = strings.TrimSpace(cfg.LogsDir)
	if cfg.LogsDir == "" {
		cfg.LogsDir = DefaultLogsDir
	}

	if cfg.LogsMaxTotalSizeMB < 0 {
		cfg.LogsMaxTotalSizeMB = 0
	}

	cfg.DeployRoot = strings.TrimSpace(cfg.DeployRoot)
	if cfg.DeployRoot == "" {
		cfg.DeployRoot = "."
	}

	cfg.GitBinary = strings.TrimSpace(cfg.GitBinary)
	if cfg.GitBinary == "" {
		cfg.GitBinary = DefaultGitBinary
	}

	if cfg.VCSTimeoutSeconds <= 0 {
		cfg.VCSTimeoutSeconds = DefaultVCSTimeoutSeconds
	}
}
