// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/traylinx/buildstamp/internal/config"
)

// TestConfigHotReload tests that config file changes trigger the reload callback.
func TestConfigHotReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	initialConfig := "port: 8080\ndebug: false\n"
	if err := os.WriteFile(configPath, []byte(initialConfig), 0o644); err != nil {
		t.Fatalf("failed to write initial config: %v", err)
	}

	// Track config reloads
	var reloads int32
	var lastConfig atomic.Value

	w, err := NewConfigWatcher(configPath, func(cfg *config.Config) {
		atomic.AddInt32(&reloads, 1)
		lastConfig.Store(cfg)
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer func() {
		if err := w.Stop(); err != nil {
			t.Logf("warning: failed to stop watcher: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}

	// Wait for watcher to be ready
	time.Sleep(200 * time.Millisecond)

	updatedConfig := "port: 8080\ndebug: true\n"
	if err := os.WriteFile(configPath, []byte(updatedConfig), 0o644); err != nil {
		t.Fatalf("failed to write updated config: %v", err)
	}

	// Wait for the change to be detected and processed
	time.Sleep(500 * time.Millisecond)

	if atomic.LoadInt32(&reloads) == 0 {
		t.Fatal("expected reload callback to be called")
	}

	newCfg := lastConfig.Load()
	if newCfg == nil {
		t.Fatal("expected config to be stored")
	}
	cfg, ok := newCfg.(*config.Config)
	if !ok {
		t.Fatal("expected config to be *config.Config")
	}
	if !cfg.Debug {
		t.Error("expected debug to be enabled after reload")
	}
}

// TestSiblingFileChangesIgnored tests that changes to other files in the
// config directory do not trigger reloads.
func TestSiblingFileChangesIgnored(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("port: 8080\n"), 0o644); err != nil {
		t.Fatalf("failed to write initial config: %v", err)
	}

	var reloads int32
	w, err := NewConfigWatcher(configPath, func(cfg *config.Config) {
		atomic.AddInt32(&reloads, 1)
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	siblingPath := filepath.Join(tmpDir, "notes.yaml")
	if err := os.WriteFile(siblingPath, []byte("unrelated: true\n"), 0o644); err != nil {
		t.Fatalf("failed to write sibling file: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if got := atomic.LoadInt32(&reloads); got != 0 {
		t.Errorf("expected no reloads for sibling file changes, got %d", got)
	}
}

// TestMalformedConfigKeepsWatcherAlive tests that a bad config write is
// skipped and a later valid write still reloads.
func TestMalformedConfigKeepsWatcherAlive(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("port: 8080\n"), 0o644); err != nil {
		t.Fatalf("failed to write initial config: %v", err)
	}

	var reloads int32
	w, err := NewConfigWatcher(configPath, func(cfg *config.Config) {
		atomic.AddInt32(&reloads, 1)
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(configPath, []byte("port: [not a port\n"), 0o644); err != nil {
		t.Fatalf("failed to write malformed config: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if got := atomic.LoadInt32(&reloads); got != 0 {
		t.Errorf("expected no reloads for malformed config, got %d", got)
	}

	if err := os.WriteFile(configPath, []byte("port: 9090\n"), 0o644); err != nil {
		t.Fatalf("failed to write valid config: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if atomic.LoadInt32(&reloads) == 0 {
		t.Error("expected reload after valid config followed malformed one")
	}
}

// TestStopPreventsFurtherReloads tests that no callbacks fire after Stop.
func TestStopPreventsFurtherReloads(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("port: 8080\n"), 0o644); err != nil {
		t.Fatalf("failed to write initial config: %v", err)
	}

	var reloads int32
	w, err := NewConfigWatcher(configPath, func(cfg *config.Config) {
		atomic.AddInt32(&reloads, 1)
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	if err := w.Stop(); err != nil {
		t.Fatalf("failed to stop watcher: %v", err)
	}
	// Stop twice must be safe.
	if err := w.Stop(); err != nil {
		t.Fatalf("second stop failed: %v", err)
	}

	if err := os.WriteFile(configPath, []byte("port: 9090\n"), 0o644); err != nil {
		t.Fatalf("failed to write updated config: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if got := atomic.LoadInt32(&reloads); got != 0 {
		t.Errorf("expected no reloads after stop, got %d", got)
	}
}

// TestNewConfigWatcherRejectsEmptyPath tests constructor validation.
func TestNewConfigWatcherRejectsEmptyPath(t *testing.T) {
	if _, err := NewConfigWatcher("", nil); err == nil {
		t.Error("expected error for empty config path")
	}
}
