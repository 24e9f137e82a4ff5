// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides stampgen, the build-pipeline tool that records a
// checkout's commit and origin into the build descriptor consumed by the
// buildstamp server. It reads the repository directly, so build containers
// need no git binary.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v6"
	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"

	"github.com/traylinx/buildstamp/internal/logging"
	"github.com/traylinx/buildstamp/internal/util"
)

func init() {
	logging.SetupBaseLogger()
}

func main() {
	var root string
	var out string
	var printOnly bool

	flag.StringVar(&root, "root", ".", "Repository root to stamp")
	flag.StringVar(&out, "out", "", "Descriptor path (default <root>/build.json)")
	flag.BoolVar(&printOnly, "print", false, "Print the descriptor to stdout instead of writing it")
	flag.Parse()

	if out == "" {
		out = filepath.Join(root, "build.json")
	}

	descriptor, err := generateDescriptor(root, out)
	if err != nil {
		log.Fatalf("failed to generate descriptor: %v", err)
	}

	if printOnly {
		fmt.Print(string(descriptor))
		return
	}

	if err := util.SecureWrite(out, descriptor, nil); err != nil {
		log.Fatalf("failed to write descriptor: %v", err)
	}
	log.Infof("wrote %s", out)
}

// generateDescriptor merges the checkout's commit and origin into the
// descriptor at out, keeping any fields other tooling put there.
func generateDescriptor(root, out string) ([]byte, error) {
	commit, source, err := readRepository(root)
	if err != nil {
		return nil, err
	}

	existing, err := os.ReadFile(out)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read existing descriptor: %w", err)
		}
		existing = []byte("{}")
	}

	merged, err := sjson.SetBytes(existing, "version.hash", commit)
	if err != nil {
		return nil, fmt.Errorf("failed to set version.hash: %w", err)
	}
	merged, err = sjson.SetBytes(merged, "version.source", source)
	if err != nil {
		return nil, fmt.Errorf("failed to set version.source: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, merged, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format descriptor: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// readRepository reads HEAD and the origin URL from the repository at root.
// Both are required: a descriptor missing either field would be ignored by
// the server, so refusing here keeps the failure in the build where it is
// visible.
func readRepository(root string) (commit, source string, err error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return "", "", fmt.Errorf("failed to open repository at %s: %w", root, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	commit = head.Hash().String()

	cfg, err := repo.Config()
	if err != nil {
		return "", "", fmt.Errorf("failed to read repository config: %w", err)
	}
	if remote, ok := cfg.Remotes["origin"]; ok && len(remote.URLs) > 0 {
		source = remote.URLs[0]
	}
	if source == "" {
		return "", "", fmt.Errorf("repository at %s has no origin remote", root)
	}

	return commit, source, nil
}
