// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gitcmd_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v6"
	gitconfig "github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/traylinx/buildstamp/internal/gitcmd"
)

const fixtureRemoteURL = "https://example.com/fixture.git"

// initFixtureRepo builds a throwaway repository with one commit and an
// origin remote, without requiring the git binary.
func initFixtureRepo(t *testing.T) (dir, head string) {
	t.Helper()

	dir = t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("fixture\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture file: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree failed: %v", err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	hash, err := wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "fixture",
			Email: "fixture@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{fixtureRemoteURL},
	}); err != nil {
		t.Fatalf("CreateRemote failed: %v", err)
	}

	return dir, hash.String()
}

func TestClientAgainstRealRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir, want := initFixtureRepo(t)
	client := gitcmd.NewClient(filepath.Join(dir, ".git"))

	ctx := context.Background()

	hash, ok := client.Head(ctx)
	if !ok {
		t.Fatal("Head should resolve against a real repository")
	}
	if hash != want {
		t.Errorf("Head mismatch: got %s, want %s", hash, want)
	}

	url, ok := client.OriginURL(ctx)
	if !ok {
		t.Fatal("OriginURL should resolve against a real repository")
	}
	if url != fixtureRemoteURL {
		t.Errorf("OriginURL mismatch: got %s, want %s", url, fixtureRemoteURL)
	}
}

func TestClientAgainstMissingRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	client := gitcmd.NewClient(filepath.Join(t.TempDir(), ".git"))
	ctx := context.Background()

	if _, ok := client.Head(ctx); ok {
		t.Error("Head should report absent for a missing git directory")
	}
	if _, ok := client.OriginURL(ctx); ok {
		t.Error("OriginURL should report absent for a missing git directory")
	}
}

func TestClientAgainstRepositoryWithoutRemote(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write fixture file: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree failed: %v", err)
	}
	if _, err := wt.Add("f.txt"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := wt.Commit("c", &git.CommitOptions{
		Author: &object.Signature{Name: "fixture", Email: "fixture@example.com", When: time.Now()},
	}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	client := gitcmd.NewClient(filepath.Join(dir, ".git"))
	ctx := context.Background()

	if _, ok := client.Head(ctx); !ok {
		t.Error("Head should resolve even without a remote")
	}
	if _, ok := client.OriginURL(ctx); ok {
		t.Error("OriginURL should report absent when origin is not configured")
	}
}
