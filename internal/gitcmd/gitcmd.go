// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package gitcmd shells out to the git binary for the commit hash and remote
// URL of a source checkout. Lookups are best-effort: a missing binary, a
// broken repository, or a slow subprocess all report as absent values, never
// as errors. The server keeps serving either way.
package gitcmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single git invocation when the caller does not
// configure one.
const DefaultTimeout = 5 * time.Second

// Command describes one subprocess invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the inherited environment.
	Env []string
}

// Runner executes a Command and returns its stdout. Implementations must
// honor ctx cancellation.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands with os/exec, bounding each invocation with
// Timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// Run executes cmd and returns its stdout. The error carries trimmed stderr
// when the subprocess produced any.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	execCmd.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	log.Debugf("Executing: %s %v", cmd.Name, cmd.Args)

	if err := execCmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%s timed out after %v", cmd.Name, timeout)
		}
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", fmt.Errorf("%s failed: %s", cmd.Name, errMsg)
	}

	return stdout.String(), nil
}

// Client answers provenance queries against one repository's git directory.
type Client struct {
	gitDir string
	binary string
	runner Runner
}

// Option configures a Client.
type Option func(*Client)

// WithBinary overrides the git executable name or path.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// WithRunner substitutes the subprocess runner. Used by tests.
func WithRunner(r Runner) Option {
	return func(c *Client) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithTimeout bounds each git invocation. Only applies to the default
// ExecRunner; a runner installed via WithRunner keeps its own behavior.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if r, ok := c.runner.(*ExecRunner); ok && d > 0 {
			r.Timeout = d
		}
	}
}

// NewClient returns a Client reading from the git directory at gitDir
// (typically <checkout>/.git). The path is resolved to an absolute one at
// construction so queries cannot be redirected by a later working-directory
// change.
func NewClient(gitDir string, opts ...Option) *Client {
	if abs, err := filepath.Abs(gitDir); err == nil {
		gitDir = abs
	}
	c := &Client{
		gitDir: gitDir,
		binary: "git",
		runner: &ExecRunner{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Head returns the commit hash of the checked-out revision. ok is false when
// the hash could not be determined.
func (c *Client) Head(ctx context.Context) (string, bool) {
	out, err := c.runner.Run(ctx, c.command("rev-parse", "HEAD"))
	if err != nil {
		log.Debugf("gitcmd: rev-parse HEAD: %v", err)
		return "", false
	}
	hash := strings.TrimSpace(out)
	if hash == "" {
		return "", false
	}
	return hash, true
}

// OriginURL returns the fetch URL of the origin remote, read straight from
// the repository's own config file so the answer cannot come from ambient
// git configuration. ok is false when the remote is not configured or the
// lookup failed.
func (c *Client) OriginURL(ctx context.Context) (string, bool) {
	configFile := filepath.Join(c.gitDir, "config")
	out, err := c.runner.Run(ctx, c.command("config", "--file", configFile, "--get", "remote.origin.url"))
	if err != nil {
		log.Debugf("gitcmd: config remote.origin.url: %v", err)
		return "", false
	}
	url := strings.TrimSpace(out)
	if url == "" {
		return "", false
	}
	return url, true
}

// command assembles a git invocation pinned to the client's git directory:
// working directory and --git-dir both point there, and user/system git
// config are masked so local aliases or conditional includes cannot change
// the answers.
func (c *Client) command(args ...string) Command {
	full := append([]string{"--git-dir", c.gitDir}, args...)
	return Command{
		Name: c.binary,
		Args: full,
		Dir:  c.gitDir,
		Env: []string{
			"GIT_CONFIG_GLOBAL=" + os.DevNull,
			"GIT_CONFIG_SYSTEM=" + os.DevNull,
			"GIT_TERMINAL_PROMPT=0",
		},
	}
}
