// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provenance

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/traylinx/buildstamp/internal/gitcmd"
)

// Fixed locations under the deployment root. Packaging lays these out; the
// resolver only ever reads them.
const (
	descriptorFile      = "build.json"
	manifestFile        = "package.json"
	l10nRevisionFile    = "third_party/l10n/REVISION"
	legalDescriptorFile = "third_party/legal/package.json"
	gitDirName          = ".git"
)

// VCS answers commit and origin queries for a source checkout. Both lookups
// report ok=false instead of an error; provenance degrades, it never fails.
type VCS interface {
	Head(ctx context.Context) (string, bool)
	OriginURL(ctx context.Context) (string, bool)
}

// readFileFunc matches os.ReadFile. Tests substitute it to fake or count
// descriptor reads.
type readFileFunc func(name string) ([]byte, error)

// Resolver determines the provenance record for one deployment root.
// Resolution runs at most once per process; every caller of Record shares
// the outcome, pending or settled.
type Resolver struct {
	root     string
	version  string
	vcs      VCS
	readFile readFileFunc

	once   sync.Once
	record *Record
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithVCS substitutes the VCS client used for fallback queries.
func WithVCS(vcs VCS) Option {
	return func(r *Resolver) {
		if vcs != nil {
			r.vcs = vcs
		}
	}
}

func withReadFile(fn readFileFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.readFile = fn
		}
	}
}

// NewResolver builds a Resolver for the deployment rooted at root. The
// application manifest is read here, eagerly: it is written by packaging and
// its absence means the deployment is broken, so construction fails rather
// than serving a record without a version.
func NewResolver(root string, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		root:     root,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.vcs == nil {
		r.vcs = gitcmd.NewClient(filepath.Join(root, gitDirName))
	}

	version, err := r.readManifestVersion()
	if err != nil {
		return nil, err
	}
	r.version = version

	return r, nil
}

// Record returns the process-wide provenance record, resolving it on the
// first call. Concurrent first callers block on the same resolution; every
// later call returns the settled record unchanged.
func (r *Resolver) Record(ctx context.Context) *Record {
	r.once.Do(func() {
		// The record outlives any one caller. Detach from the first
		// caller's cancellation so an aborted request cannot poison the
		// process-wide result.
		r.record = r.resolve(context.WithoutCancel(ctx))
	})
	return r.record
}

// resolve fans out to the commit/source chain and the two vendored-content
// readers, then joins the results in declared field order. Sub-resolutions
// degrade in place; none of them can fail the join.
func (r *Resolver) resolve(ctx context.Context) *Record {
	rec := &Record{
		Source:  Unknown,
		Version: r.version,
		Commit:  Unknown,
	}

	var g errgroup.Group

	g.Go(func() error {
		if commit, source, ok := r.readDescriptor(); ok {
			rec.Commit = commit
			rec.Source = source
			return nil
		}
		// Developer checkout: ask the VCS. The two queries are isolated,
		// one failing never blanks the other.
		var queries errgroup.Group
		queries.Go(func() error {
			if hash, ok := r.vcs.Head(ctx); ok {
				rec.Commit = hash
			}
			return nil
		})
		queries.Go(func() error {
			if url, ok := r.vcs.OriginURL(ctx); ok {
				rec.Source = url
			}
			return nil
		})
		return queries.Wait()
	})

	g.Go(func() error {
		if rev, ok := r.readL10nRevision(); ok {
			rec.L10n = rev
		}
		return nil
	})

	g.Go(func() error {
		if tag, ok := r.readLegalReleaseTag(); ok {
			rec.TosPp = tag
		}
		return nil
	})

	_ = g.Wait()

	logRecord(rec)
	return rec
}

// logRecord emits one informational line per record field, in field order.
// This happens exactly once per process, at first resolution.
func logRecord(rec *Record) {
	log.Infof("source: %s", rec.Source)
	log.Infof("version: %s", rec.Version)
	log.Infof("commit: %s", rec.Commit)
	if rec.L10n != "" {
		log.Infof("l10n: %s", rec.L10n)
	} else {
		log.Info("l10n: not installed")
	}
	if rec.TosPp != "" {
		log.Infof("tosPp: %s", rec.TosPp)
	} else {
		log.Info("tosPp: not installed")
	}
}
