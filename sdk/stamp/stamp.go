// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stamp provides the public provenance API.
//
// It re-exports the resolver types and helpers so external projects can
// embed buildstamp's resolution pipeline, or query a running server over
// HTTP, without importing internal packages.
package stamp

import (
	internalprovenance "github.com/traylinx/buildstamp/internal/provenance"
)

// Record is the provenance document: source, version, commit, and the two
// vendored bundle revisions.
type Record = internalprovenance.Record

// Resolver resolves a Record for one deployment root, at most once per
// process.
type Resolver = internalprovenance.Resolver

// Option configures a Resolver.
type Option = internalprovenance.Option

// VCS answers commit and origin queries for a source checkout.
type VCS = internalprovenance.VCS

// Unknown is the sentinel carried by commit and source when resolution
// degraded.
const Unknown = internalprovenance.Unknown

// NewResolver builds a Resolver for the deployment rooted at root.
func NewResolver(root string, opts ...Option) (*Resolver, error) {
	return internalprovenance.NewResolver(root, opts...)
}

// WithVCS substitutes the VCS client used for fallback queries.
func WithVCS(vcs VCS) Option { return internalprovenance.WithVCS(vcs) }
