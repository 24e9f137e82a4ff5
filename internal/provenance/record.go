// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package provenance resolves what is actually running: the deployed
// version, the commit it was built from, the repository it came from, and
// the revisions of vendored localization and legal-document bundles. The
// answers are gathered once per process and never change afterwards.
package provenance

import (
	"github.com/goccy/go-json"
)

// Unknown is the sentinel reported for commit and source when neither the
// build descriptor nor the VCS fallback produced a value.
const Unknown = "unknown"

// Record is the provenance document served at /version. Declaration order
// is wire order: the JSON encoder emits fields as declared, so the body
// always reads source, version, commit, l10n, tosPp.
type Record struct {
	// Source is the URL of the repository the deployment was built from,
	// or Unknown.
	Source string `json:"source"`

	// Version is the semantic version from the application manifest. Always
	// present; a deployment without a manifest refuses to start.
	Version string `json:"version"`

	// Commit is the VCS commit hash of the built tree, or Unknown.
	Commit string `json:"commit"`

	// L10n is the vendored localization bundle revision. Omitted when the
	// bundle is not installed.
	L10n string `json:"l10n,omitempty"`

	// TosPp is the vendored legal-document bundle release tag. Omitted when
	// the bundle is not installed.
	TosPp string `json:"tosPp,omitempty"`
}

// PrettyJSON renders the record as indented JSON with a trailing newline,
// byte-for-byte what the version endpoint serves.
func (rec *Record) PrettyJSON() ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
