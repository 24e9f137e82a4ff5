// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provenance

import (
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// readL10nRevision reads the vendored localization bundle's plain-text
// revision marker. ok is false when the bundle is not installed; the record
// then omits the field entirely rather than carrying a placeholder.
func (r *Resolver) readL10nRevision() (string, bool) {
	path := filepath.Join(r.root, l10nRevisionFile)
	data, err := r.readFile(path)
	if err != nil {
		log.Debugf("provenance: l10n revision: %v", err)
		return "", false
	}

	rev := strings.TrimSpace(string(data))
	if rev == "" {
		return "", false
	}
	return rev, true
}

// readLegalReleaseTag extracts the release tag from the vendored
// legal-document bundle's descriptor. Same absence policy as the l10n
// reader.
func (r *Resolver) readLegalReleaseTag() (string, bool) {
	path := filepath.Join(r.root, legalDescriptorFile)
	data, err := r.readFile(path)
	if err != nil {
		log.Debugf("provenance: legal descriptor: %v", err)
		return "", false
	}

	tag := strings.TrimSpace(gjson.GetBytes(data, "releaseTag").String())
	if tag == "" {
		return "", false
	}
	return tag, true
}
