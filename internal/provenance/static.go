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

// readDescriptor loads the build-time descriptor and extracts the pinned
// commit hash and source URL from its version block. ok is false when the
// descriptor is missing, unparsable, or lacks either field. Packaging only
// writes the descriptor into released artifacts, so absence is the normal
// developer-checkout condition, not an error.
func (r *Resolver) readDescriptor() (commit, source string, ok bool) {
	path := filepath.Join(r.root, descriptorFile)
	data, err := r.readFile(path)
	if err != nil {
		log.Debugf("provenance: no build descriptor: %v", err)
		return "", "", false
	}

	commit = strings.TrimSpace(gjson.GetBytes(data, "version.hash").String())
	source = strings.TrimSpace(gjson.GetBytes(data, "version.source").String())
	if commit == "" || source == "" {
		log.Debugf("provenance: build descriptor %s lacks version.hash or version.source", path)
		return "", "", false
	}

	return commit, source, true
}
