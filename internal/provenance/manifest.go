// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provenance

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// readManifestVersion reads the application manifest and extracts its
// version field. Unlike every other read in this package, failure here is
// an error: the manifest is a build-time invariant and a deployment without
// one must not start.
func (r *Resolver) readManifestVersion() (string, error) {
	path := filepath.Join(r.root, manifestFile)
	data, err := r.readFile(path)
	if err != nil {
		return "", fmt.Errorf("provenance: read manifest %s: %w", path, err)
	}

	version := strings.TrimSpace(gjson.GetBytes(data, "version").String())
	if version == "" {
		return "", fmt.Errorf("provenance: manifest %s has no version field", path)
	}

	return version, nil
}
