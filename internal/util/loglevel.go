// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	log "github.com/sirupsen/logrus"

	"github.com/traylinx/buildstamp/internal/config"
)

// SetLogLevel applies the configured verbosity to the shared logrus instance.
func SetLogLevel(cfg *config.Config) {
	if cfg != nil && cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
