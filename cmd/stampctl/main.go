// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides stampctl, a small CLI for querying the provenance
// record of a running buildstamp server.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	yaml "github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"

	"github.com/traylinx/buildstamp/internal/logging"
	"github.com/traylinx/buildstamp/sdk/stamp"
)

func init() {
	logging.SetupBaseLogger()
}

func main() {
	var addr string
	var output string
	var timeout time.Duration

	flag.StringVar(&addr, "addr", "http://127.0.0.1:8617", "Base URL of the buildstamp server")
	flag.StringVar(&output, "o", "text", "Output format: text, json or yaml")
	flag.DurationVar(&timeout, "timeout", stamp.DefaultRequestTimeout, "Request timeout")
	flag.Parse()

	client := stamp.NewClient(addr, stamp.WithRequestTimeout(timeout))

	rec, raw, err := client.Version(context.Background())
	if err != nil {
		log.Fatalf("failed to query %s: %v", addr, err)
	}

	rendered, err := render(output, rec, raw)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Print(rendered)
}

// render produces the requested representation of the record. The json form
// is the server body verbatim; text and yaml are derived from it.
func render(format string, rec *stamp.Record, raw []byte) (string, error) {
	switch format {
	case "json":
		return string(raw), nil
	case "yaml":
		out, err := yaml.JSONToYAML(raw)
		if err != nil {
			return "", fmt.Errorf("failed to render yaml: %w", err)
		}
		return string(out), nil
	case "text":
		return renderText(rec), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// renderText lays the record out one field per line, mirroring the server's
// startup log lines, absent vendored content included.
func renderText(rec *stamp.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "source:  %s\n", rec.Source)
	fmt.Fprintf(&b, "version: %s\n", rec.Version)
	fmt.Fprintf(&b, "commit:  %s\n", rec.Commit)
	if rec.L10n != "" {
		fmt.Fprintf(&b, "l10n:    %s\n", rec.L10n)
	} else {
		b.WriteString("l10n:    not installed\n")
	}
	if rec.TosPp != "" {
		fmt.Fprintf(&b, "tosPp:   %s\n", rec.TosPp)
	} else {
		b.WriteString("tosPp:   not installed\n")
	}
	return b.String()
}
