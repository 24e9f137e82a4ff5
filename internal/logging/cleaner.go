// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// logCleanInterval is how often the background cleaner rescans the log
// directory while a size limit is in effect.
const logCleanInterval = 5 * time.Minute

var (
	cleanerStop chan struct{}
	cleanerDone chan struct{}
)

// configureLogDirCleanerLocked starts, restarts, or stops the background log
// directory cleaner. A non-positive limit disables cleaning. The caller must
// hold writerMu.
func configureLogDirCleanerLocked(logsDir string, maxTotalSizeMB int, protectedPath string) {
	stopLogDirCleanerLocked()
	if maxTotalSizeMB <= 0 {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	cleanerStop = stop
	cleanerDone = done
	go runLogDirCleaner(logsDir, int64(maxTotalSizeMB)*1024*1024, protectedPath, stop, done)
}

// stopLogDirCleanerLocked stops the cleaner goroutine and waits for it to
// exit. The caller must hold writerMu.
func stopLogDirCleanerLocked() {
	if cleanerStop == nil {
		return
	}
	close(cleanerStop)
	<-cleanerDone
	cleanerStop = nil
	cleanerDone = nil
}

func runLogDirCleaner(logsDir string, maxTotalBytes int64, protectedPath string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(logCleanInterval)
	defer ticker.Stop()

	pruneLogDir(logsDir, maxTotalBytes, protectedPath)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			pruneLogDir(logsDir, maxTotalBytes, protectedPath)
		}
	}
}

// pruneLogDir removes the oldest log files in logsDir until the total size of
// log files is within maxTotalBytes. The active log file (protectedPath) is
// never removed.
func pruneLogDir(logsDir string, maxTotalBytes int64, protectedPath string) {
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		return
	}

	type logFile struct {
		path    string
		size    int64
		modTime time.Time
	}

	var files []logFile
	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Lumberjack rotates main.log into timestamped main-*.log siblings.
		if !strings.Contains(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
		files = append(files, logFile{
			path:    filepath.Join(logsDir, entry.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}

	if total <= maxTotalBytes {
		return
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	for _, f := range files {
		if total <= maxTotalBytes {
			break
		}
		if f.path == protectedPath {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			log.Debugf("log cleaner: failed to remove %s: %v", f.path, err)
			continue
		}
		total -= f.size
	}
}
