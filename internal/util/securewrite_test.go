// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestSecureWrite(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("successful write", func(t *testing.T) {
		path := filepath.Join(tempDir, "test.txt")
		data := []byte("hello world")

		if err := SecureWrite(path, data, nil); err != nil {
			t.Fatalf("SecureWrite failed: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read written file: %v", err)
		}
		if string(got) != string(data) {
			t.Errorf("content mismatch: got %q, want %q", got, data)
		}
	})

	t.Run("overwrite existing file", func(t *testing.T) {
		path := filepath.Join(tempDir, "overwrite.txt")

		if err := SecureWrite(path, []byte("first"), nil); err != nil {
			t.Fatalf("first write failed: %v", err)
		}
		if err := SecureWrite(path, []byte("second"), nil); err != nil {
			t.Fatalf("second write failed: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(got) != "second" {
			t.Errorf("content mismatch: got %q, want %q", got, "second")
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(tempDir, "nested", "deep", "file.txt")

		if err := SecureWrite(path, []byte("nested"), nil); err != nil {
			t.Fatalf("SecureWrite failed: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file not created: %v", err)
		}
	})

	t.Run("backup creation", func(t *testing.T) {
		path := filepath.Join(tempDir, "backup.txt")

		if err := SecureWrite(path, []byte("original"), nil); err != nil {
			t.Fatalf("initial write failed: %v", err)
		}

		opts := &SecureWriteOptions{CreateBackup: true}
		if err := SecureWrite(path, []byte("updated"), opts); err != nil {
			t.Fatalf("write with backup failed: %v", err)
		}

		backup, err := os.ReadFile(path + ".bak")
		if err != nil {
			t.Fatalf("backup not created: %v", err)
		}
		if string(backup) != "original" {
			t.Errorf("backup content mismatch: got %q, want %q", backup, "original")
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(got) != "updated" {
			t.Errorf("content mismatch: got %q, want %q", got, "updated")
		}
	})

	t.Run("no backup for new file", func(t *testing.T) {
		path := filepath.Join(tempDir, "newfile.txt")

		opts := &SecureWriteOptions{CreateBackup: true}
		if err := SecureWrite(path, []byte("content"), opts); err != nil {
			t.Fatalf("SecureWrite failed: %v", err)
		}
		if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
			t.Errorf("backup should not exist for a new file")
		}
	})

	t.Run("custom permissions", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("file permissions not enforced on Windows")
		}

		path := filepath.Join(tempDir, "perms.txt")
		opts := &SecureWriteOptions{Permissions: 0600}

		if err := SecureWrite(path, []byte("secret"), opts); err != nil {
			t.Fatalf("SecureWrite failed: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("permissions mismatch: got %o, want %o", perm, 0600)
		}
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		dir := filepath.Join(tempDir, "clean")
		path := filepath.Join(dir, "file.txt")

		if err := SecureWrite(path, []byte("data"), nil); err != nil {
			t.Fatalf("SecureWrite failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		for _, e := range entries {
			if strings.Contains(e.Name(), ".tmp.") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})
}

func TestSecureWriteJSON(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("writes indented JSON with trailing newline", func(t *testing.T) {
		path := filepath.Join(tempDir, "data.json")
		payload := map[string]string{"key": "value"}

		if err := SecureWriteJSON(path, payload, nil); err != nil {
			t.Fatalf("SecureWriteJSON failed: %v", err)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.HasSuffix(string(raw), "\n") {
			t.Error("JSON output should end with a newline")
		}
		if !strings.Contains(string(raw), "  \"key\": \"value\"") {
			t.Errorf("output not indented as expected: %q", raw)
		}

		var decoded map[string]string
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["key"] != "value" {
			t.Errorf("decoded content mismatch: got %q", decoded["key"])
		}
	})

	t.Run("unmarshalable value", func(t *testing.T) {
		path := filepath.Join(tempDir, "bad.json")

		if err := SecureWriteJSON(path, func() {}, nil); err == nil {
			t.Error("expected error for unmarshalable value")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("file should not be created on marshal failure")
		}
	})
}
