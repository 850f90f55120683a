package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupDisabled(t *testing.T) {
	logger, f, err := Setup(t.TempDir(), false)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if f != nil {
		t.Error("Expected nil file when debug=false")
		f.Close()
	}
	if log.Writer() != io.Discard {
		t.Errorf("Expected standard log discarded, got %v", log.Writer())
	}
	if logger.Enabled(t.Context(), 12) {
		t.Error("Expected discard logger")
	}
}

func TestSetupEnabled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, f, err := Setup(dir, true)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer f.Close()

	logger.Info("scene started", "scene", "ghat")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("Read log failed: %v", err)
	}
	if !strings.Contains(string(data), "scene=ghat") {
		t.Errorf("Expected structured entry, got %q", data)
	}
	if log.Writer() == os.Stdout || log.Writer() == os.Stderr {
		t.Error("Log output should not be stdout or stderr")
	}
}

func TestSetupRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, make([]byte, MaxFileSize+1), 0o644); err != nil {
		t.Fatalf("Write large log failed: %v", err)
	}

	_, f, err := Setup(dir, true)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer f.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	rotated := false
	for _, e := range entries {
		if e.Name() != FileName && filepath.Ext(e.Name()) == ".log" {
			rotated = true
		}
	}
	if !rotated {
		t.Error("Expected rotated log file")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() > MaxFileSize {
		t.Errorf("Expected fresh log, got %d bytes", info.Size())
	}
}
