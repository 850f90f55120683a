// Package logging configures the process-wide structured logger
// Output goes to a rotated file so the terminal console stays clean; without debug everything is discarded
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultDir  = "logs"
	FileName    = "ambient.log"
	MaxFileSize = 10 * 1024 * 1024
)

// Setup installs a logger writing to dir/FileName when debug is set
// The returned file is nil when logging is discarded; callers close it on exit
func Setup(dir string, debug bool) (*slog.Logger, *os.File, error) {
	if !debug {
		logger := slog.New(slog.DiscardHandler)
		slog.SetDefault(logger)
		log.SetOutput(io.Discard)
		return logger, nil, nil
	}

	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := rotate(path); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	// the standard logger is routed through the handler as well
	slog.SetDefault(logger)
	return logger, f, nil
}

// rotate renames an oversized log to a timestamped sibling
func rotate(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= MaxFileSize {
		return nil
	}
	stamp := time.Now().Format("20060102-150405")
	rotated := path[:len(path)-len(filepath.Ext(path))] + "-" + stamp + ".log"
	if err := os.Rename(path, rotated); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}
	return nil
}
