// Package fileutil holds small filesystem helpers shared by the store, the
// config writer and the pipeline.
package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultPollInterval is used when a caller passes a non-positive interval.
const DefaultPollInterval = 200 * time.Millisecond

// WaitForFile blocks until path exists. Some tools finish writing only after
// their process has already been awaited by another component, so existence
// is the only completion signal available. Only ctx cancellation ends the wait
// early.
func WaitForFile(ctx context.Context, path string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		_, err := os.Stat(path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForFiles waits for every path in order.
func WaitForFiles(ctx context.Context, paths []string, interval time.Duration) error {
	for _, path := range paths {
		if err := WaitForFile(ctx, path, interval); err != nil {
			return err
		}
	}
	return nil
}

// WriteAtomic writes path through a temporary sibling file and renames it
// into place, so readers see either the old or the new content.
func WriteAtomic(path string, mode os.FileMode, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
