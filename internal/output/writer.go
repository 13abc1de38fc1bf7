// Package output persists downloaded artifacts to the local filesystem.
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// SyncName returns the artifact filename for a synchronous lifecycle.
func SyncName(invoiceNum string) string {
	return fmt.Sprintf("sync-invoice-%s.pdf", invoiceNum)
}

// AsyncName returns the artifact filename for an asynchronous lifecycle.
func AsyncName(invoiceNum string) string {
	return fmt.Sprintf("async-invoice-%s.pdf", invoiceNum)
}

// Writer writes artifacts under a base directory, creating it on demand.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write stores data under name and returns the full path.
func (w *Writer) Write(name string, data []byte) (string, error) {
	destPath := filepath.Join(w.dir, name)

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	slog.Debug("Wrote artifact", "bytes", len(data), "path", destPath)
	return destPath, nil
}
