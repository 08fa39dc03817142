// Package file implements local filesystem sources and sinks for CSV data.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local reads from and writes to a single path on the local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open opens the path for reading. A context that is already done short
// circuits before the filesystem is touched. Errors keep os.ErrNotExist
// reachable through errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Create truncates or creates the path for writing, creating missing parent
// directories first.
func (l *Local) Create(ctx context.Context) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := EnsureDir(filepath.Dir(l.path)); err != nil {
		return nil, err
	}
	f, err := os.Create(l.path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", l.path, err)
	}
	return f, nil
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
