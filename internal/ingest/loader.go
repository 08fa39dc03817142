// Package ingest loads delimited files from a base directory into tables.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"logisticsetl/internal/datasource"
	"logisticsetl/internal/datasource/file"
	"logisticsetl/internal/parser"
	pcsv "logisticsetl/internal/parser/csv"
	"logisticsetl/internal/table"
)

// ErrFileNotFound is returned by Load when the resolved path does not exist.
// The underlying os error stays reachable, so os.ErrNotExist matches too.
var ErrFileNotFound = errors.New("file not found")

// Loader reads CSV files relative to a base directory.
type Loader struct {
	baseDir   string
	opts      pcsv.Options
	log       *zap.Logger
	onSkipped func(path string, n int)
}

// NewLoader returns a Loader rooted at baseDir. A nil logger is replaced with
// a no-op logger.
func NewLoader(baseDir string, opts pcsv.Options, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{baseDir: baseDir, opts: opts, log: log}
}

// OnSkipped sets fn to be called after each load that skipped unreadable
// rows, with the resolved path and the number of rows skipped.
func (l *Loader) OnSkipped(fn func(path string, n int)) {
	l.onSkipped = fn
}

// Resolve joins name onto the base directory unless it is already absolute.
func (l *Loader) Resolve(name string) string {
	if filepath.IsAbs(name) || l.baseDir == "" {
		return name
	}
	return filepath.Join(l.baseDir, name)
}

// Load reads the whole file.
func (l *Loader) Load(ctx context.Context, name string) (*table.Table, error) {
	return l.load(ctx, name, l.opts)
}

// Sample reads only the first n data rows of the file.
func (l *Loader) Sample(ctx context.Context, name string, n int) (*table.Table, error) {
	opts := l.opts
	opts.MaxRows = n
	t, err := l.load(ctx, name, opts)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return t.Head(0), nil
	}
	return t, nil
}

func (l *Loader) load(ctx context.Context, name string, opts pcsv.Options) (*table.Table, error) {
	path := l.Resolve(name)
	opts.OnSkip = func(line int, err error) {
		l.log.Warn("ingest: skipped row", zap.String("file", path), zap.Int("line", line), zap.Error(err))
	}
	t, skipped, err := read(ctx, file.NewLocal(path), pcsv.NewParser(opts))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.log.Error("ingest: file not found", zap.String("file", path))
			return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		l.log.Error("ingest: load failed", zap.String("file", path), zap.Error(err))
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if skipped > 0 && l.onSkipped != nil {
		l.onSkipped(path, skipped)
	}
	l.log.Info("ingest: loaded",
		zap.String("file", path),
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", t.NumCols()),
		zap.Int("skipped", skipped),
	)
	return t, nil
}

func read(ctx context.Context, src datasource.Source, p parser.Parser) (*table.Table, int, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()
	return p.Parse(rc)
}

// LoadMany loads each name in turn. Files that fail to load are logged and
// left out of the result, which is keyed by the name as given.
func (l *Loader) LoadMany(ctx context.Context, names []string) map[string]*table.Table {
	out := make(map[string]*table.Table, len(names))
	for _, name := range names {
		t, err := l.Load(ctx, name)
		if err != nil {
			l.log.Warn("ingest: skipping file", zap.String("file", name), zap.Error(err))
			continue
		}
		out[name] = t
	}
	return out
}
