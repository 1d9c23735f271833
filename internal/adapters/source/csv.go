// Package source loads category result tables from CSV files.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	cache "github.com/patrickmn/go-cache"

	"github.com/okian/bgxboard/internal/domain/results"
	"github.com/okian/bgxboard/pkg/logger"
	"github.com/okian/bgxboard/pkg/metrics"
)

const (
	fileExt = ".csv"
	bom     = "\ufeff"
)

// CSVSource reads <dir>/<category>.csv. Tables returned by Load are shared
// with the cache and must not be modified.
type CSVSource struct {
	dir   string
	ttl   time.Duration
	cache *cache.Cache
	log   logger.Logger
}

// NewCSVSource creates a source rooted at dir.
func NewCSVSource(dir string, opts ...Option) *CSVSource {
	s := &CSVSource{dir: dir, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl > 0 {
		s.cache = cache.New(s.ttl, 2*s.ttl)
	}
	return s
}

// Dir returns the results directory.
func (s *CSVSource) Dir() string { return s.dir }

// Load returns the raw table of category. A missing file yields results.ErrNotFound.
func (s *CSVSource) Load(ctx context.Context, category string) (*results.Table, error) {
	if err := checkKey(category); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if t, ok := s.cache.Get(category); ok {
			metrics.RecordSourceCacheHit()
			return t.(*results.Table), nil
		}
		metrics.RecordSourceCacheMiss()
	}

	start := time.Now()
	t, err := s.read(category)
	metrics.RecordSourceLoadLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "category loaded", logger.String("category", category), logger.Int("rows", len(t.Rows)))

	if s.cache != nil {
		s.cache.SetDefault(category, t)
	}
	return t, nil
}

// Invalidate drops the cached table of category.
func (s *CSVSource) Invalidate(category string) {
	if s.cache != nil {
		s.cache.Delete(category)
	}
}

// InvalidateAll drops every cached table.
func (s *CSVSource) InvalidateAll() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

func (s *CSVSource) path(category string) string {
	return filepath.Join(s.dir, category+fileExt)
}

func (s *CSVSource) read(category string) (*results.Table, error) {
	f, err := os.Open(s.path(category))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", results.ErrNotFound, category)
	}
	if err != nil {
		return nil, fmt.Errorf("open results for %s: %w", category, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a results table: a header line followed by one line per rider.
// Short lines are padded with empty cells; an empty input yields an empty table.
func Parse(r io.Reader) (*results.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &results.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedCSV, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], bom)

	t := &results.Table{Columns: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		row := make(results.RawRow, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Watch invalidates cached tables whenever a CSV file in the results
// directory changes. It blocks until ctx is done.
func (s *CSVSource) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create results watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.log.Info(ctx, "watching results directory", logger.String("dir", s.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			s.handle(ctx, ev)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn(ctx, "results watcher error", logger.Error(err))
		}
	}
}

func (s *CSVSource) handle(ctx context.Context, ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if !strings.HasSuffix(name, fileExt) {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	category := strings.TrimSuffix(name, fileExt)
	s.Invalidate(category)
	s.log.Debug(ctx, "results changed", logger.String("category", category), logger.String("op", ev.Op.String()))
}

func checkKey(category string) error {
	if category == "" || category == "." || category == ".." ||
		strings.ContainsAny(category, `/\`) || strings.ContainsRune(category, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return nil
}
