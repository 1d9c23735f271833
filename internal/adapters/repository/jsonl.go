package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/pkg/logger"
)

const maxLineBytes = 1024 * 1024

// JSONLStore appends one JSON document per line to a file.
type JSONLStore struct {
	mu   sync.Mutex
	path string
	f    *os.File
	log  logger.Logger
}

// NewJSONLStore opens path for appending, creating it and its directory as needed.
func NewJSONLStore(ctx context.Context, path string, opts ...Option) (*JSONLStore, error) {
	if path == "" {
		return nil, errors.New("jsonl store path is required")
	}
	o := newOptions(opts)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create visit store directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open visit store: %w", err)
	}
	o.log.Info(ctx, "visit store opened", logger.String("backend", BackendJSONL), logger.String("path", path))
	return &JSONLStore{path: path, f: f, log: o.log}, nil
}

func (s *JSONLStore) Append(_ context.Context, e model.VisitEvent) error {
	if err := validate(e); err != nil {
		return err
	}
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode visit: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrStoreClosed
	}
	if _, err := s.f.Write(line); err != nil {
		return fmt.Errorf("append visit: %w", err)
	}
	return nil
}

// ReadAll decodes the whole file. Lines that are not valid JSON are logged
// and skipped so one torn write does not hide the rest of the log.
func (s *JSONLStore) ReadAll(ctx context.Context) ([]model.VisitEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil, ErrStoreClosed
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open visit store: %w", err)
	}
	defer f.Close()
	return s.decode(ctx, f)
}

func (s *JSONLStore) decode(ctx context.Context, r io.Reader) ([]model.VisitEvent, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []model.VisitEvent
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var e model.VisitEvent
		if err := json.Unmarshal(b, &e); err != nil {
			s.log.Warn(ctx, "skipping malformed visit line", logger.Int("line", line), logger.Error(err))
			continue
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read visit store: %w", err)
	}
	return out, nil
}

func (s *JSONLStore) Count(ctx context.Context) (int, error) {
	events, err := s.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
