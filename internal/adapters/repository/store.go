// Package repository persists visit events.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/bgxboard/internal/domain/model"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendJSONL  = "jsonl"
	BackendBadger = "badger"
)

// Store is the append-only visit event log.
type Store interface {
	// Append records one event. Events are never updated or removed.
	Append(ctx context.Context, event model.VisitEvent) error

	// ReadAll returns a fresh copy of every stored event. Order is not guaranteed.
	ReadAll(ctx context.Context) ([]model.VisitEvent, error)

	// Count returns the number of stored events.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Open creates the store named by backend. path is ignored for the memory backend.
func Open(ctx context.Context, backend, path string, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendMemory:
		return NewMemoryStore(opts...), nil
	case BackendJSONL:
		return NewJSONLStore(ctx, path, opts...)
	case BackendBadger:
		return NewBadgerStore(ctx, path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func validate(e model.VisitEvent) error {
	if e.Timestamp == "" {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidEvent)
	}
	if _, ok := model.ParsePage(string(e.Page)); !ok {
		return fmt.Errorf("%w: page %q", ErrInvalidEvent, e.Page)
	}
	return nil
}
