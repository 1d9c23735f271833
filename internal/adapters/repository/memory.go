package repository

import (
	"context"
	"sync"

	"github.com/okian/bgxboard/internal/domain/model"
)

// MemoryStore keeps events in a slice. Contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events []model.VisitEvent
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(_ ...Option) *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e model.VisitEvent) error {
	if err := validate(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.events = append(s.events, e)
	return nil
}

func (s *MemoryStore) ReadAll(_ context.Context) ([]model.VisitEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	out := make([]model.VisitEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Snapshot returns a copy of the events, also after Close.
func (s *MemoryStore) Snapshot() []model.VisitEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.VisitEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	return len(s.events), nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
