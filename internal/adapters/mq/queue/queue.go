// Package queue buffers visit events between request handlers and the
// workers that persist them.
package queue

import (
	"context"
	"sync"

	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/pkg/metrics"
)

const defaultCapacity = 10000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a visit. It returns false when the queue is full or closed.
	Enqueue(ctx context.Context, e model.VisitEvent) bool

	// Dequeue returns the channel consumers read from. It is closed by Close
	// once buffered visits are drained.
	Dequeue(ctx context.Context) <-chan model.VisitEvent

	// Len returns the current number of queued visits.
	Len(ctx context.Context) int

	// Close stops accepting visits.
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	events   chan model.VisitEvent
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan model.VisitEvent, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, e model.VisitEvent) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed || ctx.Err() != nil {
		return false
	}

	select {
	case q.events <- e:
		metrics.UpdateQueueSize(len(q.events))
		return true
	default:
		return false
	}
}

func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan model.VisitEvent {
	return q.events
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	n := len(q.events)
	metrics.UpdateQueueSize(n)
	return n
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
