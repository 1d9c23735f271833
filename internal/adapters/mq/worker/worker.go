// Package worker persists queued visit events in the background.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/pkg/logger"
	"github.com/okian/bgxboard/pkg/metrics"
)

// Appender stores a visit event.
type Appender interface {
	Append(ctx context.Context, e model.VisitEvent) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.VisitEvent
}

// Worker drains visits from a queue into an Appender.
type Worker interface {
	// Run processes visits until the queue is closed and drained or ctx is canceled.
	Run(ctx context.Context)
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	appender Appender
	name     string
	logger   logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, appender Appender, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		appender: appender,
		name:     "worker",
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *InMemoryWorker) Run(ctx context.Context) {
	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Error(ctx, "visit append failed",
					logger.String("worker", w.name),
					logger.String("page", string(e.Page)),
					logger.Error(err))
			}
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, e model.VisitEvent) error {
	start := time.Now()
	err := w.appender.Append(ctx, e)
	metrics.RecordStoreAppendLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordStoreError("append")
		return fmt.Errorf("append visit %s: %w", e.ID, err)
	}
	return nil
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers; values below one use runtime.NumCPU().
func NewPool(workerCount int, queue Queue, appender Appender, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(queue, appender,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Wait blocks until every worker returned, normally after the queue was
// closed and drained, or until ctx expires.
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info(ctx, "worker pool stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
}
