// Package service wires the dashboard: leaderboards from category results
// and visit tracking with analytics.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/bgxboard/internal/adapters/mq/queue"
	workerpool "github.com/okian/bgxboard/internal/adapters/mq/worker"
	"github.com/okian/bgxboard/internal/adapters/repository"
	"github.com/okian/bgxboard/internal/domain/analytics"
	"github.com/okian/bgxboard/internal/domain/dedupe"
	"github.com/okian/bgxboard/internal/domain/leaderboard"
	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/internal/domain/results"
	"github.com/okian/bgxboard/internal/domain/types"
	"github.com/okian/bgxboard/pkg/logger"
	"github.com/okian/bgxboard/pkg/metrics"
)

// TimestampLayout is the fixed-width UTC layout of stored visit timestamps,
// so that string order is time order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// ResultSource loads the raw results table of a category.
type ResultSource interface {
	Load(ctx context.Context, category string) (*results.Table, error)
}

// TrackRequest describes one page view.
type TrackRequest struct {
	Page       string
	Category   string
	DeviceType model.DeviceType
	// VisitID is an optional client idempotency key.
	VisitID string
}

// TrackOutcome reports what happened to a page view.
type TrackOutcome string

// Track outcomes.
const (
	TrackAccepted  TrackOutcome = "accepted"
	TrackDuplicate TrackOutcome = "duplicate"
	TrackDropped   TrackOutcome = "dropped"
)

// Service is the application core behind the HTTP and CLI surfaces.
type Service struct {
	mu sync.RWMutex

	categories      types.Categories
	defaultCategory string

	source     ResultSource
	builder    *results.Builder
	projector  *leaderboard.Projector
	aggregator *analytics.Aggregator
	store      repository.Store

	deduper dedupe.Deduper
	queue   eventqueue.Queue
	pool    *workerpool.Pool

	workerCount int
	queueSize   int
	dedupeSize  int

	started bool
	cancel  context.CancelFunc
	now     func() time.Time
	logger  logger.Logger
}

// New creates a Service. Without options it uses the default categories,
// an empty results source and an in-memory visit store.
func New(opts ...Option) *Service {
	s := &Service{
		categories:      types.DefaultCategories(),
		defaultCategory: "expert",
		source:          noResults{},
		builder:         results.NewBuilder(),
		projector:       leaderboard.NewProjector(),
		aggregator:      analytics.NewAggregator(),
		workerCount:     runtime.NumCPU(),
		queueSize:       10_000,
		dedupeSize:      dedupe.DefaultMaxSize,
		now:             time.Now,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Start launches the visit append workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	// Workers outlive the caller's context so Stop can drain the queue.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.queue = q
	s.pool = workerpool.NewPool(s.workerCount, q, s.store,
		workerpool.WithPoolLogger(s.logger.Named("worker-pool")))
	s.pool.Start(runCtx)
	go s.refreshSystemMetrics(runCtx)

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("categories", len(s.categories)),
	)
	return nil
}

// Stop stops accepting visits, waits for queued visits to be stored and
// closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}

	_ = s.queue.Close()
	waitErr := s.pool.Wait(ctx)
	s.cancel()
	closeErr := s.store.Close()

	s.started = false
	s.logger.Info(ctx, "dashboard service stopped")
	return errors.Join(waitErr, closeErr)
}

// Categories returns the category enumeration.
func (s *Service) Categories() types.Categories {
	out := make(types.Categories, len(s.categories))
	copy(out, s.categories)
	return out
}

// DefaultCategory returns the category shown when none is requested.
func (s *Service) DefaultCategory() string { return s.defaultCategory }

// ResolveCategory maps an empty key to the default and rejects keys outside
// the enumeration.
func (s *Service) ResolveCategory(key string) (string, error) {
	if key == "" {
		return s.defaultCategory, nil
	}
	if _, ok := s.categories.Lookup(key); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return key, nil
}

// Leaderboard returns the leaderboard view of category. A category without
// results yields an empty view, not an error.
func (s *Service) Leaderboard(ctx context.Context, category string) (leaderboard.View, error) {
	key, err := s.ResolveCategory(category)
	if err != nil {
		return leaderboard.View{}, err
	}

	table, err := s.source.Load(ctx, key)
	if errors.Is(err, results.ErrNotFound) {
		return s.empty(ctx, key), nil
	}
	if err != nil {
		return leaderboard.View{}, fmt.Errorf("load %s results: %w", key, err)
	}

	set, err := s.builder.Build(key, table)
	if errors.Is(err, results.ErrNotFound) {
		return s.empty(ctx, key), nil
	}
	if err != nil {
		return leaderboard.View{}, fmt.Errorf("build %s results: %w", key, err)
	}

	if skipped := set.Skipped(); len(skipped) > 0 {
		metrics.RecordRowsSkipped(key, len(skipped))
		for _, rowErr := range skipped {
			s.logger.Warn(ctx, "skipping malformed result row",
				logger.String("category", key),
				logger.Int("row", rowErr.Index),
				logger.String("column", rowErr.Column),
				logger.Error(rowErr.Err),
			)
		}
	}

	view := s.projector.Project(set)
	outcome := "ok"
	if view.Empty {
		outcome = "empty"
	}
	metrics.RecordLeaderboardProjection(key, outcome)
	return view, nil
}

func (s *Service) empty(ctx context.Context, key string) leaderboard.View {
	s.logger.Debug(ctx, "no results for category", logger.String("category", key))
	metrics.RecordLeaderboardProjection(key, "empty")
	return s.projector.Empty(key)
}

// Analytics aggregates every stored visit.
func (s *Service) Analytics(ctx context.Context) (analytics.View, error) {
	events, err := s.store.ReadAll(ctx)
	if err != nil {
		metrics.RecordStoreError("read")
		return analytics.View{}, fmt.Errorf("read visits: %w", err)
	}
	metrics.RecordAnalytics(len(events))
	return s.aggregator.Aggregate(events), nil
}

// Track queues one page view for storage without waiting for it.
func (s *Service) Track(ctx context.Context, req TrackRequest) (TrackOutcome, error) {
	page, ok := model.ParsePage(req.Page)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPage, req.Page)
	}
	category := ""
	if page == model.PageHome && req.Category != "" {
		key, err := s.ResolveCategory(req.Category)
		if err != nil {
			return "", err
		}
		category = key
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return "", ErrNotStarted
	}

	if req.VisitID != "" && s.deduper.SeenAndRecord(ctx, req.VisitID) {
		metrics.RecordVisitDuplicate()
		return TrackDuplicate, nil
	}

	e := model.VisitEvent{
		ID:         uuid.NewString(),
		Timestamp:  s.now().UTC().Format(TimestampLayout),
		Page:       page,
		Category:   category,
		DeviceType: model.ParseDeviceType(string(req.DeviceType)),
	}
	if !s.queue.Enqueue(ctx, e) {
		if req.VisitID != "" {
			s.deduper.Unrecord(ctx, req.VisitID)
		}
		metrics.RecordVisitDropped()
		s.logger.Warn(ctx, "visit queue full, dropping page view", logger.String("page", string(page)))
		return TrackDropped, nil
	}
	metrics.RecordVisitTracked(string(page), string(e.DeviceType))
	return TrackAccepted, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"categories":  len(s.categories),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		if n, err := s.store.Count(ctx); err == nil {
			stats["totalVisits"] = n
		}
	}
	return stats
}

func (s *Service) refreshSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	var m runtime.MemStats
	for {
		runtime.ReadMemStats(&m)
		metrics.UpdateSystemMemoryUsage(m.Alloc)
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// noResults is the source of a service configured without one.
type noResults struct{}

func (noResults) Load(_ context.Context, category string) (*results.Table, error) {
	return nil, fmt.Errorf("%w: %s", results.ErrNotFound, category)
}
