package service

import (
	"time"

	"github.com/okian/bgxboard/internal/adapters/repository"
	"github.com/okian/bgxboard/internal/domain/analytics"
	"github.com/okian/bgxboard/internal/domain/leaderboard"
	"github.com/okian/bgxboard/internal/domain/results"
	"github.com/okian/bgxboard/internal/domain/types"
	"github.com/okian/bgxboard/pkg/logger"
)

// Option configures the Service.
type Option func(*Service)

// WithWorkerCount sets the number of visit append workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the visit queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many client visit ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCategories sets the category enumeration and the default category.
func WithCategories(categories types.Categories, defaultCategory string) Option {
	return func(s *Service) {
		if len(categories) > 0 {
			s.categories = categories
		}
		if defaultCategory != "" {
			s.defaultCategory = defaultCategory
		}
	}
}

// WithSource sets where category results are read from.
func WithSource(src ResultSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithStore sets the visit event store. The Service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithBuilder sets the result set builder.
func WithBuilder(b *results.Builder) Option {
	return func(s *Service) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithProjector sets the leaderboard projector.
func WithProjector(p *leaderboard.Projector) Option {
	return func(s *Service) {
		if p != nil {
			s.projector = p
		}
	}
}

// WithAggregator sets the visit analytics aggregator.
func WithAggregator(a *analytics.Aggregator) Option {
	return func(s *Service) {
		if a != nil {
			s.aggregator = a
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
