package source

import (
	"time"

	"github.com/okian/bgxboard/pkg/logger"
)

// Option applies a configuration option to the CSVSource.
type Option func(*CSVSource)

// WithCacheTTL keeps parsed tables for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *CSVSource) {
		s.ttl = ttl
	}
}

// WithLogger sets the logger used by the source.
func WithLogger(l logger.Logger) Option {
	return func(s *CSVSource) {
		if l != nil {
			s.log = l
		}
	}
}
