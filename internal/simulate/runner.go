package simulate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/bgxboard/pkg/logger"
)

// ErrNotReflected is returned when analytics never caught up with the
// accepted views within the settle window.
var ErrNotReflected = errors.New("accepted visits not reflected in analytics")

const pollInterval = 200 * time.Millisecond

type analyticsTotals struct {
	TotalVisits int `json:"total_visits"`
}

// Run checks the service health, posts cfg.Visits synthetic page views and
// waits until /api/analytics counts every accepted one.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Stats, error) {
	o := runOptions{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger

	if cfg.Visits <= 0 {
		return nil, fmt.Errorf("visits must be positive, got %d", cfg.Visits)
	}
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting visit simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("visits", cfg.Visits),
		logger.Int("concurrency", cfg.Concurrency))

	if err := client.getJSON(ctx, "/health", nil); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	var before analyticsTotals
	if err := client.getJSON(ctx, "/api/analytics", &before); err != nil {
		return nil, fmt.Errorf("read analytics: %w", err)
	}
	stats.VisitsBefore = before.TotalVisits

	visits := generateVisits(cfg.Visits, cfg.HomeShare, cfg.Duplicates, cfg.Categories, cfg.Seed)
	stats.Generated = len(visits)
	log.Debug(ctx, "generated visits",
		logger.Int("count", len(visits)),
		logger.Int("unique", uniqueIDs(visits)))

	if err := submitVisits(ctx, client, visits, cfg.Concurrency, stats); err != nil {
		return stats, err
	}

	err := waitReflected(ctx, client, stats.VisitsBefore+stats.Accepted, cfg.Settle, stats)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, log, stats)
	return stats, err
}

// waitReflected polls analytics until the total reaches want or settle elapses.
func waitReflected(ctx context.Context, c *httpClient, want int, settle time.Duration, stats *Stats) error {
	deadline := time.Now().Add(settle)
	for {
		var now analyticsTotals
		if err := c.getJSON(ctx, "/api/analytics", &now); err != nil {
			return fmt.Errorf("read analytics: %w", err)
		}
		stats.VisitsAfter = now.TotalVisits
		if now.TotalVisits >= want {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: want %d, have %d", ErrNotReflected, want, now.TotalVisits)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for analytics: %w", ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "simulation finished",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("failed", stats.Failed),
		logger.Int("visitsBefore", stats.VisitsBefore),
		logger.Int("visitsAfter", stats.VisitsAfter),
		logger.Duration("duration", stats.Duration),
		logger.Float64("visitsPerSecond", perSecond))
}
