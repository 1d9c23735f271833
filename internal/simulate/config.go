// Package simulate drives synthetic page views against a running dashboard
// and checks that the analytics endpoint reflects them.
package simulate

import (
	"time"

	"github.com/okian/bgxboard/pkg/logger"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Visits      int           // Number of page views to post
	Concurrency int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	HomeShare   float64       // Fraction of views landing on the leaderboard page
	Duplicates  float64       // Fraction of views re-sending an earlier visit_id
	Categories  []string      // Category keys picked for home views
	Seed        uint64        // Seed of the visit generator
	Settle      time.Duration // How long to wait for analytics to catch up
}

// Visit is one page view posted to /api/visits.
type Visit struct {
	Page       string `json:"page"`
	Category   string `json:"category,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	VisitID    string `json:"visit_id,omitempty"`
}

// Stats holds the outcome of a simulation run.
type Stats struct {
	Generated   int
	Submitted   int
	Accepted    int
	Duplicate   int
	RateLimited int
	Failed      int
	// VisitsBefore and VisitsAfter are the analytics totals around the run.
	VisitsBefore int
	VisitsAfter  int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger logger.Logger
}

// WithLogger sets the run logger.
func WithLogger(l logger.Logger) Option {
	return func(o *runOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// DefaultConfig returns a run of 1000 views against a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:5001",
		Visits:      1000,
		Concurrency: 8,
		Timeout:     10 * time.Second,
		HomeShare:   0.8,
		Duplicates:  0.05,
		Categories:  []string{"expert", "profi", "standard", "standard_junior", "junior", "women", "seniors_40", "seniors_50"},
		Seed:        uint64(time.Now().UnixNano()),
		Settle:      5 * time.Second,
	}
}
