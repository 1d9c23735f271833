// Package config defines service configuration and how it is loaded.
package config

import (
	"runtime"
	"time"

	"github.com/okian/bgxboard/internal/domain/schedule"
	"github.com/okian/bgxboard/internal/domain/types"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"loglevel"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":5001".
	Addr string `koanf:"addr"`

	ServiceName string `koanf:"service_name" validate:"required"`
	Version     string `koanf:"version" validate:"required"`

	// ResultsDir holds one <category>.csv per category.
	ResultsDir string `koanf:"results_dir" validate:"required"`

	// RaceColumnPrefix marks per-race score columns in the CSV header.
	RaceColumnPrefix string `koanf:"race_column_prefix" validate:"required"`

	// RaceSchedule lists race slugs in calendar order.
	RaceSchedule []string `koanf:"race_schedule" validate:"min=1,dive,required"`

	// Categories is the ordered category enumeration with display names.
	Categories types.Categories `koanf:"categories" validate:"min=1,dive"`

	// DefaultCategory is shown when a request names none.
	DefaultCategory string `koanf:"default_category" validate:"required"`

	// TopScoreThreshold is the per-race score from which a result is highlighted.
	TopScoreThreshold float64 `koanf:"top_score_threshold" validate:"gt=0"`

	// RecentActivityLimit caps the recent visits list on the stats page.
	RecentActivityLimit int `koanf:"recent_activity_limit" validate:"min=1"`

	// VisitStore selects the visit event backend: memory, jsonl or badger.
	VisitStore string `koanf:"visit_store" validate:"oneof=memory jsonl badger"`

	// VisitStorePath is the JSONL file or Badger directory.
	VisitStorePath string `koanf:"visit_store_path" validate:"required_unless=VisitStore memory"`

	// EventQueueSize bounds the in-memory visit queue.
	EventQueueSize int `koanf:"queue_size" validate:"min=1"`

	// WorkerCount sets the number of visit append workers.
	WorkerCount int `koanf:"worker_count" validate:"min=0"`

	// DedupeSize bounds the remembered client visit ids.
	DedupeSize int `koanf:"dedupe_size" validate:"min=0"`

	// RowCacheTTLMS caches parsed category files; 0 disables the cache.
	RowCacheTTLMS int `koanf:"row_cache_ttl_ms" validate:"min=0"`

	// WatchResults invalidates cached categories when their files change.
	WatchResults bool `koanf:"watch_results"`

	// TrackRatePerSec and TrackBurst limit POST /api/visits; a zero rate disables limiting.
	TrackRatePerSec float64 `koanf:"track_rate_per_sec" validate:"min=0"`
	TrackBurst      int     `koanf:"track_burst" validate:"min=0"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":5001",
		ServiceName:         "bgx-navigation-dashboard",
		Version:             "1.0.0",
		ResultsDir:          "data/bgx-result-2025-full",
		RaceColumnPrefix:    "Race_",
		RaceSchedule:        append([]string(nil), schedule.DefaultRaces...),
		Categories:          types.DefaultCategories(),
		DefaultCategory:     "expert",
		TopScoreThreshold:   25,
		RecentActivityLimit: 20,
		VisitStore:          "jsonl",
		VisitStorePath:      "data/visits.jsonl",
		EventQueueSize:      10_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          50_000,
		RowCacheTTLMS:       30_000,
		WatchResults:        true,
		TrackRatePerSec:     50,
		TrackBurst:          100,
	}
}

// RowCacheTTL returns RowCacheTTLMS as a duration.
func (c *Config) RowCacheTTL() time.Duration {
	return time.Duration(c.RowCacheTTLMS) * time.Millisecond
}
