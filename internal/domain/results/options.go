package results

import "github.com/okian/bgxboard/internal/domain/schedule"

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithOrderer sets the calendar used to order race columns.
func WithOrderer(o *schedule.Orderer) Option {
	return func(b *Builder) {
		if o != nil {
			b.orderer = o
		}
	}
}

// WithRacePrefix sets the column prefix that marks per-race score columns.
func WithRacePrefix(prefix string) Option {
	return func(b *Builder) {
		if prefix != "" {
			b.racePrefix = prefix
		}
	}
}
