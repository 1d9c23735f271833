package leaderboard

import "github.com/okian/bgxboard/internal/domain/types"

// Option applies a configuration option to the Projector.
type Option func(*Projector)

// WithTopScoreThreshold sets the per-race score from which a result counts as a top score.
func WithTopScoreThreshold(threshold float64) Option {
	return func(p *Projector) {
		if threshold > 0 {
			p.topScore = threshold
		}
	}
}

// WithCategories sets the enumeration used for category display names.
func WithCategories(categories types.Categories) Option {
	return func(p *Projector) {
		if len(categories) > 0 {
			p.categories = categories
		}
	}
}
