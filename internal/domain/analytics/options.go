package analytics

import "github.com/okian/bgxboard/internal/domain/types"

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithRecentLimit sets how many events the recent activity list keeps.
func WithRecentLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.recentLimit = n
		}
	}
}

// WithCategories sets the enumeration used for category display names.
func WithCategories(categories types.Categories) Option {
	return func(a *Aggregator) {
		if len(categories) > 0 {
			a.categories = categories
		}
	}
}
