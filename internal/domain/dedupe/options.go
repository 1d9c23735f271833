package dedupe

// Option applies a configuration option to the in-memory Deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets how many visit ids are remembered.
// maxSize > 0 evicts the oldest id first; maxSize <= 0 never forgets.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
