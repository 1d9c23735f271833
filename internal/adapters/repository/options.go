package repository

import "github.com/okian/bgxboard/pkg/logger"

// Option applies a configuration option to a Store.
type Option func(*options)

type options struct {
	log        logger.Logger
	inMemory   bool
	syncWrites bool
}

func newOptions(opts []Option) options {
	o := options{log: logger.Nop(), syncWrites: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used by the store.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithInMemory keeps Badger data in memory only. Tests use it.
func WithInMemory(inMemory bool) Option {
	return func(o *options) {
		o.inMemory = inMemory
	}
}

// WithSyncWrites controls fsync on every Badger write.
func WithSyncWrites(sync bool) Option {
	return func(o *options) {
		o.syncWrites = sync
	}
}
