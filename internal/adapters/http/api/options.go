package api

// Option configures the API server.
type Option func(*options)

type options struct {
	serviceName string
	version     string
	ratePerSec  float64
	burst       int
}

func newOptions(opts ...Option) options {
	o := options{
		serviceName: "bgx-navigation-dashboard",
		version:     "1.0.0",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithServiceInfo sets the name and version reported by /health.
func WithServiceInfo(name, version string) Option {
	return func(o *options) {
		if name != "" {
			o.serviceName = name
		}
		if version != "" {
			o.version = version
		}
	}
}

// WithRateLimit limits POST /api/visits per client address. A non-positive
// rate disables limiting.
func WithRateLimit(perSec float64, burst int) Option {
	return func(o *options) {
		o.ratePerSec = perSec
		o.burst = burst
	}
}
