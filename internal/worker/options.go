package worker

import "github.com/okian/partyrisk/pkg/logger"

// Option configures a Pool.
type Option func(*Pool)

// WithSize sets the concurrency limit. Values below 1 keep the default.
func WithSize(size int) Option {
	return func(p *Pool) {
		if size > 0 {
			p.size = size
		}
	}
}

// WithName sets the pool name used in logs and errors.
func WithName(name string) Option {
	return func(p *Pool) {
		if name != "" {
			p.name = name
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}
