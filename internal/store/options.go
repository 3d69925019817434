package store

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type options struct {
	seed   Seed
	logger log.FieldLogger
	now    func() time.Time
}

type Option func(*options)

func WithSeed(seed Seed) Option {
	return func(o *options) {
		o.seed = seed
	}
}

func WithLogger(logger log.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{
		seed:   DefaultSeed(),
		logger: log.StandardLogger(),
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(&o)
	}

	o.seed = o.seed.withDefaults()

	return o
}
