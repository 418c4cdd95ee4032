// File: pool/options.go
// Package pool defines functional options shared by both pool strategies.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "github.com/rs/zerolog"

type options struct {
	name           string
	resetOnRelease bool
	capacity       int
	log            zerolog.Logger
}

// Option customizes pool initialization.
type Option func(*options)

// WithName labels log events emitted by the pool.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithResetOnRelease calls Reset on every buffer before it becomes idle.
func WithResetOnRelease() Option {
	return func(o *options) {
		o.resetOnRelease = true
	}
}

// WithCapacityHint preallocates bookkeeping for n buffers. It does not
// allocate buffers and is not a limit.
func WithCapacityHint(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithLogger attaches a logger. Pools only log at debug level, on slab
// growth, orphaned releases and teardown.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func newOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name != "" {
		o.log = o.log.With().Str("pool", o.name).Logger()
	}
	return o
}
