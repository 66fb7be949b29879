package kblock

import (
	"context"

	"github.com/go-logr/logr"
)

// Option configures a block.
type Option func(*options)

type options struct {
	name        string
	ctx         context.Context
	capacity    int
	parallelism int
	log         logr.Logger
}

func newOptions(opts []Option) options {
	o := options{
		ctx:         context.Background(),
		parallelism: 1,
		log:         logr.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.parallelism < 1 {
		o.parallelism = 1
	}
	return o
}

// WithName sets the display name of the block.
var WithName = func(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithContext sets the cancellation source of the block. Canceling ctx
// finishes the block in a canceled state.
var WithContext = func(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithCapacity bounds the input and output queues of the block. Zero means unbounded.
var WithCapacity = func(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithParallelism sets the number of concurrent workers. Output order is
// only preserved with a single worker, which is the default.
var WithParallelism = func(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithLogr sets the logger of the block.
var WithLogr = func(log logr.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}
