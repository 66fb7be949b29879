package kkafka

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/go-logr/logr"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/multierr"
)

// Fetcher is the part of *kgo.Client a Consumer needs.
type Fetcher interface {
	PollRecords(ctx context.Context, maxPollRecords int) kgo.Fetches
}

var _ Fetcher = (*kgo.Client)(nil)

type ConsumerOption func(*consumerOptions)

type consumerOptions struct {
	maxPollRecords int
	limit          int
	log            logr.Logger
}

// WithMaxPollRecords bounds the number of records returned by one poll.
var WithMaxPollRecords = func(n int) ConsumerOption {
	return func(o *consumerOptions) {
		o.maxPollRecords = n
	}
}

// WithLimit ends the sequence after n records. Zero consumes until the
// client is closed or the context is done.
var WithLimit = func(n int) ConsumerOption {
	return func(o *consumerOptions) {
		o.limit = n
	}
}

var WithConsumerLogr = func(log logr.Logger) ConsumerOption {
	return func(o *consumerOptions) {
		o.log = log
	}
}

// Consumer turns polled records into a sequence of deserialized values,
// suitable for InFlow.DrainFrom.
type Consumer[T any] struct {
	fetcher Fetcher
	value   Deserializer[T]
	opts    consumerOptions

	mu  sync.Mutex
	err error
}

func NewConsumer[T any](f Fetcher, value Deserializer[T], opts ...ConsumerOption) *Consumer[T] {
	o := consumerOptions{
		maxPollRecords: 500,
		log:            logr.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Consumer[T]{
		fetcher: f,
		value:   value,
		opts:    o,
	}
}

// All yields record values until the limit is reached, the client is closed,
// ctx is done, or polling or deserialization fails. Failures are reported by
// Err after the sequence ends.
func (c *Consumer[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		var consumed int
		for ctx.Err() == nil {
			fetches := c.fetcher.PollRecords(ctx, c.opts.maxPollRecords)
			if fetches.IsClientClosed() {
				c.opts.log.V(1).Info("client closed, ending consumption", "consumed", consumed)
				return
			}
			if err := fetchErr(fetches); err != nil {
				c.setErr(err)
				return
			}

			it := fetches.RecordIter()
			for !it.Done() {
				r := it.Next()
				v, err := c.value(r.Value)
				if err != nil {
					c.setErr(fmt.Errorf("failed to deserialize record %s/%d@%d: %w", r.Topic, r.Partition, r.Offset, err))
					return
				}
				if !yield(v) {
					return
				}
				consumed++
				if c.opts.limit > 0 && consumed >= c.opts.limit {
					return
				}
			}
		}
	}
}

// Err returns the error that ended the last sequence, if any.
func (c *Consumer[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Consumer[T]) setErr(err error) {
	c.opts.log.Error(err, "consumption failed")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func fetchErr(fetches kgo.Fetches) error {
	var err error
	fetches.EachError(func(topic string, partition int32, e error) {
		if errors.Is(e, context.Canceled) || errors.Is(e, context.DeadlineExceeded) {
			return
		}
		err = multierr.Append(err, fmt.Errorf("fetch %s/%d: %w", topic, partition, e))
	})
	return err
}
