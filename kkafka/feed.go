package kkafka

import (
	"context"

	"github.com/birdayz/kflow"
	"github.com/birdayz/kflow/kblock"
)

// Feed drains c into f and completes f once the records are consumed. If
// consumption fails, f is faulted with the consumer error instead.
func Feed[T any](ctx context.Context, f *kflow.InFlow[T], c *Consumer[T]) *kblock.Completion {
	drain := f.DrainFrom(ctx, c.All(ctx))
	done := kblock.NewCompletion()
	go func() {
		<-drain.Done()
		o := drain.Outcome()
		if o.Status == kblock.StatusSucceeded {
			if err := c.Err(); err != nil {
				f.Fault(err)
				done.Fault(err)
				return
			}
			f.Complete()
		}
		done.Resolve(o)
	}()
	return done
}
