package kblock

import (
	"context"
	"sync"
)

// TransformBlock maps every accepted input item to zero or more output items
// and offers them to its linked targets.
type TransformBlock[In, Out any] struct {
	*core
	in  *queue[In]
	out *outlet[Out]
	fn  func(ctx context.Context, item In) ([]Out, error)
}

var _ Propagator[int, string] = (*TransformBlock[int, string])(nil)

// NewTransformBlock creates a block that emits fn(item) for every input item.
// An error returned by fn faults the block.
func NewTransformBlock[In, Out any](fn func(ctx context.Context, item In) (Out, error), opts ...Option) *TransformBlock[In, Out] {
	return newTransformBlock("TransformBlock", func(ctx context.Context, item In) ([]Out, error) {
		out, err := fn(ctx, item)
		if err != nil {
			return nil, err
		}
		return []Out{out}, nil
	}, opts)
}

// NewTransformManyBlock creates a block that emits every element of fn(item)
// for every input item.
func NewTransformManyBlock[In, Out any](fn func(ctx context.Context, item In) ([]Out, error), opts ...Option) *TransformBlock[In, Out] {
	return newTransformBlock("TransformManyBlock", fn, opts)
}

// NewBufferBlock creates a block that forwards its input unchanged.
func NewBufferBlock[T any](opts ...Option) *TransformBlock[T, T] {
	return newTransformBlock("BufferBlock", func(_ context.Context, item T) ([]T, error) {
		return []T{item}, nil
	}, opts)
}

func newTransformBlock[In, Out any](tag string, fn func(context.Context, In) ([]Out, error), opts []Option) *TransformBlock[In, Out] {
	o := newOptions(opts)
	b := &TransformBlock[In, Out]{
		in:  newQueue[In](o.capacity),
		out: newOutlet[Out](o.capacity, o.log),
		fn:  fn,
	}
	b.core = newCore(o, tag, b.abort)

	var workers sync.WaitGroup
	for range o.parallelism {
		workers.Add(1)
		go func() {
			defer workers.Done()
			b.work()
		}()
	}
	b.goFn(func() {
		workers.Wait()
		if !b.declining() {
			b.out.close()
		}
	})
	b.goFn(func() {
		if err := b.out.dispatch(b.ctx); err != nil && !b.declining() {
			b.Fault(err)
		}
	})
	b.finish()
	return b
}

func (b *TransformBlock[In, Out]) work() {
	for {
		item, ok := b.in.pop(b.ctx)
		if !ok {
			return
		}
		outs, err := b.fn(b.ctx, item)
		if err != nil {
			b.log.Error(err, "transform failed")
			b.Fault(err)
			return
		}
		for _, out := range outs {
			if err := b.out.push(b.ctx, out); err != nil {
				return
			}
		}
	}
}

func (b *TransformBlock[In, Out]) abort() {
	b.in.abort()
	b.out.abort()
}

// Accept enqueues item for processing.
func (b *TransformBlock[In, Out]) Accept(ctx context.Context, item In) error {
	if b.declining() {
		return ErrDeclined
	}
	return b.in.push(ctx, item)
}

// Complete stops accepting input. Queued items are still processed and delivered.
func (b *TransformBlock[In, Out]) Complete() {
	b.in.close()
}

// BufferStatus reports the number of queued input and undelivered output items.
func (b *TransformBlock[In, Out]) BufferStatus() (in, out int) {
	return b.in.len(), b.out.len()
}

// LinkTo forwards every output item to target.
func (b *TransformBlock[In, Out]) LinkTo(target Target[Out], opts LinkOptions) {
	b.LinkToFiltered(target, opts, nil)
}

// LinkToFiltered forwards the output items admitted by filter to target.
// A nil filter admits every item.
func (b *TransformBlock[In, Out]) LinkToFiltered(target Target[Out], opts LinkOptions, filter func(Out) bool) {
	b.out.addLink(&link[Out]{target: target, filter: filter, propagate: opts.PropagateCompletion})
	if opts.PropagateCompletion {
		propagate(b.completion, target)
	}
}

// propagate forwards the outcome of c to target once c resolves.
func propagate(c *Completion, target Block) {
	go func() {
		<-c.Done()
		o := c.Outcome()
		if o.Status == StatusSucceeded {
			target.Complete()
			return
		}
		target.Fault(o.Err)
	}()
}
