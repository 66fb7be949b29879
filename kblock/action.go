package kblock

import (
	"context"
)

// ActionBlock runs fn for every accepted item and emits nothing.
type ActionBlock[T any] struct {
	*core
	in *queue[T]
	fn func(ctx context.Context, item T) error
}

var _ Target[int] = (*ActionBlock[int])(nil)

// NewActionBlock creates a block that calls fn for every input item.
// An error returned by fn faults the block.
func NewActionBlock[T any](fn func(ctx context.Context, item T) error, opts ...Option) *ActionBlock[T] {
	o := newOptions(opts)
	b := &ActionBlock[T]{
		in: newQueue[T](o.capacity),
		fn: fn,
	}
	b.core = newCore(o, "ActionBlock", b.in.abort)
	for range o.parallelism {
		b.goFn(b.work)
	}
	b.finish()
	return b
}

func (b *ActionBlock[T]) work() {
	for {
		item, ok := b.in.pop(b.ctx)
		if !ok {
			return
		}
		if err := b.fn(b.ctx, item); err != nil {
			b.log.Error(err, "action failed")
			b.Fault(err)
			return
		}
	}
}

// Accept enqueues item for processing.
func (b *ActionBlock[T]) Accept(ctx context.Context, item T) error {
	if b.declining() {
		return ErrDeclined
	}
	return b.in.push(ctx, item)
}

// Complete stops accepting input. Queued items are still processed.
func (b *ActionBlock[T]) Complete() {
	b.in.close()
}

// BufferStatus reports the number of queued input items. The output depth is always zero.
func (b *ActionBlock[T]) BufferStatus() (in, out int) {
	return b.in.len(), 0
}
