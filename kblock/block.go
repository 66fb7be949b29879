package kblock

import (
	"context"
	"errors"
)

// ErrDeclined is returned by Accept when a block no longer takes input,
// because it was completed, faulted or canceled.
var ErrDeclined = errors.New("kblock: item declined")

// Block is the capability every leaf stage exposes to the engine.
type Block interface {
	// Complete signals that no more input will arrive. Already queued items
	// are still processed.
	Complete()
	// Fault discards pending work and finishes the block in a faulted state.
	Fault(err error)
	// Completion returns the block's completion.
	Completion() *Completion
	// BufferStatus reports the approximate number of queued input and output items.
	BufferStatus() (in, out int)
}

// Target is a block that accepts items.
type Target[T any] interface {
	Block
	// Accept enqueues item, blocking while the block is at capacity.
	// It returns ErrDeclined if the block no longer accepts input and ctx.Err()
	// if ctx finishes first.
	Accept(ctx context.Context, item T) error
}

// LinkOptions configures a link between a source and a target.
type LinkOptions struct {
	// PropagateCompletion forwards the source's outcome to the target:
	// success completes the target, a fault or cancellation faults it.
	PropagateCompletion bool
}

// Source is a block that emits items to linked targets.
type Source[T any] interface {
	Block
	// LinkTo forwards every output item to target.
	LinkTo(target Target[T], opts LinkOptions)
	// LinkToFiltered forwards the output items admitted by filter to target.
	LinkToFiltered(target Target[T], opts LinkOptions, filter func(T) bool)
}

// Propagator is a block that accepts In items and emits Out items.
type Propagator[In, Out any] interface {
	Target[In]
	Source[Out]
}

// Named is implemented by blocks that carry a display name.
type Named interface {
	Name() string
}
