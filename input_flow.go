package kflow

import (
	"context"
	"iter"

	"github.com/birdayz/kflow/kblock"
)

// InFlow is a Flow with a typed input. Accept and Complete forward to the
// input, so an InFlow can itself be linked to as a kblock.Target.
type InFlow[In any] struct {
	*Flow
	input kblock.Target[In]
}

var _ kblock.Target[int] = (*InFlow[int])(nil)

// NewInFlow creates a flow whose input is input. Registering the children,
// including the one that owns input, is up to the caller.
func NewInFlow[In any](input kblock.Target[In], opts ...Option) *InFlow[In] {
	return newInFlow(input, newFlow("InFlow", opts))
}

func newInFlow[In any](input kblock.Target[In], base *Flow) *InFlow[In] {
	return &InFlow[In]{Flow: base, input: input}
}

// FromTarget creates a flow that consists of target alone.
func FromTarget[In any](target kblock.Target[In], opts ...Option) (*InFlow[In], error) {
	f := NewInFlow(target, opts...)
	if err := f.RegisterChild(target); err != nil {
		return nil, err
	}
	return f, nil
}

// Input returns the input of the flow.
func (f *InFlow[In]) Input() kblock.Target[In] {
	return f.input
}

// Accept posts item to the input.
func (f *InFlow[In]) Accept(ctx context.Context, item In) error {
	return f.input.Accept(ctx, item)
}

// Complete signals the input that no more items will arrive.
func (f *InFlow[In]) Complete() {
	f.input.Complete()
}

// DrainFrom posts every item of seq to the input in the background. The
// returned completion succeeds once seq is exhausted, is canceled if ctx is
// canceled or the flow faults, and faults if the input rejects an item.
// The input is not completed afterwards; see DrainAndComplete.
func (f *InFlow[In]) DrainFrom(ctx context.Context, seq iter.Seq[In]) *kblock.Completion {
	ctx, cancel := context.WithCancel(ctx)
	f.RegisterCancelFunc(cancel)

	done := kblock.NewCompletion()
	go func() {
		defer cancel()
		posted := 0
		for item := range seq {
			if ctx.Err() != nil {
				break
			}
			if err := f.input.Accept(ctx, item); err != nil {
				if ctx.Err() != nil {
					break
				}
				f.log.Error(err, "drain failed", "count", posted)
				done.Fault(err)
				return
			}
			posted++
		}
		if ctx.Err() != nil {
			f.log.Info("drain canceled", "count", posted)
			done.Cancel(context.Cause(ctx))
			return
		}
		f.log.Info("drain finished", "count", posted)
		done.Succeed()
	}()
	return done
}

// DrainAndComplete is DrainFrom followed by Complete once seq was drained
// successfully.
func (f *InFlow[In]) DrainAndComplete(ctx context.Context, seq iter.Seq[In]) *kblock.Completion {
	drain := f.DrainFrom(ctx, seq)
	done := kblock.NewCompletion()
	go func() {
		<-drain.Done()
		o := drain.Outcome()
		if o.Status == kblock.StatusSucceeded {
			f.Complete()
		}
		done.Resolve(o)
	}()
	return done
}

// LinkFrom links src to the input. The outcome of src propagates to the input.
func (f *InFlow[In]) LinkFrom(src kblock.Source[In]) {
	src.LinkTo(f.input, kblock.LinkOptions{PropagateCompletion: true})
}
