package kflow

import (
	"fmt"
	"sync"

	"github.com/birdayz/kflow/kblock"
)

// Receiver is a flow that accepts items of type T.
type Receiver[T any] interface {
	Input() kblock.Target[T]
	Completion() *kblock.Completion
	Fault(err error)
}

var (
	_ Receiver[int] = (*InFlow[int])(nil)
	_ Receiver[int] = (*IOFlow[int, string])(nil)
)

// IOFlow is a Flow with a typed input and a typed output. Its output is
// routed to other flows with LinkTo, TransformAndLink and the functions
// built on it.
type IOFlow[In, Out any] struct {
	*InFlow[In]
	output kblock.Source[Out]

	routeMu    sync.Mutex
	predicates []func(Out) bool
	frozen     bool
	unmatched  *Stats
}

// NewIOFlow creates a flow with the given input and output. Registering the
// children, including the ones that own input and output, is up to the caller.
func NewIOFlow[In, Out any](input kblock.Target[In], output kblock.Source[Out], opts ...Option) *IOFlow[In, Out] {
	return &IOFlow[In, Out]{
		InFlow:    newInFlow(input, newFlow("IOFlow", opts)),
		output:    output,
		unmatched: NewStats(),
	}
}

// FromPropagator creates a flow that consists of p alone.
func FromPropagator[In, Out any](p kblock.Propagator[In, Out], opts ...Option) (*IOFlow[In, Out], error) {
	f := NewIOFlow[In, Out](p, p, opts...)
	if err := f.RegisterChild(p); err != nil {
		return nil, err
	}
	return f, nil
}

// Output returns the output of the flow.
func (f *IOFlow[In, Out]) Output() kblock.Source[Out] {
	return f.output
}

// UnmatchedStats returns the counts of the items discarded by
// LinkUnmatchedToSink.
func (f *IOFlow[In, Out]) UnmatchedStats() *Stats {
	return f.unmatched
}

// LinkTo forwards every output item to target.
//
// Completion is negotiated instead of propagated: the input of target is
// completed once the output and f both succeeded, and target is faulted if
// either failed. If target fails first, f is faulted.
func (f *IOFlow[In, Out]) LinkTo(target Receiver[Out]) {
	bridge(f.Flow, f.output, target)
}

// bridge links src, which belongs to owner, to the input of target and
// couples the failures of owner and target.
//
// Children of owner and target must be registered before bridging. If target
// is a flow fed by several bridges, its input is completed when the last of
// them succeeded.
func bridge[T any](owner *Flow, src kblock.Source[T], target Receiver[T]) {
	src.LinkTo(target.Input(), kblock.LinkOptions{})

	var targetFlow *Flow
	if n, ok := target.(nested); ok {
		targetFlow = n.base()
		targetFlow.addUpstream()
	}
	targetName := displayName(target)
	owner.log.V(1).Info("bridged", "target", targetName)

	joint := kblock.WhenAll(src.Completion(), owner.Completion())
	go func() {
		<-joint.Done()
		if target.Completion().IsDone() {
			return
		}
		if o := joint.Outcome(); o.Failed() {
			target.Fault(linkedError(owner.name, o))
			return
		}
		if targetFlow == nil || targetFlow.releaseUpstream() {
			owner.log.V(1).Info("completing linked input", "target", targetName)
			target.Input().Complete()
		}
	}()

	go func() {
		select {
		case <-target.Completion().Done():
		case <-owner.Completion().Done():
			return
		}
		if owner.Completion().IsDone() {
			return
		}
		if o := target.Completion().Outcome(); o.Failed() {
			owner.Fault(linkedError(targetName, o))
		}
	}()
}

func displayName(v any) string {
	if n, ok := v.(kblock.Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", v)
}
