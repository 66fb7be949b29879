package kflow

import (
	"context"

	"github.com/birdayz/kflow/kblock"
)

func (f *IOFlow[In, Out]) addPredicate(p func(Out) bool) error {
	f.routeMu.Lock()
	defer f.routeMu.Unlock()
	if f.frozen {
		return ErrRoutingFrozen
	}
	f.predicates = append(f.predicates, p)
	return nil
}

// freeze stops further predicates from being added and returns a filter
// admitting the items no predicate matches.
func (f *IOFlow[In, Out]) freeze() (func(Out) bool, error) {
	f.routeMu.Lock()
	defer f.routeMu.Unlock()
	if f.frozen {
		return nil, ErrRoutingFrozen
	}
	f.frozen = true
	predicates := f.predicates
	return func(item Out) bool {
		for _, p := range predicates {
			if p(item) {
				return false
			}
		}
		return true
	}, nil
}

// Predicates returns the number of registered routing predicates.
func (f *IOFlow[In, Out]) Predicates() int {
	f.routeMu.Lock()
	defer f.routeMu.Unlock()
	return len(f.predicates)
}

// Frozen reports whether an unmatched link was created.
func (f *IOFlow[In, Out]) Frozen() bool {
	f.routeMu.Lock()
	defer f.routeMu.Unlock()
	return f.frozen
}

// route links the output items admitted by filter to via, registers via as a
// child of f and bridges it to target.
func route[In, Out, T any](f *IOFlow[In, Out], via kblock.Propagator[Out, T], filter func(Out) bool, target Receiver[T]) error {
	if err := f.RegisterChild(via); err != nil {
		return err
	}
	f.output.LinkToFiltered(via, kblock.LinkOptions{PropagateCompletion: true}, filter)
	bridge(f.Flow, kblock.Source[T](via), target)
	return nil
}

// TransformAndLink forwards the output items of f admitted by filter to
// target, converted by transform. An item admitted by several filters is
// forwarded to each of them. A nil filter admits every item.
//
// It fails with ErrRoutingFrozen after LinkUnmatchedToSink or LinkUnmatchedTo.
func TransformAndLink[In, Out, T any](f *IOFlow[In, Out], target Receiver[T], transform func(Out) T, filter func(Out) bool) error {
	if filter == nil {
		filter = func(Out) bool { return true }
	}
	if err := f.addPredicate(filter); err != nil {
		return err
	}
	converter := kblock.NewTransformBlock(func(_ context.Context, item Out) (T, error) {
		return transform(item), nil
	}, kblock.WithLogr(f.log))
	return route[In, Out, T](f, converter, filter, target)
}

// TransformAndLinkAll forwards every output item of f to target, converted by transform.
func TransformAndLinkAll[In, Out, T any](f *IOFlow[In, Out], target Receiver[T], transform func(Out) T) error {
	return TransformAndLink(f, target, transform, nil)
}

// TransformSubTypeAndLink forwards the output items of f whose dynamic type
// is S to target, converted by project.
func TransformSubTypeAndLink[In, Out, S, T any](f *IOFlow[In, Out], target Receiver[T], project func(S) T) error {
	return TransformAndLink(f, target,
		func(item Out) T {
			return project(any(item).(S))
		},
		func(item Out) bool {
			_, ok := any(item).(S)
			return ok
		},
	)
}

// LinkSubTypeTo forwards the output items of f whose dynamic type is S to target.
func LinkSubTypeTo[In, Out, S any](f *IOFlow[In, Out], target Receiver[S]) error {
	return TransformSubTypeAndLink(f, target, func(item S) S { return item })
}

// LinkUnmatchedToSink discards the output items that no filter registered
// with TransformAndLink admits and counts them in UnmatchedStats. Routing is
// frozen afterwards.
func (f *IOFlow[In, Out]) LinkUnmatchedToSink() error {
	unmatched, err := f.freeze()
	if err != nil {
		return err
	}
	sink := kblock.NewActionBlock(func(_ context.Context, item Out) error {
		f.unmatched.Record(item)
		return nil
	}, kblock.WithLogr(f.log))
	if err := f.RegisterChild(sink); err != nil {
		return err
	}
	f.output.LinkToFiltered(sink, kblock.LinkOptions{PropagateCompletion: true}, unmatched)
	f.log.V(1).Info("linked unmatched items to sink")
	return nil
}

// LinkUnmatchedTo forwards the output items that no filter registered with
// TransformAndLink admits to target. Routing is frozen afterwards.
func (f *IOFlow[In, Out]) LinkUnmatchedTo(target Receiver[Out]) error {
	unmatched, err := f.freeze()
	if err != nil {
		return err
	}
	return route[In, Out, Out](f, kblock.NewBufferBlock[Out](kblock.WithLogr(f.log)), unmatched, target)
}
