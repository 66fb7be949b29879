package kflow

import (
	"errors"
	"fmt"

	"github.com/birdayz/kflow/kblock"
)

var (
	// ErrNoChildRegistered is the outcome of a flow whose completion was
	// requested before any child was registered.
	ErrNoChildRegistered = errors.New("kflow: no child registered")

	ErrNilUnit          = errors.New("kflow: nil unit")
	ErrUncomparableUnit = errors.New("kflow: unit is not comparable")
	ErrDuplicateChild   = errors.New("kflow: child already registered")
	ErrCyclicChild      = errors.New("kflow: cyclic child registration")
	ErrRoutingFrozen    = errors.New("kflow: routing is frozen by an unmatched link")
)

// Kind classifies a failure.
type Kind int

const (
	// KindFailure is an original fault.
	KindFailure Kind = iota
	// KindCancel is an original cancellation.
	KindCancel
	KindSiblingFailed
	KindSiblingCanceled
	KindLinkedFailed
	KindLinkedCanceled
)

func (k Kind) String() string {
	switch k {
	case KindFailure:
		return "failure"
	case KindCancel:
		return "cancel"
	case KindSiblingFailed:
		return "sibling unit failed"
	case KindSiblingCanceled:
		return "sibling unit canceled"
	case KindLinkedFailed:
		return "linked dataflow failed"
	case KindLinkedCanceled:
		return "linked dataflow canceled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// PropagatedError is a fault forwarded by the engine to units that were not
// its original cause. It is forwarded unchanged once created, so its depth
// stays constant however far a fault cascades.
type PropagatedError struct {
	Kind Kind
	// Origin is the name of the flow that created the error.
	Origin string
	Cause  error
}

func (e *PropagatedError) Error() string {
	return fmt.Sprintf("%s in %s: %v", e.Kind, e.Origin, e.Cause)
}

func (e *PropagatedError) Unwrap() error {
	return e.Cause
}

// IsPropagated reports whether err carries a PropagatedError.
func IsPropagated(err error) bool {
	var pe *PropagatedError
	return errors.As(err, &pe)
}

// Classify returns the kind of err. Errors that were not forwarded by the
// engine are KindCancel if they wrap context.Canceled and KindFailure
// otherwise.
func Classify(err error) Kind {
	var pe *PropagatedError
	switch {
	case errors.As(err, &pe):
		return pe.Kind
	case kblock.IsCanceled(err):
		return KindCancel
	default:
		return KindFailure
	}
}

// siblingError wraps err for forwarding to the children of origin.
func siblingError(origin string, err error) error {
	if IsPropagated(err) {
		return err
	}
	kind := KindSiblingFailed
	if kblock.IsCanceled(err) {
		kind = KindSiblingCanceled
	}
	return &PropagatedError{Kind: kind, Origin: origin, Cause: err}
}

// linkedError wraps the unhealthy outcome o of a linked flow.
func linkedError(origin string, o kblock.Outcome) error {
	kind := KindLinkedFailed
	if o.Status == kblock.StatusCanceled {
		kind = KindLinkedCanceled
	}
	return &PropagatedError{Kind: kind, Origin: origin, Cause: o.Err}
}
