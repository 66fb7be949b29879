package kblock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Status is the state of a Completion.
type Status int

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusFaulted
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFaulted:
		return "faulted"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a block or flow.
// Err is nil unless Status is StatusFaulted or StatusCanceled.
type Outcome struct {
	Status Status
	Err    error
}

// Failed reports whether the outcome is faulted or canceled.
func (o Outcome) Failed() bool {
	return o.Status == StatusFaulted || o.Status == StatusCanceled
}

// ErrUnknownFault is used when a block is faulted with a nil error.
var ErrUnknownFault = errors.New("kblock: fault without error")

// Completion is a one-shot result slot that broadcasts to any number of
// waiters. The first call to Succeed, Fault or Cancel wins; later calls are
// no-ops and report false.
type Completion struct {
	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

// NewCompletion creates a pending Completion.
func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Succeed resolves the completion as succeeded.
func (c *Completion) Succeed() bool {
	return c.resolve(Outcome{Status: StatusSucceeded})
}

// Fault resolves the completion as faulted with err.
func (c *Completion) Fault(err error) bool {
	if err == nil {
		err = ErrUnknownFault
	}
	return c.resolve(Outcome{Status: StatusFaulted, Err: err})
}

// Cancel resolves the completion as canceled. The stored error always wraps
// context.Canceled; a cause that does not is wrapped alongside it.
func (c *Completion) Cancel(cause error) bool {
	switch {
	case cause == nil:
		cause = context.Canceled
	case !errors.Is(cause, context.Canceled):
		cause = fmt.Errorf("%w: %w", context.Canceled, cause)
	}
	return c.resolve(Outcome{Status: StatusCanceled, Err: cause})
}

// Resolve resolves the completion with an arbitrary failed or succeeded outcome.
func (c *Completion) Resolve(o Outcome) bool {
	switch o.Status {
	case StatusFaulted:
		return c.Fault(o.Err)
	case StatusCanceled:
		return c.Cancel(o.Err)
	case StatusSucceeded:
		return c.Succeed()
	default:
		return false
	}
}

func (c *Completion) resolve(o Outcome) bool {
	resolved := false
	c.once.Do(func() {
		c.outcome = o
		close(c.done)
		resolved = true
	})
	return resolved
}

// Done returns a channel that is closed once the completion is resolved.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// IsDone reports whether the completion is resolved.
func (c *Completion) IsDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Outcome returns the resolved outcome, or a pending outcome if unresolved.
func (c *Completion) Outcome() Outcome {
	select {
	case <-c.done:
		return c.outcome
	default:
		return Outcome{Status: StatusPending}
	}
}

// Err returns the error of a failed completion and nil otherwise.
func (c *Completion) Err() error {
	return c.Outcome().Err
}

// Wait blocks until the completion is resolved or ctx is done.
// It returns the completion's error, or ctx.Err() if ctx finished first.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.outcome.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WhenAll returns a completion that resolves once every given completion has
// resolved. It is faulted if any input faulted (the first fault in argument
// order wins), otherwise canceled if any input was canceled, otherwise
// succeeded.
func WhenAll(cs ...*Completion) *Completion {
	joint := NewCompletion()
	go func() {
		var faulted, canceled *Outcome
		for _, c := range cs {
			<-c.Done()
			o := c.Outcome()
			switch {
			case o.Status == StatusFaulted && faulted == nil:
				faulted = &o
			case o.Status == StatusCanceled && canceled == nil:
				canceled = &o
			}
		}
		switch {
		case faulted != nil:
			joint.Fault(faulted.Err)
		case canceled != nil:
			joint.Cancel(canceled.Err)
		default:
			joint.Succeed()
		}
	}()
	return joint
}

// IsCanceled reports whether err represents a cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
