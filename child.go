package kflow

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/birdayz/kflow/kblock"
)

// Unit is anything a Flow can own as a child: a kblock block or another flow.
type Unit interface {
	Completion() *kblock.Completion
	Fault(err error)
	BufferStatus() (in, out int)
}

// nested is implemented by every type embedding *Flow.
type nested interface {
	base() *Flow
}

// ChildOption configures a child registration.
type ChildOption func(*child)

// AllowDuplicate makes registering an already registered child a no-op
// instead of an error.
var AllowDuplicate = func() ChildOption {
	return func(c *child) {
		c.allowDuplicate = true
	}
}

// OnChildComplete sets a callback that runs when the child finishes. If the
// child succeeded and the callback returns an error, the child counts as
// faulted with that error.
var OnChildComplete = func(fn func(kblock.Outcome) error) ChildOption {
	return func(c *child) {
		c.onComplete = fn
	}
}

// child adapts a Unit for its owning flow.
type child struct {
	unit           Unit
	id             any
	flow           *Flow // nil for leaf blocks
	name           string
	onComplete     func(kblock.Outcome) error
	allowDuplicate bool

	once       sync.Once
	completion *kblock.Completion
}

func newChild(u Unit, opts []ChildOption) (*child, error) {
	if isNil(u) {
		return nil, ErrNilUnit
	}
	c := &child{unit: u}
	for _, opt := range opts {
		opt(c)
	}

	switch v := u.(type) {
	case nested:
		c.flow = v.base()
		c.id = c.flow
		c.name = c.flow.Name()
	default:
		if !reflect.TypeOf(u).Comparable() {
			return nil, fmt.Errorf("%w: %T", ErrUncomparableUnit, u)
		}
		c.id = u
		c.name = unitName(u)
	}
	return c, nil
}

func isNil(u Unit) bool {
	if u == nil {
		return true
	}
	v := reflect.ValueOf(u)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func unitName(u Unit) string {
	if n, ok := u.(kblock.Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", u)
}

// Completion returns the unit's completion, adapted by the OnChildComplete
// callback if one was set.
func (c *child) Completion() *kblock.Completion {
	c.once.Do(func() {
		inner := c.unit.Completion()
		if c.onComplete == nil {
			c.completion = inner
			return
		}
		c.completion = kblock.NewCompletion()
		go func() {
			<-inner.Done()
			o := inner.Outcome()
			if err := c.onComplete(o); err != nil && o.Status == kblock.StatusSucceeded {
				c.completion.Fault(err)
				return
			}
			c.completion.Resolve(o)
		}()
	})
	return c.completion
}

// blocks returns the transitive leaf units below c.
func (c *child) blocks() []Unit {
	if c.flow == nil {
		return []Unit{c.unit}
	}
	return c.flow.Blocks()
}

// lists reports whether c is a nested flow that has f as a direct child.
func (c *child) lists(f *Flow) bool {
	if c.flow == nil {
		return false
	}
	for _, gc := range c.flow.children.Snapshot() {
		if gc.id == any(f) {
			return true
		}
	}
	return false
}
