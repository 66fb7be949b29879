// Package registry provides the append-only collections a flow uses to track
// its children, post-completion tasks and cancellation handles.
package registry

import (
	"sync"
	"sync/atomic"
)

// List is an append-only list with copy-on-write semantics.
//
// Writers are serialized and publish a fresh immutable snapshot on every
// append. Readers load the current snapshot without locking, so a concurrent
// reader never observes a torn state and never waits for a writer.
// The zero value is ready to use.
type List[T any] struct {
	mu   sync.Mutex
	snap atomic.Pointer[[]T]
}

// Snapshot returns the current contents. The returned slice must not be modified.
func (l *List[T]) Snapshot() []T {
	if p := l.snap.Load(); p != nil {
		return *p
	}
	return nil
}

// Len returns the number of entries in the current snapshot.
func (l *List[T]) Len() int {
	return len(l.Snapshot())
}

// Append adds v to the end of the list.
func (l *List[T]) Append(v T) {
	_, _ = l.AppendIf(v, nil)
}

// AppendIf runs check against the current snapshot and appends v only if
// check returns (true, nil). Check and append happen atomically with respect
// to other writers. A nil check always appends.
//
// The returned bool reports whether v was appended; the error is whatever
// check returned.
func (l *List[T]) AppendIf(v T, check func(current []T) (bool, error)) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.Snapshot()
	if check != nil {
		ok, err := check(current)
		if err != nil || !ok {
			return false, err
		}
	}

	next := make([]T, len(current), len(current)+1)
	copy(next, current)
	next = append(next, v)
	l.snap.Store(&next)
	return true, nil
}
