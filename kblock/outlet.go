package kblock

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/go-logr/logr"
)

var errAborted = errors.New("kblock: outlet aborted")

type link[T any] struct {
	target    Target[T]
	filter    func(T) bool
	propagate bool
}

func (l *link[T]) admits(item T) bool {
	return l.filter == nil || l.filter(item)
}

// outlet buffers produced items and offers each of them to every link that
// admits it. An item no link admits stays at the head until the set of links
// changes.
type outlet[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []T
	capacity int
	closed   bool
	aborted  bool
	links    []*link[T]
	version  uint64

	log logr.Logger
}

func newOutlet[T any](capacity int, log logr.Logger) *outlet[T] {
	o := &outlet[T]{capacity: capacity, log: log}
	o.cond = sync.NewCond(&o.mu)
	return o
}

func (o *outlet[T]) push(ctx context.Context, item T) error {
	stop := context.AfterFunc(ctx, o.wake)
	defer stop()

	o.mu.Lock()
	defer o.mu.Unlock()
	for {
		if o.aborted {
			return errAborted
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if o.capacity <= 0 || len(o.items) < o.capacity {
			o.items = append(o.items, item)
			o.cond.Broadcast()
			return nil
		}
		o.cond.Wait()
	}
}

func (o *outlet[T]) addLink(l *link[T]) {
	o.mu.Lock()
	o.links = append(o.links, l)
	o.version++
	o.cond.Broadcast()
	o.mu.Unlock()
}

func (o *outlet[T]) removeLink(l *link[T]) {
	o.mu.Lock()
	if i := slices.Index(o.links, l); i >= 0 {
		o.links = slices.Delete(o.links, i, i+1)
		o.version++
		o.cond.Broadcast()
	}
	o.mu.Unlock()
}

// dispatch delivers items until the outlet is closed and drained (nil) or
// aborted (errAborted or the ctx error).
func (o *outlet[T]) dispatch(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var zero T
	for {
		for !o.aborted && !o.closed && len(o.items) == 0 {
			o.cond.Wait()
		}
		if o.aborted {
			return errAborted
		}
		if len(o.items) == 0 {
			return nil
		}

		item, links, version := o.items[0], slices.Clone(o.links), o.version
		o.mu.Unlock()
		delivered, err := o.deliver(ctx, item, links)
		o.mu.Lock()

		if err != nil {
			return err
		}
		if o.aborted {
			return errAborted
		}
		if delivered {
			o.items[0] = zero
			o.items = o.items[1:]
			o.cond.Broadcast()
			continue
		}
		for !o.aborted && o.version == version {
			o.cond.Wait()
		}
	}
}

func (o *outlet[T]) deliver(ctx context.Context, item T, links []*link[T]) (bool, error) {
	delivered := false
	for _, l := range links {
		if !l.admits(item) {
			continue
		}
		if err := l.target.Accept(ctx, item); err != nil {
			if ctx.Err() != nil {
				return delivered, ctx.Err()
			}
			o.log.V(1).Info("unlinking target that declined an item", "error", err.Error())
			o.removeLink(l)
			continue
		}
		delivered = true
	}
	return delivered, nil
}

func (o *outlet[T]) wake() {
	o.mu.Lock()
	o.cond.Broadcast()
	o.mu.Unlock()
}

func (o *outlet[T]) close() {
	o.mu.Lock()
	o.closed = true
	o.cond.Broadcast()
	o.mu.Unlock()
}

func (o *outlet[T]) abort() {
	o.mu.Lock()
	o.aborted = true
	o.items = nil
	o.cond.Broadcast()
	o.mu.Unlock()
}

func (o *outlet[T]) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.items)
}
