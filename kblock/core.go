package kblock

import (
	"context"
	"sync"

	"github.com/go-logr/logr"

	"github.com/birdayz/kflow/internal/naming"
)

// core holds the lifecycle shared by every block: a cancelable context, the
// first fault and the completion that is resolved once all goroutines of the
// block have returned.
type core struct {
	name string
	log  logr.Logger

	ctx    context.Context
	cancel context.CancelCauseFunc

	mu       sync.Mutex
	faultErr error

	wg         sync.WaitGroup
	abort      func()
	completion *Completion
}

func newCore(o options, tag string, abort func()) *core {
	name := o.name
	if name == "" {
		name = naming.Next(tag)
	}
	ctx, cancel := context.WithCancelCause(o.ctx)
	c := &core{
		name:       name,
		log:        o.log.WithName(name),
		ctx:        ctx,
		cancel:     cancel,
		abort:      abort,
		completion: NewCompletion(),
	}
	context.AfterFunc(ctx, abort)
	return c
}

func (c *core) goFn(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// finish resolves the completion once every goroutine started with goFn has
// returned. All goFn calls must happen before finish.
func (c *core) finish() {
	go func() {
		c.wg.Wait()
		if c.declining() {
			c.abort()
		}

		c.mu.Lock()
		faultErr := c.faultErr
		c.mu.Unlock()

		switch {
		case faultErr != nil:
			c.log.V(1).Info("faulted", "error", faultErr.Error())
			c.completion.Fault(faultErr)
		case c.ctx.Err() != nil:
			c.log.V(1).Info("canceled")
			c.completion.Cancel(context.Cause(c.ctx))
		default:
			c.log.V(1).Info("completed")
			c.completion.Succeed()
		}
		c.cancel(nil)
	}()
}

// Name returns the display name of the block.
func (c *core) Name() string {
	return c.name
}

// Completion returns the block's completion.
func (c *core) Completion() *Completion {
	return c.completion
}

// Fault discards pending work and finishes the block in a faulted state.
// Only the first fault is recorded.
func (c *core) Fault(err error) {
	if err == nil {
		err = ErrUnknownFault
	}
	c.mu.Lock()
	if c.faultErr != nil || c.completion.IsDone() {
		c.mu.Unlock()
		return
	}
	c.faultErr = err
	c.mu.Unlock()
	c.cancel(err)
}

func (c *core) declining() bool {
	return c.ctx.Err() != nil
}
