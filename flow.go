package kflow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/birdayz/kflow/internal/naming"
	"github.com/birdayz/kflow/internal/registry"
	"github.com/birdayz/kflow/kblock"
)

// Flow is the untyped node of a composition tree. It owns a set of children,
// aggregates their completions into one and propagates faults into them.
//
// Children, post-completion tasks and cancel funcs are normally registered
// during setup, before any data flows. The completion is computed on first
// access to Completion and never changes afterwards.
type Flow struct {
	name string
	log  logr.Logger
	cfg  config

	children  registry.List[*child]
	postTasks registry.List[func(context.Context) error]
	cancels   registry.List[context.CancelFunc]

	// ctx is handed to post-completion tasks and is canceled by Fault.
	ctx    context.Context
	cancel context.CancelCauseFunc

	start      sync.Once
	completion *kblock.Completion
	faulted    atomic.Bool

	mu        sync.Mutex
	failure   *kblock.Outcome
	upstreams int
}

var _ Unit = (*Flow)(nil)

// NewFlow creates an empty flow.
func NewFlow(opts ...Option) *Flow {
	return newFlow("Flow", opts)
}

func newFlow(tag string, opts []Option) *Flow {
	cfg := newConfig(tag, opts)
	name := cfg.name
	if name == "" {
		name = naming.Next(cfg.tag)
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Flow{
		name:       name,
		log:        cfg.log.WithValues("flow", name),
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		completion: kblock.NewCompletion(),
	}
}

func (f *Flow) base() *Flow {
	return f
}

// Name returns the display name.
func (f *Flow) Name() string {
	return f.name
}

func (f *Flow) String() string {
	return f.name
}

// RegisterChild adds u to the children of f.
//
// It fails with ErrNilUnit for a nil unit, with ErrUncomparableUnit for a leaf
// whose type cannot be compared, with ErrDuplicateChild if u is already a child
// (unless AllowDuplicate is given, which turns that case into a no-op), and
// with ErrCyclicChild if u is a flow that has f as a direct child. Deeper
// cycles are not detected and make the completion of both flows hang.
func (f *Flow) RegisterChild(u Unit, opts ...ChildOption) error {
	c, err := newChild(u, opts)
	if err != nil {
		return err
	}
	if c.flow == f || c.lists(f) {
		return fmt.Errorf("%w: %s already has %s as a child", ErrCyclicChild, c.name, f.name)
	}

	added, err := f.children.AppendIf(c, func(current []*child) (bool, error) {
		for _, existing := range current {
			if existing.id != c.id {
				continue
			}
			if c.allowDuplicate {
				return false, nil
			}
			return false, fmt.Errorf("%w: %s in %s", ErrDuplicateChild, c.name, f.name)
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	if added {
		f.log.V(1).Info("registered child", "child", c.name)
	}
	return nil
}

// RegisterPostTask adds a task that runs, concurrently with all other post
// tasks, after every child succeeded. A failing task fails the flow.
func (f *Flow) RegisterPostTask(task func(ctx context.Context) error) {
	if task == nil {
		return
	}
	f.postTasks.Append(task)
}

// RegisterCancelFunc adds a cancel func that is called when f faults or
// fails. If f already faulted, cancel is called immediately.
func (f *Flow) RegisterCancelFunc(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	f.cancels.Append(cancel)
	if f.faulted.Load() {
		cancel()
	}
}

// Children returns the registered children in registration order.
func (f *Flow) Children() []Unit {
	children := f.children.Snapshot()
	units := make([]Unit, 0, len(children))
	for _, c := range children {
		units = append(units, c.unit)
	}
	return units
}

// Blocks returns the leaf units of f, descending into nested flows.
func (f *Flow) Blocks() []Unit {
	var units []Unit
	for _, c := range f.children.Snapshot() {
		units = append(units, c.blocks()...)
	}
	return units
}

// BufferStatus returns the sum of the buffer depths of all children.
func (f *Flow) BufferStatus() (in, out int) {
	for _, c := range f.children.Snapshot() {
		ci, co := c.unit.BufferStatus()
		in += ci
		out += co
	}
	return in, out
}

// Completion returns the completion of f. The first call starts awaiting the
// children; all callers share the same completion.
func (f *Flow) Completion() *kblock.Completion {
	f.start.Do(func() {
		go f.run()
		if f.cfg.flowMonitor || f.cfg.blockMonitor {
			go f.monitor()
		}
	})
	return f.completion
}

func (f *Flow) run() {
	if err := f.awaitChildren(); err != nil {
		f.fail(kblock.Outcome{Status: kblock.StatusFaulted, Err: err})
		return
	}
	if o := f.firstFailure(); o != nil {
		f.fail(*o)
		return
	}

	if err := f.runPostTasks(); err != nil {
		status := kblock.StatusFaulted
		if kblock.IsCanceled(err) {
			status = kblock.StatusCanceled
		}
		f.fail(kblock.Outcome{Status: status, Err: err})
		return
	}

	if f.cfg.cleanup != nil {
		f.cfg.cleanup()
	}
	f.log.V(1).Info("completed")
	f.completion.Succeed()
	f.cancel(nil)
}

// awaitChildren waits for every child, including children registered while
// waiting. The first child failure faults the remaining children.
func (f *Flow) awaitChildren() error {
	awaited := 0
	for {
		children := f.children.Snapshot()
		if len(children) == 0 {
			return ErrNoChildRegistered
		}
		if awaited == len(children) {
			return nil
		}

		var g errgroup.Group
		for _, c := range children[awaited:] {
			g.Go(func() error {
				completion := c.Completion()
				<-completion.Done()
				if o := completion.Outcome(); o.Failed() {
					f.childFailed(c, o)
					return o.Err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			f.log.V(1).Info("children failed", "error", err.Error())
		}
		awaited = len(children)
	}
}

func (f *Flow) childFailed(c *child, o kblock.Outcome) {
	f.mu.Lock()
	first := f.failure == nil
	if first {
		f.failure = &o
	}
	f.mu.Unlock()
	if !first {
		return
	}
	f.log.Error(o.Err, "child failed", "child", c.name, "status", o.Status.String())
	f.Fault(o.Err)
}

func (f *Flow) firstFailure() *kblock.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failure
}

func (f *Flow) runPostTasks() error {
	tasks := f.postTasks.Snapshot()
	if len(tasks) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	for _, task := range tasks {
		g.Go(func() error {
			if err := task(f.ctx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (f *Flow) fail(o kblock.Outcome) {
	f.faulted.Store(true)
	f.signalCancels()
	f.cancel(o.Err)
	f.log.Error(o.Err, "flow failed", "status", o.Status.String())
	f.completion.Resolve(o)
}

func (f *Flow) signalCancels() {
	for _, cancel := range f.cancels.Snapshot() {
		cancel()
	}
}

// Fault faults every child of f that has not finished yet and calls every
// registered cancel func.
//
// A PropagatedError is forwarded unchanged. Any other error is wrapped once,
// as KindSiblingCanceled if it is a cancellation and as KindSiblingFailed
// otherwise.
func (f *Flow) Fault(err error) {
	if err == nil {
		err = kblock.ErrUnknownFault
	}
	f.faulted.Store(true)
	f.cancel(err)
	f.signalCancels()

	forwarded := siblingError(f.name, err)
	for _, c := range f.children.Snapshot() {
		if c.unit.Completion().IsDone() {
			continue
		}
		f.log.V(1).Info("faulting child", "child", c.name, "error", forwarded.Error())
		c.unit.Fault(forwarded)
	}
}

// addUpstream registers a bridge feeding the input of f.
func (f *Flow) addUpstream() {
	f.mu.Lock()
	f.upstreams++
	f.mu.Unlock()
}

// releaseUpstream reports whether the last registered bridge finished.
func (f *Flow) releaseUpstream() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upstreams--
	return f.upstreams <= 0
}
