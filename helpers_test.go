package kflow

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/birdayz/kflow/kblock"
)

func waitDone(t *testing.T, c *kblock.Completion) kblock.Outcome {
	t.Helper()
	select {
	case <-c.Done():
		return c.Outcome()
	case <-time.After(5 * time.Second):
		t.Fatal("completion did not resolve in time")
		return kblock.Outcome{}
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

// fakeUnit is a leaf whose completion is resolved by the test.
type fakeUnit struct {
	completion *kblock.Completion
	in, out    int

	mu     sync.Mutex
	faults []error
}

func newFakeUnit() *fakeUnit {
	return &fakeUnit{completion: kblock.NewCompletion()}
}

func (u *fakeUnit) Completion() *kblock.Completion { return u.completion }

func (u *fakeUnit) BufferStatus() (int, int) { return u.in, u.out }

func (u *fakeUnit) Fault(err error) {
	u.mu.Lock()
	u.faults = append(u.faults, err)
	u.mu.Unlock()
	u.completion.Fault(err)
}

func (u *fakeUnit) Faults() []error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.faults)
}

// collector is an action block that records every item.
type collector[T any] struct {
	*kblock.ActionBlock[T]
	mu    sync.Mutex
	items []T
}

func newCollector[T any](opts ...kblock.Option) *collector[T] {
	c := &collector[T]{}
	c.ActionBlock = kblock.NewActionBlock(func(_ context.Context, item T) error {
		c.mu.Lock()
		c.items = append(c.items, item)
		c.mu.Unlock()
		return nil
	}, opts...)
	return c
}

func (c *collector[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// collectorFlow returns a flow around a new collector.
func collectorFlow[T any](t *testing.T, opts ...Option) (*InFlow[T], *collector[T]) {
	t.Helper()
	c := newCollector[T]()
	f, err := FromTarget[T](c, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return f, c
}

// bufferFlow returns an IOFlow around a new buffer block.
func bufferFlow[T any](t *testing.T, opts ...Option) *IOFlow[T, T] {
	t.Helper()
	f, err := FromPropagator[T, T](kblock.NewBufferBlock[T](), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// logSink captures log lines written through a funcr logger.
type logSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *logSink) logger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		s.mu.Lock()
		s.lines = append(s.lines, prefix+" "+args)
		s.mu.Unlock()
	}, funcr.Options{Verbosity: 1})
}

func (s *logSink) count(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, line := range s.lines {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

func seqOf[T any](items ...T) iter.Seq[T] {
	return slices.Values(items)
}
