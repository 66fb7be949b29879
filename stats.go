package kflow

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// Stats counts items by their dynamic type.
type Stats struct {
	mu     sync.Mutex
	counts map[reflect.Type]int64
}

// TypeCount is the number of recorded items of one type.
type TypeCount struct {
	Type  reflect.Type
	Count int64
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{counts: make(map[reflect.Type]int64)}
}

// Record counts item under its dynamic type. A nil item is counted under a nil type.
func (s *Stats) Record(item any) {
	t := reflect.TypeOf(item)
	s.mu.Lock()
	s.counts[t]++
	s.mu.Unlock()
}

// Count returns the number of recorded items of type t.
func (s *Stats) Count(t reflect.Type) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[t]
}

// Total returns the number of recorded items.
func (s *Stats) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, n := range s.counts {
		total += n
	}
	return total
}

// Snapshot returns the counts ordered by type name.
func (s *Stats) Snapshot() []TypeCount {
	s.mu.Lock()
	snap := make([]TypeCount, 0, len(s.counts))
	for t, n := range s.counts {
		snap = append(snap, TypeCount{Type: t, Count: n})
	}
	s.mu.Unlock()

	slices.SortFunc(snap, func(a, b TypeCount) int {
		return strings.Compare(typeName(a.Type), typeName(b.Type))
	})
	return snap
}

func (s *Stats) String() string {
	var sb strings.Builder
	for i, tc := range s.Snapshot() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %d", typeName(tc.Type), tc.Count)
	}
	return sb.String()
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
