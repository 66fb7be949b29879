// Package naming hands out process-wide display names of the form "{Tag}{N}".
package naming

import (
	"strconv"
	"sync"
)

// Registry maps a type tag to a monotonically increasing counter.
type Registry struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]int)}
}

// Next returns the next name for tag. The first name for a tag ends in 1.
func (r *Registry) Next(tag string) string {
	r.mu.Lock()
	r.counters[tag]++
	n := r.counters[tag]
	r.mu.Unlock()
	return tag + strconv.Itoa(n)
}

var global = NewRegistry()

// Next returns the next name for tag from the process-wide registry.
func Next(tag string) string {
	return global.Next(tag)
}
