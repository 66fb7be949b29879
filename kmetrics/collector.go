// Package kmetrics exposes kflow buffer depths and unmatched item counts as
// Prometheus metrics.
package kmetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/birdayz/kflow"
)

// Observed is a flow whose buffer depth is collected.
type Observed interface {
	Name() string
	BufferStatus() (in, out int)
}

// unmatchedSource is implemented by kflow.IOFlow.
type unmatchedSource interface {
	UnmatchedStats() *kflow.Stats
}

// Collector is a prometheus.Collector reading the watched flows on every scrape.
type Collector struct {
	buffered  *prometheus.Desc
	unmatched *prometheus.Desc

	mu    sync.RWMutex
	flows []Observed
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		buffered: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "flow", "buffered_items"),
			"Number of items queued in the blocks of a flow",
			[]string{"flow", "direction"}, nil,
		),
		unmatched: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "flow", "unmatched_items_total"),
			"Number of output items no routing predicate matched, by type",
			[]string{"flow", "type"}, nil,
		),
	}
}

// Watch adds flows to the collected set.
func (c *Collector) Watch(flows ...Observed) {
	c.mu.Lock()
	c.flows = append(c.flows, flows...)
	c.mu.Unlock()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buffered
	ch <- c.unmatched
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	flows := c.flows
	c.mu.RUnlock()

	for _, f := range flows {
		in, out := f.BufferStatus()
		ch <- prometheus.MustNewConstMetric(c.buffered, prometheus.GaugeValue, float64(in), f.Name(), "in")
		ch <- prometheus.MustNewConstMetric(c.buffered, prometheus.GaugeValue, float64(out), f.Name(), "out")

		u, ok := f.(unmatchedSource)
		if !ok {
			continue
		}
		for _, tc := range u.UnmatchedStats().Snapshot() {
			typ := "<nil>"
			if tc.Type != nil {
				typ = tc.Type.String()
			}
			ch <- prometheus.MustNewConstMetric(c.unmatched, prometheus.CounterValue, float64(tc.Count), f.Name(), typ)
		}
	}
}
