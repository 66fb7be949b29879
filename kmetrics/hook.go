package kmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/birdayz/kflow"
)

// NewBufferGaugeVec creates the gauge vector GaugeHook writes to.
func NewBufferGaugeVec(namespace string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "flow",
		Name:      "monitored_buffered_items",
		Help:      "Number of queued items observed by the flow monitor",
	}, []string{"flow", "direction"})
}

// GaugeHook returns a monitor hook that publishes the flow's buffer depth to
// vec on every tick. Use it with kflow.WithMonitorHook.
func GaugeHook(vec *prometheus.GaugeVec) func(*kflow.Flow) {
	return func(f *kflow.Flow) {
		in, out := f.BufferStatus()
		vec.WithLabelValues(f.Name(), "in").Set(float64(in))
		vec.WithLabelValues(f.Name(), "out").Set(float64(out))
	}
}
