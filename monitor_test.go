package kflow

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/birdayz/kflow/kblock"
)

func monitorOpts(sink *logSink, extra ...Option) []Option {
	return append([]Option{
		WithLogr(sink.logger()),
		WithMonitorWarmup(time.Millisecond),
		WithMonitorInterval(2 * time.Millisecond),
	}, extra...)
}

func TestMonitor(t *testing.T) {
	t.Run("quiet mode logs only non-zero depth", func(t *testing.T) {
		sink := &logSink{}
		var ticks atomic.Int32
		f := NewFlow(monitorOpts(sink, WithFlowMonitor(), WithMonitorHook(func(*Flow) { ticks.Add(1) }))...)
		idle := newFakeUnit()
		assert.NoError(t, f.RegisterChild(idle))
		f.Completion()

		eventually(t, func() bool { return ticks.Load() >= 3 })
		assert.Equal(t, 0, sink.count(`"buffer status"`))

		busy := newFakeUnit()
		busy.in, busy.out = 2, 1
		assert.NoError(t, f.RegisterChild(busy))
		eventually(t, func() bool { return sink.count(`"buffer status"`) > 0 })

		idle.completion.Succeed()
		busy.completion.Succeed()
		waitDone(t, f.Completion())
	})

	t.Run("verbose block monitor logs every child", func(t *testing.T) {
		sink := &logSink{}
		f := NewFlow(monitorOpts(sink, WithBlockMonitor(), WithPerformanceLogMode(LogVerbose))...)
		u := newFakeUnit()
		assert.NoError(t, f.RegisterChild(u))
		f.Completion()

		eventually(t, func() bool { return sink.count(`"child buffer status"`) >= 2 })
		assert.Equal(t, 0, sink.count(`"buffer status"`))

		u.completion.Succeed()
		waitDone(t, f.Completion())
	})

	t.Run("stops when the flow finishes", func(t *testing.T) {
		sink := &logSink{}
		var ticks atomic.Int32
		f := NewFlow(monitorOpts(sink, WithFlowMonitor(), WithMonitorHook(func(*Flow) { ticks.Add(1) }))...)
		u := newFakeUnit()
		assert.NoError(t, f.RegisterChild(u))
		f.Completion()
		eventually(t, func() bool { return ticks.Load() >= 1 })

		u.completion.Succeed()
		waitDone(t, f.Completion())
		time.Sleep(5 * time.Millisecond)
		stopped := ticks.Load()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, stopped, ticks.Load())
	})

	t.Run("hook panic stops the monitor", func(t *testing.T) {
		sink := &logSink{}
		var ticks atomic.Int32
		f := NewFlow(monitorOpts(sink, WithFlowMonitor(), WithMonitorHook(func(*Flow) {
			ticks.Add(1)
			panic("hook broke")
		}))...)
		u := newFakeUnit()
		assert.NoError(t, f.RegisterChild(u))
		f.Completion()

		eventually(t, func() bool { return sink.count("monitor stopped") == 1 })
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int32(1), ticks.Load())

		u.completion.Succeed()
		assert.Equal(t, kblock.StatusSucceeded, waitDone(t, f.Completion()).Status)
	})

	t.Run("not started without monitor options", func(t *testing.T) {
		var ticks atomic.Int32
		f := NewFlow(WithMonitorWarmup(time.Millisecond), WithMonitorInterval(time.Millisecond),
			WithMonitorHook(func(*Flow) { ticks.Add(1) }))
		assert.NoError(t, f.RegisterChild(newFakeUnit()))
		f.Completion()

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int32(0), ticks.Load())
	})
}
