package kflow

import (
	"fmt"
	"time"
)

// monitor periodically logs the buffer depths of f until f finishes.
func (f *Flow) monitor() {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error(fmt.Errorf("panic: %v", r), "monitor stopped")
		}
	}()

	done := f.completion.Done()
	warmup := time.NewTimer(f.cfg.monitorWarmup)
	defer warmup.Stop()
	select {
	case <-done:
		return
	case <-warmup.C:
	}

	ticker := time.NewTicker(f.cfg.monitorInterval)
	defer ticker.Stop()
	for {
		f.monitorTick()
		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

func (f *Flow) monitorTick() {
	verbose := f.cfg.logMode == LogVerbose

	if f.cfg.flowMonitor {
		in, out := f.BufferStatus()
		if verbose || in+out > 0 {
			f.log.Info("buffer status", "in", in, "out", out)
		}
	}
	if f.cfg.blockMonitor {
		for _, c := range f.children.Snapshot() {
			in, out := c.unit.BufferStatus()
			if verbose || in+out > 0 {
				f.log.Info("child buffer status", "child", c.name, "in", in, "out", out)
			}
		}
	}
	if f.cfg.monitorHook != nil {
		f.cfg.monitorHook(f)
	}
}
