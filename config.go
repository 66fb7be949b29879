package kflow

import (
	"time"

	"github.com/go-logr/logr"
)

// LogMode controls how much the pressure monitor logs.
type LogMode int

const (
	// LogQuiet logs buffer depths only when they are non-zero.
	LogQuiet LogMode = iota
	// LogVerbose logs buffer depths on every tick.
	LogVerbose
)

const (
	defaultMonitorInterval = 10 * time.Second
	defaultMonitorWarmup   = time.Second
)

// Option is a function that configures a Flow
type Option func(*config)

type config struct {
	name            string
	tag             string
	log             logr.Logger
	flowMonitor     bool
	blockMonitor    bool
	monitorInterval time.Duration
	monitorWarmup   time.Duration
	logMode         LogMode
	monitorHook     func(*Flow)
	cleanup         func()
}

func newConfig(tag string, opts []Option) config {
	c := config{
		tag:             tag,
		log:             logr.Discard(),
		monitorInterval: defaultMonitorInterval,
		monitorWarmup:   defaultMonitorWarmup,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithName sets the display name. Without it the name is "{Tag}{N}".
var WithName = func(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithTypeTag sets the tag used to derive the default display name.
var WithTypeTag = func(tag string) Option {
	return func(c *config) {
		c.tag = tag
	}
}

// WithLogr sets the logger
var WithLogr = func(log logr.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithFlowMonitor enables periodic logging of the aggregate buffer depth.
var WithFlowMonitor = func() Option {
	return func(c *config) {
		c.flowMonitor = true
	}
}

// WithBlockMonitor enables periodic logging of every child's buffer depth.
var WithBlockMonitor = func() Option {
	return func(c *config) {
		c.blockMonitor = true
	}
}

// WithMonitorInterval sets the pressure monitor period
var WithMonitorInterval = func(d time.Duration) Option {
	return func(c *config) {
		c.monitorInterval = d
	}
}

// WithMonitorWarmup sets the delay before the first monitor tick
var WithMonitorWarmup = func(d time.Duration) Option {
	return func(c *config) {
		c.monitorWarmup = d
	}
}

// WithPerformanceLogMode sets the monitor verbosity
var WithPerformanceLogMode = func(mode LogMode) Option {
	return func(c *config) {
		c.logMode = mode
	}
}

// WithMonitorHook sets a function that runs on every monitor tick. It only
// runs if a monitor is enabled.
var WithMonitorHook = func(hook func(*Flow)) Option {
	return func(c *config) {
		c.monitorHook = hook
	}
}

// WithCleanup sets a function that runs once after all children and
// post-completion tasks succeeded, before the flow resolves.
var WithCleanup = func(cleanup func()) Option {
	return func(c *config) {
		c.cleanup = cleanup
	}
}
