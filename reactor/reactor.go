// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral reactor options and instrumentation hooks.

package reactor

import (
	"errors"
	"time"

	"github.com/momentics/hioload-net/api"
	"github.com/sirupsen/logrus"
)

// ErrRunning is returned when Run is entered twice concurrently.
var ErrRunning = errors.New("reactor: already running")

const (
	defaultMaxEvents   = 128
	defaultPollTimeout = 100 * time.Millisecond
	defaultPostQueue   = 1024
)

// Metrics receives reactor instrumentation. Methods are called from the
// loop goroutine.
type Metrics interface {
	ObserveDispatch(op api.Op)
	SetRegistered(n int)
	SetPostQueueDepth(n int)
	IncPollErrors()
	IncWakeups()
	IncPanics()
}

type nopMetrics struct{}

func (nopMetrics) ObserveDispatch(api.Op) {}
func (nopMetrics) SetRegistered(int)      {}
func (nopMetrics) SetPostQueueDepth(int)  {}
func (nopMetrics) IncPollErrors()         {}
func (nopMetrics) IncWakeups()            {}
func (nopMetrics) IncPanics()             {}

// Option configures a Reactor.
type Option func(*options)

type options struct {
	maxEvents   int
	pollTimeout time.Duration
	postQueue   int
	workers     api.Executor
	log         logrus.FieldLogger
	metrics     Metrics
}

func defaultOptions() options {
	return options{
		maxEvents:   defaultMaxEvents,
		pollTimeout: defaultPollTimeout,
		postQueue:   defaultPostQueue,
		log:         logrus.StandardLogger(),
		metrics:     nopMetrics{},
	}
}

// WithMaxEvents sets how many readiness events one Poll may collect.
func WithMaxEvents(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEvents = n
		}
	}
}

// WithPollTimeout bounds each wait inside Run. A negative value blocks
// until an event or a wake.
func WithPollTimeout(d time.Duration) Option {
	return func(o *options) { o.pollTimeout = d }
}

// WithPostQueue sets the capacity of the cross-goroutine post queue.
func WithPostQueue(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.postQueue = n
		}
	}
}

// WithWorkers routes Defer through exec instead of running inline.
func WithWorkers(exec api.Executor) Option {
	return func(o *options) { o.workers = exec }
}

// WithLogger sets the logger for recovered panics and loop errors.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics installs an instrumentation sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// pollMillis converts a wait duration to epoll's millisecond timeout,
// rounding sub-millisecond waits up so they do not turn into busy probes.
func pollMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	return int(ms)
}
