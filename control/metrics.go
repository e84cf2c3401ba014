// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for the reactor loop and the worker pool.

package control

import (
	"strings"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/reactor"
	"github.com/prometheus/client_golang/prometheus"
)

var _ reactor.Metrics = (*Metrics)(nil)

// Metrics implements reactor.Metrics on top of Prometheus collectors.
type Metrics struct {
	dispatched *prometheus.CounterVec
	registered prometheus.Gauge
	postDepth  prometheus.Gauge
	pollErrors prometheus.Counter
	wakeups    prometheus.Counter
	panics     prometheus.Counter
	reg        prometheus.Registerer
}

// NewMetrics creates the reactor collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reactor_dispatch_total", Help: "tasks handed a ready set, by winning op",
		}, []string{"op"}),
		registered: prometheus.NewGauge(prometheus.GaugeOpts{Name: "reactor_registered_fds", Help: "handles with queued tasks"}),
		postDepth:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "reactor_post_queue_depth", Help: "posted functions awaiting the loop"}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{Name: "reactor_poll_errors_total", Help: "failed epoll waits"}),
		wakeups:    prometheus.NewCounter(prometheus.CounterOpts{Name: "reactor_wakeups_total", Help: "loop wakes through the ticker pipe"}),
		panics:     prometheus.NewCounter(prometheus.CounterOpts{Name: "reactor_task_panics_total", Help: "recovered task panics"}),
		reg:        reg,
	}
	for _, c := range []prometheus.Collector{m.dispatched, m.registered, m.postDepth, m.pollErrors, m.wakeups, m.panics} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveDispatch(op api.Op) { m.dispatched.WithLabelValues(opLabel(op)).Inc() }
func (m *Metrics) SetRegistered(n int)       { m.registered.Set(float64(n)) }
func (m *Metrics) SetPostQueueDepth(n int)   { m.postDepth.Set(float64(n)) }
func (m *Metrics) IncPollErrors()            { m.pollErrors.Inc() }
func (m *Metrics) IncWakeups()               { m.wakeups.Inc() }
func (m *Metrics) IncPanics()                { m.panics.Inc() }

// WatchPool exports the pending and worker counts reported by pending and
// workers as gauges.
func (m *Metrics) WatchPool(pending, workers func() int) error {
	for _, g := range []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "worker_pool_pending", Help: "queued completions"},
			func() float64 { return float64(pending()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "worker_pool_workers", Help: "worker goroutines"},
			func() float64 { return float64(workers()) }),
	} {
		if err := m.reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}

func opLabel(op api.Op) string {
	if op == 0 {
		return "none"
	}
	return strings.ToLower(op.String())
}
