//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor - Linux epoll implementation.

package reactor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/internal/concurrency"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

var _ api.IOExecutor = (*Reactor)(nil)

const (
	// postRetry bounds each wait of a blocked Post before it re-checks Close.
	postRetry = 50 * time.Millisecond
	// deferRetry bounds how long Defer waits on the post queue between
	// attempts to hand a task to saturated workers.
	deferRetry = time.Millisecond
)

// registration is the per-fd task state. reads holds tasks with READ
// interest, writes the WRITE-only ones; each queue is FIFO.
type registration struct {
	fd     int
	events uint32
	reads  *queue.Queue
	writes *queue.Queue
}

func newRegistration(fd int) *registration {
	return &registration{fd: fd, reads: queue.New(), writes: queue.New()}
}

func (g *registration) empty() bool {
	return g.reads.Length() == 0 && g.writes.Length() == 0
}

// mask is the epoll interest implied by the queued tasks.
func (g *registration) mask() uint32 {
	var ev uint32
	for _, q := range []*queue.Queue{g.reads, g.writes} {
		for i := 0; i < q.Length(); i++ {
			ev |= epollInterest(q.Get(i).(api.Selectable).Interest())
		}
	}
	return ev
}

func epollInterest(ops api.Ops) uint32 {
	var ev uint32
	if ops.Has(api.OpRead) {
		ev |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if ops.Has(api.OpWrite) {
		ev |= unix.EPOLLOUT
	}
	return ev
}

// Reactor drives Selectables over a level-triggered epoll instance.
type Reactor struct {
	epfd   int
	ticker *concurrency.Ticker
	regs   map[int]*registration
	events []unix.EpollEvent
	posted *concurrency.BlockingQueue[func()]

	pollTimeout time.Duration
	workers     api.Executor
	log         logrus.FieldLogger
	metrics     Metrics

	closed   atomic.Bool
	running  atomic.Bool
	loopMu   sync.Mutex // held by Run for its whole lifetime
	closeErr error
	once     sync.Once

	dispatched atomic.Int64
	wakeups    atomic.Int64
}

// New creates a Reactor with its own epoll instance and wake pipe.
func New(opts ...Option) (*Reactor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, api.ResourceError("epoll create", err)
	}
	ticker, err := concurrency.NewTicker(concurrency.WithoutTimeout())
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(ticker.Fd())}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, ticker.Fd(), &ev); err != nil {
		_ = ticker.Close()
		_ = unix.Close(epfd)
		return nil, api.ResourceError("epoll ctl add", err)
	}

	return &Reactor{
		epfd:        epfd,
		ticker:      ticker,
		regs:        make(map[int]*registration),
		events:      make([]unix.EpollEvent, o.maxEvents),
		posted:      concurrency.NewBlockingQueue[func()](o.postQueue),
		pollTimeout: o.pollTimeout,
		workers:     o.workers,
		log:         o.log,
		metrics:     o.metrics,
	}, nil
}

// Register arms sel on its handle. Tasks on one handle are served in
// registration order per direction.
func (r *Reactor) Register(sel api.Selectable) error {
	if r.closed.Load() {
		return api.IOError("register", api.ErrClosed)
	}
	fd := sel.NativeHandle()
	interest := sel.Interest() & (api.OpRead | api.OpWrite)
	if fd < 0 || interest == 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "register", api.ErrInvalidArgument)
	}

	reg, ok := r.regs[fd]
	if !ok {
		reg = newRegistration(fd)
	}
	// ctl runs even when the mask is unchanged: a queued task may belong to
	// a closed descriptor whose number was reused, and the kernel no longer
	// watches it.
	if err := r.ctl(reg, reg.events|epollInterest(interest), !ok); err != nil {
		return err
	}
	if interest.Has(api.OpRead) {
		reg.reads.Add(sel)
	} else {
		reg.writes.Add(sel)
	}
	if !ok {
		r.regs[fd] = reg
		r.metrics.SetRegistered(len(r.regs))
	}
	return nil
}

// ctl installs want for reg, falling back between ADD and MOD when the
// kernel view differs from the table (a closed fd number being reused).
func (r *Reactor) ctl(reg *registration, want uint32, add bool) error {
	ev := unix.EpollEvent{Events: want, Fd: int32(reg.fd)}
	op, name := unix.EPOLL_CTL_MOD, "epoll ctl mod"
	if add {
		op, name = unix.EPOLL_CTL_ADD, "epoll ctl add"
	}
	err := unix.EpollCtl(r.epfd, op, reg.fd, &ev)
	switch {
	case err == unix.EEXIST && add:
		err = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, reg.fd, &ev)
	case err == unix.ENOENT && !add:
		err = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, reg.fd, &ev)
	}
	if err != nil {
		return api.IOError(name, err)
	}
	reg.events = want
	return nil
}

// Unregister drops every task on handle. Dropped tasks implementing
// api.Canceler are resolved with api.ErrClosed.
func (r *Reactor) Unregister(handle int) error {
	reg, ok := r.regs[handle]
	if !ok {
		return api.NewError(api.ErrCodeNotFound, "unregister", api.ErrNotFound)
	}
	r.drop(reg)
	return nil
}

func (r *Reactor) drop(reg *registration) {
	delete(r.regs, reg.fd)
	r.metrics.SetRegistered(len(r.regs))
	// EBADF and ENOENT mean the kernel already forgot a closed fd.
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, reg.fd, nil); err != nil &&
		err != unix.EBADF && err != unix.ENOENT {
		r.log.WithFields(logrus.Fields{"fd": reg.fd, "error": err}).Warn("epoll ctl del failed")
	}
	for _, q := range []*queue.Queue{reg.reads, reg.writes} {
		for q.Length() > 0 {
			if c, ok := q.Remove().(api.Canceler); ok {
				r.guard(reg.fd, func() { c.Cancel(api.ErrClosed) })
			}
		}
	}
}

// offloader is a worker pool that can refuse a task instead of blocking.
type offloader interface {
	TrySubmit(task func()) bool
	Closed() bool
}

// Defer runs fn on the configured workers, or inline without them or once
// they are closed. It is called from the loop goroutine: while every worker
// slot is taken it keeps running posted functions, since workers may be
// blocked in Post waiting for the loop.
func (r *Reactor) Defer(fn func()) {
	if r.workers == nil {
		fn()
		return
	}
	o, ok := r.workers.(offloader)
	if !ok {
		if err := r.workers.Submit(fn); err != nil {
			fn()
		}
		return
	}
	for !o.Closed() {
		if o.TrySubmit(fn) {
			return
		}
		if p, ok := r.posted.WaitPop(deferRetry); ok {
			r.guard(-1, p)
		}
	}
	fn()
}

// Post queues fn to run on the loop goroutine and wakes the loop. It
// blocks while the post queue is full.
func (r *Reactor) Post(fn func()) error {
	for {
		if r.closed.Load() {
			return api.IOError("post", api.ErrClosed)
		}
		if r.posted.WaitPush(fn, postRetry) {
			return r.Wake()
		}
	}
}

// TryPost is Post without blocking; it reports false when the queue is
// full or the reactor is closed.
func (r *Reactor) TryPost(fn func()) bool {
	if r.closed.Load() || !r.posted.TryPush(fn) {
		return false
	}
	_ = r.Wake()
	return true
}

// Wake interrupts a blocked Poll. Wakes that arrive before the loop
// drains the pipe collapse into one.
func (r *Reactor) Wake() error {
	return r.ticker.Cancel()
}

// Poll waits up to timeout for readiness, dispatches every ready task and
// runs posted functions. A negative timeout blocks until an event or a
// wake. It returns the number of epoll events handled.
func (r *Reactor) Poll(timeout time.Duration) (int, error) {
	if r.closed.Load() {
		return 0, api.IOError("poll", api.ErrClosed)
	}
	r.runPosted()

	n, err := unix.EpollWait(r.epfd, r.events, pollMillis(timeout))
	if err != nil {
		if err == unix.EINTR {
			return 0, nil // interrupted by signal, normal
		}
		r.metrics.IncPollErrors()
		return 0, api.IOError("epoll wait", err)
	}

	for i := 0; i < n; i++ {
		ev := r.events[i]
		fd := int(ev.Fd)
		if fd == r.ticker.Fd() {
			r.ticker.Drain()
			r.wakeups.Add(1)
			r.metrics.IncWakeups()
			continue
		}
		reg, ok := r.regs[fd]
		if !ok {
			continue
		}
		r.dispatch(reg, ev.Events)
	}

	r.runPosted()
	return n, nil
}

// Run polls until ctx is done or the reactor is closed.
func (r *Reactor) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer r.running.Store(false)
	r.loopMu.Lock()
	defer r.loopMu.Unlock()
	// context cancellation must interrupt a blocking wait
	stop := context.AfterFunc(ctx, func() { _ = r.Wake() })
	defer stop()

	for ctx.Err() == nil && !r.closed.Load() {
		if _, err := r.Poll(r.pollTimeout); err != nil {
			if r.closed.Load() {
				return nil
			}
			r.log.WithError(err).Error("reactor poll failed")
			return err
		}
	}
	return nil
}

// Close stops Run, cancels every pending task and releases the epoll
// instance and the wake pipe. It waits for Run to return, so it must not be
// called from the loop goroutine. It is safe to call more than once.
func (r *Reactor) Close() error {
	r.once.Do(func() {
		r.closed.Store(true)
		_ = r.Wake()
		r.loopMu.Lock()
		defer r.loopMu.Unlock()

		for _, reg := range r.regs {
			r.drop(reg)
		}
		r.runPosted()
		if err := unix.Close(r.epfd); err != nil {
			r.closeErr = api.IOError("epoll close", err)
		}
		if err := r.ticker.Close(); err != nil && r.closeErr == nil {
			r.closeErr = err
		}
	})
	return r.closeErr
}

// Stats returns loop counters for debug probes.
func (r *Reactor) Stats() map[string]int64 {
	return map[string]int64{
		"dispatched":    r.dispatched.Load(),
		"wakeups":       r.wakeups.Load(),
		"posted_queued": int64(r.posted.Size()),
	}
}

// dispatch serves one epoll event. Error and hangup conditions resolve
// every task in the affected direction; plain readiness serves the head
// task of that direction only.
func (r *Reactor) dispatch(reg *registration, events uint32) {
	rd, wr := readyOps(events)

	if rd&(api.OpExcept|api.OpRemoteClose) != 0 {
		r.sweep(reg, reg.reads, rd, wr)
	} else if rd != 0 || wr != 0 {
		r.serveHead(reg, reg.reads, rd|wr&api.OpWrite)
	}
	if r.regs[reg.fd] != reg {
		return
	}
	if wr&(api.OpExcept|api.OpRemoteClose) != 0 {
		r.sweep(reg, reg.writes, wr, 0)
	} else if wr != 0 {
		r.serveHead(reg, reg.writes, wr)
	}
	r.rearm(reg)
}

// readyOps maps epoll bits to the op sets seen by read-side and write-side
// tasks. A peer half-close only ends reads once its data is drained, and it
// never ends writes.
func readyOps(events uint32) (rd, wr api.Ops) {
	if events&unix.EPOLLERR != 0 {
		rd |= api.OpExcept
		wr |= api.OpExcept
	}
	in := events&unix.EPOLLIN != 0
	if events&unix.EPOLLHUP != 0 {
		wr |= api.OpRemoteClose
		if !in {
			rd |= api.OpRemoteClose
		}
	}
	if events&unix.EPOLLRDHUP != 0 && !in {
		rd |= api.OpRemoteClose
	}
	if in {
		rd |= api.OpRead
	}
	if events&unix.EPOLLOUT != 0 {
		wr |= api.OpWrite
	}
	return rd, wr
}

func (r *Reactor) serveHead(reg *registration, q *queue.Queue, ready api.Ops) {
	if q.Length() == 0 {
		return
	}
	t := q.Peek().(api.Selectable)
	mask := ready & (t.Interest() | api.OpExcept | api.OpRemoteClose)
	if mask == 0 {
		return
	}
	done := r.handle(reg.fd, t, mask)
	if r.regs[reg.fd] != reg {
		return
	}
	if done {
		q.Remove()
	}
}

// sweep offers ready to every task queued when the sweep began. extra is
// merged in for tasks that also want the other direction.
func (r *Reactor) sweep(reg *registration, q *queue.Queue, ready, extra api.Ops) {
	for n := q.Length(); n > 0 && q.Length() > 0; n-- {
		t := q.Remove().(api.Selectable)
		mask := (ready | extra&api.OpWrite) & (t.Interest() | api.OpExcept | api.OpRemoteClose)
		done := r.handle(reg.fd, t, mask)
		if r.regs[reg.fd] != reg {
			return
		}
		if !done {
			q.Add(t)
		}
	}
}

// handle runs one task. A task that panics counts as resolved so it
// cannot fire again.
func (r *Reactor) handle(fd int, t api.Selectable, ready api.Ops) (done bool) {
	r.dispatched.Add(1)
	r.metrics.ObserveDispatch(api.Dispatch(ready))
	done = true
	r.guard(fd, func() { done = t.Handle(ready) })
	return done
}

func (r *Reactor) guard(fd int, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.metrics.IncPanics()
			r.log.WithFields(logrus.Fields{"fd": fd, "panic": p}).Error("reactor task panicked")
		}
	}()
	fn()
}

// rearm narrows or widens the epoll interest to what is still queued and
// forgets the fd once nothing is.
func (r *Reactor) rearm(reg *registration) {
	if r.regs[reg.fd] != reg {
		return
	}
	if reg.empty() {
		delete(r.regs, reg.fd)
		r.metrics.SetRegistered(len(r.regs))
		if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, reg.fd, nil); err != nil &&
			err != unix.EBADF && err != unix.ENOENT {
			r.log.WithFields(logrus.Fields{"fd": reg.fd, "error": err}).Warn("epoll ctl del failed")
		}
		return
	}
	if want := reg.mask(); want != reg.events {
		if err := r.ctl(reg, want, false); err != nil {
			r.log.WithFields(logrus.Fields{"fd": reg.fd, "error": err}).Warn("epoll rearm failed")
		}
	}
}

func (r *Reactor) runPosted() {
	for {
		fn, ok := r.posted.TryPop()
		if !ok {
			break
		}
		r.guard(-1, fn)
	}
	r.metrics.SetPostQueueDepth(r.posted.Size())
}

// Registered reports the number of handles with queued tasks.
func (r *Reactor) Registered() int { return len(r.regs) }

// String identifies the reactor in logs.
func (r *Reactor) String() string {
	return fmt.Sprintf("epoll(%d)", r.epfd)
}
