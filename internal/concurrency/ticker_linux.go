//go:build linux
// +build linux

// File: internal/concurrency/ticker_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ticker is an interruptible timed wait built on a self-pipe: Tick waits for
// the read end to become readable, Cancel writes a marker byte from any
// goroutine.

package concurrency

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-net/api"
	"golang.org/x/sys/unix"
)

// Ticker wakes a blocked Tick from another goroutine.
type Ticker struct {
	rfd     int
	wfd     int
	timeout time.Duration // < 0: no bound
	mu      sync.RWMutex  // shared by Tick and Cancel, exclusive for Close
	closing atomic.Bool
	closed  bool
}

// TickerOption configures a Ticker.
type TickerOption func(*Ticker)

// WithTimeout bounds every Tick by d. Zero makes Tick a non-blocking probe.
func WithTimeout(d time.Duration) TickerOption {
	return func(t *Ticker) {
		if d < 0 {
			d = 0
		}
		t.timeout = d
	}
}

// WithoutTimeout makes Tick block until Cancel or Close.
func WithoutTimeout() TickerOption {
	return func(t *Ticker) { t.timeout = -1 }
}

// NewTicker opens the control pipe. Without options Tick is a
// zero-timeout probe: it reports a pending Cancel and never waits.
func NewTicker(opts ...TickerOption) (*Ticker, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, api.ResourceError("ticker pipe", err)
	}
	t := &Ticker{rfd: p[0], wfd: p[1]}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Timeout returns the configured bound, or a negative value for none.
func (t *Ticker) Timeout() time.Duration { return t.timeout }

// Fd returns the read end so a poller can watch it directly.
func (t *Ticker) Fd() int { return t.rfd }

// Tick blocks until Cancel is observed (true) or the timeout elapses
// (false). A failing wait is reported as an I/O error, and so is a Close
// that interrupts the wait.
func (t *Ticker) Tick() (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed || t.closing.Load() {
		return false, api.IOError("ticker tick", api.ErrClosed)
	}
	fds := []unix.PollFd{{Fd: int32(t.rfd), Events: unix.POLLIN}}
	var deadline time.Time
	if t.timeout >= 0 {
		deadline = time.Now().Add(t.timeout)
	}
	for {
		var ts *unix.Timespec
		if t.timeout >= 0 {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			spec := unix.NsecToTimespec(remaining.Nanoseconds())
			ts = &spec
		}
		n, err := unix.Ppoll(fds, ts, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, api.IOError("ticker poll", err)
		}
		if n == 0 {
			return false, nil
		}
		rev := fds[0].Revents
		if rev&unix.POLLIN != 0 {
			if t.closing.Load() {
				return false, api.IOError("ticker tick", api.ErrClosed)
			}
			t.Drain()
			return true, nil
		}
		if rev&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return false, api.IOError("ticker poll", unix.Errno(unix.EBADF))
		}
	}
}

// Cancel signals the next (or current) Tick. Repeated cancels before a Tick
// collapse into one wake.
func (t *Ticker) Cancel() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed || t.closing.Load() {
		return api.IOError("ticker cancel", api.ErrClosed)
	}
	return t.wake()
}

func (t *Ticker) wake() error {
	for {
		_, err := unix.Write(t.wfd, []byte{'1'})
		switch err {
		case nil, unix.EAGAIN:
			// a full pipe already holds a pending wake
			return nil
		case unix.EINTR:
			continue
		default:
			return api.IOError("ticker cancel", err)
		}
	}
}

// Drain consumes pending wake bytes.
func (t *Ticker) Drain() {
	var buf [64]byte
	for {
		n, err := unix.Read(t.rfd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if n <= 0 || err != nil {
			return
		}
	}
}

// Close wakes a blocked Tick, waits for it to leave and releases both pipe
// ends. Subsequent calls are no-ops.
func (t *Ticker) Close() error {
	t.mu.RLock()
	if !t.closed && t.closing.CompareAndSwap(false, true) {
		_ = t.wake()
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	errR := unix.Close(t.rfd)
	errW := unix.Close(t.wfd)
	if errR != nil {
		return api.IOError("ticker close", errR)
	}
	if errW != nil {
		return api.IOError("ticker close", errW)
	}
	return nil
}
