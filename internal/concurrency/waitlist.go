// File: internal/concurrency/waitlist.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// waitList is a condition variable with timed waits. Waiters park on a
// private channel queued FIFO; signal wakes the oldest waiter that has not
// given up. All methods require the owning mutex to be held.

package concurrency

import (
	"sync"
	"time"

	"github.com/eapache/queue"
)

type waiter struct {
	ch      chan struct{}
	expired bool
}

type waitList struct {
	q *queue.Queue // of *waiter
}

func newWaitList() *waitList {
	return &waitList{q: queue.New()}
}

func (l *waitList) park() *waiter {
	// Timed-out waiters at the head are garbage.
	for l.q.Length() > 0 && l.q.Peek().(*waiter).expired {
		l.q.Remove()
	}
	w := &waiter{ch: make(chan struct{})}
	l.q.Add(w)
	return w
}

// signal wakes one live waiter, if any.
func (l *waitList) signal() {
	for l.q.Length() > 0 {
		w := l.q.Remove().(*waiter)
		if w.expired {
			continue
		}
		close(w.ch)
		return
	}
}

// len returns the number of queued entries, expired ones included.
func (l *waitList) len() int {
	return l.q.Length()
}

// wait unlocks mu, blocks until signalled or until expire fires, then
// relocks mu. A nil expire waits without bound. It returns false only when
// expire fired before any signal reached this waiter.
func (l *waitList) wait(mu *sync.Mutex, expire <-chan time.Time) bool {
	w := l.park()
	mu.Unlock()
	select {
	case <-w.ch:
		mu.Lock()
		return true
	case <-expire:
		mu.Lock()
		select {
		case <-w.ch:
			// signalled while we were reacquiring the lock
			return true
		default:
		}
		w.expired = true
		return false
	}
}
