// File: internal/concurrency/queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BlockingQueue is a fixed-capacity FIFO over a circular buffer with
// blocking, non-blocking and timed push/pop. A single mutex guards the
// buffer, both indices and the count; two wait lists carry the "not full"
// and "not empty" conditions.

package concurrency

import (
	"sync"
	"time"
)

// BlockingQueue is safe for any number of producers and consumers.
// Dequeue order equals acceptance order.
type BlockingQueue[T any] struct {
	mu       sync.Mutex
	items    []T
	putIdx   int
	takeIdx  int
	count    int
	notFull  *waitList
	notEmpty *waitList
}

// NewBlockingQueue allocates a queue holding at most capacity items.
func NewBlockingQueue[T any](capacity int) *BlockingQueue[T] {
	if capacity <= 0 {
		panic("concurrency: queue capacity must be positive")
	}
	return &BlockingQueue[T]{
		items:    make([]T, capacity),
		notFull:  newWaitList(),
		notEmpty: newWaitList(),
	}
}

// Push blocks until a slot is free, then inserts item.
func (q *BlockingQueue[T]) Push(item T) {
	q.mu.Lock()
	for q.full() {
		q.notFull.wait(&q.mu, nil)
	}
	q.insert(item)
	q.mu.Unlock()
}

// TryPush inserts item without blocking. It fails when the queue is full
// or when the lock is held by someone else at this instant.
func (q *BlockingQueue[T]) TryPush(item T) bool {
	if !q.mu.TryLock() {
		return false
	}
	defer q.mu.Unlock()
	if q.full() {
		return false
	}
	q.insert(item)
	return true
}

// WaitPush waits up to d for a free slot. The queue is untouched when it
// returns false.
func (q *BlockingQueue[T]) WaitPush(item T, d time.Duration) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full() {
		if d <= 0 {
			return false
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		for q.full() {
			if !q.notFull.wait(&q.mu, timer.C) {
				if q.full() {
					return false
				}
				break
			}
		}
	}
	q.insert(item)
	return true
}

// Pop blocks until an item exists and removes the oldest one.
func (q *BlockingQueue[T]) Pop() T {
	q.mu.Lock()
	for q.count == 0 {
		q.notEmpty.wait(&q.mu, nil)
	}
	item := q.remove()
	q.mu.Unlock()
	return item
}

// TryPop removes the oldest item without blocking. ok is false when the
// queue is empty or the lock is contended.
func (q *BlockingQueue[T]) TryPop() (item T, ok bool) {
	if !q.mu.TryLock() {
		return item, false
	}
	defer q.mu.Unlock()
	if q.count == 0 {
		return item, false
	}
	return q.remove(), true
}

// WaitPop waits up to d for an item.
func (q *BlockingQueue[T]) WaitPop(d time.Duration) (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		if d <= 0 {
			return item, false
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		for q.count == 0 {
			if !q.notEmpty.wait(&q.mu, timer.C) {
				if q.count == 0 {
					return item, false
				}
				break
			}
		}
	}
	return q.remove(), true
}

// Size returns the current number of queued items.
func (q *BlockingQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the fixed capacity.
func (q *BlockingQueue[T]) Cap() int {
	return len(q.items)
}

// Empty reports whether the queue holds no items.
func (q *BlockingQueue[T]) Empty() bool {
	return q.Size() == 0
}

func (q *BlockingQueue[T]) full() bool {
	return q.count == len(q.items)
}

func (q *BlockingQueue[T]) insert(item T) {
	q.items[q.putIdx] = item
	if q.putIdx++; q.putIdx == len(q.items) {
		q.putIdx = 0
	}
	q.count++
	q.notEmpty.signal()
}

func (q *BlockingQueue[T]) remove() T {
	var zero T
	item := q.items[q.takeIdx]
	q.items[q.takeIdx] = zero
	if q.takeIdx++; q.takeIdx == len(q.items) {
		q.takeIdx = 0
	}
	q.count--
	q.notFull.signal()
	return item
}
