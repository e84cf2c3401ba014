// File: internal/concurrency/executor.go
// Package concurrency implements the worker pool used to offload completions.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WorkerPool runs tasks on a fixed set of worker goroutines fed by a
// BlockingQueue. The queue is the only handoff point between the goroutine
// that detects readiness and the goroutines that run callbacks.

package concurrency

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrPoolClosed indicates the pool has been shut down.
var ErrPoolClosed = errors.New("worker pool is closed")

// idlePoll bounds how long a worker or a blocked submitter waits before
// re-checking the closed flag.
const idlePoll = 50 * time.Millisecond

// WorkerPool manages a pool of worker goroutines.
type WorkerPool struct {
	tasks      *BlockingQueue[func()]
	numWorkers int
	closeMu    sync.RWMutex // pushes hold it shared; Close takes it exclusively
	closed     atomic.Bool
	wg         sync.WaitGroup
	log        logrus.FieldLogger

	// statistics
	submitted atomic.Int64
	completed atomic.Int64
	panics    atomic.Int64
}

// PoolOption configures a WorkerPool.
type PoolOption func(*WorkerPool)

// WithPoolLogger sets the logger used for recovered panics.
func WithPoolLogger(l logrus.FieldLogger) PoolOption {
	return func(p *WorkerPool) {
		if l != nil {
			p.log = l
		}
	}
}

// NewWorkerPool starts numWorkers goroutines sharing a queue of queueSize
// slots. numWorkers <= 0 defaults to runtime.NumCPU(); queueSize <= 0
// defaults to four slots per worker.
func NewWorkerPool(numWorkers, queueSize int, opts ...PoolOption) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = numWorkers * 4
	}
	p := &WorkerPool{
		tasks:      NewBlockingQueue[func()](queueSize),
		numWorkers: numWorkers,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.run(i)
	}
	return p
}

// Submit enqueues task, blocking while the queue is full. A nil return
// means a worker will run task.
func (p *WorkerPool) Submit(task func()) error {
	for {
		ok, err := p.push(task, idlePoll)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
}

// TrySubmit enqueues task only if a slot is free right now.
func (p *WorkerPool) TrySubmit(task func()) bool {
	ok, _ := p.push(task, 0)
	return ok
}

// push enqueues task under the shared close lock, so a task accepted here is
// always seen by a worker before it exits. wait == 0 does not block.
func (p *WorkerPool) push(task func(), wait time.Duration) (bool, error) {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed.Load() {
		return false, ErrPoolClosed
	}
	var ok bool
	if wait == 0 {
		ok = p.tasks.TryPush(task)
	} else {
		ok = p.tasks.WaitPush(task, wait)
	}
	if ok {
		p.submitted.Add(1)
	}
	return ok, nil
}

// Closed reports whether Close has been called.
func (p *WorkerPool) Closed() bool {
	return p.closed.Load()
}

// NumWorkers returns the number of worker goroutines.
func (p *WorkerPool) NumWorkers() int {
	return p.numWorkers
}

// Pending returns the number of queued, not yet started tasks.
func (p *WorkerPool) Pending() int {
	return p.tasks.Size()
}

// Close stops accepting tasks, lets workers drain the queue and waits for
// them to exit.
func (p *WorkerPool) Close() {
	p.closeMu.Lock()
	first := p.closed.CompareAndSwap(false, true)
	p.closeMu.Unlock()
	if first {
		p.wg.Wait()
	}
}

// Stats returns basic pool metrics.
func (p *WorkerPool) Stats() map[string]int64 {
	return map[string]int64{
		"submitted_tasks": p.submitted.Load(),
		"completed_tasks": p.completed.Load(),
		"pending_tasks":   int64(p.Pending()),
		"panics":          p.panics.Load(),
		"num_workers":     int64(p.numWorkers),
	}
}

func (p *WorkerPool) run(id int) {
	defer p.wg.Done()
	for {
		if task, ok := p.tasks.WaitPop(idlePoll); ok {
			p.execute(id, task)
			continue
		}
		if p.closed.Load() && p.tasks.Empty() {
			return
		}
	}
}

// execute runs the task, recovering from panics to keep the worker alive.
func (p *WorkerPool) execute(id int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.log.WithFields(logrus.Fields{"worker": id, "panic": r}).Error("worker task panicked")
		}
		p.completed.Add(1)
	}()
	task()
}
