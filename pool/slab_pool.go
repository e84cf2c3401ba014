// File: pool/slab_pool.go
// Package pool implements fixed-size slab allocation for read buffers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-net/internal/concurrency"
)

const defaultPoolCapacity = 4096

// SlabPool hands out byte slices of one size class. Free slabs wait in a
// bounded queue; when it is full a returned slab is left to the GC.
type SlabPool struct {
	size  int
	queue *concurrency.BlockingQueue[[]byte]

	totalAlloc atomic.Int64
	totalGet   atomic.Int64
	totalPut   atomic.Int64
	dropped    atomic.Int64
}

// NewSlabPool creates a pool of size-byte slabs retaining at most capacity
// free slabs. capacity <= 0 selects the default.
func NewSlabPool(size, capacity int) *SlabPool {
	if size <= 0 {
		panic("pool: slab size must be positive")
	}
	if capacity <= 0 {
		capacity = defaultPoolCapacity
	}
	return &SlabPool{size: size, queue: concurrency.NewBlockingQueue[[]byte](capacity)}
}

// Size returns the slab size class.
func (sp *SlabPool) Size() int { return sp.size }

// Get returns a slab of len Size(), reusing a free one when available.
func (sp *SlabPool) Get() []byte {
	sp.totalGet.Add(1)
	if buf, ok := sp.queue.TryPop(); ok {
		return buf[:sp.size]
	}
	sp.totalAlloc.Add(1)
	return make([]byte, sp.size)
}

// Put returns buf to the pool. Slabs of a foreign size class are ignored.
func (sp *SlabPool) Put(buf []byte) {
	if cap(buf) != sp.size {
		sp.dropped.Add(1)
		return
	}
	sp.totalPut.Add(1)
	if !sp.queue.TryPush(buf[:sp.size]) {
		sp.dropped.Add(1)
	}
}

// Stats reports allocation counters.
func (sp *SlabPool) Stats() map[string]int64 {
	return map[string]int64{
		"size":        int64(sp.size),
		"allocated":   sp.totalAlloc.Load(),
		"gets":        sp.totalGet.Load(),
		"puts":        sp.totalPut.Load(),
		"dropped":     sp.dropped.Load(),
		"free":        int64(sp.queue.Size()),
		"outstanding": sp.totalGet.Load() - sp.totalPut.Load(),
	}
}
