// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency primitives for hioload-net: a bounded blocking FIFO with
// blocking, non-blocking and timed variants, a self-pipe ticker whose wait
// can be cancelled from another goroutine, and a worker pool fed by the
// bounded queue.
package concurrency
