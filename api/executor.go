// Package api
// Author: momentics
//
// Executor contracts for readiness-driven dispatch and worker offload.

package api

// IOCallback resolves an asynchronous recv/send with the bytes transferred
// or an error. It is invoked exactly once per operation.
type IOCallback func(n int, err error)

// IOExecutor registers Selectables and drives them on readiness.
type IOExecutor interface {
	// Register arms sel for its Interest on its NativeHandle.
	Register(sel Selectable) error

	// Unregister drops every task armed on handle. No dispatch to the
	// handle happens after Unregister returns.
	Unregister(handle int) error

	// Defer runs a completion either inline or on a worker.
	Defer(fn func())
}

// Executor abstracts parallel task execution.
type Executor interface {
	// Submit schedules task for execution.
	Submit(task func()) error

	// NumWorkers returns current number of active worker routines.
	NumWorkers() int
}

// Canceler is implemented by Selectables that must still resolve their
// callback when an executor drops them without a readiness event
// (Unregister, executor shutdown).
type Canceler interface {
	Cancel(err error)
}
