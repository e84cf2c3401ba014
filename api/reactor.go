// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Readiness operation set and the Selectable contract dispatched by reactors
// over poll-mode backends (epoll today).

package api

import "strings"

// Op is a single readiness operation bit.
type Op uint8

// Ops is a combinable set of readiness operations.
type Ops = Op

const (
	OpRead Op = 1 << iota
	OpWrite
	OpExcept
	OpRemoteClose
)

// opOrder is the fixed dispatch precedence; first match wins.
var opOrder = [...]Op{OpExcept, OpRemoteClose, OpRead, OpWrite}

// Has reports whether every bit of o is present in the set.
func (ops Op) Has(o Op) bool {
	return o != 0 && ops&o == o
}

// String renders the set as READ|WRITE style flags.
func (ops Op) String() string {
	if ops == 0 {
		return "NONE"
	}
	names := make([]string, 0, 4)
	for _, o := range [...]Op{OpRead, OpWrite, OpExcept, OpRemoteClose} {
		if ops&o == 0 {
			continue
		}
		switch o {
		case OpRead:
			names = append(names, "READ")
		case OpWrite:
			names = append(names, "WRITE")
		case OpExcept:
			names = append(names, "EXCEPT")
		case OpRemoteClose:
			names = append(names, "REMOTE_CLOSE")
		}
	}
	return strings.Join(names, "|")
}

// Dispatch selects the operation a task must act on when several ready bits
// are set at once: EXCEPT, then REMOTE_CLOSE, then READ, then WRITE.
// It returns 0 when no known bit is set.
func Dispatch(ready Ops) Op {
	for _, o := range opOrder {
		if ready&o != 0 {
			return o
		}
	}
	return 0
}

// Selectable is the unit a reactor dispatches to: a native handle, the
// operations currently desired, and a readiness callback.
type Selectable interface {
	// NativeHandle returns the OS descriptor the task waits on.
	NativeHandle() int

	// Interest returns the operation(s) the task wants to be woken for.
	Interest() Ops

	// Handle is invoked with the ready set observed for the handle.
	// It returns true once the task is resolved and must be dropped,
	// false to stay armed for the next readiness event.
	Handle(ready Ops) bool
}
