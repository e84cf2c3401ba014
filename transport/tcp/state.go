// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Socket lifecycle states and shutdown kinds.

package tcp

// State is a Socket lifecycle state. Closed is terminal.
type State int

const (
	Unconnected State = iota
	Connecting
	Connected
	Listening
	ShutdownRead
	ShutdownWrite
	ShutdownBoth
	Closed
)

func (s State) String() string {
	switch s {
	case Unconnected:
		return "unconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Listening:
		return "listening"
	case ShutdownRead:
		return "shutdown-read"
	case ShutdownWrite:
		return "shutdown-write"
	case ShutdownBoth:
		return "shutdown-both"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ShutdownKind selects which direction Shutdown closes.
type ShutdownKind int

const (
	ShutRead ShutdownKind = iota
	ShutWrite
	ShutBoth
)

func (k ShutdownKind) valid() bool {
	return k >= ShutRead && k <= ShutBoth
}

// next returns the state after shutting down kind from s.
func (s State) next(k ShutdownKind) State {
	switch {
	case k == ShutBoth:
		return ShutdownBoth
	case s == ShutdownBoth:
		return ShutdownBoth
	case k == ShutRead && s == ShutdownWrite, k == ShutWrite && s == ShutdownRead:
		return ShutdownBoth
	case k == ShutRead:
		return ShutdownRead
	default:
		return ShutdownWrite
	}
}
