//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Selectable tasks produced by Socket for each pending operation.

package tcp

import (
	"github.com/momentics/hioload-net/api"
)

// Compile-time interface compliance.
var (
	_ api.Selectable = (*ioTask)(nil)
	_ api.Selectable = (*connectTask)(nil)
	_ api.Selectable = (*acceptTask)(nil)
	_ api.Canceler   = (*ioTask)(nil)
	_ api.Canceler   = (*connectTask)(nil)
	_ api.Canceler   = (*acceptTask)(nil)
)

// ioTask is one pending recv or send.
type ioTask struct {
	socket   *Socket
	op       api.Op
	buf      []byte
	exec     api.IOExecutor
	cb       api.IOCallback
	resolved bool
}

func (t *ioTask) NativeHandle() int { return t.socket.fd }
func (t *ioTask) Interest() api.Ops { return t.op }

func (t *ioTask) name() string {
	if t.op == api.OpRead {
		return "recv"
	}
	return "send"
}

// Handle performs the syscall for the highest-precedence ready op. It
// returns false while the handle would block so the task stays armed.
func (t *ioTask) Handle(ready api.Ops) bool {
	if t.resolved {
		return true
	}
	switch api.Dispatch(ready) {
	case api.OpExcept:
		t.resolve(0, api.IOError(t.name(), socketFault(t.socket.fd)))
	case api.OpRemoteClose:
		t.resolve(0, api.NewError(api.ErrCodeRemoteClosed, t.name(), api.ErrRemoteClosed))
	case api.OpRead:
		if t.op != api.OpRead {
			return false
		}
		if len(t.buf) == 0 {
			t.resolve(0, nil)
			break
		}
		n, err := t.socket.read(t.buf)
		switch {
		case isWouldBlock(err):
			return false
		case err != nil:
			t.resolve(0, api.IOError("recv", err))
		case n == 0:
			t.resolve(0, api.NewError(api.ErrCodeRemoteClosed, "recv", api.ErrRemoteClosed))
		default:
			t.resolve(n, nil)
		}
	case api.OpWrite:
		if t.op != api.OpWrite {
			return false
		}
		if len(t.buf) == 0 {
			t.resolve(0, nil)
			break
		}
		n, err := t.socket.write(t.buf)
		switch {
		case isWouldBlock(err):
			return false
		case err != nil:
			t.resolve(0, api.IOError("send", err))
		default:
			t.resolve(n, nil)
		}
	default:
		return false
	}
	return true
}

// Cancel resolves a task dropped before it became ready.
func (t *ioTask) Cancel(err error) {
	if !t.resolved {
		t.resolve(0, api.IOError(t.name(), err))
	}
}

func (t *ioTask) resolve(n int, err error) {
	t.resolved = true
	cb := t.cb
	t.exec.Defer(func() { cb(n, err) })
}

// connectTask confirms a non-blocking connect on WRITE readiness.
type connectTask struct {
	socket   *Socket
	exec     api.IOExecutor
	cb       func(error)
	resolved bool
}

func (t *connectTask) NativeHandle() int { return t.socket.fd }
func (t *connectTask) Interest() api.Ops { return api.OpWrite }

func (t *connectTask) Handle(ready api.Ops) bool {
	if t.resolved {
		return true
	}
	var result error
	switch api.Dispatch(ready) {
	case api.OpExcept, api.OpRemoteClose, api.OpWrite:
		if err := pendingError(t.socket.fd); err != nil {
			result = api.IOError("connect", err)
		} else if ready.Has(api.OpExcept) {
			result = api.IOError("connect", api.ErrSocketError)
		} else if ready.Has(api.OpRemoteClose) {
			result = api.NewError(api.ErrCodeRemoteClosed, "connect", api.ErrRemoteClosed)
		} else {
			t.socket.markConnected()
		}
	default:
		return false
	}
	t.resolved = true
	cb := t.cb
	t.exec.Defer(func() { cb(result) })
	return true
}

func (t *connectTask) Cancel(err error) {
	if t.resolved {
		return
	}
	t.resolved = true
	cb := t.cb
	t.exec.Defer(func() { cb(api.IOError("connect", err)) })
}

// acceptTask takes one connection from a listening socket.
type acceptTask struct {
	socket   *Socket
	exec     api.IOExecutor
	cb       func(*Socket, error)
	resolved bool
}

func (t *acceptTask) NativeHandle() int { return t.socket.fd }
func (t *acceptTask) Interest() api.Ops { return api.OpRead }

func (t *acceptTask) Handle(ready api.Ops) bool {
	if t.resolved {
		return true
	}
	var (
		conn   *Socket
		result error
	)
	switch api.Dispatch(ready) {
	case api.OpExcept:
		result = api.IOError("accept", socketFault(t.socket.fd))
	case api.OpRemoteClose:
		result = api.NewError(api.ErrCodeRemoteClosed, "accept", api.ErrRemoteClosed)
	case api.OpRead:
		c, err := t.socket.Accept()
		if err != nil && isWouldBlock(err) {
			return false
		}
		conn, result = c, err
	default:
		return false
	}
	t.resolved = true
	cb := t.cb
	t.exec.Defer(func() { cb(conn, result) })
	return true
}

func (t *acceptTask) Cancel(err error) {
	if t.resolved {
		return
	}
	t.resolved = true
	cb := t.cb
	t.exec.Defer(func() { cb(nil, api.IOError("accept", err)) })
}

// socketFault reads SO_ERROR for an EXCEPT event, falling back to
// api.ErrSocketError when the kernel reports nothing.
func socketFault(fd int) error {
	if err := pendingError(fd); err != nil {
		return err
	}
	return api.ErrSocketError
}
