//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Linux non-blocking TCP socket.

package tcp

import (
	"sync"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/transport"
	"golang.org/x/sys/unix"
)

// Socket owns a native TCP endpoint together with its protocol and
// address descriptors. It never performs blocking I/O.
type Socket struct {
	fd       int
	protocol transport.Protocol
	remote   transport.Address

	mu          sync.Mutex
	nonBlocking bool
	open        bool
	state       State
}

// NewSocket creates the native endpoint for proto and forces it into
// non-blocking mode. remote is the peer for Connect, or the local endpoint
// for Bind.
func NewSocket(proto transport.Protocol, remote transport.Address) (*Socket, error) {
	fd, err := unix.Socket(int(proto.Family), proto.Type|unix.SOCK_CLOEXEC, proto.Proto)
	if err != nil {
		return nil, api.ResourceError("socket create", err)
	}
	s := &Socket{
		fd:       fd,
		protocol: proto,
		remote:   remote,
		open:     true,
		state:    Unconnected,
	}
	if err := s.SetNonBlocking(true); err != nil {
		_ = unix.Close(fd)
		return nil, api.ResourceError("socket create", err)
	}
	return s, nil
}

// newAcceptedSocket wraps an fd returned by accept4 with SOCK_NONBLOCK.
func newAcceptedSocket(fd int, proto transport.Protocol, peer transport.Address) *Socket {
	return &Socket{
		fd:          fd,
		protocol:    proto,
		remote:      peer,
		nonBlocking: true,
		open:        true,
		state:       Connected,
	}
}

// NativeHandle returns the OS descriptor.
func (s *Socket) NativeHandle() int { return s.fd }

// Protocol returns the socket's protocol descriptor.
func (s *Socket) Protocol() transport.Protocol { return s.protocol }

// RemoteAddress returns the bound address descriptor.
func (s *Socket) RemoteAddress() transport.Address { return s.remote }

// State returns the current lifecycle state.
func (s *Socket) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsOpen reports whether Close has not yet been called.
func (s *Socket) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// NonBlocking reports the non-blocking flag.
func (s *Socket) NonBlocking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonBlocking
}

// SetNonBlocking toggles O_NONBLOCK on the handle.
func (s *Socket) SetNonBlocking(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := setNonBlocking(s.fd, on); err != nil {
		return api.IOError("set nonblock", err)
	}
	s.nonBlocking = on
	return nil
}

// Equal reports handle identity; protocol and address are ignored.
func (s *Socket) Equal(other *Socket) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.fd == other.fd
}

// Connect issues a non-blocking connect to the remote address and returns
// the raw result: nil, unix.EINPROGRESS, or the failing errno. An empty IP
// targets the wildcard address. Completion must be confirmed through a
// WRITE readiness event; see AwaitConnect.
func (s *Socket) Connect() error {
	sa, err := transport.Sockaddr(s.protocol, s.remote)
	if err != nil {
		return api.NewError(api.ErrCodeInvalidArgument, "connect", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return api.IOError("connect", api.ErrClosed)
	}
	err = unix.Connect(s.fd, sa)
	switch err {
	case nil:
		s.state = Connected
	case unix.EINPROGRESS, unix.EINTR, unix.EALREADY:
		s.state = Connecting
	}
	return err
}

// AwaitConnect arms a WRITE interest that confirms an in-progress connect.
// cb receives nil once the connection is established, or the SO_ERROR
// reported by the kernel.
func (s *Socket) AwaitConnect(exec api.IOExecutor, cb func(err error)) {
	t := &connectTask{socket: s, exec: exec, cb: cb}
	if !s.IsOpen() {
		exec.Defer(func() { cb(api.IOError("connect", api.ErrClosed)) })
		return
	}
	if err := exec.Register(t); err != nil {
		exec.Defer(func() { cb(err) })
	}
}

// Bind binds the socket to its address with SO_REUSEADDR. An empty IP
// binds every interface.
func (s *Socket) Bind() error {
	sa, err := transport.Sockaddr(s.protocol, s.remote)
	if err != nil {
		return api.NewError(api.ErrCodeInvalidArgument, "bind", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return api.IOError("bind", api.ErrClosed)
	}
	if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return api.IOError("bind", err)
	}
	if err := unix.Bind(s.fd, sa); err != nil {
		return api.IOError("bind", err)
	}
	return nil
}

// Listen marks a bound socket as passive.
func (s *Socket) Listen(backlog int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return api.IOError("listen", api.ErrClosed)
	}
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}
	if err := unix.Listen(s.fd, backlog); err != nil {
		return api.IOError("listen", err)
	}
	s.state = Listening
	return nil
}

// LocalAddress returns the address the kernel assigned to the socket.
func (s *Socket) LocalAddress() (transport.Address, error) {
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return transport.Address{}, api.IOError("getsockname", err)
	}
	return transport.FromSockaddr(sa), nil
}

// Accept takes one pending connection without blocking. With no pending
// connection the error wraps unix.EAGAIN.
func (s *Socket) Accept() (*Socket, error) {
	for {
		nfd, sa, err := unix.Accept4(s.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err == unix.EINTR || err == unix.ECONNABORTED {
			continue
		}
		if err != nil {
			return nil, api.IOError("accept", err)
		}
		return newAcceptedSocket(nfd, s.protocol, transport.FromSockaddr(sa)), nil
	}
}

// AcceptAsync resolves cb with the next incoming connection once the
// listening handle becomes readable.
func (s *Socket) AcceptAsync(exec api.IOExecutor, cb func(conn *Socket, err error)) {
	t := &acceptTask{socket: s, exec: exec, cb: cb}
	if !s.IsOpen() {
		exec.Defer(func() { cb(nil, api.IOError("accept", api.ErrClosed)) })
		return
	}
	if err := exec.Register(t); err != nil {
		exec.Defer(func() { cb(nil, err) })
	}
}

// Recv registers READ interest; on readiness up to len(buf) bytes are read
// and cb receives the count. A zero-byte read resolves with
// api.ErrRemoteClosed.
func (s *Socket) Recv(buf []byte, exec api.IOExecutor, cb api.IOCallback) {
	s.submit(&ioTask{socket: s, op: api.OpRead, buf: buf, exec: exec, cb: cb})
}

// Send registers WRITE interest; on readiness buf is written and cb
// receives the number of bytes accepted by the kernel, which may be short.
func (s *Socket) Send(buf []byte, exec api.IOExecutor, cb api.IOCallback) {
	s.submit(&ioTask{socket: s, op: api.OpWrite, buf: buf, exec: exec, cb: cb})
}

func (s *Socket) submit(t *ioTask) {
	if !s.IsOpen() {
		t.resolve(0, api.IOError(t.name(), api.ErrClosed))
		return
	}
	if err := t.exec.Register(t); err != nil {
		t.resolve(0, err)
	}
}

// Shutdown disables the given direction(s). An invalid handle or kind is a
// silent no-op; a failing syscall is reported.
func (s *Socket) Shutdown(kind ShutdownKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.fd < 0 || !kind.valid() {
		return nil
	}
	how := unix.SHUT_RD
	switch kind {
	case ShutWrite:
		how = unix.SHUT_WR
	case ShutBoth:
		how = unix.SHUT_RDWR
	}
	if err := unix.Shutdown(s.fd, how); err != nil {
		return api.IOError("shutdown", err)
	}
	s.state = s.state.next(kind)
	return nil
}

// Close releases the handle. Only the first call issues close(2); later
// calls return nil without touching the descriptor. Operations still armed
// on an executor stay queued under the old descriptor number, so callers
// should Unregister the handle first.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.fd < 0 {
		return nil
	}
	s.open = false
	s.state = Closed
	if err := unix.Close(s.fd); err != nil {
		return api.IOError("close", err)
	}
	return nil
}

// read and write run on the dispatching goroutine.

func (s *Socket) read(buf []byte) (int, error) {
	for {
		n, err := unix.Read(s.fd, buf)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func (s *Socket) write(buf []byte) (int, error) {
	for {
		n, err := unix.SendmsgN(s.fd, buf, nil, nil, unix.MSG_NOSIGNAL)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func (s *Socket) markConnected() {
	s.mu.Lock()
	if s.state == Connecting || s.state == Unconnected {
		s.state = Connected
	}
	s.mu.Unlock()
}
