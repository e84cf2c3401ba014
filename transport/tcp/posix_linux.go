//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Platform helpers for the Linux socket.

package tcp

import (
	"errors"

	"golang.org/x/sys/unix"
)

func setNonBlocking(fd int, on bool) error {
	return unix.SetNonblock(fd, on)
}

// pendingError returns the socket's SO_ERROR, or nil when none is pending.
func pendingError(fd int) error {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if v != 0 {
		return unix.Errno(v)
	}
	return nil
}

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}
