//go:build !linux
// +build !linux

// Author: momentics <momentics@gmail.com>
//
// Descriptor constants for platforms without a native socket implementation.

package transport

import "syscall"

const (
	familyInet  Family = syscall.AF_INET
	familyInet6 Family = syscall.AF_INET6
)

var (
	protocolV4 = Protocol{Family: familyInet, Type: syscall.SOCK_STREAM, Proto: syscall.IPPROTO_TCP}
	protocolV6 = Protocol{Family: familyInet6, Type: syscall.SOCK_STREAM, Proto: syscall.IPPROTO_TCP}
)
