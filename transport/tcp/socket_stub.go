//go:build !linux
// +build !linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Stub implementation for unsupported platforms.

package tcp

import (
	"errors"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/transport"
)

// Socket is unavailable on this platform.
type Socket struct{}

// NewSocket returns a resource error on unsupported platforms.
func NewSocket(proto transport.Protocol, remote transport.Address) (*Socket, error) {
	return nil, api.ResourceError("socket create", errors.New("tcp: this platform is not supported"))
}
