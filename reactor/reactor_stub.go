//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"context"
	"errors"
	"time"

	"github.com/momentics/hioload-net/api"
)

var errUnsupported = errors.New("reactor: this platform is not supported")

// Reactor is unavailable on this platform.
type Reactor struct{}

// New returns a resource error on unsupported platforms.
func New(opts ...Option) (*Reactor, error) {
	return nil, api.ResourceError("epoll create", errUnsupported)
}

func (r *Reactor) Register(api.Selectable) error   { return errUnsupported }
func (r *Reactor) Unregister(int) error            { return errUnsupported }
func (r *Reactor) Defer(fn func())                 { fn() }
func (r *Reactor) Post(func()) error               { return errUnsupported }
func (r *Reactor) TryPost(func()) bool             { return false }
func (r *Reactor) Wake() error                     { return errUnsupported }
func (r *Reactor) Poll(time.Duration) (int, error) { return 0, errUnsupported }
func (r *Reactor) Run(context.Context) error       { return errUnsupported }
func (r *Reactor) Close() error                    { return nil }
func (r *Reactor) Stats() map[string]int64         { return nil }
func (r *Reactor) Registered() int                 { return 0 }
