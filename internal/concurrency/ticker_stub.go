//go:build !linux
// +build !linux

// File: internal/concurrency/ticker_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub ticker for unsupported platforms.

package concurrency

import (
	"errors"
	"time"

	"github.com/momentics/hioload-net/api"
)

var errTickerUnsupported = errors.New("ticker: this platform is not supported")

// Ticker is unavailable on this platform.
type Ticker struct{}

// TickerOption configures a Ticker.
type TickerOption func(*Ticker)

// WithTimeout is accepted for API compatibility.
func WithTimeout(d time.Duration) TickerOption { return func(*Ticker) {} }

// WithoutTimeout is accepted for API compatibility.
func WithoutTimeout() TickerOption { return func(*Ticker) {} }

// NewTicker always fails with a resource error.
func NewTicker(opts ...TickerOption) (*Ticker, error) {
	return nil, api.ResourceError("ticker pipe", errTickerUnsupported)
}

func (t *Ticker) Timeout() time.Duration { return 0 }
func (t *Ticker) Fd() int                { return -1 }
func (t *Ticker) Tick() (bool, error)    { return false, api.IOError("ticker tick", errTickerUnsupported) }
func (t *Ticker) Cancel() error          { return api.IOError("ticker cancel", errTickerUnsupported) }
func (t *Ticker) Drain()                 {}
func (t *Ticker) Close() error           { return nil }
