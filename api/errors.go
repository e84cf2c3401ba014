// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-net.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrRemoteClosed    = errors.New("remote closed")
	ErrSocketError     = errors.New("socket error condition")
	ErrClosed          = errors.New("resource is closed")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("resource not found")
)

// ErrorCode classifies failures surfaced by the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	// ErrCodeResource: a channel, socket or poller could not be created.
	ErrCodeResource
	// ErrCodeIO: a syscall on an existing resource failed.
	ErrCodeIO
	// ErrCodeRemoteClosed: orderly peer close (zero-byte read).
	ErrCodeRemoteClosed
	ErrCodeInvalidArgument
	ErrCodeNotFound
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeResource:
		return "resource"
	case ErrCodeIO:
		return "io"
	case ErrCodeRemoteClosed:
		return "remote closed"
	case ErrCodeInvalidArgument:
		return "invalid argument"
	case ErrCodeNotFound:
		return "not found"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Error is a structured error carrying a code, the failing operation and
// the underlying cause.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new structured error.
func NewError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// ResourceError reports a failed construction.
func ResourceError(op string, err error) *Error {
	return NewError(ErrCodeResource, op, err)
}

// IOError reports a failed syscall on a live resource.
func IOError(op string, err error) *Error {
	return NewError(ErrCodeIO, op, err)
}

// CodeOf extracts the ErrorCode of err, or ErrCodeOK for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, ErrRemoteClosed) {
		return ErrCodeRemoteClosed
	}
	return ErrCodeIO
}

// IsRemoteClosed reports whether err is an orderly peer close.
func IsRemoteClosed(err error) bool {
	return errors.Is(err, ErrRemoteClosed)
}
