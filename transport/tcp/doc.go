// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp implements a non-blocking TCP socket whose recv/send are
// resolved by readiness events from an api.IOExecutor instead of blocking
// syscalls. Each pending operation is a Selectable task registered with the
// executor; the task performs the syscall once the reactor reports the
// handle ready and resolves the caller's callback exactly once.
package tcp
