// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor multiplexes Selectable tasks over a level-triggered
// epoll instance and drives them on readiness.
//
// The registration table is owned by the goroutine running Poll or Run.
// Register, Unregister and Defer are meant to be called from that goroutine,
// which includes every completion that runs inline. Other goroutines hand
// work to the loop through Post, which wakes a blocked Poll.
package reactor
