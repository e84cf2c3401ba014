// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-net/api"
)

var _ api.IOExecutor = (*FakeExecutor)(nil)

// FakeExecutor is an in-memory api.IOExecutor for tests. Nothing is
// multiplexed: the test fires ready sets explicitly and completions run
// inline from Defer.
type FakeExecutor struct {
	mu          sync.Mutex
	tasks       map[int][]api.Selectable
	epoch       map[int]int // bumped by Unregister
	registered  int
	unregisters []int

	// RegisterErr, when set, is returned by every Register call.
	RegisterErr error
}

// NewFakeExecutor creates an empty FakeExecutor.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{
		tasks: make(map[int][]api.Selectable),
		epoch: make(map[int]int),
	}
}

// Register records sel under its handle.
func (f *FakeExecutor) Register(sel api.Selectable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	fd := sel.NativeHandle()
	f.tasks[fd] = append(f.tasks[fd], sel)
	f.registered++
	return nil
}

// Unregister drops every task on handle, cancelling those that implement
// api.Canceler with api.ErrClosed.
func (f *FakeExecutor) Unregister(handle int) error {
	f.mu.Lock()
	f.unregisters = append(f.unregisters, handle)
	f.epoch[handle]++
	tasks, ok := f.tasks[handle]
	delete(f.tasks, handle)
	f.mu.Unlock()
	if !ok {
		return api.ErrNotFound
	}
	for _, t := range tasks {
		if c, ok := t.(api.Canceler); ok {
			c.Cancel(api.ErrClosed)
		}
	}
	return nil
}

// Defer runs fn inline.
func (f *FakeExecutor) Defer(fn func()) { fn() }

// Pending returns the tasks armed on handle.
func (f *FakeExecutor) Pending(handle int) []api.Selectable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Selectable(nil), f.tasks[handle]...)
}

// Unregistered returns the handles passed to Unregister, in call order.
func (f *FakeExecutor) Unregistered() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.unregisters...)
}

// Registered returns the total number of successful Register calls.
func (f *FakeExecutor) Registered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registered
}

// Fire delivers ready to every task on handle whose interest overlaps it
// (EXCEPT and REMOTE_CLOSE reach all tasks), dropping tasks that resolve.
// It returns the number of tasks resolved.
func (f *FakeExecutor) Fire(handle int, ready api.Ops) int {
	f.mu.Lock()
	tasks := append([]api.Selectable(nil), f.tasks[handle]...)
	epoch := f.epoch[handle]
	f.mu.Unlock()

	var keep []api.Selectable
	resolved := 0
	for _, t := range tasks {
		mask := t.Interest() | api.OpExcept | api.OpRemoteClose
		if ready&mask == 0 || !t.Handle(ready&mask) {
			keep = append(keep, t)
			continue
		}
		resolved++
	}

	f.mu.Lock()
	if f.epoch[handle] == epoch {
		// keep tasks registered by callbacks during this round
		keep = append(keep, f.tasks[handle][len(tasks):]...)
		if len(keep) == 0 {
			delete(f.tasks, handle)
		} else {
			f.tasks[handle] = keep
		}
	}
	f.mu.Unlock()
	return resolved
}
