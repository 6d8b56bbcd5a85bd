// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/nowead/mini-engine/rhi"
)

// NewFence creates a fence, optionally signaled.
// The native API exposes no fence object; completion of
// submitted work is observed by polling the device, so the
// fence is a host-side flag signaled by the submission's
// waiter goroutine.
func (d *Driver) NewFence(signaled bool) (rhi.Fence, error) {
	f := &fence{signaled: signaled}
	f.cond = sync.NewCond(&f.mu)
	return f, nil
}

type fence struct {
	mu       sync.Mutex
	cond     *sync.Cond
	signaled bool
}

func (f *fence) signal() {
	f.mu.Lock()
	f.signaled = true
	f.mu.Unlock()
	f.cond.Broadcast()
}

// Wait blocks until the fence is signaled or the timeout
// elapses.
func (f *fence) Wait(timeout time.Duration) (bool, error) {
	var expired bool
	var timer *time.Timer
	if timeout >= 0 {
		timer = time.AfterFunc(timeout, func() {
			f.mu.Lock()
			expired = true
			f.mu.Unlock()
			f.cond.Broadcast()
		})
		defer timer.Stop()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for !f.signaled && !expired {
		f.cond.Wait()
	}
	return f.signaled, nil
}

// Signaled reports the fence state without blocking.
func (f *fence) Signaled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

// Reset returns the fence to the unsignaled state.
func (f *fence) Reset() error {
	f.mu.Lock()
	f.signaled = false
	f.mu.Unlock()
	return nil
}

// Destroy invalidates the fence.
func (f *fence) Destroy() { *f = fence{} }

// NewSemaphore creates a binary semaphore.
// With a single queue and automatic resource tracking there
// is nothing for it to order; submissions validate and elide
// it.
func (d *Driver) NewSemaphore() (rhi.Semaphore, error) {
	return &semaphore{}, nil
}

type semaphore struct{}

func (s *semaphore) Destroy() {}

// NewTimelineSemaphore creates a timeline semaphore.
// The counter lives entirely on the host; GPU-side signals
// are serviced by submission waiter goroutines.
func (d *Driver) NewTimelineSemaphore(initial uint64) (rhi.TimelineSemaphore, error) {
	t := &timeline{value: initial}
	t.cond = sync.NewCond(&t.mu)
	return t, nil
}

type timeline struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value uint64
	dead  bool
}

// Value returns the current counter value.
func (t *timeline) Value() (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value, nil
}

// Signal sets the counter to value, which must be greater
// than the current value.
func (t *timeline) Signal(value uint64) error {
	t.mu.Lock()
	if value <= t.value {
		t.mu.Unlock()
		return fmt.Errorf("%w: timeline signal %d not greater than %d", rhi.ErrUsage, value, t.value)
	}
	t.value = value
	t.mu.Unlock()
	t.cond.Broadcast()
	return nil
}

// advance raises the counter to value if it is below it.
// Submission waiters may observe completion out of order, so
// unlike Signal this never fails.
func (t *timeline) advance(value uint64) {
	t.mu.Lock()
	if value > t.value {
		t.value = value
	}
	t.mu.Unlock()
	t.cond.Broadcast()
}

// Wait blocks until the counter reaches value or the timeout
// elapses.
func (t *timeline) Wait(value uint64, timeout time.Duration) (bool, error) {
	var expired bool
	if timeout >= 0 {
		timer := time.AfterFunc(timeout, func() {
			t.mu.Lock()
			expired = true
			t.mu.Unlock()
			t.cond.Broadcast()
		})
		defer timer.Stop()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.value < value && !expired && !t.dead {
		t.cond.Wait()
	}
	return t.value >= value, nil
}

// Destroy invalidates the semaphore and wakes any waiters.
func (t *timeline) Destroy() {
	t.mu.Lock()
	t.dead = true
	t.mu.Unlock()
	t.cond.Broadcast()
}
