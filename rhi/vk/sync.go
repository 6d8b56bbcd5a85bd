// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	"fmt"
	"sync"
	"time"

	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

// NewFence creates a new fence.
func (d *Driver) NewFence(signaled bool) (rhi.Fence, error) {
	info := vulkan.FenceCreateInfo{
		SType: vulkan.StructureTypeFenceCreateInfo,
	}
	if signaled {
		info.Flags = vulkan.FenceCreateFlags(vulkan.FenceCreateSignaledBit)
	}
	var f vulkan.Fence
	res := vulkan.CreateFence(d.dev, &info, nil, &f)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	return &fence{d: d, f: f}, nil
}

// fence implements rhi.Fence.
type fence struct {
	d *Driver
	f vulkan.Fence
}

// Wait blocks until the fence is signaled or timeout elapses.
func (f *fence) Wait(timeout time.Duration) (bool, error) {
	ns := uint64(vulkan.MaxUint64)
	if timeout >= 0 {
		ns = uint64(timeout.Nanoseconds())
	}
	res := vulkan.WaitForFences(f.d.dev, 1, []vulkan.Fence{f.f}, vulkan.True, ns)
	if res == vulkan.Timeout {
		return false, nil
	}
	if err := checkResult(res); err != nil {
		return false, err
	}
	return true, nil
}

// Signaled reports the fence state without blocking.
func (f *fence) Signaled() bool {
	return vulkan.GetFenceStatus(f.d.dev, f.f) == vulkan.Success
}

// Reset returns the fence to the unsignaled state.
func (f *fence) Reset() error {
	return checkResult(vulkan.ResetFences(f.d.dev, 1, []vulkan.Fence{f.f}))
}

// Destroy destroys the fence.
func (f *fence) Destroy() {
	if f.d != nil {
		vulkan.DestroyFence(f.d.dev, f.f, nil)
	}
	*f = fence{}
}

// NewSemaphore creates a new binary semaphore.
func (d *Driver) NewSemaphore() (rhi.Semaphore, error) {
	var s vulkan.Semaphore
	res := vulkan.CreateSemaphore(d.dev, &vulkan.SemaphoreCreateInfo{
		SType: vulkan.StructureTypeSemaphoreCreateInfo,
	}, nil, &s)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	return &semaphore{d: d, sem: s}, nil
}

// semaphore implements rhi.Semaphore.
type semaphore struct {
	d   *Driver
	sem vulkan.Semaphore
}

// Destroy destroys the semaphore.
func (s *semaphore) Destroy() {
	if s.d != nil {
		vulkan.DestroySemaphore(s.d.dev, s.sem, nil)
	}
	*s = semaphore{}
}

// NewTimelineSemaphore creates a new timeline semaphore.
// The counter lives on the host; queue submissions signal it
// through completion fences, so CPU/GPU and cross-queue waits
// behave as if the counter were device-resident.
func (d *Driver) NewTimelineSemaphore(initial uint64) (rhi.TimelineSemaphore, error) {
	t := &timeline{value: initial}
	t.cond = sync.NewCond(&t.mu)
	return t, nil
}

// timeline implements rhi.TimelineSemaphore.
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
	if t.dead {
		return 0, rhi.ErrUsage
	}
	return t.value, nil
}

// Signal sets the counter to value.
func (t *timeline) Signal(value uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dead {
		return rhi.ErrUsage
	}
	if value <= t.value {
		return fmt.Errorf("%w: timeline signal %d, current %d", rhi.ErrUsage, value, t.value)
	}
	t.value = value
	t.cond.Broadcast()
	return nil
}

// advance is Signal without the monotonicity check, used by
// submission watchers whose completion order is not
// guaranteed to match signal value order.
func (t *timeline) advance(value uint64) {
	t.mu.Lock()
	if !t.dead && value > t.value {
		t.value = value
		t.cond.Broadcast()
	}
	t.mu.Unlock()
}

// Wait blocks until the counter reaches value.
func (t *timeline) Wait(value uint64, timeout time.Duration) (bool, error) {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
		// Waiters are only notified on signals, so a bounded
		// wait needs a wakeup at the deadline.
		time.AfterFunc(timeout, func() {
			t.mu.Lock()
			t.cond.Broadcast()
			t.mu.Unlock()
		})
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.value < value {
		if t.dead {
			return false, rhi.ErrUsage
		}
		if timeout >= 0 && !time.Now().Before(deadline) {
			return false, nil
		}
		t.cond.Wait()
	}
	return true, nil
}

// Destroy invalidates the timeline and wakes all waiters.
func (t *timeline) Destroy() {
	t.mu.Lock()
	t.dead = true
	t.cond.Broadcast()
	t.mu.Unlock()
}
