// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

import (
	"fmt"
	"time"
)

// FrameContext holds the per-frame synchronization objects of
// one frame-in-flight slot. The render loop owns N contexts
// indexed by frame modulo N, so frame k can be recorded while
// frame k-N is still executing on the GPU. It is an explicit
// value passed into the loop each frame, not hidden state.
type FrameContext struct {
	// Index is the slot index in [0, N).
	Index int
	// Fence is signaled when the slot's previous submission
	// retires. It is created signaled so the first use of
	// each slot does not block.
	Fence Fence
	// ImageAvailable is signaled by Swapchain.Acquire.
	ImageAvailable Semaphore
	// RenderDone gates presentation on the slot's rendering
	// submission.
	RenderDone Semaphore
}

// NewFrameContexts creates n frame-in-flight slots from d.
// On error, slots created so far are destroyed.
func NewFrameContexts(d Device, n int) ([]FrameContext, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d frames in flight", ErrInvalidDesc, n)
	}
	fc := make([]FrameContext, 0, n)
	fail := func(err error) ([]FrameContext, error) {
		DestroyFrameContexts(fc)
		return nil, err
	}
	for i := range n {
		fence, err := d.NewFence(true)
		if err != nil {
			return fail(err)
		}
		avail, err := d.NewSemaphore()
		if err != nil {
			fence.Destroy()
			return fail(err)
		}
		done, err := d.NewSemaphore()
		if err != nil {
			fence.Destroy()
			avail.Destroy()
			return fail(err)
		}
		fc = append(fc, FrameContext{
			Index:          i,
			Fence:          fence,
			ImageAvailable: avail,
			RenderDone:     done,
		})
	}
	return fc, nil
}

// DestroyFrameContexts destroys every object in fc.
// Callers must ensure no slot is still in flight.
func DestroyFrameContexts(fc []FrameContext) {
	for i := range fc {
		if fc[i].Fence != nil {
			fc[i].Fence.Destroy()
		}
		if fc[i].ImageAvailable != nil {
			fc[i].ImageAvailable.Destroy()
		}
		if fc[i].RenderDone != nil {
			fc[i].RenderDone.Destroy()
		}
		fc[i] = FrameContext{}
	}
}

// Begin blocks until the slot's previous submission retires
// and resets the fence for reuse. It must be called before
// recording into the slot each frame.
func (fc *FrameContext) Begin(timeout time.Duration) error {
	ok, err := fc.Fence.Wait(timeout)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: frame %d fence timeout", ErrDeviceLost, fc.Index)
	}
	return fc.Fence.Reset()
}
