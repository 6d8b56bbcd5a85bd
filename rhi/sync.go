// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

import "time"

// Fence is a binary, CPU-observable signal.
// It is signaled by a submission that names it and must be
// reset before reuse.
type Fence interface {
	Destroyer

	// Wait blocks until the fence is signaled or the
	// timeout elapses. It returns true if the fence was
	// signaled, false on timeout. A negative timeout waits
	// forever.
	Wait(timeout time.Duration) (bool, error)

	// Signaled reports the fence state without blocking.
	Signaled() bool

	// Reset returns the fence to the unsignaled state.
	Reset() error
}

// Semaphore is a binary, GPU-only ordering signal.
// Its lifetime of meaning is one signal/wait pairing within
// queue submissions; the CPU can neither wait on nor inspect
// it.
type Semaphore interface {
	Destroyer
}

// TimelineSemaphore is a monotonically increasing 64-bit
// counter usable by both the CPU and the GPU, enabling
// cross-queue ordering without a full device wait.
type TimelineSemaphore interface {
	Destroyer

	// Value returns the current counter value.
	Value() (uint64, error)

	// Signal sets the counter to value, which must be
	// greater than the current value.
	Signal(value uint64) error

	// Wait blocks until the counter reaches value or the
	// timeout elapses. It returns true if the value was
	// reached. A negative timeout waits forever.
	Wait(value uint64, timeout time.Duration) (bool, error)
}

// TimelinePoint names a value on a timeline semaphore for
// use in a Submission's wait/signal lists.
type TimelinePoint struct {
	Semaphore TimelineSemaphore
	Value     uint64
}
