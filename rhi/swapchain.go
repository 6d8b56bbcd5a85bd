// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

import "errors"

// ErrCannotPresent means that the driver and/or device do
// not support presentation.
var ErrCannotPresent = errors.New("rhi: presentation not supported")

// ErrSwapchain represents an error related to a specific
// swapchain. It usually indicates that changes to the window
// or compositor made the swapchain unusable; the caller
// should resize or recreate it.
var ErrSwapchain = errors.New("rhi: swapchain-related error")

// PresentMode selects how presentation is paced.
type PresentMode int

// Present modes.
const (
	// PresentFifo waits for the vertical blank (vsync).
	// Always supported.
	PresentFifo PresentMode = iota
	// PresentMailbox replaces the pending image without
	// tearing.
	PresentMailbox
	// PresentImmediate presents without waiting, possibly
	// tearing.
	PresentImmediate
)

// WindowHandle is the opaque platform surface handle the RHI
// consumes. The windowing layer creates it; the RHI never
// creates windows itself. Exactly one of the fields is
// meaningful per backend.
type WindowHandle struct {
	// VulkanSurface is a pre-created VkSurfaceKHR, consumed
	// by explicit backends.
	VulkanSurface uintptr
	// SurfaceDescriptor is a backend-native surface
	// descriptor (e.g. *wgpu.SurfaceDescriptor), consumed
	// by queue-based backends.
	SurfaceDescriptor any
}

// SwapchainDesc describes a swapchain to create.
type SwapchainDesc struct {
	Window      WindowHandle
	Width       int
	Height      int
	Format      Format
	PresentMode PresentMode
	// BufferCount is the requested size of the image ring.
	// Backends clamp it to what the surface supports.
	BufferCount int
	Label       string
}

// Swapchain is a fixed-size ring of presentable textures
// bound to a surface. Each frame: Acquire an image view,
// render into it, submit work that signals the present wait
// semaphore, then Present.
type Swapchain interface {
	Destroyer

	// Acquire blocks until a presentable image is
	// available, signals the given semaphore (if non-nil)
	// when the image is ready for rendering, and returns
	// the image's view. It must be called at most once per
	// frame before Present.
	// The view is owned by the swapchain and becomes
	// invalid on Resize or Destroy.
	Acquire(signal Semaphore) (TextureView, error)

	// Present presents the most recently acquired image.
	// The given semaphore (if non-nil) must be signaled by
	// the submission that rendered into the image;
	// presenting without it risks displaying a partially
	// rendered image.
	Present(wait Semaphore) error

	// Resize recreates the image ring at the new size.
	// Callers must guarantee no in-flight references to the
	// old images (Device.WaitIdle) before calling; previous
	// views become invalid the instant recreation occurs.
	Resize(width, height int) error

	// Width returns the current image width.
	Width() int

	// Height returns the current image height.
	Height() int

	// Format returns the image format.
	Format() Format
}
