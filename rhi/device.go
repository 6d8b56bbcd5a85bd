// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

// Device is the root object of a backend.
// It is used to create every other type and to reach the
// backend's queues. A Device is obtained from a call to
// Driver.Open and remains valid until the driver is closed.
// Callers must destroy objects in reverse order of creation;
// the Device is always torn down last.
type Device interface {
	// Driver returns the Driver that owns the Device.
	Driver() Driver

	// Queue returns the queue serving the given role.
	// The returned Queue is owned by the Device and valid
	// for the Device's lifetime. Backends without a
	// dedicated queue for the role return the graphics
	// queue instead.
	Queue(role QueueRole) Queue

	// NewBuffer creates a new buffer.
	NewBuffer(desc *BufferDesc) (Buffer, error)

	// NewTexture creates a new texture.
	NewTexture(desc *TextureDesc) (Texture, error)

	// NewSampler creates a new sampler.
	NewSampler(desc *SamplerDesc) (Sampler, error)

	// NewShader creates a new shader module.
	// Backends that cannot consume desc.Language must
	// either translate internally or fail with
	// ErrShaderLanguage.
	NewShader(desc *ShaderDesc) (Shader, error)

	// NewBindGroupLayout creates a new bind group layout.
	NewBindGroupLayout(desc *BindGroupLayoutDesc) (BindGroupLayout, error)

	// NewBindGroup creates a new bind group.
	// Its entries must conform exactly to desc.Layout.
	NewBindGroup(desc *BindGroupDesc) (BindGroup, error)

	// NewPipelineLayout creates a new pipeline layout.
	NewPipelineLayout(desc *PipelineLayoutDesc) (PipelineLayout, error)

	// NewRenderPipeline creates a new render pipeline.
	// Validation of the descriptor against the Device's
	// limits happens here, not at draw time.
	NewRenderPipeline(desc *RenderPipelineDesc) (RenderPipeline, error)

	// NewComputePipeline creates a new compute pipeline.
	NewComputePipeline(desc *ComputePipelineDesc) (ComputePipeline, error)

	// NewCommandEncoder creates a new command encoder in the
	// recording state.
	NewCommandEncoder() (CommandEncoder, error)

	// NewFence creates a new fence, optionally in the
	// signaled state.
	NewFence(signaled bool) (Fence, error)

	// NewSemaphore creates a new binary semaphore.
	NewSemaphore() (Semaphore, error)

	// NewTimelineSemaphore creates a new timeline semaphore
	// whose counter starts at the given value.
	NewTimelineSemaphore(initial uint64) (TimelineSemaphore, error)

	// NewSwapchain creates a new swapchain bound to the
	// platform surface named by desc.Window.
	NewSwapchain(desc *SwapchainDesc) (Swapchain, error)

	// Limits returns the implementation limits.
	// They are immutable for the lifetime of the Device.
	Limits() Limits

	// Features returns the optional features supported by
	// the Device.
	Features() Features

	// WaitIdle blocks until every queue has finished all
	// submitted work. It is meant for teardown and resize
	// paths, never for per-frame use.
	WaitIdle() error
}

// Destroyer is the interface that wraps the Destroy method.
// Types that implement this interface may hold native handles
// or memory that is not managed by GC, so Destroy must be
// called explicitly to release them. Destroy must be called
// exactly once per object; calling methods on a destroyed
// object is undefined.
type Destroyer interface {
	Destroy()
}

// QueueRole identifies the kind of work a queue serves.
type QueueRole int

// Queue roles.
const (
	QueueGraphics QueueRole = iota
	QueueCompute
	QueueTransfer
)

// Submission describes a batch handed to Queue.Submit.
// Command buffers execute in slice order. Wait semaphores
// gate the whole batch; signal semaphores and the fence are
// signaled when the whole batch completes.
type Submission struct {
	CommandBuffers []CommandBuffer
	Wait           []Semaphore
	Signal         []Semaphore
	WaitTimeline   []TimelinePoint
	SignalTimeline []TimelinePoint
	// Fence, if non-nil, is signaled when every command in
	// the batch has finished executing. It is the only
	// primitive the CPU may block on.
	Fence Fence
}

// Queue is the interface that defines a submission queue.
// Within one queue, submissions execute in submission order.
// Across queues, ordering exists only where semaphores or
// timeline semaphores establish it.
type Queue interface {
	// Role returns the role the queue was obtained for.
	Role() QueueRole

	// Submit enqueues a batch for execution.
	// A command buffer must not be re-submitted while a
	// previous submission of it is still in flight.
	Submit(sub *Submission) error

	// WaitIdle blocks until all work submitted to this
	// queue so far has finished executing. It is a coarse
	// fallback equivalent to a fence covering everything
	// submitted.
	WaitIdle() error
}
