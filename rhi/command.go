// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

// Layout is the expected access pattern of a texture.
// Explicit backends track and enforce layouts through
// Transition commands; queue-based backends track layouts
// automatically and elide transitions as no-ops.
type Layout int

// Texture layouts.
const (
	LayoutUndefined Layout = iota
	LayoutGeneral
	LayoutCopySrc
	LayoutCopyDst
	LayoutShaderRead
	LayoutRenderTarget
	LayoutDepthTarget
	LayoutPresent
)

// Transition describes a layout transition of one texture
// view's subresources.
type Transition struct {
	View   TextureView
	Before Layout
	After  Layout
}

// LoadOp is the type of an attachment's load operation.
type LoadOp int

// Load operations.
const (
	LoadDontCare LoadOp = iota
	LoadClear
	LoadKeep
)

// StoreOp is the type of an attachment's store operation.
type StoreOp int

// Store operations.
const (
	StoreDiscard StoreOp = iota
	Store
)

// ColorAttachment configures one color target of a render
// pass.
type ColorAttachment struct {
	View TextureView
	// Resolve, when non-nil, receives the resolved samples
	// of a multisampled View.
	Resolve TextureView
	Load    LoadOp
	Store   StoreOp
	Clear   [4]float32
}

// DepthStencilAttachment configures the depth/stencil target
// of a render pass.
type DepthStencilAttachment struct {
	View         TextureView
	DepthLoad    LoadOp
	DepthStore   StoreOp
	ClearDepth   float32
	StencilLoad  LoadOp
	StencilStore StoreOp
	ClearStencil uint32
}

// RenderPassDesc describes the targets of one render pass.
type RenderPassDesc struct {
	Colors []ColorAttachment
	// DS, when non-nil, attaches a depth/stencil target.
	DS    *DepthStencilAttachment
	Label string
}

// Viewport defines the bounds of a viewport.
type Viewport struct {
	X, Y, Width, Height, Znear, Zfar float32
}

// Scissor defines a scissor rectangle.
type Scissor struct {
	X, Y, Width, Height int
}

// BufferTextureCopy describes a copy between a buffer and
// one subresource of a texture.
// BufOff is a byte offset; RowLength and ImageHeight address
// the buffer data in pixels, with zero meaning tightly
// packed.
type BufferTextureCopy struct {
	Buffer      Buffer
	BufOff      int64
	RowLength   int
	ImageHeight int
	Texture     Texture
	Level       int
	Layer       int
	Layers      int
	TexOff      Off3D
	Size        Dim3D
}

// TextureCopy describes a copy between two textures.
type TextureCopy struct {
	From      Texture
	FromOff   Off3D
	FromLevel int
	FromLayer int
	To        Texture
	ToOff     Off3D
	ToLevel   int
	ToLayer   int
	Layers    int
	Size      Dim3D
}

// CommandEncoder is a mutable, single-use recording context.
// Its state machine is Recording until Finish succeeds, after
// which the encoder is invalid and the returned CommandBuffer
// holds the recorded work. Beginning a pass while another is
// open, or recording after Finish, fails with ErrUsage at
// call time.
type CommandEncoder interface {
	Destroyer

	// BeginRenderPass opens a render pass sub-encoder.
	// No other encoder method may be called until the pass
	// is ended.
	BeginRenderPass(desc *RenderPassDesc) (RenderPassEncoder, error)

	// BeginComputePass opens a compute pass sub-encoder.
	BeginComputePass() (ComputePassEncoder, error)

	// CopyBufferToBuffer copies size bytes between buffers.
	CopyBufferToBuffer(from Buffer, fromOff int64, to Buffer, toOff, size int64) error

	// CopyBufferToTexture copies buffer data into a texture
	// subresource. The destination must be in LayoutCopyDst
	// on explicit backends.
	CopyBufferToTexture(cpy *BufferTextureCopy) error

	// CopyTextureToBuffer copies a texture subresource into
	// a buffer.
	CopyTextureToBuffer(cpy *BufferTextureCopy) error

	// CopyTextureToTexture copies between textures.
	CopyTextureToTexture(cpy *TextureCopy) error

	// ClearBuffer fills a buffer range with zeros.
	// Off and size must be aligned to 4 bytes.
	ClearBuffer(buf Buffer, off, size int64) error

	// Transition records texture layout transitions.
	// Backends with automatic layout tracking validate the
	// request and elide it.
	Transition(ts []Transition) error

	// Finish ends recording and returns the executable
	// command buffer. It is the only legal transition out
	// of the recording state and is irreversible.
	Finish() (CommandBuffer, error)
}

// RenderPassEncoder records rendering state and draws within
// one open render pass. Calls after End fail with ErrUsage.
type RenderPassEncoder interface {
	// SetPipeline sets the render pipeline.
	SetPipeline(pl RenderPipeline) error

	// SetBindGroup binds a bind group at the given index of
	// the pipeline layout's namespace.
	SetBindGroup(index int, bg BindGroup) error

	// SetVertexBuffer binds a vertex buffer to a slot.
	SetVertexBuffer(slot int, buf Buffer, off int64) error

	// SetIndexBuffer binds the index buffer.
	SetIndexBuffer(format IndexFormat, buf Buffer, off int64) error

	// SetViewport sets the viewport bounds.
	SetViewport(vp Viewport) error

	// SetScissor sets the scissor rectangle.
	SetScissor(sc Scissor) error

	// Draw draws primitives.
	Draw(vertCount, instCount, baseVert, baseInst int) error

	// DrawIndexed draws indexed primitives.
	DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) error

	// DrawIndirect draws primitives with parameters read
	// from buf at the given byte offset.
	DrawIndirect(buf Buffer, off int64) error

	// DrawIndexedIndirect draws indexed primitives with
	// parameters read from buf at the given byte offset.
	DrawIndexedIndirect(buf Buffer, off int64) error

	// End closes the pass and returns control to the parent
	// encoder.
	End() error
}

// ComputePassEncoder records compute state and dispatches
// within one open compute pass.
type ComputePassEncoder interface {
	// SetPipeline sets the compute pipeline.
	SetPipeline(pl ComputePipeline) error

	// SetBindGroup binds a bind group at the given index.
	SetBindGroup(index int, bg BindGroup) error

	// Dispatch dispatches compute workgroups.
	Dispatch(x, y, z int) error

	// DispatchIndirect dispatches workgroups with counts
	// read from buf at the given byte offset.
	DispatchIndirect(buf Buffer, off int64) error

	// End closes the pass.
	End() error
}

// CommandBuffer is an immutable, executable command sequence
// produced by CommandEncoder.Finish. Its useful lifetime ends
// when a submission containing it retires; it must not be
// re-submitted while a previous submission of it is still in
// flight.
type CommandBuffer interface {
	Destroyer
}
