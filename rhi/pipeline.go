// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

// BindingType is the kind of resource a binding refers to.
type BindingType int

// Binding types.
const (
	BindUniformBuffer BindingType = iota
	BindStorageBuffer
	BindSampledTexture
	BindStorageTexture
	BindSampler
)

// BindingLayout declares one binding slot within a bind
// group layout: its index, resource kind, element count and
// the stages that may access it.
type BindingLayout struct {
	Binding int
	Type    BindingType
	Count   int
	Stages  ShaderStage
}

// BindGroupLayoutDesc describes a bind group layout: the
// schema a conforming bind group must match exactly.
type BindGroupLayoutDesc struct {
	Bindings []BindingLayout
	Label    string
}

// BindGroupLayout is the interface that defines the schema
// of a bind group.
type BindGroupLayout interface {
	Destroyer
}

// BindingEntry supplies the concrete resource for one
// binding slot. Exactly one of Buffer, View or Sampler must
// be set, matching the slot's declared BindingType.
type BindingEntry struct {
	Binding int
	Buffer  Buffer
	Off     int64
	// Size of the bound buffer range; zero means the whole
	// buffer past Off.
	Size    int64
	View    TextureView
	Sampler Sampler
}

// BindGroupDesc describes a bind group conforming to exactly
// one layout.
type BindGroupDesc struct {
	Layout  BindGroupLayout
	Entries []BindingEntry
	Label   string
}

// BindGroup is the interface that defines a concrete set of
// resource bindings.
type BindGroup interface {
	Destroyer
}

// PipelineLayoutDesc describes the ordered list of bind
// group layouts defining a pipeline's binding namespace.
type PipelineLayoutDesc struct {
	Layouts []BindGroupLayout
	Label   string
}

// PipelineLayout is the interface that defines a pipeline's
// binding namespace.
type PipelineLayout interface {
	Destroyer
}

// VertexFormat describes the format of one vertex attribute.
type VertexFormat int

// Vertex formats.
const (
	VFFloat32 VertexFormat = iota
	VFFloat32x2
	VFFloat32x3
	VFFloat32x4
	VFUint32
	VFUint32x2
	VFUint32x3
	VFUint32x4
	VFSint32
	VFSint32x2
	VFSint32x3
	VFSint32x4
	VFUint8x4
	VFUnorm8x4
)

// Size returns the byte size of one element of f.
func (f VertexFormat) Size() int {
	switch f {
	case VFFloat32, VFUint32, VFSint32, VFUint8x4, VFUnorm8x4:
		return 4
	case VFFloat32x2, VFUint32x2, VFSint32x2:
		return 8
	case VFFloat32x3, VFUint32x3, VFSint32x3:
		return 12
	case VFFloat32x4, VFUint32x4, VFSint32x4:
		return 16
	}
	return 0
}

// VertexAttr describes one attribute fetched from a vertex
// buffer.
type VertexAttr struct {
	Format VertexFormat
	Offset int
	// Location is the shader input slot.
	Location int
}

// StepMode selects per-vertex or per-instance advance for a
// vertex buffer.
type StepMode int

// Step modes.
const (
	StepVertex StepMode = iota
	StepInstance
)

// VertexLayout describes the memory layout of one bound
// vertex buffer. Attribute offsets plus their format sizes
// must fit within Stride.
type VertexLayout struct {
	Stride int
	Step   StepMode
	Attrs  []VertexAttr
}

// Topology determines how vertex data is assembled into
// primitives.
type Topology int

// Primitive topologies.
const (
	TopoTriangles Topology = iota
	TopoTriangleStrip
	TopoLines
	TopoLineStrip
	TopoPoints
)

// IndexFormat describes the format of index buffer data.
type IndexFormat int

// Index formats. The value is the index size in bytes.
const (
	Index16 IndexFormat = 2
	Index32 IndexFormat = 4
)

// CullMode determines primitive culling based on facing.
type CullMode int

// Cull modes.
const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// FrontFace is the winding order considered front-facing.
type FrontFace int

// Winding orders.
const (
	FrontCCW FrontFace = iota
	FrontCW
)

// RasterState defines the rasterization state of a render
// pipeline.
type RasterState struct {
	Cull      CullMode
	Front     FrontFace
	DepthBias bool
	BiasValue float32
	BiasSlope float32
	BiasClamp float32
}

// DepthStencilState defines the depth/stencil state of a
// render pipeline. Format must be a depth-capable format.
type DepthStencilState struct {
	Format     Format
	DepthTest  bool
	DepthWrite bool
	DepthCmp   CmpFunc
}

// BlendOp is the type of blend operations.
type BlendOp int

// Blend operations.
const (
	BlendAdd BlendOp = iota
	BlendSubtract
	BlendRevSubtract
	BlendMin
	BlendMax
)

// BlendFactor is the type of blend factors.
type BlendFactor int

// Blend factors.
const (
	FacZero BlendFactor = iota
	FacOne
	FacSrcColor
	FacInvSrcColor
	FacSrcAlpha
	FacInvSrcAlpha
	FacDstColor
	FacInvDstColor
	FacDstAlpha
	FacInvDstAlpha
)

// BlendComp defines one blend component (color or alpha).
type BlendComp struct {
	Op     BlendOp
	SrcFac BlendFactor
	DstFac BlendFactor
}

// ColorTarget describes one color render target of a render
// pipeline.
type ColorTarget struct {
	Format Format
	// Blend enables blending with the given parameters.
	Blend bool
	Color BlendComp
	Alpha BlendComp
}

// RenderPipelineDesc describes the fully-baked state of a
// render pipeline. Recreation is required if any field
// changes.
type RenderPipelineDesc struct {
	VertFunc ShaderFunc
	FragFunc ShaderFunc
	Layout   PipelineLayout
	Vertex   []VertexLayout
	Topology Topology
	Raster   RasterState
	Samples  int
	// DS, when non-nil, enables the depth/stencil stage.
	DS      *DepthStencilState
	Targets []ColorTarget
	Label   string
}

// RenderPipeline is the interface that defines an immutable
// graphics pipeline.
type RenderPipeline interface {
	Destroyer
}

// ComputePipelineDesc describes the state of a compute
// pipeline: a single compute shader plus its layout.
type ComputePipelineDesc struct {
	Func   ShaderFunc
	Layout PipelineLayout
	Label  string
}

// ComputePipeline is the interface that defines an immutable
// compute pipeline.
type ComputePipeline interface {
	Destroyer
}
