// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

// BufferUsage is a mask indicating valid uses for a buffer.
type BufferUsage int

// Buffer usage flags.
const (
	// The buffer can be the source of copy commands.
	UsageCopySrc BufferUsage = 1 << iota
	// The buffer can be the destination of copy commands.
	UsageCopyDst
	// The buffer can provide vertex data for draw calls.
	UsageVertex
	// The buffer can provide index data for draw calls.
	UsageIndex
	// The buffer can back a uniform binding.
	UsageUniform
	// The buffer can back a storage binding.
	UsageStorage
	// The buffer can supply indirect draw/dispatch
	// parameters.
	UsageIndirect
	// The buffer can be mapped for reading.
	UsageMapRead
	// The buffer can be mapped for writing.
	UsageMapWrite
)

// Mappable returns whether the usage allows Map/MapRange.
func (u BufferUsage) Mappable() bool {
	return u&(UsageMapRead|UsageMapWrite) != 0
}

// BufferDesc describes a buffer to create.
type BufferDesc struct {
	Size  int64
	Usage BufferUsage
	// MappedAtCreation requests that the buffer be created
	// already mapped, regardless of mappable usage flags,
	// so initial contents can be written before first use.
	MappedAtCreation bool
	Label            string
}

// Buffer is the interface that defines a GPU buffer.
// The size of a buffer is fixed. When a larger buffer is
// necessary, a new one must be created and the data copied
// explicitly.
type Buffer interface {
	Destroyer

	// Size returns the size of the buffer in bytes.
	// This value is immutable.
	Size() int64

	// Usage returns the usage the buffer was created with.
	Usage() BufferUsage

	// Map maps the whole buffer and returns a host-visible
	// byte slice of length Size.
	// The buffer must have been created with a mappable
	// usage or with MappedAtCreation; otherwise Map fails
	// with ErrUsage. At most one accessor may hold a
	// mapping at a time.
	Map() ([]byte, error)

	// MapRange maps the given byte range.
	// The range must lie within the buffer.
	MapRange(off, size int64) ([]byte, error)

	// Unmap releases the current mapping. Slices returned
	// by Map/MapRange must not be accessed afterwards.
	// Unmapping an unmapped buffer is a no-op.
	Unmap()

	// Write copies len(data) bytes into the buffer at off.
	// It is always legal regardless of mappability; backends
	// implement it either as map-copy-unmap or as a
	// queue-side upload. Unless the caller awaits a matching
	// synchronization primitive afterwards, the write must
	// be treated as asynchronous relative to GPU work.
	Write(data []byte, off int64) error
}

// Dim3D is a three-dimensional size.
type Dim3D struct {
	Width, Height, Depth int
}

// Off3D is a three-dimensional offset.
type Off3D struct {
	X, Y, Z int
}

// TextureDim is the dimensionality of a texture.
type TextureDim int

// Texture dimensions.
const (
	Tex1D TextureDim = iota
	Tex2D
	Tex3D
)

// TextureUsage is a mask indicating valid uses for a texture.
type TextureUsage int

// Texture usage flags.
const (
	// The texture can be the source of copy commands.
	TexCopySrc TextureUsage = 1 << iota
	// The texture can be the destination of copy commands.
	TexCopyDst
	// The texture can be sampled in shaders.
	TexSampled
	// The texture can be read/written as a storage image.
	TexStorage
	// The texture can be used as a render target.
	TexRenderTarget
)

// TextureDesc describes a texture to create.
type TextureDesc struct {
	Dim     TextureDim
	Size    Dim3D
	Layers  int
	Levels  int
	Samples int
	Format  Format
	Usage   TextureUsage
	Label   string
}

// ViewDim is the dimensionality of a texture view.
type ViewDim int

// View dimensions.
const (
	View1D ViewDim = iota
	View2D
	View3D
	ViewCube
	View2DArray
	ViewCubeArray
)

// TextureViewDesc describes a typed view of a texture's
// memory. The declared mip/layer range must lie within the
// parent texture's allocated ranges.
type TextureViewDesc struct {
	Dim        ViewDim
	Format     Format
	BaseLevel  int
	LevelCount int
	BaseLayer  int
	LayerCount int
	Label      string
}

// Texture is the interface that defines a GPU texture.
// Direct access to texture memory is not provided; copying
// data between the CPU and a texture requires a staging
// buffer and the encoder's copy commands.
type Texture interface {
	Destroyer

	// Dim returns the texture's dimensionality.
	Dim() TextureDim

	// Size returns the dimensions of mip level 0.
	Size() Dim3D

	// Layers returns the number of array layers.
	Layers() int

	// Levels returns the number of mip levels.
	Levels() int

	// Samples returns the sample count.
	Samples() int

	// Format returns the texture's format.
	Format() Format

	// Usage returns the usage the texture was created with.
	Usage() TextureUsage

	// NewView creates a typed view of a subrange of the
	// texture. It never copies pixel data. All views must
	// be destroyed before the texture itself.
	NewView(desc *TextureViewDesc) (TextureView, error)

	// NewDefaultView creates a view covering every level
	// and layer of the texture, in the texture's format.
	NewDefaultView() (TextureView, error)
}

// TextureView is the interface that defines a typed view of
// a Texture. A view holds a non-owning reference to its
// parent; it never carries destruction authority over the
// backing memory.
type TextureView interface {
	Destroyer

	// Texture returns the parent texture.
	// Swapchain-owned views return nil.
	Texture() Texture

	// Format returns the view's format.
	Format() Format

	// Dim returns the view's dimensionality.
	Dim() ViewDim
}

// Filter is the type of sampler filters.
type Filter int

// Filters.
const (
	FilterNearest Filter = iota
	FilterLinear
)

// AddrMode is the type of sampler address modes.
type AddrMode int

// Address modes.
const (
	AddrRepeat AddrMode = iota
	AddrMirror
	AddrClamp
)

// CmpFunc is the type of comparison functions.
type CmpFunc int

// Comparison functions.
const (
	CmpNever CmpFunc = iota
	CmpLess
	CmpEqual
	CmpLessEqual
	CmpGreater
	CmpNotEqual
	CmpGreaterEqual
	CmpAlways
)

// SamplerDesc describes an immutable sampler configuration.
type SamplerDesc struct {
	Min    Filter
	Mag    Filter
	Mipmap Filter
	AddrU  AddrMode
	AddrV  AddrMode
	AddrW  AddrMode
	MinLOD float32
	MaxLOD float32
	// MaxAniso enables anisotropic filtering when > 1.
	MaxAniso int
	// Compare enables comparison sampling (shadow maps).
	Compare bool
	Cmp     CmpFunc
	Label   string
}

// Sampler is the interface that defines a texture sampler.
// Samplers carry no runtime state.
type Sampler interface {
	Destroyer
}

// ShaderLanguage tags the language of a shader blob.
type ShaderLanguage int

// Shader languages.
const (
	// ShaderSPIRV is the intermediate binary form consumed
	// natively by explicit backends.
	ShaderSPIRV ShaderLanguage = iota
	// ShaderWGSL is the textual form consumed natively by
	// queue-based backends.
	ShaderWGSL
)

// ShaderStage is a mask of programmable stages.
type ShaderStage int

// Stages.
const (
	StageVertex ShaderStage = 1 << iota
	StageFragment
	StageCompute
)

// ShaderDesc describes a shader module to create.
// Code is an opaque blob in the given language; the Device
// performs any required translation at creation time.
type ShaderDesc struct {
	Language ShaderLanguage
	Code     []byte
	Label    string
}

// Shader is the interface that defines a compiled shader
// module.
type Shader interface {
	Destroyer
}

// ShaderFunc names an entry point within a shader module.
type ShaderFunc struct {
	Shader Shader
	Entry  string
}
