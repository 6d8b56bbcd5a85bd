// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

// Limits describes implementation limits.
// These vary across drivers and devices and are immutable
// for the lifetime of a Device.
type Limits struct {
	// Maximum width of 1D textures.
	MaxTexture1D int
	// Maximum width and height of 2D textures.
	MaxTexture2D int
	// Maximum width, height and depth of 3D textures.
	MaxTexture3D int
	// Maximum number of layers in a texture.
	MaxLayers int

	// Maximum number of bind groups in a pipeline layout.
	MaxBindGroups int
	// Maximum number of bindings in one bind group.
	MaxBindings int
	// Maximum size of a uniform binding.
	MaxUniformSize int64
	// Maximum size of a storage binding.
	MaxStorageSize int64
	// Required alignment of dynamic/bound buffer offsets.
	UniformAlign int64

	// Maximum number of color targets in a render pass.
	MaxColorTargets int
	// Maximum number of vertex buffer slots.
	MaxVertexBuffers int
	// Maximum number of vertex attributes.
	MaxVertexAttrs int

	// Maximum dispatch counts per dimension.
	MaxDispatch [3]int
}

// Features is a set of optional capabilities a Device may
// support. Pipeline and resource creation that depends on an
// absent feature fails loudly rather than degrading.
type Features int

// Feature flags.
const (
	// FeatureCompute indicates compute pipeline support.
	FeatureCompute Features = 1 << iota
	// FeatureIndirectDraw indicates support for indirect
	// draw/dispatch parameters read from buffers.
	FeatureIndirectDraw
	// FeatureAnisotropy indicates anisotropic filtering.
	FeatureAnisotropy
	// FeatureTimestamp indicates timestamp queries.
	FeatureTimestamp
	// FeatureDedicatedCompute indicates a compute queue
	// separate from the graphics queue.
	FeatureDedicatedCompute
	// FeatureDedicatedTransfer indicates a transfer queue
	// separate from the graphics queue.
	FeatureDedicatedTransfer
)

// Has returns whether every feature in fs is present in f.
func (f Features) Has(fs Features) bool { return f&fs == fs }
