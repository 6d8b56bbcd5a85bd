// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

import "fmt"

// Descriptor validation shared by backend implementations.
// Each Validate* function checks everything that can be
// checked without touching the native API, so creation
// errors surface in one place and behave identically across
// backends.

// ValidateBufferDesc checks desc for creatability.
func ValidateBufferDesc(desc *BufferDesc) error {
	if desc == nil {
		return fmt.Errorf("%w: nil buffer descriptor", ErrInvalidDesc)
	}
	if desc.Size <= 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidDesc, desc.Size)
	}
	if desc.Usage == 0 && !desc.MappedAtCreation {
		return fmt.Errorf("%w: buffer with no usage", ErrInvalidDesc)
	}
	return nil
}

// ValidateTextureDesc checks desc against lim.
func ValidateTextureDesc(desc *TextureDesc, lim *Limits) error {
	if desc == nil {
		return fmt.Errorf("%w: nil texture descriptor", ErrInvalidDesc)
	}
	if desc.Format == FormatInvalid {
		return fmt.Errorf("%w: texture with invalid format", ErrInvalidDesc)
	}
	if desc.Usage == 0 {
		return fmt.Errorf("%w: texture with no usage", ErrInvalidDesc)
	}
	sz := desc.Size
	if sz.Width < 1 {
		return fmt.Errorf("%w: texture width %d", ErrInvalidDesc, sz.Width)
	}
	layers := desc.Layers
	if layers < 1 {
		layers = 1
	}
	levels := desc.Levels
	if levels < 1 {
		levels = 1
	}
	switch desc.Dim {
	case Tex1D:
		if sz.Height > 1 || sz.Depth > 1 {
			return fmt.Errorf("%w: 1D texture with height/depth", ErrInvalidDesc)
		}
		if lim != nil && sz.Width > lim.MaxTexture1D {
			return fmt.Errorf("%w: 1D texture width %d", ErrUnsupportedFormat, sz.Width)
		}
	case Tex2D:
		if sz.Height < 1 {
			return fmt.Errorf("%w: texture height %d", ErrInvalidDesc, sz.Height)
		}
		if sz.Depth > 1 {
			return fmt.Errorf("%w: 2D texture with depth", ErrInvalidDesc)
		}
		if lim != nil && (sz.Width > lim.MaxTexture2D || sz.Height > lim.MaxTexture2D) {
			return fmt.Errorf("%w: 2D texture size %dx%d", ErrUnsupportedFormat, sz.Width, sz.Height)
		}
	case Tex3D:
		if sz.Height < 1 || sz.Depth < 1 {
			return fmt.Errorf("%w: 3D texture size %dx%dx%d", ErrInvalidDesc, sz.Width, sz.Height, sz.Depth)
		}
		if layers > 1 {
			return fmt.Errorf("%w: 3D texture with array layers", ErrInvalidDesc)
		}
		if lim != nil && (sz.Width > lim.MaxTexture3D || sz.Height > lim.MaxTexture3D || sz.Depth > lim.MaxTexture3D) {
			return fmt.Errorf("%w: 3D texture size %dx%dx%d", ErrUnsupportedFormat, sz.Width, sz.Height, sz.Depth)
		}
	default:
		return fmt.Errorf("%w: texture dimension %d", ErrInvalidDesc, desc.Dim)
	}
	if lim != nil && layers > lim.MaxLayers {
		return fmt.Errorf("%w: %d array layers", ErrUnsupportedFormat, layers)
	}
	if n := maxLevels(sz); levels > n {
		return fmt.Errorf("%w: %d mip levels for size %dx%dx%d", ErrInvalidDesc, levels, sz.Width, sz.Height, sz.Depth)
	}
	switch s := desc.Samples; {
	case s == 0 || s == 1:
	case s == 2 || s == 4 || s == 8:
		if levels > 1 {
			return fmt.Errorf("%w: multisampled texture with mip levels", ErrInvalidDesc)
		}
		if desc.Dim != Tex2D {
			return fmt.Errorf("%w: multisampled non-2D texture", ErrInvalidDesc)
		}
	default:
		return fmt.Errorf("%w: sample count %d", ErrInvalidDesc, desc.Samples)
	}
	return nil
}

// maxLevels returns the length of the full mip chain for a
// texture of the given size.
func maxLevels(sz Dim3D) int {
	d := max(sz.Width, sz.Height, sz.Depth)
	n := 1
	for d > 1 {
		d >>= 1
		n++
	}
	return n
}

// ValidateViewDesc checks that desc's declared subrange lies
// within the parent texture's allocated ranges.
func ValidateViewDesc(t Texture, desc *TextureViewDesc) error {
	if desc == nil {
		return fmt.Errorf("%w: nil view descriptor", ErrInvalidDesc)
	}
	if desc.BaseLevel < 0 || desc.LevelCount < 0 || desc.BaseLayer < 0 || desc.LayerCount < 0 {
		return fmt.Errorf("%w: negative view range", ErrInvalidDesc)
	}
	levels := desc.LevelCount
	if levels == 0 {
		levels = t.Levels() - desc.BaseLevel
	}
	layers := desc.LayerCount
	if layers == 0 {
		layers = t.Layers() - desc.BaseLayer
	}
	if levels < 1 || desc.BaseLevel+levels > t.Levels() {
		return fmt.Errorf("%w: view levels [%d, %d) of %d", ErrInvalidDesc, desc.BaseLevel, desc.BaseLevel+levels, t.Levels())
	}
	if layers < 1 || desc.BaseLayer+layers > t.Layers() {
		return fmt.Errorf("%w: view layers [%d, %d) of %d", ErrInvalidDesc, desc.BaseLayer, desc.BaseLayer+layers, t.Layers())
	}
	if desc.Format != FormatInvalid && desc.Format != t.Format() {
		// Reinterpretation is restricted to formats of
		// equal texel size.
		if desc.Format.Size() != t.Format().Size() {
			return fmt.Errorf("%w: view format %v of %v texture", ErrInvalidDesc, desc.Format, t.Format())
		}
	}
	switch desc.Dim {
	case ViewCube:
		if layers != 6 {
			return fmt.Errorf("%w: cube view with %d layers", ErrInvalidDesc, layers)
		}
	case ViewCubeArray:
		if layers%6 != 0 {
			return fmt.Errorf("%w: cube array view with %d layers", ErrInvalidDesc, layers)
		}
	case View3D:
		if t.Dim() != Tex3D {
			return fmt.Errorf("%w: 3D view of non-3D texture", ErrInvalidDesc)
		}
	}
	return nil
}

// ValidateSamplerDesc checks desc for creatability.
func ValidateSamplerDesc(desc *SamplerDesc) error {
	if desc == nil {
		return fmt.Errorf("%w: nil sampler descriptor", ErrInvalidDesc)
	}
	if desc.MinLOD > desc.MaxLOD && desc.MaxLOD != 0 {
		return fmt.Errorf("%w: sampler LOD range [%g, %g]", ErrInvalidDesc, desc.MinLOD, desc.MaxLOD)
	}
	if desc.MaxAniso < 0 {
		return fmt.Errorf("%w: sampler anisotropy %d", ErrInvalidDesc, desc.MaxAniso)
	}
	return nil
}

// ValidateShaderDesc checks desc for creatability; language
// support is the backend's concern.
func ValidateShaderDesc(desc *ShaderDesc) error {
	if desc == nil {
		return fmt.Errorf("%w: nil shader descriptor", ErrInvalidDesc)
	}
	if len(desc.Code) == 0 {
		return fmt.Errorf("%w: empty shader code", ErrInvalidDesc)
	}
	if desc.Language == ShaderSPIRV && len(desc.Code)%4 != 0 {
		return fmt.Errorf("%w: SPIR-V code length %d", ErrInvalidDesc, len(desc.Code))
	}
	return nil
}

// ValidateBindGroupLayoutDesc checks desc for creatability.
func ValidateBindGroupLayoutDesc(desc *BindGroupLayoutDesc, lim *Limits) error {
	if desc == nil {
		return fmt.Errorf("%w: nil bind group layout descriptor", ErrInvalidDesc)
	}
	if lim != nil && len(desc.Bindings) > lim.MaxBindings {
		return fmt.Errorf("%w: %d bindings", ErrUnsupportedFormat, len(desc.Bindings))
	}
	seen := make(map[int]bool, len(desc.Bindings))
	for i := range desc.Bindings {
		b := &desc.Bindings[i]
		if b.Binding < 0 {
			return fmt.Errorf("%w: binding index %d", ErrInvalidDesc, b.Binding)
		}
		if seen[b.Binding] {
			return fmt.Errorf("%w: duplicate binding %d", ErrInvalidDesc, b.Binding)
		}
		seen[b.Binding] = true
		if b.Stages == 0 {
			return fmt.Errorf("%w: binding %d visible to no stage", ErrInvalidDesc, b.Binding)
		}
		if b.Count < 0 || b.Count > 1 && b.Type != BindSampledTexture && b.Type != BindSampler {
			return fmt.Errorf("%w: binding %d count %d", ErrInvalidDesc, b.Binding, b.Count)
		}
	}
	return nil
}

// ValidateBindGroup checks that entries conform exactly to
// the layout's declared bindings in index and type.
func ValidateBindGroup(bindings []BindingLayout, entries []BindingEntry) error {
	if len(entries) != len(bindings) {
		return fmt.Errorf("%w: %d entries for %d bindings", ErrInvalidDesc, len(entries), len(bindings))
	}
	byIndex := make(map[int]*BindingLayout, len(bindings))
	for i := range bindings {
		byIndex[bindings[i].Binding] = &bindings[i]
	}
	for i := range entries {
		e := &entries[i]
		b := byIndex[e.Binding]
		if b == nil {
			return fmt.Errorf("%w: entry for undeclared binding %d", ErrInvalidDesc, e.Binding)
		}
		delete(byIndex, e.Binding)
		switch b.Type {
		case BindUniformBuffer, BindStorageBuffer:
			if e.Buffer == nil || e.View != nil || e.Sampler != nil {
				return fmt.Errorf("%w: binding %d wants a buffer", ErrInvalidDesc, e.Binding)
			}
			if e.Off < 0 || e.Size < 0 || e.Off+e.Size > e.Buffer.Size() {
				return fmt.Errorf("%w: binding %d range [%d, %d) of %d", ErrInvalidDesc, e.Binding, e.Off, e.Off+e.Size, e.Buffer.Size())
			}
			want := UsageUniform
			if b.Type == BindStorageBuffer {
				want = UsageStorage
			}
			if e.Buffer.Usage()&want == 0 {
				return fmt.Errorf("%w: binding %d buffer lacks usage", ErrInvalidDesc, e.Binding)
			}
		case BindSampledTexture, BindStorageTexture:
			if e.View == nil || e.Buffer != nil || e.Sampler != nil {
				return fmt.Errorf("%w: binding %d wants a texture view", ErrInvalidDesc, e.Binding)
			}
		case BindSampler:
			if e.Sampler == nil || e.Buffer != nil || e.View != nil {
				return fmt.Errorf("%w: binding %d wants a sampler", ErrInvalidDesc, e.Binding)
			}
		}
	}
	return nil
}

// ValidateRenderPipelineDesc checks desc against lim.
// Binding-namespace mismatches against the shaders surface
// here, at creation, not at draw time.
func ValidateRenderPipelineDesc(desc *RenderPipelineDesc, lim *Limits) error {
	if desc == nil {
		return fmt.Errorf("%w: nil render pipeline descriptor", ErrInvalidDesc)
	}
	if desc.VertFunc.Shader == nil || desc.VertFunc.Entry == "" {
		return fmt.Errorf("%w: render pipeline without vertex function", ErrInvalidDesc)
	}
	if len(desc.Targets) == 0 && desc.DS == nil {
		return fmt.Errorf("%w: render pipeline with no targets", ErrInvalidDesc)
	}
	if len(desc.Targets) > 0 && (desc.FragFunc.Shader == nil || desc.FragFunc.Entry == "") {
		return fmt.Errorf("%w: color targets without fragment function", ErrInvalidDesc)
	}
	if lim != nil && len(desc.Targets) > lim.MaxColorTargets {
		return fmt.Errorf("%w: %d color targets", ErrUnsupportedFormat, len(desc.Targets))
	}
	for i := range desc.Targets {
		if !desc.Targets[i].Format.IsColor() {
			return fmt.Errorf("%w: color target %d format %v", ErrInvalidDesc, i, desc.Targets[i].Format)
		}
	}
	if desc.DS != nil && !desc.DS.Format.IsDepth() {
		return fmt.Errorf("%w: depth/stencil format %v", ErrInvalidDesc, desc.DS.Format)
	}
	if lim != nil && len(desc.Vertex) > lim.MaxVertexBuffers {
		return fmt.Errorf("%w: %d vertex buffers", ErrUnsupportedFormat, len(desc.Vertex))
	}
	nattr := 0
	for i := range desc.Vertex {
		vl := &desc.Vertex[i]
		if vl.Stride <= 0 {
			return fmt.Errorf("%w: vertex buffer %d stride %d", ErrInvalidDesc, i, vl.Stride)
		}
		for j := range vl.Attrs {
			a := &vl.Attrs[j]
			if a.Offset < 0 || a.Offset+a.Format.Size() > vl.Stride {
				return fmt.Errorf("%w: attribute %d of vertex buffer %d exceeds stride", ErrInvalidDesc, j, i)
			}
			nattr++
		}
	}
	if lim != nil && nattr > lim.MaxVertexAttrs {
		return fmt.Errorf("%w: %d vertex attributes", ErrUnsupportedFormat, nattr)
	}
	switch desc.Samples {
	case 0, 1, 2, 4, 8:
	default:
		return fmt.Errorf("%w: sample count %d", ErrInvalidDesc, desc.Samples)
	}
	return nil
}

// ValidateComputePipelineDesc checks desc for creatability.
func ValidateComputePipelineDesc(desc *ComputePipelineDesc) error {
	if desc == nil {
		return fmt.Errorf("%w: nil compute pipeline descriptor", ErrInvalidDesc)
	}
	if desc.Func.Shader == nil || desc.Func.Entry == "" {
		return fmt.Errorf("%w: compute pipeline without function", ErrInvalidDesc)
	}
	return nil
}

// ValidateSwapchainDesc checks desc for creatability.
func ValidateSwapchainDesc(desc *SwapchainDesc) error {
	if desc == nil {
		return fmt.Errorf("%w: nil swapchain descriptor", ErrInvalidDesc)
	}
	if desc.Width < 1 || desc.Height < 1 {
		return fmt.Errorf("%w: swapchain size %dx%d", ErrInvalidDesc, desc.Width, desc.Height)
	}
	if desc.Format != FormatInvalid && !desc.Format.IsColor() {
		return fmt.Errorf("%w: swapchain format %v", ErrInvalidDesc, desc.Format)
	}
	if desc.BufferCount < 0 {
		return fmt.Errorf("%w: swapchain buffer count %d", ErrInvalidDesc, desc.BufferCount)
	}
	return nil
}
