// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

// NewTexture creates a new texture.
func (d *Driver) NewTexture(desc *rhi.TextureDesc) (rhi.Texture, error) {
	if err := rhi.ValidateTextureDesc(desc, &d.lim); err != nil {
		return nil, err
	}
	format := convFormat(desc.Format)
	if format == wgpu.TextureFormatUndefined {
		return nil, fmt.Errorf("%w: %v", rhi.ErrUnsupportedFormat, desc.Format)
	}
	layers := desc.Layers
	if layers < 1 {
		layers = 1
	}
	levels := desc.Levels
	if levels < 1 {
		levels = 1
	}
	samples := desc.Samples
	if samples < 1 {
		samples = 1
	}
	depthOrLayers := layers
	if desc.Dim == rhi.Tex3D {
		depthOrLayers = desc.Size.Depth
	}
	tex, err := d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Size.Width),
			Height:             uint32(max(desc.Size.Height, 1)),
			DepthOrArrayLayers: uint32(depthOrLayers),
		},
		MipLevelCount: uint32(levels),
		SampleCount:   uint32(samples),
		Dimension:     convTextureDim(desc.Dim),
		Format:        format,
		Usage:         convTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrNoDeviceMemory, err)
	}
	return &texture{
		d:       d,
		tex:     tex,
		dim:     desc.Dim,
		size:    desc.Size,
		layers:  layers,
		levels:  levels,
		samples: samples,
		format:  desc.Format,
		usage:   desc.Usage,
	}, nil
}

type texture struct {
	d       *Driver
	tex     *wgpu.Texture
	dim     rhi.TextureDim
	size    rhi.Dim3D
	layers  int
	levels  int
	samples int
	format  rhi.Format
	usage   rhi.TextureUsage
}

// Dim returns the texture's dimensionality.
func (t *texture) Dim() rhi.TextureDim { return t.dim }

// Size returns the dimensions of mip level 0.
func (t *texture) Size() rhi.Dim3D { return t.size }

// Layers returns the number of array layers.
func (t *texture) Layers() int { return t.layers }

// Levels returns the number of mip levels.
func (t *texture) Levels() int { return t.levels }

// Samples returns the sample count.
func (t *texture) Samples() int { return t.samples }

// Format returns the texture's format.
func (t *texture) Format() rhi.Format { return t.format }

// Usage returns the usage the texture was created with.
func (t *texture) Usage() rhi.TextureUsage { return t.usage }

// NewView creates a typed view of a subrange of the texture.
func (t *texture) NewView(desc *rhi.TextureViewDesc) (rhi.TextureView, error) {
	if err := rhi.ValidateViewDesc(t, desc); err != nil {
		return nil, err
	}
	format := desc.Format
	if format == rhi.FormatInvalid {
		format = t.format
	}
	levels := desc.LevelCount
	if levels == 0 {
		levels = t.levels - desc.BaseLevel
	}
	layers := desc.LayerCount
	if layers == 0 {
		layers = t.layers - desc.BaseLayer
	}
	view, err := t.tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          convFormat(format),
		Dimension:       convViewDim(desc.Dim),
		BaseMipLevel:    uint32(desc.BaseLevel),
		MipLevelCount:   uint32(levels),
		BaseArrayLayer:  uint32(desc.BaseLayer),
		ArrayLayerCount: uint32(layers),
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrInvalidDesc, err)
	}
	return &textureView{
		d:      t.d,
		view:   view,
		tex:    t,
		format: format,
		dim:    desc.Dim,
	}, nil
}

// NewDefaultView creates a view covering every level and
// layer of the texture.
func (t *texture) NewDefaultView() (rhi.TextureView, error) {
	var dim rhi.ViewDim
	switch {
	case t.dim == rhi.Tex1D:
		dim = rhi.View1D
	case t.dim == rhi.Tex3D:
		dim = rhi.View3D
	case t.layers > 1:
		dim = rhi.View2DArray
	default:
		dim = rhi.View2D
	}
	return t.NewView(&rhi.TextureViewDesc{Dim: dim})
}

// Destroy invalidates and deallocates the texture.
// All views must have been destroyed already.
func (t *texture) Destroy() {
	if t.tex != nil {
		t.tex.Destroy()
		t.tex.Release()
	}
	*t = texture{}
}

type textureView struct {
	d      *Driver
	view   *wgpu.TextureView
	tex    *texture
	format rhi.Format
	dim    rhi.ViewDim
	// swap marks views handed out by a swapchain.
	swap bool
}

// Texture returns the parent texture, or nil for
// swapchain-owned views.
func (v *textureView) Texture() rhi.Texture {
	if v.swap {
		return nil
	}
	return v.tex
}

// Format returns the view's format.
func (v *textureView) Format() rhi.Format { return v.format }

// Dim returns the view's dimensionality.
func (v *textureView) Dim() rhi.ViewDim { return v.dim }

// samples returns the sample count of the viewed texture.
func (v *textureView) samples() int {
	if v.tex != nil {
		return v.tex.samples
	}
	return 1
}

// Destroy invalidates the view. The parent texture is not
// affected.
func (v *textureView) Destroy() {
	if v.view != nil && !v.swap {
		v.view.Release()
	}
	*v = textureView{}
}
