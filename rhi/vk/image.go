// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

// NewTexture creates a new texture.
func (d *Driver) NewTexture(desc *rhi.TextureDesc) (rhi.Texture, error) {
	if err := rhi.ValidateTextureDesc(desc, &d.lim); err != nil {
		return nil, err
	}
	format := convFormat(desc.Format)
	if format == vulkan.FormatUndefined {
		return nil, rhi.ErrUnsupportedFormat
	}
	layers := max(desc.Layers, 1)
	levels := max(desc.Levels, 1)
	extent := vulkan.Extent3D{
		Width:  uint32(desc.Size.Width),
		Height: uint32(max(desc.Size.Height, 1)),
		Depth:  uint32(max(desc.Size.Depth, 1)),
	}
	var flags vulkan.ImageCreateFlags
	if desc.Dim == rhi.Tex2D && layers%6 == 0 && desc.Size.Width == desc.Size.Height {
		flags = vulkan.ImageCreateFlags(vulkan.ImageCreateCubeCompatibleBit)
	}
	var img vulkan.Image
	res := vulkan.CreateImage(d.dev, &vulkan.ImageCreateInfo{
		SType:         vulkan.StructureTypeImageCreateInfo,
		Flags:         flags,
		ImageType:     convTextureDim(desc.Dim),
		Format:        format,
		Extent:        extent,
		MipLevels:     uint32(levels),
		ArrayLayers:   uint32(layers),
		Samples:       convSamples(desc.Samples),
		Tiling:        vulkan.ImageTilingOptimal,
		Usage:         convTextureUsage(desc.Usage, desc.Format),
		SharingMode:   vulkan.SharingModeExclusive,
		InitialLayout: vulkan.ImageLayoutUndefined,
	}, nil, &img)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	var req vulkan.MemoryRequirements
	vulkan.GetImageMemoryRequirements(d.dev, img, &req)
	req.Deref()
	mtype, ok := d.memoryType(req.MemoryTypeBits,
		vulkan.MemoryPropertyFlags(vulkan.MemoryPropertyDeviceLocalBit))
	if !ok {
		mtype, ok = d.memoryType(req.MemoryTypeBits, 0)
	}
	if !ok {
		vulkan.DestroyImage(d.dev, img, nil)
		return nil, rhi.ErrNoDeviceMemory
	}
	var mem vulkan.DeviceMemory
	res = vulkan.AllocateMemory(d.dev, &vulkan.MemoryAllocateInfo{
		SType:           vulkan.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: mtype,
	}, nil, &mem)
	if err := checkResult(res); err != nil {
		vulkan.DestroyImage(d.dev, img, nil)
		return nil, err
	}
	if err := checkResult(vulkan.BindImageMemory(d.dev, img, mem, 0)); err != nil {
		vulkan.FreeMemory(d.dev, mem, nil)
		vulkan.DestroyImage(d.dev, img, nil)
		return nil, err
	}
	return &texture{
		d:       d,
		img:     img,
		mem:     mem,
		dim:     desc.Dim,
		size:    desc.Size,
		layers:  layers,
		levels:  levels,
		samples: max(desc.Samples, 1),
		format:  desc.Format,
		usage:   desc.Usage,
	}, nil
}

// texture implements rhi.Texture.
type texture struct {
	d       *Driver
	img     vulkan.Image
	mem     vulkan.DeviceMemory
	dim     rhi.TextureDim
	size    rhi.Dim3D
	layers  int
	levels  int
	samples int
	format  rhi.Format
	usage   rhi.TextureUsage
}

func (t *texture) Dim() rhi.TextureDim     { return t.dim }
func (t *texture) Size() rhi.Dim3D         { return t.size }
func (t *texture) Layers() int             { return t.layers }
func (t *texture) Levels() int             { return t.levels }
func (t *texture) Samples() int            { return t.samples }
func (t *texture) Format() rhi.Format      { return t.format }
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
	nformat := convFormat(format)
	if nformat == vulkan.FormatUndefined {
		return nil, rhi.ErrUnsupportedFormat
	}
	levels := desc.LevelCount
	if levels == 0 {
		levels = t.levels - desc.BaseLevel
	}
	layers := desc.LayerCount
	if layers == 0 {
		layers = t.layers - desc.BaseLayer
	}
	var view vulkan.ImageView
	res := vulkan.CreateImageView(t.d.dev, &vulkan.ImageViewCreateInfo{
		SType:    vulkan.StructureTypeImageViewCreateInfo,
		Image:    t.img,
		ViewType: convViewDim(desc.Dim),
		Format:   nformat,
		SubresourceRange: vulkan.ImageSubresourceRange{
			AspectMask:     aspectOf(format),
			BaseMipLevel:   uint32(desc.BaseLevel),
			LevelCount:     uint32(levels),
			BaseArrayLayer: uint32(desc.BaseLayer),
			LayerCount:     uint32(layers),
		},
	}, nil, &view)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	return &textureView{
		d:         t.d,
		view:      view,
		tex:       t,
		format:    format,
		dim:       desc.Dim,
		baseLevel: desc.BaseLevel,
		levels:    levels,
		baseLayer: desc.BaseLayer,
		layers:    layers,
		width:     max(t.size.Width>>desc.BaseLevel, 1),
		height:    max(t.size.Height>>desc.BaseLevel, 1),
	}, nil
}

// NewDefaultView creates a view covering the whole texture.
func (t *texture) NewDefaultView() (rhi.TextureView, error) {
	dim := rhi.View2D
	switch {
	case t.dim == rhi.Tex1D:
		dim = rhi.View1D
	case t.dim == rhi.Tex3D:
		dim = rhi.View3D
	case t.layers > 1:
		dim = rhi.View2DArray
	}
	return t.NewView(&rhi.TextureViewDesc{Dim: dim})
}

// Destroy destroys the texture and frees its memory.
// Views of the texture must be destroyed first.
func (t *texture) Destroy() {
	if t.d != nil {
		vulkan.DestroyImage(t.d.dev, t.img, nil)
		vulkan.FreeMemory(t.d.dev, t.mem, nil)
	}
	*t = texture{}
}

// textureView implements rhi.TextureView.
// Swapchain views set swap, leave tex nil and do not own the
// image.
type textureView struct {
	d         *Driver
	view      vulkan.ImageView
	tex       *texture
	format    rhi.Format
	dim       rhi.ViewDim
	baseLevel int
	levels    int
	baseLayer int
	layers    int
	width     int
	height    int
	// Backing image of swapchain views.
	swapImg vulkan.Image
	swap    bool
}

// subresourceRange returns the view's native subresource
// range.
func (v *textureView) subresourceRange() vulkan.ImageSubresourceRange {
	return vulkan.ImageSubresourceRange{
		AspectMask:     aspectOf(v.format),
		BaseMipLevel:   uint32(v.baseLevel),
		LevelCount:     uint32(v.levels),
		BaseArrayLayer: uint32(v.baseLayer),
		LayerCount:     uint32(v.layers),
	}
}

// Texture returns the parent texture, or nil for swapchain
// views.
func (v *textureView) Texture() rhi.Texture {
	if v.tex == nil {
		return nil
	}
	return v.tex
}

func (v *textureView) Format() rhi.Format { return v.format }
func (v *textureView) Dim() rhi.ViewDim   { return v.dim }

// image returns the native image backing the view.
func (v *textureView) image() vulkan.Image {
	if v.swap {
		return v.swapImg
	}
	return v.tex.img
}

// Destroy destroys the view. The parent texture is untouched.
func (v *textureView) Destroy() {
	if v.d != nil {
		vulkan.DestroyImageView(v.d.dev, v.view, nil)
	}
	*v = textureView{}
}
