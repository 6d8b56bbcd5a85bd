// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

// NewBindGroupLayout creates a new bind group layout.
// Binding declarations carry no texture dimensionality or
// storage format, so texture bindings are declared as
// float-sampled 2D views and storage textures as write-only
// RGBA8. Bind groups supplying other views fail natively at
// creation.
func (d *Driver) NewBindGroupLayout(desc *rhi.BindGroupLayoutDesc) (rhi.BindGroupLayout, error) {
	if err := rhi.ValidateBindGroupLayoutDesc(desc, &d.lim); err != nil {
		return nil, err
	}
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Bindings))
	for i := range desc.Bindings {
		b := &desc.Bindings[i]
		e := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(b.Binding),
			Visibility: convStages(b.Stages),
		}
		switch b.Type {
		case rhi.BindUniformBuffer:
			e.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}
		case rhi.BindStorageBuffer:
			e.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}
		case rhi.BindSampledTexture:
			e.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		case rhi.BindStorageTexture:
			e.StorageTexture = wgpu.StorageTextureBindingLayout{
				Access:        wgpu.StorageTextureAccessWriteOnly,
				Format:        wgpu.TextureFormatRGBA8Unorm,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		case rhi.BindSampler:
			e.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}
		}
		entries[i] = e
	}
	bgl, err := d.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrInvalidDesc, err)
	}
	bindings := make([]rhi.BindingLayout, len(desc.Bindings))
	copy(bindings, desc.Bindings)
	return &bindGroupLayout{d: d, bgl: bgl, bindings: bindings}, nil
}

type bindGroupLayout struct {
	d        *Driver
	bgl      *wgpu.BindGroupLayout
	bindings []rhi.BindingLayout
}

// Destroy invalidates and deallocates the layout.
func (l *bindGroupLayout) Destroy() {
	if l.bgl != nil {
		l.bgl.Release()
	}
	*l = bindGroupLayout{}
}

// NewBindGroup creates a new bind group.
func (d *Driver) NewBindGroup(desc *rhi.BindGroupDesc) (rhi.BindGroup, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: nil bind group descriptor", rhi.ErrInvalidDesc)
	}
	layout, ok := desc.Layout.(*bindGroupLayout)
	if !ok || layout.bgl == nil {
		return nil, fmt.Errorf("%w: foreign bind group layout", rhi.ErrUsage)
	}
	if err := rhi.ValidateBindGroup(layout.bindings, desc.Entries); err != nil {
		return nil, err
	}
	byIndex := make(map[int]*rhi.BindingLayout, len(layout.bindings))
	for i := range layout.bindings {
		byIndex[layout.bindings[i].Binding] = &layout.bindings[i]
	}
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i := range desc.Entries {
		entry := &desc.Entries[i]
		e := wgpu.BindGroupEntry{Binding: uint32(entry.Binding)}
		switch byIndex[entry.Binding].Type {
		case rhi.BindUniformBuffer, rhi.BindStorageBuffer:
			buf, ok := entry.Buffer.(*buffer)
			if !ok {
				return nil, fmt.Errorf("%w: foreign buffer at binding %d", rhi.ErrUsage, entry.Binding)
			}
			e.Buffer = buf.buf
			e.Offset = uint64(entry.Off)
			if entry.Size > 0 {
				e.Size = uint64(entry.Size)
			} else {
				e.Size = wgpu.WholeSize
			}
		case rhi.BindSampledTexture, rhi.BindStorageTexture:
			v, ok := entry.View.(*textureView)
			if !ok {
				return nil, fmt.Errorf("%w: foreign texture view at binding %d", rhi.ErrUsage, entry.Binding)
			}
			e.TextureView = v.view
		case rhi.BindSampler:
			s, ok := entry.Sampler.(*sampler)
			if !ok {
				return nil, fmt.Errorf("%w: foreign sampler at binding %d", rhi.ErrUsage, entry.Binding)
			}
			e.Sampler = s.s
		}
		entries[i] = e
	}
	bg, err := d.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.bgl,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrInvalidDesc, err)
	}
	return &bindGroup{d: d, bg: bg}, nil
}

type bindGroup struct {
	d  *Driver
	bg *wgpu.BindGroup
}

// Destroy invalidates and deallocates the bind group.
func (g *bindGroup) Destroy() {
	if g.bg != nil {
		g.bg.Release()
	}
	*g = bindGroup{}
}

// NewPipelineLayout creates a new pipeline layout.
func (d *Driver) NewPipelineLayout(desc *rhi.PipelineLayoutDesc) (rhi.PipelineLayout, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: nil pipeline layout descriptor", rhi.ErrInvalidDesc)
	}
	if len(desc.Layouts) > d.lim.MaxBindGroups {
		return nil, fmt.Errorf("%w: %d bind groups", rhi.ErrUnsupportedFormat, len(desc.Layouts))
	}
	bgls := make([]*wgpu.BindGroupLayout, len(desc.Layouts))
	for i, l := range desc.Layouts {
		bgl, ok := l.(*bindGroupLayout)
		if !ok || bgl.bgl == nil {
			return nil, fmt.Errorf("%w: foreign bind group layout at %d", rhi.ErrUsage, i)
		}
		bgls[i] = bgl.bgl
	}
	pl, err := d.dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: bgls,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrInvalidDesc, err)
	}
	return &pipelineLayout{d: d, pl: pl, groups: len(desc.Layouts)}, nil
}

type pipelineLayout struct {
	d      *Driver
	pl     *wgpu.PipelineLayout
	groups int
}

// Destroy invalidates and deallocates the layout.
func (l *pipelineLayout) Destroy() {
	if l.pl != nil {
		l.pl.Release()
	}
	*l = pipelineLayout{}
}
