// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	"fmt"

	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/internal/bitm"
	"github.com/nowead/mini-engine/rhi"
)

// Descriptor sets are served from shared device-level pools.
// Each pool holds poolSets set slots tracked by a bitmap;
// exhausted pools stay around so freed slots can be reused.
const poolSets = 64

// descPool is one shared descriptor pool.
type descPool struct {
	pool vulkan.DescriptorPool
	used bitm.Bitm[uint32]
}

// allocDescSet allocates one set of the given layout from the
// first pool with a free slot, growing the pool list when
// every slot is taken.
func (d *Driver) allocDescSet(dsl vulkan.DescriptorSetLayout) (*descPool, int, vulkan.DescriptorSet, error) {
	d.dmu.Lock()
	defer d.dmu.Unlock()
	var p *descPool
	var slot int
	for _, q := range d.dpools {
		if i, ok := q.used.Search(); ok {
			p, slot = q, i
			break
		}
	}
	if p == nil {
		sizes := []vulkan.DescriptorPoolSize{
			{Type: vulkan.DescriptorTypeUniformBuffer, DescriptorCount: poolSets * 4},
			{Type: vulkan.DescriptorTypeStorageBuffer, DescriptorCount: poolSets * 4},
			{Type: vulkan.DescriptorTypeSampledImage, DescriptorCount: poolSets * 4},
			{Type: vulkan.DescriptorTypeStorageImage, DescriptorCount: poolSets * 2},
			{Type: vulkan.DescriptorTypeSampler, DescriptorCount: poolSets * 2},
		}
		var npool vulkan.DescriptorPool
		res := vulkan.CreateDescriptorPool(d.dev, &vulkan.DescriptorPoolCreateInfo{
			SType:         vulkan.StructureTypeDescriptorPoolCreateInfo,
			Flags:         vulkan.DescriptorPoolCreateFlags(vulkan.DescriptorPoolCreateFreeDescriptorSetBit),
			MaxSets:       poolSets,
			PoolSizeCount: uint32(len(sizes)),
			PPoolSizes:    sizes,
		}, nil, &npool)
		if err := checkResult(res); err != nil {
			return nil, 0, nil, err
		}
		p = &descPool{pool: npool}
		p.used.Grow(poolSets / 32)
		d.dpools = append(d.dpools, p)
		slot, _ = p.used.Search()
	}
	var set vulkan.DescriptorSet
	res := vulkan.AllocateDescriptorSets(d.dev, &vulkan.DescriptorSetAllocateInfo{
		SType:              vulkan.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vulkan.DescriptorSetLayout{dsl},
	}, &set)
	if err := checkResult(res); err != nil {
		return nil, 0, nil, err
	}
	p.used.Set(slot)
	return p, slot, set, nil
}

// freeDescSet returns a set slot to its pool.
func (d *Driver) freeDescSet(p *descPool, slot int, set vulkan.DescriptorSet) {
	d.dmu.Lock()
	defer d.dmu.Unlock()
	vulkan.FreeDescriptorSets(d.dev, p.pool, 1, &set)
	p.used.Unset(slot)
}

// NewBindGroupLayout creates a new bind group layout.
func (d *Driver) NewBindGroupLayout(desc *rhi.BindGroupLayoutDesc) (rhi.BindGroupLayout, error) {
	if err := rhi.ValidateBindGroupLayoutDesc(desc, &d.lim); err != nil {
		return nil, err
	}
	nbind := make([]vulkan.DescriptorSetLayoutBinding, len(desc.Bindings))
	for i, b := range desc.Bindings {
		nbind[i] = vulkan.DescriptorSetLayoutBinding{
			Binding:         uint32(b.Binding),
			DescriptorType:  convBindingType(b.Type),
			DescriptorCount: uint32(max(b.Count, 1)),
			StageFlags:      convStages(b.Stages),
		}
	}
	var dsl vulkan.DescriptorSetLayout
	res := vulkan.CreateDescriptorSetLayout(d.dev, &vulkan.DescriptorSetLayoutCreateInfo{
		SType:        vulkan.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(nbind)),
		PBindings:    nbind,
	}, nil, &dsl)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	bindings := make([]rhi.BindingLayout, len(desc.Bindings))
	copy(bindings, desc.Bindings)
	return &bindGroupLayout{d: d, dsl: dsl, bindings: bindings}, nil
}

// bindGroupLayout implements rhi.BindGroupLayout.
type bindGroupLayout struct {
	d        *Driver
	dsl      vulkan.DescriptorSetLayout
	bindings []rhi.BindingLayout
}

// Destroy destroys the layout.
// Bind groups created from it are unaffected.
func (l *bindGroupLayout) Destroy() {
	if l.d != nil {
		vulkan.DestroyDescriptorSetLayout(l.d.dev, l.dsl, nil)
	}
	*l = bindGroupLayout{}
}

// NewBindGroup creates a new bind group.
func (d *Driver) NewBindGroup(desc *rhi.BindGroupDesc) (rhi.BindGroup, error) {
	if desc == nil || desc.Layout == nil {
		return nil, fmt.Errorf("%w: nil bind group layout", rhi.ErrInvalidDesc)
	}
	layout, ok := desc.Layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("%w: foreign bind group layout", rhi.ErrUsage)
	}
	if err := rhi.ValidateBindGroup(layout.bindings, desc.Entries); err != nil {
		return nil, err
	}
	byIndex := make(map[int]rhi.BindingType, len(layout.bindings))
	for _, b := range layout.bindings {
		byIndex[b.Binding] = b.Type
	}
	pool, slot, set, err := d.allocDescSet(layout.dsl)
	if err != nil {
		return nil, err
	}
	writes := make([]vulkan.WriteDescriptorSet, len(desc.Entries))
	for i, e := range desc.Entries {
		typ := byIndex[e.Binding]
		w := vulkan.WriteDescriptorSet{
			SType:           vulkan.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      uint32(e.Binding),
			DescriptorCount: 1,
			DescriptorType:  convBindingType(typ),
		}
		switch typ {
		case rhi.BindUniformBuffer, rhi.BindStorageBuffer:
			size := vulkan.DeviceSize(e.Size)
			if e.Size == 0 {
				size = vulkan.DeviceSize(vulkan.WholeSize)
			}
			w.PBufferInfo = []vulkan.DescriptorBufferInfo{{
				Buffer: e.Buffer.(*buffer).buf,
				Offset: vulkan.DeviceSize(e.Off),
				Range:  size,
			}}
		case rhi.BindSampledTexture, rhi.BindStorageTexture:
			v := e.View.(*textureView)
			layout := vulkan.ImageLayoutShaderReadOnlyOptimal
			if typ == rhi.BindStorageTexture {
				layout = vulkan.ImageLayoutGeneral
			}
			w.PImageInfo = []vulkan.DescriptorImageInfo{{
				ImageView:   v.view,
				ImageLayout: layout,
			}}
		case rhi.BindSampler:
			w.PImageInfo = []vulkan.DescriptorImageInfo{{
				Sampler: e.Sampler.(*sampler).s,
			}}
		}
		writes[i] = w
	}
	vulkan.UpdateDescriptorSets(d.dev, uint32(len(writes)), writes, 0, nil)
	return &bindGroup{d: d, pool: pool, slot: slot, set: set}, nil
}

// bindGroup implements rhi.BindGroup.
type bindGroup struct {
	d    *Driver
	pool *descPool
	slot int
	set  vulkan.DescriptorSet
}

// Destroy returns the bind group's set to its pool.
func (g *bindGroup) Destroy() {
	if g.d != nil {
		g.d.freeDescSet(g.pool, g.slot, g.set)
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
	dsls := make([]vulkan.DescriptorSetLayout, len(desc.Layouts))
	for i, l := range desc.Layouts {
		bl, ok := l.(*bindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("%w: foreign bind group layout", rhi.ErrUsage)
		}
		dsls[i] = bl.dsl
	}
	var pl vulkan.PipelineLayout
	res := vulkan.CreatePipelineLayout(d.dev, &vulkan.PipelineLayoutCreateInfo{
		SType:          vulkan.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(dsls)),
		PSetLayouts:    dsls,
	}, nil, &pl)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	return &pipelineLayout{d: d, pl: pl, groups: len(dsls)}, nil
}

// pipelineLayout implements rhi.PipelineLayout.
type pipelineLayout struct {
	d      *Driver
	pl     vulkan.PipelineLayout
	groups int
}

// Destroy destroys the pipeline layout.
func (l *pipelineLayout) Destroy() {
	if l.d != nil {
		vulkan.DestroyPipelineLayout(l.d.dev, l.pl, nil)
	}
	*l = pipelineLayout{}
}
