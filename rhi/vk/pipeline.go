// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	"fmt"

	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

// maxPassColors bounds the color attachments a cached render
// pass can describe.
const maxPassColors = 8

// passAttach identifies one attachment within a passKey.
type passAttach struct {
	format  rhi.Format
	samples int
	load    rhi.LoadOp
	store   rhi.StoreOp
	// Stencil ops of depth/stencil attachments.
	sload  rhi.LoadOp
	sstore rhi.StoreOp
}

// passKey identifies a cached render pass. Two keys that
// differ only in load/store ops still produce compatible
// passes, so pipelines are created with zeroed ops and reused
// across every begin-time variant.
type passKey struct {
	ncolor  int
	color   [maxPassColors]passAttach
	resolve [maxPassColors]bool
	hasDS   bool
	ds      passAttach
}

// renderPassFor returns the cached render pass for key,
// creating it on first use.
func (d *Driver) renderPassFor(key passKey) (vulkan.RenderPass, error) {
	d.rmu.Lock()
	defer d.rmu.Unlock()
	if rp, ok := d.rpassc[key]; ok {
		return rp, nil
	}
	var atts []vulkan.AttachmentDescription
	var refs []vulkan.AttachmentReference
	var resolves []vulkan.AttachmentReference
	hasResolve := false
	for i := 0; i < key.ncolor; i++ {
		a := key.color[i]
		initial := vulkan.ImageLayoutUndefined
		if a.load == rhi.LoadKeep {
			initial = vulkan.ImageLayoutColorAttachmentOptimal
		}
		refs = append(refs, vulkan.AttachmentReference{
			Attachment: uint32(len(atts)),
			Layout:     vulkan.ImageLayoutColorAttachmentOptimal,
		})
		atts = append(atts, vulkan.AttachmentDescription{
			Format:         convFormat(a.format),
			Samples:        convSamples(a.samples),
			LoadOp:         convLoadOp(a.load),
			StoreOp:        convStoreOp(a.store),
			StencilLoadOp:  vulkan.AttachmentLoadOpDontCare,
			StencilStoreOp: vulkan.AttachmentStoreOpDontCare,
			InitialLayout:  initial,
			FinalLayout:    vulkan.ImageLayoutColorAttachmentOptimal,
		})
		if key.resolve[i] {
			hasResolve = true
			resolves = append(resolves, vulkan.AttachmentReference{
				Attachment: uint32(len(atts)),
				Layout:     vulkan.ImageLayoutColorAttachmentOptimal,
			})
			atts = append(atts, vulkan.AttachmentDescription{
				Format:         convFormat(a.format),
				Samples:        vulkan.SampleCount1Bit,
				LoadOp:         vulkan.AttachmentLoadOpDontCare,
				StoreOp:        vulkan.AttachmentStoreOpStore,
				StencilLoadOp:  vulkan.AttachmentLoadOpDontCare,
				StencilStoreOp: vulkan.AttachmentStoreOpDontCare,
				InitialLayout:  vulkan.ImageLayoutUndefined,
				FinalLayout:    vulkan.ImageLayoutColorAttachmentOptimal,
			})
		} else {
			resolves = append(resolves, vulkan.AttachmentReference{
				Attachment: vulkan.AttachmentUnused,
				Layout:     vulkan.ImageLayoutColorAttachmentOptimal,
			})
		}
	}
	subpass := vulkan.SubpassDescription{
		PipelineBindPoint:    vulkan.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(key.ncolor),
		PColorAttachments:    refs,
	}
	if hasResolve {
		subpass.PResolveAttachments = resolves
	}
	if key.hasDS {
		initial := vulkan.ImageLayoutUndefined
		if key.ds.load == rhi.LoadKeep || key.ds.sload == rhi.LoadKeep {
			initial = vulkan.ImageLayoutDepthStencilAttachmentOptimal
		}
		subpass.PDepthStencilAttachment = &vulkan.AttachmentReference{
			Attachment: uint32(len(atts)),
			Layout:     vulkan.ImageLayoutDepthStencilAttachmentOptimal,
		}
		atts = append(atts, vulkan.AttachmentDescription{
			Format:         convFormat(key.ds.format),
			Samples:        convSamples(key.ds.samples),
			LoadOp:         convLoadOp(key.ds.load),
			StoreOp:        convStoreOp(key.ds.store),
			StencilLoadOp:  convLoadOp(key.ds.sload),
			StencilStoreOp: convStoreOp(key.ds.sstore),
			InitialLayout:  initial,
			FinalLayout:    vulkan.ImageLayoutDepthStencilAttachmentOptimal,
		})
	}
	var rp vulkan.RenderPass
	res := vulkan.CreateRenderPass(d.dev, &vulkan.RenderPassCreateInfo{
		SType:           vulkan.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(atts)),
		PAttachments:    atts,
		SubpassCount:    1,
		PSubpasses:      []vulkan.SubpassDescription{subpass},
	}, nil, &rp)
	if err := checkResult(res); err != nil {
		return vulkan.NullRenderPass, err
	}
	d.rpassc[key] = rp
	return rp, nil
}

// pipelineKey builds the passKey a pipeline is created
// against: formats and sample counts only, every op zeroed.
func pipelineKey(desc *rhi.RenderPipelineDesc) passKey {
	var key passKey
	samples := max(desc.Samples, 1)
	key.ncolor = len(desc.Targets)
	for i := range desc.Targets {
		key.color[i] = passAttach{format: desc.Targets[i].Format, samples: samples}
	}
	if desc.DS != nil {
		key.hasDS = true
		key.ds = passAttach{format: desc.DS.Format, samples: samples}
	}
	return key
}

// NewRenderPipeline creates a new render pipeline.
func (d *Driver) NewRenderPipeline(desc *rhi.RenderPipelineDesc) (rhi.RenderPipeline, error) {
	if err := rhi.ValidateRenderPipelineDesc(desc, &d.lim); err != nil {
		return nil, err
	}
	for i := range desc.Targets {
		if convFormat(desc.Targets[i].Format) == vulkan.FormatUndefined {
			return nil, rhi.ErrUnsupportedFormat
		}
	}
	layout, ok := desc.Layout.(*pipelineLayout)
	if !ok || layout == nil {
		return nil, fmt.Errorf("%w: render pipeline without layout", rhi.ErrInvalidDesc)
	}
	vs, ok := desc.VertFunc.Shader.(*shader)
	if !ok {
		return nil, fmt.Errorf("%w: foreign shader", rhi.ErrUsage)
	}
	stages := []vulkan.PipelineShaderStageCreateInfo{{
		SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vulkan.ShaderStageVertexBit,
		Module: vs.mod,
		PName:  desc.VertFunc.Entry + "\x00",
	}}
	if desc.FragFunc.Shader != nil {
		fs, ok := desc.FragFunc.Shader.(*shader)
		if !ok {
			return nil, fmt.Errorf("%w: foreign shader", rhi.ErrUsage)
		}
		stages = append(stages, vulkan.PipelineShaderStageCreateInfo{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageFragmentBit,
			Module: fs.mod,
			PName:  desc.FragFunc.Entry + "\x00",
		})
	}

	var vbinds []vulkan.VertexInputBindingDescription
	var vattrs []vulkan.VertexInputAttributeDescription
	for i, vl := range desc.Vertex {
		rate := vulkan.VertexInputRateVertex
		if vl.Step == rhi.StepInstance {
			rate = vulkan.VertexInputRateInstance
		}
		vbinds = append(vbinds, vulkan.VertexInputBindingDescription{
			Binding:   uint32(i),
			Stride:    uint32(vl.Stride),
			InputRate: rate,
		})
		for _, a := range vl.Attrs {
			vattrs = append(vattrs, vulkan.VertexInputAttributeDescription{
				Location: uint32(a.Location),
				Binding:  uint32(i),
				Format:   convVertexFormat(a.Format),
				Offset:   uint32(a.Offset),
			})
		}
	}

	raster := vulkan.PipelineRasterizationStateCreateInfo{
		SType:       vulkan.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vulkan.PolygonModeFill,
		CullMode:    convCullMode(desc.Raster.Cull),
		FrontFace:   convFrontFace(desc.Raster.Front),
		LineWidth:   1,
	}
	if desc.Raster.DepthBias {
		raster.DepthBiasEnable = vulkan.True
		raster.DepthBiasConstantFactor = desc.Raster.BiasValue
		raster.DepthBiasSlopeFactor = desc.Raster.BiasSlope
		raster.DepthBiasClamp = desc.Raster.BiasClamp
	}

	var dsState *vulkan.PipelineDepthStencilStateCreateInfo
	if desc.DS != nil {
		dsState = &vulkan.PipelineDepthStencilStateCreateInfo{
			SType:          vulkan.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthCompareOp: convCmpFunc(desc.DS.DepthCmp),
			MaxDepthBounds: 1,
		}
		if desc.DS.DepthTest {
			dsState.DepthTestEnable = vulkan.True
		}
		if desc.DS.DepthWrite {
			dsState.DepthWriteEnable = vulkan.True
		}
	}

	blends := make([]vulkan.PipelineColorBlendAttachmentState, len(desc.Targets))
	for i, t := range desc.Targets {
		b := vulkan.PipelineColorBlendAttachmentState{
			ColorWriteMask: vulkan.ColorComponentFlags(
				vulkan.ColorComponentRBit | vulkan.ColorComponentGBit |
					vulkan.ColorComponentBBit | vulkan.ColorComponentABit),
		}
		if t.Blend {
			b.BlendEnable = vulkan.True
			b.SrcColorBlendFactor = convBlendFactor(t.Color.SrcFac)
			b.DstColorBlendFactor = convBlendFactor(t.Color.DstFac)
			b.ColorBlendOp = convBlendOp(t.Color.Op)
			b.SrcAlphaBlendFactor = convBlendFactor(t.Alpha.SrcFac)
			b.DstAlphaBlendFactor = convBlendFactor(t.Alpha.DstFac)
			b.AlphaBlendOp = convBlendOp(t.Alpha.Op)
		}
		blends[i] = b
	}

	rp, err := d.renderPassFor(pipelineKey(desc))
	if err != nil {
		return nil, err
	}

	pipelines := make([]vulkan.Pipeline, 1)
	res := vulkan.CreateGraphicsPipelines(d.dev, vulkan.NullPipelineCache, 1,
		[]vulkan.GraphicsPipelineCreateInfo{{
			SType:      vulkan.StructureTypeGraphicsPipelineCreateInfo,
			StageCount: uint32(len(stages)),
			PStages:    stages,
			PVertexInputState: &vulkan.PipelineVertexInputStateCreateInfo{
				SType:                           vulkan.StructureTypePipelineVertexInputStateCreateInfo,
				VertexBindingDescriptionCount:   uint32(len(vbinds)),
				PVertexBindingDescriptions:      vbinds,
				VertexAttributeDescriptionCount: uint32(len(vattrs)),
				PVertexAttributeDescriptions:    vattrs,
			},
			PInputAssemblyState: &vulkan.PipelineInputAssemblyStateCreateInfo{
				SType:    vulkan.StructureTypePipelineInputAssemblyStateCreateInfo,
				Topology: convTopology(desc.Topology),
			},
			PViewportState: &vulkan.PipelineViewportStateCreateInfo{
				SType:         vulkan.StructureTypePipelineViewportStateCreateInfo,
				ViewportCount: 1,
				ScissorCount:  1,
			},
			PRasterizationState: &raster,
			PMultisampleState: &vulkan.PipelineMultisampleStateCreateInfo{
				SType:                vulkan.StructureTypePipelineMultisampleStateCreateInfo,
				RasterizationSamples: convSamples(desc.Samples),
			},
			PDepthStencilState: dsState,
			PColorBlendState: &vulkan.PipelineColorBlendStateCreateInfo{
				SType:           vulkan.StructureTypePipelineColorBlendStateCreateInfo,
				AttachmentCount: uint32(len(blends)),
				PAttachments:    blends,
			},
			PDynamicState: &vulkan.PipelineDynamicStateCreateInfo{
				SType:             vulkan.StructureTypePipelineDynamicStateCreateInfo,
				DynamicStateCount: 2,
				PDynamicStates: []vulkan.DynamicState{
					vulkan.DynamicStateViewport,
					vulkan.DynamicStateScissor,
				},
			},
			Layout:     layout.pl,
			RenderPass: rp,
		}}, nil, pipelines)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	return &renderPipeline{d: d, pl: pipelines[0], layout: layout}, nil
}

// renderPipeline implements rhi.RenderPipeline.
type renderPipeline struct {
	d      *Driver
	pl     vulkan.Pipeline
	layout *pipelineLayout
}

// Destroy destroys the pipeline.
func (p *renderPipeline) Destroy() {
	if p.d != nil {
		vulkan.DestroyPipeline(p.d.dev, p.pl, nil)
	}
	*p = renderPipeline{}
}

// NewComputePipeline creates a new compute pipeline.
func (d *Driver) NewComputePipeline(desc *rhi.ComputePipelineDesc) (rhi.ComputePipeline, error) {
	if err := rhi.ValidateComputePipelineDesc(desc); err != nil {
		return nil, err
	}
	layout, ok := desc.Layout.(*pipelineLayout)
	if !ok || layout == nil {
		return nil, fmt.Errorf("%w: compute pipeline without layout", rhi.ErrInvalidDesc)
	}
	cs, ok := desc.Func.Shader.(*shader)
	if !ok {
		return nil, fmt.Errorf("%w: foreign shader", rhi.ErrUsage)
	}
	pipelines := make([]vulkan.Pipeline, 1)
	res := vulkan.CreateComputePipelines(d.dev, vulkan.NullPipelineCache, 1,
		[]vulkan.ComputePipelineCreateInfo{{
			SType: vulkan.StructureTypeComputePipelineCreateInfo,
			Stage: vulkan.PipelineShaderStageCreateInfo{
				SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
				Stage:  vulkan.ShaderStageComputeBit,
				Module: cs.mod,
				PName:  desc.Func.Entry + "\x00",
			},
			Layout: layout.pl,
		}}, nil, pipelines)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	return &computePipeline{d: d, pl: pipelines[0], layout: layout}, nil
}

// computePipeline implements rhi.ComputePipeline.
type computePipeline struct {
	d      *Driver
	pl     vulkan.Pipeline
	layout *pipelineLayout
}

// Destroy destroys the pipeline.
func (p *computePipeline) Destroy() {
	if p.d != nil {
		vulkan.DestroyPipeline(p.d.dev, p.pl, nil)
	}
	*p = computePipeline{}
}
