// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

// NewRenderPipeline creates a new render pipeline.
func (d *Driver) NewRenderPipeline(desc *rhi.RenderPipelineDesc) (rhi.RenderPipeline, error) {
	if err := rhi.ValidateRenderPipelineDesc(desc, &d.lim); err != nil {
		return nil, err
	}
	layout, ok := desc.Layout.(*pipelineLayout)
	if !ok || layout.pl == nil {
		return nil, fmt.Errorf("%w: foreign pipeline layout", rhi.ErrUsage)
	}
	vert, ok := desc.VertFunc.Shader.(*shader)
	if !ok || vert.mod == nil {
		return nil, fmt.Errorf("%w: foreign vertex shader", rhi.ErrUsage)
	}

	buffers := make([]wgpu.VertexBufferLayout, len(desc.Vertex))
	for i := range desc.Vertex {
		vl := &desc.Vertex[i]
		step := wgpu.VertexStepModeVertex
		if vl.Step == rhi.StepInstance {
			step = wgpu.VertexStepModeInstance
		}
		attrs := make([]wgpu.VertexAttribute, len(vl.Attrs))
		for j, a := range vl.Attrs {
			f := convVertexFormat(a.Format)
			if f == wgpu.VertexFormatUndefined {
				return nil, fmt.Errorf("%w: vertex format %v", rhi.ErrUnsupportedFormat, a.Format)
			}
			attrs[j] = wgpu.VertexAttribute{
				Format:         f,
				Offset:         uint64(a.Offset),
				ShaderLocation: uint32(a.Location),
			}
		}
		buffers[i] = wgpu.VertexBufferLayout{
			ArrayStride: uint64(vl.Stride),
			StepMode:    step,
			Attributes:  attrs,
		}
	}

	samples := desc.Samples
	if samples < 1 {
		samples = 1
	}
	pd := wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout.pl,
		Vertex: wgpu.VertexState{
			Module:     vert.mod,
			EntryPoint: desc.VertFunc.Entry,
			Buffers:    buffers,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  convTopology(desc.Topology),
			FrontFace: convFrontFace(desc.Raster.Front),
			CullMode:  convCullMode(desc.Raster.Cull),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(samples),
			Mask:  0xFFFFFFFF,
		},
	}

	if desc.FragFunc.Shader != nil {
		frag, ok := desc.FragFunc.Shader.(*shader)
		if !ok || frag.mod == nil {
			return nil, fmt.Errorf("%w: foreign fragment shader", rhi.ErrUsage)
		}
		targets := make([]wgpu.ColorTargetState, len(desc.Targets))
		for i := range desc.Targets {
			t := &desc.Targets[i]
			format := convFormat(t.Format)
			if format == wgpu.TextureFormatUndefined {
				return nil, fmt.Errorf("%w: %v", rhi.ErrUnsupportedFormat, t.Format)
			}
			ts := wgpu.ColorTargetState{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}
			if t.Blend {
				ts.Blend = &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						Operation: convBlendOp(t.Color.Op),
						SrcFactor: convBlendFactor(t.Color.SrcFac),
						DstFactor: convBlendFactor(t.Color.DstFac),
					},
					Alpha: wgpu.BlendComponent{
						Operation: convBlendOp(t.Alpha.Op),
						SrcFactor: convBlendFactor(t.Alpha.SrcFac),
						DstFactor: convBlendFactor(t.Alpha.DstFac),
					},
				}
			}
			targets[i] = ts
		}
		pd.Fragment = &wgpu.FragmentState{
			Module:     frag.mod,
			EntryPoint: desc.FragFunc.Entry,
			Targets:    targets,
		}
	}

	if desc.DS != nil {
		format := convFormat(desc.DS.Format)
		if format == wgpu.TextureFormatUndefined {
			return nil, fmt.Errorf("%w: %v", rhi.ErrUnsupportedFormat, desc.DS.Format)
		}
		cmp := wgpu.CompareFunctionAlways
		if desc.DS.DepthTest {
			cmp = convCmpFunc(desc.DS.DepthCmp)
		}
		ds := &wgpu.DepthStencilState{
			Format:            format,
			DepthWriteEnabled: desc.DS.DepthWrite,
			DepthCompare:      cmp,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
		if desc.Raster.DepthBias {
			ds.DepthBias = int32(desc.Raster.BiasValue)
			ds.DepthBiasSlopeScale = desc.Raster.BiasSlope
			ds.DepthBiasClamp = desc.Raster.BiasClamp
		}
		pd.DepthStencil = ds
	}

	pl, err := d.dev.CreateRenderPipeline(&pd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrInvalidDesc, err)
	}
	return &renderPipeline{d: d, pl: pl, layout: layout}, nil
}

type renderPipeline struct {
	d      *Driver
	pl     *wgpu.RenderPipeline
	layout *pipelineLayout
}

// Destroy invalidates and deallocates the pipeline.
func (p *renderPipeline) Destroy() {
	if p.pl != nil {
		p.pl.Release()
	}
	*p = renderPipeline{}
}

// NewComputePipeline creates a new compute pipeline.
func (d *Driver) NewComputePipeline(desc *rhi.ComputePipelineDesc) (rhi.ComputePipeline, error) {
	if err := rhi.ValidateComputePipelineDesc(desc); err != nil {
		return nil, err
	}
	layout, ok := desc.Layout.(*pipelineLayout)
	if !ok || layout.pl == nil {
		return nil, fmt.Errorf("%w: foreign pipeline layout", rhi.ErrUsage)
	}
	s, ok := desc.Func.Shader.(*shader)
	if !ok || s.mod == nil {
		return nil, fmt.Errorf("%w: foreign shader", rhi.ErrUsage)
	}
	pl, err := d.dev.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: layout.pl,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s.mod,
			EntryPoint: desc.Func.Entry,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrInvalidDesc, err)
	}
	return &computePipeline{d: d, pl: pl, layout: layout}, nil
}

type computePipeline struct {
	d      *Driver
	pl     *wgpu.ComputePipeline
	layout *pipelineLayout
}

// Destroy invalidates and deallocates the pipeline.
func (p *computePipeline) Destroy() {
	if p.pl != nil {
		p.pl.Release()
	}
	*p = computePipeline{}
}
