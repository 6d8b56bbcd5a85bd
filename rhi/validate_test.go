// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

import (
	"errors"
	"testing"
)

func TestValidateBufferDesc(t *testing.T) {
	cases := []struct {
		desc BufferDesc
		ok   bool
	}{
		{BufferDesc{Size: 256, Usage: UsageVertex | UsageCopyDst}, true},
		{BufferDesc{Size: 1, Usage: UsageMapWrite}, true},
		{BufferDesc{Size: 64, MappedAtCreation: true}, true},
		{BufferDesc{Size: 0, Usage: UsageVertex}, false},
		{BufferDesc{Size: -1, Usage: UsageVertex}, false},
		{BufferDesc{Size: 64}, false},
	}
	for i, c := range cases {
		err := ValidateBufferDesc(&c.desc)
		if c.ok && err != nil {
			t.Errorf("case %d: unexpected error: %v", i, err)
		}
		if !c.ok && !errors.Is(err, ErrInvalidDesc) {
			t.Errorf("case %d: want ErrInvalidDesc, got %v", i, err)
		}
	}
	if err := ValidateBufferDesc(nil); !errors.Is(err, ErrInvalidDesc) {
		t.Errorf("nil desc: want ErrInvalidDesc, got %v", err)
	}
}

func TestValidateTextureDesc(t *testing.T) {
	lim := Limits{
		MaxTexture1D: 8192,
		MaxTexture2D: 8192,
		MaxTexture3D: 2048,
		MaxLayers:    256,
	}
	cases := []struct {
		name string
		desc TextureDesc
		ok   bool
	}{
		{"2d", TextureDesc{Dim: Tex2D, Size: Dim3D{256, 256, 1}, Format: RGBA8Unorm, Usage: TexSampled | TexCopyDst}, true},
		{"2d mips", TextureDesc{Dim: Tex2D, Size: Dim3D{256, 256, 1}, Levels: 9, Format: RGBA8Unorm, Usage: TexSampled}, true},
		{"1d", TextureDesc{Dim: Tex1D, Size: Dim3D{Width: 1024}, Format: R8Unorm, Usage: TexSampled}, true},
		{"3d", TextureDesc{Dim: Tex3D, Size: Dim3D{64, 64, 64}, Format: RGBA8Unorm, Usage: TexSampled}, true},
		{"msaa", TextureDesc{Dim: Tex2D, Size: Dim3D{800, 600, 1}, Samples: 4, Format: BGRA8Unorm, Usage: TexRenderTarget}, true},
		{"zero width", TextureDesc{Dim: Tex2D, Size: Dim3D{0, 256, 1}, Format: RGBA8Unorm, Usage: TexSampled}, false},
		{"no usage", TextureDesc{Dim: Tex2D, Size: Dim3D{256, 256, 1}, Format: RGBA8Unorm}, false},
		{"no format", TextureDesc{Dim: Tex2D, Size: Dim3D{256, 256, 1}, Usage: TexSampled}, false},
		{"too many mips", TextureDesc{Dim: Tex2D, Size: Dim3D{256, 256, 1}, Levels: 10, Format: RGBA8Unorm, Usage: TexSampled}, false},
		{"msaa mips", TextureDesc{Dim: Tex2D, Size: Dim3D{256, 256, 1}, Levels: 2, Samples: 4, Format: RGBA8Unorm, Usage: TexRenderTarget}, false},
		{"bad samples", TextureDesc{Dim: Tex2D, Size: Dim3D{256, 256, 1}, Samples: 3, Format: RGBA8Unorm, Usage: TexSampled}, false},
		{"3d layers", TextureDesc{Dim: Tex3D, Size: Dim3D{64, 64, 64}, Layers: 2, Format: RGBA8Unorm, Usage: TexSampled}, false},
		{"huge", TextureDesc{Dim: Tex2D, Size: Dim3D{16384, 16384, 1}, Format: RGBA8Unorm, Usage: TexSampled}, false},
	}
	for _, c := range cases {
		err := ValidateTextureDesc(&c.desc, &lim)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: want error, got nil", c.name)
		}
	}
}

// texStub provides just the accessors ValidateViewDesc needs.
type texStub struct {
	Texture
	dim            TextureDim
	format         Format
	levels, layers int
}

func (t *texStub) Dim() TextureDim { return t.dim }
func (t *texStub) Format() Format  { return t.format }
func (t *texStub) Levels() int     { return t.levels }
func (t *texStub) Layers() int     { return t.layers }

func TestValidateViewDesc(t *testing.T) {
	tex := &texStub{dim: Tex2D, format: RGBA8Unorm, levels: 4, layers: 6}
	cases := []struct {
		name string
		desc TextureViewDesc
		ok   bool
	}{
		{"full", TextureViewDesc{Dim: View2DArray}, true},
		{"one level", TextureViewDesc{Dim: View2D, BaseLevel: 3, LevelCount: 1, LayerCount: 1}, true},
		{"cube", TextureViewDesc{Dim: ViewCube, LayerCount: 6}, true},
		{"same size format", TextureViewDesc{Dim: View2D, Format: BGRA8Unorm, LayerCount: 1}, true},
		{"level overflow", TextureViewDesc{Dim: View2D, BaseLevel: 3, LevelCount: 2}, false},
		{"layer overflow", TextureViewDesc{Dim: View2DArray, BaseLayer: 4, LayerCount: 3}, false},
		{"negative", TextureViewDesc{Dim: View2D, BaseLevel: -1}, false},
		{"cube layers", TextureViewDesc{Dim: ViewCube, LayerCount: 5}, false},
		{"format size", TextureViewDesc{Dim: View2D, Format: RGBA32Float, LayerCount: 1}, false},
		{"3d of 2d", TextureViewDesc{Dim: View3D}, false},
	}
	for _, c := range cases {
		err := ValidateViewDesc(tex, &c.desc)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", c.name, err)
		}
		if !c.ok && !errors.Is(err, ErrInvalidDesc) {
			t.Errorf("%s: want ErrInvalidDesc, got %v", c.name, err)
		}
	}
}

// bufStub provides the accessors ValidateBindGroup needs.
type bufStub struct {
	Buffer
	size  int64
	usage BufferUsage
}

func (b *bufStub) Size() int64        { return b.size }
func (b *bufStub) Usage() BufferUsage { return b.usage }

type viewStub struct{ TextureView }
type samplerStub struct{ Sampler }

func TestValidateBindGroup(t *testing.T) {
	bindings := []BindingLayout{
		{Binding: 0, Type: BindUniformBuffer, Stages: StageVertex | StageFragment},
		{Binding: 1, Type: BindSampledTexture, Stages: StageFragment},
		{Binding: 2, Type: BindSampler, Stages: StageFragment},
	}
	ubo := &bufStub{size: 256, usage: UsageUniform | UsageCopyDst}
	view := &viewStub{}
	splr := &samplerStub{}

	good := []BindingEntry{
		{Binding: 0, Buffer: ubo, Size: 256},
		{Binding: 1, View: view},
		{Binding: 2, Sampler: splr},
	}
	if err := ValidateBindGroup(bindings, good); err != nil {
		t.Errorf("conforming group: unexpected error: %v", err)
	}

	bad := [][]BindingEntry{
		// Missing entry.
		{{Binding: 0, Buffer: ubo}, {Binding: 1, View: view}},
		// Wrong resource kind.
		{{Binding: 0, View: view}, {Binding: 1, View: view}, {Binding: 2, Sampler: splr}},
		// Undeclared binding.
		{{Binding: 0, Buffer: ubo}, {Binding: 1, View: view}, {Binding: 7, Sampler: splr}},
		// Range exceeds buffer.
		{{Binding: 0, Buffer: ubo, Off: 128, Size: 256}, {Binding: 1, View: view}, {Binding: 2, Sampler: splr}},
		// Buffer lacks uniform usage.
		{{Binding: 0, Buffer: &bufStub{size: 256, usage: UsageVertex}}, {Binding: 1, View: view}, {Binding: 2, Sampler: splr}},
	}
	for i, entries := range bad {
		if err := ValidateBindGroup(bindings, entries); !errors.Is(err, ErrInvalidDesc) {
			t.Errorf("case %d: want ErrInvalidDesc, got %v", i, err)
		}
	}
}

type shaderStub struct{ Shader }

func TestValidateRenderPipelineDesc(t *testing.T) {
	lim := Limits{
		MaxColorTargets:  8,
		MaxVertexBuffers: 8,
		MaxVertexAttrs:   16,
	}
	sh := &shaderStub{}
	base := RenderPipelineDesc{
		VertFunc: ShaderFunc{Shader: sh, Entry: "vs_main"},
		FragFunc: ShaderFunc{Shader: sh, Entry: "fs_main"},
		Vertex: []VertexLayout{{
			Stride: 32,
			Attrs: []VertexAttr{
				{Format: VFFloat32x3, Offset: 0, Location: 0},
				{Format: VFFloat32x2, Offset: 24, Location: 1},
			},
		}},
		Targets: []ColorTarget{{Format: BGRA8Unorm}},
		DS:      &DepthStencilState{Format: D32Float, DepthTest: true, DepthWrite: true, DepthCmp: CmpLess},
	}
	if err := ValidateRenderPipelineDesc(&base, &lim); err != nil {
		t.Errorf("valid pipeline: unexpected error: %v", err)
	}

	noVert := base
	noVert.VertFunc = ShaderFunc{}
	if err := ValidateRenderPipelineDesc(&noVert, &lim); err == nil {
		t.Error("missing vertex function: want error, got nil")
	}

	badAttr := base
	badAttr.Vertex = []VertexLayout{{
		Stride: 16,
		Attrs:  []VertexAttr{{Format: VFFloat32x4, Offset: 8}},
	}}
	if err := ValidateRenderPipelineDesc(&badAttr, &lim); err == nil {
		t.Error("attribute past stride: want error, got nil")
	}

	badDS := base
	badDS.DS = &DepthStencilState{Format: RGBA8Unorm}
	if err := ValidateRenderPipelineDesc(&badDS, &lim); err == nil {
		t.Error("non-depth DS format: want error, got nil")
	}

	manyTargets := base
	manyTargets.Targets = make([]ColorTarget, 9)
	for i := range manyTargets.Targets {
		manyTargets.Targets[i].Format = RGBA8Unorm
	}
	if err := ValidateRenderPipelineDesc(&manyTargets, &lim); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("too many targets: want ErrUnsupportedFormat, got %v", err)
	}

	depthTarget := base
	depthTarget.Targets = []ColorTarget{{Format: D32Float}}
	if err := ValidateRenderPipelineDesc(&depthTarget, &lim); err == nil {
		t.Error("depth format color target: want error, got nil")
	}

	badSamples := base
	badSamples.Samples = 3
	if err := ValidateRenderPipelineDesc(&badSamples, &lim); err == nil {
		t.Error("sample count 3: want error, got nil")
	}
}

func TestValidateComputePipelineDesc(t *testing.T) {
	sh := &shaderStub{}
	if err := ValidateComputePipelineDesc(&ComputePipelineDesc{Func: ShaderFunc{Shader: sh, Entry: "main"}}); err != nil {
		t.Errorf("valid pipeline: unexpected error: %v", err)
	}
	if err := ValidateComputePipelineDesc(&ComputePipelineDesc{}); !errors.Is(err, ErrInvalidDesc) {
		t.Error("missing function: want ErrInvalidDesc")
	}
}

func TestValidateShaderDesc(t *testing.T) {
	if err := ValidateShaderDesc(&ShaderDesc{Language: ShaderWGSL, Code: []byte("@compute fn main() {}")}); err != nil {
		t.Errorf("WGSL: unexpected error: %v", err)
	}
	if err := ValidateShaderDesc(&ShaderDesc{Language: ShaderSPIRV, Code: make([]byte, 16)}); err != nil {
		t.Errorf("SPIR-V: unexpected error: %v", err)
	}
	if err := ValidateShaderDesc(&ShaderDesc{Language: ShaderSPIRV, Code: make([]byte, 17)}); err == nil {
		t.Error("misaligned SPIR-V: want error, got nil")
	}
	if err := ValidateShaderDesc(&ShaderDesc{Language: ShaderWGSL}); err == nil {
		t.Error("empty code: want error, got nil")
	}
}

func TestValidateSwapchainDesc(t *testing.T) {
	good := SwapchainDesc{Width: 800, Height: 600, Format: BGRA8Unorm, BufferCount: 3}
	if err := ValidateSwapchainDesc(&good); err != nil {
		t.Errorf("valid desc: unexpected error: %v", err)
	}
	bad := []SwapchainDesc{
		{Width: 0, Height: 600},
		{Width: 800, Height: -1},
		{Width: 800, Height: 600, Format: D32Float},
		{Width: 800, Height: 600, BufferCount: -2},
	}
	for i := range bad {
		if err := ValidateSwapchainDesc(&bad[i]); !errors.Is(err, ErrInvalidDesc) {
			t.Errorf("case %d: want ErrInvalidDesc, got %v", i, err)
		}
	}
}
