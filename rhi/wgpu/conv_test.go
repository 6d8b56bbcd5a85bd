// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

func TestConvFormat(t *testing.T) {
	cases := []struct {
		f    rhi.Format
		want wgpu.TextureFormat
	}{
		{rhi.RGBA8Unorm, wgpu.TextureFormatRGBA8Unorm},
		{rhi.RGBA8sRGB, wgpu.TextureFormatRGBA8UnormSrgb},
		{rhi.BGRA8Unorm, wgpu.TextureFormatBGRA8Unorm},
		{rhi.BGRA8sRGB, wgpu.TextureFormatBGRA8UnormSrgb},
		{rhi.R8Unorm, wgpu.TextureFormatR8Unorm},
		{rhi.RGBA16Float, wgpu.TextureFormatRGBA16Float},
		{rhi.RGBA32Float, wgpu.TextureFormatRGBA32Float},
		{rhi.D16Unorm, wgpu.TextureFormatDepth16Unorm},
		{rhi.D32Float, wgpu.TextureFormatDepth32Float},
		{rhi.D24UnormS8, wgpu.TextureFormatDepth24PlusStencil8},
		{rhi.D32FloatS8, wgpu.TextureFormatDepth32FloatStencil8},
		{rhi.FormatInvalid, wgpu.TextureFormatUndefined},
	}
	for _, c := range cases {
		if have := convFormat(c.f); have != c.want {
			t.Fatalf("convFormat(%v):\nhave %v\nwant %v", c.f, have, c.want)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for f := rhi.RGBA8Unorm; f <= rhi.D32FloatS8; f++ {
		n := convFormat(f)
		if n == wgpu.TextureFormatUndefined {
			t.Fatalf("convFormat(%v):\nhave Undefined", f)
		}
		if have := unconvFormat(n); have != f {
			t.Fatalf("unconvFormat(convFormat(%v)):\nhave %v\nwant %v", f, have, f)
		}
	}
}

func TestConvBufferUsage(t *testing.T) {
	u := convBufferUsage(rhi.UsageVertex | rhi.UsageCopyDst)
	want := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	if u != want {
		t.Fatalf("convBufferUsage:\nhave %v\nwant %v", u, want)
	}
	// Mappable usages imply the transfer usage for staging.
	u = convBufferUsage(rhi.UsageMapRead)
	if u&wgpu.BufferUsageCopyDst == 0 {
		t.Fatal("convBufferUsage(UsageMapRead):\nhave no CopyDst")
	}
	u = convBufferUsage(rhi.UsageMapWrite)
	if u&wgpu.BufferUsageCopySrc == 0 {
		t.Fatal("convBufferUsage(UsageMapWrite):\nhave no CopySrc")
	}
}

func TestConvTextureUsage(t *testing.T) {
	u := convTextureUsage(rhi.TexSampled | rhi.TexCopyDst)
	want := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	if u != want {
		t.Fatalf("convTextureUsage:\nhave %v\nwant %v", u, want)
	}
	if convTextureUsage(rhi.TexRenderTarget) != wgpu.TextureUsageRenderAttachment {
		t.Fatal("convTextureUsage(TexRenderTarget):\nhave no RenderAttachment")
	}
}

func TestConvVertexFormat(t *testing.T) {
	cases := []struct {
		f    rhi.VertexFormat
		want wgpu.VertexFormat
	}{
		{rhi.VFFloat32, wgpu.VertexFormatFloat32},
		{rhi.VFFloat32x3, wgpu.VertexFormatFloat32x3},
		{rhi.VFUint32x4, wgpu.VertexFormatUint32x4},
		{rhi.VFSint32x2, wgpu.VertexFormatSint32x2},
		{rhi.VFUint8x4, wgpu.VertexFormatUint8x4},
		{rhi.VFUnorm8x4, wgpu.VertexFormatUnorm8x4},
	}
	for _, c := range cases {
		if have := convVertexFormat(c.f); have != c.want {
			t.Fatalf("convVertexFormat(%v):\nhave %v\nwant %v", c.f, have, c.want)
		}
	}
}

func TestConvLoadStoreOp(t *testing.T) {
	if convLoadOp(rhi.LoadKeep) != wgpu.LoadOpLoad {
		t.Fatal("convLoadOp(LoadKeep):\nhave not Load")
	}
	// Don't-care has no native equivalent and clears.
	if convLoadOp(rhi.LoadDontCare) != wgpu.LoadOpClear {
		t.Fatal("convLoadOp(LoadDontCare):\nhave not Clear")
	}
	if convStoreOp(rhi.Store) != wgpu.StoreOpStore {
		t.Fatal("convStoreOp(Store):\nhave not Store")
	}
	if convStoreOp(rhi.StoreDiscard) != wgpu.StoreOpDiscard {
		t.Fatal("convStoreOp(StoreDiscard):\nhave not Discard")
	}
}

func TestConvIndexFormat(t *testing.T) {
	if convIndexFormat(rhi.Index16) != wgpu.IndexFormatUint16 {
		t.Fatal("convIndexFormat(Index16):\nhave not Uint16")
	}
	if convIndexFormat(rhi.Index32) != wgpu.IndexFormatUint32 {
		t.Fatal("convIndexFormat(Index32):\nhave not Uint32")
	}
}

func TestConvStages(t *testing.T) {
	s := convStages(rhi.StageVertex | rhi.StageFragment)
	want := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	if s != want {
		t.Fatalf("convStages:\nhave %v\nwant %v", s, want)
	}
	if convStages(rhi.StageCompute) != wgpu.ShaderStageCompute {
		t.Fatal("convStages(StageCompute):\nhave no Compute")
	}
}

func TestConvPresentMode(t *testing.T) {
	cases := []struct {
		m    rhi.PresentMode
		want wgpu.PresentMode
	}{
		{rhi.PresentFifo, wgpu.PresentModeFifo},
		{rhi.PresentMailbox, wgpu.PresentModeMailbox},
		{rhi.PresentImmediate, wgpu.PresentModeImmediate},
	}
	for _, c := range cases {
		if have := convPresentMode(c.m); have != c.want {
			t.Fatalf("convPresentMode(%v):\nhave %v\nwant %v", c.m, have, c.want)
		}
	}
}
