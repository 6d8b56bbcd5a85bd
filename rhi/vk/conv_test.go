// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	"testing"

	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

func TestConvFormat(t *testing.T) {
	for _, c := range [...]struct {
		f rhi.Format
		w vulkan.Format
	}{
		{rhi.FormatInvalid, vulkan.FormatUndefined},
		{rhi.RGBA8Unorm, vulkan.FormatR8g8b8a8Unorm},
		{rhi.RGBA8sRGB, vulkan.FormatR8g8b8a8Srgb},
		{rhi.BGRA8Unorm, vulkan.FormatB8g8r8a8Unorm},
		{rhi.BGRA8sRGB, vulkan.FormatB8g8r8a8Srgb},
		{rhi.RG8Unorm, vulkan.FormatR8g8Unorm},
		{rhi.R8Unorm, vulkan.FormatR8Unorm},
		{rhi.RGBA16Float, vulkan.FormatR16g16b16a16Sfloat},
		{rhi.RGBA32Float, vulkan.FormatR32g32b32a32Sfloat},
		{rhi.D16Unorm, vulkan.FormatD16Unorm},
		{rhi.D32Float, vulkan.FormatD32Sfloat},
		{rhi.D24UnormS8, vulkan.FormatD24UnormS8Uint},
		{rhi.D32FloatS8, vulkan.FormatD32SfloatS8Uint},
	} {
		if h := convFormat(c.f); h != c.w {
			t.Fatalf("convFormat(%v):\nhave %v\nwant %v", c.f, h, c.w)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for f := rhi.RGBA8Unorm; f <= rhi.D32FloatS8; f++ {
		n := convFormat(f)
		if n == vulkan.FormatUndefined {
			t.Fatalf("convFormat(%v):\nhave FormatUndefined", f)
		}
		if h := unconvFormat(n); h != f {
			t.Fatalf("unconvFormat(convFormat(%v)):\nhave %v\nwant %v", f, h, f)
		}
	}
}

func TestAspectOf(t *testing.T) {
	if a := aspectOf(rhi.RGBA8Unorm); a != vulkan.ImageAspectFlags(vulkan.ImageAspectColorBit) {
		t.Fatalf("aspectOf(RGBA8Unorm):\nhave %v\nwant color", a)
	}
	if a := aspectOf(rhi.D32Float); a != vulkan.ImageAspectFlags(vulkan.ImageAspectDepthBit) {
		t.Fatalf("aspectOf(D32Float):\nhave %v\nwant depth", a)
	}
	w := vulkan.ImageAspectFlags(vulkan.ImageAspectDepthBit | vulkan.ImageAspectStencilBit)
	if a := aspectOf(rhi.D24UnormS8); a != w {
		t.Fatalf("aspectOf(D24UnormS8):\nhave %v\nwant depth|stencil", a)
	}
}

func TestConvBufferUsage(t *testing.T) {
	u := convBufferUsage(rhi.UsageVertex | rhi.UsageCopyDst)
	w := vulkan.BufferUsageFlags(vulkan.BufferUsageVertexBufferBit | vulkan.BufferUsageTransferDstBit)
	if u != w {
		t.Fatalf("convBufferUsage:\nhave %v\nwant %v", u, w)
	}
	// Mappable usage must imply transfer usage.
	u = convBufferUsage(rhi.UsageMapRead | rhi.UsageMapWrite)
	w = vulkan.BufferUsageFlags(vulkan.BufferUsageTransferSrcBit | vulkan.BufferUsageTransferDstBit)
	if u != w {
		t.Fatalf("convBufferUsage(mappable):\nhave %v\nwant %v", u, w)
	}
}

func TestConvTextureUsage(t *testing.T) {
	u := convTextureUsage(rhi.TexRenderTarget, rhi.RGBA8Unorm)
	if u != vulkan.ImageUsageFlags(vulkan.ImageUsageColorAttachmentBit) {
		t.Fatalf("convTextureUsage(color target):\nhave %v", u)
	}
	u = convTextureUsage(rhi.TexRenderTarget, rhi.D32Float)
	if u != vulkan.ImageUsageFlags(vulkan.ImageUsageDepthStencilAttachmentBit) {
		t.Fatalf("convTextureUsage(depth target):\nhave %v", u)
	}
}

func TestConvVertexFormat(t *testing.T) {
	for _, c := range [...]struct {
		f rhi.VertexFormat
		w vulkan.Format
	}{
		{rhi.VFFloat32, vulkan.FormatR32Sfloat},
		{rhi.VFFloat32x2, vulkan.FormatR32g32Sfloat},
		{rhi.VFFloat32x3, vulkan.FormatR32g32b32Sfloat},
		{rhi.VFFloat32x4, vulkan.FormatR32g32b32a32Sfloat},
		{rhi.VFUint32, vulkan.FormatR32Uint},
		{rhi.VFSint32x4, vulkan.FormatR32g32b32a32Sint},
		{rhi.VFUint8x4, vulkan.FormatR8g8b8a8Uint},
		{rhi.VFUnorm8x4, vulkan.FormatR8g8b8a8Unorm},
	} {
		if h := convVertexFormat(c.f); h != c.w {
			t.Fatalf("convVertexFormat(%v):\nhave %v\nwant %v", c.f, h, c.w)
		}
	}
}

func TestConvLayout(t *testing.T) {
	for _, c := range [...]struct {
		l rhi.Layout
		f rhi.Format
		w vulkan.ImageLayout
	}{
		{rhi.LayoutUndefined, rhi.RGBA8Unorm, vulkan.ImageLayoutUndefined},
		{rhi.LayoutGeneral, rhi.RGBA8Unorm, vulkan.ImageLayoutGeneral},
		{rhi.LayoutCopySrc, rhi.RGBA8Unorm, vulkan.ImageLayoutTransferSrcOptimal},
		{rhi.LayoutCopyDst, rhi.RGBA8Unorm, vulkan.ImageLayoutTransferDstOptimal},
		{rhi.LayoutShaderRead, rhi.RGBA8Unorm, vulkan.ImageLayoutShaderReadOnlyOptimal},
		{rhi.LayoutRenderTarget, rhi.RGBA8Unorm, vulkan.ImageLayoutColorAttachmentOptimal},
		{rhi.LayoutRenderTarget, rhi.D32Float, vulkan.ImageLayoutDepthStencilAttachmentOptimal},
		{rhi.LayoutDepthTarget, rhi.D32Float, vulkan.ImageLayoutDepthStencilAttachmentOptimal},
		{rhi.LayoutPresent, rhi.BGRA8Unorm, vulkan.ImageLayoutPresentSrc},
	} {
		if h := convLayout(c.l, c.f); h != c.w {
			t.Fatalf("convLayout(%v, %v):\nhave %v\nwant %v", c.l, c.f, h, c.w)
		}
	}
}

func TestRepackUint32(t *testing.T) {
	code := []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}
	words := repackUint32(code)
	if len(words) != 2 {
		t.Fatalf("repackUint32 length:\nhave %v\nwant 2", len(words))
	}
	if words[0] != 0x07230203 {
		t.Fatalf("repackUint32 magic:\nhave %#x\nwant 0x07230203", words[0])
	}
	if words[1] != 0x00010000 {
		t.Fatalf("repackUint32 version:\nhave %#x\nwant 0x00010000", words[1])
	}
}

func TestCheckResult(t *testing.T) {
	for _, c := range [...]struct {
		r vulkan.Result
		w error
	}{
		{vulkan.Success, nil},
		{vulkan.ErrorOutOfHostMemory, rhi.ErrNoHostMemory},
		{vulkan.ErrorOutOfDeviceMemory, rhi.ErrNoDeviceMemory},
		{vulkan.ErrorDeviceLost, rhi.ErrDeviceLost},
		{vulkan.ErrorOutOfDate, rhi.ErrSwapchain},
		{vulkan.ErrorFormatNotSupported, rhi.ErrUnsupportedFormat},
	} {
		if h := checkResult(c.r); h != c.w {
			t.Fatalf("checkResult(%d):\nhave %v\nwant %v", c.r, h, c.w)
		}
	}
}
