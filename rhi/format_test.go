// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

import "testing"

func TestFormatAspects(t *testing.T) {
	cases := []struct {
		f       Format
		depth   bool
		stencil bool
		size    int
	}{
		{RGBA8Unorm, false, false, 4},
		{BGRA8sRGB, false, false, 4},
		{R8Unorm, false, false, 1},
		{RG16Float, false, false, 4},
		{RGBA16Float, false, false, 8},
		{RGBA32Float, false, false, 16},
		{D16Unorm, true, false, 2},
		{D32Float, true, false, 4},
		{D24UnormS8, true, true, 4},
		{D32FloatS8, true, true, 8},
	}
	for _, c := range cases {
		if c.f.IsDepth() != c.depth {
			t.Errorf("%v: IsDepth = %v", c.f, c.f.IsDepth())
		}
		if c.f.HasStencil() != c.stencil {
			t.Errorf("%v: HasStencil = %v", c.f, c.f.HasStencil())
		}
		if c.f.IsColor() == c.depth {
			t.Errorf("%v: IsColor = %v", c.f, c.f.IsColor())
		}
		if c.f.Size() != c.size {
			t.Errorf("%v: Size = %d, want %d", c.f, c.f.Size(), c.size)
		}
	}
	if FormatInvalid.IsColor() {
		t.Error("FormatInvalid: IsColor = true")
	}
	if FormatInvalid.Size() != 0 {
		t.Errorf("FormatInvalid: Size = %d", FormatInvalid.Size())
	}
}

func TestVertexFormatSize(t *testing.T) {
	cases := map[VertexFormat]int{
		VFFloat32:   4,
		VFFloat32x2: 8,
		VFFloat32x3: 12,
		VFFloat32x4: 16,
		VFUint32x2:  8,
		VFSint32x3:  12,
		VFUint8x4:   4,
		VFUnorm8x4:  4,
	}
	for f, want := range cases {
		if f.Size() != want {
			t.Errorf("format %d: Size = %d, want %d", f, f.Size(), want)
		}
	}
}

func TestBufferUsageMappable(t *testing.T) {
	if (UsageVertex | UsageCopyDst).Mappable() {
		t.Error("Vertex|CopyDst: Mappable = true")
	}
	if !(UsageMapRead | UsageCopyDst).Mappable() {
		t.Error("MapRead|CopyDst: Mappable = false")
	}
	if !(UsageMapWrite).Mappable() {
		t.Error("MapWrite: Mappable = false")
	}
}

func TestFeaturesHas(t *testing.T) {
	f := FeatureCompute | FeatureIndirectDraw
	if !f.Has(FeatureCompute) {
		t.Error("Has(FeatureCompute) = false")
	}
	if !f.Has(FeatureCompute | FeatureIndirectDraw) {
		t.Error("Has(both) = false")
	}
	if f.Has(FeatureAnisotropy) {
		t.Error("Has(FeatureAnisotropy) = true")
	}
}
