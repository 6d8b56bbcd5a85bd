// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

// Format describes the format of a pixel.
// It is the wire contract between callers and backends; each
// backend must map every format it reports as supported to an
// exact native equivalent, and fail creation with
// ErrUnsupportedFormat for those it cannot.
type Format int

// Pixel formats.
const (
	FormatInvalid Format = iota
	// Color, 8-bit channels.
	RGBA8Unorm
	RGBA8sRGB
	BGRA8Unorm
	BGRA8sRGB
	RG8Unorm
	R8Unorm
	// Color, 16-bit float channels.
	RGBA16Float
	RG16Float
	R16Float
	// Color, 32-bit float channels.
	RGBA32Float
	RG32Float
	R32Float
	// Depth/stencil.
	D16Unorm
	D32Float
	D24UnormS8
	D32FloatS8
)

// IsDepth returns whether f has a depth aspect.
func (f Format) IsDepth() bool {
	switch f {
	case D16Unorm, D32Float, D24UnormS8, D32FloatS8:
		return true
	}
	return false
}

// HasStencil returns whether f has a stencil aspect.
func (f Format) HasStencil() bool {
	switch f {
	case D24UnormS8, D32FloatS8:
		return true
	}
	return false
}

// IsColor returns whether f is a color format.
func (f Format) IsColor() bool {
	return f != FormatInvalid && !f.IsDepth()
}

// Size returns the number of bytes per pixel of f.
// Combined depth/stencil formats report the size of their
// packed native encoding.
func (f Format) Size() int {
	switch f {
	case R8Unorm:
		return 1
	case RG8Unorm, R16Float, D16Unorm:
		return 2
	case RGBA8Unorm, RGBA8sRGB, BGRA8Unorm, BGRA8sRGB, RG16Float, R32Float, D32Float, D24UnormS8:
		return 4
	case RGBA16Float, RG32Float, D32FloatS8:
		return 8
	case RGBA32Float:
		return 16
	}
	return 0
}

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case RGBA8Unorm:
		return "RGBA8Unorm"
	case RGBA8sRGB:
		return "RGBA8sRGB"
	case BGRA8Unorm:
		return "BGRA8Unorm"
	case BGRA8sRGB:
		return "BGRA8sRGB"
	case RG8Unorm:
		return "RG8Unorm"
	case R8Unorm:
		return "R8Unorm"
	case RGBA16Float:
		return "RGBA16Float"
	case RG16Float:
		return "RG16Float"
	case R16Float:
		return "R16Float"
	case RGBA32Float:
		return "RGBA32Float"
	case RG32Float:
		return "RG32Float"
	case R32Float:
		return "R32Float"
	case D16Unorm:
		return "D16Unorm"
	case D32Float:
		return "D32Float"
	case D24UnormS8:
		return "D24UnormS8"
	case D32FloatS8:
		return "D32FloatS8"
	}
	return "FormatInvalid"
}
