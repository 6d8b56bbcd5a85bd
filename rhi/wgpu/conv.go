// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

// convFormat converts a Format into its native equivalent.
// It returns wgpu.TextureFormatUndefined for formats with no
// exact native match.
func convFormat(f rhi.Format) wgpu.TextureFormat {
	switch f {
	case rhi.RGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case rhi.RGBA8sRGB:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case rhi.BGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case rhi.BGRA8sRGB:
		return wgpu.TextureFormatBGRA8UnormSrgb
	case rhi.RG8Unorm:
		return wgpu.TextureFormatRG8Unorm
	case rhi.R8Unorm:
		return wgpu.TextureFormatR8Unorm
	case rhi.RGBA16Float:
		return wgpu.TextureFormatRGBA16Float
	case rhi.RG16Float:
		return wgpu.TextureFormatRG16Float
	case rhi.R16Float:
		return wgpu.TextureFormatR16Float
	case rhi.RGBA32Float:
		return wgpu.TextureFormatRGBA32Float
	case rhi.RG32Float:
		return wgpu.TextureFormatRG32Float
	case rhi.R32Float:
		return wgpu.TextureFormatR32Float
	case rhi.D16Unorm:
		return wgpu.TextureFormatDepth16Unorm
	case rhi.D32Float:
		return wgpu.TextureFormatDepth32Float
	case rhi.D24UnormS8:
		return wgpu.TextureFormatDepth24PlusStencil8
	case rhi.D32FloatS8:
		return wgpu.TextureFormatDepth32FloatStencil8
	}
	return wgpu.TextureFormatUndefined
}

// unconvFormat is the inverse of convFormat.
func unconvFormat(f wgpu.TextureFormat) rhi.Format {
	switch f {
	case wgpu.TextureFormatRGBA8Unorm:
		return rhi.RGBA8Unorm
	case wgpu.TextureFormatRGBA8UnormSrgb:
		return rhi.RGBA8sRGB
	case wgpu.TextureFormatBGRA8Unorm:
		return rhi.BGRA8Unorm
	case wgpu.TextureFormatBGRA8UnormSrgb:
		return rhi.BGRA8sRGB
	case wgpu.TextureFormatRG8Unorm:
		return rhi.RG8Unorm
	case wgpu.TextureFormatR8Unorm:
		return rhi.R8Unorm
	case wgpu.TextureFormatRGBA16Float:
		return rhi.RGBA16Float
	case wgpu.TextureFormatRG16Float:
		return rhi.RG16Float
	case wgpu.TextureFormatR16Float:
		return rhi.R16Float
	case wgpu.TextureFormatRGBA32Float:
		return rhi.RGBA32Float
	case wgpu.TextureFormatRG32Float:
		return rhi.RG32Float
	case wgpu.TextureFormatR32Float:
		return rhi.R32Float
	case wgpu.TextureFormatDepth16Unorm:
		return rhi.D16Unorm
	case wgpu.TextureFormatDepth32Float:
		return rhi.D32Float
	case wgpu.TextureFormatDepth24PlusStencil8:
		return rhi.D24UnormS8
	case wgpu.TextureFormatDepth32FloatStencil8:
		return rhi.D32FloatS8
	}
	return rhi.FormatInvalid
}

func convBufferUsage(u rhi.BufferUsage) wgpu.BufferUsage {
	var w wgpu.BufferUsage
	if u&rhi.UsageCopySrc != 0 {
		w |= wgpu.BufferUsageCopySrc
	}
	if u&rhi.UsageCopyDst != 0 {
		w |= wgpu.BufferUsageCopyDst
	}
	if u&rhi.UsageVertex != 0 {
		w |= wgpu.BufferUsageVertex
	}
	if u&rhi.UsageIndex != 0 {
		w |= wgpu.BufferUsageIndex
	}
	if u&rhi.UsageUniform != 0 {
		w |= wgpu.BufferUsageUniform
	}
	if u&rhi.UsageStorage != 0 {
		w |= wgpu.BufferUsageStorage
	}
	if u&rhi.UsageIndirect != 0 {
		w |= wgpu.BufferUsageIndirect
	}
	if u&rhi.UsageMapRead != 0 {
		w |= wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
	}
	if u&rhi.UsageMapWrite != 0 {
		w |= wgpu.BufferUsageMapWrite | wgpu.BufferUsageCopySrc
	}
	return w
}

func convTextureUsage(u rhi.TextureUsage) wgpu.TextureUsage {
	var w wgpu.TextureUsage
	if u&rhi.TexCopySrc != 0 {
		w |= wgpu.TextureUsageCopySrc
	}
	if u&rhi.TexCopyDst != 0 {
		w |= wgpu.TextureUsageCopyDst
	}
	if u&rhi.TexSampled != 0 {
		w |= wgpu.TextureUsageTextureBinding
	}
	if u&rhi.TexStorage != 0 {
		w |= wgpu.TextureUsageStorageBinding
	}
	if u&rhi.TexRenderTarget != 0 {
		w |= wgpu.TextureUsageRenderAttachment
	}
	return w
}

func convTextureDim(d rhi.TextureDim) wgpu.TextureDimension {
	switch d {
	case rhi.Tex1D:
		return wgpu.TextureDimension1D
	case rhi.Tex3D:
		return wgpu.TextureDimension3D
	}
	return wgpu.TextureDimension2D
}

func convViewDim(d rhi.ViewDim) wgpu.TextureViewDimension {
	switch d {
	case rhi.View1D:
		return wgpu.TextureViewDimension1D
	case rhi.View3D:
		return wgpu.TextureViewDimension3D
	case rhi.ViewCube:
		return wgpu.TextureViewDimensionCube
	case rhi.View2DArray:
		return wgpu.TextureViewDimension2DArray
	case rhi.ViewCubeArray:
		return wgpu.TextureViewDimensionCubeArray
	}
	return wgpu.TextureViewDimension2D
}

func convFilter(f rhi.Filter) wgpu.FilterMode {
	if f == rhi.FilterLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func convMipmap(f rhi.Filter) wgpu.MipmapFilterMode {
	if f == rhi.FilterLinear {
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

func convAddrMode(m rhi.AddrMode) wgpu.AddressMode {
	switch m {
	case rhi.AddrMirror:
		return wgpu.AddressModeMirrorRepeat
	case rhi.AddrClamp:
		return wgpu.AddressModeClampToEdge
	}
	return wgpu.AddressModeRepeat
}

func convCmpFunc(f rhi.CmpFunc) wgpu.CompareFunction {
	switch f {
	case rhi.CmpNever:
		return wgpu.CompareFunctionNever
	case rhi.CmpLess:
		return wgpu.CompareFunctionLess
	case rhi.CmpEqual:
		return wgpu.CompareFunctionEqual
	case rhi.CmpLessEqual:
		return wgpu.CompareFunctionLessEqual
	case rhi.CmpGreater:
		return wgpu.CompareFunctionGreater
	case rhi.CmpNotEqual:
		return wgpu.CompareFunctionNotEqual
	case rhi.CmpGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	}
	return wgpu.CompareFunctionAlways
}

func convStages(s rhi.ShaderStage) wgpu.ShaderStage {
	var w wgpu.ShaderStage
	if s&rhi.StageVertex != 0 {
		w |= wgpu.ShaderStageVertex
	}
	if s&rhi.StageFragment != 0 {
		w |= wgpu.ShaderStageFragment
	}
	if s&rhi.StageCompute != 0 {
		w |= wgpu.ShaderStageCompute
	}
	return w
}

func convVertexFormat(f rhi.VertexFormat) wgpu.VertexFormat {
	switch f {
	case rhi.VFFloat32:
		return wgpu.VertexFormatFloat32
	case rhi.VFFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case rhi.VFFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case rhi.VFFloat32x4:
		return wgpu.VertexFormatFloat32x4
	case rhi.VFUint32:
		return wgpu.VertexFormatUint32
	case rhi.VFUint32x2:
		return wgpu.VertexFormatUint32x2
	case rhi.VFUint32x3:
		return wgpu.VertexFormatUint32x3
	case rhi.VFUint32x4:
		return wgpu.VertexFormatUint32x4
	case rhi.VFSint32:
		return wgpu.VertexFormatSint32
	case rhi.VFSint32x2:
		return wgpu.VertexFormatSint32x2
	case rhi.VFSint32x3:
		return wgpu.VertexFormatSint32x3
	case rhi.VFSint32x4:
		return wgpu.VertexFormatSint32x4
	case rhi.VFUint8x4:
		return wgpu.VertexFormatUint8x4
	case rhi.VFUnorm8x4:
		return wgpu.VertexFormatUnorm8x4
	}
	return wgpu.VertexFormatUndefined
}

func convTopology(t rhi.Topology) wgpu.PrimitiveTopology {
	switch t {
	case rhi.TopoTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case rhi.TopoLines:
		return wgpu.PrimitiveTopologyLineList
	case rhi.TopoLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case rhi.TopoPoints:
		return wgpu.PrimitiveTopologyPointList
	}
	return wgpu.PrimitiveTopologyTriangleList
}

func convCullMode(m rhi.CullMode) wgpu.CullMode {
	switch m {
	case rhi.CullFront:
		return wgpu.CullModeFront
	case rhi.CullBack:
		return wgpu.CullModeBack
	}
	return wgpu.CullModeNone
}

func convFrontFace(f rhi.FrontFace) wgpu.FrontFace {
	if f == rhi.FrontCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func convBlendOp(op rhi.BlendOp) wgpu.BlendOperation {
	switch op {
	case rhi.BlendSubtract:
		return wgpu.BlendOperationSubtract
	case rhi.BlendRevSubtract:
		return wgpu.BlendOperationReverseSubtract
	case rhi.BlendMin:
		return wgpu.BlendOperationMin
	case rhi.BlendMax:
		return wgpu.BlendOperationMax
	}
	return wgpu.BlendOperationAdd
}

func convBlendFactor(f rhi.BlendFactor) wgpu.BlendFactor {
	switch f {
	case rhi.FacOne:
		return wgpu.BlendFactorOne
	case rhi.FacSrcColor:
		return wgpu.BlendFactorSrc
	case rhi.FacInvSrcColor:
		return wgpu.BlendFactorOneMinusSrc
	case rhi.FacSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case rhi.FacInvSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case rhi.FacDstColor:
		return wgpu.BlendFactorDst
	case rhi.FacInvDstColor:
		return wgpu.BlendFactorOneMinusDst
	case rhi.FacDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case rhi.FacInvDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	}
	return wgpu.BlendFactorZero
}

func convIndexFormat(f rhi.IndexFormat) wgpu.IndexFormat {
	if f == rhi.Index16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

// convLoadOp converts a load operation.
// There is no native don't-care; such loads clear.
func convLoadOp(op rhi.LoadOp) wgpu.LoadOp {
	if op == rhi.LoadKeep {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func convStoreOp(op rhi.StoreOp) wgpu.StoreOp {
	if op == rhi.Store {
		return wgpu.StoreOpStore
	}
	return wgpu.StoreOpDiscard
}

func convPresentMode(m rhi.PresentMode) wgpu.PresentMode {
	switch m {
	case rhi.PresentMailbox:
		return wgpu.PresentModeMailbox
	case rhi.PresentImmediate:
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}
