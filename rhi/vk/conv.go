// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

// convFormat returns the native format equivalent to f, or
// vulkan.FormatUndefined if there is none.
func convFormat(f rhi.Format) vulkan.Format {
	switch f {
	case rhi.RGBA8Unorm:
		return vulkan.FormatR8g8b8a8Unorm
	case rhi.RGBA8sRGB:
		return vulkan.FormatR8g8b8a8Srgb
	case rhi.BGRA8Unorm:
		return vulkan.FormatB8g8r8a8Unorm
	case rhi.BGRA8sRGB:
		return vulkan.FormatB8g8r8a8Srgb
	case rhi.RG8Unorm:
		return vulkan.FormatR8g8Unorm
	case rhi.R8Unorm:
		return vulkan.FormatR8Unorm
	case rhi.RGBA16Float:
		return vulkan.FormatR16g16b16a16Sfloat
	case rhi.RG16Float:
		return vulkan.FormatR16g16Sfloat
	case rhi.R16Float:
		return vulkan.FormatR16Sfloat
	case rhi.RGBA32Float:
		return vulkan.FormatR32g32b32a32Sfloat
	case rhi.RG32Float:
		return vulkan.FormatR32g32Sfloat
	case rhi.R32Float:
		return vulkan.FormatR32Sfloat
	case rhi.D16Unorm:
		return vulkan.FormatD16Unorm
	case rhi.D32Float:
		return vulkan.FormatD32Sfloat
	case rhi.D24UnormS8:
		return vulkan.FormatD24UnormS8Uint
	case rhi.D32FloatS8:
		return vulkan.FormatD32SfloatS8Uint
	}
	return vulkan.FormatUndefined
}

// unconvFormat is the inverse of convFormat for the formats a
// surface is likely to report.
func unconvFormat(f vulkan.Format) rhi.Format {
	switch f {
	case vulkan.FormatR8g8b8a8Unorm:
		return rhi.RGBA8Unorm
	case vulkan.FormatR8g8b8a8Srgb:
		return rhi.RGBA8sRGB
	case vulkan.FormatB8g8r8a8Unorm:
		return rhi.BGRA8Unorm
	case vulkan.FormatB8g8r8a8Srgb:
		return rhi.BGRA8sRGB
	case vulkan.FormatR8g8Unorm:
		return rhi.RG8Unorm
	case vulkan.FormatR8Unorm:
		return rhi.R8Unorm
	case vulkan.FormatR16g16b16a16Sfloat:
		return rhi.RGBA16Float
	case vulkan.FormatR16g16Sfloat:
		return rhi.RG16Float
	case vulkan.FormatR16Sfloat:
		return rhi.R16Float
	case vulkan.FormatR32g32b32a32Sfloat:
		return rhi.RGBA32Float
	case vulkan.FormatR32g32Sfloat:
		return rhi.RG32Float
	case vulkan.FormatR32Sfloat:
		return rhi.R32Float
	case vulkan.FormatD16Unorm:
		return rhi.D16Unorm
	case vulkan.FormatD32Sfloat:
		return rhi.D32Float
	case vulkan.FormatD24UnormS8Uint:
		return rhi.D24UnormS8
	case vulkan.FormatD32SfloatS8Uint:
		return rhi.D32FloatS8
	}
	return rhi.FormatInvalid
}

// aspectOf returns the full aspect mask of f.
func aspectOf(f rhi.Format) vulkan.ImageAspectFlags {
	if !f.IsDepth() {
		return vulkan.ImageAspectFlags(vulkan.ImageAspectColorBit)
	}
	a := vulkan.ImageAspectFlags(vulkan.ImageAspectDepthBit)
	if f.HasStencil() {
		a |= vulkan.ImageAspectFlags(vulkan.ImageAspectStencilBit)
	}
	return a
}

// convBufferUsage returns the native usage flags equivalent
// to u. Mappable-only buffers still get transfer usage so
// staging copies work.
func convBufferUsage(u rhi.BufferUsage) vulkan.BufferUsageFlags {
	var f vulkan.BufferUsageFlags
	if u&rhi.UsageCopySrc != 0 || u&rhi.UsageMapWrite != 0 {
		f |= vulkan.BufferUsageFlags(vulkan.BufferUsageTransferSrcBit)
	}
	if u&rhi.UsageCopyDst != 0 || u&rhi.UsageMapRead != 0 {
		f |= vulkan.BufferUsageFlags(vulkan.BufferUsageTransferDstBit)
	}
	if u&rhi.UsageVertex != 0 {
		f |= vulkan.BufferUsageFlags(vulkan.BufferUsageVertexBufferBit)
	}
	if u&rhi.UsageIndex != 0 {
		f |= vulkan.BufferUsageFlags(vulkan.BufferUsageIndexBufferBit)
	}
	if u&rhi.UsageUniform != 0 {
		f |= vulkan.BufferUsageFlags(vulkan.BufferUsageUniformBufferBit)
	}
	if u&rhi.UsageStorage != 0 {
		f |= vulkan.BufferUsageFlags(vulkan.BufferUsageStorageBufferBit)
	}
	if u&rhi.UsageIndirect != 0 {
		f |= vulkan.BufferUsageFlags(vulkan.BufferUsageIndirectBufferBit)
	}
	return f
}

// convTextureUsage returns the native usage flags equivalent
// to u, choosing the attachment bit by format aspect.
func convTextureUsage(u rhi.TextureUsage, f rhi.Format) vulkan.ImageUsageFlags {
	var fl vulkan.ImageUsageFlags
	if u&rhi.TexCopySrc != 0 {
		fl |= vulkan.ImageUsageFlags(vulkan.ImageUsageTransferSrcBit)
	}
	if u&rhi.TexCopyDst != 0 {
		fl |= vulkan.ImageUsageFlags(vulkan.ImageUsageTransferDstBit)
	}
	if u&rhi.TexSampled != 0 {
		fl |= vulkan.ImageUsageFlags(vulkan.ImageUsageSampledBit)
	}
	if u&rhi.TexStorage != 0 {
		fl |= vulkan.ImageUsageFlags(vulkan.ImageUsageStorageBit)
	}
	if u&rhi.TexRenderTarget != 0 {
		if f.IsDepth() {
			fl |= vulkan.ImageUsageFlags(vulkan.ImageUsageDepthStencilAttachmentBit)
		} else {
			fl |= vulkan.ImageUsageFlags(vulkan.ImageUsageColorAttachmentBit)
		}
	}
	return fl
}

// convTextureDim returns the native image type of d.
func convTextureDim(d rhi.TextureDim) vulkan.ImageType {
	switch d {
	case rhi.Tex1D:
		return vulkan.ImageType1d
	case rhi.Tex3D:
		return vulkan.ImageType3d
	}
	return vulkan.ImageType2d
}

// convViewDim returns the native view type of d.
func convViewDim(d rhi.ViewDim) vulkan.ImageViewType {
	switch d {
	case rhi.View1D:
		return vulkan.ImageViewType1d
	case rhi.View3D:
		return vulkan.ImageViewType3d
	case rhi.ViewCube:
		return vulkan.ImageViewTypeCube
	case rhi.View2DArray:
		return vulkan.ImageViewType2dArray
	case rhi.ViewCubeArray:
		return vulkan.ImageViewTypeCubeArray
	}
	return vulkan.ImageViewType2d
}

// convSamples returns the native sample count of s; zero
// means one.
func convSamples(s int) vulkan.SampleCountFlagBits {
	switch s {
	case 2:
		return vulkan.SampleCount2Bit
	case 4:
		return vulkan.SampleCount4Bit
	case 8:
		return vulkan.SampleCount8Bit
	}
	return vulkan.SampleCount1Bit
}

// convFilter returns the native filter of f.
func convFilter(f rhi.Filter) vulkan.Filter {
	if f == rhi.FilterLinear {
		return vulkan.FilterLinear
	}
	return vulkan.FilterNearest
}

// convMipmap returns the native mipmap mode of f.
func convMipmap(f rhi.Filter) vulkan.SamplerMipmapMode {
	if f == rhi.FilterLinear {
		return vulkan.SamplerMipmapModeLinear
	}
	return vulkan.SamplerMipmapModeNearest
}

// convAddrMode returns the native address mode of m.
func convAddrMode(m rhi.AddrMode) vulkan.SamplerAddressMode {
	switch m {
	case rhi.AddrMirror:
		return vulkan.SamplerAddressModeMirroredRepeat
	case rhi.AddrClamp:
		return vulkan.SamplerAddressModeClampToEdge
	}
	return vulkan.SamplerAddressModeRepeat
}

// convCmpFunc returns the native compare op of f.
func convCmpFunc(f rhi.CmpFunc) vulkan.CompareOp {
	switch f {
	case rhi.CmpLess:
		return vulkan.CompareOpLess
	case rhi.CmpEqual:
		return vulkan.CompareOpEqual
	case rhi.CmpLessEqual:
		return vulkan.CompareOpLessOrEqual
	case rhi.CmpGreater:
		return vulkan.CompareOpGreater
	case rhi.CmpNotEqual:
		return vulkan.CompareOpNotEqual
	case rhi.CmpGreaterEqual:
		return vulkan.CompareOpGreaterOrEqual
	case rhi.CmpAlways:
		return vulkan.CompareOpAlways
	}
	return vulkan.CompareOpNever
}

// convStages returns the native stage flags of s.
func convStages(s rhi.ShaderStage) vulkan.ShaderStageFlags {
	var f vulkan.ShaderStageFlags
	if s&rhi.StageVertex != 0 {
		f |= vulkan.ShaderStageFlags(vulkan.ShaderStageVertexBit)
	}
	if s&rhi.StageFragment != 0 {
		f |= vulkan.ShaderStageFlags(vulkan.ShaderStageFragmentBit)
	}
	if s&rhi.StageCompute != 0 {
		f |= vulkan.ShaderStageFlags(vulkan.ShaderStageComputeBit)
	}
	return f
}

// convBindingType returns the native descriptor type of t.
func convBindingType(t rhi.BindingType) vulkan.DescriptorType {
	switch t {
	case rhi.BindStorageBuffer:
		return vulkan.DescriptorTypeStorageBuffer
	case rhi.BindSampledTexture:
		return vulkan.DescriptorTypeSampledImage
	case rhi.BindStorageTexture:
		return vulkan.DescriptorTypeStorageImage
	case rhi.BindSampler:
		return vulkan.DescriptorTypeSampler
	}
	return vulkan.DescriptorTypeUniformBuffer
}

// convVertexFormat returns the native format of f.
func convVertexFormat(f rhi.VertexFormat) vulkan.Format {
	switch f {
	case rhi.VFFloat32:
		return vulkan.FormatR32Sfloat
	case rhi.VFFloat32x2:
		return vulkan.FormatR32g32Sfloat
	case rhi.VFFloat32x3:
		return vulkan.FormatR32g32b32Sfloat
	case rhi.VFFloat32x4:
		return vulkan.FormatR32g32b32a32Sfloat
	case rhi.VFUint32:
		return vulkan.FormatR32Uint
	case rhi.VFUint32x2:
		return vulkan.FormatR32g32Uint
	case rhi.VFUint32x3:
		return vulkan.FormatR32g32b32Uint
	case rhi.VFUint32x4:
		return vulkan.FormatR32g32b32a32Uint
	case rhi.VFSint32:
		return vulkan.FormatR32Sint
	case rhi.VFSint32x2:
		return vulkan.FormatR32g32Sint
	case rhi.VFSint32x3:
		return vulkan.FormatR32g32b32Sint
	case rhi.VFSint32x4:
		return vulkan.FormatR32g32b32a32Sint
	case rhi.VFUint8x4:
		return vulkan.FormatR8g8b8a8Uint
	case rhi.VFUnorm8x4:
		return vulkan.FormatR8g8b8a8Unorm
	}
	return vulkan.FormatUndefined
}

// convTopology returns the native primitive topology of t.
func convTopology(t rhi.Topology) vulkan.PrimitiveTopology {
	switch t {
	case rhi.TopoTriangleStrip:
		return vulkan.PrimitiveTopologyTriangleStrip
	case rhi.TopoLines:
		return vulkan.PrimitiveTopologyLineList
	case rhi.TopoLineStrip:
		return vulkan.PrimitiveTopologyLineStrip
	case rhi.TopoPoints:
		return vulkan.PrimitiveTopologyPointList
	}
	return vulkan.PrimitiveTopologyTriangleList
}

// convCullMode returns the native cull mode of m.
func convCullMode(m rhi.CullMode) vulkan.CullModeFlags {
	switch m {
	case rhi.CullFront:
		return vulkan.CullModeFlags(vulkan.CullModeFrontBit)
	case rhi.CullBack:
		return vulkan.CullModeFlags(vulkan.CullModeBackBit)
	}
	return vulkan.CullModeFlags(vulkan.CullModeNone)
}

// convFrontFace returns the native winding order of f.
func convFrontFace(f rhi.FrontFace) vulkan.FrontFace {
	if f == rhi.FrontCW {
		return vulkan.FrontFaceClockwise
	}
	return vulkan.FrontFaceCounterClockwise
}

// convBlendOp returns the native blend op of o.
func convBlendOp(o rhi.BlendOp) vulkan.BlendOp {
	switch o {
	case rhi.BlendSubtract:
		return vulkan.BlendOpSubtract
	case rhi.BlendRevSubtract:
		return vulkan.BlendOpReverseSubtract
	case rhi.BlendMin:
		return vulkan.BlendOpMin
	case rhi.BlendMax:
		return vulkan.BlendOpMax
	}
	return vulkan.BlendOpAdd
}

// convBlendFactor returns the native blend factor of f.
func convBlendFactor(f rhi.BlendFactor) vulkan.BlendFactor {
	switch f {
	case rhi.FacOne:
		return vulkan.BlendFactorOne
	case rhi.FacSrcColor:
		return vulkan.BlendFactorSrcColor
	case rhi.FacInvSrcColor:
		return vulkan.BlendFactorOneMinusSrcColor
	case rhi.FacSrcAlpha:
		return vulkan.BlendFactorSrcAlpha
	case rhi.FacInvSrcAlpha:
		return vulkan.BlendFactorOneMinusSrcAlpha
	case rhi.FacDstColor:
		return vulkan.BlendFactorDstColor
	case rhi.FacInvDstColor:
		return vulkan.BlendFactorOneMinusDstColor
	case rhi.FacDstAlpha:
		return vulkan.BlendFactorDstAlpha
	case rhi.FacInvDstAlpha:
		return vulkan.BlendFactorOneMinusDstAlpha
	}
	return vulkan.BlendFactorZero
}

// convIndexFormat returns the native index type of f.
func convIndexFormat(f rhi.IndexFormat) vulkan.IndexType {
	if f == rhi.Index32 {
		return vulkan.IndexTypeUint32
	}
	return vulkan.IndexTypeUint16
}

// convLoadOp returns the native load op of o.
func convLoadOp(o rhi.LoadOp) vulkan.AttachmentLoadOp {
	switch o {
	case rhi.LoadClear:
		return vulkan.AttachmentLoadOpClear
	case rhi.LoadKeep:
		return vulkan.AttachmentLoadOpLoad
	}
	return vulkan.AttachmentLoadOpDontCare
}

// convStoreOp returns the native store op of o.
func convStoreOp(o rhi.StoreOp) vulkan.AttachmentStoreOp {
	if o == rhi.Store {
		return vulkan.AttachmentStoreOpStore
	}
	return vulkan.AttachmentStoreOpDontCare
}

// convLayout returns the native layout of l for a texture of
// format f.
func convLayout(l rhi.Layout, f rhi.Format) vulkan.ImageLayout {
	switch l {
	case rhi.LayoutGeneral:
		return vulkan.ImageLayoutGeneral
	case rhi.LayoutCopySrc:
		return vulkan.ImageLayoutTransferSrcOptimal
	case rhi.LayoutCopyDst:
		return vulkan.ImageLayoutTransferDstOptimal
	case rhi.LayoutShaderRead:
		return vulkan.ImageLayoutShaderReadOnlyOptimal
	case rhi.LayoutRenderTarget:
		if f.IsDepth() {
			return vulkan.ImageLayoutDepthStencilAttachmentOptimal
		}
		return vulkan.ImageLayoutColorAttachmentOptimal
	case rhi.LayoutDepthTarget:
		return vulkan.ImageLayoutDepthStencilAttachmentOptimal
	case rhi.LayoutPresent:
		return vulkan.ImageLayoutPresentSrc
	}
	return vulkan.ImageLayoutUndefined
}

// accessFor returns a conservative access mask and stage mask
// for a layout used in barriers.
func accessFor(l rhi.Layout, f rhi.Format) (vulkan.AccessFlags, vulkan.PipelineStageFlags) {
	switch l {
	case rhi.LayoutCopySrc:
		return vulkan.AccessFlags(vulkan.AccessTransferReadBit),
			vulkan.PipelineStageFlags(vulkan.PipelineStageTransferBit)
	case rhi.LayoutCopyDst:
		return vulkan.AccessFlags(vulkan.AccessTransferWriteBit),
			vulkan.PipelineStageFlags(vulkan.PipelineStageTransferBit)
	case rhi.LayoutShaderRead:
		return vulkan.AccessFlags(vulkan.AccessShaderReadBit),
			vulkan.PipelineStageFlags(vulkan.PipelineStageFragmentShaderBit | vulkan.PipelineStageComputeShaderBit)
	case rhi.LayoutRenderTarget, rhi.LayoutDepthTarget:
		if f.IsDepth() || l == rhi.LayoutDepthTarget {
			return vulkan.AccessFlags(vulkan.AccessDepthStencilAttachmentReadBit | vulkan.AccessDepthStencilAttachmentWriteBit),
				vulkan.PipelineStageFlags(vulkan.PipelineStageEarlyFragmentTestsBit | vulkan.PipelineStageLateFragmentTestsBit)
		}
		return vulkan.AccessFlags(vulkan.AccessColorAttachmentReadBit | vulkan.AccessColorAttachmentWriteBit),
			vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit)
	case rhi.LayoutGeneral:
		return vulkan.AccessFlags(vulkan.AccessShaderReadBit | vulkan.AccessShaderWriteBit),
			vulkan.PipelineStageFlags(vulkan.PipelineStageAllCommandsBit)
	case rhi.LayoutPresent:
		return 0, vulkan.PipelineStageFlags(vulkan.PipelineStageBottomOfPipeBit)
	}
	return 0, vulkan.PipelineStageFlags(vulkan.PipelineStageTopOfPipeBit)
}

// convPresentMode returns the native present mode of m.
func convPresentMode(m rhi.PresentMode) vulkan.PresentMode {
	switch m {
	case rhi.PresentMailbox:
		return vulkan.PresentModeMailbox
	case rhi.PresentImmediate:
		return vulkan.PresentModeImmediate
	}
	return vulkan.PresentModeFifo
}
