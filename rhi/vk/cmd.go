// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	"fmt"

	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

// oneShot records a transient command buffer, submits it on
// the queue serving role and blocks until it retires.
func (d *Driver) oneShot(role rhi.QueueRole, record func(cb vulkan.CommandBuffer)) error {
	q := d.ques[role]
	var pool vulkan.CommandPool
	res := vulkan.CreateCommandPool(d.dev, &vulkan.CommandPoolCreateInfo{
		SType:            vulkan.StructureTypeCommandPoolCreateInfo,
		Flags:            vulkan.CommandPoolCreateFlags(vulkan.CommandPoolCreateTransientBit),
		QueueFamilyIndex: q.fam,
	}, nil, &pool)
	if err := checkResult(res); err != nil {
		return err
	}
	defer vulkan.DestroyCommandPool(d.dev, pool, nil)
	cbs := make([]vulkan.CommandBuffer, 1)
	res = vulkan.AllocateCommandBuffers(d.dev, &vulkan.CommandBufferAllocateInfo{
		SType:              vulkan.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vulkan.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cbs)
	if err := checkResult(res); err != nil {
		return err
	}
	vulkan.BeginCommandBuffer(cbs[0], &vulkan.CommandBufferBeginInfo{
		SType: vulkan.StructureTypeCommandBufferBeginInfo,
		Flags: vulkan.CommandBufferUsageFlags(vulkan.CommandBufferUsageOneTimeSubmitBit),
	})
	record(cbs[0])
	if err := checkResult(vulkan.EndCommandBuffer(cbs[0])); err != nil {
		return err
	}
	var f vulkan.Fence
	res = vulkan.CreateFence(d.dev, &vulkan.FenceCreateInfo{
		SType: vulkan.StructureTypeFenceCreateInfo,
	}, nil, &f)
	if err := checkResult(res); err != nil {
		return err
	}
	defer vulkan.DestroyFence(d.dev, f, nil)
	q.mu.Lock()
	res = vulkan.QueueSubmit(q.q, 1, []vulkan.SubmitInfo{{
		SType:              vulkan.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cbs,
	}}, f)
	q.mu.Unlock()
	if err := checkResult(res); err != nil {
		return err
	}
	return checkResult(vulkan.WaitForFences(d.dev, 1, []vulkan.Fence{f}, vulkan.True, uint64(vulkan.MaxUint64)))
}

// Encoder states.
const (
	stateRecording = iota
	statePass
	stateDone
)

// NewCommandEncoder creates a new command encoder in the
// recording state.
func (d *Driver) NewCommandEncoder() (rhi.CommandEncoder, error) {
	var pool vulkan.CommandPool
	res := vulkan.CreateCommandPool(d.dev, &vulkan.CommandPoolCreateInfo{
		SType:            vulkan.StructureTypeCommandPoolCreateInfo,
		Flags:            vulkan.CommandPoolCreateFlags(vulkan.CommandPoolCreateTransientBit),
		QueueFamilyIndex: d.ques[rhi.QueueGraphics].fam,
	}, nil, &pool)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	cbs := make([]vulkan.CommandBuffer, 1)
	res = vulkan.AllocateCommandBuffers(d.dev, &vulkan.CommandBufferAllocateInfo{
		SType:              vulkan.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vulkan.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cbs)
	if err := checkResult(res); err != nil {
		vulkan.DestroyCommandPool(d.dev, pool, nil)
		return nil, err
	}
	res = vulkan.BeginCommandBuffer(cbs[0], &vulkan.CommandBufferBeginInfo{
		SType: vulkan.StructureTypeCommandBufferBeginInfo,
		Flags: vulkan.CommandBufferUsageFlags(vulkan.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := checkResult(res); err != nil {
		vulkan.DestroyCommandPool(d.dev, pool, nil)
		return nil, err
	}
	return &cmdEncoder{d: d, pool: pool, cb: cbs[0]}, nil
}

// cmdEncoder implements rhi.CommandEncoder.
// The native pool, command buffer and transient framebuffers
// live until Destroy, which must only run after any
// submission of the finished buffer has retired.
type cmdEncoder struct {
	d     *Driver
	pool  vulkan.CommandPool
	cb    vulkan.CommandBuffer
	state int
	// Framebuffers created by render passes.
	fbs []vulkan.Framebuffer
}

func (e *cmdEncoder) recording() error {
	switch e.state {
	case stateRecording:
		return nil
	case statePass:
		return fmt.Errorf("%w: pass still open", rhi.ErrUsage)
	}
	return fmt.Errorf("%w: encoder already finished", rhi.ErrUsage)
}

// BeginRenderPass opens a render pass sub-encoder.
func (e *cmdEncoder) BeginRenderPass(desc *rhi.RenderPassDesc) (rhi.RenderPassEncoder, error) {
	if err := e.recording(); err != nil {
		return nil, err
	}
	if desc == nil || len(desc.Colors) == 0 && desc.DS == nil {
		return nil, fmt.Errorf("%w: render pass with no attachments", rhi.ErrInvalidDesc)
	}
	if len(desc.Colors) > maxPassColors {
		return nil, fmt.Errorf("%w: %d color attachments", rhi.ErrUnsupportedFormat, len(desc.Colors))
	}

	var key passKey
	var views []vulkan.ImageView
	var clears []vulkan.ClearValue
	width, height := 0, 0
	key.ncolor = len(desc.Colors)
	for i := range desc.Colors {
		c := &desc.Colors[i]
		v, ok := c.View.(*textureView)
		if !ok {
			return nil, fmt.Errorf("%w: foreign texture view", rhi.ErrUsage)
		}
		samples := 1
		if v.tex != nil {
			samples = v.tex.samples
		}
		key.color[i] = passAttach{
			format:  v.format,
			samples: samples,
			load:    c.Load,
			store:   c.Store,
		}
		views = append(views, v.view)
		clears = append(clears, vulkan.NewClearValue(c.Clear[:]))
		width, height = v.width, v.height
		if c.Resolve != nil {
			rv, ok := c.Resolve.(*textureView)
			if !ok {
				return nil, fmt.Errorf("%w: foreign texture view", rhi.ErrUsage)
			}
			key.resolve[i] = true
			views = append(views, rv.view)
			clears = append(clears, vulkan.ClearValue{})
		}
	}
	if desc.DS != nil {
		v, ok := desc.DS.View.(*textureView)
		if !ok {
			return nil, fmt.Errorf("%w: foreign texture view", rhi.ErrUsage)
		}
		if !v.format.IsDepth() {
			return nil, fmt.Errorf("%w: depth/stencil attachment format %v", rhi.ErrInvalidDesc, v.format)
		}
		samples := 1
		if v.tex != nil {
			samples = v.tex.samples
		}
		key.hasDS = true
		key.ds = passAttach{
			format:  v.format,
			samples: samples,
			load:    desc.DS.DepthLoad,
			store:   desc.DS.DepthStore,
			sload:   desc.DS.StencilLoad,
			sstore:  desc.DS.StencilStore,
		}
		views = append(views, v.view)
		clears = append(clears, vulkan.NewClearDepthStencil(desc.DS.ClearDepth, desc.DS.ClearStencil))
		if width == 0 {
			width, height = v.width, v.height
		}
	}

	rp, err := e.d.renderPassFor(key)
	if err != nil {
		return nil, err
	}
	var fb vulkan.Framebuffer
	res := vulkan.CreateFramebuffer(e.d.dev, &vulkan.FramebufferCreateInfo{
		SType:           vulkan.StructureTypeFramebufferCreateInfo,
		RenderPass:      rp,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           uint32(width),
		Height:          uint32(height),
		Layers:          1,
	}, nil, &fb)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	e.fbs = append(e.fbs, fb)

	vulkan.CmdBeginRenderPass(e.cb, &vulkan.RenderPassBeginInfo{
		SType:       vulkan.StructureTypeRenderPassBeginInfo,
		RenderPass:  rp,
		Framebuffer: fb,
		RenderArea: vulkan.Rect2D{
			Extent: vulkan.Extent2D{Width: uint32(width), Height: uint32(height)},
		},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vulkan.SubpassContentsInline)

	// Viewport and scissor are dynamic state; give them
	// full-target defaults so a pass can draw without setting
	// either.
	vulkan.CmdSetViewport(e.cb, 0, 1, []vulkan.Viewport{{
		Width:    float32(width),
		Height:   float32(height),
		MaxDepth: 1,
	}})
	vulkan.CmdSetScissor(e.cb, 0, 1, []vulkan.Rect2D{{
		Extent: vulkan.Extent2D{Width: uint32(width), Height: uint32(height)},
	}})

	e.state = statePass
	return &renderPass{e: e}, nil
}

// BeginComputePass opens a compute pass sub-encoder.
func (e *cmdEncoder) BeginComputePass() (rhi.ComputePassEncoder, error) {
	if err := e.recording(); err != nil {
		return nil, err
	}
	e.state = statePass
	return &computePass{e: e}, nil
}

// CopyBufferToBuffer copies size bytes between buffers.
func (e *cmdEncoder) CopyBufferToBuffer(from rhi.Buffer, fromOff int64, to rhi.Buffer, toOff, size int64) error {
	if err := e.recording(); err != nil {
		return err
	}
	src, ok := from.(*buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", rhi.ErrUsage)
	}
	dst, ok := to.(*buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", rhi.ErrUsage)
	}
	if size <= 0 || fromOff < 0 || toOff < 0 || fromOff+size > src.size || toOff+size > dst.size {
		return fmt.Errorf("%w: copy of %d bytes", rhi.ErrUsage, size)
	}
	if src.usage&(rhi.UsageCopySrc|rhi.UsageMapWrite) == 0 || dst.usage&(rhi.UsageCopyDst|rhi.UsageMapRead) == 0 {
		return fmt.Errorf("%w: buffer lacks copy usage", rhi.ErrUsage)
	}
	vulkan.CmdCopyBuffer(e.cb, src.buf, dst.buf, 1, []vulkan.BufferCopy{{
		SrcOffset: vulkan.DeviceSize(fromOff),
		DstOffset: vulkan.DeviceSize(toOff),
		Size:      vulkan.DeviceSize(size),
	}})
	return nil
}

// bufImageCopy converts cpy into the native region.
func bufImageCopy(cpy *rhi.BufferTextureCopy, t *texture) vulkan.BufferImageCopy {
	return vulkan.BufferImageCopy{
		BufferOffset:      vulkan.DeviceSize(cpy.BufOff),
		BufferRowLength:   uint32(cpy.RowLength),
		BufferImageHeight: uint32(cpy.ImageHeight),
		ImageSubresource: vulkan.ImageSubresourceLayers{
			AspectMask:     aspectOf(t.format),
			MipLevel:       uint32(cpy.Level),
			BaseArrayLayer: uint32(cpy.Layer),
			LayerCount:     uint32(max(cpy.Layers, 1)),
		},
		ImageOffset: vulkan.Offset3D{
			X: int32(cpy.TexOff.X),
			Y: int32(cpy.TexOff.Y),
			Z: int32(cpy.TexOff.Z),
		},
		ImageExtent: vulkan.Extent3D{
			Width:  uint32(cpy.Size.Width),
			Height: uint32(max(cpy.Size.Height, 1)),
			Depth:  uint32(max(cpy.Size.Depth, 1)),
		},
	}
}

// CopyBufferToTexture copies buffer data into a texture
// subresource.
func (e *cmdEncoder) CopyBufferToTexture(cpy *rhi.BufferTextureCopy) error {
	if err := e.recording(); err != nil {
		return err
	}
	src, ok := cpy.Buffer.(*buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", rhi.ErrUsage)
	}
	dst, ok := cpy.Texture.(*texture)
	if !ok {
		return fmt.Errorf("%w: foreign texture", rhi.ErrUsage)
	}
	// Mappable usages imply the matching transfer usage in
	// the native allocation.
	if src.usage&(rhi.UsageCopySrc|rhi.UsageMapWrite) == 0 || dst.usage&rhi.TexCopyDst == 0 {
		return fmt.Errorf("%w: resource lacks copy usage", rhi.ErrUsage)
	}
	vulkan.CmdCopyBufferToImage(e.cb, src.buf, dst.img,
		vulkan.ImageLayoutTransferDstOptimal, 1,
		[]vulkan.BufferImageCopy{bufImageCopy(cpy, dst)})
	return nil
}

// CopyTextureToBuffer copies a texture subresource into a
// buffer.
func (e *cmdEncoder) CopyTextureToBuffer(cpy *rhi.BufferTextureCopy) error {
	if err := e.recording(); err != nil {
		return err
	}
	dst, ok := cpy.Buffer.(*buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", rhi.ErrUsage)
	}
	src, ok := cpy.Texture.(*texture)
	if !ok {
		return fmt.Errorf("%w: foreign texture", rhi.ErrUsage)
	}
	if src.usage&rhi.TexCopySrc == 0 || dst.usage&(rhi.UsageCopyDst|rhi.UsageMapRead) == 0 {
		return fmt.Errorf("%w: resource lacks copy usage", rhi.ErrUsage)
	}
	vulkan.CmdCopyImageToBuffer(e.cb, src.img,
		vulkan.ImageLayoutTransferSrcOptimal, dst.buf, 1,
		[]vulkan.BufferImageCopy{bufImageCopy(cpy, src)})
	return nil
}

// CopyTextureToTexture copies between textures.
func (e *cmdEncoder) CopyTextureToTexture(cpy *rhi.TextureCopy) error {
	if err := e.recording(); err != nil {
		return err
	}
	src, ok := cpy.From.(*texture)
	if !ok {
		return fmt.Errorf("%w: foreign texture", rhi.ErrUsage)
	}
	dst, ok := cpy.To.(*texture)
	if !ok {
		return fmt.Errorf("%w: foreign texture", rhi.ErrUsage)
	}
	if src.usage&rhi.TexCopySrc == 0 || dst.usage&rhi.TexCopyDst == 0 {
		return fmt.Errorf("%w: texture lacks copy usage", rhi.ErrUsage)
	}
	layers := uint32(max(cpy.Layers, 1))
	vulkan.CmdCopyImage(e.cb,
		src.img, vulkan.ImageLayoutTransferSrcOptimal,
		dst.img, vulkan.ImageLayoutTransferDstOptimal, 1,
		[]vulkan.ImageCopy{{
			SrcSubresource: vulkan.ImageSubresourceLayers{
				AspectMask:     aspectOf(src.format),
				MipLevel:       uint32(cpy.FromLevel),
				BaseArrayLayer: uint32(cpy.FromLayer),
				LayerCount:     layers,
			},
			SrcOffset: vulkan.Offset3D{X: int32(cpy.FromOff.X), Y: int32(cpy.FromOff.Y), Z: int32(cpy.FromOff.Z)},
			DstSubresource: vulkan.ImageSubresourceLayers{
				AspectMask:     aspectOf(dst.format),
				MipLevel:       uint32(cpy.ToLevel),
				BaseArrayLayer: uint32(cpy.ToLayer),
				LayerCount:     layers,
			},
			DstOffset: vulkan.Offset3D{X: int32(cpy.ToOff.X), Y: int32(cpy.ToOff.Y), Z: int32(cpy.ToOff.Z)},
			Extent: vulkan.Extent3D{
				Width:  uint32(cpy.Size.Width),
				Height: uint32(max(cpy.Size.Height, 1)),
				Depth:  uint32(max(cpy.Size.Depth, 1)),
			},
		}})
	return nil
}

// ClearBuffer fills a buffer range with zeros.
func (e *cmdEncoder) ClearBuffer(buf rhi.Buffer, off, size int64) error {
	if err := e.recording(); err != nil {
		return err
	}
	b, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", rhi.ErrUsage)
	}
	if off < 0 || size <= 0 || off+size > b.size || off%4 != 0 || size%4 != 0 {
		return fmt.Errorf("%w: clear range [%d, %d) of %d", rhi.ErrUsage, off, off+size, b.size)
	}
	if b.usage&(rhi.UsageCopyDst|rhi.UsageMapRead) == 0 {
		return fmt.Errorf("%w: buffer lacks copy usage", rhi.ErrUsage)
	}
	vulkan.CmdFillBuffer(e.cb, b.buf, vulkan.DeviceSize(off), vulkan.DeviceSize(size), 0)
	return nil
}

// Transition records texture layout transitions.
func (e *cmdEncoder) Transition(ts []rhi.Transition) error {
	if err := e.recording(); err != nil {
		return err
	}
	if len(ts) == 0 {
		return nil
	}
	barriers := make([]vulkan.ImageMemoryBarrier, len(ts))
	var srcStages, dstStages vulkan.PipelineStageFlags
	for i, tr := range ts {
		v, ok := tr.View.(*textureView)
		if !ok {
			return fmt.Errorf("%w: foreign texture view", rhi.ErrUsage)
		}
		srcAccess, srcStage := accessFor(tr.Before, v.format)
		dstAccess, dstStage := accessFor(tr.After, v.format)
		srcStages |= srcStage
		dstStages |= dstStage
		barriers[i] = vulkan.ImageMemoryBarrier{
			SType:               vulkan.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			OldLayout:           convLayout(tr.Before, v.format),
			NewLayout:           convLayout(tr.After, v.format),
			SrcQueueFamilyIndex: vulkan.QueueFamilyIgnored,
			DstQueueFamilyIndex: vulkan.QueueFamilyIgnored,
			Image:               v.image(),
			SubresourceRange:    v.subresourceRange(),
		}
	}
	vulkan.CmdPipelineBarrier(e.cb, srcStages, dstStages, 0, 0, nil, 0, nil,
		uint32(len(barriers)), barriers)
	return nil
}

// Finish ends recording and returns the executable command
// buffer.
func (e *cmdEncoder) Finish() (rhi.CommandBuffer, error) {
	if err := e.recording(); err != nil {
		return nil, err
	}
	if err := checkResult(vulkan.EndCommandBuffer(e.cb)); err != nil {
		return nil, err
	}
	e.state = stateDone
	return &cmdBuffer{e: e, cb: e.cb}, nil
}

// Destroy destroys the encoder, its command buffer and any
// framebuffers its passes created. The caller must ensure no
// submission of the finished buffer is in flight.
func (e *cmdEncoder) Destroy() {
	if e.d != nil {
		for _, fb := range e.fbs {
			vulkan.DestroyFramebuffer(e.d.dev, fb, nil)
		}
		vulkan.DestroyCommandPool(e.d.dev, e.pool, nil)
	}
	*e = cmdEncoder{}
}

// cmdBuffer implements rhi.CommandBuffer.
type cmdBuffer struct {
	e  *cmdEncoder
	cb vulkan.CommandBuffer
}

// Destroy releases the command buffer by destroying its
// encoder.
func (c *cmdBuffer) Destroy() {
	if c.e != nil {
		c.e.Destroy()
	}
	*c = cmdBuffer{}
}

// renderPass implements rhi.RenderPassEncoder.
type renderPass struct {
	e *cmdEncoder
	// Pipeline set by SetPipeline, needed for descriptor
	// binding.
	pl   *renderPipeline
	done bool
}

func (p *renderPass) open() error {
	if p.done {
		return fmt.Errorf("%w: pass already ended", rhi.ErrUsage)
	}
	return nil
}

// SetPipeline sets the render pipeline.
func (p *renderPass) SetPipeline(pl rhi.RenderPipeline) error {
	if err := p.open(); err != nil {
		return err
	}
	np, ok := pl.(*renderPipeline)
	if !ok {
		return fmt.Errorf("%w: foreign pipeline", rhi.ErrUsage)
	}
	p.pl = np
	vulkan.CmdBindPipeline(p.e.cb, vulkan.PipelineBindPointGraphics, np.pl)
	return nil
}

// SetBindGroup binds a bind group.
func (p *renderPass) SetBindGroup(index int, bg rhi.BindGroup) error {
	if err := p.open(); err != nil {
		return err
	}
	if p.pl == nil {
		return fmt.Errorf("%w: no pipeline set", rhi.ErrUsage)
	}
	g, ok := bg.(*bindGroup)
	if !ok {
		return fmt.Errorf("%w: foreign bind group", rhi.ErrUsage)
	}
	if index < 0 || index >= p.pl.layout.groups {
		return fmt.Errorf("%w: bind group index %d", rhi.ErrUsage, index)
	}
	vulkan.CmdBindDescriptorSets(p.e.cb, vulkan.PipelineBindPointGraphics,
		p.pl.layout.pl, uint32(index), 1, []vulkan.DescriptorSet{g.set}, 0, nil)
	return nil
}

// SetVertexBuffer binds a vertex buffer to a slot.
func (p *renderPass) SetVertexBuffer(slot int, buf rhi.Buffer, off int64) error {
	if err := p.open(); err != nil {
		return err
	}
	b, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", rhi.ErrUsage)
	}
	if b.usage&rhi.UsageVertex == 0 {
		return fmt.Errorf("%w: buffer lacks vertex usage", rhi.ErrUsage)
	}
	vulkan.CmdBindVertexBuffers(p.e.cb, uint32(slot), 1,
		[]vulkan.Buffer{b.buf}, []vulkan.DeviceSize{vulkan.DeviceSize(off)})
	return nil
}

// SetIndexBuffer binds the index buffer.
func (p *renderPass) SetIndexBuffer(format rhi.IndexFormat, buf rhi.Buffer, off int64) error {
	if err := p.open(); err != nil {
		return err
	}
	b, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", rhi.ErrUsage)
	}
	if b.usage&rhi.UsageIndex == 0 {
		return fmt.Errorf("%w: buffer lacks index usage", rhi.ErrUsage)
	}
	vulkan.CmdBindIndexBuffer(p.e.cb, b.buf, vulkan.DeviceSize(off), convIndexFormat(format))
	return nil
}

// SetViewport sets the viewport bounds.
func (p *renderPass) SetViewport(vp rhi.Viewport) error {
	if err := p.open(); err != nil {
		return err
	}
	vulkan.CmdSetViewport(p.e.cb, 0, 1, []vulkan.Viewport{{
		X:        vp.X,
		Y:        vp.Y,
		Width:    vp.Width,
		Height:   vp.Height,
		MinDepth: vp.Znear,
		MaxDepth: vp.Zfar,
	}})
	return nil
}

// SetScissor sets the scissor rectangle.
func (p *renderPass) SetScissor(sc rhi.Scissor) error {
	if err := p.open(); err != nil {
		return err
	}
	vulkan.CmdSetScissor(p.e.cb, 0, 1, []vulkan.Rect2D{{
		Offset: vulkan.Offset2D{X: int32(sc.X), Y: int32(sc.Y)},
		Extent: vulkan.Extent2D{Width: uint32(sc.Width), Height: uint32(sc.Height)},
	}})
	return nil
}

// Draw draws primitives.
func (p *renderPass) Draw(vertCount, instCount, baseVert, baseInst int) error {
	if err := p.open(); err != nil {
		return err
	}
	if p.pl == nil {
		return fmt.Errorf("%w: no pipeline set", rhi.ErrUsage)
	}
	vulkan.CmdDraw(p.e.cb, uint32(vertCount), uint32(instCount), uint32(baseVert), uint32(baseInst))
	return nil
}

// DrawIndexed draws indexed primitives.
func (p *renderPass) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) error {
	if err := p.open(); err != nil {
		return err
	}
	if p.pl == nil {
		return fmt.Errorf("%w: no pipeline set", rhi.ErrUsage)
	}
	vulkan.CmdDrawIndexed(p.e.cb, uint32(idxCount), uint32(instCount), uint32(baseIdx), int32(vertOff), uint32(baseInst))
	return nil
}

// indirectBuf checks buf for indirect use.
func indirectBuf(buf rhi.Buffer, off int64) (*buffer, error) {
	b, ok := buf.(*buffer)
	if !ok {
		return nil, fmt.Errorf("%w: foreign buffer", rhi.ErrUsage)
	}
	if b.usage&rhi.UsageIndirect == 0 {
		return nil, fmt.Errorf("%w: buffer lacks indirect usage", rhi.ErrUsage)
	}
	if off < 0 || off%4 != 0 {
		return nil, fmt.Errorf("%w: indirect offset %d", rhi.ErrUsage, off)
	}
	return b, nil
}

// DrawIndirect draws primitives with parameters read from
// buf.
func (p *renderPass) DrawIndirect(buf rhi.Buffer, off int64) error {
	if err := p.open(); err != nil {
		return err
	}
	b, err := indirectBuf(buf, off)
	if err != nil {
		return err
	}
	vulkan.CmdDrawIndirect(p.e.cb, b.buf, vulkan.DeviceSize(off), 1, 0)
	return nil
}

// DrawIndexedIndirect draws indexed primitives with
// parameters read from buf.
func (p *renderPass) DrawIndexedIndirect(buf rhi.Buffer, off int64) error {
	if err := p.open(); err != nil {
		return err
	}
	b, err := indirectBuf(buf, off)
	if err != nil {
		return err
	}
	vulkan.CmdDrawIndexedIndirect(p.e.cb, b.buf, vulkan.DeviceSize(off), 1, 0)
	return nil
}

// End closes the pass.
func (p *renderPass) End() error {
	if err := p.open(); err != nil {
		return err
	}
	vulkan.CmdEndRenderPass(p.e.cb)
	p.done = true
	p.e.state = stateRecording
	return nil
}

// computePass implements rhi.ComputePassEncoder.
// Compute work needs no native pass object; the sub-encoder
// only scopes pipeline and binding state.
type computePass struct {
	e    *cmdEncoder
	pl   *computePipeline
	done bool
}

func (p *computePass) open() error {
	if p.done {
		return fmt.Errorf("%w: pass already ended", rhi.ErrUsage)
	}
	return nil
}

// SetPipeline sets the compute pipeline.
func (p *computePass) SetPipeline(pl rhi.ComputePipeline) error {
	if err := p.open(); err != nil {
		return err
	}
	np, ok := pl.(*computePipeline)
	if !ok {
		return fmt.Errorf("%w: foreign pipeline", rhi.ErrUsage)
	}
	p.pl = np
	vulkan.CmdBindPipeline(p.e.cb, vulkan.PipelineBindPointCompute, np.pl)
	return nil
}

// SetBindGroup binds a bind group.
func (p *computePass) SetBindGroup(index int, bg rhi.BindGroup) error {
	if err := p.open(); err != nil {
		return err
	}
	if p.pl == nil {
		return fmt.Errorf("%w: no pipeline set", rhi.ErrUsage)
	}
	g, ok := bg.(*bindGroup)
	if !ok {
		return fmt.Errorf("%w: foreign bind group", rhi.ErrUsage)
	}
	if index < 0 || index >= p.pl.layout.groups {
		return fmt.Errorf("%w: bind group index %d", rhi.ErrUsage, index)
	}
	vulkan.CmdBindDescriptorSets(p.e.cb, vulkan.PipelineBindPointCompute,
		p.pl.layout.pl, uint32(index), 1, []vulkan.DescriptorSet{g.set}, 0, nil)
	return nil
}

// Dispatch dispatches compute workgroups.
func (p *computePass) Dispatch(x, y, z int) error {
	if err := p.open(); err != nil {
		return err
	}
	if p.pl == nil {
		return fmt.Errorf("%w: no pipeline set", rhi.ErrUsage)
	}
	lim := p.e.d.lim.MaxDispatch
	if x < 1 || y < 1 || z < 1 || x > lim[0] || y > lim[1] || z > lim[2] {
		return fmt.Errorf("%w: dispatch %dx%dx%d", rhi.ErrUsage, x, y, z)
	}
	vulkan.CmdDispatch(p.e.cb, uint32(x), uint32(y), uint32(z))
	return nil
}

// DispatchIndirect dispatches workgroups with counts read
// from buf.
func (p *computePass) DispatchIndirect(buf rhi.Buffer, off int64) error {
	if err := p.open(); err != nil {
		return err
	}
	if p.pl == nil {
		return fmt.Errorf("%w: no pipeline set", rhi.ErrUsage)
	}
	b, err := indirectBuf(buf, off)
	if err != nil {
		return err
	}
	vulkan.CmdDispatchIndirect(p.e.cb, b.buf, vulkan.DeviceSize(off))
	return nil
}

// End closes the pass.
func (p *computePass) End() error {
	if err := p.open(); err != nil {
		return err
	}
	p.done = true
	p.e.state = stateRecording
	return nil
}
