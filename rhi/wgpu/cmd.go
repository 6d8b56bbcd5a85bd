// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

// Encoder states.
const (
	stateRecording = iota
	statePass
	stateDone
)

// NewCommandEncoder creates a new command encoder in the
// recording state.
func (d *Driver) NewCommandEncoder() (rhi.CommandEncoder, error) {
	enc, err := d.dev.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrNoHostMemory, err)
	}
	return &cmdEncoder{d: d, enc: enc}, nil
}

// cmdEncoder implements rhi.CommandEncoder.
type cmdEncoder struct {
	d     *Driver
	enc   *wgpu.CommandEncoder
	cb    *wgpu.CommandBuffer
	state int
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
	if len(desc.Colors) > e.d.lim.MaxColorTargets {
		return nil, fmt.Errorf("%w: %d color attachments", rhi.ErrUnsupportedFormat, len(desc.Colors))
	}

	nd := wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: make([]wgpu.RenderPassColorAttachment, len(desc.Colors)),
	}
	for i := range desc.Colors {
		c := &desc.Colors[i]
		v, ok := c.View.(*textureView)
		if !ok {
			return nil, fmt.Errorf("%w: foreign texture view", rhi.ErrUsage)
		}
		a := wgpu.RenderPassColorAttachment{
			View:    v.view,
			LoadOp:  convLoadOp(c.Load),
			StoreOp: convStoreOp(c.Store),
			ClearValue: wgpu.Color{
				R: float64(c.Clear[0]),
				G: float64(c.Clear[1]),
				B: float64(c.Clear[2]),
				A: float64(c.Clear[3]),
			},
		}
		if c.Resolve != nil {
			rv, ok := c.Resolve.(*textureView)
			if !ok {
				return nil, fmt.Errorf("%w: foreign texture view", rhi.ErrUsage)
			}
			a.ResolveTarget = rv.view
		}
		nd.ColorAttachments[i] = a
	}
	if desc.DS != nil {
		v, ok := desc.DS.View.(*textureView)
		if !ok {
			return nil, fmt.Errorf("%w: foreign texture view", rhi.ErrUsage)
		}
		if !v.format.IsDepth() {
			return nil, fmt.Errorf("%w: depth/stencil attachment format %v", rhi.ErrInvalidDesc, v.format)
		}
		a := &wgpu.RenderPassDepthStencilAttachment{
			View:            v.view,
			DepthLoadOp:     convLoadOp(desc.DS.DepthLoad),
			DepthStoreOp:    convStoreOp(desc.DS.DepthStore),
			DepthClearValue: desc.DS.ClearDepth,
		}
		if v.format.HasStencil() {
			a.StencilLoadOp = convLoadOp(desc.DS.StencilLoad)
			a.StencilStoreOp = convStoreOp(desc.DS.StencilStore)
			a.StencilClearValue = desc.DS.ClearStencil
		}
		nd.DepthStencilAttachment = a
	}

	pass := e.enc.BeginRenderPass(&nd)
	e.state = statePass
	return &renderPass{e: e, pass: pass}, nil
}

// BeginComputePass opens a compute pass sub-encoder.
func (e *cmdEncoder) BeginComputePass() (rhi.ComputePassEncoder, error) {
	if err := e.recording(); err != nil {
		return nil, err
	}
	pass := e.enc.BeginComputePass(nil)
	e.state = statePass
	return &computePass{e: e, pass: pass}, nil
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
	e.enc.CopyBufferToBuffer(src.buf, uint64(fromOff), dst.buf, uint64(toOff), uint64(size))
	return nil
}

// bufImageCopy converts cpy into the native source/target
// pair. Buffer addressing is in pixels on the rhi side and in
// bytes natively.
func bufImageCopy(cpy *rhi.BufferTextureCopy, b *buffer, t *texture) (wgpu.ImageCopyBuffer, wgpu.ImageCopyTexture, wgpu.Extent3D) {
	rowPixels := cpy.RowLength
	if rowPixels == 0 {
		rowPixels = cpy.Size.Width
	}
	rows := cpy.ImageHeight
	if rows == 0 {
		rows = max(cpy.Size.Height, 1)
	}
	depthOrLayers := max(cpy.Layers, 1)
	z := cpy.Layer
	if t.dim == rhi.Tex3D {
		depthOrLayers = max(cpy.Size.Depth, 1)
		z = cpy.TexOff.Z
	}
	return wgpu.ImageCopyBuffer{
			Buffer: b.buf,
			Layout: wgpu.TextureDataLayout{
				Offset:       uint64(cpy.BufOff),
				BytesPerRow:  uint32(rowPixels * t.format.Size()),
				RowsPerImage: uint32(rows),
			},
		}, wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: uint32(cpy.Level),
			Origin: wgpu.Origin3D{
				X: uint32(cpy.TexOff.X),
				Y: uint32(cpy.TexOff.Y),
				Z: uint32(z),
			},
			Aspect: wgpu.TextureAspectAll,
		}, wgpu.Extent3D{
			Width:              uint32(cpy.Size.Width),
			Height:             uint32(max(cpy.Size.Height, 1)),
			DepthOrArrayLayers: uint32(depthOrLayers),
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
	if src.usage&(rhi.UsageCopySrc|rhi.UsageMapWrite) == 0 || dst.usage&rhi.TexCopyDst == 0 {
		return fmt.Errorf("%w: resource lacks copy usage", rhi.ErrUsage)
	}
	nsrc, ndst, sz := bufImageCopy(cpy, src, dst)
	e.enc.CopyBufferToTexture(&nsrc, &ndst, &sz)
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
	ndst, nsrc, sz := bufImageCopy(cpy, dst, src)
	e.enc.CopyTextureToBuffer(&nsrc, &ndst, &sz)
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
	depthOrLayers := max(cpy.Layers, 1)
	fromZ, toZ := cpy.FromLayer, cpy.ToLayer
	if src.dim == rhi.Tex3D {
		depthOrLayers = max(cpy.Size.Depth, 1)
		fromZ, toZ = cpy.FromOff.Z, cpy.ToOff.Z
	}
	e.enc.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{
			Texture:  src.tex,
			MipLevel: uint32(cpy.FromLevel),
			Origin:   wgpu.Origin3D{X: uint32(cpy.FromOff.X), Y: uint32(cpy.FromOff.Y), Z: uint32(fromZ)},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyTexture{
			Texture:  dst.tex,
			MipLevel: uint32(cpy.ToLevel),
			Origin:   wgpu.Origin3D{X: uint32(cpy.ToOff.X), Y: uint32(cpy.ToOff.Y), Z: uint32(toZ)},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.Extent3D{
			Width:              uint32(cpy.Size.Width),
			Height:             uint32(max(cpy.Size.Height, 1)),
			DepthOrArrayLayers: uint32(depthOrLayers),
		})
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
	e.enc.ClearBuffer(b.buf, uint64(off), uint64(size))
	return nil
}

// Transition validates layout transitions and elides them;
// resource state is tracked natively.
func (e *cmdEncoder) Transition(ts []rhi.Transition) error {
	if err := e.recording(); err != nil {
		return err
	}
	for _, tr := range ts {
		if _, ok := tr.View.(*textureView); !ok {
			return fmt.Errorf("%w: foreign texture view", rhi.ErrUsage)
		}
	}
	return nil
}

// Finish ends recording and returns the executable command
// buffer.
func (e *cmdEncoder) Finish() (rhi.CommandBuffer, error) {
	if err := e.recording(); err != nil {
		return nil, err
	}
	cb, err := e.enc.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrInvalidDesc, err)
	}
	e.cb = cb
	e.state = stateDone
	return &cmdBuffer{e: e, cb: cb}, nil
}

// Destroy destroys the encoder and its command buffer. The
// caller must ensure no submission of the finished buffer is
// in flight.
func (e *cmdEncoder) Destroy() {
	if e.cb != nil {
		e.cb.Release()
	}
	if e.enc != nil {
		e.enc.Release()
	}
	*e = cmdEncoder{}
}

// cmdBuffer implements rhi.CommandBuffer.
type cmdBuffer struct {
	e  *cmdEncoder
	cb *wgpu.CommandBuffer
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
	e    *cmdEncoder
	pass *wgpu.RenderPassEncoder
	// Pipeline set by SetPipeline, needed for binding index
	// validation.
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
	p.pass.SetPipeline(np.pl)
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
	p.pass.SetBindGroup(uint32(index), g.bg, nil)
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
	p.pass.SetVertexBuffer(uint32(slot), b.buf, uint64(off), wgpu.WholeSize)
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
	p.pass.SetIndexBuffer(b.buf, convIndexFormat(format), uint64(off), wgpu.WholeSize)
	return nil
}

// SetViewport sets the viewport bounds.
func (p *renderPass) SetViewport(vp rhi.Viewport) error {
	if err := p.open(); err != nil {
		return err
	}
	p.pass.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, vp.Znear, vp.Zfar)
	return nil
}

// SetScissor sets the scissor rectangle.
func (p *renderPass) SetScissor(sc rhi.Scissor) error {
	if err := p.open(); err != nil {
		return err
	}
	p.pass.SetScissorRect(uint32(sc.X), uint32(sc.Y), uint32(sc.Width), uint32(sc.Height))
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
	p.pass.Draw(uint32(vertCount), uint32(instCount), uint32(baseVert), uint32(baseInst))
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
	p.pass.DrawIndexed(uint32(idxCount), uint32(instCount), uint32(baseIdx), int32(vertOff), uint32(baseInst))
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
	p.pass.DrawIndirect(b.buf, uint64(off))
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
	p.pass.DrawIndexedIndirect(b.buf, uint64(off))
	return nil
}

// End closes the pass.
func (p *renderPass) End() error {
	if err := p.open(); err != nil {
		return err
	}
	p.pass.End()
	p.pass.Release()
	p.pass = nil
	p.done = true
	p.e.state = stateRecording
	return nil
}

// computePass implements rhi.ComputePassEncoder.
type computePass struct {
	e    *cmdEncoder
	pass *wgpu.ComputePassEncoder
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
	p.pass.SetPipeline(np.pl)
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
	p.pass.SetBindGroup(uint32(index), g.bg, nil)
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
	p.pass.DispatchWorkgroups(uint32(x), uint32(y), uint32(z))
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
	p.pass.DispatchWorkgroupsIndirect(b.buf, uint64(off))
	return nil
}

// End closes the pass.
func (p *computePass) End() error {
	if err := p.open(); err != nil {
		return err
	}
	p.pass.End()
	p.pass.Release()
	p.pass = nil
	p.done = true
	p.e.state = stateRecording
	return nil
}
