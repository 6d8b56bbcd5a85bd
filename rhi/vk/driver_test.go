// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	"errors"
	"testing"
	"time"

	"github.com/nowead/mini-engine/rhi"
)

// openT opens the driver, skipping the test when no usable
// device exists in the environment.
func openT(t *testing.T) rhi.Device {
	t.Helper()
	var drv Driver
	dev, err := drv.Open()
	if err != nil {
		t.Skipf("Driver.Open: %v", err)
	}
	t.Cleanup(drv.Close)
	return dev
}

func TestOpen(t *testing.T) {
	dev := openT(t)
	if dev.Driver().Name() != driverName {
		t.Fatalf("Device.Driver().Name:\nhave %q\nwant %q", dev.Driver().Name(), driverName)
	}
	lim := dev.Limits()
	if lim.MaxTexture2D < 4096 {
		t.Fatalf("Limits.MaxTexture2D:\nhave %v\nwant >= 4096", lim.MaxTexture2D)
	}
	if !dev.Features().Has(rhi.FeatureCompute) {
		t.Fatal("Features:\nhave no compute\nwant compute")
	}
	for _, role := range [...]rhi.QueueRole{rhi.QueueGraphics, rhi.QueueCompute, rhi.QueueTransfer} {
		if q := dev.Queue(role); q == nil {
			t.Fatalf("Device.Queue(%v):\nhave nil", role)
		}
	}
}

func TestBuffer(t *testing.T) {
	dev := openT(t)
	b, err := dev.NewBuffer(&rhi.BufferDesc{
		Size:  1024,
		Usage: rhi.UsageMapWrite | rhi.UsageCopySrc,
	})
	if err != nil {
		t.Fatalf("Device.NewBuffer: %v", err)
	}
	defer b.Destroy()
	if b.Size() != 1024 {
		t.Fatalf("Buffer.Size:\nhave %v\nwant 1024", b.Size())
	}
	p, err := b.Map()
	if err != nil {
		t.Fatalf("Buffer.Map: %v", err)
	}
	if len(p) != 1024 {
		t.Fatalf("Buffer.Map length:\nhave %v\nwant 1024", len(p))
	}
	copy(p, []byte("staging"))
	if _, err := b.Map(); !errors.Is(err, rhi.ErrUsage) {
		t.Fatalf("double Map:\nhave %v\nwant ErrUsage", err)
	}
	b.Unmap()
	if err := b.Write([]byte{1, 2, 3, 4}, 1020); err != nil {
		t.Fatalf("Buffer.Write: %v", err)
	}
	if err := b.Write([]byte{1}, 1024); !errors.Is(err, rhi.ErrUsage) {
		t.Fatalf("out of range Write:\nhave %v\nwant ErrUsage", err)
	}
}

func TestBufferDeviceLocal(t *testing.T) {
	dev := openT(t)
	b, err := dev.NewBuffer(&rhi.BufferDesc{
		Size:  256,
		Usage: rhi.UsageStorage | rhi.UsageCopyDst,
	})
	if err != nil {
		t.Fatalf("Device.NewBuffer: %v", err)
	}
	defer b.Destroy()
	if _, err := b.Map(); !errors.Is(err, rhi.ErrUsage) {
		t.Fatalf("Map of non-mappable buffer:\nhave %v\nwant ErrUsage", err)
	}
	// Write must work regardless of mappability.
	if err := b.Write(make([]byte, 256), 0); err != nil {
		t.Fatalf("Buffer.Write: %v", err)
	}
}

func TestTexture(t *testing.T) {
	dev := openT(t)
	tex, err := dev.NewTexture(&rhi.TextureDesc{
		Dim:    rhi.Tex2D,
		Size:   rhi.Dim3D{Width: 64, Height: 64},
		Levels: 7,
		Format: rhi.RGBA8Unorm,
		Usage:  rhi.TexSampled | rhi.TexCopyDst,
	})
	if err != nil {
		t.Fatalf("Device.NewTexture: %v", err)
	}
	defer tex.Destroy()
	v, err := tex.NewDefaultView()
	if err != nil {
		t.Fatalf("Texture.NewDefaultView: %v", err)
	}
	defer v.Destroy()
	if v.Texture() != tex {
		t.Fatal("TextureView.Texture:\nhave different texture\nwant parent")
	}
	if v.Format() != rhi.RGBA8Unorm {
		t.Fatalf("TextureView.Format:\nhave %v\nwant RGBA8Unorm", v.Format())
	}
	sub, err := tex.NewView(&rhi.TextureViewDesc{Dim: rhi.View2D, BaseLevel: 2, LevelCount: 1})
	if err != nil {
		t.Fatalf("Texture.NewView: %v", err)
	}
	sub.Destroy()
	if _, err := tex.NewView(&rhi.TextureViewDesc{Dim: rhi.View2D, BaseLevel: 7}); !errors.Is(err, rhi.ErrInvalidDesc) {
		t.Fatalf("out of range view:\nhave %v\nwant ErrInvalidDesc", err)
	}
}

func TestSampler(t *testing.T) {
	dev := openT(t)
	s, err := dev.NewSampler(&rhi.SamplerDesc{
		Min:    rhi.FilterLinear,
		Mag:    rhi.FilterLinear,
		Mipmap: rhi.FilterNearest,
		AddrU:  rhi.AddrClamp,
		AddrV:  rhi.AddrClamp,
	})
	if err != nil {
		t.Fatalf("Device.NewSampler: %v", err)
	}
	s.Destroy()
}

func TestBindGroup(t *testing.T) {
	dev := openT(t)
	layout, err := dev.NewBindGroupLayout(&rhi.BindGroupLayoutDesc{
		Bindings: []rhi.BindingLayout{
			{Binding: 0, Type: rhi.BindUniformBuffer, Stages: rhi.StageVertex | rhi.StageFragment},
			{Binding: 1, Type: rhi.BindStorageBuffer, Stages: rhi.StageCompute},
		},
	})
	if err != nil {
		t.Fatalf("Device.NewBindGroupLayout: %v", err)
	}
	defer layout.Destroy()
	ub, err := dev.NewBuffer(&rhi.BufferDesc{Size: 256, Usage: rhi.UsageUniform})
	if err != nil {
		t.Fatalf("Device.NewBuffer: %v", err)
	}
	defer ub.Destroy()
	sb, err := dev.NewBuffer(&rhi.BufferDesc{Size: 1024, Usage: rhi.UsageStorage})
	if err != nil {
		t.Fatalf("Device.NewBuffer: %v", err)
	}
	defer sb.Destroy()
	bg, err := dev.NewBindGroup(&rhi.BindGroupDesc{
		Layout: layout,
		Entries: []rhi.BindingEntry{
			{Binding: 0, Buffer: ub},
			{Binding: 1, Buffer: sb},
		},
	})
	if err != nil {
		t.Fatalf("Device.NewBindGroup: %v", err)
	}
	bg.Destroy()
	_, err = dev.NewBindGroup(&rhi.BindGroupDesc{
		Layout:  layout,
		Entries: []rhi.BindingEntry{{Binding: 0, Buffer: ub}},
	})
	if !errors.Is(err, rhi.ErrInvalidDesc) {
		t.Fatalf("incomplete bind group:\nhave %v\nwant ErrInvalidDesc", err)
	}
}

func TestFence(t *testing.T) {
	dev := openT(t)
	f, err := dev.NewFence(true)
	if err != nil {
		t.Fatalf("Device.NewFence: %v", err)
	}
	defer f.Destroy()
	if !f.Signaled() {
		t.Fatal("Fence.Signaled:\nhave false\nwant true")
	}
	ok, err := f.Wait(0)
	if err != nil || !ok {
		t.Fatalf("Fence.Wait:\nhave %v, %v\nwant true, nil", ok, err)
	}
	if err := f.Reset(); err != nil {
		t.Fatalf("Fence.Reset: %v", err)
	}
	if f.Signaled() {
		t.Fatal("Fence.Signaled after Reset:\nhave true\nwant false")
	}
	ok, err = f.Wait(time.Millisecond)
	if err != nil || ok {
		t.Fatalf("Fence.Wait on unsignaled:\nhave %v, %v\nwant false, nil", ok, err)
	}
}

func TestTimeline(t *testing.T) {
	dev := openT(t)
	tl, err := dev.NewTimelineSemaphore(1)
	if err != nil {
		t.Fatalf("Device.NewTimelineSemaphore: %v", err)
	}
	defer tl.Destroy()
	if v, _ := tl.Value(); v != 1 {
		t.Fatalf("TimelineSemaphore.Value:\nhave %v\nwant 1", v)
	}
	if err := tl.Signal(1); !errors.Is(err, rhi.ErrUsage) {
		t.Fatalf("non-increasing Signal:\nhave %v\nwant ErrUsage", err)
	}
	done := make(chan struct{})
	go func() {
		tl.Wait(3, -1)
		close(done)
	}()
	if err := tl.Signal(3); err != nil {
		t.Fatalf("TimelineSemaphore.Signal: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("TimelineSemaphore.Wait did not observe signal")
	}
	ok, err := tl.Wait(10, 10*time.Millisecond)
	if err != nil || ok {
		t.Fatalf("TimelineSemaphore.Wait timeout:\nhave %v, %v\nwant false, nil", ok, err)
	}
}

func TestEncoderStates(t *testing.T) {
	dev := openT(t)
	enc, err := dev.NewCommandEncoder()
	if err != nil {
		t.Fatalf("Device.NewCommandEncoder: %v", err)
	}
	defer enc.Destroy()
	pass, err := enc.BeginComputePass()
	if err != nil {
		t.Fatalf("CommandEncoder.BeginComputePass: %v", err)
	}
	if _, err := enc.BeginComputePass(); !errors.Is(err, rhi.ErrUsage) {
		t.Fatalf("nested pass:\nhave %v\nwant ErrUsage", err)
	}
	if _, err := enc.Finish(); !errors.Is(err, rhi.ErrUsage) {
		t.Fatalf("Finish with open pass:\nhave %v\nwant ErrUsage", err)
	}
	if err := pass.End(); err != nil {
		t.Fatalf("ComputePassEncoder.End: %v", err)
	}
	if err := pass.End(); !errors.Is(err, rhi.ErrUsage) {
		t.Fatalf("double End:\nhave %v\nwant ErrUsage", err)
	}
	cb, err := enc.Finish()
	if err != nil {
		t.Fatalf("CommandEncoder.Finish: %v", err)
	}
	if cb == nil {
		t.Fatal("CommandEncoder.Finish:\nhave nil command buffer")
	}
	if _, err := enc.Finish(); !errors.Is(err, rhi.ErrUsage) {
		t.Fatalf("double Finish:\nhave %v\nwant ErrUsage", err)
	}
}

func TestSubmit(t *testing.T) {
	dev := openT(t)
	src, err := dev.NewBuffer(&rhi.BufferDesc{Size: 64, Usage: rhi.UsageMapWrite | rhi.UsageCopySrc})
	if err != nil {
		t.Fatalf("Device.NewBuffer: %v", err)
	}
	defer src.Destroy()
	dst, err := dev.NewBuffer(&rhi.BufferDesc{Size: 64, Usage: rhi.UsageMapRead | rhi.UsageCopyDst})
	if err != nil {
		t.Fatalf("Device.NewBuffer: %v", err)
	}
	defer dst.Destroy()
	p, err := src.Map()
	if err != nil {
		t.Fatalf("Buffer.Map: %v", err)
	}
	for i := range p {
		p[i] = byte(i)
	}
	src.Unmap()

	enc, err := dev.NewCommandEncoder()
	if err != nil {
		t.Fatalf("Device.NewCommandEncoder: %v", err)
	}
	defer enc.Destroy()
	if err := enc.CopyBufferToBuffer(src, 0, dst, 0, 64); err != nil {
		t.Fatalf("CommandEncoder.CopyBufferToBuffer: %v", err)
	}
	cb, err := enc.Finish()
	if err != nil {
		t.Fatalf("CommandEncoder.Finish: %v", err)
	}
	f, err := dev.NewFence(false)
	if err != nil {
		t.Fatalf("Device.NewFence: %v", err)
	}
	defer f.Destroy()
	tl, err := dev.NewTimelineSemaphore(0)
	if err != nil {
		t.Fatalf("Device.NewTimelineSemaphore: %v", err)
	}
	defer tl.Destroy()
	err = dev.Queue(rhi.QueueGraphics).Submit(&rhi.Submission{
		CommandBuffers: []rhi.CommandBuffer{cb},
		SignalTimeline: []rhi.TimelinePoint{{Semaphore: tl, Value: 1}},
		Fence:          f,
	})
	if err != nil {
		t.Fatalf("Queue.Submit: %v", err)
	}
	if ok, err := f.Wait(10 * time.Second); !ok || err != nil {
		t.Fatalf("Fence.Wait:\nhave %v, %v\nwant true, nil", ok, err)
	}
	if ok, _ := tl.Wait(1, 10*time.Second); !ok {
		t.Fatal("TimelineSemaphore.Wait:\nhave false\nwant true")
	}
	q, err := dst.Map()
	if err != nil {
		t.Fatalf("Buffer.Map: %v", err)
	}
	for i := range q {
		if q[i] != byte(i) {
			t.Fatalf("copied data at %d:\nhave %v\nwant %v", i, q[i], byte(i))
		}
	}
	dst.Unmap()
}

func TestQueueSharing(t *testing.T) {
	var drv Driver
	if _, err := drv.Open(); err != nil {
		t.Skipf("Driver.Open: %v", err)
	}
	defer drv.Close()
	// Roles that resolve to the same family must share the
	// wrapper, and with it the submission mutex; one native
	// queue behind two mutexes would allow unsynchronized
	// submits.
	for i := range drv.ques {
		for j := range drv.ques {
			if drv.ques[i].fam == drv.ques[j].fam && drv.ques[i] != drv.ques[j] {
				t.Fatalf("Queue(%v) and Queue(%v):\nhave distinct queues in family %d\nwant shared",
					rhi.QueueRole(i), rhi.QueueRole(j), drv.ques[i].fam)
			}
		}
	}
}

func TestCopyMappableUsage(t *testing.T) {
	dev := openT(t)
	src, err := dev.NewBuffer(&rhi.BufferDesc{Size: 64, Usage: rhi.UsageMapWrite})
	if err != nil {
		t.Fatalf("Device.NewBuffer: %v", err)
	}
	defer src.Destroy()
	dst, err := dev.NewBuffer(&rhi.BufferDesc{Size: 64, Usage: rhi.UsageMapRead})
	if err != nil {
		t.Fatalf("Device.NewBuffer: %v", err)
	}
	defer dst.Destroy()
	enc, err := dev.NewCommandEncoder()
	if err != nil {
		t.Fatalf("Device.NewCommandEncoder: %v", err)
	}
	defer enc.Destroy()
	// Mappable usages imply transfer usage in the allocation,
	// so copies and clears between them must record.
	if err := enc.CopyBufferToBuffer(src, 0, dst, 0, 64); err != nil {
		t.Fatalf("CommandEncoder.CopyBufferToBuffer: %v", err)
	}
	if err := enc.ClearBuffer(dst, 0, 64); err != nil {
		t.Fatalf("CommandEncoder.ClearBuffer: %v", err)
	}
	if _, err := enc.Finish(); err != nil {
		t.Fatalf("CommandEncoder.Finish: %v", err)
	}
}

func TestTimelineAfterFenceReset(t *testing.T) {
	dev := openT(t)
	f, err := dev.NewFence(false)
	if err != nil {
		t.Fatalf("Device.NewFence: %v", err)
	}
	defer f.Destroy()
	tl, err := dev.NewTimelineSemaphore(0)
	if err != nil {
		t.Fatalf("Device.NewTimelineSemaphore: %v", err)
	}
	defer tl.Destroy()
	err = dev.Queue(rhi.QueueGraphics).Submit(&rhi.Submission{
		SignalTimeline: []rhi.TimelinePoint{{Semaphore: tl, Value: 1}},
		Fence:          f,
	})
	if err != nil {
		t.Fatalf("Queue.Submit: %v", err)
	}
	if ok, err := f.Wait(10 * time.Second); !ok || err != nil {
		t.Fatalf("Fence.Wait:\nhave %v, %v\nwant true, nil", ok, err)
	}
	// Resetting the fence right after its own wait must not
	// stall the timeline advance.
	if err := f.Reset(); err != nil {
		t.Fatalf("Fence.Reset: %v", err)
	}
	if ok, _ := tl.Wait(1, 10*time.Second); !ok {
		t.Fatal("TimelineSemaphore.Wait after fence reset:\nhave false\nwant true")
	}
}

func TestSamplerAniso(t *testing.T) {
	dev := openT(t)
	s, err := dev.NewSampler(&rhi.SamplerDesc{
		Min:      rhi.FilterLinear,
		Mag:      rhi.FilterLinear,
		MaxAniso: 8,
	})
	if err != nil {
		if !errors.Is(err, rhi.ErrInvalidDesc) {
			t.Fatalf("anisotropic sampler without feature:\nhave %v\nwant ErrInvalidDesc", err)
		}
		if dev.Features().Has(rhi.FeatureAnisotropy) {
			t.Fatalf("Device.NewSampler: %v", err)
		}
		return
	}
	s.Destroy()
	if !dev.Features().Has(rhi.FeatureAnisotropy) {
		t.Fatal("anisotropic sampler created without the feature")
	}
}
