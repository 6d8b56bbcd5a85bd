// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	"fmt"
	"sync"
	"unsafe"

	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

// NewBuffer creates a new buffer.
// Mappable buffers and buffers mapped at creation are placed
// in host-visible memory and mapped persistently; everything
// else prefers device-local memory.
func (d *Driver) NewBuffer(desc *rhi.BufferDesc) (rhi.Buffer, error) {
	if err := rhi.ValidateBufferDesc(desc); err != nil {
		return nil, err
	}
	var nbuf vulkan.Buffer
	res := vulkan.CreateBuffer(d.dev, &vulkan.BufferCreateInfo{
		SType:       vulkan.StructureTypeBufferCreateInfo,
		Size:        vulkan.DeviceSize(desc.Size),
		Usage:       convBufferUsage(desc.Usage),
		SharingMode: vulkan.SharingModeExclusive,
	}, nil, &nbuf)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	var req vulkan.MemoryRequirements
	vulkan.GetBufferMemoryRequirements(d.dev, nbuf, &req)
	req.Deref()

	host := desc.Usage.Mappable() || desc.MappedAtCreation
	var mtype uint32
	var coherent bool
	var ok bool
	if host {
		mtype, coherent, ok = d.hostMemoryType(req.MemoryTypeBits)
	} else {
		mtype, ok = d.memoryType(req.MemoryTypeBits,
			vulkan.MemoryPropertyFlags(vulkan.MemoryPropertyDeviceLocalBit))
		if !ok {
			mtype, coherent, ok = d.hostMemoryType(req.MemoryTypeBits)
			host = ok
		}
	}
	if !ok {
		vulkan.DestroyBuffer(d.dev, nbuf, nil)
		return nil, rhi.ErrNoDeviceMemory
	}
	var mem vulkan.DeviceMemory
	res = vulkan.AllocateMemory(d.dev, &vulkan.MemoryAllocateInfo{
		SType:           vulkan.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: mtype,
	}, nil, &mem)
	if err := checkResult(res); err != nil {
		vulkan.DestroyBuffer(d.dev, nbuf, nil)
		return nil, err
	}
	if err := checkResult(vulkan.BindBufferMemory(d.dev, nbuf, mem, 0)); err != nil {
		vulkan.FreeMemory(d.dev, mem, nil)
		vulkan.DestroyBuffer(d.dev, nbuf, nil)
		return nil, err
	}

	b := &buffer{
		d:        d,
		buf:      nbuf,
		mem:      mem,
		size:     desc.Size,
		usage:    desc.Usage,
		host:     host,
		coherent: coherent,
		initMap:  desc.MappedAtCreation,
	}
	if host {
		var p unsafe.Pointer
		res = vulkan.MapMemory(d.dev, mem, 0, vulkan.DeviceSize(desc.Size), 0, &p)
		if err := checkResult(res); err != nil {
			b.Destroy()
			return nil, err
		}
		b.p = p
	}
	return b, nil
}

// hostMemoryType finds a host-visible memory type, preferring
// coherent ones.
func (d *Driver) hostMemoryType(typeBits uint32) (mtype uint32, coherent, ok bool) {
	mtype, ok = d.memoryType(typeBits,
		vulkan.MemoryPropertyFlags(vulkan.MemoryPropertyHostVisibleBit|vulkan.MemoryPropertyHostCoherentBit))
	if ok {
		return mtype, true, true
	}
	mtype, ok = d.memoryType(typeBits,
		vulkan.MemoryPropertyFlags(vulkan.MemoryPropertyHostVisibleBit))
	return mtype, false, ok
}

// buffer implements rhi.Buffer.
type buffer struct {
	d        *Driver
	buf      vulkan.Buffer
	mem      vulkan.DeviceMemory
	size     int64
	usage    rhi.BufferUsage
	host     bool
	coherent bool
	// Persistent mapping of host-visible memory.
	p unsafe.Pointer

	mu sync.Mutex
	// An accessor currently holds a mapping.
	mapped bool
	// One-time mapping grant from MappedAtCreation.
	initMap bool
}

// Size returns the buffer size in bytes.
func (b *buffer) Size() int64 { return b.size }

// Usage returns the buffer usage.
func (b *buffer) Usage() rhi.BufferUsage { return b.usage }

// Map maps the whole buffer.
func (b *buffer) Map() ([]byte, error) { return b.MapRange(0, b.size) }

// MapRange maps the given byte range.
func (b *buffer) MapRange(off, size int64) ([]byte, error) {
	if off < 0 || size < 0 || off+size > b.size {
		return nil, fmt.Errorf("%w: map range [%d, %d) of %d", rhi.ErrUsage, off, off+size, b.size)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usage.Mappable() && !b.initMap {
		return nil, fmt.Errorf("%w: buffer not mappable", rhi.ErrUsage)
	}
	if b.mapped {
		return nil, fmt.Errorf("%w: buffer already mapped", rhi.ErrUsage)
	}
	if !b.coherent {
		b.invalidate()
	}
	b.mapped = true
	s := unsafe.Slice((*byte)(b.p), b.size)
	return s[off : off+size], nil
}

// Unmap releases the current mapping.
func (b *buffer) Unmap() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mapped {
		return
	}
	if !b.coherent {
		b.flush()
	}
	b.mapped = false
	b.initMap = false
}

func (b *buffer) flush() {
	vulkan.FlushMappedMemoryRanges(b.d.dev, 1, []vulkan.MappedMemoryRange{{
		SType:  vulkan.StructureTypeMappedMemoryRange,
		Memory: b.mem,
		Size:   vulkan.DeviceSize(vulkan.WholeSize),
	}})
}

func (b *buffer) invalidate() {
	vulkan.InvalidateMappedMemoryRanges(b.d.dev, 1, []vulkan.MappedMemoryRange{{
		SType:  vulkan.StructureTypeMappedMemoryRange,
		Memory: b.mem,
		Size:   vulkan.DeviceSize(vulkan.WholeSize),
	}})
}

// Write copies data into the buffer at off.
// Host-visible buffers are written through the persistent
// mapping; device-local ones go through a staging buffer and
// a transient transfer submission that Write awaits.
func (b *buffer) Write(data []byte, off int64) error {
	if off < 0 || off+int64(len(data)) > b.size {
		return fmt.Errorf("%w: write range [%d, %d) of %d", rhi.ErrUsage, off, off+int64(len(data)), b.size)
	}
	if len(data) == 0 {
		return nil
	}
	if b.host {
		b.mu.Lock()
		defer b.mu.Unlock()
		s := unsafe.Slice((*byte)(b.p), b.size)
		copy(s[off:], data)
		if !b.coherent {
			b.flush()
		}
		return nil
	}
	stg, err := b.d.NewBuffer(&rhi.BufferDesc{
		Size:             int64(len(data)),
		Usage:            rhi.UsageCopySrc,
		MappedAtCreation: true,
	})
	if err != nil {
		return err
	}
	defer stg.Destroy()
	p, err := stg.Map()
	if err != nil {
		return err
	}
	copy(p, data)
	stg.Unmap()
	src := stg.(*buffer)
	return b.d.oneShot(rhi.QueueTransfer, func(cb vulkan.CommandBuffer) {
		vulkan.CmdCopyBuffer(cb, src.buf, b.buf, 1, []vulkan.BufferCopy{{
			SrcOffset: 0,
			DstOffset: vulkan.DeviceSize(off),
			Size:      vulkan.DeviceSize(len(data)),
		}})
	})
}

// Destroy destroys the buffer and frees its memory.
func (b *buffer) Destroy() {
	if b.d != nil {
		if b.p != nil {
			vulkan.UnmapMemory(b.d.dev, b.mem)
		}
		vulkan.DestroyBuffer(b.d.dev, b.buf, nil)
		vulkan.FreeMemory(b.d.dev, b.mem, nil)
	}
	*b = buffer{}
}
