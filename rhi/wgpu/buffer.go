// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

// NewBuffer creates a new buffer.
func (d *Driver) NewBuffer(desc *rhi.BufferDesc) (rhi.Buffer, error) {
	if err := rhi.ValidateBufferDesc(desc); err != nil {
		return nil, err
	}
	buf, err := d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             uint64(desc.Size),
		Usage:            convBufferUsage(desc.Usage),
		MappedAtCreation: desc.MappedAtCreation,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrNoDeviceMemory, err)
	}
	return &buffer{
		d:       d,
		buf:     buf,
		size:    desc.Size,
		usage:   desc.Usage,
		initMap: desc.MappedAtCreation,
	}, nil
}

type buffer struct {
	d     *Driver
	buf   *wgpu.Buffer
	size  int64
	usage rhi.BufferUsage

	mu     sync.Mutex
	mapped bool
	// initMap grants a one-time mapping to buffers created
	// MappedAtCreation without a mappable usage. It is
	// cleared on the first Unmap.
	initMap bool
}

// Size returns the size of the buffer in bytes.
func (b *buffer) Size() int64 { return b.size }

// Usage returns the usage the buffer was created with.
func (b *buffer) Usage() rhi.BufferUsage { return b.usage }

// Map maps the whole buffer.
func (b *buffer) Map() ([]byte, error) { return b.MapRange(0, b.size) }

// MapRange maps the given byte range.
// Mapping is asynchronous natively; the request is driven to
// completion by polling the device, so MapRange blocks until
// the range is host-accessible.
func (b *buffer) MapRange(off, size int64) ([]byte, error) {
	if off < 0 || size <= 0 || off+size > b.size {
		return nil, fmt.Errorf("%w: map range [%d, %d) out of buffer", rhi.ErrUsage, off, off+size)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.usage.Mappable() && !b.initMap {
		return nil, fmt.Errorf("%w: buffer not mappable", rhi.ErrUsage)
	}
	if b.mapped {
		return nil, fmt.Errorf("%w: buffer already mapped", rhi.ErrUsage)
	}
	if !b.initMap {
		mode := wgpu.MapModeWrite
		if b.usage&rhi.UsageMapRead != 0 {
			mode = wgpu.MapModeRead
		}
		var status wgpu.BufferMapAsyncStatus
		done := false
		err := b.buf.MapAsync(mode, uint64(off), uint64(size), func(s wgpu.BufferMapAsyncStatus) {
			status = s
			done = true
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rhi.ErrUsage, err)
		}
		for !done {
			b.d.dev.Poll(true, nil)
		}
		if status != wgpu.BufferMapAsyncStatusSuccess {
			return nil, fmt.Errorf("rhi/wgpu: buffer map failed: %v", status)
		}
	}
	b.mapped = true
	return b.buf.GetMappedRange(uint(off), uint(size)), nil
}

// Unmap releases the current mapping.
func (b *buffer) Unmap() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mapped && !b.initMap {
		return
	}
	b.buf.Unmap()
	b.mapped = false
	b.initMap = false
}

// Write copies len(data) bytes into the buffer at off.
// The copy is staged through the queue and is asynchronous
// relative to GPU work unless the caller awaits a fence.
func (b *buffer) Write(data []byte, off int64) error {
	if off < 0 || off+int64(len(data)) > b.size {
		return fmt.Errorf("%w: write range [%d, %d) out of buffer", rhi.ErrUsage, off, off+int64(len(data)))
	}
	if len(data) == 0 {
		return nil
	}
	if b.usage&rhi.UsageMapWrite != 0 {
		// Native mappings need an 8-byte aligned offset and a
		// size multiple of 4; map an aligned range around the
		// write.
		aoff := off &^ 7
		aend := (off + int64(len(data)) + 3) &^ 3
		if aend > b.size {
			aend = b.size
		}
		if aend < off+int64(len(data)) || (aend-aoff)%4 != 0 {
			return fmt.Errorf("%w: unaligned write at end of buffer", rhi.ErrUsage)
		}
		p, err := b.MapRange(aoff, aend-aoff)
		if err != nil {
			return err
		}
		copy(p[off-aoff:], data)
		b.Unmap()
		return nil
	}
	// Queue-side upload. The native copy requires copy-dst
	// usage, which convBufferUsage implies for map-read.
	if b.usage&(rhi.UsageCopyDst|rhi.UsageMapRead) == 0 {
		return fmt.Errorf("%w: buffer not writable", rhi.ErrUsage)
	}
	q := b.d.ques[rhi.QueueTransfer]
	q.mu.Lock()
	defer q.mu.Unlock()
	q.q.WriteBuffer(b.buf, uint64(off), data)
	return nil
}

// Destroy invalidates and deallocates the buffer.
func (b *buffer) Destroy() {
	if b.buf != nil {
		b.buf.Destroy()
		b.buf.Release()
	}
	*b = buffer{}
}
