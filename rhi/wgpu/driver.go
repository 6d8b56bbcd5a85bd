// Copyright 2026 The mini-engine authors. All rights reserved.

// Package wgpu implements rhi interfaces on top of the WebGPU
// API. It is a queue-based backend: resource state is tracked
// automatically, layout transitions are elided and all work
// runs on a single native queue.
package wgpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

const driverName = "webgpu"

// Driver implements rhi.Driver and rhi.Device.
type Driver struct {
	inst    *wgpu.Instance
	adapter *wgpu.Adapter
	dev     *wgpu.Device

	// The single native queue, wrapped once per role.
	ques [3]*queue

	lim   rhi.Limits
	feat  rhi.Features
	dname string
}

func init() {
	rhi.Register(&Driver{})
}

// Name returns the driver name. It does not open the driver.
func (d *Driver) Name() string { return driverName }

// Open initializes the driver and returns its Device.
// Calling Open on an open driver returns the same Device.
func (d *Driver) Open() (rhi.Device, error) {
	if d.dev != nil {
		return d, nil
	}
	d.inst = wgpu.CreateInstance(nil)
	if d.inst == nil {
		return nil, rhi.ErrNotInstalled
	}
	adapter, err := d.inst.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("%w: %v", rhi.ErrNoDevice, err)
	}
	d.adapter = adapter
	info := adapter.GetInfo()
	d.dname = info.AdapterType.String() + "/" + info.BackendType.String()

	limits := wgpu.DefaultLimits()
	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "mini-engine",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("%w: %v", rhi.ErrNoDevice, err)
	}
	d.dev = dev
	d.lim = convLimits(&limits)

	// Compute, indirect params and anisotropic filtering are
	// all part of the core feature set. There is only one
	// queue, so the dedicated-queue features stay unset.
	d.feat = rhi.FeatureCompute | rhi.FeatureIndirectDraw | rhi.FeatureAnisotropy

	nq := dev.GetQueue()
	for role := range d.ques {
		d.ques[role] = &queue{d: d, q: nq, role: rhi.QueueRole(role)}
	}
	return d, nil
}

// convLimits fills an rhi.Limits from native limits.
func convLimits(l *wgpu.Limits) rhi.Limits {
	return rhi.Limits{
		MaxTexture1D:     int(l.MaxTextureDimension1D),
		MaxTexture2D:     int(l.MaxTextureDimension2D),
		MaxTexture3D:     int(l.MaxTextureDimension3D),
		MaxLayers:        int(l.MaxTextureArrayLayers),
		MaxBindGroups:    int(l.MaxBindGroups),
		MaxBindings:      int(l.MaxBindingsPerBindGroup),
		MaxUniformSize:   int64(l.MaxUniformBufferBindingSize),
		MaxStorageSize:   int64(l.MaxStorageBufferBindingSize),
		UniformAlign:     int64(l.MinUniformBufferOffsetAlignment),
		MaxColorTargets:  int(l.MaxColorAttachments),
		MaxVertexBuffers: int(l.MaxVertexBuffers),
		MaxVertexAttrs:   int(l.MaxVertexAttributes),
		MaxDispatch: [3]int{
			int(l.MaxComputeWorkgroupsPerDimension),
			int(l.MaxComputeWorkgroupsPerDimension),
			int(l.MaxComputeWorkgroupsPerDimension),
		},
	}
}

// Close deinitializes the driver.
func (d *Driver) Close() {
	if d.dev != nil {
		for !d.dev.Poll(true, nil) {
		}
		d.dev.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.inst != nil {
		d.inst.Release()
	}
	*d = Driver{}
}

// Driver returns d itself.
func (d *Driver) Driver() rhi.Driver { return d }

// Queue returns the queue serving the given role.
// Every role is served by the same native queue.
func (d *Driver) Queue(role rhi.QueueRole) rhi.Queue {
	if role < 0 || int(role) >= len(d.ques) {
		role = rhi.QueueGraphics
	}
	return d.ques[role]
}

// Limits returns the implementation limits.
func (d *Driver) Limits() rhi.Limits { return d.lim }

// Features returns the supported optional features.
func (d *Driver) Features() rhi.Features { return d.feat }

// WaitIdle blocks until all submitted work has finished.
func (d *Driver) WaitIdle() error {
	for !d.dev.Poll(true, nil) {
	}
	return nil
}

// queue implements rhi.Queue.
type queue struct {
	d    *Driver
	q    *wgpu.Queue
	role rhi.QueueRole
	mu   sync.Mutex
}

// Role returns the role the queue was obtained for.
func (q *queue) Role() rhi.QueueRole { return q.role }

// Submit enqueues a batch for execution.
// Binary semaphores carry no meaning on a single queue with
// automatic tracking; they are validated and elided. Timeline
// waits are serviced on the host before submission, timeline
// signals and the fence by a waiter goroutine observing
// completion of all work submitted so far.
func (q *queue) Submit(sub *rhi.Submission) error {
	if sub == nil {
		return fmt.Errorf("%w: nil submission", rhi.ErrUsage)
	}
	for _, tp := range sub.WaitTimeline {
		if _, err := tp.Semaphore.Wait(tp.Value, -1); err != nil {
			return err
		}
	}
	for _, s := range sub.Wait {
		if _, ok := s.(*semaphore); !ok {
			return fmt.Errorf("%w: foreign semaphore", rhi.ErrUsage)
		}
	}
	for _, s := range sub.Signal {
		if _, ok := s.(*semaphore); !ok {
			return fmt.Errorf("%w: foreign semaphore", rhi.ErrUsage)
		}
	}
	cbs := make([]*wgpu.CommandBuffer, len(sub.CommandBuffers))
	for i, cb := range sub.CommandBuffers {
		c, ok := cb.(*cmdBuffer)
		if !ok {
			return fmt.Errorf("%w: foreign command buffer", rhi.ErrUsage)
		}
		cbs[i] = c.cb
	}
	var nfence *fence
	if sub.Fence != nil {
		f, ok := sub.Fence.(*fence)
		if !ok {
			return fmt.Errorf("%w: foreign fence", rhi.ErrUsage)
		}
		nfence = f
	}

	q.mu.Lock()
	q.q.Submit(cbs...)
	q.mu.Unlock()

	if nfence != nil || len(sub.SignalTimeline) > 0 {
		points := make([]rhi.TimelinePoint, len(sub.SignalTimeline))
		copy(points, sub.SignalTimeline)
		dev := q.d.dev
		go func() {
			for !dev.Poll(true, nil) {
			}
			for _, tp := range points {
				if t, ok := tp.Semaphore.(*timeline); ok {
					t.advance(tp.Value)
				} else {
					tp.Semaphore.Signal(tp.Value)
				}
			}
			if nfence != nil {
				nfence.signal()
			}
		}()
	}
	return nil
}

// WaitIdle blocks until the queue is idle.
func (q *queue) WaitIdle() error {
	return q.d.WaitIdle()
}
