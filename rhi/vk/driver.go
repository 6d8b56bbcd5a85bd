// Copyright 2026 The mini-engine authors. All rights reserved.

// Package vk implements rhi interfaces on top of the Vulkan
// API. It is an explicit backend: callers are responsible for
// layout transitions and for synchronizing queue work with
// fences and semaphores.
package vk

import (
	"fmt"
	"sync"

	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

const driverName = "vulkan"

// Driver implements rhi.Driver and rhi.Device.
type Driver struct {
	inst vulkan.Instance
	pdev vulkan.PhysicalDevice
	dev  vulkan.Device

	// Queues indexed by rhi.QueueRole. Roles without a
	// dedicated family alias the graphics queue.
	ques [3]*queue

	mprop vulkan.PhysicalDeviceMemoryProperties
	lim   rhi.Limits
	feat  rhi.Features
	dname string

	// Compatible render passes, keyed by attachment formats.
	// See pipeline.go.
	rmu    sync.Mutex
	rpassc map[passKey]vulkan.RenderPass

	// Descriptor set allocator. See desc.go.
	dmu    sync.Mutex
	dpools []*descPool
}

func init() {
	rhi.Register(&Driver{})
}

// Name returns the driver name. It does not open the driver.
func (d *Driver) Name() string { return driverName }

// checkResult converts a native result code into one of the
// rhi error values. vulkan.Success converts to nil.
func checkResult(res vulkan.Result) error {
	switch res {
	case vulkan.Success:
		return nil
	case vulkan.ErrorOutOfHostMemory:
		return rhi.ErrNoHostMemory
	case vulkan.ErrorOutOfDeviceMemory:
		return rhi.ErrNoDeviceMemory
	case vulkan.ErrorDeviceLost:
		return rhi.ErrDeviceLost
	case vulkan.ErrorInitializationFailed, vulkan.ErrorIncompatibleDriver:
		return rhi.ErrNoDevice
	case vulkan.ErrorFormatNotSupported:
		return rhi.ErrUnsupportedFormat
	case vulkan.ErrorSurfaceLost, vulkan.ErrorOutOfDate:
		return rhi.ErrSwapchain
	case vulkan.ErrorExtensionNotPresent, vulkan.ErrorFeatureNotPresent, vulkan.ErrorLayerNotPresent:
		return rhi.ErrNotInstalled
	}
	return fmt.Errorf("rhi/vk: result %d", res)
}

// Open initializes the driver and returns its Device.
// Calling Open on an open driver returns the same Device.
func (d *Driver) Open() (rhi.Device, error) {
	if d.dev != nil {
		return d, nil
	}
	if err := vulkan.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrNotInstalled, err)
	}
	if err := vulkan.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrNotInstalled, err)
	}
	if err := d.createInstance(); err != nil {
		return nil, err
	}
	if err := d.selectDevice(); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.createDevice(); err != nil {
		d.Close()
		return nil, err
	}
	d.rpassc = make(map[passKey]vulkan.RenderPass)
	return d, nil
}

// instanceExts returns the surface extensions to enable,
// restricted to what the implementation advertises.
func instanceExts() []string {
	want := []string{
		"VK_KHR_surface\x00",
		"VK_KHR_xcb_surface\x00",
		"VK_KHR_xlib_surface\x00",
		"VK_KHR_wayland_surface\x00",
		"VK_KHR_win32_surface\x00",
		"VK_EXT_metal_surface\x00",
	}
	var n uint32
	vulkan.EnumerateInstanceExtensionProperties("", &n, nil)
	props := make([]vulkan.ExtensionProperties, n)
	vulkan.EnumerateInstanceExtensionProperties("", &n, props)
	have := make(map[string]bool, n)
	for i := range props {
		props[i].Deref()
		have[vulkan.ToString(props[i].ExtensionName[:])] = true
	}
	var exts []string
	for _, w := range want {
		if have[w[:len(w)-1]] {
			exts = append(exts, w)
		}
	}
	return exts
}

func (d *Driver) createInstance() error {
	exts := instanceExts()
	var inst vulkan.Instance
	res := vulkan.CreateInstance(&vulkan.InstanceCreateInfo{
		SType: vulkan.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vulkan.ApplicationInfo{
			SType:            vulkan.StructureTypeApplicationInfo,
			PApplicationName: "mini-engine\x00",
			ApiVersion:       vulkan.MakeVersion(1, 1, 0),
		},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
	}, nil, &inst)
	if err := checkResult(res); err != nil {
		return err
	}
	if err := vulkan.InitInstance(inst); err != nil {
		vulkan.DestroyInstance(inst, nil)
		return fmt.Errorf("%w: %v", rhi.ErrNotInstalled, err)
	}
	d.inst = inst
	return nil
}

// selectDevice picks a physical device, preferring discrete
// GPUs over everything else.
func (d *Driver) selectDevice() error {
	var n uint32
	res := vulkan.EnumeratePhysicalDevices(d.inst, &n, nil)
	if err := checkResult(res); err != nil {
		return err
	}
	if n == 0 {
		return rhi.ErrNoDevice
	}
	pdevs := make([]vulkan.PhysicalDevice, n)
	vulkan.EnumeratePhysicalDevices(d.inst, &n, pdevs)
	best := -1
	bestScore := -1
	for i, p := range pdevs {
		var props vulkan.PhysicalDeviceProperties
		vulkan.GetPhysicalDeviceProperties(p, &props)
		props.Deref()
		score := 0
		switch props.DeviceType {
		case vulkan.PhysicalDeviceTypeDiscreteGpu:
			score = 3
		case vulkan.PhysicalDeviceTypeIntegratedGpu:
			score = 2
		case vulkan.PhysicalDeviceTypeVirtualGpu, vulkan.PhysicalDeviceTypeCpu:
			score = 1
		}
		if graphicsFamily(p) < 0 {
			continue
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return rhi.ErrNoDevice
	}
	d.pdev = pdevs[best]
	var props vulkan.PhysicalDeviceProperties
	vulkan.GetPhysicalDeviceProperties(d.pdev, &props)
	props.Deref()
	d.dname = vulkan.ToString(props.DeviceName[:])
	props.Limits.Deref()
	d.lim = convLimits(&props.Limits)
	vulkan.GetPhysicalDeviceMemoryProperties(d.pdev, &d.mprop)
	d.mprop.Deref()
	return nil
}

// graphicsFamily returns the index of a family with graphics
// and compute support, or -1.
func graphicsFamily(p vulkan.PhysicalDevice) int {
	var n uint32
	vulkan.GetPhysicalDeviceQueueFamilyProperties(p, &n, nil)
	fams := make([]vulkan.QueueFamilyProperties, n)
	vulkan.GetPhysicalDeviceQueueFamilyProperties(p, &n, fams)
	want := vulkan.QueueFlags(vulkan.QueueGraphicsBit | vulkan.QueueComputeBit)
	for i := range fams {
		fams[i].Deref()
		if fams[i].QueueFlags&want == want {
			return i
		}
	}
	return -1
}

// dedicatedFamily returns a family with the given capability
// but without graphics support, or -1.
func dedicatedFamily(p vulkan.PhysicalDevice, cap vulkan.QueueFlagBits) int {
	var n uint32
	vulkan.GetPhysicalDeviceQueueFamilyProperties(p, &n, nil)
	fams := make([]vulkan.QueueFamilyProperties, n)
	vulkan.GetPhysicalDeviceQueueFamilyProperties(p, &n, fams)
	best := -1
	for i := range fams {
		fams[i].Deref()
		f := fams[i].QueueFlags
		if f&vulkan.QueueFlags(cap) == 0 || f&vulkan.QueueFlags(vulkan.QueueGraphicsBit) != 0 {
			continue
		}
		// Prefer the leanest family that still qualifies.
		if cap == vulkan.QueueTransferBit && f&vulkan.QueueFlags(vulkan.QueueComputeBit) != 0 && best >= 0 {
			continue
		}
		best = i
	}
	return best
}

func (d *Driver) createDevice() error {
	gfam := graphicsFamily(d.pdev)
	cfam := dedicatedFamily(d.pdev, vulkan.QueueComputeBit)
	tfam := dedicatedFamily(d.pdev, vulkan.QueueTransferBit)

	fams := []int{gfam}
	if cfam >= 0 {
		fams = append(fams, cfam)
	}
	if tfam >= 0 && tfam != cfam {
		fams = append(fams, tfam)
	}
	qinfos := make([]vulkan.DeviceQueueCreateInfo, len(fams))
	for i, f := range fams {
		qinfos[i] = vulkan.DeviceQueueCreateInfo{
			SType:            vulkan.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(f),
			QueueCount:       1,
			PQueuePriorities: []float32{1},
		}
	}

	var feats vulkan.PhysicalDeviceFeatures
	vulkan.GetPhysicalDeviceFeatures(d.pdev, &feats)
	feats.Deref()
	var enabled vulkan.PhysicalDeviceFeatures
	d.feat = rhi.FeatureCompute | rhi.FeatureIndirectDraw
	if feats.SamplerAnisotropy == vulkan.True {
		enabled.SamplerAnisotropy = vulkan.True
		d.feat |= rhi.FeatureAnisotropy
	}
	if feats.MultiDrawIndirect == vulkan.True {
		enabled.MultiDrawIndirect = vulkan.True
	}
	if cfam >= 0 {
		d.feat |= rhi.FeatureDedicatedCompute
	}
	if tfam >= 0 {
		d.feat |= rhi.FeatureDedicatedTransfer
	}

	var dev vulkan.Device
	res := vulkan.CreateDevice(d.pdev, &vulkan.DeviceCreateInfo{
		SType:                   vulkan.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(qinfos)),
		PQueueCreateInfos:       qinfos,
		EnabledExtensionCount:   1,
		PpEnabledExtensionNames: []string{"VK_KHR_swapchain\x00"},
		PEnabledFeatures:        []vulkan.PhysicalDeviceFeatures{enabled},
	}, nil, &dev)
	if err := checkResult(res); err != nil {
		return err
	}
	d.dev = dev

	getQueue := func(fam int, role rhi.QueueRole) *queue {
		var q vulkan.Queue
		vulkan.GetDeviceQueue(dev, uint32(fam), 0, &q)
		return &queue{d: d, q: q, fam: uint32(fam), role: role}
	}
	d.ques[rhi.QueueGraphics] = getQueue(gfam, rhi.QueueGraphics)
	if cfam >= 0 {
		d.ques[rhi.QueueCompute] = getQueue(cfam, rhi.QueueCompute)
	} else {
		d.ques[rhi.QueueCompute] = d.ques[rhi.QueueGraphics]
	}
	switch {
	case tfam >= 0 && tfam == cfam:
		// One queue exists in that family; a second wrapper
		// would submit to it without the shared mutex.
		d.ques[rhi.QueueTransfer] = d.ques[rhi.QueueCompute]
	case tfam >= 0:
		d.ques[rhi.QueueTransfer] = getQueue(tfam, rhi.QueueTransfer)
	default:
		d.ques[rhi.QueueTransfer] = d.ques[rhi.QueueGraphics]
	}
	return nil
}

// convLimits fills an rhi.Limits from dereferenced native
// limits.
func convLimits(l *vulkan.PhysicalDeviceLimits) rhi.Limits {
	return rhi.Limits{
		MaxTexture1D:     int(l.MaxImageDimension1D),
		MaxTexture2D:     int(l.MaxImageDimension2D),
		MaxTexture3D:     int(l.MaxImageDimension3D),
		MaxLayers:        int(l.MaxImageArrayLayers),
		MaxBindGroups:    int(l.MaxBoundDescriptorSets),
		MaxBindings:      int(l.MaxPerStageResources),
		MaxUniformSize:   int64(l.MaxUniformBufferRange),
		MaxStorageSize:   int64(l.MaxStorageBufferRange),
		UniformAlign:     int64(l.MinUniformBufferOffsetAlignment),
		MaxColorTargets:  int(l.MaxColorAttachments),
		MaxVertexBuffers: int(l.MaxVertexInputBindings),
		MaxVertexAttrs:   int(l.MaxVertexInputAttributes),
		MaxDispatch: [3]int{
			int(l.MaxComputeWorkGroupCount[0]),
			int(l.MaxComputeWorkGroupCount[1]),
			int(l.MaxComputeWorkGroupCount[2]),
		},
	}
}

// Close deinitializes the driver.
func (d *Driver) Close() {
	if d.dev != nil {
		vulkan.DeviceWaitIdle(d.dev)
		for k, rp := range d.rpassc {
			vulkan.DestroyRenderPass(d.dev, rp, nil)
			delete(d.rpassc, k)
		}
		for _, p := range d.dpools {
			vulkan.DestroyDescriptorPool(d.dev, p.pool, nil)
		}
		d.dpools = nil
		vulkan.DestroyDevice(d.dev, nil)
	}
	if d.inst != nil {
		vulkan.DestroyInstance(d.inst, nil)
	}
	*d = Driver{}
}

// Driver returns d itself.
func (d *Driver) Driver() rhi.Driver { return d }

// Instance returns the Vulkan instance handle. Windowing
// layers need it to create the surface that goes into
// rhi.WindowHandle.VulkanSurface.
func (d *Driver) Instance() vulkan.Instance { return d.inst }

// Queue returns the queue serving the given role.
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

// WaitIdle blocks until the device is idle.
func (d *Driver) WaitIdle() error {
	return checkResult(vulkan.DeviceWaitIdle(d.dev))
}

// memoryType finds a memory type contained in typeBits whose
// properties include want. It returns false if none exists.
func (d *Driver) memoryType(typeBits uint32, want vulkan.MemoryPropertyFlags) (uint32, bool) {
	for i := uint32(0); i < d.mprop.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		d.mprop.MemoryTypes[i].Deref()
		if d.mprop.MemoryTypes[i].PropertyFlags&want == want {
			return i, true
		}
	}
	return 0, false
}

// queue implements rhi.Queue. Submission requires that the
// native queue handle be externally synchronized, hence the
// mutex.
type queue struct {
	d    *Driver
	q    vulkan.Queue
	fam  uint32
	role rhi.QueueRole
	mu   sync.Mutex
}

// Role returns the role the queue serves.
func (q *queue) Role() rhi.QueueRole { return q.role }

// Submit enqueues a batch for execution.
// Timeline waits are serviced on the host before the native
// submission; timeline signals are serviced by a waiter
// goroutine observing batch completion.
func (q *queue) Submit(sub *rhi.Submission) error {
	if sub == nil {
		return fmt.Errorf("%w: nil submission", rhi.ErrUsage)
	}
	// Host-side timeline waits come first so the native
	// submission never blocks the queue thread.
	for _, tp := range sub.WaitTimeline {
		if _, err := tp.Semaphore.Wait(tp.Value, -1); err != nil {
			return err
		}
	}

	cbs := make([]vulkan.CommandBuffer, len(sub.CommandBuffers))
	for i, cb := range sub.CommandBuffers {
		c, ok := cb.(*cmdBuffer)
		if !ok {
			return fmt.Errorf("%w: foreign command buffer", rhi.ErrUsage)
		}
		cbs[i] = c.cb
	}
	waits := make([]vulkan.Semaphore, len(sub.Wait))
	stages := make([]vulkan.PipelineStageFlags, len(sub.Wait))
	for i, s := range sub.Wait {
		sem, ok := s.(*semaphore)
		if !ok {
			return fmt.Errorf("%w: foreign semaphore", rhi.ErrUsage)
		}
		waits[i] = sem.sem
		stages[i] = vulkan.PipelineStageFlags(vulkan.PipelineStageAllCommandsBit)
	}
	signals := make([]vulkan.Semaphore, len(sub.Signal))
	for i, s := range sub.Signal {
		sem, ok := s.(*semaphore)
		if !ok {
			return fmt.Errorf("%w: foreign semaphore", rhi.ErrUsage)
		}
		signals[i] = sem.sem
	}

	var nfence vulkan.Fence
	if sub.Fence != nil {
		f, ok := sub.Fence.(*fence)
		if !ok {
			return fmt.Errorf("%w: foreign fence", rhi.ErrUsage)
		}
		nfence = f.f
	}

	// Timeline signals get their own watch fence, signaled
	// by an empty follow-up batch on the same queue. The
	// caller's fence is never reused: the caller may Reset
	// it the moment its own Wait returns.
	var watch vulkan.Fence
	if len(sub.SignalTimeline) > 0 {
		res := vulkan.CreateFence(q.d.dev, &vulkan.FenceCreateInfo{
			SType: vulkan.StructureTypeFenceCreateInfo,
		}, nil, &watch)
		if err := checkResult(res); err != nil {
			return err
		}
	}

	q.mu.Lock()
	res := vulkan.QueueSubmit(q.q, 1, []vulkan.SubmitInfo{{
		SType:                vulkan.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(waits)),
		PWaitSemaphores:      waits,
		PWaitDstStageMask:    stages,
		CommandBufferCount:   uint32(len(cbs)),
		PCommandBuffers:      cbs,
		SignalSemaphoreCount: uint32(len(signals)),
		PSignalSemaphores:    signals,
	}}, nfence)
	if res == vulkan.Success && watch != vulkan.NullFence {
		res = vulkan.QueueSubmit(q.q, 0, nil, watch)
	}
	q.mu.Unlock()
	if err := checkResult(res); err != nil {
		if watch != vulkan.NullFence {
			vulkan.DestroyFence(q.d.dev, watch, nil)
		}
		return err
	}

	if len(sub.SignalTimeline) > 0 {
		points := make([]rhi.TimelinePoint, len(sub.SignalTimeline))
		copy(points, sub.SignalTimeline)
		dev := q.d.dev
		go func() {
			vulkan.WaitForFences(dev, 1, []vulkan.Fence{watch}, vulkan.True, uint64(vulkan.MaxUint64))
			for _, tp := range points {
				if t, ok := tp.Semaphore.(*timeline); ok {
					t.advance(tp.Value)
				} else {
					tp.Semaphore.Signal(tp.Value)
				}
			}
			vulkan.DestroyFence(dev, watch, nil)
		}()
	}
	return nil
}

// WaitIdle blocks until the queue is idle.
func (q *queue) WaitIdle() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return checkResult(vulkan.QueueWaitIdle(q.q))
}
