// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	"fmt"

	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

// NewSwapchain creates a new swapchain bound to the
// pre-created surface in desc.Window. The surface itself
// remains owned by the windowing layer.
func (d *Driver) NewSwapchain(desc *rhi.SwapchainDesc) (rhi.Swapchain, error) {
	if err := rhi.ValidateSwapchainDesc(desc); err != nil {
		return nil, err
	}
	if desc.Window.VulkanSurface == 0 {
		return nil, fmt.Errorf("%w: no surface handle", rhi.ErrInvalidDesc)
	}
	surf := vulkan.SurfaceFromPointer(desc.Window.VulkanSurface)
	var supported vulkan.Bool32
	vulkan.GetPhysicalDeviceSurfaceSupport(d.pdev, d.ques[rhi.QueueGraphics].fam, surf, &supported)
	if supported != vulkan.True {
		return nil, rhi.ErrCannotPresent
	}
	s := &swapchain{
		d:    d,
		surf: surf,
		mode: desc.PresentMode,
		reqN: desc.BufferCount,
	}
	if err := s.recreate(desc.Width, desc.Height, desc.Format); err != nil {
		return nil, err
	}
	return s, nil
}

// swapchain implements rhi.Swapchain.
type swapchain struct {
	d      *Driver
	surf   vulkan.Surface
	sc     vulkan.Swapchain
	views  []*textureView
	format rhi.Format
	width  int
	height int
	mode   rhi.PresentMode
	reqN   int
	// Index acquired and not yet presented.
	next     uint32
	acquired bool
}

// surfaceFormat picks the native surface format closest to
// want, falling back to the first advertised one.
func (s *swapchain) surfaceFormat(want rhi.Format) (vulkan.SurfaceFormat, error) {
	var n uint32
	vulkan.GetPhysicalDeviceSurfaceFormats(s.d.pdev, s.surf, &n, nil)
	if n == 0 {
		return vulkan.SurfaceFormat{}, rhi.ErrCannotPresent
	}
	formats := make([]vulkan.SurfaceFormat, n)
	vulkan.GetPhysicalDeviceSurfaceFormats(s.d.pdev, s.surf, &n, formats)
	for i := range formats {
		formats[i].Deref()
	}
	if want != rhi.FormatInvalid {
		nwant := convFormat(want)
		for _, f := range formats {
			if f.Format == nwant {
				return f, nil
			}
		}
		return vulkan.SurfaceFormat{}, rhi.ErrUnsupportedFormat
	}
	for _, f := range formats {
		if unconvFormat(f.Format) != rhi.FormatInvalid {
			return f, nil
		}
	}
	return formats[0], nil
}

// presentMode returns the requested present mode when the
// surface supports it, native FIFO otherwise.
func (s *swapchain) presentMode() vulkan.PresentMode {
	want := convPresentMode(s.mode)
	if want == vulkan.PresentModeFifo {
		return want
	}
	var n uint32
	vulkan.GetPhysicalDeviceSurfacePresentModes(s.d.pdev, s.surf, &n, nil)
	modes := make([]vulkan.PresentMode, n)
	vulkan.GetPhysicalDeviceSurfacePresentModes(s.d.pdev, s.surf, &n, modes)
	for _, m := range modes {
		if m == want {
			return want
		}
	}
	return vulkan.PresentModeFifo
}

// recreate builds the image ring, replacing a previous one.
func (s *swapchain) recreate(width, height int, want rhi.Format) error {
	var caps vulkan.SurfaceCapabilities
	res := vulkan.GetPhysicalDeviceSurfaceCapabilities(s.d.pdev, s.surf, &caps)
	if err := checkResult(res); err != nil {
		return err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	sf, err := s.surfaceFormat(want)
	if err != nil {
		return err
	}
	format := unconvFormat(sf.Format)

	extent := caps.CurrentExtent
	if extent.Width == vulkan.MaxUint32 {
		extent = vulkan.Extent2D{
			Width:  min(max(uint32(width), caps.MinImageExtent.Width), caps.MaxImageExtent.Width),
			Height: min(max(uint32(height), caps.MinImageExtent.Height), caps.MaxImageExtent.Height),
		}
	}

	count := uint32(s.reqN)
	if count < caps.MinImageCount {
		count = caps.MinImageCount
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}

	old := s.sc
	var sc vulkan.Swapchain
	res = vulkan.CreateSwapchain(s.d.dev, &vulkan.SwapchainCreateInfo{
		SType:            vulkan.StructureTypeSwapchainCreateInfo,
		Surface:          s.surf,
		MinImageCount:    count,
		ImageFormat:      sf.Format,
		ImageColorSpace:  sf.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vulkan.ImageUsageFlags(vulkan.ImageUsageColorAttachmentBit | vulkan.ImageUsageTransferDstBit),
		ImageSharingMode: vulkan.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vulkan.CompositeAlphaOpaqueBit,
		PresentMode:      s.presentMode(),
		Clipped:          vulkan.True,
		OldSwapchain:     old,
	}, nil, &sc)
	if err := checkResult(res); err != nil {
		return err
	}
	for _, v := range s.views {
		v.Destroy()
	}
	s.views = nil
	if old != vulkan.NullSwapchain {
		vulkan.DestroySwapchain(s.d.dev, old, nil)
	}
	s.sc = sc
	s.format = format
	s.width = int(extent.Width)
	s.height = int(extent.Height)
	s.acquired = false

	var n uint32
	vulkan.GetSwapchainImages(s.d.dev, sc, &n, nil)
	images := make([]vulkan.Image, n)
	vulkan.GetSwapchainImages(s.d.dev, sc, &n, images)
	for _, img := range images {
		var view vulkan.ImageView
		res = vulkan.CreateImageView(s.d.dev, &vulkan.ImageViewCreateInfo{
			SType:    vulkan.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vulkan.ImageViewType2d,
			Format:   sf.Format,
			SubresourceRange: vulkan.ImageSubresourceRange{
				AspectMask: vulkan.ImageAspectFlags(vulkan.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}, nil, &view)
		if err := checkResult(res); err != nil {
			return err
		}
		s.views = append(s.views, &textureView{
			d:       s.d,
			view:    view,
			format:  format,
			dim:     rhi.View2D,
			levels:  1,
			layers:  1,
			width:   s.width,
			height:  s.height,
			swapImg: img,
			swap:    true,
		})
	}
	return nil
}

// Acquire blocks until a presentable image is available and
// returns its view.
func (s *swapchain) Acquire(signal rhi.Semaphore) (rhi.TextureView, error) {
	if s.acquired {
		return nil, fmt.Errorf("%w: image already acquired", rhi.ErrUsage)
	}
	sem := vulkan.Semaphore(vulkan.NullSemaphore)
	if signal != nil {
		ns, ok := signal.(*semaphore)
		if !ok {
			return nil, fmt.Errorf("%w: foreign semaphore", rhi.ErrUsage)
		}
		sem = ns.sem
	}
	var idx uint32
	res := vulkan.AcquireNextImage(s.d.dev, s.sc, uint64(vulkan.MaxUint64), sem, vulkan.NullFence, &idx)
	switch res {
	case vulkan.Success, vulkan.Suboptimal:
	default:
		return nil, checkResult(res)
	}
	s.next = idx
	s.acquired = true
	return s.views[idx], nil
}

// Present presents the most recently acquired image.
func (s *swapchain) Present(wait rhi.Semaphore) error {
	if !s.acquired {
		return fmt.Errorf("%w: no image acquired", rhi.ErrUsage)
	}
	s.acquired = false
	var waits []vulkan.Semaphore
	if wait != nil {
		ns, ok := wait.(*semaphore)
		if !ok {
			return fmt.Errorf("%w: foreign semaphore", rhi.ErrUsage)
		}
		waits = []vulkan.Semaphore{ns.sem}
	}
	q := s.d.ques[rhi.QueueGraphics]
	q.mu.Lock()
	res := vulkan.QueuePresent(q.q, &vulkan.PresentInfo{
		SType:              vulkan.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(waits)),
		PWaitSemaphores:    waits,
		SwapchainCount:     1,
		PSwapchains:        []vulkan.Swapchain{s.sc},
		PImageIndices:      []uint32{s.next},
	})
	q.mu.Unlock()
	switch res {
	case vulkan.Success, vulkan.Suboptimal:
		return nil
	}
	return checkResult(res)
}

// Resize recreates the image ring at the new size.
// The caller must guarantee that no submitted work still
// references the old images.
func (s *swapchain) Resize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: swapchain size %dx%d", rhi.ErrInvalidDesc, width, height)
	}
	return s.recreate(width, height, s.format)
}

func (s *swapchain) Width() int         { return s.width }
func (s *swapchain) Height() int        { return s.height }
func (s *swapchain) Format() rhi.Format { return s.format }

// Destroy destroys the image ring. The surface is left to its
// creator.
func (s *swapchain) Destroy() {
	if s.d != nil {
		for _, v := range s.views {
			v.Destroy()
		}
		if s.sc != vulkan.NullSwapchain {
			vulkan.DestroySwapchain(s.d.dev, s.sc, nil)
		}
	}
	*s = swapchain{}
}
