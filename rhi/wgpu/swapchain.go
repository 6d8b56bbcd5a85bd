// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

// NewSwapchain creates a new swapchain bound to the surface
// described by desc.Window.SurfaceDescriptor.
func (d *Driver) NewSwapchain(desc *rhi.SwapchainDesc) (rhi.Swapchain, error) {
	if err := rhi.ValidateSwapchainDesc(desc); err != nil {
		return nil, err
	}
	sd, ok := desc.Window.SurfaceDescriptor.(*wgpu.SurfaceDescriptor)
	if !ok || sd == nil {
		return nil, fmt.Errorf("%w: missing surface descriptor", rhi.ErrInvalidDesc)
	}
	surf := d.inst.CreateSurface(sd)
	if surf == nil {
		return nil, rhi.ErrCannotPresent
	}
	s := &swapchain{
		d:      d,
		surf:   surf,
		mode:   desc.PresentMode,
		width:  desc.Width,
		height: desc.Height,
	}
	if err := s.configure(desc.Format); err != nil {
		surf.Release()
		return nil, err
	}
	return s, nil
}

// swapchain implements rhi.Swapchain.
// The native surface owns the image ring; configuration sets
// its size and the presentable format.
type swapchain struct {
	d      *Driver
	surf   *wgpu.Surface
	format rhi.Format
	mode   rhi.PresentMode
	width  int
	height int

	// Current acquisition, valid between Acquire and Present.
	cur     *wgpu.Texture
	curView *textureView
}

// configure (re)configures the surface at the current size.
// A zero-valued want leaves format selection to the surface.
func (s *swapchain) configure(want rhi.Format) error {
	caps := s.surf.GetCapabilities(s.d.adapter)
	if len(caps.Formats) == 0 {
		return rhi.ErrCannotPresent
	}
	format := rhi.FormatInvalid
	var nformat wgpu.TextureFormat
	if want != rhi.FormatInvalid {
		nformat = convFormat(want)
		for _, f := range caps.Formats {
			if f == nformat {
				format = want
				break
			}
		}
		if format == rhi.FormatInvalid {
			return fmt.Errorf("%w: %v not presentable", rhi.ErrUnsupportedFormat, want)
		}
	} else {
		for _, f := range caps.Formats {
			if unconvFormat(f) != rhi.FormatInvalid {
				format, nformat = unconvFormat(f), f
				break
			}
		}
		if format == rhi.FormatInvalid {
			return fmt.Errorf("%w: no presentable format", rhi.ErrUnsupportedFormat)
		}
	}
	mode := convPresentMode(s.mode)
	supported := false
	for _, m := range caps.PresentModes {
		if m == mode {
			supported = true
			break
		}
	}
	if !supported {
		mode = wgpu.PresentModeFifo
	}
	s.surf.Configure(s.d.adapter, s.d.dev, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      nformat,
		Width:       uint32(s.width),
		Height:      uint32(s.height),
		PresentMode: mode,
		AlphaMode:   caps.AlphaModes[0],
	})
	s.format = format
	return nil
}

// Acquire blocks until a presentable image is available and
// returns its view. The semaphore is elided; the render pass
// using the view is ordered automatically.
func (s *swapchain) Acquire(signal rhi.Semaphore) (rhi.TextureView, error) {
	if s.cur != nil {
		return nil, fmt.Errorf("%w: image already acquired", rhi.ErrUsage)
	}
	if signal != nil {
		if _, ok := signal.(*semaphore); !ok {
			return nil, fmt.Errorf("%w: foreign semaphore", rhi.ErrUsage)
		}
	}
	tex, err := s.surf.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrSwapchain, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("%w: %v", rhi.ErrSwapchain, err)
	}
	s.cur = tex
	s.curView = &textureView{
		d:      s.d,
		view:   view,
		format: s.format,
		dim:    rhi.View2D,
		swap:   true,
	}
	return s.curView, nil
}

// Present presents the most recently acquired image.
func (s *swapchain) Present(wait rhi.Semaphore) error {
	if s.cur == nil {
		return fmt.Errorf("%w: no acquired image", rhi.ErrUsage)
	}
	if wait != nil {
		if _, ok := wait.(*semaphore); !ok {
			return fmt.Errorf("%w: foreign semaphore", rhi.ErrUsage)
		}
	}
	s.surf.Present()
	s.release()
	return nil
}

// release drops the current acquisition.
func (s *swapchain) release() {
	if s.curView != nil {
		s.curView.view.Release()
		*s.curView = textureView{}
		s.curView = nil
	}
	if s.cur != nil {
		s.cur.Release()
		s.cur = nil
	}
}

// Resize recreates the image ring at the new size.
// Any acquired image is dropped without presenting.
func (s *swapchain) Resize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: swapchain size %dx%d", rhi.ErrInvalidDesc, width, height)
	}
	s.release()
	s.width, s.height = width, height
	return s.configure(s.format)
}

// Width returns the current image width.
func (s *swapchain) Width() int { return s.width }

// Height returns the current image height.
func (s *swapchain) Height() int { return s.height }

// Format returns the image format.
func (s *swapchain) Format() rhi.Format { return s.format }

// Destroy invalidates the swapchain and releases the surface.
func (s *swapchain) Destroy() {
	s.release()
	if s.surf != nil {
		s.surf.Release()
	}
	*s = swapchain{}
}
