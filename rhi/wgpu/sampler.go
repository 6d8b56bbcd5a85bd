// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

// NewSampler creates a new sampler.
func (d *Driver) NewSampler(desc *rhi.SamplerDesc) (rhi.Sampler, error) {
	if err := rhi.ValidateSamplerDesc(desc); err != nil {
		return nil, err
	}
	maxLOD := desc.MaxLOD
	if maxLOD == 0 {
		maxLOD = 32
	}
	aniso := desc.MaxAniso
	if aniso < 1 {
		aniso = 1
	}
	cmp := wgpu.CompareFunctionUndefined
	if desc.Compare {
		cmp = convCmpFunc(desc.Cmp)
	}
	s, err := d.dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  convAddrMode(desc.AddrU),
		AddressModeV:  convAddrMode(desc.AddrV),
		AddressModeW:  convAddrMode(desc.AddrW),
		MagFilter:     convFilter(desc.Mag),
		MinFilter:     convFilter(desc.Min),
		MipmapFilter:  convMipmap(desc.Mipmap),
		LodMinClamp:   desc.MinLOD,
		LodMaxClamp:   maxLOD,
		Compare:       cmp,
		MaxAnisotropy: uint16(aniso),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrInvalidDesc, err)
	}
	return &sampler{d: d, s: s}, nil
}

type sampler struct {
	d *Driver
	s *wgpu.Sampler
}

// Destroy invalidates and deallocates the sampler.
func (s *sampler) Destroy() {
	if s.s != nil {
		s.s.Release()
	}
	*s = sampler{}
}
