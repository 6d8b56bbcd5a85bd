// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	"fmt"

	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

// NewSampler creates a new sampler.
func (d *Driver) NewSampler(desc *rhi.SamplerDesc) (rhi.Sampler, error) {
	if err := rhi.ValidateSamplerDesc(desc); err != nil {
		return nil, err
	}
	maxLOD := desc.MaxLOD
	if maxLOD == 0 {
		maxLOD = 1000
	}
	info := vulkan.SamplerCreateInfo{
		SType:        vulkan.StructureTypeSamplerCreateInfo,
		MagFilter:    convFilter(desc.Mag),
		MinFilter:    convFilter(desc.Min),
		MipmapMode:   convMipmap(desc.Mipmap),
		AddressModeU: convAddrMode(desc.AddrU),
		AddressModeV: convAddrMode(desc.AddrV),
		AddressModeW: convAddrMode(desc.AddrW),
		MinLod:       desc.MinLOD,
		MaxLod:       maxLOD,
	}
	if desc.MaxAniso > 1 {
		if !d.feat.Has(rhi.FeatureAnisotropy) {
			return nil, fmt.Errorf("%w: anisotropic filtering not supported", rhi.ErrInvalidDesc)
		}
		info.AnisotropyEnable = vulkan.True
		info.MaxAnisotropy = float32(desc.MaxAniso)
	}
	if desc.Compare {
		info.CompareEnable = vulkan.True
		info.CompareOp = convCmpFunc(desc.Cmp)
	}
	var s vulkan.Sampler
	res := vulkan.CreateSampler(d.dev, &info, nil, &s)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	return &sampler{d: d, s: s}, nil
}

// sampler implements rhi.Sampler.
type sampler struct {
	d *Driver
	s vulkan.Sampler
}

// Destroy destroys the sampler.
func (s *sampler) Destroy() {
	if s.d != nil {
		vulkan.DestroySampler(s.d.dev, s.s, nil)
	}
	*s = sampler{}
}
