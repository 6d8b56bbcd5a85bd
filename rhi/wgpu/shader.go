// Copyright 2026 The mini-engine authors. All rights reserved.

package wgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/nowead/mini-engine/rhi"
)

// NewShader creates a new shader module.
// WGSL is consumed natively. SPIR-V has no translation path
// on this backend and fails with ErrShaderLanguage.
func (d *Driver) NewShader(desc *rhi.ShaderDesc) (rhi.Shader, error) {
	if err := rhi.ValidateShaderDesc(desc); err != nil {
		return nil, err
	}
	if desc.Language != rhi.ShaderWGSL {
		return nil, fmt.Errorf("%w: %v", rhi.ErrShaderLanguage, desc.Language)
	}
	mod, err := d.dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: string(desc.Code),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rhi.ErrInvalidDesc, err)
	}
	return &shader{d: d, mod: mod}, nil
}

type shader struct {
	d   *Driver
	mod *wgpu.ShaderModule
}

// Destroy invalidates and deallocates the shader module.
func (s *shader) Destroy() {
	if s.mod != nil {
		s.mod.Release()
	}
	*s = shader{}
}
