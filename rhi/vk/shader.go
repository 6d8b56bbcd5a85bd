// Copyright 2026 The mini-engine authors. All rights reserved.

package vk

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	vulkan "github.com/goki/vulkan"

	"github.com/nowead/mini-engine/rhi"
)

// NewShader creates a new shader module.
// SPIR-V is consumed natively; WGSL is translated to SPIR-V
// at creation time.
func (d *Driver) NewShader(desc *rhi.ShaderDesc) (rhi.Shader, error) {
	if err := rhi.ValidateShaderDesc(desc); err != nil {
		return nil, err
	}
	code := desc.Code
	switch desc.Language {
	case rhi.ShaderSPIRV:
	case rhi.ShaderWGSL:
		spv, err := naga.Compile(string(code))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rhi.ErrInvalidDesc, err)
		}
		code = spv
	default:
		return nil, rhi.ErrShaderLanguage
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V code length %d", rhi.ErrInvalidDesc, len(code))
	}
	var mod vulkan.ShaderModule
	res := vulkan.CreateShaderModule(d.dev, &vulkan.ShaderModuleCreateInfo{
		SType:    vulkan.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    repackUint32(code),
	}, nil, &mod)
	if err := checkResult(res); err != nil {
		return nil, err
	}
	return &shader{d: d, mod: mod}, nil
}

// repackUint32 converts a byte blob into the word slice the
// native API expects.
func repackUint32(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words
}

// shader implements rhi.Shader.
type shader struct {
	d   *Driver
	mod vulkan.ShaderModule
}

// Destroy destroys the shader module.
func (s *shader) Destroy() {
	if s.d != nil {
		vulkan.DestroyShaderModule(s.d.dev, s.mod, nil)
	}
	*s = shader{}
}
