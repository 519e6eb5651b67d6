// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glcore/driver"
)

type shaderMeta struct {
	module hal.ShaderModule
	stage  driver.ShaderStage
}

type programMeta struct {
	vertex   driver.Shader
	fragment driver.Shader
}

// CompileShader treats source as WGSL and compiles it to SPIR-V
// through naga before creating the module.
func (c *Context) CompileShader(stage driver.ShaderStage, source string) (driver.Shader, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return driver.Shader{}, fmt.Errorf("%w: %s: %v", driver.ErrCompileFailed, stage, err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "glcore_" + stage.String(),
		Source: hal.ShaderSource{SPIRV: spirvCode},
	})
	if err != nil {
		return driver.Shader{}, fmt.Errorf("%w: %s: %v", driver.ErrCompileFailed, stage, err)
	}

	id := c.id()
	c.shaders[id] = &shaderMeta{module: module, stage: stage}
	return driver.Shader{ID: id}, nil
}

func (c *Context) DeleteShader(s driver.Shader) {
	if s.IsZero() {
		return
	}
	if m, ok := c.shaders[s.ID]; ok {
		c.device.DestroyShaderModule(m.module)
		delete(c.shaders, s.ID)
	}
}

// LinkProgram pairs the two stage modules. Pipelines on this backend
// are assembled per draw state by the render layer; linking here only
// validates the pair and hands out an identity for it.
func (c *Context) LinkProgram(vertex, fragment driver.Shader) (driver.Program, error) {
	vs, ok := c.shaders[vertex.ID]
	if !ok || vs.stage != driver.StageVertex {
		return driver.Program{}, fmt.Errorf("%w: invalid vertex stage object %d",
			driver.ErrLinkFailed, vertex.ID)
	}
	fs, ok := c.shaders[fragment.ID]
	if !ok || fs.stage != driver.StageFragment {
		return driver.Program{}, fmt.Errorf("%w: invalid fragment stage object %d",
			driver.ErrLinkFailed, fragment.ID)
	}

	id := c.id()
	c.programs[id] = programMeta{vertex: vertex, fragment: fragment}
	return driver.Program{ID: id}, nil
}

func (c *Context) DeleteProgram(p driver.Program) {
	if p.IsZero() {
		return
	}
	delete(c.programs, p.ID)
}

func (c *Context) UseProgram(p driver.Program) {
	c.current = p
}

// CurrentProgram returns the logically current program.
func (c *Context) CurrentProgram() driver.Program { return c.current }

// ProgramModules returns the HAL shader modules behind a program, for
// the render layer building pipelines.
func (c *Context) ProgramModules(p driver.Program) (vertex, fragment hal.ShaderModule, ok bool) {
	pm, ok := c.programs[p.ID]
	if !ok {
		return nil, nil, false
	}
	vs, vok := c.shaders[pm.vertex.ID]
	fs, fok := c.shaders[pm.fragment.ID]
	if !vok || !fok {
		return nil, nil, false
	}
	return vs.module, fs.module, true
}
