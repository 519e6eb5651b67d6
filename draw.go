package glcore

import (
	"github.com/gogpu/glcore/driver"
	"github.com/gogpu/glcore/resource"
	"github.com/gogpu/glcore/shader"
)

// Pipeline hooks. External pipeline stages go through these helpers so
// they never hold runtimes across a frame; everything they keep is a
// descriptor or a provider.

// Use resolves, compiles as needed, and makes current the program for
// p under the given variant.
func (e *Engine) Use(p shader.Provider, variant map[string]string) (driver.Program, error) {
	return e.Shaders.Use(p, variant)
}

// BindBuffer materializes d, flushes its pending writes, and binds it
// to target.
func (e *Engine) BindBuffer(d *resource.BufferDescriptor, target driver.BufferTarget) (driver.Buffer, error) {
	return e.Buffers.Resolve(d, target)
}

// ReleaseBuffer drops the binding taken by BindBuffer. The native
// object stays resident until eviction or Unregister.
func (e *Engine) ReleaseBuffer(d *resource.BufferDescriptor, target driver.BufferTarget) {
	e.Buffers.Release(d, target)
}

// BindTexture materializes d, flushes its pending uploads, and binds
// it with its sampler on the given texture unit.
func (e *Engine) BindTexture(d *resource.TextureDescriptor, unit int) (driver.Texture, error) {
	return e.Textures.Resolve(d, unit)
}

// ReleaseTexture drops the unit binding taken by BindTexture.
func (e *Engine) ReleaseTexture(d *resource.TextureDescriptor, unit int) {
	e.Textures.Release(d, unit)
}
