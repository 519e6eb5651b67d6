// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glcore/driver"
)

// copyPitchAlignment is the BytesPerRow alignment WebGPU (and DX12)
// require for texture/buffer copies.
const copyPitchAlignment = 256

type textureMeta struct {
	tex    hal.Texture
	format gputypes.TextureFormat
	width  int
	height int
	levels int
}

func (c *Context) CreateTexture(format gputypes.TextureFormat, width, height, levels int) (driver.Texture, error) {
	if width <= 0 || height <= 0 || levels <= 0 {
		return driver.Texture{}, fmt.Errorf("%w: texture extent %dx%d levels %d",
			driver.ErrRangeOutOfBounds, width, height, levels)
	}
	if !driver.FormatValid(format) {
		return driver.Texture{}, fmt.Errorf("%w: %v", driver.ErrUnsupportedFormat, format)
	}
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label: "glcore_texture",
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: uint32(levels),
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage: gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return driver.Texture{}, fmt.Errorf("%w: %v", driver.ErrOutOfDeviceMemory, err)
	}
	id := c.id()
	c.textures[id] = &textureMeta{
		tex:    tex,
		format: format,
		width:  width,
		height: height,
		levels: levels,
	}
	return driver.Texture{ID: id}, nil
}

func (c *Context) DeleteTexture(tex driver.Texture) {
	if tex.IsZero() {
		return
	}
	if t, ok := c.textures[tex.ID]; ok {
		c.device.DestroyTexture(t.tex)
		delete(c.textures, tex.ID)
	}
}

func (c *Context) texture(tex driver.Texture) (*textureMeta, error) {
	t, ok := c.textures[tex.ID]
	if !ok {
		return nil, fmt.Errorf("%w: texture %d", driver.ErrInvalidHandle, tex.ID)
	}
	return t, nil
}

func (c *Context) TexSubImage2D(tex driver.Texture, level, x, y, width, height int, data []byte) error {
	t, err := c.texture(tex)
	if err != nil {
		return err
	}
	if level < 0 || level >= t.levels {
		return fmt.Errorf("%w: mip level %d of %d", driver.ErrRangeOutOfBounds, level, t.levels)
	}
	bpp := driver.FormatBytesPerPixel(t.format)
	if len(data) < width*height*bpp {
		return fmt.Errorf("%w: %d data bytes for %dx%d region",
			driver.ErrRangeOutOfBounds, len(data), width, height)
	}

	err = c.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: uint32(level),
			Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y), Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width * bpp),
			RowsPerImage: uint32(height),
		},
		&hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture: %w", err)
	}
	return nil
}

// ReadTexturePixels copies one mip level through an aligned staging
// buffer and strips the row padding on the way out.
func (c *Context) ReadTexturePixels(tex driver.Texture, level int, dst []byte) error {
	t, err := c.texture(tex)
	if err != nil {
		return err
	}
	if level < 0 || level >= t.levels {
		return fmt.Errorf("%w: mip level %d of %d", driver.ErrRangeOutOfBounds, level, t.levels)
	}
	lw, lh := mipExtent(t.width, t.height, level)
	bpp := driver.FormatBytesPerPixel(t.format)
	if len(dst) < lw*lh*bpp {
		return fmt.Errorf("%w: %d dst bytes for %d-byte level",
			driver.ErrRangeOutOfBounds, len(dst), lw*lh*bpp)
	}

	bytesPerRow := lw * bpp
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(lh)

	staging, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glcore_tex_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: staging: %v", driver.ErrOutOfDeviceMemory, err)
	}
	defer c.device.DestroyBuffer(staging)

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "glcore_tex_read",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("tex_read"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(alignedBytesPerRow),
			RowsPerImage: uint32(lh),
		},
		TextureBase: hal.ImageCopyTexture{Texture: t.tex, MipLevel: uint32(level)},
		Size:        hal.Extent3D{Width: uint32(lw), Height: uint32(lh), DepthOrArrayLayers: 1},
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	if err := c.submitAndWait([]hal.CommandBuffer{cmdBuf}); err != nil {
		return err
	}

	readback := make([]byte, stagingSize)
	if err := c.readStaging(staging, readback); err != nil {
		return err
	}
	if alignedBytesPerRow == bytesPerRow {
		copy(dst, readback[:lh*bytesPerRow])
		return nil
	}
	for row := 0; row < lh; row++ {
		copy(dst[row*bytesPerRow:(row+1)*bytesPerRow], readback[row*alignedBytesPerRow:])
	}
	return nil
}

// GenerateMipmap requires a render or compute pass per level on this
// backend, which lives above the driver layer.
func (c *Context) GenerateMipmap(tex driver.Texture) error {
	if _, err := c.texture(tex); err != nil {
		return err
	}
	return fmt.Errorf("%w: mipmap generation needs a render pass", driver.ErrNotSupported)
}

func (c *Context) BindTexture(unit int, tex driver.Texture) {
	if tex.IsZero() {
		delete(c.boundUnits, unit)
		return
	}
	c.boundUnits[unit] = tex
}

// Samplers are logical on this backend: WebGPU samplers materialize
// inside bind groups, which the render layer owns. The state is kept
// for it to consume.

func (c *Context) CreateSampler(state driver.SamplerState) (driver.Sampler, error) {
	id := c.id()
	c.samplers[id] = state
	return driver.Sampler{ID: id}, nil
}

func (c *Context) DeleteSampler(s driver.Sampler) {
	if s.IsZero() {
		return
	}
	delete(c.samplers, s.ID)
}

func (c *Context) BindSampler(unit int, s driver.Sampler) {
	if s.IsZero() {
		delete(c.samplerUnits, unit)
		return
	}
	c.samplerUnits[unit] = s
}

// SamplerState returns the state behind a sampler handle.
func (c *Context) SamplerState(s driver.Sampler) (driver.SamplerState, bool) {
	st, ok := c.samplers[s.ID]
	return st, ok
}

// HalTexture exposes the native object behind a handle, for the render
// layer recording passes.
func (c *Context) HalTexture(tex driver.Texture) (hal.Texture, bool) {
	t, ok := c.textures[tex.ID]
	if !ok {
		return nil, false
	}
	return t.tex, true
}

func mipExtent(w, h, level int) (int, int) {
	for ; level > 0; level-- {
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
	}
	return w, h
}
