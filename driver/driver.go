// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"time"

	"github.com/gogpu/gputypes"
)

// Context is the device contract the glcore stores operate against. It
// is deliberately narrow: one method per native operation the stores
// need, nothing more.
//
// A Context is driven from a single goroutine (the frame loop). It is
// not required to be safe for concurrent use; synchronization is the
// stores' responsibility.
//
// All offsets and sizes are in bytes unless stated otherwise. Ranges
// out of an object's allocated storage fail with ErrRangeOutOfBounds;
// operations on unknown handles fail with ErrInvalidHandle.
type Context interface {
	// CreateBuffer creates and allocates a buffer of size bytes with
	// undefined contents.
	CreateBuffer(size int, usage UsageHint) (Buffer, error)

	// DeleteBuffer destroys the buffer. Deleting a zero handle is a no-op.
	DeleteBuffer(Buffer)

	// BufferSubData writes data at offset within the buffer's storage.
	BufferSubData(buf Buffer, offset int, data []byte) error

	// CopyBufferSubData copies size bytes between two buffers on the
	// device, without a CPU round trip.
	CopyBufferSubData(src, dst Buffer, srcOffset, dstOffset, size int) error

	// ReadBufferData reads len(dst) bytes at offset back into dst. The
	// call completes synchronously; callers wanting overlap insert a
	// fence first.
	ReadBufferData(buf Buffer, offset int, dst []byte) error

	// BindBuffer binds the buffer to a target. A zero handle unbinds.
	BindBuffer(target BufferTarget, buf Buffer)

	// BindBufferBase mounts the buffer at an indexed uniform-buffer
	// binding point. A zero handle unmounts.
	BindBufferBase(point int, buf Buffer)

	// CreateTexture creates a 2D texture with immutable storage of the
	// given format, dimensions, and mip level count. The storage cannot
	// be resized afterwards.
	CreateTexture(format gputypes.TextureFormat, width, height, levels int) (Texture, error)

	// DeleteTexture destroys the texture. Deleting a zero handle is a no-op.
	DeleteTexture(Texture)

	// TexSubImage2D writes a sub-region of one mip level. The region
	// must lie inside the level's extent.
	TexSubImage2D(tex Texture, level, x, y, width, height int, data []byte) error

	// ReadTexturePixels reads the full contents of one mip level into dst.
	ReadTexturePixels(tex Texture, level int, dst []byte) error

	// GenerateMipmap populates levels 1..n-1 from level 0.
	GenerateMipmap(tex Texture) error

	// BindTexture binds the texture to a texture unit. A zero handle
	// unbinds the unit.
	BindTexture(unit int, tex Texture)

	// CreateSampler creates a sampler object for the given state.
	CreateSampler(state SamplerState) (Sampler, error)

	// DeleteSampler destroys the sampler. Deleting a zero handle is a no-op.
	DeleteSampler(Sampler)

	// BindSampler binds the sampler alongside the texture on a unit.
	BindSampler(unit int, s Sampler)

	// CompileShader compiles one stage from (preprocessed) source text.
	// On failure the error wraps ErrCompileFailed and carries the native
	// info log.
	CompileShader(stage ShaderStage, source string) (Shader, error)

	// DeleteShader destroys a shader object. Programs keep their stages
	// alive natively; deleting after link is safe.
	DeleteShader(Shader)

	// LinkProgram links a vertex and a fragment shader into a program.
	// On failure the error wraps ErrLinkFailed and carries the native
	// info log.
	LinkProgram(vertex, fragment Shader) (Program, error)

	// DeleteProgram destroys the program. Deleting a zero handle is a no-op.
	DeleteProgram(Program)

	// UseProgram makes the program current. A zero handle clears it.
	UseProgram(Program)

	// CreateFramebuffer creates an empty framebuffer object.
	CreateFramebuffer() (Framebuffer, error)

	// DeleteFramebuffer destroys the framebuffer but not its attachments.
	DeleteFramebuffer(Framebuffer)

	// BindFramebuffer binds the framebuffer to the read or draw target.
	// A zero handle restores the default drawing buffer.
	BindFramebuffer(target FramebufferTarget, fb Framebuffer)

	// FramebufferTexture attaches one mip level of a texture to the
	// framebuffer currently bound at target.
	FramebufferTexture(target FramebufferTarget, point AttachmentPoint, tex Texture, level int) error

	// FramebufferRenderbuffer attaches a renderbuffer to the framebuffer
	// currently bound at target.
	FramebufferRenderbuffer(target FramebufferTarget, point AttachmentPoint, rb Renderbuffer) error

	// CreateRenderbuffer creates a renderbuffer with fixed storage.
	CreateRenderbuffer(format gputypes.TextureFormat, width, height int) (Renderbuffer, error)

	// DeleteRenderbuffer destroys the renderbuffer.
	DeleteRenderbuffer(Renderbuffer)

	// ClearBuffer clears one attachment of the framebuffer bound at the
	// draw target with the given value.
	ClearBuffer(point AttachmentPoint, value ClearValue) error

	// SetDrawBuffers selects which color attachments fragment outputs
	// are written to, in output-location order.
	SetDrawBuffers(points []AttachmentPoint) error

	// ReadPixels reads a rectangle from the framebuffer bound at the
	// read target into dst, tightly packed.
	ReadPixels(x, y, width, height int, format gputypes.TextureFormat, dst []byte) error

	// BlitFramebuffer copies a rectangle from the read-bound to the
	// draw-bound framebuffer, scaling with the given filter.
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, filter Filter) error

	// FenceSync inserts a fence into the command stream.
	FenceSync() (Fence, error)

	// ClientWait blocks up to timeout for the fence to signal.
	ClientWait(f Fence, timeout time.Duration) (FenceStatus, error)

	// DeleteFence destroys the fence object.
	DeleteFence(Fence)

	// DrawingBufferSize returns the current size of the default drawing
	// buffer. Framebuffer sizing policies consult this every bind.
	DrawingBufferSize() (width, height int)
}
