// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

// Handle types are opaque identifiers minted by a Context. The zero
// value is never a live object.

// Buffer identifies a native buffer object.
type Buffer struct{ ID uint64 }

// IsZero reports whether the handle refers to no object.
func (b Buffer) IsZero() bool { return b.ID == 0 }

// Texture identifies a native texture object with immutable storage.
type Texture struct{ ID uint64 }

// IsZero reports whether the handle refers to no object.
func (t Texture) IsZero() bool { return t.ID == 0 }

// Sampler identifies a native sampler object.
type Sampler struct{ ID uint64 }

// IsZero reports whether the handle refers to no object.
func (s Sampler) IsZero() bool { return s.ID == 0 }

// Shader identifies one compiled shader stage.
type Shader struct{ ID uint64 }

// IsZero reports whether the handle refers to no object.
func (s Shader) IsZero() bool { return s.ID == 0 }

// Program identifies a linked shader program.
type Program struct{ ID uint64 }

// IsZero reports whether the handle refers to no object.
func (p Program) IsZero() bool { return p.ID == 0 }

// Framebuffer identifies a native framebuffer object.
type Framebuffer struct{ ID uint64 }

// IsZero reports whether the handle refers to no object.
func (f Framebuffer) IsZero() bool { return f.ID == 0 }

// Renderbuffer identifies a native renderbuffer object.
type Renderbuffer struct{ ID uint64 }

// IsZero reports whether the handle refers to no object.
func (r Renderbuffer) IsZero() bool { return r.ID == 0 }

// Fence identifies a GPU sync point inserted into the command stream.
type Fence struct{ ID uint64 }

// IsZero reports whether the handle refers to no object.
func (f Fence) IsZero() bool { return f.ID == 0 }

// SamplerState describes the fixed sampling parameters of a texture.
// A Context materializes one native sampler object per distinct state.
type SamplerState struct {
	// MinFilter and MagFilter select minification/magnification filtering.
	MinFilter Filter
	MagFilter Filter

	// WrapS and WrapT select addressing outside [0,1] per axis.
	WrapS Wrap
	WrapT Wrap

	// Compare enables depth-comparison sampling when not CompareNone.
	Compare Compare
}

// ClearValue carries the value for clearing one framebuffer attachment.
// Which fields are meaningful depends on Kind.
type ClearValue struct {
	Kind ClearKind

	// Color components, interpreted per Kind (float, signed, unsigned).
	Float [4]float32
	Int   [4]int32
	Uint  [4]uint32

	// Depth and Stencil are used by the depth/stencil kinds.
	Depth   float32
	Stencil int32
}
