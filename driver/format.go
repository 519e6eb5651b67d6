// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import "github.com/gogpu/gputypes"

// NumericClass is the numeric category of a pixel format. It drives the
// automatic choice of clear semantics for framebuffer attachments.
type NumericClass int

const (
	// ClassFloat covers float and normalized-integer color formats.
	ClassFloat NumericClass = iota

	// ClassInt covers signed-integer color formats.
	ClassInt

	// ClassUint covers unsigned-integer color formats.
	ClassUint

	// ClassDepth covers depth-only formats.
	ClassDepth

	// ClassStencil covers stencil-only formats.
	ClassStencil

	// ClassDepthStencil covers combined depth/stencil formats.
	ClassDepthStencil
)

// FormatBytesPerPixel returns the storage size of one pixel of the
// format, or 0 for block-compressed and undefined formats, which have
// no per-pixel layout. FormatValid is the boolean view of the same
// table.
func FormatBytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm, gputypes.TextureFormatR8Snorm,
		gputypes.TextureFormatR8Uint, gputypes.TextureFormatR8Sint,
		gputypes.TextureFormatStencil8:
		return 1

	case gputypes.TextureFormatR16Unorm, gputypes.TextureFormatR16Snorm,
		gputypes.TextureFormatR16Uint, gputypes.TextureFormatR16Sint,
		gputypes.TextureFormatR16Float,
		gputypes.TextureFormatRG8Unorm, gputypes.TextureFormatRG8Snorm,
		gputypes.TextureFormatRG8Uint, gputypes.TextureFormatRG8Sint,
		gputypes.TextureFormatDepth16Unorm:
		return 2

	case gputypes.TextureFormatR32Float, gputypes.TextureFormatR32Uint,
		gputypes.TextureFormatR32Sint,
		gputypes.TextureFormatRG16Unorm, gputypes.TextureFormatRG16Snorm,
		gputypes.TextureFormatRG16Uint, gputypes.TextureFormatRG16Sint,
		gputypes.TextureFormatRG16Float,
		gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatRGBA8Snorm, gputypes.TextureFormatRGBA8Uint,
		gputypes.TextureFormatRGBA8Sint,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatRGB10A2Unorm, gputypes.TextureFormatRGB10A2Uint,
		gputypes.TextureFormatRG11B10Ufloat, gputypes.TextureFormatRGB9E5Ufloat,
		gputypes.TextureFormatDepth24Plus, gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float:
		return 4

	case gputypes.TextureFormatRG32Float, gputypes.TextureFormatRG32Uint,
		gputypes.TextureFormatRG32Sint,
		gputypes.TextureFormatRGBA16Unorm, gputypes.TextureFormatRGBA16Snorm,
		gputypes.TextureFormatRGBA16Uint, gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatRGBA16Float,
		gputypes.TextureFormatDepth32FloatStencil8:
		return 8

	case gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA32Uint,
		gputypes.TextureFormatRGBA32Sint:
		return 16

	default:
		return 0
	}
}

// FormatValid reports whether the format has a per-pixel layout this
// package can address. Block-compressed formats are out of scope.
func FormatValid(f gputypes.TextureFormat) bool {
	return FormatBytesPerPixel(f) > 0
}

// FormatClass returns the numeric class of the format. Only meaningful
// for formats FormatValid accepts; anything else classifies as float.
func FormatClass(f gputypes.TextureFormat) NumericClass {
	switch f {
	case gputypes.TextureFormatR8Uint, gputypes.TextureFormatR16Uint,
		gputypes.TextureFormatR32Uint,
		gputypes.TextureFormatRG8Uint, gputypes.TextureFormatRG16Uint,
		gputypes.TextureFormatRG32Uint,
		gputypes.TextureFormatRGBA8Uint, gputypes.TextureFormatRGBA16Uint,
		gputypes.TextureFormatRGBA32Uint,
		gputypes.TextureFormatRGB10A2Uint:
		return ClassUint

	case gputypes.TextureFormatR8Sint, gputypes.TextureFormatR16Sint,
		gputypes.TextureFormatR32Sint,
		gputypes.TextureFormatRG8Sint, gputypes.TextureFormatRG16Sint,
		gputypes.TextureFormatRG32Sint,
		gputypes.TextureFormatRGBA8Sint, gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatRGBA32Sint:
		return ClassInt

	case gputypes.TextureFormatDepth16Unorm, gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth32Float:
		return ClassDepth

	case gputypes.TextureFormatStencil8:
		return ClassStencil

	case gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32FloatStencil8:
		return ClassDepthStencil

	default:
		return ClassFloat
	}
}

// FormatClearKind returns the clear semantics an attachment of the
// format requires. This is the one place clear semantics are derived
// from formats; callers may still override per attachment.
func FormatClearKind(f gputypes.TextureFormat) ClearKind {
	switch FormatClass(f) {
	case ClassInt:
		return ClearColorInt
	case ClassUint:
		return ClearColorUint
	case ClassDepth:
		return ClearDepth
	case ClassStencil:
		return ClearStencil
	case ClassDepthStencil:
		return ClearDepthStencil
	default:
		return ClearColorFloat
	}
}

// FormatIsColor reports whether the format is renderable as a color
// attachment.
func FormatIsColor(f gputypes.TextureFormat) bool {
	switch FormatClass(f) {
	case ClassDepth, ClassStencil, ClassDepthStencil:
		return false
	default:
		return true
	}
}

// DefaultClearValue returns the conventional clear value for the
// format: transparent black for color, 1.0 for depth, 0 for stencil.
func DefaultClearValue(f gputypes.TextureFormat) ClearValue {
	kind := FormatClearKind(f)
	v := ClearValue{Kind: kind}
	switch kind {
	case ClearDepth:
		v.Depth = 1
	case ClearDepthStencil:
		v.Depth = 1
	}
	return v
}
