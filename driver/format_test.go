// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver_test

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcore/driver"
)

func TestFormatBytesPerPixel(t *testing.T) {
	tests := []struct {
		format gputypes.TextureFormat
		want   int
	}{
		{gputypes.TextureFormatR8Unorm, 1},
		{gputypes.TextureFormatStencil8, 1},
		{gputypes.TextureFormatRG8Unorm, 2},
		{gputypes.TextureFormatR16Float, 2},
		{gputypes.TextureFormatDepth16Unorm, 2},
		{gputypes.TextureFormatRGBA8Unorm, 4},
		{gputypes.TextureFormatBGRA8UnormSrgb, 4},
		{gputypes.TextureFormatRGB10A2Unorm, 4},
		{gputypes.TextureFormatRG11B10Ufloat, 4},
		{gputypes.TextureFormatDepth24PlusStencil8, 4},
		{gputypes.TextureFormatRG32Float, 8},
		{gputypes.TextureFormatRGBA16Float, 8},
		{gputypes.TextureFormatDepth32FloatStencil8, 8},
		{gputypes.TextureFormatRGBA32Float, 16},
		{gputypes.TextureFormatRGBA32Uint, 16},
		// No per-pixel layout: block-compressed and undefined.
		{gputypes.TextureFormatBC1RGBAUnorm, 0},
		{gputypes.TextureFormatETC2RGB8Unorm, 0},
		{gputypes.TextureFormatASTC4x4Unorm, 0},
		{gputypes.TextureFormatUndefined, 0},
	}
	for _, tt := range tests {
		if got := driver.FormatBytesPerPixel(tt.format); got != tt.want {
			t.Errorf("FormatBytesPerPixel(%v) = %d, want %d", tt.format, got, tt.want)
		}
		if valid := driver.FormatValid(tt.format); valid != (tt.want > 0) {
			t.Errorf("FormatValid(%v) = %v, want %v", tt.format, valid, tt.want > 0)
		}
	}
}

func TestFormatClass(t *testing.T) {
	tests := []struct {
		format gputypes.TextureFormat
		want   driver.NumericClass
	}{
		{gputypes.TextureFormatRGBA8Unorm, driver.ClassFloat},
		{gputypes.TextureFormatR16Float, driver.ClassFloat},
		{gputypes.TextureFormatRGB9E5Ufloat, driver.ClassFloat},
		{gputypes.TextureFormatR8Sint, driver.ClassInt},
		{gputypes.TextureFormatRGBA32Sint, driver.ClassInt},
		{gputypes.TextureFormatR8Uint, driver.ClassUint},
		{gputypes.TextureFormatRGB10A2Uint, driver.ClassUint},
		{gputypes.TextureFormatDepth16Unorm, driver.ClassDepth},
		{gputypes.TextureFormatDepth32Float, driver.ClassDepth},
		{gputypes.TextureFormatStencil8, driver.ClassStencil},
		{gputypes.TextureFormatDepth24PlusStencil8, driver.ClassDepthStencil},
		{gputypes.TextureFormatDepth32FloatStencil8, driver.ClassDepthStencil},
	}
	for _, tt := range tests {
		if got := driver.FormatClass(tt.format); got != tt.want {
			t.Errorf("FormatClass(%v) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestFormatClearKind(t *testing.T) {
	tests := []struct {
		format gputypes.TextureFormat
		want   driver.ClearKind
	}{
		{gputypes.TextureFormatRGBA8Unorm, driver.ClearColorFloat},
		{gputypes.TextureFormatRGBA8Sint, driver.ClearColorInt},
		{gputypes.TextureFormatRGBA8Uint, driver.ClearColorUint},
		{gputypes.TextureFormatDepth32Float, driver.ClearDepth},
		{gputypes.TextureFormatStencil8, driver.ClearStencil},
		{gputypes.TextureFormatDepth24PlusStencil8, driver.ClearDepthStencil},
	}
	for _, tt := range tests {
		if got := driver.FormatClearKind(tt.format); got != tt.want {
			t.Errorf("FormatClearKind(%v) = %v, want %v", tt.format, got, tt.want)
		}
	}
}
