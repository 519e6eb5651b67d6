// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import "fmt"

// BufferTarget is a binding target for buffer objects.
type BufferTarget int

const (
	// TargetArrayBuffer binds vertex attribute data.
	TargetArrayBuffer BufferTarget = iota

	// TargetElementArrayBuffer binds index data.
	TargetElementArrayBuffer

	// TargetUniformBuffer binds uniform block storage.
	TargetUniformBuffer

	// TargetCopyRead is the source target for buffer-to-buffer copies.
	TargetCopyRead

	// TargetCopyWrite is the destination target for buffer-to-buffer copies.
	TargetCopyWrite

	// TargetPixelPack receives pixel read-back data.
	TargetPixelPack

	// TargetPixelUnpack supplies pixel upload data.
	TargetPixelUnpack
)

// String returns the target's WebGL-style name.
func (t BufferTarget) String() string {
	switch t {
	case TargetArrayBuffer:
		return "ARRAY_BUFFER"
	case TargetElementArrayBuffer:
		return "ELEMENT_ARRAY_BUFFER"
	case TargetUniformBuffer:
		return "UNIFORM_BUFFER"
	case TargetCopyRead:
		return "COPY_READ_BUFFER"
	case TargetCopyWrite:
		return "COPY_WRITE_BUFFER"
	case TargetPixelPack:
		return "PIXEL_PACK_BUFFER"
	case TargetPixelUnpack:
		return "PIXEL_UNPACK_BUFFER"
	default:
		return fmt.Sprintf("BufferTarget(%d)", int(t))
	}
}

// UsageHint tells the context how buffer contents will be mutated.
type UsageHint int

const (
	// UsageStaticDraw marks contents written once and drawn many times.
	UsageStaticDraw UsageHint = iota

	// UsageDynamicDraw marks contents rewritten repeatedly.
	UsageDynamicDraw

	// UsageStreamDraw marks contents rewritten every frame.
	UsageStreamDraw
)

// String returns the hint's WebGL-style name.
func (u UsageHint) String() string {
	switch u {
	case UsageStaticDraw:
		return "STATIC_DRAW"
	case UsageDynamicDraw:
		return "DYNAMIC_DRAW"
	case UsageStreamDraw:
		return "STREAM_DRAW"
	default:
		return fmt.Sprintf("UsageHint(%d)", int(u))
	}
}

// Filter selects texture filtering.
type Filter int

const (
	// FilterNearest selects point sampling.
	FilterNearest Filter = iota

	// FilterLinear selects bilinear sampling.
	FilterLinear

	// FilterNearestMipmapNearest samples the nearest texel of the nearest level.
	FilterNearestMipmapNearest

	// FilterLinearMipmapLinear selects trilinear sampling.
	FilterLinearMipmapLinear
)

// String returns the filter's WebGL-style name.
func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "NEAREST"
	case FilterLinear:
		return "LINEAR"
	case FilterNearestMipmapNearest:
		return "NEAREST_MIPMAP_NEAREST"
	case FilterLinearMipmapLinear:
		return "LINEAR_MIPMAP_LINEAR"
	default:
		return fmt.Sprintf("Filter(%d)", int(f))
	}
}

// Wrap selects texture addressing outside the [0,1] range.
type Wrap int

const (
	// WrapClampToEdge clamps coordinates to the edge texel.
	WrapClampToEdge Wrap = iota

	// WrapRepeat tiles the texture.
	WrapRepeat

	// WrapMirroredRepeat tiles with alternating mirroring.
	WrapMirroredRepeat
)

// String returns the wrap mode's WebGL-style name.
func (w Wrap) String() string {
	switch w {
	case WrapClampToEdge:
		return "CLAMP_TO_EDGE"
	case WrapRepeat:
		return "REPEAT"
	case WrapMirroredRepeat:
		return "MIRRORED_REPEAT"
	default:
		return fmt.Sprintf("Wrap(%d)", int(w))
	}
}

// Compare selects the depth-comparison function for shadow samplers.
// CompareNone disables comparison sampling.
type Compare int

const (
	// CompareNone disables depth comparison.
	CompareNone Compare = iota

	// CompareLess passes when the reference is less than the stored depth.
	CompareLess

	// CompareLessEqual passes on less-than-or-equal.
	CompareLessEqual

	// CompareGreater passes on greater-than.
	CompareGreater

	// CompareAlways always passes.
	CompareAlways
)

// String returns the compare function's WebGL-style name.
func (c Compare) String() string {
	switch c {
	case CompareNone:
		return "NONE"
	case CompareLess:
		return "LESS"
	case CompareLessEqual:
		return "LEQUAL"
	case CompareGreater:
		return "GREATER"
	case CompareAlways:
		return "ALWAYS"
	default:
		return fmt.Sprintf("Compare(%d)", int(c))
	}
}

// ShaderStage identifies one programmable pipeline stage.
type ShaderStage int

const (
	// StageVertex is the vertex stage.
	StageVertex ShaderStage = iota

	// StageFragment is the fragment stage.
	StageFragment
)

// String returns the stage's WebGL-style name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "VERTEX_SHADER"
	case StageFragment:
		return "FRAGMENT_SHADER"
	default:
		return fmt.Sprintf("ShaderStage(%d)", int(s))
	}
}

// FramebufferTarget selects which side of the framebuffer binding a
// framebuffer is attached to. Read and draw bindings are independent.
type FramebufferTarget int

const (
	// TargetReadFramebuffer is the source of read/blit operations.
	TargetReadFramebuffer FramebufferTarget = iota

	// TargetDrawFramebuffer is the destination of draw/clear operations.
	TargetDrawFramebuffer
)

// String returns the target's WebGL-style name.
func (t FramebufferTarget) String() string {
	switch t {
	case TargetReadFramebuffer:
		return "READ_FRAMEBUFFER"
	case TargetDrawFramebuffer:
		return "DRAW_FRAMEBUFFER"
	default:
		return fmt.Sprintf("FramebufferTarget(%d)", int(t))
	}
}

// AttachmentPoint identifies one framebuffer attachment slot.
type AttachmentPoint int

const (
	// AttachColor0 through AttachColor3 are the color slots.
	AttachColor0 AttachmentPoint = iota
	AttachColor1
	AttachColor2
	AttachColor3

	// AttachDepth is the depth-only slot.
	AttachDepth

	// AttachStencil is the stencil-only slot.
	AttachStencil

	// AttachDepthStencil is the combined depth/stencil slot.
	AttachDepthStencil
)

// IsColor reports whether the point is one of the color slots.
func (a AttachmentPoint) IsColor() bool {
	return a >= AttachColor0 && a <= AttachColor3
}

// ColorIndex returns the color slot index, or -1 for non-color points.
func (a AttachmentPoint) ColorIndex() int {
	if !a.IsColor() {
		return -1
	}
	return int(a - AttachColor0)
}

// String returns the attachment point's WebGL-style name.
func (a AttachmentPoint) String() string {
	switch a {
	case AttachColor0, AttachColor1, AttachColor2, AttachColor3:
		return fmt.Sprintf("COLOR_ATTACHMENT%d", a.ColorIndex())
	case AttachDepth:
		return "DEPTH_ATTACHMENT"
	case AttachStencil:
		return "STENCIL_ATTACHMENT"
	case AttachDepthStencil:
		return "DEPTH_STENCIL_ATTACHMENT"
	default:
		return fmt.Sprintf("AttachmentPoint(%d)", int(a))
	}
}

// ClearKind selects how an attachment is cleared, derived from the
// numeric class of its pixel format.
type ClearKind int

const (
	// ClearColorFloat clears a float/normalized color attachment.
	ClearColorFloat ClearKind = iota

	// ClearColorInt clears a signed-integer color attachment.
	ClearColorInt

	// ClearColorUint clears an unsigned-integer color attachment.
	ClearColorUint

	// ClearDepth clears a depth attachment.
	ClearDepth

	// ClearStencil clears a stencil attachment.
	ClearStencil

	// ClearDepthStencil clears a combined depth/stencil attachment.
	ClearDepthStencil
)

// String returns a short name for the clear kind.
func (k ClearKind) String() string {
	switch k {
	case ClearColorFloat:
		return "ColorFloat"
	case ClearColorInt:
		return "ColorInt"
	case ClearColorUint:
		return "ColorUint"
	case ClearDepth:
		return "Depth"
	case ClearStencil:
		return "Stencil"
	case ClearDepthStencil:
		return "DepthStencil"
	default:
		return fmt.Sprintf("ClearKind(%d)", int(k))
	}
}

// FenceStatus is the outcome of a fence wait.
type FenceStatus int

const (
	// FenceSignaled means the GPU reached the fence.
	FenceSignaled FenceStatus = iota

	// FenceTimeout means the wait timed out before signaling.
	FenceTimeout
)

// String returns a short name for the fence status.
func (s FenceStatus) String() string {
	switch s {
	case FenceSignaled:
		return "Signaled"
	case FenceTimeout:
		return "Timeout"
	default:
		return fmt.Sprintf("FenceStatus(%d)", int(s))
	}
}
