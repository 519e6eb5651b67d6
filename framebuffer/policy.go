package framebuffer

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcore/driver"
)

// SizePolicy decides a target's attachment dimensions at bind time.
type SizePolicy struct {
	follow bool
	scale  float64
	width  int
	height int
}

// FollowDrawingBuffer sizes the target as a fraction of the default
// drawing buffer, re-evaluated on every bind. A scale of 0 means 1.
func FollowDrawingBuffer(scale float64) SizePolicy {
	if scale <= 0 {
		scale = 1
	}
	return SizePolicy{follow: true, scale: scale}
}

// Fixed sizes the target at exact dimensions, independent of the
// drawing buffer.
func Fixed(width, height int) SizePolicy {
	return SizePolicy{width: width, height: height}
}

// resolve returns the attachment dimensions for the current drawing
// buffer size. Dimensions are clamped to at least one pixel.
func (p SizePolicy) resolve(ctx driver.Context) (int, int) {
	w, h := p.width, p.height
	if p.follow {
		dw, dh := ctx.DrawingBufferSize()
		w = int(float64(dw) * p.scale)
		h = int(float64(dh) * p.scale)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Attachment configures one attachment point of a target.
//
// An attachment either owns its storage (a texture, or a renderbuffer
// when Renderbuffer is set) or borrows an external texture. Owned
// storage follows the target's size policy; borrowed textures are the
// caller's responsibility and are never destroyed or resized by the
// target.
type Attachment struct {
	// Point is the attachment point.
	Point driver.AttachmentPoint

	// Format is the pixel format of owned storage. Ignored for
	// borrowed attachments.
	Format gputypes.TextureFormat

	// Renderbuffer selects renderbuffer storage over a texture, for
	// attachments that are rendered into but never sampled.
	Renderbuffer bool

	// External borrows an existing texture at mip level ExternalLevel
	// instead of allocating owned storage.
	External      driver.Texture
	ExternalLevel int

	// Clear overrides the clear value derived from Format. Leave nil
	// for the format's conventional clear.
	Clear *driver.ClearValue
}

func (a Attachment) borrowed() bool { return !a.External.IsZero() }

// clearValue returns the effective clear value for the attachment.
func (a Attachment) clearValue() driver.ClearValue {
	if a.Clear != nil {
		return *a.Clear
	}
	return driver.DefaultClearValue(a.Format)
}
