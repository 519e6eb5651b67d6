// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcore/driver"
)

func (c *Context) CreateFramebuffer() (driver.Framebuffer, error) {
	id := c.id()
	c.framebuffers[id] = &framebufferObj{
		attachments: make(map[driver.AttachmentPoint]attachment),
	}
	return driver.Framebuffer{ID: id}, nil
}

func (c *Context) DeleteFramebuffer(fb driver.Framebuffer) {
	if fb.IsZero() {
		return
	}
	delete(c.framebuffers, fb.ID)
	if c.readBound == fb {
		c.readBound = driver.Framebuffer{}
	}
	if c.drawBound == fb {
		c.drawBound = driver.Framebuffer{}
	}
}

func (c *Context) BindFramebuffer(target driver.FramebufferTarget, fb driver.Framebuffer) {
	if target == driver.TargetReadFramebuffer {
		c.readBound = fb
	} else {
		c.drawBound = fb
	}
}

func (c *Context) boundFB(target driver.FramebufferTarget) (*framebufferObj, error) {
	bound := c.drawBound
	if target == driver.TargetReadFramebuffer {
		bound = c.readBound
	}
	if bound.IsZero() {
		return nil, nil // default drawing buffer
	}
	fb, ok := c.framebuffers[bound.ID]
	if !ok {
		return nil, fmt.Errorf("%w: framebuffer %d", driver.ErrInvalidHandle, bound.ID)
	}
	return fb, nil
}

func (c *Context) FramebufferTexture(target driver.FramebufferTarget, point driver.AttachmentPoint, tex driver.Texture, level int) error {
	fb, err := c.boundFB(target)
	if err != nil {
		return err
	}
	if fb == nil {
		return fmt.Errorf("%w: cannot attach to default drawing buffer", driver.ErrInvalidHandle)
	}
	if tex.IsZero() {
		delete(fb.attachments, point)
		return nil
	}
	if _, err := c.texture(tex); err != nil {
		return err
	}
	fb.attachments[point] = attachment{tex: tex, level: level}
	return nil
}

func (c *Context) FramebufferRenderbuffer(target driver.FramebufferTarget, point driver.AttachmentPoint, rb driver.Renderbuffer) error {
	fb, err := c.boundFB(target)
	if err != nil {
		return err
	}
	if fb == nil {
		return fmt.Errorf("%w: cannot attach to default drawing buffer", driver.ErrInvalidHandle)
	}
	if rb.IsZero() {
		delete(fb.attachments, point)
		return nil
	}
	if _, ok := c.renderbuffers[rb.ID]; !ok {
		return fmt.Errorf("%w: renderbuffer %d", driver.ErrInvalidHandle, rb.ID)
	}
	fb.attachments[point] = attachment{rb: rb}
	return nil
}

func (c *Context) CreateRenderbuffer(format gputypes.TextureFormat, width, height int) (driver.Renderbuffer, error) {
	if width <= 0 || height <= 0 {
		return driver.Renderbuffer{}, fmt.Errorf("%w: renderbuffer extent %dx%d",
			driver.ErrRangeOutOfBounds, width, height)
	}
	if !driver.FormatValid(format) {
		return driver.Renderbuffer{}, fmt.Errorf("%w: %v", driver.ErrUnsupportedFormat, format)
	}
	id := c.id()
	c.renderbuffers[id] = &renderbufferObj{
		format: format,
		width:  width,
		height: height,
		data:   make([]byte, width*height*driver.FormatBytesPerPixel(format)),
	}
	return driver.Renderbuffer{ID: id}, nil
}

func (c *Context) DeleteRenderbuffer(rb driver.Renderbuffer) {
	if rb.IsZero() {
		return
	}
	delete(c.renderbuffers, rb.ID)
}

// attachmentStorage resolves an attachment of the draw- or read-bound
// framebuffer to its backing bytes and extent. A nil fb means the
// default drawing buffer, which only has a color attachment.
func (c *Context) attachmentStorage(fb *framebufferObj, point driver.AttachmentPoint) ([]byte, int, int, gputypes.TextureFormat, error) {
	if fb == nil {
		if !point.IsColor() {
			return nil, 0, 0, 0, fmt.Errorf("%w: default drawing buffer has no %s",
				driver.ErrInvalidHandle, point)
		}
		return c.drawingBuf, c.drawingW, c.drawingH, gputypes.TextureFormatRGBA8Unorm, nil
	}
	at, ok := fb.attachments[point]
	if !ok {
		return nil, 0, 0, 0, fmt.Errorf("%w: no attachment at %s", driver.ErrIncompleteFramebuffer, point)
	}
	if !at.tex.IsZero() {
		t, err := c.texture(at.tex)
		if err != nil {
			return nil, 0, 0, 0, err
		}
		lw, lh := mipExtent(t.width, t.height, at.level)
		return t.levels[at.level], lw, lh, t.format, nil
	}
	rb := c.renderbuffers[at.rb.ID]
	if rb == nil {
		return nil, 0, 0, 0, fmt.Errorf("%w: renderbuffer %d", driver.ErrInvalidHandle, at.rb.ID)
	}
	return rb.data, rb.width, rb.height, rb.format, nil
}

// ClearBuffer fills the attachment's storage with the clear value.
// Only 8-bit normalized color formats get an exact fill; depth and
// stencil storage is zeroed, which is enough for lifecycle testing.
func (c *Context) ClearBuffer(point driver.AttachmentPoint, value driver.ClearValue) error {
	fb, err := c.boundFB(driver.TargetDrawFramebuffer)
	if err != nil {
		return err
	}
	data, w, h, format, err := c.attachmentStorage(fb, point)
	if err != nil {
		return err
	}
	if value.Kind == driver.ClearColorFloat && driver.FormatBytesPerPixel(format) == 4 && point.IsColor() {
		var px [4]byte
		for i, f := range value.Float {
			px[i] = floatToByte(f)
		}
		for i := 0; i < w*h; i++ {
			copy(data[i*4:], px[:])
		}
		return nil
	}
	for i := range data {
		data[i] = 0
	}
	return nil
}

func floatToByte(f float32) byte {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return byte(f*255 + 0.5)
}

func (c *Context) SetDrawBuffers(points []driver.AttachmentPoint) error {
	for _, p := range points {
		if !p.IsColor() {
			return fmt.Errorf("%w: draw buffer %s is not a color attachment",
				driver.ErrIncompleteFramebuffer, p)
		}
	}
	c.drawBuffers = append(c.drawBuffers[:0], points...)
	return nil
}

func (c *Context) ReadPixels(x, y, width, height int, format gputypes.TextureFormat, dst []byte) error {
	fb, err := c.boundFB(driver.TargetReadFramebuffer)
	if err != nil {
		return err
	}
	data, w, h, srcFormat, err := c.attachmentStorage(fb, driver.AttachColor0)
	if err != nil {
		return err
	}
	if format != srcFormat {
		return fmt.Errorf("%w: read as %v from %v attachment", driver.ErrNotSupported, format, srcFormat)
	}
	if x < 0 || y < 0 || x+width > w || y+height > h {
		return fmt.Errorf("%w: rect %dx%d at (%d,%d) in %dx%d attachment",
			driver.ErrRangeOutOfBounds, width, height, x, y, w, h)
	}
	bpp := driver.FormatBytesPerPixel(format)
	if len(dst) < width*height*bpp {
		return fmt.Errorf("%w: %d dst bytes for %dx%d read",
			driver.ErrRangeOutOfBounds, len(dst), width, height)
	}
	for row := 0; row < height; row++ {
		srcOff := ((y+row)*w + x) * bpp
		copy(dst[row*width*bpp:(row+1)*width*bpp], data[srcOff:])
	}
	return nil
}

// BlitFramebuffer copies with nearest sampling regardless of filter;
// the filter argument only matters on a real device.
func (c *Context) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, filter driver.Filter) error {
	rfb, err := c.boundFB(driver.TargetReadFramebuffer)
	if err != nil {
		return err
	}
	dfb, err := c.boundFB(driver.TargetDrawFramebuffer)
	if err != nil {
		return err
	}
	src, sw, sh, sfmt, err := c.attachmentStorage(rfb, driver.AttachColor0)
	if err != nil {
		return err
	}
	dst, dw, dh, dfmt, err := c.attachmentStorage(dfb, driver.AttachColor0)
	if err != nil {
		return err
	}
	if driver.FormatBytesPerPixel(sfmt) != driver.FormatBytesPerPixel(dfmt) {
		return fmt.Errorf("%w: blit between %v and %v", driver.ErrNotSupported, sfmt, dfmt)
	}
	if srcX0 < 0 || srcY0 < 0 || srcX1 > sw || srcY1 > sh ||
		dstX0 < 0 || dstY0 < 0 || dstX1 > dw || dstY1 > dh {
		return fmt.Errorf("%w: blit rects out of attachment bounds", driver.ErrRangeOutOfBounds)
	}
	bpp := driver.FormatBytesPerPixel(sfmt)
	srcW, srcH := srcX1-srcX0, srcY1-srcY0
	dstW, dstH := dstX1-dstX0, dstY1-dstY0
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return nil
	}
	for y := 0; y < dstH; y++ {
		sy := srcY0 + y*srcH/dstH
		for x := 0; x < dstW; x++ {
			sx := srcX0 + x*srcW/dstW
			srcOff := (sy*sw + sx) * bpp
			dstOff := ((dstY0+y)*dw + dstX0 + x) * bpp
			copy(dst[dstOff:dstOff+bpp], src[srcOff:])
		}
	}
	return nil
}

// Resize changes the default drawing buffer size, discarding contents.
func (c *Context) Resize(width, height int) {
	c.drawingW, c.drawingH = width, height
	c.drawingBuf = make([]byte, width*height*4)
}

func (c *Context) DrawingBufferSize() (width, height int) {
	return c.drawingW, c.drawingH
}

// Inspection helpers for tests.

// LiveBuffers returns how many buffer objects currently exist.
func (c *Context) LiveBuffers() int { return len(c.buffers) }

// LiveTextures returns how many texture objects currently exist.
func (c *Context) LiveTextures() int { return len(c.textures) }

// LiveFramebuffers returns how many framebuffer objects currently exist.
func (c *Context) LiveFramebuffers() int { return len(c.framebuffers) }

// BoundFramebuffer returns the framebuffer bound at target; zero means
// the default drawing buffer.
func (c *Context) BoundFramebuffer(target driver.FramebufferTarget) driver.Framebuffer {
	if target == driver.TargetReadFramebuffer {
		return c.readBound
	}
	return c.drawBound
}

// LiveRenderbuffers returns how many renderbuffer objects currently exist.
func (c *Context) LiveRenderbuffers() int { return len(c.renderbuffers) }

// BoundBuffer returns the buffer bound at target, zero if none.
func (c *Context) BoundBuffer(target driver.BufferTarget) driver.Buffer {
	return c.boundBuffers[target]
}

// UniformBase returns the buffer mounted at an indexed binding point.
func (c *Context) UniformBase(point int) driver.Buffer {
	return c.uniformBases[point]
}

// BoundTexture returns the texture bound to a unit, zero if none.
func (c *Context) BoundTexture(unit int) driver.Texture {
	return c.boundUnits[unit]
}

// CurrentProgram returns the program made current by UseProgram.
func (c *Context) CurrentProgram() driver.Program { return c.current }

// CompileCalls returns how many CompileShader calls were made.
func (c *Context) CompileCalls() int { return c.compileCalls }

// LinkCalls returns how many LinkProgram calls were made.
func (c *Context) LinkCalls() int { return c.linkCalls }

// BufferContents returns a copy of the buffer's storage.
func (c *Context) BufferContents(buf driver.Buffer) []byte {
	b, ok := c.buffers[buf.ID]
	if !ok {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// TextureContents returns a copy of one mip level's storage.
func (c *Context) TextureContents(tex driver.Texture, level int) []byte {
	t, ok := c.textures[tex.ID]
	if !ok || level < 0 || level >= len(t.levels) {
		return nil
	}
	out := make([]byte, len(t.levels[level]))
	copy(out, t.levels[level])
	return out
}
