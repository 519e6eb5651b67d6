// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcore/driver"
)

// Framebuffers on this backend are logical attachment records: render
// passes consume them as their color and depth targets. Clears happen
// at pass-begin with load-op Clear, so ClearBuffer only records the
// value for the next pass instead of touching memory.

type fbAttachment struct {
	tex   driver.Texture
	level int
	rb    driver.Renderbuffer

	clear    driver.ClearValue
	hasWrite bool
}

type framebufferMeta struct {
	attachments map[driver.AttachmentPoint]*fbAttachment
	drawBuffers []driver.AttachmentPoint
}

func (c *Context) CreateFramebuffer() (driver.Framebuffer, error) {
	id := c.id()
	c.fbos[id] = &framebufferMeta{
		attachments: make(map[driver.AttachmentPoint]*fbAttachment),
	}
	return driver.Framebuffer{ID: id}, nil
}

func (c *Context) DeleteFramebuffer(fb driver.Framebuffer) {
	if fb.IsZero() {
		return
	}
	delete(c.fbos, fb.ID)
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

func (c *Context) boundFBO(target driver.FramebufferTarget) (*framebufferMeta, error) {
	bound := c.drawBound
	if target == driver.TargetReadFramebuffer {
		bound = c.readBound
	}
	if bound.IsZero() {
		return nil, fmt.Errorf("%w: default drawing buffer is surface-managed here", driver.ErrNotSupported)
	}
	fb, ok := c.fbos[bound.ID]
	if !ok {
		return nil, fmt.Errorf("%w: framebuffer %d", driver.ErrInvalidHandle, bound.ID)
	}
	return fb, nil
}

func (c *Context) FramebufferTexture(target driver.FramebufferTarget, point driver.AttachmentPoint, tex driver.Texture, level int) error {
	fb, err := c.boundFBO(target)
	if err != nil {
		return err
	}
	if tex.IsZero() {
		delete(fb.attachments, point)
		return nil
	}
	if _, err := c.texture(tex); err != nil {
		return err
	}
	fb.attachments[point] = &fbAttachment{tex: tex, level: level}
	return nil
}

func (c *Context) FramebufferRenderbuffer(target driver.FramebufferTarget, point driver.AttachmentPoint, rb driver.Renderbuffer) error {
	fb, err := c.boundFBO(target)
	if err != nil {
		return err
	}
	if rb.IsZero() {
		delete(fb.attachments, point)
		return nil
	}
	// Renderbuffers are textures underneath; resolve through the alias.
	tex := driver.Texture{ID: rb.ID}
	if _, err := c.texture(tex); err != nil {
		return err
	}
	fb.attachments[point] = &fbAttachment{rb: rb, tex: tex}
	return nil
}

// CreateRenderbuffer allocates a render-attachment texture behind a
// renderbuffer handle; HAL has no separate renderbuffer object.
func (c *Context) CreateRenderbuffer(format gputypes.TextureFormat, width, height int) (driver.Renderbuffer, error) {
	tex, err := c.CreateTexture(format, width, height, 1)
	if err != nil {
		return driver.Renderbuffer{}, err
	}
	return driver.Renderbuffer{ID: tex.ID}, nil
}

func (c *Context) DeleteRenderbuffer(rb driver.Renderbuffer) {
	if rb.IsZero() {
		return
	}
	c.DeleteTexture(driver.Texture{ID: rb.ID})
}

// ClearBuffer records the clear value on the draw-bound attachment.
// The render layer turns it into a load-op Clear when it begins the
// next pass over this framebuffer.
func (c *Context) ClearBuffer(point driver.AttachmentPoint, value driver.ClearValue) error {
	fb, err := c.boundFBO(driver.TargetDrawFramebuffer)
	if err != nil {
		return err
	}
	at, ok := fb.attachments[point]
	if !ok {
		return fmt.Errorf("%w: no attachment at %s", driver.ErrIncompleteFramebuffer, point)
	}
	at.clear = value
	at.hasWrite = true
	return nil
}

// PendingClear reports the clear value recorded for an attachment of
// the framebuffer, consumed by the render layer at pass-begin.
func (c *Context) PendingClear(fb driver.Framebuffer, point driver.AttachmentPoint) (driver.ClearValue, bool) {
	meta, ok := c.fbos[fb.ID]
	if !ok {
		return driver.ClearValue{}, false
	}
	at, ok := meta.attachments[point]
	if !ok || !at.hasWrite {
		return driver.ClearValue{}, false
	}
	return at.clear, true
}

func (c *Context) SetDrawBuffers(points []driver.AttachmentPoint) error {
	fb, err := c.boundFBO(driver.TargetDrawFramebuffer)
	if err != nil {
		return err
	}
	for _, p := range points {
		if !p.IsColor() {
			return fmt.Errorf("%w: draw buffer %s is not a color attachment",
				driver.ErrIncompleteFramebuffer, p)
		}
	}
	fb.drawBuffers = append(fb.drawBuffers[:0], points...)
	return nil
}

// ReadPixels reads from the read-bound color attachment through the
// texture readback path.
func (c *Context) ReadPixels(x, y, width, height int, format gputypes.TextureFormat, dst []byte) error {
	fb, err := c.boundFBO(driver.TargetReadFramebuffer)
	if err != nil {
		return err
	}
	at, ok := fb.attachments[driver.AttachColor0]
	if !ok {
		return fmt.Errorf("%w: no color attachment to read", driver.ErrIncompleteFramebuffer)
	}
	t, err := c.texture(at.tex)
	if err != nil {
		return err
	}
	if format != t.format {
		return fmt.Errorf("%w: read as %v from %v attachment", driver.ErrNotSupported, format, t.format)
	}
	lw, lh := mipExtent(t.width, t.height, at.level)
	if x != 0 || y != 0 || width != lw || height != lh {
		// Sub-rect reads would need a second copy; full-level reads
		// cover the store and framebuffer layers' needs.
		return fmt.Errorf("%w: partial ReadPixels on this backend", driver.ErrNotSupported)
	}
	return c.ReadTexturePixels(at.tex, at.level, dst)
}

// BlitFramebuffer needs a render pass to express on this backend.
func (c *Context) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, filter driver.Filter) error {
	return fmt.Errorf("%w: blit needs a render pass", driver.ErrNotSupported)
}
