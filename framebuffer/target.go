package framebuffer

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcore/driver"
)

// Config describes a render target.
type Config struct {
	// Label is an optional debug name.
	Label string

	// Size decides attachment dimensions at bind time. Zero value is
	// Fixed(0, 0), which clamps to 1x1; most callers want
	// FollowDrawingBuffer or an explicit Fixed size.
	Size SizePolicy

	// Attachments lists the target's attachment points.
	Attachments []Attachment
}

// ownedStorage is one allocated attachment object.
type ownedStorage struct {
	tex driver.Texture
	rb  driver.Renderbuffer
}

// Target is a framebuffer with managed attachment lifecycle.
//
// Native objects are created on first Bind. When the size policy
// resolves to new dimensions, the framebuffer object and its owned
// attachments are destroyed and rebuilt at the new size on the next
// Bind; their contents do not survive a resize.
//
// Target is not safe for concurrent use. Like the resource stores it
// belongs to the goroutine driving the frame.
type Target struct {
	ctx  driver.Context
	cfg  Config
	name string

	fb     driver.Framebuffer
	owned  map[driver.AttachmentPoint]ownedStorage
	width  int
	height int

	boundRead bool
	boundDraw bool
	destroyed bool
}

// New creates a target. No native objects are allocated until Bind.
func New(ctx driver.Context, cfg Config) (*Target, error) {
	if len(cfg.Attachments) == 0 {
		return nil, ErrNoAttachments
	}
	name := cfg.Label
	if name == "" {
		name = "target"
	}
	return &Target{
		ctx:   ctx,
		cfg:   cfg,
		name:  name,
		owned: make(map[driver.AttachmentPoint]ownedStorage),
	}, nil
}

// Size returns the dimensions of the current attachments. Zero until
// the first Bind.
func (t *Target) Size() (width, height int) { return t.width, t.height }

// ColorTexture returns the owned texture at a color attachment point,
// for sampling the target's output in a later pass. Zero when the
// point is unattached, borrowed, or renderbuffer-backed.
func (t *Target) ColorTexture(point driver.AttachmentPoint) driver.Texture {
	return t.owned[point].tex
}

// Bind materializes or resizes the target as needed and binds it at
// the given framebuffer target.
func (t *Target) Bind(target driver.FramebufferTarget) error {
	if t.destroyed {
		return ErrDestroyed
	}

	w, h := t.cfg.Size.resolve(t.ctx)
	if !t.fb.IsZero() && (w != t.width || h != t.height) {
		// Resize restarts the whole lifecycle: the framebuffer object
		// goes away with its storage and a fresh one is built below.
		t.dropOwned()
		t.ctx.DeleteFramebuffer(t.fb)
		t.fb = driver.Framebuffer{}
		slogger().Debug("target resized",
			"target", t.name, "width", w, "height", h)
	}
	if t.fb.IsZero() {
		if err := t.materialize(w, h); err != nil {
			return err
		}
	}

	t.ctx.BindFramebuffer(target, t.fb)
	if target == driver.TargetReadFramebuffer {
		t.boundRead = true
	} else {
		t.boundDraw = true
	}
	return nil
}

// Unbind restores the default drawing buffer at the given target.
func (t *Target) Unbind(target driver.FramebufferTarget) {
	t.ctx.BindFramebuffer(target, driver.Framebuffer{})
	if target == driver.TargetReadFramebuffer {
		t.boundRead = false
	} else {
		t.boundDraw = false
	}
}

// materialize creates the framebuffer object and its first attachments.
func (t *Target) materialize(w, h int) error {
	fb, err := t.ctx.CreateFramebuffer()
	if err != nil {
		return fmt.Errorf("framebuffer: create %q: %w", t.name, err)
	}
	t.fb = fb
	if err := t.allocate(w, h); err != nil {
		t.ctx.DeleteFramebuffer(t.fb)
		t.fb = driver.Framebuffer{}
		return err
	}
	slogger().Debug("target materialized",
		"target", t.name, "width", w, "height", h,
		"attachments", len(t.cfg.Attachments))
	return nil
}

// allocate creates owned storage at the given size and wires every
// attachment point. Attaching needs the framebuffer draw-bound; the
// binding is dropped again before returning so Bind alone decides
// where the target ends up bound.
func (t *Target) allocate(w, h int) error {
	t.ctx.BindFramebuffer(driver.TargetDrawFramebuffer, t.fb)
	defer t.ctx.BindFramebuffer(driver.TargetDrawFramebuffer, driver.Framebuffer{})

	var colors []driver.AttachmentPoint
	for _, a := range t.cfg.Attachments {
		if a.Point.IsColor() {
			colors = append(colors, a.Point)
		}
		switch {
		case a.borrowed():
			if err := t.ctx.FramebufferTexture(driver.TargetDrawFramebuffer, a.Point, a.External, a.ExternalLevel); err != nil {
				return fmt.Errorf("framebuffer: attach external at %s of %q: %w", a.Point, t.name, err)
			}

		case a.Renderbuffer:
			rb, err := t.ctx.CreateRenderbuffer(a.Format, w, h)
			if err != nil {
				return fmt.Errorf("framebuffer: renderbuffer at %s of %q: %w", a.Point, t.name, err)
			}
			t.owned[a.Point] = ownedStorage{rb: rb}
			if err := t.ctx.FramebufferRenderbuffer(driver.TargetDrawFramebuffer, a.Point, rb); err != nil {
				return fmt.Errorf("framebuffer: attach renderbuffer at %s of %q: %w", a.Point, t.name, err)
			}

		default:
			tex, err := t.ctx.CreateTexture(a.Format, w, h, 1)
			if err != nil {
				return fmt.Errorf("framebuffer: texture at %s of %q: %w", a.Point, t.name, err)
			}
			t.owned[a.Point] = ownedStorage{tex: tex}
			if err := t.ctx.FramebufferTexture(driver.TargetDrawFramebuffer, a.Point, tex, 0); err != nil {
				return fmt.Errorf("framebuffer: attach texture at %s of %q: %w", a.Point, t.name, err)
			}
		}
	}
	if len(colors) > 0 {
		if err := t.ctx.SetDrawBuffers(colors); err != nil {
			return fmt.Errorf("framebuffer: draw buffers of %q: %w", t.name, err)
		}
	}

	t.width, t.height = w, h
	return nil
}

// dropOwned destroys owned attachment storage, keeping the framebuffer
// object itself.
func (t *Target) dropOwned() {
	for point, st := range t.owned {
		if !st.tex.IsZero() {
			t.ctx.DeleteTexture(st.tex)
		}
		if !st.rb.IsZero() {
			t.ctx.DeleteRenderbuffer(st.rb)
		}
		delete(t.owned, point)
	}
}

// Clear clears one attachment point with its effective clear value.
// The target must be draw-bound.
func (t *Target) Clear(point driver.AttachmentPoint) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if !t.boundDraw {
		return fmt.Errorf("%w: %q must be draw-bound to clear", ErrNotBound, t.name)
	}
	for _, a := range t.cfg.Attachments {
		if a.Point == point {
			return t.ctx.ClearBuffer(point, a.clearValue())
		}
	}
	return fmt.Errorf("framebuffer: %q has no attachment at %s", t.name, point)
}

// ClearAll clears every attachment with its effective clear value.
func (t *Target) ClearAll() error {
	if t.destroyed {
		return ErrDestroyed
	}
	if !t.boundDraw {
		return fmt.Errorf("%w: %q must be draw-bound to clear", ErrNotBound, t.name)
	}
	for _, a := range t.cfg.Attachments {
		if err := t.ctx.ClearBuffer(a.Point, a.clearValue()); err != nil {
			return fmt.Errorf("framebuffer: clear %s of %q: %w", a.Point, t.name, err)
		}
	}
	return nil
}

// ReadPixels reads a rectangle of the first color attachment. The
// target must be read-bound.
func (t *Target) ReadPixels(x, y, w, h int, format gputypes.TextureFormat, dst []byte) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if !t.boundRead {
		return fmt.Errorf("%w: %q must be read-bound to read pixels", ErrNotBound, t.name)
	}
	return t.ctx.ReadPixels(x, y, w, h, format, dst)
}

// BlitTo copies this target's full color contents onto dst, scaling
// with the given filter. Both targets end up unbound from their blit
// roles afterwards.
func (t *Target) BlitTo(dst *Target, filter driver.Filter) error {
	if t.destroyed || dst.destroyed {
		return ErrDestroyed
	}
	if err := t.Bind(driver.TargetReadFramebuffer); err != nil {
		return err
	}
	if err := dst.Bind(driver.TargetDrawFramebuffer); err != nil {
		t.Unbind(driver.TargetReadFramebuffer)
		return err
	}
	err := t.ctx.BlitFramebuffer(
		0, 0, t.width, t.height,
		0, 0, dst.width, dst.height, filter)
	t.Unbind(driver.TargetReadFramebuffer)
	dst.Unbind(driver.TargetDrawFramebuffer)
	if err != nil {
		return fmt.Errorf("framebuffer: blit %q to %q: %w", t.name, dst.name, err)
	}
	return nil
}

// Destroy deletes the framebuffer and owned attachments. Borrowed
// textures are untouched. Destroy is idempotent.
func (t *Target) Destroy() {
	if t.destroyed {
		return
	}
	t.dropOwned()
	t.ctx.DeleteFramebuffer(t.fb)
	t.fb = driver.Framebuffer{}
	t.boundRead = false
	t.boundDraw = false
	t.destroyed = true
}
