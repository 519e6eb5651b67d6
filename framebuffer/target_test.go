package framebuffer_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcore/driver"
	"github.com/gogpu/glcore/driver/soft"
	"github.com/gogpu/glcore/framebuffer"
)

func colorConfig(size framebuffer.SizePolicy) framebuffer.Config {
	return framebuffer.Config{
		Label: "offscreen",
		Size:  size,
		Attachments: []framebuffer.Attachment{
			{Point: driver.AttachColor0, Format: gputypes.TextureFormatRGBA8Unorm},
		},
	}
}

func TestTargetRequiresAttachments(t *testing.T) {
	ctx := soft.New(64, 64)
	if _, err := framebuffer.New(ctx, framebuffer.Config{}); !errors.Is(err, framebuffer.ErrNoAttachments) {
		t.Fatalf("New = %v, want ErrNoAttachments", err)
	}
}

func TestTargetMaterializesOnFirstBind(t *testing.T) {
	ctx := soft.New(64, 64)
	tg, err := framebuffer.New(ctx, colorConfig(framebuffer.Fixed(16, 8)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tg.Destroy()

	if ctx.LiveFramebuffers() != 0 || ctx.LiveTextures() != 0 {
		t.Fatal("New allocated native objects")
	}
	if err := tg.Bind(driver.TargetDrawFramebuffer); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if ctx.LiveFramebuffers() != 1 || ctx.LiveTextures() != 1 {
		t.Fatalf("live fb=%d tex=%d, want 1 each", ctx.LiveFramebuffers(), ctx.LiveTextures())
	}
	if w, h := tg.Size(); w != 16 || h != 8 {
		t.Fatalf("Size = %dx%d, want 16x8", w, h)
	}
	if tg.ColorTexture(driver.AttachColor0).IsZero() {
		t.Fatal("ColorTexture is zero for owned texture attachment")
	}
}

func TestTargetFollowsDrawingBuffer(t *testing.T) {
	ctx := soft.New(64, 64)
	tg, err := framebuffer.New(ctx, colorConfig(framebuffer.FollowDrawingBuffer(0.5)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tg.Destroy()

	if err := tg.Bind(driver.TargetDrawFramebuffer); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if w, h := tg.Size(); w != 32 || h != 32 {
		t.Fatalf("Size = %dx%d, want 32x32", w, h)
	}
	first := tg.ColorTexture(driver.AttachColor0)

	// Drawing buffer resize forces new attachment storage on next bind.
	ctx.Resize(128, 64)
	if err := tg.Bind(driver.TargetDrawFramebuffer); err != nil {
		t.Fatalf("Bind after resize: %v", err)
	}
	if w, h := tg.Size(); w != 64 || h != 32 {
		t.Fatalf("Size = %dx%d, want 64x32", w, h)
	}
	if tg.ColorTexture(driver.AttachColor0) == first {
		t.Fatal("resize kept the old attachment texture")
	}
	if ctx.LiveTextures() != 1 {
		t.Fatalf("LiveTextures = %d, want 1 (old storage freed)", ctx.LiveTextures())
	}
}

func TestTargetResizeRebuildsFramebufferObject(t *testing.T) {
	ctx := soft.New(64, 64)
	tg, err := framebuffer.New(ctx, colorConfig(framebuffer.FollowDrawingBuffer(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tg.Destroy()

	if err := tg.Bind(driver.TargetDrawFramebuffer); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	first := ctx.BoundFramebuffer(driver.TargetDrawFramebuffer)

	ctx.Resize(32, 32)
	if err := tg.Bind(driver.TargetDrawFramebuffer); err != nil {
		t.Fatalf("Bind after resize: %v", err)
	}
	second := ctx.BoundFramebuffer(driver.TargetDrawFramebuffer)
	if second == first {
		t.Fatal("resize kept the old framebuffer object")
	}
	if ctx.LiveFramebuffers() != 1 {
		t.Fatalf("LiveFramebuffers = %d, want 1 (old object freed)", ctx.LiveFramebuffers())
	}
}

func TestTargetReadBindLeavesDrawUnbound(t *testing.T) {
	ctx := soft.New(8, 8)
	tg, err := framebuffer.New(ctx, colorConfig(framebuffer.Fixed(2, 2)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tg.Destroy()

	// First bind materializes, which attaches through a temporary draw
	// binding. That must not leak into the read-only bind the caller
	// asked for.
	if err := tg.Bind(driver.TargetReadFramebuffer); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got := ctx.BoundFramebuffer(driver.TargetDrawFramebuffer); !got.IsZero() {
		t.Fatalf("draw binding = %v, want default drawing buffer", got)
	}
	if err := tg.ClearAll(); !errors.Is(err, framebuffer.ErrNotBound) {
		t.Fatalf("ClearAll after read bind = %v, want ErrNotBound", err)
	}
}

func TestTargetClearUsesFormatDerivedValue(t *testing.T) {
	ctx := soft.New(8, 8)
	red := driver.ClearValue{Kind: driver.ClearColorFloat, Float: [4]float32{1, 0, 0, 1}}
	tg, err := framebuffer.New(ctx, framebuffer.Config{
		Size: framebuffer.Fixed(2, 2),
		Attachments: []framebuffer.Attachment{
			{Point: driver.AttachColor0, Format: gputypes.TextureFormatRGBA8Unorm, Clear: &red},
			{Point: driver.AttachDepthStencil, Format: gputypes.TextureFormatDepth24PlusStencil8, Renderbuffer: true},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tg.Destroy()

	if err := tg.ClearAll(); !errors.Is(err, framebuffer.ErrNotBound) {
		t.Fatalf("ClearAll unbound = %v, want ErrNotBound", err)
	}

	if err := tg.Bind(driver.TargetDrawFramebuffer); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if ctx.LiveRenderbuffers() != 1 {
		t.Fatalf("LiveRenderbuffers = %d, want 1", ctx.LiveRenderbuffers())
	}
	if err := tg.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}

	tex := tg.ColorTexture(driver.AttachColor0)
	got := ctx.TextureContents(tex, 0)
	want := bytes.Repeat([]byte{255, 0, 0, 255}, 4)
	if !bytes.Equal(got, want) {
		t.Fatalf("cleared contents = %v", got)
	}
}

func TestTargetReadPixels(t *testing.T) {
	ctx := soft.New(8, 8)
	tg, err := framebuffer.New(ctx, colorConfig(framebuffer.Fixed(2, 2)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tg.Destroy()

	if err := tg.Bind(driver.TargetDrawFramebuffer); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := tg.Clear(driver.AttachColor0); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	dst := make([]byte, 2*2*4)
	if err := tg.ReadPixels(0, 0, 2, 2, gputypes.TextureFormatRGBA8Unorm, dst); !errors.Is(err, framebuffer.ErrNotBound) {
		t.Fatalf("ReadPixels draw-bound only = %v, want ErrNotBound", err)
	}

	if err := tg.Bind(driver.TargetReadFramebuffer); err != nil {
		t.Fatalf("Bind read: %v", err)
	}
	if err := tg.ReadPixels(0, 0, 2, 2, gputypes.TextureFormatRGBA8Unorm, dst); err != nil {
		t.Fatalf("ReadPixels: %v", err)
	}
}

func TestTargetBlit(t *testing.T) {
	ctx := soft.New(8, 8)
	red := driver.ClearValue{Kind: driver.ClearColorFloat, Float: [4]float32{1, 0, 0, 1}}
	src, err := framebuffer.New(ctx, framebuffer.Config{
		Size: framebuffer.Fixed(2, 2),
		Attachments: []framebuffer.Attachment{
			{Point: driver.AttachColor0, Format: gputypes.TextureFormatRGBA8Unorm, Clear: &red},
		},
	})
	if err != nil {
		t.Fatalf("New src: %v", err)
	}
	defer src.Destroy()
	dst, err := framebuffer.New(ctx, colorConfig(framebuffer.Fixed(4, 4)))
	if err != nil {
		t.Fatalf("New dst: %v", err)
	}
	defer dst.Destroy()

	if err := src.Bind(driver.TargetDrawFramebuffer); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := src.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	src.Unbind(driver.TargetDrawFramebuffer)

	if err := src.BlitTo(dst, driver.FilterNearest); err != nil {
		t.Fatalf("BlitTo: %v", err)
	}
	got := ctx.TextureContents(dst.ColorTexture(driver.AttachColor0), 0)
	want := bytes.Repeat([]byte{255, 0, 0, 255}, 16)
	if !bytes.Equal(got, want) {
		t.Fatalf("blit upscale contents = %v", got)
	}
}

func TestTargetBorrowedAttachmentSurvivesDestroy(t *testing.T) {
	ctx := soft.New(8, 8)
	tex, err := ctx.CreateTexture(gputypes.TextureFormatRGBA8Unorm, 4, 4, 1)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}

	tg, err := framebuffer.New(ctx, framebuffer.Config{
		Size: framebuffer.Fixed(4, 4),
		Attachments: []framebuffer.Attachment{
			{Point: driver.AttachColor0, External: tex},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tg.Bind(driver.TargetDrawFramebuffer); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	tg.Destroy()
	if ctx.LiveTextures() != 1 {
		t.Fatalf("LiveTextures = %d, want borrowed texture kept", ctx.LiveTextures())
	}
	if ctx.LiveFramebuffers() != 0 {
		t.Fatalf("LiveFramebuffers = %d, want 0", ctx.LiveFramebuffers())
	}

	if err := tg.Bind(driver.TargetDrawFramebuffer); !errors.Is(err, framebuffer.ErrDestroyed) {
		t.Fatalf("Bind destroyed = %v, want ErrDestroyed", err)
	}
}
