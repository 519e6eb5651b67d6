package glcore_test

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcore/driver"
	"github.com/gogpu/glcore/resource"
	"github.com/gogpu/glcore/shader"
)

func TestBindBufferThroughEngine(t *testing.T) {
	ctx, e := newEngine(t)

	d := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes([]byte{1, 2, 3, 4}))

	h, err := e.BindBuffer(d, driver.TargetArrayBuffer)
	if err != nil {
		t.Fatalf("BindBuffer: %v", err)
	}
	if ctx.BoundBuffer(driver.TargetArrayBuffer) != h {
		t.Fatal("buffer not bound to ARRAY_BUFFER")
	}

	e.ReleaseBuffer(d, driver.TargetArrayBuffer)
	if e.Stats().Buffers.ResourceCount != 1 {
		t.Fatalf("ResourceCount = %d, want 1", e.Stats().Buffers.ResourceCount)
	}
}

func TestBindTextureThroughEngine(t *testing.T) {
	ctx, e := newEngine(t)

	d, err := resource.NewTexture(resource.TextureConfig{
		Width:  2,
		Height: 2,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Policy: resource.ReadBack(),
	})
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	defer d.Release()
	d.SetImage(resource.FromBytes(make([]byte, 16)))

	h, err := e.BindTexture(d, 3)
	if err != nil {
		t.Fatalf("BindTexture: %v", err)
	}
	if ctx.BoundTexture(3) != h {
		t.Fatal("texture not bound to unit 3")
	}
	e.ReleaseTexture(d, 3)
}

func TestUseThroughEngine(t *testing.T) {
	ctx, e := newEngine(t)

	p := &shader.Static{
		Effect:   "flat",
		Vertex:   "#version 300 es\nvoid main() {}\n",
		Fragment: "#version 300 es\nvoid main() {}\n",
	}
	prog, err := e.Use(p, nil)
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
	if ctx.CurrentProgram() != prog {
		t.Fatal("program not current after Use")
	}
}
