package resource_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcore/resource"
)

func TestFromImageRepacksRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 1, color.RGBA{B: 255, A: 255})

	src := resource.FromImage(img)
	if src.ByteLen() != 2*2*4 {
		t.Fatalf("ByteLen = %d, want 16", src.ByteLen())
	}
	px := src.Bytes()
	if px[0] != 255 || px[3] != 255 {
		t.Fatalf("texel (0,0) = %v", px[0:4])
	}
	if px[14] != 255 {
		t.Fatalf("texel (1,1) = %v", px[12:16])
	}
}

func TestFromImageConvertsNonRGBA(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 100})

	src := resource.FromImage(img)
	if src.ByteLen() != 2*1*4 {
		t.Fatalf("ByteLen = %d, want 8", src.ByteLen())
	}
	px := src.Bytes()
	if px[0] != 100 || px[1] != 100 || px[2] != 100 || px[3] != 255 {
		t.Fatalf("texel (0,0) = %v", px[0:4])
	}
}

func TestFromImageScaled(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src := resource.FromImageScaled(img, 2, 2)
	if src.ByteLen() != 2*2*4 {
		t.Fatalf("ByteLen = %d, want 16", src.ByteLen())
	}
}

func TestNewTextureFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 5))
	d, err := resource.NewTextureFromImage(img, resource.TextureConfig{Label: "sprite"})
	if err != nil {
		t.Fatalf("NewTextureFromImage: %v", err)
	}
	defer d.Release()

	w, h := d.Size()
	if w != 3 || h != 5 {
		t.Fatalf("Size = %dx%d, want 3x5", w, h)
	}
	if d.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Fatalf("Format = %v", d.Format())
	}
	if d.Name() != "sprite" {
		t.Fatalf("Name = %q", d.Name())
	}
}
