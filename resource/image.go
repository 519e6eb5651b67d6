package resource

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/gputypes"
)

// FromImage converts an image into a tightly packed RGBA8 data source.
// Non-RGBA images are converted; RGBA images with padded strides are
// repacked. The resulting source covers the full image bounds.
func FromImage(img image.Image) DataSource {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*w && b.Min == (image.Point{}) {
		return FromBytes(rgba.Pix[:4*w*h])
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return FromBytes(dst.Pix)
}

// FromImageScaled converts an image into a tightly packed RGBA8 data
// source resampled to the given dimensions. Scaling uses approximate
// bi-linear interpolation, a reasonable quality/speed trade-off for
// texture preparation.
func FromImageScaled(img image.Image, width, height int) DataSource {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return FromImage(img)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return FromBytes(dst.Pix)
}

// NewTextureFromImage builds a texture descriptor sized and formatted
// for the image and queues the pixels as the base upload.
func NewTextureFromImage(img image.Image, cfg TextureConfig) (*TextureDescriptor, error) {
	b := img.Bounds()
	cfg.Width = b.Dx()
	cfg.Height = b.Dy()
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = gputypes.TextureFormatRGBA8Unorm
	}
	d, err := NewTexture(cfg)
	if err != nil {
		return nil, err
	}
	d.SetImage(FromImage(img))
	return d, nil
}
