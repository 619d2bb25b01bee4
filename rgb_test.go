package pngsquish

import (
	"image"
	"image/color"
	"testing"
)

func TestFromImage(t *testing.T) {
	deep := image.NewRGBA64(image.Rect(0, 0, 2, 1))
	deep.SetRGBA64(0, 0, color.RGBA64{0x12ff, 0x3400, 0xabcd, 0xffff})
	deep.SetRGBA64(1, 0, color.RGBA64{0xffff, 0, 0x00ff, 0xffff})

	offset := image.NewRGBA(image.Rect(5, 5, 7, 6))
	offset.SetRGBA(5, 5, color.RGBA{0x12, 0x34, 0xab, 255})
	offset.SetRGBA(6, 5, color.RGBA{255, 0, 0, 255})

	for name, img := range map[string]image.Image{"rgba64": deep, "rgba_offset": offset} {
		b := FromImage(img)
		if b.W != 2 || b.H != 1 {
			t.Fatalf("%s: size %dx%d", name, b.W, b.H)
		}
		if got := b.Pixel(0, 0); got != (RGB{0x12, 0x34, 0xab}) {
			t.Errorf("%s: pixel 0 = %v", name, got)
		}
		if got := b.Pixel(1, 0); got != (RGB{255, 0, 0}) {
			t.Errorf("%s: pixel 1 = %v", name, got)
		}
	}
}

func TestBufferImage(t *testing.T) {
	b := NewBuffer(2, 2)
	b.SetPixel(1, 0, RGB{1, 2, 3})
	if c := b.At(1, 0).(RGB); c != (RGB{1, 2, 3}) {
		t.Errorf("At = %v", c)
	}
	if _, _, _, a := b.At(5, 5).RGBA(); a != 0 {
		t.Errorf("out of bounds pixel is opaque")
	}
	rgba := b.RGBA()
	if got := rgba.RGBAAt(1, 0); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("RGBA() pixel %v", got)
	}
	if back := FromImage(rgba); back.Pixel(1, 0) != (RGB{1, 2, 3}) || back.Pixel(0, 1) != (RGB{}) {
		t.Errorf("round trip %v", back.Pix)
	}
	c := b.Clone()
	c.SetPixel(0, 0, RGB{9, 9, 9})
	if b.Pixel(0, 0) != (RGB{}) {
		t.Errorf("Clone shares pixels")
	}
}
