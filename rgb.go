package pngsquish

import (
	"image"
	"image/color"
	"slices"
)

// RGB is an exact 8-bit color triple.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color; RGB is always opaque.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

func rgbFromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func dist2(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Palette holds the 16 output colors. Entry 0 is the background and never
// takes part in clustering.
type Palette [16]RGB

func (p Palette) ColorPalette() color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = c
	}
	return out
}

// Buffer is a row-major RGB image with no padding. It implements image.Image
// so it can be handed to the standard library and the palette back-ends.
type Buffer struct {
	W, H int
	Pix  []RGB // len = W*H
}

func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]RGB, w*h)}
}

func pixOffset(w, x, y int) int {
	return y*w + x
}

func (b *Buffer) Pixel(x, y int) RGB {
	return b.Pix[pixOffset(b.W, x, y)]
}

func (b *Buffer) SetPixel(x, y int, c RGB) {
	b.Pix[pixOffset(b.W, x, y)] = c
}

func (b *Buffer) Clone() *Buffer {
	return &Buffer{W: b.W, H: b.H, Pix: slices.Clone(b.Pix)}
}

func (b *Buffer) ColorModel() color.Model {
	return color.RGBAModel
}

func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.W, b.H)
}

func (b *Buffer) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return color.RGBA{}
	}
	return b.Pixel(x, y)
}

// RGBA copies the buffer into an opaque *image.RGBA.
func (b *Buffer) RGBA() *image.RGBA {
	out := image.NewRGBA(b.Bounds())
	for i, c := range b.Pix {
		out.Pix[4*i+0] = c.R
		out.Pix[4*i+1] = c.G
		out.Pix[4*i+2] = c.B
		out.Pix[4*i+3] = 255
	}
	return out
}

// FromImage converts any decoded image to a Buffer. 16-bit channels keep
// their high byte; alpha is ignored.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := NewBuffer(w, h)
	if src, ok := img.(*image.RGBA); ok {
		for y := range h {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := range w {
				buf.Pix[pixOffset(w, x, y)] = RGB{row[4*x], row[4*x+1], row[4*x+2]}
			}
		}
		return buf
	}
	for y := range h {
		for x := range w {
			buf.Pix[pixOffset(w, x, y)] = rgbFromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return buf
}
