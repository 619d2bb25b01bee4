package pngsquish

import (
	"math"

	"github.com/setanarut/pngsquish/geom"
)

// Dewarp resamples the region of src outlined by q into a new w x h buffer.
// q is in normalized coordinates with the origin at the bottom-left. The
// returned matrix maps q onto the output rectangle in pixel units.
//
// Every output pixel center is mapped back into src and sampled bilinearly;
// positions outside src are clamped to the nearest edge pixel.
func Dewarp(src *Buffer, q geom.Quad, w, h int) (*Buffer, geom.Mat3, error) {
	m, err := geom.ToRect(q, float64(w), float64(h))
	if err != nil {
		return nil, geom.Mat3{}, err
	}
	inv, err := m.Inverse()
	if err != nil {
		return nil, geom.Mat3{}, err
	}
	out := NewBuffer(w, h)
	sw, sh := float64(src.W), float64(src.H)
	for y := range h {
		for x := range w {
			p := geom.Transform(geom.Point{X: float64(x) + 0.5, Y: float64(h) - (float64(y) + 0.5)}, inv)
			out.Pix[pixOffset(w, x, y)] = src.bilinear(p.X*sw-0.5, (1-p.Y)*sh-0.5)
		}
	}
	return out, m, nil
}

// bilinear samples b at pixel coordinates (x, y), where integer positions
// are pixel centers.
func (b *Buffer) bilinear(x, y float64) RGB {
	x = clampFloat(x, 0, float64(b.W-1))
	y = clampFloat(y, 0, float64(b.H-1))
	x0, y0 := int(x), int(y)
	x1, y1 := min(x0+1, b.W-1), min(y0+1, b.H-1)
	fx, fy := x-float64(x0), y-float64(y0)

	c00, c10 := b.Pixel(x0, y0), b.Pixel(x1, y0)
	c01, c11 := b.Pixel(x0, y1), b.Pixel(x1, y1)
	lerp := func(v00, v10, v01, v11 uint8) uint8 {
		top := float64(v00)*(1-fx) + float64(v10)*fx
		bottom := float64(v01)*(1-fx) + float64(v11)*fx
		return uint8(math.Round(top*(1-fy) + bottom*fy))
	}
	return RGB{
		lerp(c00.R, c10.R, c01.R, c11.R),
		lerp(c00.G, c10.G, c01.G, c11.G),
		lerp(c00.B, c10.B, c01.B, c11.B),
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
