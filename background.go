package pngsquish

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ValueMode selects how a Threshold treats the value channel.
type ValueMode int

const (
	// ModeRange requires the value difference to be within tolerance.
	ModeRange ValueMode = iota
	// ModeCompare accepts every pixel at least as light as the background
	// minus the tolerance (at most as dark in dark mode).
	ModeCompare
)

func (m ValueMode) String() string {
	switch m {
	case ModeCompare:
		return "compare"
	default:
		return "range"
	}
}

// Threshold is one background-removal rule: tolerances on the hue (degrees),
// saturation and value distance from the background color.
type Threshold struct {
	H, S, V float64
	Mode    ValueMode
	Enabled bool
}

type hsv struct {
	h, s, v float64
}

func toHSV(c RGB) hsv {
	h, s, v := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hsv()
	return hsv{h, s, v}
}

// hsvDiff takes the shorter way around the hue circle.
func hsvDiff(x, y hsv) hsv {
	h := math.Abs(x.h - y.h)
	return hsv{min(h, 360-h), math.Abs(x.s - y.s), math.Abs(x.v - y.v)}
}

func (t Threshold) matches(pixel, bg hsv, dark bool) bool {
	d := hsvDiff(pixel, bg)
	if d.h > t.H || d.s > t.S {
		return false
	}
	switch t.Mode {
	case ModeCompare:
		if dark {
			return pixel.v <= bg.v+t.V
		}
		return pixel.v >= bg.v-t.V
	default:
		return d.v <= t.V
	}
}

// DetectBackground returns the most frequent exact color. On ties the color
// that first reached the winning count during the scan is kept.
func DetectBackground(b *Buffer) RGB {
	counts := make(map[RGB]int)
	var bg RGB
	best := 0
	for _, c := range b.Pix {
		counts[c]++
		if n := counts[c]; n > best {
			best = n
			bg = c
		}
	}
	return bg
}

// MaskBackground recolors every pixel matched by the first enabled rule in
// opt.Thresholds to the background (or to BackgroundAfter when enabled).
// It returns the new buffer, the background color that was compared
// against, and the color for palette entry 0. src is not modified.
func MaskBackground(src *Buffer, opt Options) (out *Buffer, background, entry0 RGB) {
	out = src.Clone()
	if opt.BackgroundBefore.Enabled {
		background = opt.BackgroundBefore.Color
	} else {
		background = DetectBackground(src)
	}
	replacement := background
	if opt.BackgroundAfter.Enabled {
		replacement = opt.BackgroundAfter.Color
	}

	rules := make([]Threshold, 0, len(opt.Thresholds))
	for _, t := range opt.Thresholds {
		if t.Enabled {
			rules = append(rules, t)
		}
	}
	if len(rules) > 0 {
		bg := toHSV(background)
		// scanned pages repeat few colors; remember each verdict
		verdict := make(map[RGB]bool)
		for i, c := range out.Pix {
			hit, ok := verdict[c]
			if !ok {
				px := toHSV(c)
				for _, t := range rules {
					if t.matches(px, bg, opt.Dark) {
						hit = true
						break
					}
				}
				verdict[c] = hit
			}
			if hit {
				out.Pix[i] = replacement
			}
		}
	}
	return out, background, replacement
}
