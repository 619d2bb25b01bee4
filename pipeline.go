// Package pngsquish reduces photographed or scanned pages to 16-color
// indexed PNG files.
//
// A run straightens the page through a perspective transform, folds the
// background into a single color, clusters a random sample of the remaining
// pixels into 15 ink colors and writes a 4-bit palette PNG.
package pngsquish

import (
	"errors"
	"image"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/pngsquish/geom"
	"github.com/setanarut/pngsquish/pngenc"
	"github.com/setanarut/pngsquish/rng"
	"github.com/setanarut/pngsquish/utils"
)

// ErrEmptySample means there were no foreground pixels to cluster. Squish
// treats it as a warning and leaves entries 1-15 black.
var ErrEmptySample = errors.New("pngsquish: no foreground pixels to sample")

type Result struct {
	Dewarped   *Buffer
	Output     *Buffer
	Indexed    *image.Paletted
	Palette    Palette
	Background RGB
	// Lloyd rounds that changed an assignment.
	Iterations int
	Transform  geom.Mat3
}

// WritePNG encodes the indexed result. level is a deflate level, zero for
// best compression.
func (r *Result) WritePNG(w io.Writer, level int) error {
	enc := pngenc.Encoder{Level: level}
	return enc.Encode(w, r.Indexed)
}

// foreground lists the pixels that differ from the background entry.
func foreground(b *Buffer, bg RGB) []RGB {
	out := make([]RGB, 0, len(b.Pix)/4)
	for _, c := range b.Pix {
		if c != bg {
			out = append(out, c)
		}
	}
	return out
}

// BuildPalette fills entries 1-15 of p from the foreground of b and reports
// the number of Lloyd rounds used.
func BuildPalette(gen *rng.Mix64, b *Buffer, p *Palette, opt Options) (int, error) {
	fg := foreground(b, p[0])
	sample := ReservoirSample(gen, fg, opt.Sampled)
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	opt.logf("sampled %d of %d foreground pixels", len(sample), len(fg))

	if opt.Method != utils.PaletteMethodLloyd {
		if n := extractInto(sample, p, opt.Method); n > 0 {
			opt.logf("%s palette: %d distinct colors", opt.Method, n)
			return 0, nil
		}
		opt.logf("palette warning: %s returned empty palette, falling back to %s", opt.Method, utils.PaletteMethodLloyd)
	}

	centers := SeedPlusPlus(gen, sample, len(p)-1)
	iters, converged := Lloyd(sample, centers, opt.Iters)
	opt.logf("k-means: %d rounds, converged=%v", iters, converged)
	copy(p[1:], centers)
	return iters, nil
}

// tile lays the sample out as a roughly square image, repeating it to fill
// the last row.
func tile(sample []RGB) *Buffer {
	w := int(math.Ceil(math.Sqrt(float64(len(sample)))))
	h := (len(sample) + w - 1) / w
	b := NewBuffer(w, h)
	for i := range b.Pix {
		b.Pix[i] = sample[i%len(sample)]
	}
	return b
}

// extractInto runs a utils back-end over the tiled sample. Short results
// repeat cyclically so that every entry is defined.
func extractInto(sample []RGB, p *Palette, method utils.PaletteMethod) int {
	cols := utils.ExtractPalette(tile(sample), len(p)-1, method)
	if len(cols) == 0 {
		return 0
	}
	utils.SortPaletteByBrightness(cols)
	for i := 1; i < len(p); i++ {
		p[i] = rgbFromColorful(cols[(i-1)%len(cols)])
	}
	return len(cols)
}

func rgbFromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}

// Squish runs the whole pipeline on src, which is left untouched.
func Squish(src *Buffer, opt Options, gen *rng.Mix64) (*Result, error) {
	if src.W <= 0 || src.H <= 0 {
		return nil, pngenc.ErrDimensions
	}
	res := &Result{}
	w, h := opt.outputSize(src)

	switch {
	case opt.Quad != nil:
		q, err := geom.Sanitize(*opt.Quad)
		if err != nil {
			return nil, err
		}
		if res.Dewarped, res.Transform, err = Dewarp(src, q, w, h); err != nil {
			return nil, err
		}
		opt.logf("homography condition number %.3g", geom.Condition(res.Transform))
	case w != src.W || h != src.H:
		var err error
		if res.Dewarped, res.Transform, err = Dewarp(src, geom.FullFrame, w, h); err != nil {
			return nil, err
		}
	default:
		res.Dewarped = src.Clone()
		res.Transform = geom.Diag(float64(w), float64(h), 1)
	}

	masked, bg, entry0 := MaskBackground(res.Dewarped, opt)
	res.Background = bg
	res.Palette[0] = entry0
	opt.logf("background %v, entry 0 %v", bg, entry0)

	if opt.Palette != nil {
		copy(res.Palette[1:], opt.Palette[1:])
	} else {
		iters, err := BuildPalette(gen, masked, &res.Palette, opt)
		switch {
		case errors.Is(err, ErrEmptySample):
			opt.logf("palette warning: %v", err)
		case err != nil:
			return nil, err
		}
		res.Iterations = iters
	}

	res.Indexed, res.Output = Remap(masked, res.Palette)
	return res, nil
}
