package pngsquish

import (
	"image"
	"log"

	"github.com/setanarut/pngsquish/geom"
	"github.com/setanarut/pngsquish/utils"
)

// Override replaces an automatically chosen color when Enabled.
type Override struct {
	Enabled bool
	Color   RGB
}

type Options struct {
	// Number of foreground pixels drawn for clustering.
	// Ideal start: 1000. Higher values cost time linearly in Lloyd rounds.
	Sampled int
	// Upper bound on Lloyd rounds.
	// Ideal start: 24-40. Clean scans usually settle in under 15.
	Iters int
	// Dark pages: the background is darker than the ink. Only affects
	// ModeCompare rules.
	Dark bool
	// Background color compared against instead of the most frequent one.
	BackgroundBefore Override
	// Color written over masked pixels and used as palette entry 0.
	BackgroundAfter Override
	// Masking rules, tried in order; the first enabled match wins.
	Thresholds []Threshold
	// Output size in pixels. Zero means the input size.
	Width, Height int
	// Region of the input to straighten, in normalized coordinates. nil
	// keeps the full frame.
	Quad *geom.Quad
	// Fixed palette. Entries 1-15 are used verbatim and clustering is
	// skipped; entry 0 still follows background detection.
	Palette *Palette
	// Palette back-end for entries 1-15.
	Method utils.PaletteMethod
	// Progress and fallback messages. nil is silent.
	Logger *log.Logger
}

// DefaultThreshold treats anything close in hue and saturation and within
// 0.2 in value of the background as background.
var DefaultThreshold = Threshold{H: 30, S: 0.2, V: 0.2, Mode: ModeRange, Enabled: true}

func DefaultOptions() Options {
	return Options{
		Sampled:    1000,
		Iters:      32,
		Thresholds: []Threshold{DefaultThreshold},
		Method:     utils.PaletteMethodLloyd,
	}
}

// OptionsFromSize grows the sample for large pages so that thin strokes stay
// represented.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	pixels := size.X * size.Y
	switch {
	case pixels <= 512*512:
		opt.Sampled = 500
	case pixels > 1920*1080:
		opt.Sampled = min(4000, pixels/2000)
	}
	return opt
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}

// outputSize resolves zero dimensions against the input.
func (o Options) outputSize(src *Buffer) (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = src.W
	}
	if h <= 0 {
		h = src.H
	}
	return w, h
}
