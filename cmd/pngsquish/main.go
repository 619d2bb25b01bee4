// Command pngsquish turns a photographed or scanned page into a 16-color
// indexed PNG.
//
// Usage:
//
//	pngsquish [options] <input>
//
// The input may be JPEG, PNG, GIF, BMP or WebP. Without -o the result is
// written next to the input as <name>.squish.png.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/pngsquish"
	"github.com/setanarut/pngsquish/geom"
	"github.com/setanarut/pngsquish/pngenc"
	"github.com/setanarut/pngsquish/rng"
	"github.com/setanarut/pngsquish/utils"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "pngsquish: %v\n", err)
		os.Exit(1)
	}
}

// thresholds collects repeated -thr flags.
type thresholds []pngsquish.Threshold

func (t *thresholds) String() string {
	parts := make([]string, len(*t))
	for i, r := range *t {
		parts[i] = fmt.Sprintf("%g,%g,%g,%s", r.H, r.S, r.V, r.Mode)
		if !r.Enabled {
			parts[i] += ",off"
		}
	}
	return strings.Join(parts, " ")
}

// Set parses "h,s,v,mode[,off]".
func (t *thresholds) Set(s string) error {
	f := strings.Split(s, ",")
	if len(f) != 4 && len(f) != 5 {
		return fmt.Errorf("threshold %q: want h,s,v,mode[,off]", s)
	}
	var hsv [3]float64
	for i := range hsv {
		v, err := strconv.ParseFloat(strings.TrimSpace(f[i]), 64)
		if err != nil {
			return fmt.Errorf("threshold %q: %w", s, err)
		}
		hsv[i] = v
	}
	r := pngsquish.Threshold{H: hsv[0], S: hsv[1], V: hsv[2], Enabled: true}
	switch strings.TrimSpace(f[3]) {
	case "range":
		r.Mode = pngsquish.ModeRange
	case "compare":
		r.Mode = pngsquish.ModeCompare
	default:
		return fmt.Errorf("threshold %q: mode must be range or compare", s)
	}
	if len(f) == 5 {
		if strings.TrimSpace(f[4]) != "off" {
			return fmt.Errorf("threshold %q: fifth field must be off", s)
		}
		r.Enabled = false
	}
	*t = append(*t, r)
	return nil
}

func parseOverride(s string) (pngsquish.Override, error) {
	if s == "" {
		return pngsquish.Override{}, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return pngsquish.Override{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return pngsquish.Override{Enabled: true, Color: pngsquish.RGB{R: r, G: g, B: b}}, nil
}

func parseSize(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if w < 0 || h < 0 {
		return 0, 0, fmt.Errorf("size %q: negative dimension", s)
	}
	return w, h, nil
}

// parseQuad reads four normalized corners "x1,y1,x2,y2,x3,y3,x4,y4" in any
// order; origin bottom-left.
func parseQuad(s string) (*geom.Quad, error) {
	if s == "" {
		return nil, nil
	}
	f := strings.Split(s, ",")
	if len(f) != 8 {
		return nil, fmt.Errorf("quad %q: want 8 comma separated numbers", s)
	}
	var q geom.Quad
	for i := range q {
		x, err := strconv.ParseFloat(strings.TrimSpace(f[2*i]), 64)
		if err != nil {
			return nil, fmt.Errorf("quad %q: %w", s, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(f[2*i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("quad %q: %w", s, err)
		}
		q[i] = geom.Point{X: x, Y: y}
	}
	return &q, nil
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("pngsquish", flag.ContinueOnError)
	fs.SetOutput(stderr)
	def := pngsquish.DefaultOptions()
	output := fs.String("o", "", "output path (default: <input>.squish.png)")
	sampled := fs.Int("n", 0, "number of foreground colors sampled (0 = from image size)")
	iters := fs.Int("iters", def.Iters, "maximum k-means rounds")
	dark := fs.Bool("dark", false, "page is darker than the ink")
	bgBefore := fs.String("bg-before", "", "background color to compare against, #rrggbb")
	bgAfter := fs.String("bg-after", "", "color written over the background, #rrggbb")
	var thr thresholds
	fs.Var(&thr, "thr", "background rule h,s,v,range|compare[,off]; repeatable")
	size := fs.String("size", "", "output size WxH (default: input size)")
	quad := fs.String("quad", "", "page corners x1,y1,...,x4,y4 in [0,1], origin bottom-left")
	seed := fs.Uint64("seed", 0, "random seed (0 = from the OS)")
	method := fs.String("method", utils.PaletteMethodLloyd.String(), "palette method: lloyd/kmeans/dominantcolor")
	level := fs.Int("level", 0, "deflate level 1-9 (0 = best)")
	previewKB := fs.Float64("preview-kb", 0, "shrink the input to about this many KB before processing (0 = off)")
	swatch := fs.String("swatch", "", "also write the palette as a swatch PNG")
	verbose := fs.Bool("v", false, "log progress to stderr")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("missing input file\nUsage: pngsquish [options] <input>")
	}
	input := fs.Arg(0)

	img, err := utils.ReadImage(input)
	if err != nil {
		return err
	}
	if *previewKB > 0 {
		if ps := utils.PreviewSize(img.Bounds().Size(), *previewKB); ps != img.Bounds().Size() {
			img = utils.Resize(img, ps)
		}
	}

	opt := pngsquish.OptionsFromSize(img.Bounds().Size())
	if *sampled > 0 {
		opt.Sampled = *sampled
	}
	opt.Iters = *iters
	opt.Dark = *dark
	if len(thr) > 0 {
		opt.Thresholds = thr
	}
	if opt.BackgroundBefore, err = parseOverride(*bgBefore); err != nil {
		return err
	}
	if opt.BackgroundAfter, err = parseOverride(*bgAfter); err != nil {
		return err
	}
	if opt.Width, opt.Height, err = parseSize(*size); err != nil {
		return err
	}
	if opt.Quad, err = parseQuad(*quad); err != nil {
		return err
	}
	if opt.Method, err = utils.ParsePaletteMethod(*method); err != nil {
		return err
	}
	if *verbose {
		opt.Logger = log.New(stderr, "pngsquish: ", 0)
	}

	gen := rng.New(*seed)
	if *seed == 0 {
		gen = rng.NewFromEntropy()
	}

	res, err := pngsquish.Squish(pngsquish.FromImage(img), opt, gen)
	if err != nil {
		return err
	}

	if *output == "" {
		*output = strings.TrimSuffix(input, filepath.Ext(input)) + ".squish.png"
	}
	enc := pngenc.Encoder{Level: *level}
	if err := enc.WriteFile(*output, res.Indexed); err != nil {
		return err
	}
	if *verbose {
		fmt.Fprintf(stderr, "wrote %s (%dx%d)\n", *output, res.Indexed.Rect.Dx(), res.Indexed.Rect.Dy())
	}
	if *swatch != "" {
		return utils.SavePalette(res.Palette.ColorPalette(), 32, *swatch)
	}
	return nil
}
