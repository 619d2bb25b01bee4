package utils

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// PaletteMethod selects how palette entries 1-15 are derived from the
// sampled foreground colors.
type PaletteMethod int

const (
	// PaletteMethodLloyd runs k-means++ seeding and Lloyd refinement in RGB.
	PaletteMethodLloyd PaletteMethod = iota
	PaletteMethodKMeans
	PaletteMethodDominantColor
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	case PaletteMethodDominantColor:
		return "dominantcolor"
	default:
		return "lloyd"
	}
}

func ParsePaletteMethod(s string) (PaletteMethod, error) {
	for _, m := range []PaletteMethod{PaletteMethodLloyd, PaletteMethodKMeans, PaletteMethodDominantColor} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown palette method %q", s)
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to brightest by
// relative luminance.
func SortPaletteByBrightness(palette []colorful.Color) {
	luma := func(c colorful.Color) float64 {
		r, g, b := c.LinearRgb()
		return 0.2126*r + 0.7152*g + 0.0722*b
	}
	slices.SortStableFunc(palette, func(a, b colorful.Color) int {
		ya, yb := luma(a), luma(b)
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
}

// ExtractPalette returns up to k colors from img with the given back-end.
// PaletteMethodLloyd is handled by the caller and yields nil here, as does a
// back-end that found nothing.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodKMeans:
		return ExtractKMeansPalette(img, k)
	case PaletteMethodDominantColor:
		return ExtractDominantPalette(img, k)
	default:
		return nil
	}
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 || img.Bounds().Empty() {
		return nil
	}
	found := dominantcolor.FindWeight(img, max(24, k*8))
	weighted := make([]weightedColor, 0, len(found))
	for _, c := range found {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{Col: col, Weight: c.Weight})
	}
	return SelectDiverseWeightedColors(weighted, k)
}

// ExtractKMeansPalette over-partitions img into 4k clusters and keeps the k
// most distinct, population-weighted centers. Every pixel is used; callers
// pass an already sampled strip.
func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	dataset := make(clusters.Observations, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / 0xffff,
				float64(g) / 0xffff,
				float64(bl) / 0xffff,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, min(max(k*4, k+2), len(dataset)))
	if err != nil {
		return nil
	}
	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		weighted = append(weighted, weightedColor{
			Col:    colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]},
			Weight: float64(len(c.Observations)),
		})
	}
	return SelectDiverseWeightedColors(weighted, k)
}

// SelectDiverseWeightedColors greedily picks k candidates, starting with the
// heaviest, each time taking the one farthest in Lab from those already
// picked, scaled by its relative weight.
func SelectDiverseWeightedColors(cands []weightedColor, k int) []colorful.Color {
	k = min(k, len(cands))
	if k <= 0 {
		return nil
	}
	cols := make([]colorful.Color, len(cands))
	weights := make([]float64, len(cands))
	maxW := 0.0
	for i, c := range cands {
		cols[i] = c.Col.Clamped()
		weights[i] = max(c.Weight, 1e-6)
		maxW = max(maxW, weights[i])
	}

	// nearest[i] is the squared Lab distance from i to the closest pick.
	nearest := make([]float64, len(cands))
	for i := range nearest {
		nearest[i] = math.Inf(1)
	}
	picked := make([]bool, len(cands))
	out := make([]colorful.Color, 0, k)
	next := 0
	for i, w := range weights {
		if w > weights[next] {
			next = i
		}
	}
	for {
		picked[next] = true
		out = append(out, cols[next])
		if len(out) == k {
			return out
		}
		l0, a0, b0 := cols[next].Lab()
		best, bestScore := -1, -1.0
		for i := range cols {
			if picked[i] {
				continue
			}
			l, a, b := cols[i].Lab()
			d := (l-l0)*(l-l0) + (a-a0)*(a-a0) + (b-b0)*(b-b0)
			nearest[i] = min(nearest[i], d)
			score := math.Sqrt(nearest[i]) * (0.55 + 0.45*math.Sqrt(weights[i]/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			return out
		}
		next = best
	}
}

// SavePalette writes the colors as a strip of square swatches.
func SavePalette(palette []color.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		rgba.A = 255
		for y := range tileSize {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				img.SetRGBA(x, y, rgba)
			}
		}
	}
	return SaveImage(img, filename)
}
