package pngsquish

import (
	"image"
	"math"

	"github.com/setanarut/pngsquish/rng"
)

// nearest returns the index of the closest color, lowest index on ties.
func nearest(c RGB, centers []RGB) int {
	best := 0
	bestD := math.MaxInt
	for i, m := range centers {
		if d := dist2(c, m); d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

// SeedPlusPlus picks k initial centers from sample with k-means++
// (Arthur and Vassilvitskii 2007): the first uniformly, each following one
// with probability proportional to its squared distance from the nearest
// center chosen so far.
func SeedPlusPlus(gen *rng.Mix64, sample []RGB, k int) []RGB {
	n := len(sample)
	if n == 0 || k <= 0 {
		return nil
	}
	centers := make([]RGB, 0, k)
	centers = append(centers, sample[gen.Intn(n)])
	distances := make([]float64, n)
	for i := range distances {
		distances[i] = math.Inf(1)
	}
	for len(centers) < k {
		last := centers[len(centers)-1]
		total := 0.0
		for i, c := range sample {
			if distances[i] == 0 {
				continue
			}
			distances[i] = min(distances[i], float64(dist2(c, last)))
			total += distances[i]
		}
		if total == 0 {
			// every sampled color is already a center
			centers = append(centers, sample[gen.Intn(n)])
			continue
		}
		idx := gen.Weighted(distances, total)
		if idx == n || distances[idx] == 0 {
			idx = pickNonzero(gen, distances)
		}
		centers = append(centers, sample[idx])
	}
	return centers
}

// pickNonzero chooses uniformly among the positive weights. Callers make
// sure at least one exists.
func pickNonzero(gen *rng.Mix64, weights []float64) int {
	count := 0
	for _, w := range weights {
		if w > 0 {
			count++
		}
	}
	nth := gen.Intn(count)
	for i, w := range weights {
		if w > 0 {
			if nth == 0 {
				return i
			}
			nth--
		}
	}
	return len(weights) - 1
}

// Lloyd refines centers in place for at most maxIters rounds. A center that
// loses all its points keeps its previous value. It returns the number of
// rounds that changed an assignment and whether the last round was stable.
func Lloyd(sample []RGB, centers []RGB, maxIters int) (int, bool) {
	if len(sample) == 0 || len(centers) == 0 {
		return 0, true
	}
	assign := make([]int, len(sample))
	for i := range assign {
		assign[i] = -1
	}
	type acc struct {
		r, g, b, n int
	}
	sums := make([]acc, len(centers))
	for it := range maxIters {
		changed := false
		for i, c := range sample {
			if best := nearest(c, centers); assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			return it, true
		}
		clear(sums)
		for i, c := range sample {
			a := &sums[assign[i]]
			a.r += int(c.R)
			a.g += int(c.G)
			a.b += int(c.B)
			a.n++
		}
		for e, a := range sums {
			if a.n == 0 {
				continue
			}
			n := float64(a.n)
			centers[e] = RGB{
				uint8(math.Round(float64(a.r) / n)),
				uint8(math.Round(float64(a.g) / n)),
				uint8(math.Round(float64(a.b) / n)),
			}
		}
	}
	return maxIters, false
}

// Remap replaces every pixel with its nearest palette entry, including entry
// 0 so that near-background pixels fold into the background. It returns the
// indexed image and the recolored RGB buffer.
func Remap(src *Buffer, p Palette) (*image.Paletted, *Buffer) {
	indexed := image.NewPaletted(src.Bounds(), p.ColorPalette())
	out := NewBuffer(src.W, src.H)
	cache := make(map[RGB]uint8)
	for i, c := range src.Pix {
		idx, ok := cache[c]
		if !ok {
			idx = uint8(nearest(c, p[:]))
			cache[c] = idx
		}
		indexed.Pix[i] = idx
		out.Pix[i] = p[idx]
	}
	return indexed, out
}
