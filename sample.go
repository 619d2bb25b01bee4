package pngsquish

import (
	"math"
	"slices"

	"github.com/setanarut/pngsquish/rng"
	"gonum.org/v1/gonum/stat/distuv"
)

// skipThreshold is the number of records Algorithm M handles one by one
// before switching to geometric skips (Li 1994).
func skipThreshold(n int) int {
	r := math.Floor(2.07 * math.Sqrt(float64(n)))
	c := math.Floor(10.5*(3.14245+r)/math.Log((float64(n)+r)/(float64(n)-1)) - float64(n))
	return max(int(c), 0)
}

// ReservoirSample draws n elements of pop uniformly at random without
// replacement. Every n-subset is equally likely; the order of the result
// carries no meaning.
//
// The first records are handled with per-record acceptance; once the
// acceptance probability is low the scan jumps ahead by geometrically
// distributed gaps, so only O(n log(len(pop)/n)) records are touched.
func ReservoirSample[T any](gen *rng.Mix64, pop []T, n int) []T {
	if n <= 0 || len(pop) == 0 {
		return nil
	}
	if n >= len(pop) {
		return slices.Clone(pop)
	}
	size := len(pop)
	sample := slices.Clone(pop[:n])

	end := size
	if n > 1 {
		end = min(n+skipThreshold(n), size)
	}

	// The running product reaches 1 exactly when record n+t is accepted
	// with probability n/(n+t).
	index := n
	u := gen.Open()
	t := 0.0
	for ; index < end; index++ {
		t++
		u *= 1 + float64(n)/t
		if u >= 1 {
			sample[gen.Intn(n)] = pop[index]
			u = gen.Open()
		}
	}
	if index >= size {
		return sample
	}

	// Treat every record as carrying a uniform key and the reservoir as the
	// n smallest keys. After index records the largest kept key is
	// Beta(n, index-n+1) distributed.
	beta := distuv.Beta{Alpha: float64(n), Beta: float64(index - n + 1)}
	mode := (beta.Alpha - 1) / (beta.Alpha + beta.Beta - 2)
	w := gen.PDF(mode, beta.Prob)
	for {
		skip := math.Floor(math.Log(gen.Open()) / math.Log1p(-w))
		if skip >= float64(size-index) {
			return sample
		}
		index += int(skip)
		sample[gen.Intn(n)] = pop[index]
		index++
		if index >= size {
			return sample
		}
		w *= math.Exp(math.Log(gen.Open()) / float64(n))
	}
}
