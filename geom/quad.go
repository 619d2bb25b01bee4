package geom

import "errors"

var ErrInvalidQuad = errors.New("geom: quadrilateral is not convex")

// turns returns, for every vertex, the cross product of its incoming and
// outgoing edges, and how many of them are positive.
func turns(p [4]Point) (cross [4]float64, positive int) {
	for i := range 4 {
		a, b, c := p[(i+3)%4], p[i], p[(i+1)%4]
		abx, aby := b.X-a.X, b.Y-a.Y
		bcx, bcy := c.X-b.X, c.Y-b.Y
		cross[i] = abx*bcy - aby*bcx
		if cross[i] > 0 {
			positive++
		}
	}
	return cross, positive
}

// Sanitize orders four clicked points as a counter-clockwise convex Quad
// starting at the bottom-left-most vertex. Clockwise input is reversed and a
// self-intersecting "bowtie" is untangled. Collinear vertices report
// ErrDegenerate and concave shapes ErrInvalidQuad; on error nothing is
// returned and the caller keeps its previous quad.
func Sanitize(in [4]Point) (Quad, error) {
	cross, positive := turns(in)
	for _, c := range cross {
		if c == 0 {
			return Quad{}, ErrDegenerate
		}
	}

	out := in
	switch positive {
	case 0:
		for i := range 4 {
			out[i] = in[3-i]
		}
	case 4:
	case 2:
		vert := -1
		for i := range 4 {
			if cross[i] < 0 && cross[(i+1)%4] < 0 {
				vert = i
				break
			}
		}
		if vert < 0 {
			return Quad{}, ErrInvalidQuad
		}
		next := (vert + 1) % 4
		out[vert], out[next] = in[next], in[vert]
		// the swap may land on either orientation
		cross, positive = turns(out)
		switch positive {
		case 0:
			swapped := out
			for i := range 4 {
				out[i] = swapped[3-i]
			}
		case 4:
		default:
			return Quad{}, ErrInvalidQuad
		}
		for _, c := range cross {
			if c == 0 {
				return Quad{}, ErrDegenerate
			}
		}
	default:
		return Quad{}, ErrInvalidQuad
	}

	first := 0
	for i := 1; i < 4; i++ {
		if out[i].X+out[i].Y < out[first].X+out[first].Y {
			first = i
		}
	}
	var q Quad
	for i := range 4 {
		q[i] = out[(first+i)%4]
	}
	return q, nil
}

// Valid reports whether q is already in the canonical form Sanitize produces.
func (q Quad) Valid() bool {
	s, err := Sanitize(q)
	return err == nil && s == q
}
