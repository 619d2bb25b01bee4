package geom

import (
	"errors"
	"fmt"
	"math"
)

var ErrDegenerate = errors.New("geom: degenerate quadrilateral")

// Point is a position in normalized image space, origin bottom-left and y
// increasing upward.
type Point struct {
	X, Y float64
}

// InvalidPoint marks an unset vertex.
var InvalidPoint = Point{X: -math.MaxFloat64}

// Quad lists its corners counter-clockwise from the bottom-left:
// bottom-left, bottom-right, top-right, top-left.
type Quad [4]Point

// FullFrame is the quad covering the whole image.
var FullFrame = Quad{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// ToRect computes the homography mapping q onto the rectangle
// [0, width] x [0, height]: q[0] -> (0, 0), q[1] -> (width, 0),
// q[2] -> (width, height), q[3] -> (0, height).
//
// Based on Heckbert (1989), page 20: the square-to-quad mapping is built
// from the corners, inverted, and then scaled to the rectangle.
func ToRect(q Quad, width, height float64) (Mat3, error) {
	sq, err := SquareToQuad(q)
	if err != nil {
		return Mat3{}, err
	}
	inv, err := sq.Inverse()
	if err != nil {
		return Mat3{}, fmt.Errorf("%w: %w", ErrDegenerate, err)
	}
	return Diag(width, height, 1).Mul(inv), nil
}

// SquareToQuad computes the homography mapping the unit square onto q.
func SquareToQuad(q Quad) (Mat3, error) {
	p0, p1, p2, p3 := q[0], q[1], q[2], q[3]
	dx1 := p1.X - p2.X
	dx2 := p3.X - p2.X
	sx := p0.X - p1.X - dx2
	dy1 := p1.Y - p2.Y
	dy2 := p3.Y - p2.Y
	sy := p0.Y - p1.Y - dy2
	d := dx1*dy2 - dy1*dx2
	if d == 0 {
		return Mat3{}, ErrDegenerate
	}
	m31 := (sx*dy2 - sy*dx2) / d
	m32 := (dx1*sy - dy1*sx) / d
	return Mat3{
		{p1.X - p0.X + m31*p1.X, p3.X - p0.X + m32*p3.X, p0.X},
		{p1.Y - p0.Y + m31*p1.Y, p3.Y - p0.Y + m32*p3.Y, p0.Y},
		{m31, m32, 1},
	}, nil
}

// Transform applies m to p followed by the projective divide. Points that
// map to infinity are not special-cased.
func Transform(p Point, m Mat3) Point {
	v := m.MulVec(Vec3{p.X, p.Y, 1})
	return Point{v[0] / v[2], v[1] / v[2]}
}
