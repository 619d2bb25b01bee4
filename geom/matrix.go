// Package geom holds the projective geometry used to dewarp photographed pages:
// a fixed 3x3 matrix type, the quad-to-rectangle homography and the
// quadrilateral sanitizer.
package geom

import (
	"errors"
	"fmt"
)

var ErrSingular = errors.New("geom: singular matrix")

// Mat3 is a 3x3 matrix of float64. It is a value type; At and Set use the
// 1-based (row, column) convention of the textbook formulas.
type Mat3 [3][3]float64

// Vec3 is a column vector.
type Vec3 [3]float64

func Identity() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Diag returns the diagonal matrix with entries a, b, c.
func Diag(a, b, c float64) Mat3 {
	return Mat3{
		{a, 0, 0},
		{0, b, 0},
		{0, 0, c},
	}
}

func (m Mat3) At(row, col int) float64 {
	return m[row-1][col-1]
}

func (m *Mat3) Set(row, col int, v float64) {
	m[row-1][col-1] = v
}

// Mul returns the product m·o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for i := range 3 {
		for j := range 3 {
			for k := range 3 {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

// MulVec returns the product m·v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	var r Vec3
	for i := range 3 {
		r[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return r
}

func (m Mat3) Scale(s float64) Mat3 {
	for i := range 3 {
		for j := range 3 {
			m[i][j] *= s
		}
	}
	return m
}

// Det returns the determinant by cofactor expansion along the first row.
func (m Mat3) Det() float64 {
	return m.At(1, 1)*(m.At(2, 2)*m.At(3, 3)-m.At(2, 3)*m.At(3, 2)) -
		m.At(1, 2)*(m.At(2, 1)*m.At(3, 3)-m.At(2, 3)*m.At(3, 1)) +
		m.At(1, 3)*(m.At(2, 1)*m.At(3, 2)-m.At(2, 2)*m.At(3, 1))
}

// Adj returns the adjugate, the transpose of the cofactor matrix.
func (m Mat3) Adj() Mat3 {
	var r Mat3
	r.Set(1, 1, m.At(2, 2)*m.At(3, 3)-m.At(2, 3)*m.At(3, 2))
	r.Set(1, 2, m.At(1, 3)*m.At(3, 2)-m.At(1, 2)*m.At(3, 3))
	r.Set(1, 3, m.At(1, 2)*m.At(2, 3)-m.At(1, 3)*m.At(2, 2))
	r.Set(2, 1, m.At(2, 3)*m.At(3, 1)-m.At(2, 1)*m.At(3, 3))
	r.Set(2, 2, m.At(1, 1)*m.At(3, 3)-m.At(1, 3)*m.At(3, 1))
	r.Set(2, 3, m.At(1, 3)*m.At(2, 1)-m.At(1, 1)*m.At(2, 3))
	r.Set(3, 1, m.At(2, 1)*m.At(3, 2)-m.At(2, 2)*m.At(3, 1))
	r.Set(3, 2, m.At(1, 2)*m.At(3, 1)-m.At(1, 1)*m.At(3, 2))
	r.Set(3, 3, m.At(1, 1)*m.At(2, 2)-m.At(1, 2)*m.At(2, 1))
	return r
}

// Inverse returns adj(m)/det(m). Only an exactly zero determinant is
// rejected; nearly singular input yields a numerically poor inverse.
func (m Mat3) Inverse() (Mat3, error) {
	d := m.Det()
	if d == 0 {
		return Mat3{}, ErrSingular
	}
	return m.Adj().Scale(1 / d), nil
}

func (m Mat3) String() string {
	return fmt.Sprintf("[%g %g %g; %g %g %g; %g %g %g]",
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2])
}
