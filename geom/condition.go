package geom

import "gonum.org/v1/gonum/mat"

// Dense copies m into a gonum matrix.
func (m Mat3) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// Condition returns the 2-norm condition number of m. Large values mean the
// corner selection is close to degenerate and dewarped pixels will carry
// amplified rounding error. A singular matrix reports +Inf.
func Condition(m Mat3) float64 {
	return mat.Cond(m.Dense(), 2)
}
