/*
 * utils.go, part of goequil.
 *
 * Copyright 2021 The goEquil developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package optimum

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// multiKahanSum computes res = A*x one row at a time with Kahan-compensated
// summation. The constraint residual h = A*x - b mixes amounts that span many
// orders of magnitude, so the plain dot product loses the small components.
func multiKahanSum(A *mat.Dense, x, res []float64) {
	m, n := A.Dims()
	for i := 0; i < m; i++ {
		res[i] = 0
		c := 0.0
		for j := 0; j < n; j++ {
			y := A.At(i, j)*x[j] - c
			t := res[i] + y
			c = (t - res[i]) - y
			res[i] = t
		}
	}
}

// fractionToTheBoundary returns the largest step fraction alpha in (0, tau]
// such that p + alpha*dp >= 0 componentwise, together with the index of the
// limiting component. If no component limits the step, the returned index
// equals len(p).
func fractionToTheBoundary(p, dp []float64, tau float64) (alpha float64, ilimiting int) {
	alpha = 1.0
	ilimiting = len(p)
	for i := range p {
		if dp[i] < 0 {
			a := -tau * p[i] / dp[i]
			if a < alpha {
				alpha = a
				ilimiting = i
			}
		}
	}
	return alpha, ilimiting
}

// norminf returns the infinity norm of v. An empty v has norm 0.
func norminf(v []float64) float64 {
	var r float64
	for _, x := range v {
		if a := math.Abs(x); a > r {
			r = a
		}
	}
	return r
}

// allFinite returns whether every component of v is finite.
func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// swapRemoveInt removes element i in O(1) by swapping with the last one.
// The order of the remaining elements is not preserved.
func swapRemoveInt(s []int, i int) []int {
	s[i] = s[len(s)-1]
	return s[:len(s)-1]
}

// swapRemoveFloat is swapRemoveInt for float64 slices.
func swapRemoveFloat(s []float64, i int) []float64 {
	s[i] = s[len(s)-1]
	return s[:len(s)-1]
}

// gather returns v restricted to the given indices.
func gather(v []float64, idx []int) []float64 {
	r := make([]float64, len(idx))
	for k, i := range idx {
		r[k] = v[i]
	}
	return r
}

// subCols returns the columns of A selected by idx, in idx order, or nil if
// idx is empty.
func subCols(A *mat.Dense, idx []int) *mat.Dense {
	if len(idx) == 0 {
		return nil
	}
	m, _ := A.Dims()
	r := mat.NewDense(m, len(idx), nil)
	for k, j := range idx {
		for i := 0; i < m; i++ {
			r.Set(i, k, A.At(i, j))
		}
	}
	return r
}

// subMatrix returns the square submatrix of A with rows and columns selected
// by idx, in idx order, or nil if idx is empty.
func subMatrix(A *mat.Dense, idx []int) *mat.Dense {
	if len(idx) == 0 {
		return nil
	}
	r := mat.NewDense(len(idx), len(idx), nil)
	for ki, i := range idx {
		for kj, j := range idx {
			r.Set(ki, kj, A.At(i, j))
		}
	}
	return r
}
