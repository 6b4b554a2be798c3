/*
 * kkt.go, part of goequil.
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
	"errors"
	"time"

	"gonum.org/v1/gonum/mat"
)

// KktMatrix is the left-hand side of the KKT system
//
//	[H   -At  ] [dx]   [rx + X^-1 rz]
//	[A    0   ] [dy] = [ry          ]
//
// after condensing the bound duals with dz = X^-1 (rz - Z dx). H is the
// Hessian block, A the constraint block, and X, Z the diagonal primal/dual
// scaling vectors (both of length equal to the columns of A).
type KktMatrix struct {
	H Hessian
	A *mat.Dense
	X []float64
	Z []float64
}

// KktVector is the right-hand side of the KKT system.
type KktVector struct {
	Rx []float64
	Ry []float64
	Rz []float64
}

// KktSolution is the step solving the KKT system.
type KktSolution struct {
	Dx []float64
	Dy []float64
	Dz []float64
}

// KktResult carries the timings of the last Decompose and Solve calls.
type KktResult struct {
	TimeDecompose time.Duration
	TimeSolve     time.Duration
}

// KktSolver factorizes and solves KKT systems. Decompose must be called
// before Solve, and the factorization can be reused for several right-hand
// sides. The zero value is ready to use with KktAutomatic strategy.
type KktSolver struct {
	opts       KktOptions
	res        KktResult
	decomposed bool
	dense      bool //strategy picked by the last Decompose
	n, m       int
	x, z       []float64
	//fullspace dense path
	lu mat.LU
	//rangespace diagonal path
	g   []float64 //G = H + X^-1 Z, diagonal
	a   *mat.Dense
	slu mat.LU //factorization of the Schur complement A G^-1 At
}

// SetOptions sets the factorization strategy.
func (k *KktSolver) SetOptions(opts KktOptions) { k.opts = opts }

// Result returns the timings of the last Decompose/Solve pair.
func (k *KktSolver) Result() KktResult { return k.res }

// Decompose factorizes the KKT matrix. It returns an error when the Hessian
// representation cannot be handled by the configured method; that error is a
// configuration problem, not a numerical one.
func (k *KktSolver) Decompose(lhs KktMatrix) error {
	begin := time.Now()
	k.decomposed = false
	m, n := lhs.A.Dims()
	k.n, k.m = n, m
	k.x, k.z = lhs.X, lhs.Z

	switch lhs.H.Mode {
	case HessianDense, HessianDiagonal:
	default:
		return newError(ErrHessianMode, "Decompose")
	}
	switch k.opts.Method {
	case KktAutomatic:
		k.dense = lhs.H.Mode == HessianDense
	case KktFullspaceDense:
		k.dense = true
	case KktRangespaceDiagonal:
		if lhs.H.Mode != HessianDiagonal {
			return newError(ErrKktMethod, "Decompose")
		}
		k.dense = false
	default:
		return newError(ErrKktMethod, "Decompose")
	}

	if k.dense {
		k.decomposeDense(lhs)
	} else {
		k.decomposeDiagonal(lhs)
	}
	k.decomposed = true
	k.res.TimeDecompose = time.Since(begin)
	return nil
}

// decomposeDense assembles and factorizes the full saddle-point matrix.
func (k *KktSolver) decomposeDense(lhs KktMatrix) {
	n, m := k.n, k.m
	full := mat.NewDense(n+m, n+m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			full.Set(i, j, k.hessianAt(lhs.H, i, j))
		}
		//the X^-1 Z diagonal term; zero dual scaling contributes nothing
		if lhs.Z[i] != 0 {
			full.Set(i, i, full.At(i, i)+lhs.Z[i]/lhs.X[i])
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			full.Set(j, n+i, -lhs.A.At(i, j))
			full.Set(n+i, j, lhs.A.At(i, j))
		}
	}
	k.lu.Factorize(full)
}

// decomposeDiagonal factorizes only the m x m Schur complement A G^-1 At,
// with G the diagonal H + X^-1 Z. No n x n factorization is ever built.
func (k *KktSolver) decomposeDiagonal(lhs KktMatrix) {
	n, m := k.n, k.m
	if cap(k.g) < n {
		k.g = make([]float64, n)
	}
	k.g = k.g[:n]
	for i := 0; i < n; i++ {
		k.g[i] = lhs.H.Diagonal[i]
		if lhs.Z[i] != 0 {
			k.g[i] += lhs.Z[i] / lhs.X[i]
		}
	}
	k.a = lhs.A
	schur := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			var s float64
			for l := 0; l < n; l++ {
				s += lhs.A.At(i, l) * lhs.A.At(j, l) / k.g[l]
			}
			schur.Set(i, j, s)
		}
	}
	k.slu.Factorize(schur)
}

func (k *KktSolver) hessianAt(h Hessian, i, j int) float64 {
	if h.Mode == HessianDiagonal {
		if i == j {
			return h.Diagonal[i]
		}
		return 0
	}
	return h.Dense.At(i, j)
}

// Solve computes the step for the given right-hand side using the last
// factorization. A singular or numerically broken factorization surfaces
// here as an error; the caller decides whether that is fatal.
func (k *KktSolver) Solve(rhs KktVector, sol *KktSolution) error {
	begin := time.Now()
	if !k.decomposed {
		return newError(ErrNotDecomposed, "Solve")
	}
	n, m := k.n, k.m
	//condense rz into the primal right-hand side
	rx := make([]float64, n)
	for i := 0; i < n; i++ {
		rx[i] = rhs.Rx[i]
		if rhs.Rz[i] != 0 {
			rx[i] += rhs.Rz[i] / k.x[i]
		}
	}
	sol.Dx = resize(sol.Dx, n)
	sol.Dy = resize(sol.Dy, m)
	sol.Dz = resize(sol.Dz, n)

	var err error
	if k.dense {
		err = k.solveDense(rx, rhs.Ry, sol)
	} else {
		err = k.solveDiagonal(rx, rhs.Ry, sol)
	}
	if err != nil {
		return err
	}
	//recover the bound duals
	for i := 0; i < n; i++ {
		num := rhs.Rz[i] - k.z[i]*sol.Dx[i]
		if num == 0 {
			sol.Dz[i] = 0
		} else {
			sol.Dz[i] = num / k.x[i]
		}
	}
	k.res.TimeSolve = time.Since(begin)
	return nil
}

func (k *KktSolver) solveDense(rx, ry []float64, sol *KktSolution) error {
	n, m := k.n, k.m
	b := mat.NewVecDense(n+m, nil)
	for i := 0; i < n; i++ {
		b.SetVec(i, rx[i])
	}
	for i := 0; i < m; i++ {
		b.SetVec(n+i, ry[i])
	}
	u := mat.NewVecDense(n+m, nil)
	if err := k.lu.SolveVecTo(u, false, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return err
		}
		//ill-conditioned but solved; the caller screens the step for
		//non-finite entries anyway
	}
	for i := 0; i < n; i++ {
		sol.Dx[i] = u.AtVec(i)
	}
	for i := 0; i < m; i++ {
		sol.Dy[i] = u.AtVec(n + i)
	}
	return nil
}

func (k *KktSolver) solveDiagonal(rx, ry []float64, sol *KktSolution) error {
	n, m := k.n, k.m
	//S dy = ry - A G^-1 rx
	rhs2 := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		var s float64
		for l := 0; l < n; l++ {
			s += k.a.At(i, l) * rx[l] / k.g[l]
		}
		rhs2.SetVec(i, ry[i]-s)
	}
	dy := mat.NewVecDense(m, nil)
	if err := k.slu.SolveVecTo(dy, false, rhs2); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return err
		}
	}
	for i := 0; i < m; i++ {
		sol.Dy[i] = dy.AtVec(i)
	}
	//dx = G^-1 (rx + At dy)
	for l := 0; l < n; l++ {
		s := rx[l]
		for i := 0; i < m; i++ {
			s += k.a.At(i, l) * sol.Dy[i]
		}
		sol.Dx[l] = s / k.g[l]
	}
	return nil
}

func resize(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}
