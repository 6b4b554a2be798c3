/*
 * problem.go, part of goequil.
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

//Package optimum solves linearly constrained, bound-constrained optimization
//problems of the form
//
//	min f(x)  subject to  A x = b,  x >= l
//
//with an active-set Newton method. It is the numeric core on which the
//equilibrium package builds the Gibbs energy minimization, but it knows
//nothing about chemistry: the objective is an opaque callback supplying
//value, gradient and Hessian.
package optimum

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// HessianMode tags the representation of a Hessian matrix.
type HessianMode int

const (
	// HessianDense is a full n x n matrix.
	HessianDense HessianMode = iota
	// HessianDiagonal stores only the diagonal of the matrix.
	HessianDiagonal
)

// Hessian is a tagged variant holding a Hessian matrix in one of the
// supported representations. Only the field selected by Mode is meaningful.
type Hessian struct {
	Mode     HessianMode
	Dense    *mat.Dense
	Diagonal []float64
}

// ObjectiveResult carries the value, gradient and Hessian of the objective
// function at some point.
type ObjectiveResult struct {
	Val     float64
	Grad    []float64
	Hessian Hessian
}

// ObjectiveFn evaluates the objective at x. It must be side-effect-free and
// deterministic, so convergence traces are reproducible. It is called once
// per solver iteration.
type ObjectiveFn func(x []float64) ObjectiveResult

// Problem describes the optimization problem. A is the m x n equality
// constraint matrix, B its right-hand side (length m), L the lower bounds
// (length n) and Objective the callback evaluating the objective function.
type Problem struct {
	A         *mat.Dense
	B         []float64
	L         []float64
	Objective ObjectiveFn
}

// Dims returns the number of variables n and of equality constraints m.
func (p *Problem) Dims() (n, m int) {
	if p.A == nil {
		return 0, 0
	}
	m, n = p.A.Dims()
	return n, m
}

func (p *Problem) validate() error {
	if p.A == nil || p.Objective == nil {
		return newError(ErrBadProblem, "validate")
	}
	m, n := p.A.Dims()
	if len(p.L) != n || len(p.B) != m {
		return newError(ErrDimension, "validate")
	}
	return nil
}

// Regularized returns a copy of problem whose objective carries an extra
// convex term 0.5*rho*||D o x||^2, with D = 1/sqrt(max(x0, l)) elementwise.
// The term improves the conditioning of the KKT systems when many variables
// sit near their lower bounds. With rho == 0 the problem is returned
// unchanged, so the regularization can be disabled from configuration alone.
func Regularized(problem Problem, x0 []float64, rho float64) Problem {
	if rho == 0 {
		return problem
	}
	d2 := make([]float64, len(x0))
	for i, v := range x0 {
		d := math.Max(v, problem.L[i])
		d2[i] = 1.0 / d //(1/sqrt(d))^2
	}
	inner := problem.Objective
	problem.Objective = func(x []float64) ObjectiveResult {
		f := inner(x)
		for i, xi := range x {
			f.Val += 0.5 * rho * d2[i] * xi * xi
			f.Grad[i] += rho * d2[i] * xi
		}
		switch f.Hessian.Mode {
		case HessianDiagonal:
			for i := range f.Hessian.Diagonal {
				f.Hessian.Diagonal[i] += rho * d2[i]
			}
		case HessianDense:
			for i := range d2 {
				f.Hessian.Dense.Set(i, i, f.Hessian.Dense.At(i, i)+rho*d2[i])
			}
		}
		return f
	}
	return problem
}
