/*
 * simplex.go, part of goequil.
 *
 * Copyright 2023 The goEquil developers
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
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Simplex solves problems whose objective is linear, with the same
// Problem/State/Result contract as ActNewton. It is mostly used to produce
// cheap feasible (or linearly optimal) starting points for the Newton
// solver. The objective callback is evaluated once, at the lower bounds; its
// gradient there is taken as the (constant) cost vector, so a nonlinear
// objective silently becomes its linearization at l.
type Simplex struct{}

// NewSimplex returns a ready-to-use simplex solver.
func NewSimplex() *Simplex { return new(Simplex) }

// Feasible finds a point satisfying A x = b, x >= l, ignoring the objective.
func (s *Simplex) Feasible(problem Problem, state *State) (Result, error) {
	n, _ := problem.Dims()
	return s.solveLP(problem, state, make([]float64, n))
}

// Solve minimizes the linear objective subject to A x = b, x >= l.
func (s *Simplex) Solve(problem Problem, state *State) (Result, error) {
	if err := problem.validate(); err != nil {
		return Result{}, err
	}
	f := problem.Objective(append([]float64{}, problem.L...))
	if !allFinite(f.Grad) {
		return Result{}, newError(ErrLinearObjective, "Solve")
	}
	return s.solveLP(problem, state, f.Grad)
}

func (s *Simplex) solveLP(problem Problem, state *State, c []float64) (Result, error) {
	begin := time.Now()
	if err := problem.validate(); err != nil {
		return Result{}, err
	}
	var result Result
	n, m := problem.Dims()

	//shift to the standard form min c^t u, A u = b - A l, u >= 0
	bs := make([]float64, m)
	multiKahanSum(problem.A, problem.L, bs)
	for i := range bs {
		bs[i] = problem.B[i] - bs[i]
	}
	tlin := time.Now()
	_, u, err := lp.Simplex(c, problem.A, bs, 0, nil)
	result.TimeLinearSystems += time.Since(tlin)
	if err != nil {
		result.Time = time.Since(begin)
		return result, errDecorate(err, "solveLP")
	}

	state.X = resize(state.X, n)
	for i := range u {
		state.X[i] = u[i] + problem.L[i]
	}
	state.F = problem.Objective(state.X)

	//recover the duals from the support of the solution: A_P^t y ~ c_P,
	//then z = c - A^t y
	state.Y = resize(state.Y, m)
	var P []int
	for i, v := range u {
		if v > 0 {
			P = append(P, i)
		}
	}
	if len(P) > 0 {
		ap := subCols(problem.A, P)
		cp := gather(c, P)
		var y mat.VecDense
		errls := y.SolveVec(ap.T(), mat.NewVecDense(len(cp), cp))
		if errls == nil || isCondition(errls) {
			for i := 0; i < m; i++ {
				state.Y[i] = y.AtVec(i)
			}
		}
	}
	state.Z = resize(state.Z, n)
	for i := 0; i < n; i++ {
		state.Z[i] = c[i] - colDot(problem.A, i, state.Y)
	}

	h := make([]float64, m)
	multiKahanSum(problem.A, state.X, h)
	for i := range h {
		h[i] -= problem.B[i]
	}
	zerr := 0.0 //magnitude of the worst dual feasibility violation
	for _, v := range state.Z {
		if -v > zerr {
			zerr = -v
		}
	}
	result.Error = math.Max(norminf(h), zerr)
	result.Iterations = 1
	result.Succeeded = allFinite(state.X)
	result.Time = time.Since(begin)
	return result, nil
}

// errDecorate decorates an error that may come from outside this package.
func errDecorate(err error, caller string) error {
	type decorator interface{ Decorate(string) []string }
	if d, ok := err.(decorator); ok {
		d.Decorate(caller)
		return err
	}
	return Error{err.Error(), []string{caller}}
}
