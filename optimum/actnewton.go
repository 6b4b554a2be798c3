/*
 * actnewton.go, part of goequil.
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
	"time"

	"gonum.org/v1/gonum/mat"
)

// ActNewton solves min f(x) subject to A x = b, x >= l with an active-set
// Newton method: variables are partitioned into a free set F (strictly above
// their bound) and an active set L (pinned at the bound), a Newton step for
// the free variables is obtained from the KKT system of the
// equality-constrained subproblem, and the partition is revised every
// iteration, releasing at most one active variable (the one with the most
// negative bound dual) and pinning at most one free variable (the first one
// to hit its bound along the step).
//
// An ActNewton can be reused for many solves, but not concurrently: each
// concurrent solve needs its own ActNewton and State.
type ActNewton struct {
	kkt KktSolver
	out *Outputter
}

// NewActNewton returns a ready-to-use solver.
func NewActNewton() *ActNewton {
	return new(ActNewton)
}

// Copy returns an independent solver. Internal buffers and active-set
// bookkeeping are never shared, so the copy can solve concurrently with the
// original.
func (s *ActNewton) Copy() *ActNewton {
	return new(ActNewton)
}

// iteration gathers the shared mutable variables of one solve call, passed
// explicitly between the phases of the iteration loop.
type iteration struct {
	problem *Problem
	state   *State
	options *Options
	result  *Result

	n, m int
	F, L []int //free and bound-active index sets; always a partition of [0, n)

	xF     []float64 //values of the free variables, in F order
	h      []float64 //constraint residual A x - b
	gF, gL []float64 //gradient restricted to F and L
	zL     []float64 //bound duals of the active variables
	AF     *mat.Dense
	HF     Hessian

	rhs KktVector
	sol KktSolution

	alpha                  float64
	errorf, errorh, errsum float64
}

// Solve minimizes the problem starting from (and finishing into) state.
// Numerical failure and non-convergence are reported through
// Result.Succeeded; the returned error is non-nil only for configuration
// problems (malformed problem, unsupported Hessian representation), which
// abort immediately.
func (s *ActNewton) Solve(problem Problem, state *State, options *Options) (Result, error) {
	begin := time.Now()
	if options == nil {
		options = DefaultOptions()
	}
	if err := problem.validate(); err != nil {
		return Result{}, err
	}
	var result Result
	n, m := problem.Dims()

	//ensure x has dimension n and does not violate the bounds
	if len(state.X) != n {
		state.X = make([]float64, n)
	}
	for i := range state.X {
		if state.X[i] < problem.L[i] {
			state.X[i] = problem.L[i]
		}
	}
	if options.Rho != 0 {
		problem = Regularized(problem, state.X, options.Rho)
	}
	//ensure y and z have proper dimensions and initial values
	if len(state.Y) != m {
		state.Y = make([]float64, m)
	}
	if len(state.Z) != n {
		state.Z = make([]float64, n)
	}

	s.kkt.SetOptions(options.KKT)
	s.out = NewOutputter(options.Output)

	it := &iteration{
		problem: &problem,
		state:   state,
		options: options,
		result:  &result,
		n:       n,
		m:       m,
		h:       make([]float64, m),
	}
	//initial partition of the variables
	for i := 0; i < n; i++ {
		if state.X[i] == problem.L[i] {
			it.L = append(it.L, i)
		} else {
			it.F = append(it.F, i)
		}
	}
	it.xF = gather(state.X, it.F)
	it.AF = subCols(problem.A, it.F)

	if err := s.updateState(it); err != nil {
		return result, err
	}
	s.outputHeader(it)

	for {
		result.Iterations++
		if result.Iterations > options.MaxIterations {
			break
		}
		ok, err := s.newtonStep(it)
		if err != nil {
			return result, err
		}
		if !ok {
			break
		}
		s.updateIterates(it)
		if err := s.updateState(it); err != nil {
			return result, err
		}
		if updateStateFailed(it) {
			break
		}
		s.updateErrors(it)
		s.outputState(it)
		if s.converged(it) {
			break
		}
	}
	s.out.OutputHeader()

	result.Time = time.Since(begin)
	return result, nil
}

// updateState recomputes the full iterate from (xF, bounds on L), evaluates
// the objective, the constraint residual and the bound duals, and prices one
// active variable back into the free set if profitable. The returned error is
// the single fatal case: a Hessian representation the solver cannot use.
func (s *ActNewton) updateState(it *iteration) error {
	x := it.state.X
	for k, i := range it.F {
		x[i] = it.xF[k]
	}
	for _, i := range it.L {
		x[i] = it.problem.L[i]
	}

	it.state.F = it.problem.Objective(x)
	grad := it.state.F.Grad

	//compensated summation keeps the constraint residual meaningful when
	//the components of x span many orders of magnitude
	multiKahanSum(it.problem.A, x, it.h)
	for i := range it.h {
		it.h[i] -= it.problem.B[i]
	}

	//bootstrap the equality duals from a least-squares fit when unset
	if norminf(it.state.Y) == 0 && len(it.F) > 0 && it.m > 0 {
		it.gF = gather(grad, it.F)
		var y mat.VecDense
		err := y.SolveVec(it.AF.T(), mat.NewVecDense(len(it.gF), it.gF))
		if err == nil || isCondition(err) {
			for i := 0; i < it.m; i++ {
				it.state.Y[i] = y.AtVec(i)
			}
		}
	}

	//bound duals of the active variables: zL = gL - AL^t y
	it.gL = gather(grad, it.L)
	it.zL = resize(it.zL, len(it.L))
	for k, i := range it.L {
		it.zL[k] = it.gL[k] - colDot(it.problem.A, i, it.state.Y)
		it.state.Z[i] = it.zL[k]
	}

	//pricing: release the single most negative bound dual into F. With an
	//empty free set no step can be taken at all, so in that case the
	//smallest dual is released even when none is negative.
	if len(it.L) > 0 {
		iminz := 0
		for k := 1; k < len(it.zL); k++ {
			if it.zL[k] < it.zL[iminz] {
				iminz = k
			}
		}
		if it.zL[iminz] < 0 || len(it.F) == 0 {
			i := it.L[iminz]
			it.F = append(it.F, i)
			it.xF = append(it.xF, it.problem.L[i])
			it.L = swapRemoveInt(it.L, iminz)
			it.AF = subCols(it.problem.A, it.F)
		}
	}

	it.gF = gather(grad, it.F)

	//restrict the Hessian to the free variables
	hess := it.state.F.Hessian
	it.HF.Mode = hess.Mode
	switch hess.Mode {
	case HessianDense:
		if hess.Dense == nil {
			return newError(ErrHessianMode, "updateState")
		}
		it.HF.Dense = subMatrix(hess.Dense, it.F)
	case HessianDiagonal:
		it.HF.Diagonal = gather(hess.Diagonal, it.F)
	default:
		return newError(ErrHessianMode, "updateState")
	}
	return nil
}

// updateStateFailed reports a non-finite objective value or gradient.
func updateStateFailed(it *iteration) bool {
	return math.IsNaN(it.state.F.Val) || math.IsInf(it.state.F.Val, 0) ||
		!allFinite(it.state.F.Grad)
}

// newtonStep solves the KKT system for the step of the free variables and
// the duals. It returns ok == false when the step is unusable (empty free
// set, singular system, non-finite entries); a non-nil error means a
// configuration problem and is fatal.
func (s *ActNewton) newtonStep(it *iteration) (bool, error) {
	nF := len(it.F)
	if nF == 0 {
		return false, nil
	}
	zF := make([]float64, nF)
	lhs := KktMatrix{H: it.HF, A: it.AF, X: it.xF, Z: zF}
	if err := s.kkt.Decompose(lhs); err != nil {
		return false, err
	}

	it.rhs.Rx = resize(it.rhs.Rx, nF)
	for k, i := range it.F {
		it.rhs.Rx[k] = -(it.gF[k] - colDot(it.problem.A, i, it.state.Y))
	}
	it.rhs.Ry = resize(it.rhs.Ry, it.m)
	for i := range it.h {
		it.rhs.Ry[i] = -it.h[i]
	}
	it.rhs.Rz = resize(it.rhs.Rz, nF)
	for k := range it.rhs.Rz {
		it.rhs.Rz[k] = 0
	}

	if err := s.kkt.Solve(it.rhs, &it.sol); err != nil {
		return false, nil //a broken linear system is a numerical failure
	}
	kr := s.kkt.Result()
	it.result.TimeLinearSystems += kr.TimeDecompose + kr.TimeSolve

	ok := allFinite(it.sol.Dx) && allFinite(it.sol.Dy) && allFinite(it.sol.Dz)
	return ok, nil
}

// updateIterates applies the fraction-to-the-boundary step to the free
// variables and the duals, then pins the limiting variable, if any, at its
// bound. A single shared step fraction is used for every variable.
func (s *ActNewton) updateIterates(it *iteration) {
	p := make([]float64, len(it.F))
	for k, i := range it.F {
		p[k] = it.xF[k] - it.problem.L[i]
	}
	var ilimiting int
	it.alpha, ilimiting = fractionToTheBoundary(p, it.sol.Dx, 1.0)

	for k := range it.xF {
		it.xF[k] += it.alpha * it.sol.Dx[k]
	}
	for i := range it.state.Y {
		it.state.Y[i] += it.alpha * it.sol.Dy[i]
	}
	for k, i := range it.F {
		it.state.X[i] = it.xF[k]
	}

	//the limiting variable becomes active on its bound
	if ilimiting < len(it.F) {
		i := it.F[ilimiting]
		it.L = append(it.L, i)
		it.F = swapRemoveInt(it.F, ilimiting)
		it.xF = swapRemoveFloat(it.xF, ilimiting)
		it.AF = subCols(it.problem.A, it.F)
	}
}

// updateErrors computes the optimality error |gF - AF^t y|, the feasibility
// error |h| and their maximum, all in the infinity norm.
func (s *ActNewton) updateErrors(it *iteration) {
	it.errorf = 0
	for k, i := range it.F {
		r := math.Abs(it.gF[k] - colDot(it.problem.A, i, it.state.Y))
		if r > it.errorf {
			it.errorf = r
		}
	}
	it.errorh = norminf(it.h)
	it.errsum = math.Max(it.errorf, it.errorh)
	it.result.Error = it.errsum
}

func (s *ActNewton) converged(it *iteration) bool {
	if it.errsum < it.options.Tolerance {
		it.result.Succeeded = true
		return true
	}
	return false
}

func (s *ActNewton) outputHeader(it *iteration) {
	if !it.options.Output.Active {
		return
	}
	o := s.out
	opts := it.options.Output
	o.AddEntry("iter")
	o.AddEntries(opts.XPrefix, it.n, opts.XNames)
	o.AddEntries(opts.YPrefix, it.m, opts.YNames)
	o.AddEntries(opts.ZPrefix, it.n, opts.ZNames)
	o.AddEntry("f(x)")
	o.AddEntry("h(x)")
	o.AddEntry("errorf")
	o.AddEntry("errorh")
	o.AddEntry("error")
	o.AddEntry("alpha")
	o.OutputHeader()

	o.AddValueInt(it.result.Iterations)
	o.AddValues(it.state.X)
	o.AddValues(it.state.Y)
	o.AddValues(it.state.Z)
	o.AddValue(it.state.F.Val)
	o.AddValue(norminf(it.h))
	o.AddBlank()
	o.AddBlank()
	o.AddBlank()
	o.AddBlank()
	o.OutputState()
}

func (s *ActNewton) outputState(it *iteration) {
	if !it.options.Output.Active {
		return
	}
	o := s.out
	o.AddValueInt(it.result.Iterations)
	o.AddValues(it.state.X)
	o.AddValues(it.state.Y)
	o.AddValues(it.state.Z)
	o.AddValue(it.state.F.Val)
	o.AddValue(norminf(it.h))
	o.AddValue(it.errorf)
	o.AddValue(it.errorh)
	o.AddValue(it.errsum)
	o.AddValue(it.alpha)
	o.OutputState()
}

// colDot returns the dot product of the ith column of A with y.
func colDot(A *mat.Dense, i int, y []float64) float64 {
	var s float64
	for j := range y {
		s += A.At(j, i) * y[j]
	}
	return s
}

// isCondition reports whether err only flags ill-conditioning, in which case
// the solution was still computed.
func isCondition(err error) bool {
	_, ok := err.(mat.Condition)
	return ok
}
