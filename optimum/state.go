/*
 * state.go, part of goequil.
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
	"time"

	"gonum.org/v1/gonum/mat"
)

// State is the mutable iterate of an optimization calculation: the primal
// variables X, the equality-constraint duals Y, the bound duals Z, and the
// last objective evaluation F. The caller seeds it before a solve; every
// solve mutates it in place, so on return it holds the final (or last
// attempted) iterate. A State must not be shared between concurrent solves;
// use Copy for that.
type State struct {
	X []float64
	Y []float64
	Z []float64
	F ObjectiveResult
}

// Copy returns a deep copy of the state. The Hessian inside F is copied too,
// so the copy shares nothing with the original.
func (s *State) Copy() *State {
	if s == nil {
		panic("Attempted to copy a nil state")
	}
	c := new(State)
	c.X = append([]float64{}, s.X...)
	c.Y = append([]float64{}, s.Y...)
	c.Z = append([]float64{}, s.Z...)
	c.F.Val = s.F.Val
	c.F.Grad = append([]float64{}, s.F.Grad...)
	c.F.Hessian.Mode = s.F.Hessian.Mode
	c.F.Hessian.Diagonal = append([]float64{}, s.F.Hessian.Diagonal...)
	if s.F.Hessian.Dense != nil {
		c.F.Hessian.Dense = mat.DenseCopyOf(s.F.Hessian.Dense)
	}
	return c
}

// Result reports the outcome of one solve call. It is created fresh by each
// call and never mutated afterwards. Succeeded is false both for numerical
// failures and for running out of iterations; callers must inspect it before
// trusting the state.
type Result struct {
	Succeeded         bool
	Iterations        int
	Error             float64 //max of the feasibility and optimality errors at the last iterate
	Time              time.Duration
	TimeLinearSystems time.Duration
}
