/*
 * options.go, part of goequil.
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

import "io"

// KktMethod selects the factorization strategy of the KKT solver.
type KktMethod int

const (
	// KktAutomatic picks the strategy from the Hessian representation:
	// a full factorization for dense Hessians, the diagonally scaled
	// Schur complement for diagonal ones.
	KktAutomatic KktMethod = iota
	// KktFullspaceDense always assembles and factorizes the full
	// saddle-point matrix, densifying a diagonal Hessian if needed.
	KktFullspaceDense
	// KktRangespaceDiagonal requires a diagonal Hessian and never builds
	// an n x n factorization.
	KktRangespaceDiagonal
)

// KktOptions configures the KKT linear-system solver.
type KktOptions struct {
	Method KktMethod
}

// OutputOptions configures the per-iteration diagnostic table. The output is
// purely observational: it has no effect on the calculation.
type OutputOptions struct {
	Active    bool
	Writer    io.Writer //destination of the table; os.Stdout if nil
	Fixed     bool      //fixed-point notation instead of scientific
	Precision int
	Width     int
	XPrefix   string
	YPrefix   string
	ZPrefix   string
	XNames    []string //optional column names overriding XPrefix+index
	YNames    []string
	ZNames    []string
}

// Options configures a solve call.
type Options struct {
	//Tolerance is the convergence threshold on the combined (max of
	//feasibility and optimality) error.
	Tolerance float64
	//MaxIterations caps the outer iteration count; exceeding it ends the
	//solve with Succeeded == false.
	MaxIterations int
	//Rho weighs the regularization term added around the objective; zero
	//disables the regularization entirely.
	Rho    float64
	KKT    KktOptions
	Output OutputOptions
}

// DefaultOptions returns the default configuration of the solvers.
func DefaultOptions() *Options {
	o := new(Options)
	o.Tolerance = 1.0e-6
	o.MaxIterations = 200
	o.Rho = 0
	o.Output.Precision = 6
	o.Output.Width = 15
	o.Output.XPrefix = "x"
	o.Output.YPrefix = "y"
	o.Output.ZPrefix = "z"
	return o
}
