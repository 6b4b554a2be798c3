/*
 * errors.go, part of goequil.
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

// Error is the concrete error type of this package. The only errors this
// package returns are configuration errors: a malformed problem, or an
// objective supplying a Hessian representation the solvers cannot use.
// Numerical trouble (non-finite iterates, singular systems, too many
// iterations) is never an error; it is reported through Result.Succeeded.
type Error struct {
	msg  string
	deco []string
}

func (err Error) Error() string { return err.msg }

// Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func newError(msg, caller string) Error {
	return Error{msg, []string{caller}}
}

// Messages for the errors returned by this package.
const (
	ErrBadProblem      = "optimum: problem needs a constraint matrix and an objective function"
	ErrDimension       = "optimum: dimensions of A, b and l do not agree"
	ErrHessianMode     = "optimum: only Dense and Diagonal Hessian matrices are supported"
	ErrKktMethod       = "optimum: KKT method not usable with the given Hessian representation"
	ErrNotDecomposed   = "optimum: Solve called before a successful Decompose"
	ErrLinearObjective = "optimum: the simplex solver needs a linear objective"
)
