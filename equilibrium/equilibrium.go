/*
 * equilibrium.go, part of goequil.
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

//Package equilibrium computes the equilibrium composition of a chemical
//system by Gibbs energy minimization: the amounts n of all species minimize
//G(n) subject to the element balance W n = b and n >= 0. The minimization is
//delegated to the optimum package; this package only assembles the problem
//(ideal-solution chemical potentials, element balance from the current
//state) and maps the solution back into the chemical state.
package equilibrium

import (
	"fmt"
	"math"

	equil "github.com/goequil/goequil"
	"github.com/goequil/goequil/optimum"
)

// R is the universal gas constant, in J/(mol*K).
const R = 8.31446261815324

// Options configures an equilibrium solver.
type Options struct {
	//Epsilon is the lower bound imposed on every species amount. A strictly
	//positive value keeps the logarithmic chemical potentials finite.
	Epsilon float64
	//HotStart seeds each solve with the amounts and potentials already in
	//the state. With HotStart false every solve is preceded by the LP
	//approximation, which is safer for states far from equilibrium.
	HotStart bool
	//Optimum is forwarded to the underlying optimization solver.
	Optimum *optimum.Options
}

// DefaultOptions returns the default equilibrium configuration.
func DefaultOptions() *Options {
	o := new(Options)
	o.Epsilon = 1.0e-20
	o.HotStart = true
	o.Optimum = optimum.DefaultOptions()
	return o
}

// Error is the concrete error type of this package.
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

// Messages for the errors returned by this package.
const (
	ErrNilSystem   = "equilibrium: nil ChemicalSystem"
	ErrWrongSystem = "equilibrium: state belongs to a different system"
)

// Solver computes equilibrium states of one chemical system. It can be
// reused for many solves but not concurrently; concurrent calculations need
// one Solver and one ChemicalState each.
type Solver struct {
	system  *equil.ChemicalSystem
	newton  *optimum.ActNewton
	simplex *optimum.Simplex
	opts    *Options
}

// NewSolver returns an equilibrium solver for the given system. Passing nil
// options selects DefaultOptions.
func NewSolver(system *equil.ChemicalSystem, opts *Options) (*Solver, error) {
	if system == nil {
		return nil, Error{ErrNilSystem, []string{"NewSolver"}}
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	s := new(Solver)
	s.system = system
	s.newton = optimum.NewActNewton()
	s.simplex = optimum.NewSimplex()
	s.opts = opts
	return s, nil
}

// GibbsObjective returns the normalized ideal-solution Gibbs energy G/RT of
// the system at the given temperature and pressure, as an objective for the
// optimum package:
//
//	G/RT = sum_i n_i (mu0_i/RT + ln(n_i/N_phase))
//
// with analytic gradient mu_i/RT and the diagonal Hessian approximation
// 1/n_i, which is what makes the KKT systems cheap for large systems.
func (s *Solver) GibbsObjective(T, P float64) optimum.ObjectiveFn {
	sys := s.system
	nsp := sys.NumSpecies()
	eps := s.opts.Epsilon
	mu0 := make([]float64, nsp) //mu0/RT
	for i := 0; i < nsp; i++ {
		mu0[i] = sys.Species(i).G0(T, P) / (R * T)
	}
	return func(n []float64) optimum.ObjectiveResult {
		var f optimum.ObjectiveResult
		f.Grad = make([]float64, nsp)
		f.Hessian.Mode = optimum.HessianDiagonal
		f.Hessian.Diagonal = make([]float64, nsp)
		for iph := 0; iph < sys.NumPhases(); iph++ {
			first, last := sys.PhaseSpeciesRange(iph)
			var total float64
			for j := first; j < last; j++ {
				total += math.Max(n[j], eps)
			}
			for j := first; j < last; j++ {
				nj := math.Max(n[j], eps)
				mu := mu0[j] + math.Log(nj/total)
				f.Val += nj * mu
				f.Grad[j] = mu
				f.Hessian.Diagonal[j] = 1.0 / nj
			}
		}
		return f
	}
}

// Problem assembles the Gibbs minimization problem for the element amounts
// currently held by state: A is the formula matrix, b = W n, and the lower
// bounds are Epsilon everywhere.
func (s *Solver) Problem(state *equil.ChemicalState) optimum.Problem {
	nsp := s.system.NumSpecies()
	l := make([]float64, nsp)
	for i := range l {
		l[i] = s.opts.Epsilon
	}
	return optimum.Problem{
		A:         s.system.FormulaMatrix(),
		B:         state.ElementAmounts(),
		L:         l,
		Objective: s.GibbsObjective(state.Temperature(), state.Pressure()),
	}
}

// Solve computes the equilibrium composition with the element amounts,
// temperature and pressure of state, and stores the equilibrium amounts and
// the element and species potentials back into it. The current amounts and
// potentials of state seed the calculation, so a state near equilibrium
// converges in very few iterations. Like the underlying solver, Solve
// reports numerical failure through Result.Succeeded and reserves non-nil
// errors for configuration problems.
func (s *Solver) Solve(state *equil.ChemicalState) (optimum.Result, error) {
	if state.System() != s.system {
		return optimum.Result{}, Error{ErrWrongSystem, []string{"Solve"}}
	}
	if !s.opts.HotStart {
		if _, err := s.Approximate(state); err != nil {
			return optimum.Result{}, errDecorate(err, "Solve")
		}
	}
	problem := s.Problem(state)
	ostate := &optimum.State{
		X: append([]float64{}, state.SpeciesAmounts()...),
		Y: append([]float64{}, state.ElementPotentials()...),
		Z: append([]float64{}, state.SpeciesPotentials()...),
	}
	result, err := s.newton.Solve(problem, ostate, s.opts.Optimum)
	if err != nil {
		return result, errDecorate(err, "Solve")
	}
	//the partial iterate is stored even on failure, for inspection
	if err := s.storeState(state, ostate); err != nil {
		return result, errDecorate(err, "Solve")
	}
	return result, nil
}

// Approximate seeds state with the solution of the linearized Gibbs problem
// (an LP with the standard chemical potentials as costs), a cheap cold-start
// for Solve.
func (s *Solver) Approximate(state *equil.ChemicalState) (optimum.Result, error) {
	if state.System() != s.system {
		return optimum.Result{}, Error{ErrWrongSystem, []string{"Approximate"}}
	}
	T, P := state.Temperature(), state.Pressure()
	sys := s.system
	nsp := sys.NumSpecies()
	c := make([]float64, nsp)
	for i := 0; i < nsp; i++ {
		c[i] = sys.Species(i).G0(T, P) / (R * T)
	}
	problem := s.Problem(state)
	problem.Objective = func(n []float64) optimum.ObjectiveResult {
		var f optimum.ObjectiveResult
		f.Grad = append([]float64{}, c...)
		for i, v := range n {
			f.Val += c[i] * v
		}
		f.Hessian.Mode = optimum.HessianDiagonal
		f.Hessian.Diagonal = make([]float64, nsp)
		return f
	}
	var ostate optimum.State
	result, err := s.simplex.Solve(problem, &ostate)
	if err != nil {
		return result, errDecorate(err, "Approximate")
	}
	if err := s.storeState(state, &ostate); err != nil {
		return result, errDecorate(err, "Approximate")
	}
	return result, nil
}

func (s *Solver) storeState(state *equil.ChemicalState, ostate *optimum.State) error {
	n := make([]float64, len(ostate.X))
	for i, v := range ostate.X {
		n[i] = math.Max(v, s.opts.Epsilon)
	}
	if err := state.SetSpeciesAmountsVec(n); err != nil {
		return err
	}
	if err := state.SetElementPotentials(ostate.Y); err != nil {
		return err
	}
	return state.SetSpeciesPotentials(ostate.Z)
}

// errDecorate decorates an error and passes it up.
func errDecorate(err error, caller string) error {
	type decorator interface{ Decorate(string) []string }
	if d, ok := err.(decorator); ok {
		d.Decorate(caller)
		return err
	}
	return Error{fmt.Sprintf("equilibrium: %v", err), []string{caller}}
}
