/*
 * integrate.go, part of goequil.
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

package kinetics

import (
	"math"

	equil "github.com/goequil/goequil"
)

// Options holds the tunable parameters of the kinetic solver.
type Options struct {
	// AbsTol and RelTol control the local error per step: a step is
	// accepted when the estimated error of every amount is below
	// AbsTol + RelTol*|n_i|.
	AbsTol float64
	RelTol float64
	// InitialStep is the first step size tried. Zero means it is chosen
	// from the integration interval.
	InitialStep float64
	// MaxSteps bounds the number of accepted steps in a single Solve call.
	MaxSteps int
	// Observer, if non-nil, is called after every accepted step with the
	// current time and state.
	Observer func(t float64, state *equil.ChemicalState)
}

// DefaultOptions returns the default parameters for the kinetic solver.
func DefaultOptions() *Options {
	return &Options{
		AbsTol:   1e-12,
		RelTol:   1e-6,
		MaxSteps: 100000,
	}
}

// Solver integrates dn/dt = S^T r(n) with an embedded Cash-Karp
// Runge-Kutta 4(5) pair and adaptive step control.
type Solver struct {
	rs   *ReactionSystem
	opts *Options

	t, h  float64
	ready bool

	// scratch state for trial evaluations, so rate laws see temperature
	// and pressure without clobbering the caller's state mid-step.
	work *equil.ChemicalState
	n    []float64
	k    [6][]float64
	ntmp []float64
	nerr []float64
}

// NewSolver returns a kinetic solver for the given reaction system.
// A nil opts means DefaultOptions().
func NewSolver(rs *ReactionSystem, opts *Options) (*Solver, error) {
	if rs == nil || rs.system == nil {
		return nil, newError(ErrNilSystem)
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	ns := rs.system.NumSpecies()
	s := &Solver{rs: rs, opts: opts, n: make([]float64, ns), ntmp: make([]float64, ns), nerr: make([]float64, ns)}
	for i := range s.k {
		s.k[i] = make([]float64, ns)
	}
	return s, nil
}

// Initialize sets the integration clock to t0 and takes the species
// amounts of state as the initial condition.
func (s *Solver) Initialize(state *equil.ChemicalState, t0 float64) error {
	if state.System() != s.rs.system {
		return errDecorate(newError(ErrWrongSystem), "kinetics.Initialize")
	}
	s.t = t0
	s.h = s.opts.InitialStep
	copy(s.n, state.SpeciesAmounts())
	s.work = state.Copy()
	s.ready = true
	return nil
}

// Time returns the current integration time.
func (s *Solver) Time() float64 { return s.t }

// Cash-Karp tableau.
var (
	ckB = [6][5]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{3.0 / 10.0, -9.0 / 10.0, 6.0 / 5.0},
		{-11.0 / 54.0, 5.0 / 2.0, -70.0 / 27.0, 35.0 / 27.0},
		{1631.0 / 55296.0, 175.0 / 512.0, 575.0 / 13824.0, 44275.0 / 110592.0, 253.0 / 4096.0},
	}
	ckC = [6]float64{37.0 / 378.0, 0, 250.0 / 621.0, 125.0 / 594.0, 0, 512.0 / 1771.0}
	// difference between the 4th and 5th order weights
	ckD = [6]float64{
		37.0/378.0 - 2825.0/27648.0,
		0,
		250.0/621.0 - 18575.0/48384.0,
		125.0/594.0 - 13525.0/55296.0,
		-277.0 / 14336.0,
		512.0/1771.0 - 1.0/4.0,
	}
)

// derivs evaluates dn/dt at the trial amounts n, clamping negatives to
// zero before the rate laws see them.
func (s *Solver) derivs(n []float64, dst []float64) error {
	copy(s.ntmp, n)
	for i, v := range s.ntmp {
		if v < 0 {
			s.ntmp[i] = 0
		}
	}
	if err := s.work.SetSpeciesAmountsVec(s.ntmp); err != nil {
		return errDecorate(err, "derivs")
	}
	copy(dst, s.rs.RatesOfSpecies(s.work))
	return nil
}

// attempt computes one Cash-Karp step of size h from s.n, leaving the
// 5th order result in s.ntmp and returning the scaled error estimate.
func (s *Solver) attempt(h float64) (float64, error) {
	n := s.n
	if err := s.derivs(n, s.k[0]); err != nil {
		return 0, err
	}
	for stage := 1; stage < 6; stage++ {
		for i := range s.ntmp {
			s.ntmp[i] = n[i]
			for j := 0; j < stage; j++ {
				s.ntmp[i] += h * ckB[stage][j] * s.k[j][i]
			}
		}
		if err := s.derivs(s.ntmp, s.k[stage]); err != nil {
			return 0, err
		}
	}
	errmax := 0.0
	for i := range n {
		dn := 0.0
		de := 0.0
		for stage := 0; stage < 6; stage++ {
			dn += ckC[stage] * s.k[stage][i]
			de += ckD[stage] * s.k[stage][i]
		}
		s.ntmp[i] = n[i] + h*dn
		s.nerr[i] = h * de
		scale := s.opts.AbsTol + s.opts.RelTol*math.Abs(n[i])
		if e := math.Abs(s.nerr[i]) / scale; e > errmax {
			errmax = e
		}
	}
	return errmax, nil
}

// Step advances the solution by one accepted adaptive step, writing the
// new amounts into state and returning the new time.
func (s *Solver) Step(state *equil.ChemicalState) (float64, error) {
	if !s.ready {
		return s.t, errDecorate(newError(ErrNotInitialized), "kinetics.Step")
	}
	if state.System() != s.rs.system {
		return s.t, errDecorate(newError(ErrWrongSystem), "kinetics.Step")
	}
	h := s.h
	if h <= 0 {
		h = 1e-6
	}
	for {
		errmax, err := s.attempt(h)
		if err != nil {
			return s.t, errDecorate(err, "kinetics.Step")
		}
		if !finiteAll(s.ntmp) {
			errmax = math.Inf(1)
		}
		if errmax <= 1.0 {
			// accept; the next step may grow, at most fivefold
			grow := 0.9 * math.Pow(math.Max(errmax, 1e-10), -0.2)
			if grow > 5 {
				grow = 5
			}
			s.h = h * grow
			break
		}
		shrink := 0.9 * math.Pow(errmax, -0.25)
		if shrink < 0.1 {
			shrink = 0.1
		}
		h *= shrink
		if s.t+h == s.t {
			return s.t, errDecorate(newError(ErrStepUnderflow), "kinetics.Step")
		}
	}
	s.t += h
	for i, v := range s.ntmp {
		if v < 0 {
			v = 0
		}
		s.n[i] = v
	}
	if err := state.SetSpeciesAmountsVec(s.n); err != nil {
		return s.t, errDecorate(err, "kinetics.Step")
	}
	if s.opts.Observer != nil {
		s.opts.Observer(s.t, state)
	}
	return s.t, nil
}

// Solve integrates the state over the interval [t, t+dt], initializing
// the solver at t from the state's current amounts.
func (s *Solver) Solve(state *equil.ChemicalState, t, dt float64) error {
	if dt <= 0 {
		return errDecorate(newError(ErrBadInterval), "kinetics.Solve")
	}
	if err := s.Initialize(state, t); err != nil {
		return errDecorate(err, "kinetics.Solve")
	}
	tend := t + dt
	if s.h <= 0 || s.h > dt {
		s.h = dt / 100
	}
	for steps := 0; s.t < tend; steps++ {
		if steps >= s.opts.MaxSteps {
			return errDecorate(newError(ErrTooManySteps), "kinetics.Solve")
		}
		if s.t+s.h > tend {
			s.h = tend - s.t
		}
		// rounding in the very last step can leave a sliver of the
		// interval that no finite step can cross
		if s.h <= math.Abs(tend)*1e-14 {
			s.t = tend
			break
		}
		if _, err := s.Step(state); err != nil {
			return errDecorate(err, "kinetics.Solve")
		}
	}
	return nil
}

func finiteAll(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
