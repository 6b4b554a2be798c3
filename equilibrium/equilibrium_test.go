/*
 * equilibrium_test.go, part of goequil.
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

package equilibrium

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	equil "github.com/goequil/goequil"
)

//dimerSystem is the reaction 2A = A2 in a single ideal phase, with equal
//standard potentials. Its equilibrium has the closed form
//x_A = (sqrt(5)-1)/2 when the element amount of X is 1.
func dimerSystem(Te *testing.T) *equil.ChemicalSystem {
	var ed equil.Editor
	ed.AddElement("X", 10.0)
	ed.AddPhase("Gas",
		&equil.Species{Name: "A", Formula: map[string]float64{"X": 1}, G0: equil.ConstG0(0)},
		&equil.Species{Name: "A2", Formula: map[string]float64{"X": 2}, G0: equil.ConstG0(0)},
	)
	sys, err := ed.Build()
	if err != nil {
		Te.Fatal(err)
	}
	return sys
}

func TestEquilibriumDimer(Te *testing.T) {
	sys := dimerSystem(Te)
	state, err := equil.NewChemicalState(sys)
	if err != nil {
		Te.Fatal(err)
	}
	//b[X] = 0.5 + 2*0.25 = 1
	if err := state.SetSpeciesAmountsVec([]float64{0.5, 0.25}); err != nil {
		Te.Fatal(err)
	}
	solver, err := NewSolver(sys, nil)
	if err != nil {
		Te.Fatal(err)
	}
	result, err := solver.Solve(state)
	if err != nil {
		Te.Fatal(err)
	}
	if !result.Succeeded {
		Te.Fatalf("equilibrium did not converge, error %v after %d iterations", result.Error, result.Iterations)
	}
	fmt.Println("dimer equilibrium reached in", result.Iterations, "iterations")

	//element balance is preserved
	b := state.ElementAmounts()
	if !scalar.EqualWithinAbs(b[0], 1.0, 1e-6) {
		Te.Errorf("element amount %v, want 1", b[0])
	}
	//golden mole fraction of the monomer
	n := state.SpeciesAmounts()
	total := n[0] + n[1]
	xa := n[0] / total
	want := (math.Sqrt(5) - 1) / 2
	if !scalar.EqualWithinAbs(xa, want, 1e-4) {
		Te.Errorf("x_A = %v, want %v", xa, want)
	}
	//mass action: with equal standard potentials, x_A^2 = x_A2
	xa2 := n[1] / total
	if !scalar.EqualWithinAbs(xa*xa, xa2, 1e-5) {
		Te.Errorf("mass action violated: x_A^2 = %v, x_A2 = %v", xa*xa, xa2)
	}
	//the element potential is the chemical potential of the monomer
	y := state.ElementPotentials()
	if !scalar.EqualWithinAbs(y[0], math.Log(xa), 1e-5) {
		Te.Errorf("element potential %v, want ln(x_A) = %v", y[0], math.Log(xa))
	}
}

//a second solve from the converged state is nearly free.
func TestEquilibriumWarmStart(Te *testing.T) {
	sys := dimerSystem(Te)
	state, _ := equil.NewChemicalState(sys)
	state.SetSpeciesAmountsVec([]float64{0.5, 0.25})
	solver, _ := NewSolver(sys, nil)
	if r, err := solver.Solve(state); err != nil || !r.Succeeded {
		Te.Fatalf("first solve failed: %v %+v", err, r)
	}
	r, err := solver.Solve(state)
	if err != nil {
		Te.Fatal(err)
	}
	if !r.Succeeded || r.Iterations > 1 {
		Te.Errorf("warm re-solve took %d iterations (succeeded %v), want at most 1", r.Iterations, r.Succeeded)
	}
}

//Approximate seeds the state with the LP solution; the favored species takes
//all the element amount and the refinement then converges.
func TestEquilibriumApproximate(Te *testing.T) {
	var ed equil.Editor
	ed.AddPhase("Gas",
		&equil.Species{Name: "A", Formula: map[string]float64{"X": 1}, G0: equil.ConstG0(0)},
		&equil.Species{Name: "A2", Formula: map[string]float64{"X": 2}, G0: equil.ConstG0(-50000)},
	)
	sys, err := ed.Build()
	if err != nil {
		Te.Fatal(err)
	}
	state, _ := equil.NewChemicalState(sys)
	state.SetSpeciesAmountsVec([]float64{1, 0})
	solver, _ := NewSolver(sys, nil)

	r, err := solver.Approximate(state)
	if err != nil {
		Te.Fatal(err)
	}
	if !r.Succeeded {
		Te.Fatalf("LP approximation failed, error %v", r.Error)
	}
	n := state.SpeciesAmounts()
	if !scalar.EqualWithinAbs(n[1], 0.5, 1e-8) {
		Te.Errorf("LP puts n_A2 = %v, want 0.5", n[1])
	}
	//element balance maintained by the approximation
	if !scalar.EqualWithinAbs(state.ElementAmount(0), 1.0, 1e-8) {
		Te.Errorf("element amount %v after approximation, want 1", state.ElementAmount(0))
	}

	rr, err := solver.Solve(state)
	if err != nil {
		Te.Fatal(err)
	}
	if !rr.Succeeded {
		Te.Errorf("refinement from the LP seed failed, error %v", rr.Error)
	}
}

//with HotStart off, Solve goes through the LP approximation on its own.
func TestEquilibriumColdStart(Te *testing.T) {
	sys := dimerSystem(Te)
	state, _ := equil.NewChemicalState(sys)
	state.SetSpeciesAmountsVec([]float64{1, 0})
	opts := DefaultOptions()
	opts.HotStart = false
	solver, _ := NewSolver(sys, opts)
	r, err := solver.Solve(state)
	if err != nil {
		Te.Fatal(err)
	}
	if !r.Succeeded {
		Te.Fatalf("cold-start solve failed, error %v", r.Error)
	}
	n := state.SpeciesAmounts()
	xa := n[0] / (n[0] + n[1])
	if !scalar.EqualWithinAbs(xa, (math.Sqrt(5)-1)/2, 1e-4) {
		Te.Errorf("x_A = %v, want the analytic value", xa)
	}
}

//a pure condensed phase pins the element potential at its standard
//chemical potential.
func TestEquilibriumTwoPhases(Te *testing.T) {
	g0B := -2000.0
	var ed equil.Editor
	ed.AddPhase("Gas",
		&equil.Species{Name: "A", Formula: map[string]float64{"X": 1}, G0: equil.ConstG0(0)},
	)
	ed.AddPhase("Solid",
		&equil.Species{Name: "B", Formula: map[string]float64{"X": 1}, G0: equil.ConstG0(g0B)},
	)
	sys, err := ed.Build()
	if err != nil {
		Te.Fatal(err)
	}
	state, _ := equil.NewChemicalState(sys)
	state.SetSpeciesAmountsVec([]float64{0.5, 0.5})
	solver, _ := NewSolver(sys, nil)
	r, err := solver.Solve(state)
	if err != nil {
		Te.Fatal(err)
	}
	if !r.Succeeded {
		Te.Fatalf("two-phase equilibrium did not converge, error %v", r.Error)
	}
	//both phases are pure, so mu_i = mu0_i and only the cheaper phase can
	//hold the interior optimum; B must take (nearly) everything
	n := state.SpeciesAmounts()
	if n[1] < 0.99 {
		Te.Errorf("n_B = %v, want almost 1", n[1])
	}
}

func TestSolverWrongState(Te *testing.T) {
	sys := dimerSystem(Te)
	other := dimerSystem(Te)
	state, _ := equil.NewChemicalState(other)
	solver, _ := NewSolver(sys, nil)
	if _, err := solver.Solve(state); err == nil {
		Te.Error("state from another system accepted")
	}
}
