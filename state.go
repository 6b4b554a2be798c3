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

package equil

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ChemicalState holds the thermodynamic state of a ChemicalSystem:
// temperature, pressure and the amounts of every species, plus the element
// and species potentials produced by an equilibrium calculation. It is
// mutable and owned by a single caller; concurrent calculations must use
// independent copies.
type ChemicalState struct {
	system *ChemicalSystem
	t      float64 //K
	p      float64 //Pa
	n      []float64
	y      []float64
	z      []float64
}

// NewChemicalState returns a state for the given system at 298.15 K and
// 1e5 Pa, with all species amounts set to zero.
func NewChemicalState(system *ChemicalSystem) (*ChemicalState, error) {
	if system == nil {
		return nil, newCError(ErrNilSystem, "NewChemicalState")
	}
	st := new(ChemicalState)
	st.system = system
	st.t = 298.15
	st.p = 1.0e5
	st.n = make([]float64, system.NumSpecies())
	st.y = make([]float64, system.NumElements())
	st.z = make([]float64, system.NumSpecies())
	return st, nil
}

// System returns the chemical system this state refers to.
func (st *ChemicalState) System() *ChemicalSystem { return st.system }

// SetTemperature sets the temperature, in K.
func (st *ChemicalState) SetTemperature(val float64) error {
	if val <= 0 {
		return mkError(ErrBadTemperature, "SetTemperature", fmt.Sprintf("%v", val))
	}
	st.t = val
	return nil
}

// Temperature returns the temperature, in K.
func (st *ChemicalState) Temperature() float64 { return st.t }

// SetPressure sets the pressure, in Pa.
func (st *ChemicalState) SetPressure(val float64) error {
	if val <= 0 {
		return mkError(ErrBadPressure, "SetPressure", fmt.Sprintf("%v", val))
	}
	st.p = val
	return nil
}

// Pressure returns the pressure, in Pa.
func (st *ChemicalState) Pressure() float64 { return st.p }

// SetSpeciesAmounts sets the amount of every species to val, in mol.
func (st *ChemicalState) SetSpeciesAmounts(val float64) error {
	if val < 0 {
		return mkError(ErrNegativeAmount, "SetSpeciesAmounts", fmt.Sprintf("%v", val))
	}
	for i := range st.n {
		st.n[i] = val
	}
	return nil
}

// SetSpeciesAmountsVec sets the amounts of all species from n, in mol.
func (st *ChemicalState) SetSpeciesAmountsVec(n []float64) error {
	if len(n) != len(st.n) {
		return mkError(ErrWrongDimension, "SetSpeciesAmountsVec", fmt.Sprintf("%d vs %d", len(n), len(st.n)))
	}
	for i, v := range n {
		if v < 0 {
			return mkError(ErrNegativeAmount, "SetSpeciesAmountsVec", st.system.Species(i).Name)
		}
	}
	copy(st.n, n)
	return nil
}

// SetSpeciesAmount sets the amount of the species with the given name, in mol.
func (st *ChemicalState) SetSpeciesAmount(name string, amount float64) error {
	i := st.system.IndexSpecies(name)
	if i < 0 {
		return mkError(ErrSpeciesNotFound, "SetSpeciesAmount", name)
	}
	if amount < 0 {
		return mkError(ErrNegativeAmount, "SetSpeciesAmount", name)
	}
	st.n[i] = amount
	return nil
}

// SpeciesAmount returns the amount of the ith species, in mol. It panics if i
// is out of range.
func (st *ChemicalState) SpeciesAmount(i int) float64 { return st.n[i] }

// SpeciesAmountByName returns the amount of the named species, in mol, or an
// error if the species does not exist.
func (st *ChemicalState) SpeciesAmountByName(name string) (float64, error) {
	i := st.system.IndexSpecies(name)
	if i < 0 {
		return 0, mkError(ErrSpeciesNotFound, "SpeciesAmountByName", name)
	}
	return st.n[i], nil
}

// SpeciesAmounts returns the amounts of all species, in mol. The returned
// slice is owned by the state: modifying it modifies the state.
func (st *ChemicalState) SpeciesAmounts() []float64 { return st.n }

// SetElementPotentials sets the element (dual) potentials from an
// equilibrium calculation.
func (st *ChemicalState) SetElementPotentials(y []float64) error {
	if len(y) != len(st.y) {
		return mkError(ErrWrongDimension, "SetElementPotentials", fmt.Sprintf("%d vs %d", len(y), len(st.y)))
	}
	copy(st.y, y)
	return nil
}

// ElementPotentials returns the element potentials. The returned slice is
// owned by the state.
func (st *ChemicalState) ElementPotentials() []float64 { return st.y }

// SetSpeciesPotentials sets the species (bound dual) potentials from an
// equilibrium calculation.
func (st *ChemicalState) SetSpeciesPotentials(z []float64) error {
	if len(z) != len(st.z) {
		return mkError(ErrWrongDimension, "SetSpeciesPotentials", fmt.Sprintf("%d vs %d", len(z), len(st.z)))
	}
	copy(st.z, z)
	return nil
}

// SpeciesPotentials returns the species potentials. The returned slice is
// owned by the state.
func (st *ChemicalState) SpeciesPotentials() []float64 { return st.z }

// ElementAmounts returns the amounts of every element, in mol, as W*n.
func (st *ChemicalState) ElementAmounts() []float64 {
	w := st.system.FormulaMatrix()
	b := mat.NewVecDense(st.system.NumElements(), nil)
	b.MulVec(w, mat.NewVecDense(len(st.n), st.n))
	return b.RawVector().Data
}

// ElementAmount returns the amount of the ith element, in mol.
func (st *ChemicalState) ElementAmount(i int) float64 {
	w := st.system.FormulaMatrix()
	var b float64
	for j := range st.n {
		b += w.At(i, j) * st.n[j]
	}
	return b
}

// PhaseAmount returns the total amount of the ith phase, in mol.
func (st *ChemicalState) PhaseAmount(i int) float64 {
	first, last := st.system.PhaseSpeciesRange(i)
	var total float64
	for j := first; j < last; j++ {
		total += st.n[j]
	}
	return total
}

// ScaleSpeciesAmounts multiplies every species amount by scalar.
func (st *ChemicalState) ScaleSpeciesAmounts(scalar float64) error {
	if scalar < 0 {
		return mkError(ErrNegativeAmount, "ScaleSpeciesAmounts", fmt.Sprintf("%v", scalar))
	}
	for i := range st.n {
		st.n[i] *= scalar
	}
	return nil
}

// ScaleSpeciesAmountsInPhase multiplies the amount of every species in the
// ith phase by scalar.
func (st *ChemicalState) ScaleSpeciesAmountsInPhase(i int, scalar float64) error {
	if scalar < 0 {
		return mkError(ErrNegativeAmount, "ScaleSpeciesAmountsInPhase", fmt.Sprintf("%v", scalar))
	}
	first, last := st.system.PhaseSpeciesRange(i)
	for j := first; j < last; j++ {
		st.n[j] *= scalar
	}
	return nil
}

// Copy returns a deep copy of the state, sharing only the (immutable)
// chemical system.
func (st *ChemicalState) Copy() *ChemicalState {
	if st == nil {
		panic("Attempted to copy a nil state")
	}
	newst := new(ChemicalState)
	newst.system = st.system
	newst.t = st.t
	newst.p = st.p
	newst.n = append([]float64{}, st.n...)
	newst.y = append([]float64{}, st.y...)
	newst.z = append([]float64{}, st.z...)
	return newst
}
