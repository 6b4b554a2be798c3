/*
 * equil.go, part of goequil.
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
	"sort"

	"gonum.org/v1/gonum/mat"
)

/**Note: some accessor functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. I considered that if something goes wrong there, the program is way-most likely wrong and should
 * crash. The panics are related to calling the function on a nil object or with an out-of-range index.**/

// ChargeElement is the name of the synthetic element used to balance
// electrical charge. It is appended as an extra row of the formula matrix
// whenever any species in the system carries a charge.
const ChargeElement = "Z"

// Element represents a chemical element.
type Element struct {
	Name      string
	MolarMass float64 //g/mol
}

// Species represents a chemical species in some phase. The standard Gibbs
// energy G0 (J/mol) at given temperature (K) and pressure (Pa) comes from the
// caller, normally a thermodynamic database wrapper or a correlation; goEquil
// only consumes its values.
type Species struct {
	Name    string
	Formula map[string]float64 //element symbol -> atoms per formula unit
	Charge  float64
	G0      func(T, P float64) float64
}

// ConstG0 is a convenience helper for species whose standard Gibbs energy can
// be taken as constant in the conditions of interest.
func ConstG0(val float64) func(T, P float64) float64 {
	return func(T, P float64) float64 { return val }
}

// Phase is a named collection of species that mix with each other.
type Phase struct {
	Name    string
	Species []*Species
}

// ChemicalSystem describes a multiphase chemical system. It is immutable
// after construction. Species indices run over all phases, in phase order.
type ChemicalSystem struct {
	elements []*Element
	species  []*Species
	phases   []*Phase
	w        *mat.Dense //formula matrix, elements x species
	iphase   []int      //species index -> phase index
	first    []int      //phase index -> index of its first species
	elindex  map[string]int
	spindex  map[string]int
	phindex  map[string]int
}

// NewChemicalSystem builds a system from the given phases. Elements not in the
// elements slice but referenced by some species formula are created on the fly
// with zero molar mass. If any species carries a charge, a charge-balance row
// named ChargeElement is appended to the element list.
func NewChemicalSystem(elements []*Element, phases []*Phase) (*ChemicalSystem, error) {
	if len(phases) == 0 {
		return nil, newCError(ErrNoPhases, "NewChemicalSystem")
	}
	S := new(ChemicalSystem)
	S.elindex = make(map[string]int)
	S.spindex = make(map[string]int)
	S.phindex = make(map[string]int)
	for _, el := range elements {
		if _, ok := S.elindex[el.Name]; ok {
			continue //a repeated declaration is harmless, the first one wins
		}
		S.elindex[el.Name] = len(S.elements)
		S.elements = append(S.elements, el)
	}
	//collect the species, their phases, and any undeclared element
	var missing []string
	charged := false
	for iph, ph := range phases {
		if len(ph.Species) == 0 {
			return nil, mkError(ErrNoPhases, "NewChemicalSystem", ph.Name)
		}
		if _, ok := S.phindex[ph.Name]; ok {
			return nil, mkError(ErrDupPhase, "NewChemicalSystem", ph.Name)
		}
		S.phindex[ph.Name] = iph
		S.phases = append(S.phases, ph)
		S.first = append(S.first, len(S.species))
		for _, sp := range ph.Species {
			if _, ok := S.spindex[sp.Name]; ok {
				return nil, mkError(ErrDupSpecies, "NewChemicalSystem", sp.Name)
			}
			S.spindex[sp.Name] = len(S.species)
			S.species = append(S.species, sp)
			S.iphase = append(S.iphase, iph)
			for el := range sp.Formula {
				if _, ok := S.elindex[el]; !ok {
					missing = append(missing, el)
					S.elindex[el] = -1 //mark as seen
				}
			}
			if sp.Charge != 0 {
				charged = true
			}
		}
	}
	sort.Strings(missing)
	for _, el := range missing {
		S.elindex[el] = len(S.elements)
		S.elements = append(S.elements, &Element{Name: el})
	}
	izrow := -1
	if charged {
		izrow = len(S.elements)
		S.elindex[ChargeElement] = izrow
		S.elements = append(S.elements, &Element{Name: ChargeElement})
	}
	//the formula matrix
	S.w = mat.NewDense(len(S.elements), len(S.species), nil)
	for j, sp := range S.species {
		for el, coef := range sp.Formula {
			S.w.Set(S.elindex[el], j, coef)
		}
		if charged {
			S.w.Set(izrow, j, sp.Charge)
		}
	}
	return S, nil
}

// NumElements returns the number of elements in the system, including the
// charge-balance row, if present.
func (S *ChemicalSystem) NumElements() int { return len(S.elements) }

// NumSpecies returns the number of species in the system, over all phases.
func (S *ChemicalSystem) NumSpecies() int { return len(S.species) }

// NumPhases returns the number of phases in the system.
func (S *ChemicalSystem) NumPhases() int { return len(S.phases) }

// Element returns the ith element. It panics if i is out of range.
func (S *ChemicalSystem) Element(i int) *Element {
	if S == nil {
		panic("Element called on a nil system")
	}
	return S.elements[i]
}

// Species returns the ith species. It panics if i is out of range.
func (S *ChemicalSystem) Species(i int) *Species {
	if S == nil {
		panic("Species called on a nil system")
	}
	return S.species[i]
}

// Phase returns the ith phase. It panics if i is out of range.
func (S *ChemicalSystem) Phase(i int) *Phase {
	if S == nil {
		panic("Phase called on a nil system")
	}
	return S.phases[i]
}

// IndexElement returns the index of the element with the given name, or -1 if
// no such element exists in the system.
func (S *ChemicalSystem) IndexElement(name string) int {
	i, ok := S.elindex[name]
	if !ok {
		return -1
	}
	return i
}

// IndexSpecies returns the index of the species with the given name, or -1 if
// no such species exists in the system.
func (S *ChemicalSystem) IndexSpecies(name string) int {
	i, ok := S.spindex[name]
	if !ok {
		return -1
	}
	return i
}

// IndexPhase returns the index of the phase with the given name, or -1 if no
// such phase exists in the system.
func (S *ChemicalSystem) IndexPhase(name string) int {
	i, ok := S.phindex[name]
	if !ok {
		return -1
	}
	return i
}

// SpeciesPhase returns the index of the phase containing the ith species.
func (S *ChemicalSystem) SpeciesPhase(i int) int { return S.iphase[i] }

// PhaseSpeciesRange returns the half-open range [first, last) of species
// indices belonging to the ith phase.
func (S *ChemicalSystem) PhaseSpeciesRange(i int) (first, last int) {
	first = S.first[i]
	if i == len(S.phases)-1 {
		last = len(S.species)
	} else {
		last = S.first[i+1]
	}
	return first, last
}

// FormulaMatrix returns the element-balance matrix W of the system, with one
// row per element (plus the charge row, if present) and one column per
// species. The returned matrix is owned by the system and must not be
// modified.
func (S *ChemicalSystem) FormulaMatrix() *mat.Dense { return S.w }

// String returns a short human-readable description of the system.
func (S *ChemicalSystem) String() string {
	return fmt.Sprintf("ChemicalSystem{%d phases, %d species, %d elements}",
		len(S.phases), len(S.species), len(S.elements))
}
