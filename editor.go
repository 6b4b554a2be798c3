/*
 * editor.go, part of goequil.
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

package equil

// Editor is a convenience builder for chemical systems. Phases and species
// are accumulated with the Add* methods and turned into an immutable
// ChemicalSystem by Build. A zero-value Editor is ready to use.
type Editor struct {
	elements []*Element
	phases   []*Phase
}

// AddElement declares an element with its molar mass (g/mol). Declaring
// elements is optional: elements referenced only by species formulas are
// created on Build with zero molar mass.
func (ed *Editor) AddElement(name string, molarmass float64) *Editor {
	ed.elements = append(ed.elements, &Element{Name: name, MolarMass: molarmass})
	return ed
}

// AddPhase adds a phase with the given species and returns it so species can
// still be appended to it before Build.
func (ed *Editor) AddPhase(name string, species ...*Species) *Phase {
	ph := &Phase{Name: name, Species: species}
	ed.phases = append(ed.phases, ph)
	return ph
}

// AddSpecies appends species to the last added phase, creating a phase named
// after the first species if no phase was added yet.
func (ed *Editor) AddSpecies(species ...*Species) *Editor {
	if len(species) == 0 {
		return ed
	}
	if len(ed.phases) == 0 {
		ed.AddPhase(species[0].Name)
	}
	last := ed.phases[len(ed.phases)-1]
	last.Species = append(last.Species, species...)
	return ed
}

// Build validates the accumulated phases and species and returns the
// resulting chemical system.
func (ed *Editor) Build() (*ChemicalSystem, error) {
	S, err := NewChemicalSystem(ed.elements, ed.phases)
	if err != nil {
		return nil, errDecorate(err, "Build")
	}
	return S, nil
}
