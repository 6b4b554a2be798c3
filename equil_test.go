/*
 * equil_test.go, part of goequil.
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
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

//a small aqueous carbonate system with a gas phase; exercises charged
//species, multiple phases and undeclared elements.
func carbonateSystem(Te *testing.T) *ChemicalSystem {
	var ed Editor
	ed.AddElement("H", 1.008)
	ed.AddElement("O", 15.999)
	//C is left undeclared on purpose
	ed.AddPhase("Aqueous",
		&Species{Name: "H2O", Formula: map[string]float64{"H": 2, "O": 1}, G0: ConstG0(-237140)},
		&Species{Name: "H+", Formula: map[string]float64{"H": 1}, Charge: 1, G0: ConstG0(0)},
		&Species{Name: "HCO3-", Formula: map[string]float64{"H": 1, "C": 1, "O": 3}, Charge: -1, G0: ConstG0(-586800)},
	)
	ed.AddPhase("Gas",
		&Species{Name: "CO2(g)", Formula: map[string]float64{"C": 1, "O": 2}, G0: ConstG0(-394400)},
	)
	sys, err := ed.Build()
	if err != nil {
		Te.Fatal(err)
	}
	return sys
}

func TestSystemBuild(Te *testing.T) {
	sys := carbonateSystem(Te)
	//H, O, the auto-created C, and the charge row
	if sys.NumElements() != 4 {
		Te.Fatalf("%d elements, want 4", sys.NumElements())
	}
	if sys.NumSpecies() != 4 || sys.NumPhases() != 2 {
		Te.Fatalf("%d species in %d phases, want 4 in 2", sys.NumSpecies(), sys.NumPhases())
	}
	if sys.IndexElement(ChargeElement) != 3 {
		Te.Errorf("charge row at %d, want 3 (the last row)", sys.IndexElement(ChargeElement))
	}
	if sys.IndexElement("C") < 0 {
		Te.Error("undeclared element C not created")
	}
	if sys.Element(sys.IndexElement("H")).MolarMass != 1.008 {
		Te.Error("declared molar mass lost")
	}
	if sys.IndexSpecies("CO2(g)") != 3 {
		Te.Errorf("species CO2(g) at %d, want 3", sys.IndexSpecies("CO2(g)"))
	}
	if sys.IndexSpecies("nope") != -1 || sys.IndexPhase("nope") != -1 || sys.IndexElement("nope") != -1 {
		Te.Error("missing names must index to -1")
	}
	if sys.SpeciesPhase(3) != 1 || sys.SpeciesPhase(0) != 0 {
		Te.Error("species to phase mapping wrong")
	}
	first, last := sys.PhaseSpeciesRange(0)
	if first != 0 || last != 3 {
		Te.Errorf("aqueous species range [%d,%d), want [0,3)", first, last)
	}
	first, last = sys.PhaseSpeciesRange(1)
	if first != 3 || last != 4 {
		Te.Errorf("gas species range [%d,%d), want [3,4)", first, last)
	}
}

func TestFormulaMatrix(Te *testing.T) {
	sys := carbonateSystem(Te)
	w := sys.FormulaMatrix()
	r, c := w.Dims()
	if r != 4 || c != 4 {
		Te.Fatalf("formula matrix is %dx%d, want 4x4", r, c)
	}
	ih := sys.IndexElement("H")
	ic := sys.IndexElement("C")
	io := sys.IndexElement("O")
	iz := sys.IndexElement(ChargeElement)
	jhco3 := sys.IndexSpecies("HCO3-")
	if w.At(ih, jhco3) != 1 || w.At(ic, jhco3) != 1 || w.At(io, jhco3) != 3 {
		Te.Error("wrong formula column for HCO3-")
	}
	if w.At(iz, jhco3) != -1 || w.At(iz, sys.IndexSpecies("H+")) != 1 || w.At(iz, sys.IndexSpecies("H2O")) != 0 {
		Te.Error("wrong charge row")
	}
}

func TestSystemErrors(Te *testing.T) {
	if _, err := NewChemicalSystem(nil, nil); err == nil {
		Te.Error("empty system accepted")
	}
	var ed Editor
	ed.AddPhase("Gas",
		&Species{Name: "A", Formula: map[string]float64{"X": 1}, G0: ConstG0(0)},
		&Species{Name: "A", Formula: map[string]float64{"X": 1}, G0: ConstG0(0)},
	)
	if _, err := ed.Build(); err == nil {
		Te.Error("duplicated species accepted")
	}
	var ed2 Editor
	ed2.AddPhase("Gas", &Species{Name: "A", Formula: map[string]float64{"X": 1}, G0: ConstG0(0)})
	ed2.AddPhase("Gas", &Species{Name: "B", Formula: map[string]float64{"X": 1}, G0: ConstG0(0)})
	if _, err := ed2.Build(); err == nil {
		Te.Error("duplicated phase accepted")
	}
	var ed3 Editor
	ed3.AddPhase("Empty")
	if _, err := ed3.Build(); err == nil {
		Te.Error("empty phase accepted")
	}
}

func TestEditorAddSpecies(Te *testing.T) {
	var ed Editor
	ph := ed.AddPhase("Gas", &Species{Name: "A", Formula: map[string]float64{"X": 1}, G0: ConstG0(0)})
	ed.AddSpecies(&Species{Name: "B", Formula: map[string]float64{"X": 1}, G0: ConstG0(0)})
	if len(ph.Species) != 2 {
		Te.Fatalf("phase holds %d species, want 2", len(ph.Species))
	}
	sys, err := ed.Build()
	if err != nil {
		Te.Fatal(err)
	}
	if sys.NumSpecies() != 2 {
		Te.Errorf("%d species, want 2", sys.NumSpecies())
	}
}

func TestStateAmounts(Te *testing.T) {
	sys := carbonateSystem(Te)
	st, err := NewChemicalState(sys)
	if err != nil {
		Te.Fatal(err)
	}
	if st.Temperature() != 298.15 || st.Pressure() != 1e5 {
		Te.Error("wrong default conditions")
	}
	if err := st.SetSpeciesAmountsVec([]float64{55.0, 1e-7, 1e-7, 0.5}); err != nil {
		Te.Fatal(err)
	}
	if err := st.SetSpeciesAmount("CO2(g)", 0.25); err != nil {
		Te.Fatal(err)
	}
	v, err := st.SpeciesAmountByName("CO2(g)")
	if err != nil || v != 0.25 {
		Te.Errorf("amount by name gave %v, %v", v, err)
	}
	if _, err := st.SpeciesAmountByName("nope"); err == nil {
		Te.Error("missing species accepted")
	}
	if err := st.SetSpeciesAmount("H2O", -1); err == nil {
		Te.Error("negative amount accepted")
	}
	//element amounts follow W*n
	b := st.ElementAmounts()
	ih := sys.IndexElement("H")
	wanth := 2*55.0 + 1e-7 + 1e-7
	if !scalar.EqualWithinAbs(b[ih], wanth, 1e-12) {
		Te.Errorf("element amount of H is %v, want %v", b[ih], wanth)
	}
	iz := sys.IndexElement(ChargeElement)
	if !scalar.EqualWithinAbs(b[iz], 0, 1e-20) {
		Te.Errorf("net charge %v, want 0", b[iz])
	}
	if !scalar.EqualWithinAbs(st.PhaseAmount(1), 0.25, 1e-15) {
		Te.Errorf("gas phase amount %v, want 0.25", st.PhaseAmount(1))
	}
}

func TestStateConditionsAndCopy(Te *testing.T) {
	sys := carbonateSystem(Te)
	st, _ := NewChemicalState(sys)
	if err := st.SetTemperature(-10); err == nil {
		Te.Error("negative temperature accepted")
	}
	if err := st.SetPressure(0); err == nil {
		Te.Error("zero pressure accepted")
	}
	st.SetTemperature(350)
	st.SetPressure(2e5)
	st.SetSpeciesAmounts(0.1)
	cp := st.Copy()
	cp.SetSpeciesAmount("H2O", 9)
	cp.SetTemperature(400)
	if st.SpeciesAmount(0) != 0.1 || st.Temperature() != 350 {
		Te.Error("Copy shares memory with the original")
	}
	if cp.Pressure() != 2e5 {
		Te.Error("Copy lost the pressure")
	}
}

func TestStateScale(Te *testing.T) {
	sys := carbonateSystem(Te)
	st, _ := NewChemicalState(sys)
	st.SetSpeciesAmountsVec([]float64{1, 1, 1, 1})
	if err := st.ScaleSpeciesAmounts(2); err != nil {
		Te.Fatal(err)
	}
	if st.SpeciesAmount(0) != 2 {
		Te.Error("global scaling failed")
	}
	if err := st.ScaleSpeciesAmountsInPhase(1, 0.5); err != nil {
		Te.Fatal(err)
	}
	if st.SpeciesAmount(3) != 1 || st.SpeciesAmount(0) != 2 {
		Te.Error("phase scaling leaked outside the phase")
	}
	if err := st.ScaleSpeciesAmounts(-1); err == nil {
		Te.Error("negative scaling accepted")
	}
}
