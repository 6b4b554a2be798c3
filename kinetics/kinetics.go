/*
 * kinetics.go, part of goequil.
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

//Package kinetics integrates the time evolution of species amounts under
//a set of chemical reactions with caller-supplied rate laws.
package kinetics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	equil "github.com/goequil/goequil"
)

//Error implements the equil.Error interface for this package.
type Error struct {
	msg  string
	deco []string
}

func (err Error) Error() string { return err.msg }

//Decorate adds one line of context to an error, returning the full trace.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func newError(msg string) Error {
	return Error{msg: msg, deco: []string{}}
}

const (
	ErrNilSystem      = "kinetics: nil chemical system"
	ErrNoReactions    = "kinetics: no reactions given"
	ErrNilRate        = "kinetics: reaction has no rate law"
	ErrUnknownSpecies = "kinetics: reaction references a species not in the system"
	ErrWrongSystem    = "kinetics: state does not belong to the solver's system"
	ErrNotInitialized = "kinetics: solver not initialized"
	ErrStepUnderflow  = "kinetics: step size underflow"
	ErrTooManySteps   = "kinetics: step limit exceeded"
	ErrBadInterval    = "kinetics: non-positive integration interval"
)

//Reaction is a single chemical reaction: a stoichiometry over species
//names (negative for reactants, positive for products) and a rate law
//returning the net rate in mol/s at the given state.
type Reaction struct {
	Name          string
	Stoichiometry map[string]float64
	Rate          func(state *equil.ChemicalState) float64
}

//ReactionSystem couples a set of reactions to a chemical system, holding
//the stoichiometric matrix with one row per reaction and one column per
//species.
type ReactionSystem struct {
	system    *equil.ChemicalSystem
	reactions []*Reaction
	s         *mat.Dense
}

//NewReactionSystem builds a reaction system over the given chemical
//system. Every species named by a reaction must exist in the system.
func NewReactionSystem(system *equil.ChemicalSystem, reactions ...*Reaction) (*ReactionSystem, error) {
	if system == nil {
		return nil, newError(ErrNilSystem)
	}
	if len(reactions) == 0 {
		return nil, newError(ErrNoReactions)
	}
	s := mat.NewDense(len(reactions), system.NumSpecies(), nil)
	for i, r := range reactions {
		if r.Rate == nil {
			return nil, errDecorate(newError(ErrNilRate), fmt.Sprintf("kinetics.NewReactionSystem (reaction %s)", r.Name))
		}
		for name, coeff := range r.Stoichiometry {
			j := system.IndexSpecies(name)
			if j < 0 {
				return nil, errDecorate(newError(ErrUnknownSpecies), fmt.Sprintf("kinetics.NewReactionSystem (reaction %s, species %s)", r.Name, name))
			}
			s.Set(i, j, coeff)
		}
	}
	return &ReactionSystem{system: system, reactions: reactions, s: s}, nil
}

//System returns the chemical system of rs.
func (rs *ReactionSystem) System() *equil.ChemicalSystem { return rs.system }

//NumReactions returns the number of reactions in rs.
func (rs *ReactionSystem) NumReactions() int { return len(rs.reactions) }

//Reaction returns the ith reaction.
func (rs *ReactionSystem) Reaction(i int) *Reaction { return rs.reactions[i] }

//StoichiometricMatrix returns the reactions x species matrix of rs.
//The returned matrix is the internal one, so the caller must not modify it.
func (rs *ReactionSystem) StoichiometricMatrix() *mat.Dense { return rs.s }

//Rates evaluates every rate law at the given state, one entry per
//reaction.
func (rs *ReactionSystem) Rates(state *equil.ChemicalState) []float64 {
	r := make([]float64, len(rs.reactions))
	for i, reac := range rs.reactions {
		r[i] = reac.Rate(state)
	}
	return r
}

//RatesOfSpecies returns dn/dt for every species at the given state,
//i.e. the rates combined through the stoichiometric matrix.
func (rs *ReactionSystem) RatesOfSpecies(state *equil.ChemicalState) []float64 {
	r := rs.Rates(state)
	f := make([]float64, rs.system.NumSpecies())
	rv := mat.NewVecDense(len(r), r)
	fv := mat.NewVecDense(len(f), f)
	fv.MulVec(rs.s.T(), rv)
	return f
}

func errDecorate(err error, caller string) error {
	err2, ok := err.(equil.Error)
	if !ok {
		return newError(fmt.Sprintf("%s: %s", caller, err.Error()))
	}
	err2.Decorate(caller)
	return err2
}
