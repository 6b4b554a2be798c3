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

package equil

import "fmt"

// CError (Concrete error) is the concrete implementation of the Error interface
// used by this package.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

// Decorate adds new information to the error.
func (err CError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func newCError(msg string, caller string) CError {
	return CError{msg, []string{caller}}
}

// errDecorate decorates an error and passes it up. If the error does not
// implement the Error interface it gets wrapped in a CError first.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if ok {
		err2.Decorate(caller)
		return err2
	}
	return CError{err.Error(), []string{caller}}
}

// Messages for the errors returned by this package.
const (
	ErrNilSystem       = "goequil: nil ChemicalSystem"
	ErrNoPhases        = "goequil: a ChemicalSystem needs at least one phase with at least one species"
	ErrDupSpecies      = "goequil: duplicated species name"
	ErrDupPhase        = "goequil: duplicated phase name"
	ErrUnknownElement  = "goequil: species formula references an undeclared element"
	ErrNegativeAmount  = "goequil: species amounts must be non-negative"
	ErrBadTemperature  = "goequil: temperature must be positive"
	ErrBadPressure     = "goequil: pressure must be positive"
	ErrWrongDimension  = "goequil: vector dimension does not match the system"
	ErrSpeciesNotFound = "goequil: species not found"
)

// mkError builds a CError with one line of context.
func mkError(msg, caller, detail string) CError {
	if detail != "" {
		return newCError(fmt.Sprintf("%s: %s", msg, detail), caller)
	}
	return newCError(msg, caller)
}
