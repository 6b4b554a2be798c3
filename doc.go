/*
 * doc.go, part of goequil.
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

/*Package equil is the main package of the goEquil library. It provides element,
species, phase and chemical-system structures, together with the mutable
chemical state they act upon, for equilibrium and kinetics modelling of
multiphase chemical systems.


	**goEquil capabilities**

    Describes multiphase chemical systems (elements, species, phases) and
	builds their element-balance (formula) matrix.

    Solves for the equilibrium composition of a system by Gibbs energy
	minimization (package equilibrium), on top of an active-set Newton
	solver for linearly constrained, bound-constrained problems
	(package optimum).

    Integrates reaction kinetics with an adaptive embedded Runge-Kutta
	stepper (package kinetics).

    Writes and reads compressed composition trajectories (package ctf).

    Plots composition-vs-time curves and solver convergence traces
	(package eqplot).

Thermodynamic data is supplied by the caller as callbacks (standard Gibbs
energies, reaction rate laws). goEquil does not parse species databases nor
implement correlation formulas; it only consumes their numeric results.

All the linear algebra is done with gonum (gonum.org/v1/gonum/mat).
*/
package equil
