/*
 * calculator.go, part of goneb.
 *
 *
 * Copyright 2024 The goneb developers
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
 *
 */

package neb

import (
	"context"

	v3 "goneb/v3"
)

//Calculator is the capability each image must bring: compute the
//potential energy (eV) and per-atom forces (eV/A) for a geometry.
//Implementations typically drive an external quantum-chemistry or
//semi-empirical program; see the calc subpackage.
//
//A Calculator must be safe to call concurrently with calculators of
//other images, provided each instance has a disjoint working area
//(scratch directory, file names). It need not be safe for concurrent
//calls on the same instance; the library never does that. The call
//is assumed idempotent for identical geometries within floating
//tolerance. Implementations should honor ctx cancellation by killing
//whatever external process they run; the project.Supervisor relies on
//this for forceful cancellation.
type Calculator interface {
	EnergyForces(ctx context.Context, coords *v3.Matrix) (float64, *v3.Matrix, error)
}
