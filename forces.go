/*
 * forces.go, part of goneb.
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
	"math"

	v3 "goneb/v3"
)

//Forces assembles the NEB force vector for the interior images:
//rigid alignment (if enabled), batch evaluation of the needed images
//through the worker pool, tangent estimation, spring blending and the
//climbing-image correction. The returned matrix has (N-2)*natoms
//vectors, the interior images stacked in order; endpoints are never
//part of it. Energies are cached on the band for reporting (see
//Energies, Imax, Emax).
//
//No step of the tangent/spring algorithm starts before every needed
//image has been evaluated; the pool joins first. Calls are strictly
//sequential: geometries mutate in place, so iteration t+1 must not
//start before iteration t is done.
func (B *Band) Forces(ctx context.Context) (*v3.Matrix, error) {
	n := B.NImages()
	nat := B.NAtoms()

	if B.o.RemoveRotTrans {
		for i := 1; i < n; i++ {
			aligned, err := Superpose(B.Images[i].Coords, B.Images[i-1].Coords)
			if err != nil {
				return nil, errDecorate(err, "Band.Forces")
			}
			B.Images[i].Coords.Copy(aligned)
		}
	}

	//The plain method only needs interior forces/energies. The other
	//methods need the endpoint energies too, to disambiguate tangent
	//directions across the whole chain. Endpoints never move, so a
	//previously known endpoint energy (from a single-point run, or
	//backfilled) is reused rather than recomputed.
	which := make([]int, 0, n)
	if B.o.Method.needsEndpoints() {
		for _, i := range []int{0, n - 1} {
			if !math.IsNaN(B.Images[i].Energy) {
				continue
			}
			if B.Images[i].Calc == nil {
				return nil, NewError(ErrMissingEndpoint, i)
			}
			which = append(which, i)
		}
	}
	for i := 1; i < n-1; i++ {
		which = append(which, i)
	}
	if err := EvaluateImages(ctx, B.Images, which, B.o.Workers); err != nil {
		return nil, errDecorate(err, "Band.Forces")
	}

	energies := make([]float64, n)
	for i, im := range B.Images {
		energies[i] = im.Energy
	}
	S, err := newBandState(B, energies)
	if err != nil {
		return nil, errDecorate(err, "Band.Forces")
	}
	B.imax = S.imax
	B.energies = energies

	F := v3.Zeros((n - 2) * nat)
	for i := 1; i < n-1; i++ {
		t := S.tangent(i)
		raw := B.Images[i].Forces
		tf := v3.Dot(raw, t)
		imgforce := v3.CopyOf(raw)
		if B.o.Climb && i == S.imax {
			//The climbing image feels no spring force; its tangential
			//component is inverted instead of discarded, which is
			//what makes it converge onto the saddle point.
			if B.o.Method == Plain {
				mag := v3.Dot(t, t)
				imgforce.AddScaled(imgforce, -2*tf/mag, t)
			} else {
				imgforce.AddScaled(imgforce, -2*tf, t)
			}
		} else {
			S.addSpringForce(i, tf, t, imgforce, S.springs[i-1], S.springs[i])
		}
		F.SetMatrix((i-1)*nat, 0, imgforce)
	}
	return F, nil
}
