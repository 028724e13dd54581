/*
 * fire.go, part of goneb.
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

package optimize

import (
	v3 "goneb/v3"

	"context"
)

//FIRE is the fast inertial relaxation engine: damped molecular
//dynamics with an adaptive time step. Slow near the minimum, but very
//tolerant of the bad starting geometries and discontinuous force
//fields that chain-of-states runs produce. The zero value is not
//ready to use; call NewFIRE.
type FIRE struct {
	notifier
	//The knobs below follow the original paper's recommendations and
	//rarely need touching.
	Dt      float64 //initial time step
	Maxstep float64 //largest per-vector displacement per step
	Dtmax   float64
	Nmin    int
	Finc    float64
	Fdec    float64
	Astart  float64
	Fa      float64
}

//NewFIRE returns a FIRE optimizer with the standard parameters.
func NewFIRE() *FIRE {
	return &FIRE{
		Dt:      0.1,
		Maxstep: 0.2,
		Dtmax:   1.0,
		Nmin:    5,
		Finc:    1.1,
		Fdec:    0.5,
		Astart:  0.1,
		Fa:      0.99,
	}
}

//Run relaxes sys. See the Optimizer interface for the contract.
func (O *FIRE) Run(ctx context.Context, sys System, fmax float64, maxSteps int) (int, bool, error) {
	dt := O.Dt
	a := O.Astart
	var nuphill int
	var v *v3.Matrix
	for step := 0; ; step++ {
		f, err := sys.Forces(ctx)
		if err != nil {
			return step, false, err
		}
		cur := f.MaxRowNorm()
		if err := O.notify(step, cur); err != nil {
			return step, false, err
		}
		if cur <= fmax {
			return step, true, nil
		}
		if step == maxSteps {
			return step, false, nil
		}
		if v == nil {
			v = v3.Zeros(f.NVecs())
		}
		vf := v3.Dot(v, f)
		if vf > 0 {
			//still going downhill: mix in the force direction and,
			//after Nmin good steps, speed up.
			fnorm := f.Norm()
			vnorm := v.Norm()
			v.Scale(1-a, v)
			if fnorm > 0 {
				v.AddScaled(v, a*vnorm/fnorm, f)
			}
			if nuphill > O.Nmin {
				if dt*O.Finc < O.Dtmax {
					dt *= O.Finc
				} else {
					dt = O.Dtmax
				}
				a *= O.Fa
			}
			nuphill++
		} else {
			//overshot: stop dead and restart the damping.
			v.Scale(0, v)
			a = O.Astart
			dt *= O.Fdec
			nuphill = 0
		}
		v.AddScaled(v, dt, f)
		dr := v3.CopyOf(v)
		dr.Scale(dt, dr)
		if m := dr.MaxRowNorm(); m > O.Maxstep {
			dr.Scale(O.Maxstep/m, dr)
		}
		p := sys.Positions()
		p.Add(p, dr)
		sys.SetPositions(p)
	}
}
