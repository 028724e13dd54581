/*
 * lbfgs.go, part of goneb.
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

//LBFGS is a limited-memory quasi-Newton optimizer working on forces
//only: no line search, no energy. It converges much faster than FIRE
//once inside the quadratic region, and much worse outside it; see
//Composite for the usual pairing. The zero value is not ready to use;
//call NewLBFGS.
type LBFGS struct {
	notifier
	Memory  int     //stored update pairs
	Maxstep float64 //largest per-vector displacement per step
	H0      float64 //initial inverse-Hessian diagonal
}

//NewLBFGS returns an LBFGS optimizer with the standard parameters.
func NewLBFGS() *LBFGS {
	return &LBFGS{
		Memory:  100,
		Maxstep: 0.2,
		H0:      1.0 / 70.0,
	}
}

//Run relaxes sys. See the Optimizer interface for the contract.
func (O *LBFGS) Run(ctx context.Context, sys System, fmax float64, maxSteps int) (int, bool, error) {
	var ss, ys []*v3.Matrix //position and gradient differences
	var rhos []float64
	var prevPos, prevGrad *v3.Matrix
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
		pos := sys.Positions()
		grad := v3.CopyOf(f)
		grad.Scale(-1, grad)
		if prevPos != nil {
			s := v3.CopyOf(pos)
			s.Sub(s, prevPos)
			y := v3.CopyOf(grad)
			y.Sub(y, prevGrad)
			if sy := v3.Dot(s, y); sy > 1e-10 { //skip updates that break positive-definiteness
				ss = append(ss, s)
				ys = append(ys, y)
				rhos = append(rhos, 1.0/sy)
				if len(ss) > O.Memory {
					ss = ss[1:]
					ys = ys[1:]
					rhos = rhos[1:]
				}
			}
		}
		//two-loop recursion for z = H*grad.
		q := v3.CopyOf(grad)
		alphas := make([]float64, len(ss))
		for i := len(ss) - 1; i >= 0; i-- {
			alphas[i] = rhos[i] * v3.Dot(ss[i], q)
			q.AddScaled(q, -alphas[i], ys[i])
		}
		z := v3.CopyOf(q)
		z.Scale(O.H0, z)
		for i := 0; i < len(ss); i++ {
			beta := rhos[i] * v3.Dot(ys[i], z)
			z.AddScaled(z, alphas[i]-beta, ss[i])
		}
		dr := v3.CopyOf(z)
		dr.Scale(-1, dr)
		if m := dr.MaxRowNorm(); m > O.Maxstep {
			dr.Scale(O.Maxstep/m, dr)
		}
		prevPos = v3.CopyOf(pos)
		prevGrad = grad
		pos.Add(pos, dr)
		sys.SetPositions(pos)
	}
}
