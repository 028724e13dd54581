/*
 * composite.go, part of goneb.
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
	"context"
	"math"
)

//Composite runs FIRE down to a loose threshold and hands the system
//over to LBFGS for the final convergence: FIRE's robustness where the
//band is still rough, LBFGS's speed where it is already smooth.
type Composite struct {
	F *FIRE
	L *LBFGS
	//Switch is the fmax at which FIRE hands over. The effective
	//threshold is max(Switch, fmax): asking for a looser final fmax
	//than Switch just skips the LBFGS stage.
	Switch float64
}

//NewComposite returns a Composite with standard FIRE and LBFGS stages
//and a handover threshold of 0.1.
func NewComposite() *Composite {
	return &Composite{F: NewFIRE(), L: NewLBFGS(), Switch: 0.1}
}

//Attach registers the observer on both stages.
func (O *Composite) Attach(obs Observer) {
	O.F.Attach(obs)
	O.L.Attach(obs)
}

//Run relaxes sys. The step count is cumulative over both stages, and
//the LBFGS stage gets whatever of maxSteps the FIRE stage left over.
func (O *Composite) Run(ctx context.Context, sys System, fmax float64, maxSteps int) (int, bool, error) {
	handover := math.Max(O.Switch, fmax)
	steps, conv, err := O.F.Run(ctx, sys, handover, maxSteps)
	if err != nil || !conv {
		return steps, false, err
	}
	if handover <= fmax {
		return steps, true, nil
	}
	left := maxSteps - steps
	steps2, conv, err := O.L.Run(ctx, sys, fmax, left)
	return steps + steps2, conv, err
}
