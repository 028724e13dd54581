/*
 * optimize.go, part of goneb.
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
	"fmt"
	"strings"

	v3 "goneb/v3"
)

//System is what the optimizers move: anything exposing a stacked
//coordinate vector and the generalized force on it. Forces may be
//expensive (it usually fans out to external programs) and is called
//exactly once per step.
type System interface {
	Positions() *v3.Matrix
	SetPositions(*v3.Matrix)
	Forces(ctx context.Context) (*v3.Matrix, error)
}

//Observer is called after every force evaluation with the step number
//(0 for the initial evaluation) and the current convergence measure.
//A non-nil return aborts the optimization with that error.
type Observer func(step int, fmax float64) error

//Optimizer relaxes a System until the largest per-vector force norm
//falls to fmax or below, or maxSteps steps have been taken. It
//returns the number of steps actually taken and whether convergence
//was reached; running out of steps is a result, not an error.
type Optimizer interface {
	Run(ctx context.Context, sys System, fmax float64, maxSteps int) (steps int, converged bool, err error)
	Attach(Observer)
}

//New returns the optimizer named by name: "fire", "lbfgs", or
//"fire+lbfgs" (also accepted as "composite"). An unknown name fails
//here, not mid-run.
func New(name string) (Optimizer, error) {
	switch strings.ToLower(name) {
	case "fire":
		return NewFIRE(), nil
	case "lbfgs":
		return NewLBFGS(), nil
	case "fire+lbfgs", "composite":
		return NewComposite(), nil
	}
	return nil, fmt.Errorf("goneb/optimize: unknown optimizer %q", name)
}

//notifier carries the attached observers; the concrete optimizers
//embed it.
type notifier struct {
	obs []Observer
}

//Attach registers an observer. Observers run in attachment order.
func (N *notifier) Attach(o Observer) {
	N.obs = append(N.obs, o)
}

func (N *notifier) notify(step int, fmax float64) error {
	for _, o := range N.obs {
		if err := o(step, fmax); err != nil {
			return err
		}
	}
	return nil
}
