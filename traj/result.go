/*
 * result.go, part of goneb.
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

package traj

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"

	neb "goneb"
	v3 "goneb/v3"
)

//Result is a whole nts trajectory loaded in memory, the frames
//grouped back into iterations. Energies are in eV, NaN where the
//trajectory recorded them as unknown (the fixed endpoints, with
//methods that don't need them).
type Result struct {
	Atoms    []neb.Atom
	Energies [][]float64  //Energies[iteration][node]
	Coords   [][]*v3.Matrix //Coords[iteration][node]
	filename string
}

//Read loads the whole nts file name into a Result. A trailing
//incomplete iteration (a run killed mid-write) is dropped with a
//logged warning rather than failing the read.
func Read(name string) (*Result, error) {
	R, _, err := New(name)
	if err != nil {
		return nil, err
	}
	defer R.Close()
	res := &Result{Atoms: R.Atoms(), filename: name}
	nnodes := R.NNodes()
	var curE []float64
	var curC []*v3.Matrix
	for {
		c := v3.Zeros(R.Len())
		e, err := R.Next(c)
		if err != nil {
			if _, ok := err.(*LastFrameError); ok {
				break
			}
			return nil, errDecorate(err, "Read")
		}
		curE = append(curE, e)
		curC = append(curC, c)
		if len(curE) == nnodes {
			res.Energies = append(res.Energies, curE)
			res.Coords = append(res.Coords, curC)
			curE = nil
			curC = nil
		}
	}
	if len(curE) != 0 {
		log.Printf("Trajectory %s ends mid-iteration (%d of %d frames); dropping the partial iteration", name, len(curE), nnodes)
	}
	if len(res.Energies) == 0 {
		return nil, Error{"trajectory contains no complete iteration", name, []string{"Read"}, true}
	}
	return res, nil
}

//NIterations returns the number of complete iterations.
func (R *Result) NIterations() int { return len(R.Energies) }

//NNodes returns the number of nodes per iteration.
func (R *Result) NNodes() int { return len(R.Energies[0]) }

//resolve maps a possibly negative index (-1 is the last element) into
//[0,n). Out-of-range indexes return an error.
func (R *Result) resolve(i, n int, what string) (int, error) {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, Error{fmt.Sprintf("%s index %d out of range [0,%d)", what, i, n), R.filename, []string{"resolve"}, true}
	}
	return i, nil
}

//IsEnergyCompleted returns whether every node of the given iteration
//has a known energy.
func (R *Result) IsEnergyCompleted(iteration int) (bool, error) {
	it, err := R.resolve(iteration, R.NIterations(), "iteration")
	if err != nil {
		return false, errDecorate(err, "IsEnergyCompleted")
	}
	for _, e := range R.Energies[it] {
		if math.IsNaN(e) {
			return false, nil
		}
	}
	return true, nil
}

//CompleteEnergy backfills the energy of an endpoint node (0 or -1)
//across all iterations, as obtained from a separate single-point run.
//Only endpoints qualify: they are the only nodes whose geometry, and
//therefore energy, is the same in every iteration. A known,
//conflicting value is an error unless overwrite is given and true.
func (R *Result) CompleteEnergy(node int, energy float64, overwrite ...bool) error {
	nd, err := R.resolve(node, R.NNodes(), "node")
	if err != nil {
		return errDecorate(err, "CompleteEnergy")
	}
	if nd != 0 && nd != R.NNodes()-1 {
		return Error{fmt.Sprintf("node %d is not an endpoint; interior energies move with the geometry and can't be backfilled", nd), R.filename, []string{"CompleteEnergy"}, true}
	}
	ow := len(overwrite) > 0 && overwrite[0]
	for it := range R.Energies {
		old := R.Energies[it][nd]
		if !math.IsNaN(old) && old != energy && !ow {
			return Error{fmt.Sprintf("node %d already has energy %g in iteration %d, refusing to overwrite with %g", nd, old, it, energy), R.filename, []string{"CompleteEnergy"}, true}
		}
		R.Energies[it][nd] = energy
	}
	return nil
}

//completeEnergies returns the energies of the given iteration,
//failing if any of them is unknown.
func (R *Result) completeEnergies(iteration int, caller string) ([]float64, error) {
	it, err := R.resolve(iteration, R.NIterations(), "iteration")
	if err != nil {
		return nil, errDecorate(err, caller)
	}
	e := R.Energies[it]
	for n, v := range e {
		if math.IsNaN(v) {
			return nil, Error{fmt.Sprintf("energy of node %d in iteration %d is unknown; run the endpoints and CompleteEnergy first", n, it), R.filename, []string{caller}, true}
		}
	}
	return e, nil
}

//Barrier returns the forward activation energy of the given iteration
//(-1 for the last): the highest node energy minus the reactant
//energy, in the requested unit.
func (R *Result) Barrier(iteration int, unit string) (float64, error) {
	e, err := R.completeEnergies(iteration, "Barrier")
	if err != nil {
		return 0, err
	}
	fac, err := neb.EnergyConversion(unit)
	if err != nil {
		return 0, errDecorate(err, "Barrier")
	}
	max := e[0]
	for _, v := range e {
		if v > max {
			max = v
		}
	}
	return (max - e[0]) * fac, nil
}

//ReactionEnergy returns the product energy minus the reactant energy
//of the given iteration, in the requested unit.
func (R *Result) ReactionEnergy(iteration int, unit string) (float64, error) {
	e, err := R.completeEnergies(iteration, "ReactionEnergy")
	if err != nil {
		return 0, err
	}
	fac, err := neb.EnergyConversion(unit)
	if err != nil {
		return 0, errDecorate(err, "ReactionEnergy")
	}
	return (e[len(e)-1] - e[0]) * fac, nil
}

//HighestNode returns the index of the highest-energy node of the
//given iteration; with a converged climbing run that is the
//transition-state estimate. Ties go to the lowest index.
func (R *Result) HighestNode(iteration int) (int, error) {
	e, err := R.completeEnergies(iteration, "HighestNode")
	if err != nil {
		return 0, err
	}
	hi := 0
	for n, v := range e {
		if v > e[hi] {
			hi = n
		}
	}
	return hi, nil
}

//Geometry returns the coordinates of one node in one iteration
//(negative indexes count from the end). The returned matrix is the
//Result's own; copy it before mutating.
func (R *Result) Geometry(iteration, node int) (*v3.Matrix, error) {
	it, err := R.resolve(iteration, R.NIterations(), "iteration")
	if err != nil {
		return nil, errDecorate(err, "Geometry")
	}
	nd, err := R.resolve(node, R.NNodes(), "node")
	if err != nil {
		return nil, errDecorate(err, "Geometry")
	}
	return R.Coords[it][nd], nil
}

//SaveXYZ writes the selected frames to a multi-frame XYZ file, one
//block per (iteration, node) pair in the given order, with the
//energies converted to unit in the title lines. Negative indexes
//count from the end; a nil iterations slice means just the last
//iteration, and a nil nodes slice means all nodes.
func (R *Result) SaveXYZ(name, unit string, iterations, nodes []int) error {
	if R.Atoms == nil {
		return Error{"trajectory header carries no symbols; can't write XYZ", R.filename, []string{"SaveXYZ"}, true}
	}
	fac, err := neb.EnergyConversion(unit)
	if err != nil {
		return errDecorate(err, "SaveXYZ")
	}
	if iterations == nil {
		iterations = []int{-1}
	}
	if nodes == nil {
		nodes = make([]int, R.NNodes())
		for i := range nodes {
			nodes[i] = i
		}
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, rit := range iterations {
		it, err := R.resolve(rit, R.NIterations(), "iteration")
		if err != nil {
			return errDecorate(err, "SaveXYZ")
		}
		for _, rnd := range nodes {
			nd, err := R.resolve(rnd, R.NNodes(), "node")
			if err != nil {
				return errDecorate(err, "SaveXYZ")
			}
			title := fmt.Sprintf("#ITR %d; #NODE %d; E = nan", it, nd)
			if e := R.Energies[it][nd]; !math.IsNaN(e) {
				title = fmt.Sprintf("#ITR %d; #NODE %d; E = %.8f %s", it, nd, e*fac, unit)
			}
			if err := neb.XYZWrite(w, R.Atoms, R.Coords[it][nd], title); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}
