/*
 * nts_test.go, part of goneb.
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
 */

package traj

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	neb "goneb"
	v3 "goneb/v3"
)

var testAtoms = []neb.Atom{{Symbol: "O"}, {Symbol: "H"}}

//testSnapshot returns nnodes geometries, node i displaced by i along
//x plus a small iteration-dependent shift.
func testSnapshot(nnodes int, shift float64) []*v3.Matrix {
	coords := make([]*v3.Matrix, nnodes)
	for i := range coords {
		c := v3.Zeros(len(testAtoms))
		c.Set(0, 0, float64(i)+shift)
		c.Set(1, 0, float64(i)+shift)
		c.Set(1, 1, 0.95731)
		coords[i] = c
	}
	return coords
}

func writeTestTraj(Te *testing.T, name string, energies [][]float64) string {
	full := filepath.Join(Te.TempDir(), name)
	w, err := NewWriter(full, testAtoms, len(energies[0]), nil)
	if err != nil {
		Te.Fatal(err)
	}
	defer w.Close()
	for it, e := range energies {
		if err := w.WSnapshot(e, testSnapshot(len(e), float64(it)*0.01)); err != nil {
			Te.Fatal(err)
		}
	}
	return full
}

func TestWriteRead(Te *testing.T) {
	nan := math.NaN()
	energies := [][]float64{
		{nan, 2.5, 5.25, 3.0, nan},
		{nan, 2.0, 4.75, 2.5, nan},
	}
	//one file per compression backend; the format is the same bytes
	//under each of them.
	for _, name := range []string{"test.nts", "test.ntz", "test.ntr"} {
		full := writeTestTraj(Te, name, energies)
		res, err := Read(full)
		if err != nil {
			Te.Fatal(err)
		}
		if res.NIterations() != 2 || res.NNodes() != 5 {
			Te.Fatalf("%s: want 2 iterations of 5 nodes, got %d of %d", name, res.NIterations(), res.NNodes())
		}
		if !neb.SameTopology(res.Atoms, testAtoms) {
			Te.Errorf("%s: topology lost", name)
		}
		for it := range energies {
			for n, want := range energies[it] {
				got := res.Energies[it][n]
				if math.IsNaN(want) != math.IsNaN(got) {
					Te.Errorf("%s: energy [%d][%d] NaN-ness lost", name, it, n)
				}
				if !math.IsNaN(want) && math.Abs(want-got) > 1e-12 {
					Te.Errorf("%s: energy [%d][%d]: want %g, got %g", name, it, n, want, got)
				}
			}
		}
		ref := testSnapshot(5, 0.01)
		for n := 0; n < 5; n++ {
			for i := 0; i < len(testAtoms); i++ {
				for j := 0; j < 3; j++ {
					if math.Abs(res.Coords[1][n].At(i, j)-ref[n].At(i, j)) > 1.1e-5 {
						Te.Errorf("%s: coordinate [%d][%d][%d,%d] off by more than the encoding precision", name, 1, n, i, j)
					}
				}
			}
		}
		fmt.Println(name, "round trip fine")
	}
}

func TestAnalysis(Te *testing.T) {
	full := writeTestTraj(Te, "analysis.nts", [][]float64{{0, 2, 5, 3, 1}})
	res, err := Read(full)
	if err != nil {
		Te.Fatal(err)
	}
	if ok, err := res.IsEnergyCompleted(-1); err != nil || !ok {
		Te.Error("complete energies reported incomplete", err)
	}
	barr, err := res.Barrier(-1, "eV")
	if err != nil || math.Abs(barr-5) > 1e-12 {
		Te.Error("barrier: want 5 eV, got", barr, err)
	}
	barr, err = res.Barrier(-1, "kcal/mol")
	if err != nil || math.Abs(barr-5*neb.EV2Kcal) > 1e-9 {
		Te.Error("barrier in kcal/mol wrong:", barr, err)
	}
	re, err := res.ReactionEnergy(0, "eV")
	if err != nil || math.Abs(re-1) > 1e-12 {
		Te.Error("reaction energy: want 1 eV, got", re, err)
	}
	hi, err := res.HighestNode(-1)
	if err != nil || hi != 2 {
		Te.Error("highest node: want 2, got", hi, err)
	}
	if _, err := res.Barrier(-1, "smoots"); err == nil {
		Te.Error("bogus unit accepted")
	}
	if _, err := res.Barrier(5, "eV"); err == nil {
		Te.Error("out-of-range iteration accepted")
	}
}

func TestBackfill(Te *testing.T) {
	nan := math.NaN()
	full := writeTestTraj(Te, "backfill.nts", [][]float64{{nan, 2, 5, 3, nan}, {nan, 1.5, 4, 2.5, nan}})
	res, err := Read(full)
	if err != nil {
		Te.Fatal(err)
	}
	if ok, _ := res.IsEnergyCompleted(-1); ok {
		Te.Error("incomplete energies reported complete")
	}
	if _, err := res.Barrier(-1, "eV"); err == nil {
		Te.Error("barrier over incomplete energies accepted")
	}
	if err := res.CompleteEnergy(1, 7.0); err == nil {
		Te.Error("backfill of an interior node accepted")
	}
	if err := res.CompleteEnergy(0, 0.0); err != nil {
		Te.Error(err)
	}
	if err := res.CompleteEnergy(-1, 1.0); err != nil {
		Te.Error(err)
	}
	if ok, _ := res.IsEnergyCompleted(0); !ok {
		Te.Error("backfill should cover every iteration")
	}
	barr, err := res.Barrier(-1, "eV")
	if err != nil || math.Abs(barr-4) > 1e-12 {
		Te.Error("post-backfill barrier: want 4 eV, got", barr, err)
	}
	//a known, conflicting value must not be silently replaced.
	if err := res.CompleteEnergy(0, 0.5); err == nil {
		Te.Error("conflicting backfill accepted without overwrite")
	}
	if err := res.CompleteEnergy(0, 0.5, true); err != nil {
		Te.Error(err)
	}
	if res.Energies[0][0] != 0.5 {
		Te.Error("forced overwrite did not take")
	}
}

func TestSaveXYZ(Te *testing.T) {
	full := writeTestTraj(Te, "save.nts", [][]float64{{0, 2, 5, 3, 1}})
	res, err := Read(full)
	if err != nil {
		Te.Fatal(err)
	}
	out := filepath.Join(Te.TempDir(), "path.xyz")
	if err := res.SaveXYZ(out, "kcal/mol", nil, nil); err != nil {
		Te.Fatal(err)
	}
	atoms, frames, err := neb.XYZFileRead(out)
	if err != nil {
		Te.Fatal(err)
	}
	if !neb.SameTopology(atoms, testAtoms) {
		Te.Error("topology lost in XYZ export")
	}
	if len(frames) != 5 {
		Te.Errorf("want 5 frames, got %d", len(frames))
	}
	//negative node selection: just the transition-state region.
	out2 := filepath.Join(Te.TempDir(), "ts.xyz")
	if err := res.SaveXYZ(out2, "eV", []int{-1}, []int{-3}); err != nil {
		Te.Fatal(err)
	}
	_, frames, err = neb.XYZFileRead(out2)
	if err != nil {
		Te.Fatal(err)
	}
	if len(frames) != 1 {
		Te.Errorf("want 1 frame, got %d", len(frames))
	}
	if math.Abs(frames[0].At(0, 0)-2.0) > 1.1e-5 {
		Te.Error("node -3 should resolve to node 2")
	}
}
