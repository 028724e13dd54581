/*
 * neb_test.go, part of goneb.
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

package neb

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"testing"

	v3 "goneb/v3"
)

//prescribedCalc returns fixed values, so the force-assembly algebra
//can be checked by hand.
type prescribedCalc struct {
	e float64
	f *v3.Matrix
}

func (P *prescribedCalc) EnergyForces(ctx context.Context, coords *v3.Matrix) (float64, *v3.Matrix, error) {
	return P.e, v3.CopyOf(P.f), nil
}

//lineImages returns n single-atom images along x at 0,1,...,n-1, each
//with its own prescribed calculator.
func lineImages(energies []float64, rawForce *v3.Matrix) ([]Atom, []*Image) {
	atoms := []Atom{{Symbol: "H"}}
	images := make([]*Image, len(energies))
	for i := range energies {
		c := v3.Zeros(1)
		c.Set(0, 0, float64(i))
		images[i] = NewImage(c, &prescribedCalc{e: energies[i], f: rawForce})
	}
	return atoms, images
}

func plainOpts() *Options {
	o := DefaultOptions()
	o.Workers = 2
	o.RemoveRotTrans = false
	return o
}

func TestBandValidation(Te *testing.T) {
	raw := v3.Zeros(1)
	atoms, images := lineImages([]float64{0, 1, 0}, raw)
	if _, err := NewBand(atoms, images[:2], plainOpts()); err == nil {
		Te.Error("band of 2 images accepted")
	}
	//shared calculator
	images[2].Calc = images[1].Calc
	if _, err := NewBand(atoms, images, plainOpts()); err == nil {
		Te.Error("shared calculator accepted")
	}
	//nil interior calculator
	_, images = lineImages([]float64{0, 1, 0}, raw)
	images[1].Calc = nil
	if _, err := NewBand(atoms, images, plainOpts()); err == nil {
		Te.Error("nil interior calculator accepted")
	}
	//nil endpoint calculators are fine
	_, images = lineImages([]float64{0, 1, 0}, raw)
	images[0].Calc = nil
	images[2].Calc = nil
	if _, err := NewBand(atoms, images, plainOpts()); err != nil {
		Te.Error(err)
	}
	//atom count mismatch
	_, images = lineImages([]float64{0, 1, 0}, raw)
	images[1].Coords = v3.Zeros(2)
	if _, err := NewBand(atoms, images, plainOpts()); err == nil {
		Te.Error("mismatched image accepted")
	}
}

func TestForcesPlain(Te *testing.T) {
	raw := v3.Zeros(1)
	raw.Set(0, 0, 1)
	raw.Set(0, 2, 1)
	atoms, images := lineImages([]float64{0, 1, 3, 1, 0}, raw)
	b, err := NewBand(atoms, images, plainOpts())
	if err != nil {
		Te.Fatal(err)
	}
	F, err := b.Forces(context.Background())
	if err != nil {
		Te.Fatal(err)
	}
	if F.NVecs() != 3 {
		Te.Errorf("want 3 interior force vectors, got %d", F.NVecs())
	}
	if b.Imax() != 2 {
		Te.Errorf("imax: want 2, got %d", b.Imax())
	}
	if b.Emax() != 3 {
		Te.Errorf("emax: want 3, got %g", b.Emax())
	}
	e := b.Energies()
	if !math.IsNaN(e[0]) || !math.IsNaN(e[4]) {
		Te.Error("plain method should leave endpoint energies unknown")
	}
	//image 1, below the climber: tangent (1,0,0), uniform spacing so
	//no net spring, the tangential raw component removed.
	for j, want := range []float64{0, 0, 1} {
		if got := F.At(0, j); math.Abs(got-want) > 1e-12 {
			Te.Errorf("image 1 force[%d]: want %g, got %g", j, want, got)
		}
	}
	//image 2 is the climber: tangent (2,0,0), tf=2, |t|^2=4, so the
	//raw (1,0,1) becomes (-1,0,1). No spring force on it.
	for j, want := range []float64{-1, 0, 1} {
		if got := F.At(1, j); math.Abs(got-want) > 1e-12 {
			Te.Errorf("climber force[%d]: want %g, got %g", j, want, got)
		}
	}
	fmt.Println("plain forces", F)
}

func TestImaxTieBreak(Te *testing.T) {
	raw := v3.Zeros(1)
	atoms, images := lineImages([]float64{0, 3, 3, 0}, raw)
	b, err := NewBand(atoms, images, plainOpts())
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := b.Forces(context.Background()); err != nil {
		Te.Fatal(err)
	}
	if b.Imax() != 1 {
		Te.Errorf("tie should go to the lowest index: want 1, got %d", b.Imax())
	}
}

func TestEndpointEnergies(Te *testing.T) {
	raw := v3.Zeros(1)
	raw.Set(0, 1, 0.5)
	atoms, images := lineImages([]float64{0, 1, 2, 1, 0}, raw)
	o := plainOpts()
	o.Method = ImprovedTangent
	//no endpoint calculators and no cached energies: must fail.
	images[0].Calc = nil
	images[4].Calc = nil
	b, err := NewBand(atoms, images, o)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := b.Forces(context.Background()); err == nil {
		Te.Error("improvedtangent without endpoint energies should fail")
	}
	//cached endpoint energies make the calculators unnecessary.
	images[0].Energy = 0
	images[4].Energy = 0
	if _, err := b.Forces(context.Background()); err != nil {
		Te.Error(err)
	}
	e := b.Energies()
	if e[0] != 0 || e[4] != 0 {
		Te.Error("cached endpoint energies not used")
	}
}

func TestSuperpose(Te *testing.T) {
	test := v3.Zeros(4)
	data := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1.3, 0}, {0.2, 0.4, 1.1}}
	for i, v := range data {
		for j := 0; j < 3; j++ {
			test.Set(i, j, v[j])
		}
	}
	//rotate 90 degrees around z and translate.
	rotated := v3.Zeros(4)
	for i := 0; i < 4; i++ {
		x, y, z := test.At(i, 0), test.At(i, 1), test.At(i, 2)
		rotated.Set(i, 0, -y+5)
		rotated.Set(i, 1, x-2)
		rotated.Set(i, 2, z+0.7)
	}
	back, err := Superpose(rotated, test)
	if err != nil {
		Te.Fatal(err)
	}
	rmsd, err := RMSD(back, test)
	if err != nil {
		Te.Fatal(err)
	}
	if rmsd > 1e-8 {
		Te.Errorf("superposition left RMSD %g", rmsd)
	}
}

func TestEnergyConversion(Te *testing.T) {
	fac, err := EnergyConversion("kcal/mol")
	if err != nil || fac != EV2Kcal {
		Te.Error("kcal/mol conversion wrong", fac, err)
	}
	if _, err := EnergyConversion("Hartree"); err != nil {
		Te.Error(err)
	}
	if _, err := EnergyConversion("furlongs"); err == nil {
		Te.Error("bogus unit accepted")
	}
	if _, err := MethodByName("bogus"); err == nil {
		Te.Error("bogus method accepted")
	}
	if m, err := MethodByName("aseneb"); err != nil || m != Plain {
		Te.Error("aseneb should alias plain")
	}
}

func TestXYZRoundTrip(Te *testing.T) {
	atoms := []Atom{{"O"}, {"H"}, {"H"}}
	coords := v3.Zeros(3)
	vals := []float64{0, 0, 0.1173, 0, 0.7572, -0.4692, 0, -0.7572, -0.4692}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			coords.Set(i, j, vals[3*i+j])
		}
	}
	var buf bytes.Buffer
	if err := XYZWrite(&buf, atoms, coords, "water"); err != nil {
		Te.Fatal(err)
	}
	ratoms, frames, err := XYZRead(&buf)
	if err != nil {
		Te.Fatal(err)
	}
	if !SameTopology(atoms, ratoms) {
		Te.Error("topology lost in the round trip")
	}
	if len(frames) != 1 {
		Te.Fatalf("want 1 frame, got %d", len(frames))
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(frames[0].At(i, j)-coords.At(i, j)) > 1e-7 {
				Te.Errorf("coordinate %d,%d lost precision", i, j)
			}
		}
	}
}
