/*
 * methods_test.go, part of goneb.
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
	"context"
	"math"
	"testing"

	v3 "goneb/v3"
)

//Every method should assemble finite forces of the right shape on a
//well-formed band; the plain method is checked value by value in
//TestForcesPlain, this is the smoke screen for the rest.
func TestForcesAllMethods(Te *testing.T) {
	raw := v3.Zeros(1)
	raw.Set(0, 0, 0.3)
	raw.Set(0, 1, -0.2)
	for _, m := range []Method{ImprovedTangent, EB, Spline, String} {
		atoms, images := lineImages([]float64{0, 1, 3, 1, 0}, raw)
		o := plainOpts()
		o.Method = m
		b, err := NewBand(atoms, images, o)
		if err != nil {
			Te.Fatal(err)
		}
		F, err := b.Forces(context.Background())
		if err != nil {
			Te.Fatalf("%v: %v", m, err)
		}
		if F.NVecs() != 3 {
			Te.Errorf("%v: want 3 interior force vectors, got %d", m, F.NVecs())
		}
		for i := 0; i < F.NVecs(); i++ {
			for j := 0; j < 3; j++ {
				if math.IsNaN(F.At(i, j)) || math.IsInf(F.At(i, j), 0) {
					Te.Errorf("%v: non-finite force at %d,%d", m, i, j)
				}
			}
		}
		if b.Imax() != 2 {
			Te.Errorf("%v: imax want 2, got %d", m, b.Imax())
		}
		//the non-plain methods evaluate the endpoints too.
		if math.IsNaN(b.Energies()[0]) {
			Te.Errorf("%v: endpoint energy not evaluated", m)
		}
	}
}

//With the string method the perpendicular projection should leave
//nothing along the tangent.
func TestStringPerpendicular(Te *testing.T) {
	raw := v3.Zeros(1)
	raw.Set(0, 0, 0.7)
	raw.Set(0, 2, 0.4)
	atoms, images := lineImages([]float64{0, 1, 2, 3, 4}, raw)
	o := plainOpts()
	o.Method = String
	o.Climb = false
	b, err := NewBand(atoms, images, o)
	if err != nil {
		Te.Fatal(err)
	}
	F, err := b.Forces(context.Background())
	if err != nil {
		Te.Fatal(err)
	}
	//the band is a straight line along x, so the tangents are all
	//(1,0,0) and the x component must be projected out entirely.
	for i := 0; i < F.NVecs(); i++ {
		if math.Abs(F.At(i, 0)) > 1e-9 {
			Te.Errorf("tangential component survived at %d: %g", i, F.At(i, 0))
		}
		if math.Abs(F.At(i, 2)-0.4) > 1e-9 {
			Te.Errorf("perpendicular component mangled at %d: %g", i, F.At(i, 2))
		}
	}
}

//Equal-arc-length reparametrization on a collinear band must even out
//the spacing exactly, endpoints untouched.
func TestStringReparametrize(Te *testing.T) {
	raw := v3.Zeros(1)
	atoms, images := lineImages([]float64{0, 0, 0, 0, 0}, raw)
	xs := []float64{0, 0.5, 1, 3, 4}
	for i, x := range xs {
		images[i].Coords.Set(0, 0, x)
	}
	o := plainOpts()
	o.Method = String
	b, err := NewBand(atoms, images, o)
	if err != nil {
		Te.Fatal(err)
	}
	b.SetPositions(b.Positions()) //triggers the respacing
	for i := 0; i < 5; i++ {
		if math.Abs(b.Images[i].Coords.At(0, 0)-float64(i)) > 1e-8 {
			Te.Errorf("image %d at x=%g, want %d", i, b.Images[i].Coords.At(0, 0), i)
		}
	}
}

//The energy-weighted tangent must point uphill on monotonic
//stretches and blend at extrema; three equal energies fall back to
//plain bisection.
func TestEnergyWeightedTangent(Te *testing.T) {
	raw := v3.Zeros(1)
	atoms, images := lineImages([]float64{0, 1, 2, 1, 0}, raw)
	o := plainOpts()
	o.Method = ImprovedTangent
	b, err := NewBand(atoms, images, o)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := b.Forces(context.Background()); err != nil {
		Te.Fatal(err)
	}
	S, err := newBandState(b, b.Energies())
	if err != nil {
		Te.Fatal(err)
	}
	//image 1 sits on an uphill stretch: tangent is the unit forward
	//difference (1,0,0).
	t := S.tangent(1)
	if math.Abs(t.At(0, 0)-1) > 1e-12 || math.Abs(t.Norm()-1) > 1e-12 {
		Te.Error("uphill tangent wrong:", t.At(0, 0), t.At(0, 1), t.At(0, 2))
	}
	//image 3 is downhill: unit backward difference, still forward
	//pointing.
	t = S.tangent(3)
	if math.Abs(t.At(0, 0)-1) > 1e-12 {
		Te.Error("downhill tangent wrong:", t.At(0, 0))
	}
	//flat band: the degenerate fallback still yields a unit tangent.
	for _, im := range b.Images {
		im.Energy = 1.0
	}
	S, err = newBandState(b, []float64{1, 1, 1, 1, 1})
	if err != nil {
		Te.Fatal(err)
	}
	t = S.tangent(2)
	if math.Abs(t.Norm()-1) > 1e-12 {
		Te.Error("flat-band tangent not normalized:", t.Norm())
	}
}
