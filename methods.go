/*
 * methods.go, part of goneb.
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
	"math"
	"strings"

	v3 "goneb/v3"

	"gonum.org/v1/gonum/interp"
)

//Method selects how tangents are estimated and how spring forces
//blend with potential forces. The energy model is the same for all
//methods.
type Method int

const (
	//Plain is the original formulation: raw-difference tangents
	//pointing away from the highest image, springs projected with a
	//normalized dot product.
	Plain Method = iota
	//ImprovedTangent uses energy-weighted tangents, which prevents
	//kinks where the path crosses a local energy extremum.
	ImprovedTangent
	//EB (full spring) adds spring forces computed from the deviation
	//of each inter-image distance from the equilibrium length.
	EB
	//Spline estimates tangents from a cubic spline through the whole
	//chain.
	Spline
	//String keeps only the perpendicular potential force and
	//maintains spacing by equal-arc-length redistribution after each
	//step, instead of springs.
	String
)

//MethodByName returns the method named by name ("plain" or "aseneb",
//"improvedtangent", "eb" or "spring", "spline", "string"). An unknown
//name fails fast, at construction rather than mid-run.
func MethodByName(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "plain", "aseneb":
		return Plain, nil
	case "improvedtangent":
		return ImprovedTangent, nil
	case "eb", "spring":
		return EB, nil
	case "spline":
		return Spline, nil
	case "string":
		return String, nil
	}
	return 0, NewError(ErrInvalidMethod+": "+name, -1)
}

func (m Method) String() string {
	switch m {
	case Plain:
		return "plain"
	case ImprovedTangent:
		return "improvedtangent"
	case EB:
		return "eb"
	case Spline:
		return "spline"
	case String:
		return "string"
	}
	return "unknown"
}

//needsEndpoints returns whether the method requires endpoint energies
//to disambiguate tangent directions across the whole chain.
func (m Method) needsEndpoints() bool {
	return m != Plain
}

//spring is the elastic link between two adjacent images.
type spring struct {
	t  *v3.Matrix //coords[i+1] - coords[i]
	nt float64    //its norm
	k  float64
}

//bandState is the per-force-call view of a band: energies, springs
//and the highest interior image. It is built fresh on every assembly
//and discarded afterwards; the tangent functions are pure over it.
type bandState struct {
	b        *Band
	energies []float64
	springs  []*spring //springs[i] links images i and i+1
	imax     int
	eq       float64      //equilibrium spring length
	stan     []*v3.Matrix //spline tangents per image, Spline/String only
}

func newBandState(b *Band, energies []float64) (*bandState, error) {
	n := b.NImages()
	S := &bandState{b: b, energies: energies}
	S.springs = make([]*spring, n-1)
	for i := 0; i < n-1; i++ {
		t := v3.CopyOf(b.Images[i+1].Coords)
		t.Sub(t, b.Images[i].Coords)
		S.springs[i] = &spring{t: t, nt: t.Norm(), k: b.o.K}
	}
	//strict > with first occurrence winning: ties go to the lowest
	//index.
	S.imax = 1
	for i := 2; i < n-1; i++ {
		if energies[i] > energies[S.imax] {
			S.imax = i
		}
	}
	beeline := v3.CopyOf(b.Images[n-1].Coords)
	beeline.Sub(beeline, b.Images[0].Coords)
	S.eq = beeline.Norm() / float64(n-1)
	if b.o.Method == Spline || b.o.Method == String {
		if err := S.fitSplineTangents(); err != nil {
			return nil, errDecorate(err, "newBandState")
		}
	}
	return S, nil
}

//tangent returns the local path tangent at interior image i. Whether
//it is normalized depends on the method: Plain uses the raw
//difference (the projection normalizes on use), all others return a
//unit tangent.
func (S *bandState) tangent(i int) *v3.Matrix {
	s1 := S.springs[i-1]
	s2 := S.springs[i]
	switch S.b.o.Method {
	case Plain:
		t := v3.Zeros(S.b.NAtoms())
		switch {
		case i < S.imax:
			t.Copy(s2.t)
		case i > S.imax:
			t.Copy(s1.t)
		default:
			t.Add(s1.t, s2.t)
		}
		return t
	case ImprovedTangent:
		return S.energyWeightedTangent(i, s1, s2)
	case EB:
		t := v3.Zeros(S.b.NAtoms())
		t.AddScaled(t, 1/s1.nt, s1.t)
		t.AddScaled(t, 1/s2.nt, s2.t)
		t.Unit(t)
		return t
	case Spline, String:
		return S.stan[i]
	}
	panic(ErrInvalidMethod)
}

//energyWeightedTangent is the improved-tangent estimate: pick the
//uphill difference on monotonic stretches, blend both differences by
//the relative energies around extrema. When the three energies are
//exactly equal there is no slope information at all; we fall back to
//the plain bisection s1.t+s2.t, which is the symmetric choice.
func (S *bandState) energyWeightedTangent(i int, s1, s2 *spring) *v3.Matrix {
	e0 := S.energies[i-1]
	e1 := S.energies[i]
	e2 := S.energies[i+1]
	t := v3.Zeros(S.b.NAtoms())
	switch {
	case e2 > e1 && e1 > e0:
		t.Copy(s2.t)
	case e2 < e1 && e1 < e0:
		t.Copy(s1.t)
	default:
		dmax := math.Max(math.Abs(e2-e1), math.Abs(e0-e1))
		dmin := math.Min(math.Abs(e2-e1), math.Abs(e0-e1))
		if dmax == 0 { //three equal energies
			t.Add(s1.t, s2.t)
		} else if e2 > e0 {
			t.AddScaled(t, dmax, s2.t)
			t.AddScaled(t, dmin, s1.t)
		} else {
			t.AddScaled(t, dmin, s2.t)
			t.AddScaled(t, dmax, s1.t)
		}
	}
	t.Unit(t)
	return t
}

//addSpringForce blends the spring force for interior image i into
//imgforce, after the tangential potential component tf has been
//removed (or, for the climbing image, inverted — that case never
//reaches here). s1 and s2 are the springs to the left and right
//neighbors.
func (S *bandState) addSpringForce(i int, tf float64, tangent, imgforce *v3.Matrix, s1, s2 *spring) {
	switch S.b.o.Method {
	case Plain:
		mag := v3.Dot(tangent, tangent)
		imgforce.AddScaled(imgforce, -tf/mag, tangent)
		sdiff := v3.Zeros(S.b.NAtoms())
		sdiff.AddScaled(sdiff, s1.k, s1.t)
		sdiff.AddScaled(sdiff, -s2.k, s2.t)
		imgforce.AddScaled(imgforce, -v3.Dot(sdiff, tangent)/mag, tangent)
	case ImprovedTangent:
		imgforce.AddScaled(imgforce, -tf, tangent)
		imgforce.AddScaled(imgforce, s2.nt*s2.k-s1.nt*s1.k, tangent)
	case EB:
		imgforce.AddScaled(imgforce, -tf, tangent)
		f := v3.Zeros(S.b.NAtoms())
		f.AddScaled(f, -(s1.nt-S.eq)*s1.k/s1.nt, s1.t)
		f.AddScaled(f, (s2.nt-S.eq)*s2.k/s2.nt, s2.t)
		scale := 1.0
		//next to the climbing image the springs are damped by the
		//relative energies, so they don't drag the climber down.
		if S.b.o.Climb && (i == S.imax-1 || i == S.imax+1) {
			dmax := math.Max(math.Abs(S.energies[i+1]-S.energies[i]), math.Abs(S.energies[i-1]-S.energies[i]))
			dmin := math.Min(math.Abs(S.energies[i+1]-S.energies[i]), math.Abs(S.energies[i-1]-S.energies[i]))
			if dmax > 0 {
				scale = dmin / dmax
			}
		}
		imgforce.AddScaled(imgforce, scale, f)
	case Spline:
		imgforce.AddScaled(imgforce, -tf, tangent)
		imgforce.AddScaled(imgforce, 0.5*(s1.k+s2.k)*(s2.nt-s1.nt), tangent)
	case String:
		//perpendicular force only; spacing is restored by
		//reparametrization in Band.SetPositions.
		imgforce.AddScaled(imgforce, -tf, tangent)
	}
}

//arclengths returns the cumulative inter-image arc length, normalized
//to [0,1]. Falls back to a uniform parameter if two adjacent images
//coincide, since spline fitting needs strictly increasing abscissae.
func (S *bandState) arclengths() []float64 {
	n := S.b.NImages()
	s := make([]float64, n)
	degenerate := false
	for i := 1; i < n; i++ {
		if S.springs[i-1].nt == 0 {
			degenerate = true
			break
		}
		s[i] = s[i-1] + S.springs[i-1].nt
	}
	if degenerate || s[n-1] == 0 {
		for i := range s {
			s[i] = float64(i) / float64(n-1)
		}
		return s
	}
	for i := range s {
		s[i] /= s[n-1]
	}
	return s
}

//fitSplineTangents fits one natural cubic per degree of freedom over
//the normalized arc length and differentiates it at each interior
//image, giving smooth whole-chain tangents.
func (S *bandState) fitSplineTangents() error {
	n := S.b.NImages()
	nat := S.b.NAtoms()
	s := S.arclengths()
	S.stan = make([]*v3.Matrix, n)
	for i := 1; i < n-1; i++ {
		S.stan[i] = v3.Zeros(nat)
	}
	ys := make([]float64, n)
	var cub interp.NaturalCubic
	for a := 0; a < nat; a++ {
		for j := 0; j < 3; j++ {
			for i := 0; i < n; i++ {
				ys[i] = S.b.Images[i].Coords.At(a, j)
			}
			if err := cub.Fit(s, ys); err != nil {
				return NewError("spline tangent fit: "+err.Error(), -1)
			}
			for i := 1; i < n-1; i++ {
				S.stan[i].Set(a, j, cub.PredictDerivative(s[i]))
			}
		}
	}
	for i := 1; i < n-1; i++ {
		S.stan[i].Unit(S.stan[i])
	}
	return nil
}

//reparametrize redistributes the interior images to equal arc length
//along a cubic spline through the current chain. The endpoints stay
//put. Used by the string method after every optimizer step.
func (B *Band) reparametrize() {
	n := B.NImages()
	nat := B.NAtoms()
	s := make([]float64, n)
	for i := 1; i < n; i++ {
		d := v3.CopyOf(B.Images[i].Coords)
		d.Sub(d, B.Images[i-1].Coords)
		s[i] = s[i-1] + d.Norm()
	}
	if s[n-1] == 0 {
		return //fully degenerate chain; nothing sensible to do
	}
	for i := range s {
		s[i] /= s[n-1]
	}
	for i := 1; i < n; i++ { //spline fitting needs increasing abscissae
		if s[i] <= s[i-1] {
			return
		}
	}
	newc := make([]*v3.Matrix, n)
	for i := 1; i < n-1; i++ {
		newc[i] = v3.Zeros(nat)
	}
	ys := make([]float64, n)
	var cub interp.NaturalCubic
	for a := 0; a < nat; a++ {
		for j := 0; j < 3; j++ {
			for i := 0; i < n; i++ {
				ys[i] = B.Images[i].Coords.At(a, j)
			}
			if err := cub.Fit(s, ys); err != nil {
				return
			}
			for i := 1; i < n-1; i++ {
				newc[i].Set(a, j, cub.Predict(float64(i)/float64(n-1)))
			}
		}
	}
	for i := 1; i < n-1; i++ {
		B.Images[i].Coords.Copy(newc[i])
	}
}
