/*
 * band.go, part of goneb.
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
	"runtime"

	v3 "goneb/v3"
)

//Atom holds the per-atom topology information a band needs. All the
//images of a band share one topology; only coordinates differ.
type Atom struct {
	Symbol string
}

//SameTopology returns true if a and b have the same atom count and
//species ordering.
func SameTopology(a, b []Atom) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v.Symbol != b[i].Symbol {
			return false
		}
	}
	return true
}

//Image is one discretized structure along the reaction path: a
//geometry plus the calculator that owns its evaluation. Energy is
//NaN and Forces nil until the image has been evaluated.
type Image struct {
	Coords *v3.Matrix
	Calc   Calculator
	Energy float64
	Forces *v3.Matrix
}

//NewImage returns an Image for the given geometry, owning the given
//calculator. The energy starts out unknown (NaN).
func NewImage(coords *v3.Matrix, calc Calculator) *Image {
	return &Image{Coords: coords, Calc: calc, Energy: math.NaN()}
}

//Options bundles the knobs of a band. The zero value is not useful;
//start from DefaultOptions.
type Options struct {
	K       float64 //spring constant, eV/A^2
	Climb   bool
	Method  Method
	Workers int //size of the per-iteration evaluation worker pool
	//RemoveRotTrans rigidly aligns each image to its predecessor
	//before force evaluation, so the spring geometry differences
	//carry no rigid-body components.
	RemoveRotTrans bool
}

//DefaultOptions returns the usual starting point: plain method,
//climbing image on, k=0.1, as many workers as CPUs.
func DefaultOptions() *Options {
	o := new(Options)
	o.K = 0.1
	o.Climb = true
	o.Method = Plain
	o.Workers = runtime.NumCPU()
	o.RemoveRotTrans = true
	return o
}

//Band is the full ordered chain of images between two fixed
//endpoints. The endpoints (indexes 0 and N-1) are never moved by the
//optimizer; only interior images are. A Band is not safe for
//concurrent use: one force assembly must finish before the next
//starts, since geometries mutate in place.
type Band struct {
	Atoms  []Atom
	Images []*Image
	o      *Options

	imax     int       //highest-energy interior image, valid after Forces
	energies []float64 //per-image energies of the last Forces call
}

//NewBand validates and assembles a band over the given images, which
//must share the topology atoms. Validation fails fast: at least 3
//images, every image with len(atoms) coordinate rows, and no two
//images sharing one calculator instance (concurrent evaluations would
//collide on the calculator's working area). Endpoint calculators may
//be nil when the method does not need endpoint energies.
func NewBand(atoms []Atom, images []*Image, o *Options) (*Band, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if len(images) < 3 {
		return nil, NewError(ErrTooFewImages, -1)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	seen := make(map[Calculator]int, len(images))
	for i, im := range images {
		if im.Coords == nil || im.Coords.NVecs() != len(atoms) {
			return nil, NewError(ErrPathMismatch, i)
		}
		if im.Calc == nil {
			if i != 0 && i != len(images)-1 {
				return nil, NewError(ErrNilCalculator, i)
			}
			continue
		}
		if _, ok := seen[im.Calc]; ok {
			return nil, NewError(ErrSharedProvider, i)
		}
		seen[im.Calc] = i
	}
	b := &Band{Atoms: atoms, Images: images, o: o, imax: -1}
	return b, nil
}

//NImages returns the number of images in the band, endpoints included.
func (B *Band) NImages() int { return len(B.Images) }

//NAtoms returns the number of atoms per image.
func (B *Band) NAtoms() int { return len(B.Atoms) }

//Imax returns the index of the highest-energy interior image as of
//the last force assembly, or -1 if no assembly has run yet.
func (B *Band) Imax() int { return B.imax }

//Emax returns the highest interior energy as of the last force
//assembly. NaN if no assembly has run yet.
func (B *Band) Emax() float64 {
	if B.imax < 0 {
		return math.NaN()
	}
	return B.energies[B.imax]
}

//Energies returns a copy of the per-image energies of the last force
//assembly, NaN where unknown (the endpoints, with the plain method).
//Nil if no assembly has run yet.
func (B *Band) Energies() []float64 {
	if B.energies == nil {
		return nil
	}
	e := make([]float64, len(B.energies))
	copy(e, B.energies)
	return e
}

//Positions returns a deep copy of the interior-image coordinates,
//stacked into one (N-2)*natoms x 3 matrix. This is the vector the
//optimizers work on.
func (B *Band) Positions() *v3.Matrix {
	nat := B.NAtoms()
	p := v3.Zeros((B.NImages() - 2) * nat)
	for i := 1; i < B.NImages()-1; i++ {
		p.SetMatrix((i-1)*nat, 0, B.Images[i].Coords)
	}
	return p
}

//SetPositions copies the stacked interior coordinates p back into
//the interior images. The endpoints are untouched. With the string
//method the images are then redistributed to equal arc length along
//the path, which is how that method maintains spacing instead of
//spring forces.
func (B *Band) SetPositions(p *v3.Matrix) {
	nat := B.NAtoms()
	for i := 1; i < B.NImages()-1; i++ {
		B.Images[i].Coords.Copy(p.View((i-1)*nat, 0, nat, 3))
	}
	if B.o.Method == String {
		B.reparametrize()
	}
}
