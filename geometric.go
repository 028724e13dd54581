/*
 * geometric.go, part of goneb.
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

	v3 "goneb/v3"

	"gonum.org/v1/gonum/mat"
)

//Superpose returns a copy of test rigidly rotated and translated onto
//templa so that the RMSD between the two is minimal (Kabsch
//superposition, via SVD). All atoms weigh the same here; for removing
//rigid-body components from inter-image differences that is what we
//want.
func Superpose(test, templa *v3.Matrix) (*v3.Matrix, error) {
	if test.NVecs() != templa.NVecs() {
		return nil, NewError(ErrPathMismatch, -1)
	}
	n := test.NVecs()
	ctest := v3.CopyOf(test)
	ctempla := v3.CopyOf(templa)
	ctrTest := v3.Zeros(1)
	ctrTempla := v3.Zeros(1)
	ctrTest.Mean(test)
	ctrTempla.Mean(templa)
	ctest.SubVec(ctest, ctrTest)
	ctempla.SubVec(ctempla, ctrTempla)

	H := mat.NewDense(3, 3, nil)
	H.Mul(ctest.Dense.T(), ctempla.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDThin); !ok {
		return nil, NewError("superposition: SVD failed to factorize", -1)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	//handedness: a reflection is not a rotation.
	var uvt mat.Dense
	uvt.Mul(&u, v.T())
	if mat.Det(&uvt) < 0 {
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
	}
	R := mat.NewDense(3, 3, nil)
	R.Mul(&u, v.T())

	rotated := v3.Zeros(n)
	rotated.Dense.Mul(ctest.Dense, R)
	rotated.AddVec(rotated, ctrTempla)
	return rotated, nil
}

//RMSD returns the root-mean-square deviation between the two
//coordinate sets, without superposing them first.
func RMSD(a, b *v3.Matrix) (float64, error) {
	if a.NVecs() != b.NVecs() {
		return 0, NewError(ErrPathMismatch, -1)
	}
	d := v3.CopyOf(a)
	d.Sub(d, b)
	return d.Norm() / math.Sqrt(float64(a.NVecs())), nil
}
