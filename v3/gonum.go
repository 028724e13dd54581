/*
 * gonum.go, part of goneb.
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

package v3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const appzero float64 = 1e-12 //used to correct floating point errors.
//Everything with an absolute value equal or less than this is considered zero.

//Matrix is the main container, a set of row vectors in 3D space
//backed by a gonum Dense. It implements the gonum mat.Matrix
//interface through embedding.
type Matrix struct {
	*mat.Dense
}

//Matrix2Dense returns the gonum Dense underlying A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

//Dense2Matrix wraps a gonum Dense into a Matrix. The Dense must have
//3 columns, the function panics otherwise.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 {
		return nil, fmt.Errorf("goneb/v3: input slice length %d not divisible by %d", l, cols)
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors and 3 in the
//other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	return &Matrix{mat.NewDense(vecs, cols, make([]float64, cols*vecs))}
}

//NVecs returns the number of vectors in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//VecView returns a view of the ith vector of the matrix. Changes in
//the view are reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//View returns a view of F starting from i,j and spanning r rows and
//c columns. Changes in the view are reflected in F and vice-versa.
func (F *Matrix) View(i, j, r, c int) *Matrix {
	ret := F.Dense.Slice(i, i+r, j, j+c).(*mat.Dense)
	return &Matrix{ret}
}

//SetMatrix puts the matrix A in the receiver, starting from the ith
//row and jth col of the receiver.
func (F *Matrix) SetMatrix(i, j int, A *Matrix) {
	b := F.RawMatrix()
	ar, ac := A.Dims()
	fc := 3
	if ar+i > F.NVecs() || ac+j > fc {
		panic(ErrShape)
	}
	r := make([]float64, ac)
	for k := 0; k < ar; k++ {
		mat.Row(r, k, A)
		startpoint := fc*(k+i) + j
		copy(b.Data[startpoint:startpoint+ac], r)
	}
}

//SwapVecs swaps the vectors i and j of F.
func (F *Matrix) SwapVecs(i, j int) {
	if i >= F.NVecs() || j >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	for k := 0; k < 3; k++ {
		vi := F.At(i, k)
		F.Set(i, k, F.At(j, k))
		F.Set(j, k, vi)
	}
}

//Dot returns the sum of the element-wise products of A and B, i.e.
//the dot product of the two matrices flattened into vectors. Panics
//if the shapes mismatch.
func Dot(A, B *Matrix) float64 {
	ar, ac := A.Dims()
	br, bc := B.Dims()
	if ar != br || ac != bc {
		panic(ErrShape)
	}
	var d float64
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			d += A.At(i, j) * B.At(i, j)
		}
	}
	return d
}

//Norm returns the Frobenius norm of F (the 2-norm of F flattened
//into a vector).
func (F *Matrix) Norm() float64 {
	return mat.Norm(F.Dense, 2)
}

//The arithmetic below unwraps both sides to the embedded Dense.
//Handing the wrapper itself to a promoted Dense method trips gonum's
//aliasing check whenever receiver and argument share backing, while
//pointer-identical Dense arguments are allowed.

//Add puts the element-wise sum A+B in the receiver. The receiver may
//be A or B.
func (F *Matrix) Add(A, B *Matrix) {
	F.Dense.Add(A.Dense, B.Dense)
}

//Sub puts the element-wise difference A-B in the receiver. The
//receiver may be A or B.
func (F *Matrix) Sub(A, B *Matrix) {
	F.Dense.Sub(A.Dense, B.Dense)
}

//Scale puts A scaled by v in the receiver. The receiver may be A.
func (F *Matrix) Scale(v float64, A *Matrix) {
	F.Dense.Scale(v, A.Dense)
}

//Copy copies A into the receiver, which must have the same shape.
func (F *Matrix) Copy(A *Matrix) {
	F.Dense.Copy(A.Dense)
}

//Unit puts a normalized copy of A in the receiver. If the norm of A
//is zero within floating tolerance, the receiver is zero-filled.
func (F *Matrix) Unit(A *Matrix) {
	if F.Dense != A.Dense {
		F.Copy(A)
	}
	norm := A.Norm()
	if norm <= appzero {
		F.Scale(0, F)
		return
	}
	F.Scale(1.0/norm, F)
}

//AddScaled puts A + f*B in the receiver. The receiver may be A.
func (F *Matrix) AddScaled(A *Matrix, f float64, B *Matrix) {
	ar, ac := A.Dims()
	br, bc := B.Dims()
	if ar != br || ac != bc {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			F.Set(i, j, A.At(i, j)+f*B.At(i, j))
		}
	}
}

//RowNorm returns the 2-norm of the ith vector of F.
func (F *Matrix) RowNorm(i int) float64 {
	x := F.At(i, 0)
	y := F.At(i, 1)
	z := F.At(i, 2)
	return math.Sqrt(x*x + y*y + z*z)
}

//MaxRowNorm returns the largest per-vector 2-norm in F. This is the
//"fmax" convergence quantity of chain-of-states optimizations.
func (F *Matrix) MaxRowNorm() float64 {
	var max float64
	for i := 0; i < F.NVecs(); i++ {
		if n := F.RowNorm(i); n > max {
			max = n
		}
	}
	return max
}

//Mean puts in the receiver (a 1x3 Matrix) the centroid of the
//vectors of A.
func (F *Matrix) Mean(A *Matrix) {
	ar, _ := A.Dims()
	if F.NVecs() != 1 {
		panic(ErrShape)
	}
	for j := 0; j < 3; j++ {
		var s float64
		for i := 0; i < ar; i++ {
			s += A.At(i, j)
		}
		F.Set(0, j, s/float64(ar))
	}
}

//AddVec adds the 1x3 vector vec to each vector of A, putting the
//result in the receiver. The receiver may be A.
func (F *Matrix) AddVec(A, vec *Matrix) {
	ar, ac := A.Dims()
	rr, rc := vec.Dims()
	fr, fc := F.Dims()
	if ac != rc || rr != 1 || ac != fc || ar != fr {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)+vec.At(0, j))
		}
	}
}

//SubVec subtracts the 1x3 vector vec from each vector of A, putting
//the result in the receiver. The receiver may be A.
func (F *Matrix) SubVec(A, vec *Matrix) {
	vec.Scale(-1, vec)
	F.AddVec(A, vec)
	vec.Scale(-1, vec)
}

//CopyOf returns a deep copy of A.
func CopyOf(A *Matrix) *Matrix {
	r := Zeros(A.NVecs())
	r.Copy(A)
	return r
}

//PanicMsg is a message used for panics. It satisfies the error
//interface; for recoverable conditions use regular errors instead.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("goneb/v3: a Matrix must have 3 columns")
	ErrShape           = PanicMsg("goneb/v3: dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("goneb/v3: index out of range")
)
