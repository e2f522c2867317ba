// Package gatelib provides the standard gate set used to build circuits
// over an mps.Chain: the Pauli operators, Hadamard, CNOT, SWAP, and a
// seeded random single-qubit rotation. Every gate is returned as a fresh
// *tensor.Tensor so callers can mutate or scale it without aliasing a
// shared matrix, mirroring the copy-per-call style of the teacher's own
// gate constructors.
//
// Two-qubit gate tensors follow one fixed edge convention throughout this
// module: axes 0 and 1 are the gate's inputs (the physical edges it
// contracts against), axes 2 and 3 are its outputs. In other words
// T[i,j,k,l] = <k,l|U|i,j>.
package gatelib

import (
	"math"

	"github.com/latticeqc/mps/qrand"
	"github.com/latticeqc/mps/tensor"
)

// PauliX returns the Pauli X (NOT) gate.
func PauliX() *tensor.Tensor {
	return must(tensor.New([]int{2, 2}, []complex128{
		0, 1,
		1, 0,
	}))
}

// PauliY returns the Pauli Y gate.
func PauliY() *tensor.Tensor {
	return must(tensor.New([]int{2, 2}, []complex128{
		0, complex(0, -1),
		complex(0, 1), 0,
	}))
}

// PauliZ returns the Pauli Z gate.
func PauliZ() *tensor.Tensor {
	return must(tensor.New([]int{2, 2}, []complex128{
		1, 0,
		0, -1,
	}))
}

// Identity returns the single-qubit identity gate.
func Identity() *tensor.Tensor {
	return must(tensor.New([]int{2, 2}, []complex128{
		1, 0,
		0, 1,
	}))
}

// Hadamard returns the single-qubit Hadamard gate.
func Hadamard() *tensor.Tensor {
	inv := complex(1/math.Sqrt2, 0)
	return must(tensor.New([]int{2, 2}, []complex128{
		inv, inv,
		inv, -inv,
	}))
}

// CNOT returns the two-qubit controlled-NOT gate as a rank-4 tensor with
// axes (in_control, in_target, out_control, out_target).
func CNOT() *tensor.Tensor {
	t := tensor.Zeros(2, 2, 2, 2)
	set := func(ic, it, oc, ot int) {
		t.SetAt([]int{ic, it, oc, ot}, 1)
	}
	set(0, 0, 0, 0)
	set(0, 1, 0, 1)
	set(1, 0, 1, 1)
	set(1, 1, 1, 0)
	return t
}

// SWAP returns the two-qubit SWAP gate as a rank-4 tensor with axes
// (in_a, in_b, out_a, out_b).
func SWAP() *tensor.Tensor {
	t := tensor.Zeros(2, 2, 2, 2)
	set := func(ia, ib, oa, ob int) {
		t.SetAt([]int{ia, ib, oa, ob}, 1)
	}
	set(0, 0, 0, 0)
	set(0, 1, 1, 0)
	set(1, 0, 0, 1)
	set(1, 1, 1, 1)
	return t
}

// RandomSingleQubitRotation draws three angles uniformly in [0, 2*pi) from
// src (the rotation angle theta, then the polar and azimuthal angles of the
// axis) and returns the single-qubit unitary
//
//	U = exp(-i*theta*(mx*X + my*Y + mz*Z))
//
// where (mx, my, mz) is the unit vector at those angles. Because the polar
// angle is drawn uniformly rather than by its cosine, the axis is not
// uniformly distributed over the Bloch sphere. This is the corrected form of the
// construction described in arXiv:2002.07730: the sum of all three Pauli
// terms, not a product of two of them with the third.
func RandomSingleQubitRotation(src *qrand.Source) *tensor.Tensor {
	theta := src.Angle()
	alpha := src.Angle()
	phi := src.Angle()

	mx := math.Sin(alpha) * math.Cos(phi)
	my := math.Sin(alpha) * math.Sin(phi)
	mz := math.Cos(alpha)

	return blochRotation(theta, mx, my, mz)
}

// blochRotation builds exp(-i*theta*(mx*X+my*Y+mz*Z)) in closed form, valid
// whenever (mx, my, mz) has unit norm: writing n.sigma for that combination,
// exp(-i*theta*n.sigma) = cos(theta)*I - i*sin(theta)*n.sigma.
func blochRotation(theta, mx, my, mz float64) *tensor.Tensor {
	c := math.Cos(theta)
	s := math.Sin(theta)

	nsigma00 := complex(mz, 0)
	nsigma01 := complex(mx, -my)
	nsigma10 := complex(mx, my)
	nsigma11 := complex(-mz, 0)

	minusIS := complex(0, -s)

	u00 := complex(c, 0) + minusIS*nsigma00
	u01 := minusIS * nsigma01
	u10 := minusIS * nsigma10
	u11 := complex(c, 0) + minusIS*nsigma11

	return must(tensor.New([]int{2, 2}, []complex128{
		u00, u01,
		u10, u11,
	}))
}

func must(t *tensor.Tensor, err error) *tensor.Tensor {
	if err != nil {
		// The shapes and data lengths above are fixed constants; a
		// mismatch here is a programming error in this package, not a
		// runtime condition callers can recover from.
		panic(err)
	}
	return t
}
