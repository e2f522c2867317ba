// Package tensor implements the dense complex tensor primitive used by the
// mps package: an n-dimensional complex128 array with an explicit shape,
// supporting reshape, transpose, axis flattening and pairwise contraction.
//
// There is no persistent shared-edge graph here, unlike node-based tensor
// network libraries: a tensor owns its data outright, and two tensors are
// related only for the duration of a single Contract call, by the axis
// indices the caller passes in. This mirrors the ownership-clear model
// called for when replacing a mutable, name-addressed edge graph.
package tensor

import (
	"math/cmplx"

	"github.com/pkg/errors"

	"github.com/latticeqc/mps/mpserr"
)

// Tensor is a dense row-major complex128 array with a fixed shape.
type Tensor struct {
	shape []int
	data  []complex128
}

// New builds a Tensor from a flat row-major data slice and a shape. The
// data slice is taken by reference, not copied.
func New(shape []int, data []complex128) (*Tensor, error) {
	n := size(shape)
	if len(data) != n {
		return nil, mpserr.Newf(mpserr.KindInvalidShape, "data has %d elements, shape %v needs %d", len(data), shape, n)
	}
	return &Tensor{shape: append([]int(nil), shape...), data: data}, nil
}

// Zeros builds a Tensor of the given shape filled with zeros.
func Zeros(shape ...int) *Tensor {
	return &Tensor{shape: append([]int(nil), shape...), data: make([]complex128, size(shape))}
}

func size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

// Rank returns the number of axes.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Len returns the total number of elements.
func (t *Tensor) Len() int {
	return len(t.data)
}

// Data returns the tensor's flat row-major backing slice. Callers must not
// retain it past the tensor's lifetime if the tensor is mutated in place.
func (t *Tensor) Data() []complex128 {
	return t.data
}

func (t *Tensor) strides() []int {
	s := make([]int, len(t.shape))
	acc := 1
	for i := len(t.shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= t.shape[i]
	}
	return s
}

func (t *Tensor) offset(idx []int) int {
	strides := t.strides()
	off := 0
	for i, ix := range idx {
		off += ix * strides[i]
	}
	return off
}

// At returns the element at the given multi-index.
func (t *Tensor) At(idx ...int) complex128 {
	return t.data[t.offset(idx)]
}

// SetAt sets the element at the given multi-index.
func (t *Tensor) SetAt(idx []int, v complex128) {
	t.data[t.offset(idx)] = v
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]complex128, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: append([]int(nil), t.shape...), data: data}
}

// Conj returns a new tensor holding the element-wise complex conjugate.
func (t *Tensor) Conj() *Tensor {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = cmplx.Conj(v)
	}
	return out
}

// Scale returns a new tensor with every element multiplied by c.
func (t *Tensor) Scale(c complex128) *Tensor {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = v * c
	}
	return out
}

// Reshape returns a new tensor with the same underlying element order but a
// different shape; the product of the new shape must equal the element
// count.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if size(shape) != len(t.data) {
		return nil, mpserr.Newf(mpserr.KindInvalidShape, "cannot reshape %v into %v", t.shape, shape)
	}
	data := make([]complex128, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: append([]int(nil), shape...), data: data}, nil
}

// Transpose returns a new tensor with axes permuted according to perm: axis
// i of the result is axis perm[i] of t.
func (t *Tensor) Transpose(perm ...int) (*Tensor, error) {
	if len(perm) != t.Rank() {
		return nil, mpserr.Newf(mpserr.KindInvalidShape, "permutation length %d does not match rank %d", len(perm), t.Rank())
	}
	seen := make([]bool, t.Rank())
	newShape := make([]int, t.Rank())
	for i, p := range perm {
		if p < 0 || p >= t.Rank() || seen[p] {
			return nil, mpserr.Newf(mpserr.KindInvalidShape, "invalid permutation %v", perm)
		}
		seen[p] = true
		newShape[i] = t.shape[p]
	}

	out := Zeros(newShape...)
	oldIdx := make([]int, t.Rank())
	newIdx := make([]int, t.Rank())
	var walk func(axis int)
	walk = func(axis int) {
		if axis == t.Rank() {
			for i, p := range perm {
				newIdx[i] = oldIdx[p]
			}
			out.SetAt(append([]int(nil), newIdx...), t.At(oldIdx...))
			return
		}
		for i := 0; i < t.shape[axis]; i++ {
			oldIdx[axis] = i
			walk(axis + 1)
		}
	}
	walk(0)
	return out, nil
}

// FlattenAxes merges the given axes (in the order listed) into a single
// axis placed at the position of the lowest-numbered of them, preserving the
// relative order of every other axis. The merged axis has dimension equal
// to the product of the merged axes' dimensions.
func (t *Tensor) FlattenAxes(axes []int) (*Tensor, error) {
	if len(axes) == 0 {
		return t.Clone(), nil
	}
	inGroup := make(map[int]bool, len(axes))
	for _, a := range axes {
		if a < 0 || a >= t.Rank() {
			return nil, mpserr.Newf(mpserr.KindInvalidShape, "axis %d out of range for rank %d", a, t.Rank())
		}
		inGroup[a] = true
	}

	firstGroupPos := -1
	perm := make([]int, 0, t.Rank())
	for i := 0; i < t.Rank(); i++ {
		if inGroup[i] {
			if firstGroupPos == -1 {
				firstGroupPos = len(perm)
				perm = append(perm, axes...)
			}
			continue
		}
		perm = append(perm, i)
	}

	transposed, err := t.Transpose(perm...)
	if err != nil {
		return nil, errors.Wrap(err, "flatten axes")
	}

	merged := 1
	for _, a := range axes {
		merged *= t.shape[a]
	}
	newShape := make([]int, 0, t.Rank()-len(axes)+1)
	for i, p := range perm {
		if i == firstGroupPos {
			newShape = append(newShape, merged)
		}
		if inGroup[p] {
			continue
		}
		newShape = append(newShape, t.shape[p])
	}
	return transposed.Reshape(newShape...)
}

// ContractOne contracts a single axis shared between a and b, summing over
// it. The result's axes are a's remaining axes (in original order) followed
// by b's remaining axes (in original order).
func ContractOne(a, b *Tensor, axisA, axisB int) (*Tensor, error) {
	if axisA < 0 || axisA >= a.Rank() || axisB < 0 || axisB >= b.Rank() {
		return nil, mpserr.Newf(mpserr.KindInvalidShape, "axis out of range: %d of %d, %d of %d", axisA, a.Rank(), axisB, b.Rank())
	}
	if a.shape[axisA] != b.shape[axisB] {
		return nil, mpserr.Newf(mpserr.KindInvalidShape, "contracted axes have mismatched dimension %d vs %d", a.shape[axisA], b.shape[axisB])
	}

	permA := append(dropAxis(a.Rank(), axisA), axisA)
	at, err := a.Transpose(permA...)
	if err != nil {
		return nil, err
	}
	restA := size(at.shape[:len(at.shape)-1])
	k := a.shape[axisA]
	matA, err := at.Reshape(restA, k)
	if err != nil {
		return nil, err
	}

	permB := append([]int{axisB}, dropAxis(b.Rank(), axisB)...)
	bt, err := b.Transpose(permB...)
	if err != nil {
		return nil, err
	}
	restB := size(bt.shape[1:])
	matB, err := bt.Reshape(k, restB)
	if err != nil {
		return nil, err
	}

	out := Zeros(restA, restB)
	for i := 0; i < restA; i++ {
		for l := 0; l < k; l++ {
			av := matA.At(i, l)
			if av == 0 {
				continue
			}
			for j := 0; j < restB; j++ {
				out.data[i*restB+j] += av * matB.At(l, j)
			}
		}
	}

	finalShape := make([]int, 0, a.Rank()-1+b.Rank()-1)
	for i, d := range at.shape[:len(at.shape)-1] {
		_ = i
		finalShape = append(finalShape, d)
	}
	finalShape = append(finalShape, bt.shape[1:]...)
	return out.Reshape(finalShape...)
}

func dropAxis(rank, axis int) []int {
	out := make([]int, 0, rank-1)
	for i := 0; i < rank; i++ {
		if i != axis {
			out = append(out, i)
		}
	}
	return out
}

// Contract contracts every axis pair in axes between a and b. Axes of a are
// flattened together (in the order listed) into one axis, axes of b
// likewise, and the two merged axes are then contracted with ContractOne.
// Free axes of a (in original relative order, excluding the contracted
// ones) come first in the result, followed by free axes of b.
func Contract(a, b *Tensor, axes [][2]int) (*Tensor, error) {
	if len(axes) == 0 {
		return Outer(a, b)
	}
	axesA := make([]int, len(axes))
	axesB := make([]int, len(axes))
	for i, p := range axes {
		axesA[i] = p[0]
		axesB[i] = p[1]
	}

	fa, err := a.FlattenAxes(axesA)
	if err != nil {
		return nil, errors.Wrap(err, "flatten left operand")
	}
	fb, err := b.FlattenAxes(axesB)
	if err != nil {
		return nil, errors.Wrap(err, "flatten right operand")
	}

	axisA := firstFlattenedPosition(a.Rank(), axesA)
	axisB := firstFlattenedPosition(b.Rank(), axesB)
	return ContractOne(fa, fb, axisA, axisB)
}

func firstFlattenedPosition(rank int, axes []int) int {
	inGroup := make(map[int]bool, len(axes))
	for _, a := range axes {
		inGroup[a] = true
	}
	for i := 0; i < rank; i++ {
		if inGroup[i] {
			return i - countBefore(axes, i)
		}
	}
	return 0
}

func countBefore(axes []int, pos int) int {
	// number of axes in `axes` (the grouped axes) that occur before pos in
	// original order
	inGroup := make(map[int]bool, len(axes))
	for _, a := range axes {
		inGroup[a] = true
	}
	n := 0
	for i := 0; i < pos; i++ {
		if inGroup[i] {
			n++
		}
	}
	return n
}

// FlattenEdgesBetween merges every axis pair in axes into a single axis on
// each side, without performing the contraction itself, and returns the
// merged axis positions for a following ContractOne call. It is the
// explicit two-step counterpart of Contract; the gate-application engine
// calls Contract, not this function.
func FlattenEdgesBetween(a, b *Tensor, axes [][2]int) (fa, fb *Tensor, axisA, axisB int, err error) {
	if len(axes) == 0 {
		return nil, nil, 0, 0, mpserr.New(mpserr.KindInvalidShape, "flatten edges between requires at least one shared axis")
	}
	axesA := make([]int, len(axes))
	axesB := make([]int, len(axes))
	for i, p := range axes {
		axesA[i] = p[0]
		axesB[i] = p[1]
	}
	fa, err = a.FlattenAxes(axesA)
	if err != nil {
		return nil, nil, 0, 0, errors.Wrap(err, "flatten left operand")
	}
	fb, err = b.FlattenAxes(axesB)
	if err != nil {
		return nil, nil, 0, 0, errors.Wrap(err, "flatten right operand")
	}
	return fa, fb, firstFlattenedPosition(a.Rank(), axesA), firstFlattenedPosition(b.Rank(), axesB), nil
}

// ContractBetween contracts every shared axis pair between a and b. When
// axes is empty the result is the outer product (a.Rank()+b.Rank() axes,
// no summation) rather than an error, matching the tensor-primitive
// contract: a genuinely edgeless pair is a valid, if unusual, input.
func ContractBetween(a, b *Tensor, axes [][2]int) (*Tensor, error) {
	return Contract(a, b, axes)
}

// Outer returns the outer product of a and b: a's axes (in order) followed
// by b's axes (in order), with no summation. This path is not used by the
// gate-application engine, which always contracts over a declared axis
// pair, but is provided so callers cannot be handed an undefined result
// when no shared axes exist.
func Outer(a, b *Tensor) (*Tensor, error) {
	out := Zeros(append(a.Shape(), b.Shape()...)...)
	for i, av := range a.data {
		if av == 0 {
			continue
		}
		base := i * len(b.data)
		for j, bv := range b.data {
			out.data[base+j] = av * bv
		}
	}
	return out, nil
}

// Norm2 returns the squared Euclidean norm of the tensor's elements.
func Norm2(t *Tensor) float64 {
	var sum float64
	for _, v := range t.data {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return sum
}
