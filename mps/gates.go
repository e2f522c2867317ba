package mps

import (
	"github.com/latticeqc/mps/mpserr"
	"github.com/latticeqc/mps/svdkernel"
	"github.com/latticeqc/mps/tensor"
)

// ApplyOneSite applies the rank-2 gate G (edge 0 = input, edge 1 =
// output) to site i's physical edge, replacing site i with the result.
// Fails with InvalidGateShape if G is not rank 2 or its edges do not
// match the chain's qudit dimension, or IndexOutOfRange if i is out of
// bounds. Bond dimensions are unaffected.
func (c *Chain) ApplyOneSite(g *tensor.Tensor, i int) error {
	if err := validateOneSiteGate(g, c.d); err != nil {
		return err
	}
	if i < 0 || i >= c.NumSites() {
		return mpserr.Newf(mpserr.KindIndexOutOfRange, "site index %d out of range [0,%d)", i, c.NumSites())
	}

	axes := c.axesOf(i)
	raw, err := tensor.ContractOne(c.sites[i], g, axes.phys, 0)
	if err != nil {
		return err
	}
	restored, err := restoreAxis(raw, axes.phys, c.sites[i].Rank())
	if err != nil {
		return err
	}
	c.sites[i] = restored
	return nil
}

// ApplyOneSiteAll applies G independently to every site. No entanglement
// is introduced.
func (c *Chain) ApplyOneSiteAll(g *tensor.Tensor) error {
	for i := 0; i < c.NumSites(); i++ {
		if err := c.ApplyOneSite(g, i); err != nil {
			return err
		}
	}
	return nil
}

func validateOneSiteGate(g *tensor.Tensor, d int) error {
	if g.Rank() != 2 {
		return mpserr.Newf(mpserr.KindInvalidGateShape, "one-site gate must be rank 2, got rank %d", g.Rank())
	}
	shape := g.Shape()
	if shape[0] != d || shape[1] != d {
		return mpserr.Newf(mpserr.KindInvalidGateShape, "one-site gate shape %v does not match qudit dimension %d", shape, d)
	}
	return nil
}

func validateTwoSiteGate(g *tensor.Tensor, d int) error {
	if g.Rank() != 4 {
		return mpserr.Newf(mpserr.KindInvalidGateShape, "two-site gate must be rank 4, got rank %d", g.Rank())
	}
	for _, dim := range g.Shape() {
		if dim != d {
			return mpserr.Newf(mpserr.KindInvalidGateShape, "two-site gate shape %v does not match qudit dimension %d", g.Shape(), d)
		}
	}
	return nil
}

// restoreAxis takes a tensor produced by ContractOne(site, gate, removedAxis,
// 0) — whose axes are site's original axes minus removedAxis (relative
// order preserved) followed by the gate's output axis — and returns a
// tensor with the output axis moved back to removedAxis's original
// position, restoring the site's (left?, phys, right?) axis order.
func restoreAxis(raw *tensor.Tensor, removedAxis, originalRank int) (*tensor.Tensor, error) {
	perm := make([]int, originalRank)
	for pos := 0; pos < originalRank; pos++ {
		switch {
		case pos == removedAxis:
			perm[pos] = originalRank - 1
		case pos < removedAxis:
			perm[pos] = pos
		default:
			perm[pos] = pos - 1
		}
	}
	return raw.Transpose(perm...)
}

// ApplyTwoSite applies the rank-4 gate G to adjacent sites i and j
// (i < j, j = i+1), re-splitting the joined tensor with the SVD kernel
// and optionally truncating per opts. Edge convention: G's edge 0 is
// site i's input, edge 1 is site j's input, edge 2 is site i's output,
// edge 3 is site j's output.
//
// Contract for partial failure: everything through step 6 (reassembly)
// is computed locally and only committed to the chain once it has fully
// succeeded. Step 8 (appending the post-gate norm to the fidelity
// history) runs after that commit and can itself fail with NumericError
// if the chain's norm has a non-negligible imaginary residual — in that
// case the chain has already been mutated and is left in an undefined
// state; per the spec's error propagation policy, the caller must
// discard it rather than continue using it.
func (c *Chain) ApplyTwoSite(g *tensor.Tensor, i, j int, opts GateOptions) error {
	if err := validateTwoSiteGate(g, c.d); err != nil {
		return err
	}
	n := c.NumSites()
	if i < 0 || i >= n || j < 0 || j >= n {
		return mpserr.Newf(mpserr.KindIndexOutOfRange, "site index out of range [0,%d): i=%d, j=%d", n, i, j)
	}
	if i >= j {
		return mpserr.Newf(mpserr.KindInvalidIndexOrder, "two-site gate requires i < j, got i=%d, j=%d", i, j)
	}
	if j-i != 1 {
		return mpserr.Newf(mpserr.KindNonAdjacentSites, "sites %d and %d are not adjacent", i, j)
	}

	axesI := c.axesOf(i)
	axesJ := c.axesOf(j)

	// Step 1-2: contract site i and site j over their shared bond, then
	// flatten+contract the two physical edges against the gate.
	joined, err := tensor.ContractOne(c.sites[i], c.sites[j], axesI.right, axesJ.left)
	if err != nil {
		return err
	}

	presentLeft := axesI.left >= 0
	presentRight := axesJ.right >= 0

	// joined's axes: [left_i?, phys_i, phys_j, right_j?]
	physIAxis := 0
	if presentLeft {
		physIAxis = 1
	}
	physJAxis := physIAxis + 1

	m, err := tensor.Contract(joined, g, [][2]int{{physIAxis, 0}, {physJAxis, 1}})
	if err != nil {
		return err
	}

	// m's axes: [left_i?, right_j?, out_i, out_j]
	idx := 0
	leftBondAxis := -1
	if presentLeft {
		leftBondAxis = idx
		idx++
	}
	rightBondAxis := -1
	if presentRight {
		rightBondAxis = idx
		idx++
	}
	outIAxis := idx
	idx++
	outJAxis := idx

	leftAxes := []int{}
	if presentLeft {
		leftAxes = append(leftAxes, leftBondAxis)
	}
	leftAxes = append(leftAxes, outIAxis)
	rightAxes := []int{outJAxis}
	if presentRight {
		rightAxes = append(rightAxes, rightBondAxis)
	}

	maxRank := opts.Truncation.maxRank(c.MaxBondDimension(i))

	result, err := svdkernel.Split(m, leftAxes, rightAxes, maxRank, svdkernel.DefaultEpsilon)
	if err != nil {
		return err
	}

	var newSiteI, newSiteJ *tensor.Tensor
	bondAxisU := result.U.Rank() - 1
	bondAxisVh := 0
	if opts.KeepLeftCanonical {
		newSiteI = result.U
		newSiteJ = scaleAxis(result.Vh, bondAxisVh, result.S)
	} else {
		newSiteI = scaleAxis(result.U, bondAxisU, result.S)
		newSiteJ = result.Vh
	}

	// Dropped values below epsilon relative to the largest singular value
	// are structural zeros and do not count toward the truncated weight.
	largest := 0.0
	if len(result.S) > 0 {
		largest = result.S[0]
	} else if len(result.Dropped) > 0 {
		largest = result.Dropped[0]
	}
	var droppedWeight float64
	for _, s := range result.Dropped {
		if s < svdkernel.DefaultEpsilon*largest {
			continue
		}
		droppedWeight += s * s
	}

	// Commit: every step above either succeeded fully or returned before
	// touching c.sites.
	c.sites[i] = newSiteI
	c.sites[j] = newSiteJ

	c.truncated = append(c.truncated, droppedWeight)

	norm, err := c.Norm()
	if err != nil {
		return err
	}
	c.fidelity = append(c.fidelity, norm)
	return nil
}

// scaleAxis multiplies every element of t by s[idx], where idx is the
// element's coordinate along the given axis, implementing diag(s) applied
// along that axis.
func scaleAxis(t *tensor.Tensor, axis int, s []float64) *tensor.Tensor {
	out := t.Clone()
	shape := out.Shape()
	idxv := make([]int, len(shape))
	data := out.Data()
	pos := 0
	var walk func(a int)
	walk = func(a int) {
		if a == len(shape) {
			data[pos] *= complex(s[idxv[axis]], 0)
			pos++
			return
		}
		for k := 0; k < shape[a]; k++ {
			idxv[a] = k
			walk(a + 1)
		}
	}
	walk(0)
	return out
}
