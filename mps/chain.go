// Package mps implements a Matrix Product State representation of a
// quantum wavefunction: an ordered chain of rank-2 (boundary) or rank-3
// (interior) complex site tensors connected by virtual bonds, with a gate
// application engine (local contraction + SVD truncation), a swap router
// for bringing non-adjacent sites together, and an operation dispatcher.
package mps

import (
	"math"
	"math/cmplx"

	"github.com/latticeqc/mps/fingerprint"
	"github.com/latticeqc/mps/mpserr"
	"github.com/latticeqc/mps/tensor"
)

// DefaultNormTolerance is the default bound on the imaginary residual of
// a computed norm before Norm reports NumericError.
const DefaultNormTolerance = 1e-6

// Chain is a Matrix Product State over N sites of qudit dimension d. It
// exclusively owns its site tensors; virtual bonds are a relation between
// adjacent sites, not shared ownership.
type Chain struct {
	sites         []*tensor.Tensor
	d             int
	normTolerance float64
	truncated     []float64
	fidelity      []float64
}

// New constructs a chain of n sites, each of qudit dimension d, in the
// |0...0> state with every bond dimension 1. n < 2 or d < 2 fails with
// InvalidShape.
func New(n, d int) (*Chain, error) {
	if n < 2 {
		return nil, mpserr.Newf(mpserr.KindInvalidShape, "chain needs at least 2 sites, got %d", n)
	}
	if d < 2 {
		return nil, mpserr.Newf(mpserr.KindInvalidShape, "qudit dimension must be >= 2, got %d", d)
	}

	c := &Chain{
		sites:         make([]*tensor.Tensor, n),
		d:             d,
		normTolerance: DefaultNormTolerance,
	}
	for i := 0; i < n; i++ {
		c.sites[i] = zeroSiteTensor(i, n, d)
	}
	return c, nil
}

func zeroSiteTensor(i, n, d int) *tensor.Tensor {
	switch {
	case i == 0 && n == 1:
		t := tensor.Zeros(d)
		t.SetAt([]int{0}, 1)
		return t
	case i == 0:
		t := tensor.Zeros(d, 1)
		t.SetAt([]int{0, 0}, 1)
		return t
	case i == n-1:
		t := tensor.Zeros(1, d)
		t.SetAt([]int{0, 0}, 1)
		return t
	default:
		t := tensor.Zeros(1, d, 1)
		t.SetAt([]int{0, 0, 0}, 1)
		return t
	}
}

// siteAxes names the role of each axis of a site tensor; an index of -1
// means that edge is absent (the site is a chain boundary on that side).
type siteAxes struct {
	left  int
	phys  int
	right int
}

func (c *Chain) axesOf(i int) siteAxes {
	n := c.NumSites()
	switch {
	case i == 0 && n-1 == 0:
		return siteAxes{left: -1, phys: 0, right: -1}
	case i == 0:
		return siteAxes{left: -1, phys: 0, right: 1}
	case i == n-1:
		return siteAxes{left: 0, phys: 1, right: -1}
	default:
		return siteAxes{left: 0, phys: 1, right: 2}
	}
}

// NumSites returns the number of sites in the chain.
func (c *Chain) NumSites() int {
	return len(c.sites)
}

// QuditDimension returns the physical dimension shared by every site.
func (c *Chain) QuditDimension() int {
	return c.d
}

// SetNormTolerance overrides the default imaginary-residual tolerance used
// by Norm.
func (c *Chain) SetNormTolerance(tol float64) {
	c.normTolerance = tol
}

// BondDimension returns the dimension of the virtual bond between site i
// and site i+1. Fails with IndexOutOfRange if i is out of [0, N-1), or
// InvalidChain if the two sites disagree on the bond's dimension.
func (c *Chain) BondDimension(i int) (int, error) {
	n := c.NumSites()
	if i < 0 || i >= n-1 {
		return 0, mpserr.Newf(mpserr.KindIndexOutOfRange, "bond index %d out of range [0,%d)", i, n-1)
	}
	left := c.sites[i]
	right := c.sites[i+1]
	leftAxes := c.axesOf(i)
	rightAxes := c.axesOf(i + 1)
	leftDim := left.Shape()[leftAxes.right]
	rightDim := right.Shape()[rightAxes.left]
	if leftDim != rightDim {
		return 0, mpserr.Newf(mpserr.KindInvalidChain, "bond %d dimension mismatch: %d vs %d", i, leftDim, rightDim)
	}
	return leftDim, nil
}

// BondDimensions returns every bond dimension, in order.
func (c *Chain) BondDimensions() ([]int, error) {
	out := make([]int, c.NumSites()-1)
	for i := range out {
		d, err := c.BondDimension(i)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// MaxBondDimension returns the max bond ceiling to the right of site i:
// min(d^(i+1), d^(N-i-1)).
func (c *Chain) MaxBondDimension(i int) int {
	n := c.NumSites()
	left := ipow(c.d, i+1)
	right := ipow(c.d, n-i-1)
	if left < right {
		return left
	}
	return right
}

// MaxBondDimensions returns every max bond ceiling, in order.
func (c *Chain) MaxBondDimensions() []int {
	out := make([]int, c.NumSites()-1)
	for i := range out {
		out[i] = c.MaxBondDimension(i)
	}
	return out
}

func ipow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

// IsValid checks the structural invariants from the data model: every
// site has the rank its position requires, adjacent bonds agree, and
// every bond is within its max ceiling. It does not re-derive the
// wavefunction to check the fifth (norm-matching) invariant, which is
// exercised directly by the Wavefunction/Norm tests instead of on every
// query.
func (c *Chain) IsValid() bool {
	n := c.NumSites()
	for i := 0; i < n; i++ {
		axes := c.axesOf(i)
		wantRank := 1
		if axes.left >= 0 {
			wantRank++
		}
		if axes.right >= 0 {
			wantRank++
		}
		if c.sites[i].Rank() != wantRank {
			return false
		}
	}
	bonds, err := c.BondDimensions()
	if err != nil {
		return false
	}
	ceilings := c.MaxBondDimensions()
	for i, b := range bonds {
		if b < 1 || b > ceilings[i] {
			return false
		}
	}
	return true
}

// Wavefunction contracts the full chain left to right into a dense vector
// of length d^N. Element k corresponds to the computational basis state
// whose base-d digit sequence matches k with site 0 as the most
// significant digit. Fails with InvalidChain if the chain's bonds are
// inconsistent.
func (c *Chain) Wavefunction() ([]complex128, error) {
	if _, err := c.BondDimensions(); err != nil {
		return nil, err
	}

	acc := c.sites[0]
	for i := 1; i < c.NumSites(); i++ {
		curAxes := c.axesOf(i)
		// acc's trailing axis is always the bond just contracted in, or,
		// for i==1, site 0's right bond axis.
		accBondAxis := acc.Rank() - 1
		next, err := tensor.ContractOne(acc, c.sites[i], accBondAxis, curAxes.left)
		if err != nil {
			return nil, mpserr.Wrapf(mpserr.KindInvalidChain, err, "contract site %d into wavefunction", i)
		}
		acc = next
	}

	n := ipow(c.d, c.NumSites())
	flat, err := acc.Reshape(n)
	if err != nil {
		return nil, err
	}
	return flat.Data(), nil
}

// Norm computes sqrt(<psi|psi>) by contracting the chain with its
// complex conjugate. The inner product is, in exact arithmetic, always
// real and non-negative; Norm asserts its imaginary part is within
// tolerance (set by SetNormTolerance, default DefaultNormTolerance = 1e-6)
// and fails with NumericError
// otherwise, per the spec's residual-check contract.
func (c *Chain) Norm() (float64, error) {
	psi, err := c.Wavefunction()
	if err != nil {
		return 0, err
	}
	var inner complex128
	for _, v := range psi {
		inner += cmplx.Conj(v) * v
	}
	if math.Abs(imag(inner)) > c.normTolerance {
		return 0, mpserr.Newf(mpserr.KindNumericError, "norm has non-negligible imaginary residual %g", imag(inner))
	}
	return math.Sqrt(real(inner)), nil
}

// TruncationHistory returns the per-two-site-gate truncated weight
// (sum of squared dropped singular values), in application order.
func (c *Chain) TruncationHistory() []float64 {
	return append([]float64(nil), c.truncated...)
}

// FidelityHistory returns the per-two-site-gate post-gate norm, in
// application order.
func (c *Chain) FidelityHistory() []float64 {
	return append([]float64(nil), c.fidelity...)
}

// Fingerprint returns a deterministic digest of the chain's diagnostic
// state (qudit dimensions, bond dimensions, truncation/fidelity
// histories), optionally including the wavefunction itself. It is a
// diagnostic for regression tests, not a wire format.
func (c *Chain) Fingerprint(includeWavefunction bool) (string, error) {
	bonds, err := c.BondDimensions()
	if err != nil {
		return "", err
	}
	dims := make([]int, c.NumSites())
	for i := range dims {
		dims[i] = c.d
	}
	var wf []complex128
	if includeWavefunction {
		wf, err = c.Wavefunction()
		if err != nil {
			return "", err
		}
	}
	return fingerprint.Of(dims, bonds, c.truncated, c.fidelity, wf), nil
}
