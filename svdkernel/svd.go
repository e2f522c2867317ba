// Package svdkernel implements the SVD/truncation kernel: a thin singular
// value decomposition of a bipartitioned tensor, with an optional rank cap
// and a report of the weight discarded by truncation.
//
// No complex-matrix SVD routine is available anywhere in the surrounding
// dependency stack (see DESIGN.md), so the decomposition is built from a
// classical cyclic Jacobi eigenvalue sweep over the smaller Gram matrix
// (A^H A or A A^H, whichever is smaller), which is correct for the
// well-conditioned, modest-dimension matrices this engine produces.
package svdkernel

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/latticeqc/mps/mpserr"
	"github.com/latticeqc/mps/tensor"
)

// DefaultEpsilon is the relative threshold below which a singular value is
// treated as a structural zero for the purpose of counting dropped weight.
const DefaultEpsilon = 1e-12

// Result holds the outcome of a Split call.
type Result struct {
	U       *tensor.Tensor // left_edges + bond
	S       []float64      // singular values, descending
	Vh      *tensor.Tensor // bond + right_edges
	Dropped []float64      // discarded singular values, descending
}

// Split reshapes t into a matrix with rows indexed by leftAxes and columns
// indexed by rightAxes (every axis of t must appear in exactly one of the
// two lists), performs a thin SVD, and optionally truncates to maxRank
// singular values. epsilon is the relative structural-zero threshold from
// the spec (callers typically pass DefaultEpsilon).
func Split(t *tensor.Tensor, leftAxes, rightAxes []int, maxRank *int, epsilon float64) (*Result, error) {
	if err := validatePartition(t.Rank(), leftAxes, rightAxes); err != nil {
		return nil, err
	}

	perm := append(append([]int{}, leftAxes...), rightAxes...)
	permuted, err := t.Transpose(perm...)
	if err != nil {
		return nil, err
	}
	shape := t.Shape()
	rows, cols := 1, 1
	for _, a := range leftAxes {
		rows *= shape[a]
	}
	for _, a := range rightAxes {
		cols *= shape[a]
	}
	mat, err := permuted.Reshape(rows, cols)
	if err != nil {
		return nil, err
	}

	m := toMatrix(mat, rows, cols)
	u, sigma, v := jacobiSVD(m)

	k := len(sigma)
	kept := k
	var dropped []float64
	if maxRank != nil && *maxRank < k {
		kept = *maxRank
		dropped = append(dropped, sigma[kept:]...)
	}

	uT, err := matrixToTensor(sliceCols(u, kept), rows, kept)
	if err != nil {
		return nil, err
	}
	leftShape := append(append([]int{}, shapeOf(shape, leftAxes)...), kept)
	uT, err = uT.Reshape(leftShape...)
	if err != nil {
		return nil, err
	}

	vhRaw := conjTransposeSliceRows(v, kept, cols)
	vhT, err := matrixToTensor(vhRaw, kept, cols)
	if err != nil {
		return nil, err
	}
	rightShape := append([]int{kept}, shapeOf(shape, rightAxes)...)
	vhT, err = vhT.Reshape(rightShape...)
	if err != nil {
		return nil, err
	}

	_ = epsilon // structural-zero threshold is applied by callers when they
	// decide whether a near-zero singular value counts as "dropped weight";
	// the kernel itself always reports the exact discarded values.

	return &Result{U: uT, S: sigma[:kept], Vh: vhT, Dropped: dropped}, nil
}

func shapeOf(shape, axes []int) []int {
	out := make([]int, len(axes))
	for i, a := range axes {
		out[i] = shape[a]
	}
	return out
}

func validatePartition(rank int, left, right []int) error {
	seen := make([]bool, rank)
	for _, a := range left {
		if a < 0 || a >= rank || seen[a] {
			return mpserr.Newf(mpserr.KindInvalidShape, "invalid left axis %d", a)
		}
		seen[a] = true
	}
	for _, a := range right {
		if a < 0 || a >= rank || seen[a] {
			return mpserr.Newf(mpserr.KindInvalidShape, "invalid right axis %d", a)
		}
		seen[a] = true
	}
	for i, s := range seen {
		if !s {
			return mpserr.Newf(mpserr.KindInvalidShape, "axis %d assigned to neither partition", i)
		}
	}
	return nil
}

func toMatrix(t *tensor.Tensor, rows, cols int) [][]complex128 {
	m := make([][]complex128, rows)
	for i := 0; i < rows; i++ {
		m[i] = make([]complex128, cols)
		for j := 0; j < cols; j++ {
			m[i][j] = t.At(i, j)
		}
	}
	return m
}

func matrixToTensor(m [][]complex128, rows, cols int) (*tensor.Tensor, error) {
	data := make([]complex128, rows*cols)
	for i := 0; i < rows; i++ {
		copy(data[i*cols:(i+1)*cols], m[i])
	}
	return tensor.New([]int{rows, cols}, data)
}

func sliceCols(m [][]complex128, k int) [][]complex128 {
	out := make([][]complex128, len(m))
	for i, row := range m {
		out[i] = append([]complex128(nil), row[:k]...)
	}
	return out
}

// conjTransposeSliceRows returns the first k rows of v^H, where v is stored
// as an n x k matrix (columns are the right singular vectors).
func conjTransposeSliceRows(v [][]complex128, k, cols int) [][]complex128 {
	out := make([][]complex128, k)
	for r := 0; r < k; r++ {
		out[r] = make([]complex128, cols)
		for c := 0; c < cols; c++ {
			out[r][c] = cmplx.Conj(v[c][r])
		}
	}
	return out
}

// jacobiSVD computes the thin SVD of an m x n complex matrix via a cyclic
// Jacobi eigendecomposition of the smaller Gram matrix. Returns U (m x k),
// singular values sorted descending (length k = min(m,n)), and V (n x k,
// not V^H) such that A = U diag(sigma) V^H.
func jacobiSVD(a [][]complex128) (u [][]complex128, sigma []float64, v [][]complex128) {
	m := len(a)
	n := 0
	if m > 0 {
		n = len(a[0])
	}
	k := min(m, n)

	if n <= m {
		g := gram(a, n, m, true) // A^H A, n x n
		eigvals, eigvecs := jacobiEigenHermitian(g)
		sigma, order := sortedSingularValues(eigvals)
		v = reorderColumns(eigvecs, order, n)
		u = columnsFromAV(a, v, sigma, m, n, k)
	} else {
		g := gram(a, m, n, false) // A A^H, m x m
		eigvals, eigvecs := jacobiEigenHermitian(g)
		sigma, order := sortedSingularValues(eigvals)
		u = reorderColumns(eigvecs, order, m)
		v = columnsFromAHU(a, u, sigma, m, n, k)
	}
	return u, sigma, v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// gram computes A^H A (ahA==true) sized dim x dim, or A A^H otherwise.
func gram(a [][]complex128, dim, other int, ahA bool) [][]complex128 {
	g := make([][]complex128, dim)
	for i := range g {
		g[i] = make([]complex128, dim)
	}
	m := len(a)
	var n int
	if m > 0 {
		n = len(a[0])
	}
	if ahA {
		// g[p][q] = sum_r conj(a[r][p]) * a[r][q]
		for p := 0; p < dim; p++ {
			for q := 0; q < dim; q++ {
				var sum complex128
				for r := 0; r < m; r++ {
					sum += cmplx.Conj(a[r][p]) * a[r][q]
				}
				g[p][q] = sum
			}
		}
	} else {
		// g[p][q] = sum_r a[p][r] * conj(a[q][r])
		for p := 0; p < dim; p++ {
			for q := 0; q < dim; q++ {
				var sum complex128
				for r := 0; r < n; r++ {
					sum += a[p][r] * cmplx.Conj(a[q][r])
				}
				g[p][q] = sum
			}
		}
	}
	return g
}

// jacobiEigenHermitian diagonalizes a Hermitian matrix g in place via
// cyclic complex Jacobi rotations, returning the (real, non-negative up to
// floating error) eigenvalues and the matrix of eigenvectors as columns.
func jacobiEigenHermitian(g [][]complex128) ([]float64, [][]complex128) {
	n := len(g)
	vcols := identity(n)

	const maxSweeps = 100
	const tol = 1e-13
	for sweep := 0; sweep < maxSweeps; sweep++ {
		off := 0.0
		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				off += cmplx.Abs(g[p][q])
			}
		}
		if off < tol {
			break
		}
		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				rotate(g, vcols, p, q)
			}
		}
	}

	eigvals := make([]float64, n)
	for i := 0; i < n; i++ {
		eigvals[i] = real(g[i][i])
		if eigvals[i] < 0 {
			eigvals[i] = 0
		}
	}
	return eigvals, vcols
}

func identity(n int) [][]complex128 {
	m := make([][]complex128, n)
	for i := range m {
		m[i] = make([]complex128, n)
		m[i][i] = 1
	}
	return m
}

// rotate applies a single complex Jacobi rotation to zero g[p][q],
// updating g in place and accumulating the rotation into v's columns.
func rotate(g, v [][]complex128, p, q int) {
	gpq := g[p][q]
	r := cmplx.Abs(gpq)
	if r < 1e-300 {
		return
	}
	u := gpq / complex(r, 0)

	app := real(g[p][p])
	aqq := real(g[q][q])

	var c, s float64
	if r == 0 {
		return
	}
	if app == aqq {
		c = math.Sqrt2 / 2
		s = c
	} else {
		zeta := (aqq - app) / (2 * r)
		t := 1.0 / (math.Abs(zeta) + math.Sqrt(1+zeta*zeta))
		if zeta < 0 {
			t = -t
		}
		c = 1.0 / math.Sqrt(1+t*t)
		s = t * c
	}

	jpp := complex(c, 0)
	jqq := complex(c, 0)
	jpq := complex(s, 0) * u
	jqp := complex(-s, 0) * cmplx.Conj(u)

	n := len(g)
	for k := 0; k < n; k++ {
		colp := g[k][p]
		colq := g[k][q]
		g[k][p] = colp*jpp + colq*jqp
		g[k][q] = colp*jpq + colq*jqq
	}
	for k := 0; k < n; k++ {
		rowp := g[p][k]
		rowq := g[q][k]
		g[p][k] = cmplx.Conj(jpp)*rowp + cmplx.Conj(jqp)*rowq
		g[q][k] = cmplx.Conj(jpq)*rowp + cmplx.Conj(jqq)*rowq
	}
	for k := 0; k < len(v); k++ {
		vp := v[k][p]
		vq := v[k][q]
		v[k][p] = vp*jpp + vq*jqp
		v[k][q] = vp*jpq + vq*jqq
	}
}

// sortedSingularValues returns sigma = sqrt(eigvals) sorted descending and
// the permutation applied, using a stable sort so that equal singular
// values retain their original (lower-index-first) relative order, which
// is the deterministic truncation tie-break the kernel promises.
func sortedSingularValues(eigvals []float64) ([]float64, []int) {
	n := len(eigvals)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return eigvals[order[i]] > eigvals[order[j]]
	})
	sigma := make([]float64, n)
	for i, idx := range order {
		v := eigvals[idx]
		if v < 0 {
			v = 0
		}
		sigma[i] = math.Sqrt(v)
	}
	return sigma, order
}

func reorderColumns(m [][]complex128, order []int, dim int) [][]complex128 {
	out := make([][]complex128, dim)
	for i := range out {
		out[i] = make([]complex128, len(order))
		for j, idx := range order {
			out[i][j] = m[i][idx]
		}
	}
	return out
}

// columnsFromAV computes U's columns as (A v_i) / sigma_i for sigma_i above
// a numerical floor, completing any remaining columns with an orthonormal
// basis (Gram-Schmidt against the already-assigned columns) for the
// rank-deficient case.
func columnsFromAV(a, v [][]complex128, sigma []float64, m, n, k int) [][]complex128 {
	u := make([][]complex128, m)
	for i := range u {
		u[i] = make([]complex128, k)
	}
	const floor = 1e-12
	assigned := make([]bool, k)
	for j := 0; j < k; j++ {
		if sigma[j] <= floor {
			continue
		}
		for i := 0; i < m; i++ {
			var sum complex128
			for r := 0; r < n; r++ {
				sum += a[i][r] * v[r][j]
			}
			u[i][j] = sum / complex(sigma[j], 0)
		}
		assigned[j] = true
	}
	completeOrthonormalColumns(u, assigned, m, k)
	return u
}

func columnsFromAHU(a, u [][]complex128, sigma []float64, m, n, k int) [][]complex128 {
	v := make([][]complex128, n)
	for i := range v {
		v[i] = make([]complex128, k)
	}
	const floor = 1e-12
	assigned := make([]bool, k)
	for j := 0; j < k; j++ {
		if sigma[j] <= floor {
			continue
		}
		for i := 0; i < n; i++ {
			var sum complex128
			for r := 0; r < m; r++ {
				sum += cmplx.Conj(a[r][i]) * u[r][j]
			}
			v[i][j] = sum / complex(sigma[j], 0)
		}
		assigned[j] = true
	}
	completeOrthonormalColumns(v, assigned, n, k)
	return v
}

// completeOrthonormalColumns fills the unassigned columns of m (dim x k)
// with vectors orthonormal to every other column, via Gram-Schmidt seeded
// from the standard basis. Used only for rank-deficient inputs, where the
// corresponding singular value is (numerically) zero and the completed
// direction is arbitrary.
func completeOrthonormalColumns(m [][]complex128, assigned []bool, dim, k int) {
	for j := 0; j < k; j++ {
		if assigned[j] {
			continue
		}
		for basis := 0; basis < dim; basis++ {
			candidate := make([]complex128, dim)
			candidate[basis] = 1
			for p := 0; p < k; p++ {
				if p == j {
					continue
				}
				var dot complex128
				for i := 0; i < dim; i++ {
					dot += cmplx.Conj(m[i][p]) * candidate[i]
				}
				for i := 0; i < dim; i++ {
					candidate[i] -= dot * m[i][p]
				}
			}
			var norm2 float64
			for _, c := range candidate {
				norm2 += real(c)*real(c) + imag(c)*imag(c)
			}
			if norm2 < 1e-12 {
				continue
			}
			norm := math.Sqrt(norm2)
			for i := 0; i < dim; i++ {
				m[i][j] = candidate[i] / complex(norm, 0)
			}
			assigned[j] = true
			break
		}
	}
}
