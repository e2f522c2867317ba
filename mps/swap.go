package mps

import (
	"github.com/latticeqc/mps/gatelib"
	"github.com/latticeqc/mps/mpserr"
)

// SwapUntilAdjacent repeatedly applies SWAP on (l,l+1), (l+1,l+2), ...,
// (r-2,r-1), bringing the logical qudits originally at l and r adjacent
// at positions r-1 and r. Truncation options propagate to every swap.
// Fails with InvalidIndexOrder if l >= r, IndexOutOfRange if bounds are
// violated. If r == l+1 this is a no-op. The router never undoes the
// permutation; callers needing the original ordering must issue the
// inverse swap chain themselves.
func (c *Chain) SwapUntilAdjacent(l, r int, opts GateOptions) error {
	n := c.NumSites()
	if l < 0 || l >= n || r < 0 || r >= n {
		return mpserr.Newf(mpserr.KindIndexOutOfRange, "swap range out of bounds [0,%d): l=%d, r=%d", n, l, r)
	}
	if l >= r {
		return mpserr.Newf(mpserr.KindInvalidIndexOrder, "swap range requires l < r, got l=%d, r=%d", l, r)
	}

	swap := gatelib.SWAP()
	for pos := l; pos < r-1; pos++ {
		if err := c.ApplyTwoSite(swap, pos, pos+1, opts); err != nil {
			return err
		}
	}
	return nil
}
