package mps

import (
	"github.com/latticeqc/mps/mpserr"
	"github.com/latticeqc/mps/tensor"
)

// Operation is one entry in a typed operation stream: a gate tensor, its
// arity, and the ordered target qudit indices it acts on. Arity 1
// operations take one target; arity 2 operations take two, with target[0]
// mapped to the gate's first operand (edges 0 and 2) and target[1] to its
// second (edges 1 and 3).
type Operation struct {
	Gate    *tensor.Tensor
	Arity   int
	Targets []int
}

// Validate checks the operation's own well-formedness against a chain of
// n sites: arity must be 1 or 2 (else UnsupportedArity), the gate's rank
// must match its declared arity, every target must be in range, and for
// arity 2 the two targets must be distinct.
func (op Operation) Validate(n int) error {
	switch op.Arity {
	case 1:
		if len(op.Targets) != 1 {
			return mpserr.Newf(mpserr.KindUnsupportedArity, "arity 1 operation must have exactly 1 target, got %d", len(op.Targets))
		}
		if op.Gate.Rank() != 2 {
			return mpserr.Newf(mpserr.KindInvalidGateShape, "arity 1 operation's gate must be rank 2, got rank %d", op.Gate.Rank())
		}
	case 2:
		if len(op.Targets) != 2 {
			return mpserr.Newf(mpserr.KindUnsupportedArity, "arity 2 operation must have exactly 2 targets, got %d", len(op.Targets))
		}
		if op.Gate.Rank() != 4 {
			return mpserr.Newf(mpserr.KindInvalidGateShape, "arity 2 operation's gate must be rank 4, got rank %d", op.Gate.Rank())
		}
		if op.Targets[0] == op.Targets[1] {
			return mpserr.Newf(mpserr.KindInvalidIndexOrder, "arity 2 operation requires distinct targets, got %d twice", op.Targets[0])
		}
	default:
		return mpserr.Newf(mpserr.KindUnsupportedArity, "unsupported operation arity %d", op.Arity)
	}
	for _, t := range op.Targets {
		if t < 0 || t >= n {
			return mpserr.Newf(mpserr.KindIndexOutOfRange, "target %d out of range [0,%d)", t, n)
		}
	}
	return nil
}

// Dispatch consumes an operation stream in order, applying each operation
// to the chain: arity 1 goes to ApplyOneSite; arity 2 on adjacent
// targets goes directly to ApplyTwoSite; arity 2 on non-adjacent targets
// is routed through SwapUntilAdjacent first. The dispatcher is stateless
// beyond the chain itself and applies operations in exactly the stream's
// order. An error aborts the stream immediately, per each operation's own
// failure contract.
func Dispatch(c *Chain, ops []Operation, opts GateOptions) error {
	for _, op := range ops {
		if err := op.Validate(c.NumSites()); err != nil {
			return err
		}
		switch op.Arity {
		case 1:
			if err := c.ApplyOneSite(op.Gate, op.Targets[0]); err != nil {
				return err
			}
		case 2:
			gate, lo, hi := normalizeTwoSiteTargets(op.Gate, op.Targets)
			if hi-lo == 1 {
				if err := c.ApplyTwoSite(gate, lo, hi, opts); err != nil {
					return err
				}
			} else {
				if err := c.SwapUntilAdjacent(lo, hi, opts); err != nil {
					return err
				}
				if err := c.ApplyTwoSite(gate, hi-1, hi, opts); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// normalizeTwoSiteTargets returns the gate and targets reordered so the
// first returned index is always less than the second. When the
// operation's declared target order already increases with chain
// position, the gate is returned unchanged; otherwise its two operands
// are swapped (edges 0<->1 and 2<->3) so the edge convention still lines
// up with which physical site ends up "first" after any routing.
func normalizeTwoSiteTargets(g *tensor.Tensor, targets []int) (*tensor.Tensor, int, int) {
	a, b := targets[0], targets[1]
	if a < b {
		return g, a, b
	}
	swapped, err := g.Transpose(1, 0, 3, 2)
	if err != nil {
		// g's rank was already validated as 4 by Operation.Validate.
		panic(err)
	}
	return swapped, b, a
}
