package mps

import "github.com/latticeqc/mps/mpserr"

type truncationKind int

const (
	noTruncation truncationKind = iota
	absoluteCap
	fractionalCap
)

// TruncationPolicy is a tagged choice between no bond-dimension cap, an
// absolute cap on the number of retained singular values, or a cap
// expressed as a fraction of the bond's max ceiling. It replaces a
// dynamic options bag with mutually-exclusive fields: the zero value is
// NoTruncation.
type TruncationPolicy struct {
	kind     truncationKind
	absolute int
	fraction float64
}

// NoTruncationPolicy performs no truncation; the bond may still be capped
// implicitly by the ambient SVD rank.
func NoTruncationPolicy() TruncationPolicy {
	return TruncationPolicy{kind: noTruncation}
}

// AbsoluteCapPolicy caps the retained singular values at k.
func AbsoluteCapPolicy(k int) TruncationPolicy {
	return TruncationPolicy{kind: absoluteCap, absolute: k}
}

// FractionalCapPolicy caps the retained singular values at
// round(fraction * ceiling), where ceiling is the bond's max dimension.
// fraction must lie in [0,1].
func FractionalCapPolicy(fraction float64) TruncationPolicy {
	return TruncationPolicy{kind: fractionalCap, fraction: fraction}
}

// NewTruncationPolicy validates a pair of raw, mutually-exclusive option
// values (the shape truncation configuration arrives in from an external
// circuit-description translator) and produces the corresponding typed
// policy. Supplying both maxSVals and fraction fails with
// ConflictingOptions; a fraction outside [0,1] fails with InvalidOption.
func NewTruncationPolicy(maxSVals *int, fraction *float64) (TruncationPolicy, error) {
	if maxSVals != nil && fraction != nil {
		return TruncationPolicy{}, mpserr.New(mpserr.KindConflictingOptions, "max_svals and fraction are mutually exclusive")
	}
	if fraction != nil {
		if *fraction < 0 || *fraction > 1 {
			return TruncationPolicy{}, mpserr.Newf(mpserr.KindInvalidOption, "fraction %v outside [0,1]", *fraction)
		}
		return FractionalCapPolicy(*fraction), nil
	}
	if maxSVals != nil {
		return AbsoluteCapPolicy(*maxSVals), nil
	}
	return NoTruncationPolicy(), nil
}

func (p TruncationPolicy) maxRank(ceiling int) *int {
	switch p.kind {
	case absoluteCap:
		k := p.absolute
		return &k
	case fractionalCap:
		k := int(roundHalfAwayFromZero(p.fraction * float64(ceiling)))
		return &k
	default:
		return nil
	}
}

func roundHalfAwayFromZero(x float64) float64 {
	if x < 0 {
		return -roundHalfAwayFromZero(-x)
	}
	i := float64(int64(x))
	if x-i >= 0.5 {
		return i + 1
	}
	return i
}

// GateOptions configures two-site gate application (and, by propagation,
// the swap router). Use DefaultGateOptions for the spec's default
// behavior; the zero value is NOT the default (KeepLeftCanonical would be
// false), so callers must not rely on an unconstructed GateOptions{}.
type GateOptions struct {
	KeepLeftCanonical bool
	Truncation        TruncationPolicy
}

// DefaultGateOptions returns the default configuration: left-canonical
// reassembly, no truncation.
func DefaultGateOptions() GateOptions {
	return GateOptions{KeepLeftCanonical: true, Truncation: NoTruncationPolicy()}
}
