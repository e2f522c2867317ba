package mps

import (
	"testing"

	"github.com/latticeqc/mps/gatelib"
	"github.com/latticeqc/mps/mpserr"
)

func TestApplyOneSiteRejectsBadShape(t *testing.T) {
	c, _ := New(2, 2)
	bad := gatelib.CNOT() // rank 4, not a one-site gate
	err := c.ApplyOneSite(bad, 0)
	if !mpserr.Is(err, mpserr.KindInvalidGateShape) {
		t.Fatalf("expected KindInvalidGateShape, got %v", err)
	}
}

func TestApplyOneSiteRejectsOutOfRangeIndex(t *testing.T) {
	c, _ := New(2, 2)
	err := c.ApplyOneSite(gatelib.PauliX(), 7)
	if !mpserr.Is(err, mpserr.KindIndexOutOfRange) {
		t.Fatalf("expected KindIndexOutOfRange, got %v", err)
	}
}

func TestApplyOneSitePreservesBondDimensions(t *testing.T) {
	c, _ := New(3, 2)
	before, _ := c.BondDimensions()
	if err := c.ApplyOneSite(gatelib.Hadamard(), 1); err != nil {
		t.Fatal(err)
	}
	after, _ := c.BondDimensions()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("bond dimensions changed after one-site gate: %v -> %v", before, after)
		}
	}
}

func TestApplyOneSiteXTwiceIsIdentity(t *testing.T) {
	c, _ := New(2, 2)
	x := gatelib.PauliX()
	if err := c.ApplyOneSite(x, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.ApplyOneSite(x, 0); err != nil {
		t.Fatal(err)
	}
	psi, err := c.Wavefunction()
	if err != nil {
		t.Fatal(err)
	}
	if psi[0] != 1 {
		t.Fatalf("X twice should restore |00>, got %v", psi)
	}
}

func TestApplyOneSiteHTwiceIsIdentity(t *testing.T) {
	c, _ := New(2, 2)
	h := gatelib.Hadamard()
	if err := c.ApplyOneSite(h, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.ApplyOneSite(h, 0); err != nil {
		t.Fatal(err)
	}
	psi, err := c.Wavefunction()
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(real(psi[0]), 1, 1e-9) {
		t.Fatalf("H twice should restore |00>, got %v", psi)
	}
}

func TestApplyTwoSiteRejectsNonAdjacent(t *testing.T) {
	c, _ := New(4, 2)
	err := c.ApplyTwoSite(gatelib.CNOT(), 0, 2, DefaultGateOptions())
	if !mpserr.Is(err, mpserr.KindNonAdjacentSites) {
		t.Fatalf("expected KindNonAdjacentSites, got %v", err)
	}
}

func TestApplyTwoSiteRejectsReversedOrder(t *testing.T) {
	c, _ := New(2, 2)
	err := c.ApplyTwoSite(gatelib.CNOT(), 1, 0, DefaultGateOptions())
	if !mpserr.Is(err, mpserr.KindInvalidIndexOrder) {
		t.Fatalf("expected KindInvalidIndexOrder, got %v", err)
	}
}

func TestApplyTwoSiteRejectsBadGateShape(t *testing.T) {
	c, _ := New(2, 2)
	err := c.ApplyTwoSite(gatelib.Hadamard(), 0, 1, DefaultGateOptions())
	if !mpserr.Is(err, mpserr.KindInvalidGateShape) {
		t.Fatalf("expected KindInvalidGateShape, got %v", err)
	}
}

func TestApplyTwoSiteSwapTwiceIsIdentity(t *testing.T) {
	c, _ := New(2, 2)
	if err := c.ApplyOneSite(gatelib.PauliX(), 0); err != nil {
		t.Fatal(err)
	}
	swap := gatelib.SWAP()
	if err := c.ApplyTwoSite(swap, 0, 1, DefaultGateOptions()); err != nil {
		t.Fatal(err)
	}
	if err := c.ApplyTwoSite(swap, 0, 1, DefaultGateOptions()); err != nil {
		t.Fatal(err)
	}
	psi, err := c.Wavefunction()
	if err != nil {
		t.Fatal(err)
	}
	// |10> again: index 2
	if !approxEqual(real(psi[2]), 1, 1e-9) {
		t.Fatalf("SWAP twice after X on site 0 should restore |10>, got %v", psi)
	}
}

func TestApplyTwoSiteUnitaryNoTruncationPreservesNorm(t *testing.T) {
	c, _ := New(2, 2)
	if err := c.ApplyOneSite(gatelib.Hadamard(), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.ApplyTwoSite(gatelib.CNOT(), 0, 1, DefaultGateOptions()); err != nil {
		t.Fatal(err)
	}
	norm, err := c.Norm()
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(norm, 1, 1e-9) {
		t.Fatalf("expected norm 1 after unitary two-site gate with no truncation, got %v", norm)
	}
	hist := c.TruncationHistory()
	if len(hist) != 1 || !approxEqual(hist[0], 0, 1e-9) {
		t.Fatalf("expected zero truncated weight, got %v", hist)
	}
}

func TestConflictingOptionsRejected(t *testing.T) {
	k := 1
	f := 0.5
	_, err := NewTruncationPolicy(&k, &f)
	if !mpserr.Is(err, mpserr.KindConflictingOptions) {
		t.Fatalf("expected KindConflictingOptions, got %v", err)
	}
}

func TestInvalidFractionRejected(t *testing.T) {
	f := 1.5
	_, err := NewTruncationPolicy(nil, &f)
	if !mpserr.Is(err, mpserr.KindInvalidOption) {
		t.Fatalf("expected KindInvalidOption, got %v", err)
	}
}

func TestBellStateMaxSValsOneDropsHalf(t *testing.T) {
	c, _ := New(2, 2)
	if err := c.ApplyOneSite(gatelib.Hadamard(), 0); err != nil {
		t.Fatal(err)
	}
	k := 1
	opts := GateOptions{KeepLeftCanonical: true, Truncation: AbsoluteCapPolicy(k)}
	if err := c.ApplyTwoSite(gatelib.CNOT(), 0, 1, opts); err != nil {
		t.Fatal(err)
	}
	hist := c.TruncationHistory()
	if len(hist) != 1 || !approxEqual(hist[0], 0.5, 1e-8) {
		t.Fatalf("expected dropped weight 0.5, got %v", hist)
	}
	bond, err := c.BondDimension(0)
	if err != nil {
		t.Fatal(err)
	}
	if bond != 1 {
		t.Fatalf("expected bond dimension 1 after capping to 1 singular value, got %d", bond)
	}
}

func TestFractionOneDropsNothing(t *testing.T) {
	c, _ := New(2, 2)
	if err := c.ApplyOneSite(gatelib.Hadamard(), 0); err != nil {
		t.Fatal(err)
	}
	opts := GateOptions{KeepLeftCanonical: true, Truncation: FractionalCapPolicy(1.0)}
	if err := c.ApplyTwoSite(gatelib.CNOT(), 0, 1, opts); err != nil {
		t.Fatal(err)
	}
	hist := c.TruncationHistory()
	if len(hist) != 1 || !approxEqual(hist[0], 0, 1e-8) {
		t.Fatalf("expected zero dropped weight with fraction=1.0, got %v", hist)
	}
}
