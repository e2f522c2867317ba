package mps

import (
	"testing"

	"github.com/latticeqc/mps/gatelib"
	"github.com/latticeqc/mps/mpserr"
)

func TestSwapUntilAdjacentNoOpWhenAlreadyAdjacent(t *testing.T) {
	c, _ := New(3, 2)
	if err := c.SwapUntilAdjacent(0, 1, DefaultGateOptions()); err != nil {
		t.Fatal(err)
	}
	if !c.IsValid() {
		t.Fatal("chain should remain valid after a no-op swap")
	}
}

func TestSwapUntilAdjacentRejectsBadOrder(t *testing.T) {
	c, _ := New(3, 2)
	err := c.SwapUntilAdjacent(2, 0, DefaultGateOptions())
	if !mpserr.Is(err, mpserr.KindInvalidIndexOrder) {
		t.Fatalf("expected KindInvalidIndexOrder, got %v", err)
	}
}

func TestSwapUntilAdjacentRejectsOutOfRange(t *testing.T) {
	c, _ := New(3, 2)
	err := c.SwapUntilAdjacent(0, 9, DefaultGateOptions())
	if !mpserr.Is(err, mpserr.KindIndexOutOfRange) {
		t.Fatalf("expected KindIndexOutOfRange, got %v", err)
	}
}

func TestSwapUntilAdjacentMovesLogicalQudit(t *testing.T) {
	c, _ := New(3, 2)
	if err := c.ApplyOneSite(gatelib.PauliX(), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.SwapUntilAdjacent(0, 2, DefaultGateOptions()); err != nil {
		t.Fatal(err)
	}
	psi, err := c.Wavefunction()
	if err != nil {
		t.Fatal(err)
	}
	// The qudit originally at 0 (now |1>) should end up at position 1 (r-1=1),
	// so the state is |0 1 0> -> digit sequence 010 base2 = 2.
	if !approxEqual(real(psi[2]), 1, 1e-9) {
		t.Fatalf("expected X to have moved to position 1, got wavefunction %v", psi)
	}
}
