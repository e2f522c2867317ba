package mps

import (
	"testing"

	"github.com/latticeqc/mps/gatelib"
	"github.com/latticeqc/mps/mpserr"
)

func TestDispatchUnsupportedArity(t *testing.T) {
	c, _ := New(2, 2)
	ops := []Operation{{Gate: gatelib.PauliX(), Arity: 3, Targets: []int{0}}}
	err := Dispatch(c, ops, DefaultGateOptions())
	if !mpserr.Is(err, mpserr.KindUnsupportedArity) {
		t.Fatalf("expected KindUnsupportedArity, got %v", err)
	}
}

func TestDispatchArityOneTargetMismatch(t *testing.T) {
	c, _ := New(2, 2)
	ops := []Operation{{Gate: gatelib.PauliX(), Arity: 1, Targets: []int{0, 1}}}
	err := Dispatch(c, ops, DefaultGateOptions())
	if !mpserr.Is(err, mpserr.KindUnsupportedArity) {
		t.Fatalf("expected KindUnsupportedArity, got %v", err)
	}
}

func TestDispatchArityTwoDuplicateTargets(t *testing.T) {
	c, _ := New(2, 2)
	ops := []Operation{{Gate: gatelib.CNOT(), Arity: 2, Targets: []int{0, 0}}}
	err := Dispatch(c, ops, DefaultGateOptions())
	if !mpserr.Is(err, mpserr.KindInvalidIndexOrder) {
		t.Fatalf("expected KindInvalidIndexOrder, got %v", err)
	}
}

func TestDispatchOutOfRangeTarget(t *testing.T) {
	c, _ := New(2, 2)
	ops := []Operation{{Gate: gatelib.PauliX(), Arity: 1, Targets: []int{5}}}
	err := Dispatch(c, ops, DefaultGateOptions())
	if !mpserr.Is(err, mpserr.KindIndexOutOfRange) {
		t.Fatalf("expected KindIndexOutOfRange, got %v", err)
	}
}

func TestDispatchAdjacentArityTwo(t *testing.T) {
	c, _ := New(2, 2)
	ops := []Operation{
		{Gate: gatelib.Hadamard(), Arity: 1, Targets: []int{0}},
		{Gate: gatelib.CNOT(), Arity: 2, Targets: []int{0, 1}},
	}
	if err := Dispatch(c, ops, DefaultGateOptions()); err != nil {
		t.Fatal(err)
	}
	psi, err := c.Wavefunction()
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(real(psi[0]), 1/sqrt2, 1e-8) || !approxEqual(real(psi[3]), 1/sqrt2, 1e-8) {
		t.Fatalf("expected Bell state, got %v", psi)
	}
}

func TestDispatchNonAdjacentArityTwoRoutesThroughSwap(t *testing.T) {
	c, _ := New(3, 2)
	ops := []Operation{
		{Gate: gatelib.Hadamard(), Arity: 1, Targets: []int{0}},
		{Gate: gatelib.CNOT(), Arity: 2, Targets: []int{0, 2}},
	}
	if err := Dispatch(c, ops, DefaultGateOptions()); err != nil {
		t.Fatal(err)
	}
	if !c.IsValid() {
		t.Fatal("expected a valid chain after routed non-adjacent gate")
	}
	norm, err := c.Norm()
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(norm, 1, 1e-8) {
		t.Fatalf("expected norm 1, got %v", norm)
	}
}

func TestDispatchReversedTargetOrderTransposesGate(t *testing.T) {
	// CNOT with targets [1,0]: site 1 is control, site 0 is target.
	c, _ := New(2, 2)
	if err := c.ApplyOneSite(gatelib.PauliX(), 1); err != nil {
		t.Fatal(err)
	}
	ops := []Operation{{Gate: gatelib.CNOT(), Arity: 2, Targets: []int{1, 0}}}
	if err := Dispatch(c, ops, DefaultGateOptions()); err != nil {
		t.Fatal(err)
	}
	psi, err := c.Wavefunction()
	if err != nil {
		t.Fatal(err)
	}
	// site1 (control) = 1 should flip site0 (target) to 1: |11> -> index 3.
	if !approxEqual(real(psi[3]), 1, 1e-8) {
		t.Fatalf("expected control=site1 to flip target=site0, got %v", psi)
	}
}

const sqrt2 = 1.4142135623730951
