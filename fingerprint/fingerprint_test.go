package fingerprint

import "testing"

func TestOfIsDeterministic(t *testing.T) {
	dims := []int{2, 2}
	bonds := []int{2}
	truncated := []float64{0.0}
	fidelity := []float64{1.0}
	wf := []complex128{1, 0, 0, 0}

	a := Of(dims, bonds, truncated, fidelity, wf)
	b := Of(dims, bonds, truncated, fidelity, wf)
	if a != b {
		t.Fatalf("expected identical fingerprints, got %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected a 32-byte hex digest (64 chars), got %d", len(a))
	}
}

func TestOfDiffersOnBondChange(t *testing.T) {
	dims := []int{2, 2}
	truncated := []float64{0.0}
	fidelity := []float64{1.0}
	wf := []complex128{1, 0, 0, 0}

	a := Of(dims, []int{1}, truncated, fidelity, wf)
	b := Of(dims, []int{2}, truncated, fidelity, wf)
	if a == b {
		t.Fatal("expected differing bond dimensions to produce differing fingerprints")
	}
}

func TestWithKeyDiffersFromDefault(t *testing.T) {
	dims := []int{2}
	bonds := []int{}
	truncated := []float64{}
	fidelity := []float64{}

	a := Of(dims, bonds, truncated, fidelity, nil)
	b := WithKey([]byte("a-different-key-value"), dims, bonds, truncated, fidelity, nil)
	if a == b {
		t.Fatal("expected a different key to produce a different fingerprint")
	}
}

func TestOfAllowsNilWavefunction(t *testing.T) {
	if Of([]int{2}, []int{}, nil, nil, nil) == "" {
		t.Fatal("expected a non-empty fingerprint even with all-nil optional fields")
	}
}
