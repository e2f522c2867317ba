package mpserr

import (
	"errors"
	"testing"
)

func TestNewAndIs(t *testing.T) {
	err := New(KindInvalidShape, "bad shape")
	if !Is(err, KindInvalidShape) {
		t.Fatalf("expected KindInvalidShape, got %v", err)
	}
	if Is(err, KindNumericError) {
		t.Fatalf("did not expect KindNumericError")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(KindNumericError, cause, "svd failed")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error to satisfy errors.Is against cause")
	}
	kind, ok := KindOf(err)
	if !ok || kind != KindNumericError {
		t.Fatalf("expected KindNumericError, got %v (ok=%v)", kind, ok)
	}
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	err := Wrap(KindInvalidOption, nil, "no cause")
	if !Is(err, KindInvalidOption) {
		t.Fatalf("expected KindInvalidOption, got %v", err)
	}
}

func TestKindOfUnrelatedError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	if ok {
		t.Fatalf("did not expect a Kind on a plain error")
	}
}
