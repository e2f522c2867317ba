// Package fingerprint derives a deterministic digest of an MPS chain's
// observable state (bond structure, truncation history, and wavefunction)
// for use in regression and golden-state tests. It is not a wire format:
// the digest is one-way and carries no information needed to reconstruct
// the chain.
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"lukechampine.com/blake3"
)

// defaultKey is used when callers do not supply one. Tests that want
// collision resistance across unrelated fixtures should supply their own
// key instead of relying on this default.
var defaultKey = [32]byte{'m', 'p', 's', 'i', 'm', '-', 'f', 'p'}

// Of hashes the given chain summary into a 32-byte hex-encoded digest. dims
// is the per-site qudit dimension list, bonds the current bond dimensions,
// truncated the per-step truncated weight history, fidelity the per-step
// fidelity history, and wavefunction the full dense state vector. Two
// chains that agree on all five inputs produce the same fingerprint
// regardless of the path of operations that produced them.
func Of(dims []int, bonds []int, truncated []float64, fidelity []float64, wavefunction []complex128) string {
	return WithKey(defaultKey[:], dims, bonds, truncated, fidelity, wavefunction)
}

// WithKey is Of with an explicit 32-byte (or shorter, zero-padded) BLAKE3
// key, letting callers derive unlinkable fingerprints for different test
// suites or golden-file generations from the same underlying state.
func WithKey(key []byte, dims []int, bonds []int, truncated []float64, fidelity []float64, wavefunction []complex128) string {
	var blake3Key [32]byte
	copy(blake3Key[:], key)

	h := blake3.New(32, blake3Key[:])

	writeInts(h, dims)
	writeInts(h, bonds)
	writeFloats(h, truncated)
	writeFloats(h, fidelity)
	writeComplex(h, wavefunction)

	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func writeInts(h *blake3.Hasher, vals []int) {
	var buf [8]byte
	for _, v := range vals {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
}

func writeFloats(h *blake3.Hasher, vals []float64) {
	var buf [8]byte
	for _, v := range vals {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
}

func writeComplex(h *blake3.Hasher, vals []complex128) {
	var buf [8]byte
	for _, v := range vals {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(real(v)))
		h.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(imag(v)))
		h.Write(buf[:])
	}
}
