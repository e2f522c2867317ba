// Package qrand provides an explicit, seedable randomness source for every
// routine in this module that needs one (chiefly the random single-qubit
// gate constructor in gatelib). There is no package-level RNG: a Source is
// constructed once with a seed or from system entropy and passed as a
// *Source into whatever needs it, so the same circuit with the same seed produces
// the same gates run after run.
package qrand

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/group/edwards25519"
	"go.dedis.ch/kyber/v3/xof/blake2xb"
)

// Source is a seeded, deterministic stream of randomness built on DEDIS
// Kyber's BLAKE2XB extendable-output stream. It is not safe for concurrent
// use; callers that need independent streams should construct one Source
// per goroutine.
type Source struct {
	suite  kyber.Group
	stream kyber.XOF
	seed   []byte
}

// FromSeed builds a deterministic Source from an explicit seed. The same
// seed always yields the same sequence of draws.
func FromSeed(seed []byte) *Source {
	cp := append([]byte(nil), seed...)
	return &Source{
		suite:  edwards25519.NewBlakeSHA256Ed25519(),
		stream: blake2xb.New(cp),
		seed:   cp,
	}
}

// FromEntropy builds a Source seeded from crypto/rand. Its output is not
// reproducible across calls or processes; callers that need reproducible
// circuits must use FromSeed instead.
func FromEntropy() (*Source, error) {
	seed := make([]byte, 64)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, err
	}
	return FromSeed(seed), nil
}

// Bytes draws n bytes from the stream.
func (s *Source) Bytes(n int) []byte {
	out := make([]byte, n)
	_, _ = s.stream.Read(out) // kyber.XOF.Read never returns an error
	return out
}

// Float64 draws a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	var buf [8]byte
	copy(buf[:], s.Bytes(8))
	// Top 53 bits feed a standard double in [0,1), matching the precision
	// of float64's mantissa.
	bits := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(bits) / float64(1<<53)
}

// Scalar draws a random group scalar, exposed for parity with the DEDIS
// Kyber primitives this package wraps; unused by the gate library today but
// available to any future collaborator needing group-element randomness.
func (s *Source) Scalar() kyber.Scalar {
	return s.suite.Scalar().Pick(s.stream)
}

// Angle draws a uniform angle in [0, 2*pi).
func (s *Source) Angle() float64 {
	return s.Float64() * 2 * math.Pi
}
