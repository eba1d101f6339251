// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vrf implements the Curve25519-2HashDH verifiable random
// function spec §4.2 requires for GenesisPraos leader election: a
// Chaum-Pedersen discrete-log-equality proof over the Ed25519 group
// (the group underlying Curve25519) binding a uniform output to the
// prover's secret key and a public seed, such that anyone holding the
// public key can check the output was derived honestly without
// learning the secret.
package vrf

import (
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/wyrmchain/wyrmd/chainhash"
)

// PublicKeySize and ProofSize match the Ed25519 group element and the
// (Gamma, c, s) proof triple's encoding.
const (
	PublicKeySize = 32
	// ProofSize is the wire size of a Proof: a compressed point (32 B)
	// plus two scalars (32 B each).
	ProofSize = 96
)

// PublicKey is an Ed25519 group element used as a VRF verification key.
type PublicKey [PublicKeySize]byte

// SecretKey is the VRF signing key: a clamped Ed25519 scalar.
type SecretKey struct {
	scalar edwards25519.Scalar
	pub    PublicKey
}

// GenerateFromSeed derives a (SecretKey, PublicKey) pair from a 32-byte
// seed, clamped the same way Ed25519 clamps its scalar.
func GenerateFromSeed(seed []byte) (SecretKey, PublicKey, error) {
	if len(seed) != 32 {
		return SecretKey{}, PublicKey{}, fmt.Errorf("vrf: seed must be 32 bytes, got %d", len(seed))
	}
	h := sha512.Sum512(seed)
	var clamped [32]byte
	copy(clamped[:], h[:32])
	clamped[0] &= 0b1111_1000
	clamped[31] &= 0b0111_1111
	clamped[31] |= 0b0100_0000

	var s edwards25519.Scalar
	if _, err := s.SetBytesWithClamping(clamped[:]); err != nil {
		return SecretKey{}, PublicKey{}, fmt.Errorf("vrf: invalid scalar: %w", err)
	}
	pubPoint := new(edwards25519.Point).ScalarBaseMult(&s)
	var pub PublicKey
	copy(pub[:], pubPoint.Bytes())
	return SecretKey{scalar: s, pub: pub}, pub, nil
}

// Public returns the public key corresponding to sk.
func (sk SecretKey) Public() PublicKey { return sk.pub }

// Proof is a VRF proof: Gamma = x*H(seed), plus a Chaum-Pedersen
// challenge/response pair proving Gamma was built with the same secret
// scalar that produced the public key.
type Proof struct {
	Gamma [32]byte
	C     [32]byte
	S     [32]byte
}

// Bytes encodes the proof as Gamma || C || S.
func (p Proof) Bytes() []byte {
	out := make([]byte, 0, ProofSize)
	out = append(out, p.Gamma[:]...)
	out = append(out, p.C[:]...)
	out = append(out, p.S[:]...)
	return out
}

// hashToPoint maps seed to a curve point via try-and-increment: hash
// seed with an incrementing counter until the digest decodes as a
// valid compressed Edwards point. This terminates after a handful of
// iterations with overwhelming probability.
func hashToPoint(seed []byte) (*edwards25519.Point, error) {
	for ctr := 0; ctr < 256; ctr++ {
		h := sha512.New()
		h.Write(seed)
		h.Write([]byte{byte(ctr)})
		sum := h.Sum(nil)[:32]
		if pt, err := new(edwards25519.Point).SetBytes(sum); err == nil {
			return pt, nil
		}
	}
	return nil, fmt.Errorf("vrf: hashToPoint: no valid point found")
}

func hashToScalar(parts ...[]byte) (*edwards25519.Scalar, error) {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	return new(edwards25519.Scalar).SetUniformBytes(h.Sum(nil))
}

// Evaluate computes the VRF output and proof for seed under sk. The
// output is a uniform pseudorandom 32-byte value suitable for the
// leader lottery comparison in spec §4.6; the proof lets any holder of
// sk's public key confirm the output was derived honestly.
func (sk SecretKey) Evaluate(seed []byte) (chainhash.Hash, Proof, error) {
	H, err := hashToPoint(seed)
	if err != nil {
		return chainhash.Hash{}, Proof{}, err
	}
	Gamma := new(edwards25519.Point).ScalarMult(&sk.scalar, H)

	// Deterministic nonce: a VRF's output and proof must be a pure
	// function of (secret key, seed), so the Chaum-Pedersen nonce is
	// derived rather than drawn from an RNG.
	k, err := hashToScalar([]byte("wyrmd-vrf-nonce"), sk.scalar.Bytes(), seed)
	if err != nil {
		return chainhash.Hash{}, Proof{}, err
	}
	U := new(edwards25519.Point).ScalarBaseMult(k)
	V := new(edwards25519.Point).ScalarMult(k, H)

	G := edwards25519.NewGeneratorPoint()
	c, err := hashToScalar(G.Bytes(), H.Bytes(), sk.pub[:], Gamma.Bytes(), U.Bytes(), V.Bytes())
	if err != nil {
		return chainhash.Hash{}, Proof{}, err
	}
	s := new(edwards25519.Scalar).MultiplyAdd(c, &sk.scalar, k)

	var proof Proof
	copy(proof.Gamma[:], Gamma.Bytes())
	copy(proof.C[:], c.Bytes())
	copy(proof.S[:], s.Bytes())

	output := chainhash.HashB(Gamma.Bytes())
	return output, proof, nil
}

// Verify checks proof against pk and seed. On success it returns the
// same uniform output Evaluate would have produced and ok=true; on
// failure ok is false and the returned hash is meaningless.
func Verify(pk PublicKey, seed []byte, proof Proof) (output chainhash.Hash, ok bool) {
	H, err := hashToPoint(seed)
	if err != nil {
		return chainhash.Hash{}, false
	}
	Y, err := new(edwards25519.Point).SetBytes(pk[:])
	if err != nil {
		return chainhash.Hash{}, false
	}
	Gamma, err := new(edwards25519.Point).SetBytes(proof.Gamma[:])
	if err != nil {
		return chainhash.Hash{}, false
	}
	var c, s edwards25519.Scalar
	if _, err := c.SetCanonicalBytes(proof.C[:]); err != nil {
		return chainhash.Hash{}, false
	}
	if _, err := s.SetCanonicalBytes(proof.S[:]); err != nil {
		return chainhash.Hash{}, false
	}

	negC := new(edwards25519.Scalar).Negate(&c)
	// U' = s*G - c*Y = s*G + (-c)*Y
	sG := new(edwards25519.Point).ScalarBaseMult(&s)
	negCY := new(edwards25519.Point).ScalarMult(negC, Y)
	Uprime := new(edwards25519.Point).Add(sG, negCY)

	// V' = s*H - c*Gamma
	sH := new(edwards25519.Point).ScalarMult(&s, H)
	negCGamma := new(edwards25519.Point).ScalarMult(negC, Gamma)
	Vprime := new(edwards25519.Point).Add(sH, negCGamma)

	G := edwards25519.NewGeneratorPoint()
	cPrime, err := hashToScalar(G.Bytes(), H.Bytes(), pk[:], Gamma.Bytes(), Uprime.Bytes(), Vprime.Bytes())
	if err != nil {
		return chainhash.Hash{}, false
	}
	if cPrime.Equal(&c) != 1 {
		return chainhash.Hash{}, false
	}
	return chainhash.HashB(Gamma.Bytes()), true
}
