// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ed25519extended implements Ed25519-Extended signing: an
// EdDSA scheme keyed directly by an already-expanded (scalar, nonce)
// pair rather than by a 32-byte seed. This is the representation used
// by BIP32-style hierarchical derivation (original_source's
// ed25519-bip32/src/key.rs), since a derived child key is a new scalar
// with no seed that would hash back to it. The standard library's
// crypto/ed25519 only accepts the seed form, so this package signs
// directly against filippo.io/edwards25519's group arithmetic, the same
// primitives the standard library uses internally.
package ed25519extended

import (
	"crypto/sha512"
	"crypto/subtle"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	// ExpandedSize is the length of the (scalar || nonce) pair.
	ExpandedSize = 64
	// PublicKeySize matches standard Ed25519.
	PublicKeySize = 32
	// SignatureSize matches standard Ed25519.
	SignatureSize = 64
)

// PublicKey is a compressed Edwards25519 point.
type PublicKey [PublicKeySize]byte

// Verify reports whether sig is a valid Ed25519-Extended signature by
// pk over msg.
func (pk PublicKey) Verify(msg, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	A, err := new(edwards25519.Point).SetBytes(pk[:])
	if err != nil {
		return false
	}
	R, err := new(edwards25519.Point).SetBytes(sig[:32])
	if err != nil {
		return false
	}
	var s edwards25519.Scalar
	if _, err := s.SetCanonicalBytes(sig[32:64]); err != nil {
		return false
	}

	k := hashScalar(sig[:32], pk[:], msg)

	// Check [S]B == R + [k]A.
	sb := new(edwards25519.Point).ScalarBaseMult(&s)
	ka := new(edwards25519.Point).ScalarMult(k, A)
	rhs := new(edwards25519.Point).Add(R, ka)
	return subtle.ConstantTimeCompare(sb.Bytes(), rhs.Bytes()) == 1
}

// SecretKey holds an expanded (scalar, nonce) key pair and its public
// key: the 64-byte expanded part of original_source's ed25519-bip32
// XPrv. It carries no chain code, so it supports signing only; no
// package in this module derives child keys from it.
type SecretKey struct {
	scalar edwards25519.Scalar
	nonce  [32]byte
	pub    PublicKey
}

// NewFromExpanded builds a SecretKey from a 64-byte expanded key
// (clamped scalar || nonce), the representation produced by BIP32-style
// child key derivation.
func NewFromExpanded(expanded []byte) (SecretKey, error) {
	if len(expanded) != ExpandedSize {
		return SecretKey{}, fmt.Errorf("ed25519extended: expanded key must be %d bytes, got %d", ExpandedSize, len(expanded))
	}
	var scalarBytes [32]byte
	copy(scalarBytes[:], expanded[:32])
	// Clamp per RFC 8032 §5.1.5, mirroring the teacher's
	// normalize_bytes bit-twiddling in ed25519-bip32.
	scalarBytes[0] &= 0b1111_1000
	scalarBytes[31] &= 0b0111_1111
	scalarBytes[31] |= 0b0100_0000

	var s edwards25519.Scalar
	if _, err := s.SetBytesWithClamping(scalarBytes[:]); err != nil {
		return SecretKey{}, fmt.Errorf("ed25519extended: invalid scalar: %w", err)
	}

	var nonce [32]byte
	copy(nonce[:], expanded[32:64])

	pubPoint := new(edwards25519.Point).ScalarBaseMult(&s)
	var pub PublicKey
	copy(pub[:], pubPoint.Bytes())

	return SecretKey{scalar: s, nonce: nonce, pub: pub}, nil
}

// Public returns the public key corresponding to sk.
func (sk SecretKey) Public() PublicKey {
	return sk.pub
}

// Sign produces an Ed25519-Extended signature over msg.
func (sk SecretKey) Sign(msg []byte) []byte {
	r := hashScalar(sk.nonce[:], msg)
	R := new(edwards25519.Point).ScalarBaseMult(r)
	rBytes := R.Bytes()

	k := hashScalar(rBytes, sk.pub[:], msg)
	s := new(edwards25519.Scalar).MultiplyAdd(k, &sk.scalar, r)

	sig := make([]byte, SignatureSize)
	copy(sig[:32], rBytes)
	copy(sig[32:], s.Bytes())
	return sig
}

// Zeroize overwrites the secret scalar and nonce.
func (sk *SecretKey) Zeroize() {
	zero := make([]byte, 32)
	sk.scalar.SetCanonicalBytes(zero)
	for i := range sk.nonce {
		sk.nonce[i] = 0
	}
}

// hashScalar computes SHA-512(parts...) reduced mod the group order L.
func hashScalar(parts ...[]byte) *edwards25519.Scalar {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	sum := h.Sum(nil)
	s, err := new(edwards25519.Scalar).SetUniformBytes(sum)
	if err != nil {
		// SetUniformBytes only fails if sum isn't exactly 64 bytes,
		// which sha512.Sum always produces.
		panic(err)
	}
	return s
}
