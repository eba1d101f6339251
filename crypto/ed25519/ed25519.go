// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ed25519 wraps the standard library's Ed25519 implementation
// behind the keygen-from-seed / sign / verify contract spec §4.2
// requires of every signing algorithm in this protocol. It plays the
// role the teacher's dcrec/secp256k1 and dcrec/edwards packages play
// for their (wrong-for-this-protocol) curve family.
package ed25519

import (
	"crypto/ed25519"
	"crypto/subtle"
	"fmt"
)

// PublicKeySize and SignatureSize match the standard Ed25519 sizes.
const (
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
	SeedSize      = ed25519.SeedSize
)

// PublicKey is trivially copyable, as spec §4.2 requires.
type PublicKey [PublicKeySize]byte

// Bytes returns the raw public key bytes.
func (pk PublicKey) Bytes() []byte {
	return pk[:]
}

// Verify reports whether sig is a valid signature by pk over msg.
func (pk PublicKey) Verify(msg, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(pk[:], msg, sig)
}

// Equal performs a constant-time comparison, matching the timing-safe
// equality spec's Design Notes require of secret material; public keys
// are not secret but comparing them the same way costs nothing and
// avoids accidental divergence if this type is ever reused for a
// sensitive comparison.
func (pk PublicKey) Equal(other PublicKey) bool {
	return subtle.ConstantTimeCompare(pk[:], other[:]) == 1
}

// SecretKey holds an Ed25519 expanded private key. Zeroize MUST be
// invoked once the key is no longer needed, per spec's
// Design Notes on zeroization.
type SecretKey struct {
	key ed25519.PrivateKey
}

// GenerateFromSeed deterministically derives a (SecretKey, PublicKey)
// pair from a 32-byte seed.
func GenerateFromSeed(seed []byte) (SecretKey, PublicKey, error) {
	if len(seed) != SeedSize {
		return SecretKey{}, PublicKey{}, fmt.Errorf("ed25519: seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	var pub PublicKey
	copy(pub[:], priv.Public().(ed25519.PublicKey))
	return SecretKey{key: append(ed25519.PrivateKey(nil), priv...)}, pub, nil
}

// Sign produces a signature over msg.
func (sk SecretKey) Sign(msg []byte) []byte {
	return ed25519.Sign(sk.key, msg)
}

// Public returns the public key corresponding to sk.
func (sk SecretKey) Public() PublicKey {
	var pub PublicKey
	copy(pub[:], sk.key.Public().(ed25519.PublicKey))
	return pub
}

// Zeroize overwrites the secret key's backing memory. Callers must not
// use sk after calling Zeroize.
func (sk *SecretKey) Zeroize() {
	for i := range sk.key {
		sk.key[i] = 0
	}
}
