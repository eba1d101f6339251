// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the fixed-length digest types used
// throughout the ledger: Blake2b-256 for fragment/content/block and
// vote plan ids, plus a SHA3-256 helper (HashSHA3). It mirrors
// the role of the teacher's chaincfg/chainhash package one-for-one,
// swapping the hash family to match this protocol's §4.2.
package chainhash

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashSize is the number of bytes in the digest types below.
const HashSize = 32

// Hash is a Blake2b-256 digest. The zero value is the all-zero hash,
// used as the parent hash of the genesis block.
type Hash [HashSize]byte

// String renders the hash as lowercase hex, matching spec §6's text
// encoding for hashes.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// HashB computes the Blake2b-256 digest of b.
func HashB(b []byte) Hash {
	return blake2b.Sum256(b)
}

// NewHashFromStr parses a lowercase-hex-encoded Blake2b-256 digest.
func NewHashFromStr(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("chainhash: invalid hex: %w", err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("chainhash: invalid hash length %d, want %d", len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

// Digest accumulates Blake2b-256 input incrementally: init is implicit
// in NewDigest, append is Write, finalize is Sum.
type Digest struct {
	h blakeHasher
}

type blakeHasher interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
	Reset()
}

// NewDigest returns a fresh incremental Blake2b-256 digest.
func NewDigest() *Digest {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on a bad key, and we pass none.
		panic(err)
	}
	return &Digest{h: h}
}

// Write appends b to the digest input. It never fails.
func (d *Digest) Write(b []byte) {
	_, _ = d.h.Write(b)
}

// Sum finalizes the digest and returns the resulting Hash. The Digest
// remains usable for further Writes followed by further Sums, matching
// the append*/finalize contract of spec §4.2 — finalize does not
// consume the accumulated state.
func (d *Digest) Sum() Hash {
	var out Hash
	copy(out[:], d.h.Sum(nil))
	return out
}

// HashSHA3 computes the SHA3-256 digest of b.
func HashSHA3(b []byte) Hash {
	var out Hash
	sum := sha3.Sum256(b)
	copy(out[:], sum[:])
	return out
}
