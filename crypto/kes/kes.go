// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package kes implements the Sum-composition key-evolving signature
// scheme (SumEd25519) spec §4.2 requires for leader headers: a binary
// tree of Ed25519 keys whose root hash is a single long-lived public
// key, while the secret key ratchets leaf-by-leaf through the tree's
// in-order traversal and forward-erases every period it leaves behind.
// A signature for period t reveals the period-t leaf's Ed25519
// signature plus the authentication path needed to recompute the root
// hash; it does not reveal any other leaf, and once the secret has
// evolved past period t it can no longer produce one.
package kes

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/wyrmchain/wyrmd/chainhash"
)

// PublicKeySize is the length of a KES public key (a Blake2b-256 root
// hash).
const PublicKeySize = chainhash.HashSize

// PublicKey is the long-lived Merkle root committing to every leaf key
// in the tree. It does not change as the secret key evolves.
type PublicKey [PublicKeySize]byte

// ErrExhausted is returned by Evolve once the secret has advanced past
// its final period.
var ErrExhausted = errors.New("kes: key has been evolved past its final period")

// ErrWrongPeriod is returned by Verify when the signature's declared
// period does not match the period the caller expected.
var ErrWrongPeriod = errors.New("kes: signature period does not match expected period")

type pendingEntry struct {
	seed  []byte
	level int
	hash  chainhash.Hash
}

// SecretKey is a mutable, stateful KES secret. It is not safe for
// concurrent use; callers (the leadership package) serialize access to
// a single node's KES secret the same way they serialize block
// production.
type SecretKey struct {
	depth     int
	period    uint32
	maxPeriod uint32

	leafSK ed25519.PrivateKey
	leafPK [32]byte

	path    []chainhash.Hash
	isRight []bool
	pending []pendingEntry
}

func prg(seed []byte) (left, right []byte) {
	l := chainhash.HashB(append(append([]byte{}, seed...), 0x00))
	r := chainhash.HashB(append(append([]byte{}, seed...), 0x01))
	return l[:], r[:]
}

func deriveLeaf(seed []byte) (ed25519.PrivateKey, [32]byte) {
	priv := ed25519.NewKeyFromSeed(seed[:32])
	var pub [32]byte
	copy(pub[:], priv.Public().(ed25519.PublicKey))
	return priv, pub
}

func combine(left, right chainhash.Hash) chainhash.Hash {
	buf := make([]byte, 0, 2*chainhash.HashSize)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return chainhash.HashB(buf)
}

func leafCommitment(pub [32]byte) chainhash.Hash {
	return chainhash.HashB(pub[:])
}

// subtreeHash computes the root commitment of the subtree rooted at
// seed without retaining any of the intermediate secret material: the
// recursion only ever returns a Hash, so nothing below the call stack
// survives the call.
func subtreeHash(seed []byte, level int) chainhash.Hash {
	if level == 0 {
		_, pub := deriveLeaf(seed)
		return leafCommitment(pub)
	}
	l, r := prg(seed)
	return combine(subtreeHash(l, level-1), subtreeHash(r, level-1))
}

// descendLeftmost walks from seed (a subtree root at the given level)
// down to its leftmost leaf, pushing every right-sibling it passes onto
// a pending stack for later use and recording the authentication path
// to that leaf. Every sibling produced by a fresh descent is, by
// construction, a right sibling of the node descended from.
func descendLeftmost(seed []byte, level int) (leafSK ed25519.PrivateKey, leafPK [32]byte, path []chainhash.Hash, isRight []bool, pending []pendingEntry) {
	cur := seed
	var topDown []chainhash.Hash
	for l := level; l >= 1; l-- {
		left, right := prg(cur)
		rh := subtreeHash(right, l-1)
		pending = append(pending, pendingEntry{seed: right, level: l - 1, hash: rh})
		topDown = append(topDown, rh)
		cur = left
	}
	leafSK, leafPK = deriveLeaf(cur)

	path = make([]chainhash.Hash, len(topDown))
	isRight = make([]bool, len(topDown))
	for i, h := range topDown {
		path[len(path)-1-i] = h
		isRight[len(isRight)-1-i] = true
	}
	return leafSK, leafPK, path, isRight, pending
}

// Generate derives a depth-`depth` KES key pair from seed, starting at
// period 0. The tree has 1<<depth periods; depth is typically small
// (single digits) since key generation costs O(2^depth) to commit every
// leaf into the root hash.
func Generate(seed []byte, depth int) (*SecretKey, PublicKey, error) {
	if depth < 0 || depth > 30 {
		return nil, PublicKey{}, fmt.Errorf("kes: depth %d out of range", depth)
	}
	if len(seed) != 32 {
		return nil, PublicKey{}, fmt.Errorf("kes: seed must be 32 bytes, got %d", len(seed))
	}

	leafSK, leafPK, path, isRight, pending := descendLeftmost(seed, depth)
	sk := &SecretKey{
		depth:     depth,
		maxPeriod: uint32(1)<<uint(depth) - 1,
		leafSK:    leafSK,
		leafPK:    leafPK,
		path:      path,
		isRight:   isRight,
		pending:   pending,
	}
	return sk, sk.rootPublicKey(), nil
}

func (sk *SecretKey) rootPublicKey() PublicKey {
	h := leafCommitment(sk.leafPK)
	for i := 0; i < sk.depth; i++ {
		if sk.isRight[i] {
			h = combine(h, sk.path[i])
		} else {
			h = combine(sk.path[i], h)
		}
	}
	return PublicKey(h)
}

// Period returns the current signing period.
func (sk *SecretKey) Period() uint32 { return sk.period }

// MaxPeriod returns the final valid period for this key.
func (sk *SecretKey) MaxPeriod() uint32 { return sk.maxPeriod }

// Evolve advances the secret key to the next period, irrecoverably
// erasing the current period's signing capability. It returns
// ErrExhausted once the key is already at MaxPeriod.
func (sk *SecretKey) Evolve() error {
	if sk.period >= sk.maxPeriod {
		return ErrExhausted
	}

	n := len(sk.pending)
	entry := sk.pending[n-1]
	sk.pending = sk.pending[:n-1]

	oldLeafHash := leafCommitment(sk.leafPK)
	zeroizeKey(sk.leafSK)

	if entry.level == 0 {
		leafSK, leafPK := deriveLeaf(entry.seed)
		sk.leafSK, sk.leafPK = leafSK, leafPK
		sk.path[0] = oldLeafHash
		sk.isRight[0] = false
	} else {
		k := entry.level
		h := oldLeafHash
		for i := 0; i < k; i++ {
			if sk.isRight[i] {
				h = combine(h, sk.path[i])
			} else {
				h = combine(sk.path[i], h)
			}
		}

		leafSK, leafPK, subPath, subIsRight, subPending := descendLeftmost(entry.seed, k)
		sk.leafSK, sk.leafPK = leafSK, leafPK
		copy(sk.path[0:k], subPath)
		copy(sk.isRight[0:k], subIsRight)
		sk.path[k] = h
		sk.isRight[k] = false
		sk.pending = append(sk.pending, subPending...)
	}

	sk.period++
	return nil
}

// Signature is a KES signature for one period: the leaf's own Ed25519
// signature plus the authentication path tying the leaf back to the
// long-lived root public key.
type Signature struct {
	Period  uint32
	LeafSig [64]byte
	LeafPK  [32]byte
	Path    []chainhash.Hash
	IsRight []bool
}

// Sign produces a Signature for the current period. The caller should
// call Evolve afterward if it intends to move on to the next period;
// Sign itself does not advance the period.
func (sk *SecretKey) Sign(msg []byte) Signature {
	sig := Signature{
		Period:  sk.period,
		LeafPK:  sk.leafPK,
		Path:    append([]chainhash.Hash(nil), sk.path...),
		IsRight: append([]bool(nil), sk.isRight...),
	}
	copy(sig.LeafSig[:], ed25519.Sign(sk.leafSK, msg))
	return sig
}

// Verify reports whether sig is a valid KES signature by pk over msg at
// period expectedPeriod.
func Verify(pk PublicKey, msg []byte, sig Signature, expectedPeriod uint32) error {
	if sig.Period != expectedPeriod {
		return ErrWrongPeriod
	}
	if !ed25519.Verify(sig.LeafPK[:], msg, sig.LeafSig[:]) {
		return fmt.Errorf("kes: leaf signature does not verify")
	}
	h := leafCommitment(sig.LeafPK)
	for i := 0; i < len(sig.Path); i++ {
		if sig.IsRight[i] {
			h = combine(h, sig.Path[i])
		} else {
			h = combine(sig.Path[i], h)
		}
	}
	if PublicKey(h) != pk {
		return fmt.Errorf("kes: authentication path does not reach the declared root")
	}
	return nil
}

func zeroizeKey(k ed25519.PrivateKey) {
	for i := range k {
		k[i] = 0
	}
}

// Zeroize destroys all secret material still held by sk, including any
// not-yet-used subtree seeds on the pending stack. After Zeroize, sk
// must not be used.
func (sk *SecretKey) Zeroize() {
	zeroizeKey(sk.leafSK)
	for _, e := range sk.pending {
		for i := range e.seed {
			e.seed[i] = 0
		}
	}
	sk.pending = nil
}
