// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage defines the opaque block-store contract spec §4.9
// describes (consumed by the fragment/client process and recovery
// replay, not implemented as a single concrete type here): get, put,
// tip, closest-ancestor search, and branch streaming. It plays the
// role the teacher's database package plays for exccd — an abstract
// KV contract with a concrete backend living in a sub-package
// (leveldbstore), rather than one monolithic store type.
package storage

import (
	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/chainhash"
)

// Ancestor is FindClosestAncestor's result: the hash found among the
// caller's candidate set, and its distance (number of parent hops) back
// from to.
type Ancestor struct {
	Hash     chainhash.Hash
	Distance uint32
}

// Store is the block-store contract every storage backend satisfies.
// Implementations need not be safe for concurrent Put/Get from multiple
// writers; the composition root serializes block application.
type Store interface {
	// Get returns the block identified by hash, or ok=false if unknown.
	Get(hash chainhash.Hash) (b block.Block, ok bool, err error)

	// Put persists b, keyed by its header id. Put does not verify b
	// against its parent; that is ledger.ApplyBlock's job upstream.
	Put(b block.Block) error

	// Tip returns the header of the chain's current head: the stored
	// block with the greatest ChainLength.
	Tip() (block.Header, error)

	// FindClosestAncestor walks backward from to along ParentHash links
	// until it finds a hash present in from, returning that hash and
	// how many hops back it sat. ok is false if no block in from is an
	// ancestor of to (or to itself is unknown).
	FindClosestAncestor(from []chainhash.Hash, to chainhash.Hash) (ancestor Ancestor, ok bool, err error)

	// SendBranchWith streams every block strictly after from up to and
	// including to (reconstructed by walking backward from to and
	// replaying forward), passing each through mapFn before sink. It
	// stops with an error if the path from `from` to `to` exceeds
	// depthLimit blocks, per spec §4.9's streaming contract — the
	// caller first resolves `from` via FindClosestAncestor.
	SendBranchWith(from, to chainhash.Hash, depthLimit uint32, mapFn func(block.Block) block.Block, sink func(block.Block) error) error
}
