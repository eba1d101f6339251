// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package recovery replays persisted blocks on startup. Rather than
// replaying a freshly opened store from genesis every time, Replay
// resumes from the last tip the caller durably recorded and applies
// only what followed it, the way a resumable restore would pick up
// a backup from its last checkpoint rather than starting over.
package recovery

import (
	"fmt"

	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/ledger"
	"github.com/wyrmchain/wyrmd/storage"
)

// Result is what a Replay produced: the ledger with every replayed
// block applied, and the header of the last block actually applied
// (the new resume point).
type Result struct {
	Ledger *ledger.Ledger
	Tip    block.Header
}

// Replay brings l forward by applying every block in store strictly
// after fromTip, in chain order, up to the store's current Tip. If
// fromTip is the zero hash, replay starts from genesis (the block
// whose ChainLength is 0).
//
// Replay stops and returns an error at the first block that fails to
// apply; the caller's l is left unmodified either way, since each
// application step operates on ledger.ApplyBlock's own clone.
func Replay(store storage.Store, l *ledger.Ledger, fromTip chainhash.Hash) (Result, error) {
	tip, err := store.Tip()
	if err != nil {
		return Result{}, fmt.Errorf("recovery: read tip: %w", err)
	}
	tipID, err := tip.ID()
	if err != nil {
		return Result{}, fmt.Errorf("recovery: tip id: %w", err)
	}

	if fromTip == tipID {
		log.Debugf("replay: already at tip %s, nothing to do", tipID)
		return Result{Ledger: l, Tip: tip}, nil
	}

	var ancestorHash chainhash.Hash
	var zero chainhash.Hash
	if fromTip == zero {
		genesis, err := findGenesis(store, tipID)
		if err != nil {
			return Result{}, err
		}
		ancestorHash = genesis
	} else {
		ancestor, ok, err := store.FindClosestAncestor([]chainhash.Hash{fromTip}, tipID)
		if err != nil {
			return Result{}, fmt.Errorf("recovery: find ancestor: %w", err)
		}
		if !ok {
			return Result{}, fmt.Errorf("recovery: %s is not an ancestor of the current tip %s", fromTip, tipID)
		}
		ancestorHash = ancestor.Hash
	}

	ancestorBlock, ok, err := store.Get(ancestorHash)
	if err != nil {
		return Result{}, fmt.Errorf("recovery: read ancestor %s: %w", ancestorHash, err)
	}
	if !ok {
		return Result{}, fmt.Errorf("recovery: ancestor %s not found", ancestorHash)
	}

	cur := l
	lastHeader := ancestorBlock.Header
	err = store.SendBranchWith(ancestorHash, tipID, ^uint32(0), func(b block.Block) block.Block { return b }, func(b block.Block) error {
		next, err := cur.ApplyBlock(lastHeader, b)
		if err != nil {
			return fmt.Errorf("recovery: apply block at chain length %d: %w", b.Header.ChainLength, err)
		}
		cur = next
		lastHeader = b.Header
		log.Debugf("replay: applied block at chain length %d", b.Header.ChainLength)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Ledger: cur, Tip: lastHeader}, nil
}

// findGenesis walks backward from tip to the block with ChainLength
// 0, the chain's root.
func findGenesis(store storage.Store, tip chainhash.Hash) (chainhash.Hash, error) {
	cur := tip
	for {
		b, ok, err := store.Get(cur)
		if err != nil {
			return chainhash.Hash{}, fmt.Errorf("recovery: read %s: %w", cur, err)
		}
		if !ok {
			return chainhash.Hash{}, fmt.Errorf("recovery: %s not found while searching for genesis", cur)
		}
		if b.Header.ChainLength == 0 {
			return cur, nil
		}
		cur = b.Header.ParentHash
	}
}
