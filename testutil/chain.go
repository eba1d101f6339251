// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package testutil builds small, valid chains of blocks for tests
// across ledger, leadership, recovery, and storage, the way the
// teacher's blockchain/chaingen package builds test chains for
// exccd — generalized here from a proof-of-work chain generator to a
// single-BFT-leader chain generator, since this protocol's BFT
// discipline is the cheapest way to produce a header a test can verify
// without running the GenesisPraos lottery.
package testutil

import (
	stded25519 "crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/crypto/ed25519"
	"github.com/wyrmchain/wyrmd/fragment"
)

// ChainBuilder produces a sequence of BFT-signed blocks, each linked to
// the one before it, all signed by a single fixed leader — enough to
// exercise block.Validate, ledger.ApplyBlock, and storage.Store without
// a full BFT leader-list or GenesisPraos lottery. Key generation and
// signing go through crypto/ed25519 rather than the standard library
// directly, the same seed-keyed contract every signing algorithm in
// this protocol follows.
type ChainBuilder struct {
	pub  ed25519.PublicKey
	priv ed25519.SecretKey

	slotsPerEpoch uint32
	next          block.Header // previous block's header; zero before Genesis is called
	haveParent    bool
}

// NewChainBuilder returns a builder whose every block is signed by a
// freshly generated BFT leader key, with the given number of slots per
// epoch (used only to advance BlockDate realistically).
func NewChainBuilder(slotsPerEpoch uint32) (*ChainBuilder, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("testutil: generate leader seed: %w", err)
	}
	priv, pub, err := ed25519.GenerateFromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("testutil: generate leader key: %w", err)
	}
	return &ChainBuilder{pub: pub, priv: priv, slotsPerEpoch: slotsPerEpoch}, nil
}

// Leader returns the builder's fixed BFT leader public key, for
// constructing a leadership.BFTSettings that accepts the chain it
// produces.
func (c *ChainBuilder) Leader() stded25519.PublicKey { return stded25519.PublicKey(c.pub.Bytes()) }

// Genesis returns a chain-length-0 block with no leadership suffix,
// carrying contents, and resets the builder to extend the chain from
// it. It must be called before Next.
func (c *ChainBuilder) Genesis(contents []fragment.Fragment) block.Block {
	b := block.Block{Contents: contents}
	b.Header.BlockDate = blockdate.BlockDate{Epoch: 0, Slot: 0}
	b.Header.ChainLength = 0
	b.Finalize()
	c.next = b.Header
	c.haveParent = true
	return b
}

// Next signs and appends one more block after the last one this
// builder produced (Genesis or a prior Next), carrying contents.
func (c *ChainBuilder) Next(contents []fragment.Fragment) (block.Block, error) {
	if !c.haveParent {
		return block.Block{}, fmt.Errorf("testutil: Next called before Genesis")
	}
	parentID, err := c.next.ID()
	if err != nil {
		return block.Block{}, err
	}

	b := block.Block{Contents: contents}
	b.Header.Version = block.VersionBFT
	b.Header.ChainLength = c.next.ChainLength + 1
	b.Header.ParentHash = parentID
	b.Header.BlockDate = advance(c.next.BlockDate, c.slotsPerEpoch)
	b.Header.BFTLeaderID = stded25519.PublicKey(c.pub.Bytes())
	b.Finalize()
	b.Header.BFTSignature = [64]byte(c.priv.Sign(b.Header.SignedBytes()))

	c.next = b.Header
	return b, nil
}

func advance(date blockdate.BlockDate, slotsPerEpoch uint32) blockdate.BlockDate {
	if slotsPerEpoch == 0 || date.Slot+1 < slotsPerEpoch {
		return blockdate.BlockDate{Epoch: date.Epoch, Slot: date.Slot + 1}
	}
	return blockdate.BlockDate{Epoch: date.Epoch + 1, Slot: 0}
}
