// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"crypto/ed25519"
	"testing"

	"github.com/wyrmchain/wyrmd/address"
	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/codec"
	"github.com/wyrmchain/wyrmd/fragment"
	"github.com/wyrmchain/wyrmd/value"
)

// genesisInitialFragment builds a TagInitial fragment funding pub with
// amt via a single UTXO entry.
func genesisInitialFragment(t *testing.T, pub ed25519.PublicKey, amt value.Value) fragment.Fragment {
	t.Helper()
	addr, err := address.NewSingle(address.Production, pub)
	if err != nil {
		t.Fatal(err)
	}
	addrBytes := addr.Bytes()

	w := codec.NewWriter(64)
	w.U32(1) // one entry
	w.U8(uint8(initialEntryFund))
	w.U16(uint16(len(addrBytes)))
	w.RawBytes(addrBytes)
	w.U64(uint64(amt))

	f, err := fragment.New(fragment.TagInitial, w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestApplyInitialFragmentMintsUTXO(t *testing.T) {
	t.Parallel()

	l, _ := testLedger(t)
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	f := genesisInitialFragment(t, pub, 50_000)

	if err := l.ApplyFragment(blockdate.BlockDate{}, f); err != nil {
		t.Fatalf("ApplyFragment(Initial) failed: %v", err)
	}
	if len(l.UTXOs) != 1 {
		t.Fatalf("len(UTXOs) = %d, want 1", len(l.UTXOs))
	}
	for _, out := range l.UTXOs {
		if out.Value != 50_000 {
			t.Fatalf("minted UTXO value = %s, want 50000", out.Value)
		}
	}
}

func TestApplyBlockCommitsContentsOnFreshLedger(t *testing.T) {
	t.Parallel()

	l, _ := testLedger(t)
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	initial := genesisInitialFragment(t, pub, 1234)

	b0 := block.Block{Contents: []fragment.Fragment{initial}}
	b0.Finalize()
	b0.Header.Version = block.VersionNone
	b0.Header.BlockDate = blockdate.BlockDate{Epoch: 0, Slot: 1}
	b0.Header.ChainLength = 1

	parent := block.Header{Version: block.VersionNone, BlockDate: blockdate.BlockDate{Epoch: 0, Slot: 0}, ChainLength: 0}
	parentID, err := parent.ID()
	if err != nil {
		t.Fatal(err)
	}
	b0.Header.ParentHash = parentID

	next, err := l.ApplyBlock(parent, b0)
	if err != nil {
		t.Fatalf("ApplyBlock failed: %v", err)
	}
	if len(next.UTXOs) != 1 {
		t.Fatalf("len(next.UTXOs) = %d, want 1", len(next.UTXOs))
	}
	if len(l.UTXOs) != 0 {
		t.Fatal("ApplyBlock must not mutate the receiver")
	}
}

func TestApplyBlockRejectsBadParentLinkage(t *testing.T) {
	t.Parallel()

	l, _ := testLedger(t)
	b := block.Block{}
	b.Finalize()
	b.Header.BlockDate = blockdate.BlockDate{Epoch: 0, Slot: 1}
	b.Header.ChainLength = 1
	b.Header.ParentHash = chainhash.HashB([]byte("not the real parent"))

	parent := block.Header{BlockDate: blockdate.BlockDate{Epoch: 0, Slot: 0}, ChainLength: 0}

	if _, err := l.ApplyBlock(parent, b); err == nil {
		t.Fatal("expected parent-linkage validation failure")
	}
	if len(l.UTXOs) != 0 {
		t.Fatal("a rejected block must leave the ledger unchanged")
	}
}
