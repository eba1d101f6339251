// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package recovery

import (
	"path/filepath"
	"testing"

	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/ledger"
	"github.com/wyrmchain/wyrmd/storage/leveldbstore"
)

// chain builds n empty-content blocks, each parented on the previous,
// genesis (ChainLength 0) first.
func chain(t *testing.T, n int) []block.Block {
	t.Helper()
	blocks := make([]block.Block, n)
	var parent block.Header
	for i := 0; i < n; i++ {
		b := block.Block{}
		b.Finalize()
		b.Header.BlockDate = blockdate.BlockDate{Epoch: 0, Slot: uint32(i)}
		b.Header.ChainLength = uint32(i)
		if i > 0 {
			parentID, err := parent.ID()
			if err != nil {
				t.Fatal(err)
			}
			b.Header.ParentHash = parentID
		}
		blocks[i] = b
		parent = b.Header
	}
	return blocks
}

func openStore(t *testing.T) *leveldbstore.Store {
	t.Helper()
	s, err := leveldbstore.Open(filepath.Join(t.TempDir(), "blocks"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReplayFromGenesisAppliesEveryBlock(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	blocks := chain(t, 4)
	for _, b := range blocks {
		if err := s.Put(b); err != nil {
			t.Fatal(err)
		}
	}

	l := ledger.New(chainhash.Hash{}, ledger.Settings{})
	result, err := Replay(s, l, chainhash.Hash{})
	if err != nil {
		t.Fatal(err)
	}
	wantTipID, _ := blocks[3].Header.ID()
	gotTipID, _ := result.Tip.ID()
	if gotTipID != wantTipID {
		t.Fatalf("replay tip = %s, want %s", gotTipID, wantTipID)
	}
}

func TestReplayResumesFromCheckpoint(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	blocks := chain(t, 5)
	for _, b := range blocks {
		if err := s.Put(b); err != nil {
			t.Fatal(err)
		}
	}

	checkpoint, err := blocks[2].Header.ID()
	if err != nil {
		t.Fatal(err)
	}

	l := ledger.New(chainhash.Hash{}, ledger.Settings{})
	result, err := Replay(s, l, checkpoint)
	if err != nil {
		t.Fatal(err)
	}
	wantTipID, _ := blocks[4].Header.ID()
	gotTipID, _ := result.Tip.ID()
	if gotTipID != wantTipID {
		t.Fatalf("replay tip = %s, want %s", gotTipID, wantTipID)
	}
}

func TestReplayNoopWhenAlreadyAtTip(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	blocks := chain(t, 2)
	for _, b := range blocks {
		if err := s.Put(b); err != nil {
			t.Fatal(err)
		}
	}
	tipID, err := blocks[1].Header.ID()
	if err != nil {
		t.Fatal(err)
	}

	l := ledger.New(chainhash.Hash{}, ledger.Settings{})
	result, err := Replay(s, l, tipID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Ledger != l {
		t.Fatal("replay should return the caller's ledger unchanged when already at tip")
	}
}
