// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leveldbstore

import (
	"path/filepath"
	"testing"

	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/chainhash"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "blocks"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// chain builds n blocks, each parented on the previous, genesis first.
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

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	blocks := chain(t, 1)
	if err := s.Put(blocks[0]); err != nil {
		t.Fatal(err)
	}
	id, err := blocks[0].Header.ID()
	if err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected stored block to be found")
	}
	if got.Header.BlockDate != blocks[0].Header.BlockDate {
		t.Fatalf("round-tripped block date = %s, want %s", got.Header.BlockDate, blocks[0].Header.BlockDate)
	}
}

func TestTipTracksGreatestChainLength(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	blocks := chain(t, 3)
	for _, b := range blocks {
		if err := s.Put(b); err != nil {
			t.Fatal(err)
		}
	}
	tip, err := s.Tip()
	if err != nil {
		t.Fatal(err)
	}
	wantID, err := blocks[2].Header.ID()
	if err != nil {
		t.Fatal(err)
	}
	gotID, err := tip.ID()
	if err != nil {
		t.Fatal(err)
	}
	if gotID != wantID {
		t.Fatal("tip should be the block with the greatest chain length")
	}
}

func TestFindClosestAncestorAndSendBranch(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	blocks := chain(t, 5)
	for _, b := range blocks {
		if err := s.Put(b); err != nil {
			t.Fatal(err)
		}
	}
	ids := make([]chainhash.Hash, len(blocks))
	for i, b := range blocks {
		id, err := b.Header.ID()
		if err != nil {
			t.Fatal(err)
		}
		ids[i] = id
	}

	ancestor, ok, err := s.FindClosestAncestor([]chainhash.Hash{ids[1]}, ids[4])
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected an ancestor to be found")
	}
	if ancestor.Hash != ids[1] || ancestor.Distance != 3 {
		t.Fatalf("ancestor = %+v, want hash=%s distance=3", ancestor, ids[1])
	}

	var streamed []chainhash.Hash
	err = s.SendBranchWith(ids[1], ids[4], 10, func(b block.Block) block.Block { return b }, func(b block.Block) error {
		id, err := b.Header.ID()
		if err != nil {
			return err
		}
		streamed = append(streamed, id)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(streamed) != 3 {
		t.Fatalf("streamed %d blocks, want 3 (indices 2,3,4)", len(streamed))
	}
	for i, id := range streamed {
		if id != ids[i+2] {
			t.Fatalf("streamed[%d] = %s, want %s", i, id, ids[i+2])
		}
	}
}

func TestFindClosestAncestorReportsNotFoundWhenUnrelated(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	blocks := chain(t, 2)
	for _, b := range blocks {
		if err := s.Put(b); err != nil {
			t.Fatal(err)
		}
	}
	unrelated := chainhash.HashB([]byte("not in the chain"))
	id1, err := blocks[1].Header.ID()
	if err != nil {
		t.Fatal(err)
	}
	_, ok, err := s.FindClosestAncestor([]chainhash.Hash{unrelated}, id1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no ancestor to be found")
	}
}
