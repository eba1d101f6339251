// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"crypto/ed25519"
	"testing"

	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/fragment"
)

func testBlock(t *testing.T, version Version) Block {
	t.Helper()
	f, err := fragment.New(fragment.TagOldUtxoDeclaration, []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	b := Block{
		Header: Header{
			Version:     version,
			BlockDate:   blockdate.BlockDate{Epoch: 1, Slot: 2},
			ChainLength: 5,
		},
		Contents: []fragment.Fragment{f},
	}
	b.Finalize()
	return b
}

func TestBlockEncodeDecodeRoundTripNone(t *testing.T) {
	t.Parallel()

	b := testBlock(t, VersionNone)
	body, err := b.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if got.Header.ContentSize != b.Header.ContentSize || got.Header.ContentHash != b.Header.ContentHash {
		t.Fatal("header round trip mismatch")
	}
	if len(got.Contents) != 1 || got.Contents[0].Tag != fragment.TagOldUtxoDeclaration {
		t.Fatal("contents round trip mismatch")
	}
}

func TestBlockEncodeDecodeRoundTripBFT(t *testing.T) {
	t.Parallel()

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	b := testBlock(t, VersionBFT)
	b.Header.BFTLeaderID = pub
	sig := ed25519.Sign(priv, b.Header.SignedBytes())
	copy(b.Header.BFTSignature[:], sig)

	body, err := b.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if err := got.Header.VerifyBFT(pub); err != nil {
		t.Fatalf("VerifyBFT failed after round trip: %v", err)
	}
}

func TestBlockValidateChecksChainLinkage(t *testing.T) {
	t.Parallel()

	parent := Header{Version: VersionNone, BlockDate: blockdate.BlockDate{Epoch: 0, Slot: 0}, ChainLength: 0}
	child := testBlock(t, VersionNone)
	parentID, err := parent.ID()
	if err != nil {
		t.Fatal(err)
	}
	child.Header.ParentHash = parentID
	child.Header.ChainLength = 1
	child.Header.BlockDate = blockdate.BlockDate{Epoch: 0, Slot: 1}

	if err := child.Validate(parent); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	child.Header.ChainLength = 2
	if err := child.Validate(parent); err == nil {
		t.Fatal("expected chain_length mismatch to be rejected")
	}
}
