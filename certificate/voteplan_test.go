// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"testing"

	"github.com/wyrmchain/wyrmd/blockdate"
)

func testPlan(payload PayloadType) VotePlan {
	return VotePlan{
		VoteStart:  blockdate.BlockDate{Epoch: 1, Slot: 0},
		TallyStart: blockdate.BlockDate{Epoch: 2, Slot: 0},
		TallyEnd:   blockdate.BlockDate{Epoch: 3, Slot: 0},
		Proposals: []Proposal{
			{ExternalID: [32]byte{1}, NumOptions: 2, Action: 0},
		},
		PayloadType: payload,
	}
}

func TestVotePlanValidateShapeRejectsBadWindow(t *testing.T) {
	t.Parallel()

	p := testPlan(PayloadPublic)
	p.TallyStart = p.VoteStart
	if err := p.ValidateShape(); err == nil {
		t.Fatal("expected error for non-increasing vote window")
	}
}

func TestVotePlanValidateShapeRequiresCommitteeKeyForPrivate(t *testing.T) {
	t.Parallel()

	p := testPlan(PayloadPrivate)
	if err := p.ValidateShape(); err == nil {
		t.Fatal("expected error for missing committee key")
	}
	p.CommitteePublicKey = []byte{1, 2, 3}
	if err := p.ValidateShape(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVotePlanIDIsDeterministic(t *testing.T) {
	t.Parallel()

	p := testPlan(PayloadPublic)
	id1 := p.ID()
	id2 := p.ID()
	if id1 != id2 {
		t.Fatal("ID should be deterministic")
	}

	other := testPlan(PayloadPublic)
	other.Proposals[0].NumOptions = 3
	if p.ID() == other.ID() {
		t.Fatal("differing proposals should produce differing ids")
	}
}

func TestVoteCastValidateShape(t *testing.T) {
	t.Parallel()

	proposal := Proposal{NumOptions: 2}
	cast := VoteCast{PublicChoice: 1}
	if err := cast.ValidateShape(proposal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cast.PublicChoice = 2
	err := cast.ValidateShape(proposal)
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
	if err.(Error).ErrorCode != ErrVoteOptionOutOfRange {
		t.Fatalf("unexpected error code: %v", err.(Error).ErrorCode)
	}

	private := VoteCast{IsPrivate: true, PrivateChoice: []byte{0xFF}}
	if err := private.ValidateShape(proposal); err != nil {
		t.Fatalf("private casts skip option-range checks: %v", err)
	}
}
