// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/wyrmchain/wyrmd/blockdate"
)

func TestStakeDelegationRoundTrip(t *testing.T) {
	t.Parallel()

	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	var poolID PoolID
	poolID[0] = 7
	c := StakeDelegation{
		AccountKey: pub,
		Delegation: Delegation{Kind: DelegationFull, PoolID: poolID},
	}
	got, err := DecodeStakeDelegation(EncodeStakeDelegation(c))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.AccountKey, c.AccountKey) || got.Delegation.PoolID != c.Delegation.PoolID {
		t.Fatal("round trip mismatch")
	}
}

func TestPoolRegistrationRoundTrip(t *testing.T) {
	t.Parallel()

	owner, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	reward, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	p := PoolRegistration{
		Owners:              []ed25519.PublicKey{owner},
		ManagementThreshold: 1,
		Tax:                 Tax{RatioNum: 1, RatioDenom: 10},
		RewardAccount:       reward,
	}
	body, err := EncodePoolRegistration(p)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodePoolRegistration(body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.RewardAccount, p.RewardAccount) || got.ManagementThreshold != p.ManagementThreshold {
		t.Fatal("round trip mismatch")
	}
}

func TestVotePlanRoundTrip(t *testing.T) {
	t.Parallel()

	p := testPlan(PayloadPrivate)
	p.CommitteePublicKey = []byte{9, 9, 9}
	body := EncodeVotePlan(p)
	got, err := DecodeVotePlan(body)
	if err != nil {
		t.Fatal(err)
	}
	if got.VoteStart != (blockdate.BlockDate{Epoch: 1, Slot: 0}) {
		t.Fatal("vote start mismatch")
	}
	if len(got.Proposals) != 1 || got.Proposals[0].NumOptions != 2 {
		t.Fatal("proposals mismatch")
	}
	if !bytes.Equal(got.CommitteePublicKey, p.CommitteePublicKey) {
		t.Fatal("committee key mismatch")
	}
}

func TestVoteCastRoundTripPublicAndPrivate(t *testing.T) {
	t.Parallel()

	pub := VoteCast{ProposalIndex: 2, PublicChoice: 1}
	gotPub, err := DecodeVoteCast(EncodeVoteCast(pub))
	if err != nil {
		t.Fatal(err)
	}
	if gotPub.IsPrivate || gotPub.PublicChoice != 1 {
		t.Fatal("public round trip mismatch")
	}

	priv := VoteCast{ProposalIndex: 0, IsPrivate: true, PrivateChoice: []byte{1, 2, 3}}
	gotPriv, err := DecodeVoteCast(EncodeVoteCast(priv))
	if err != nil {
		t.Fatal(err)
	}
	if !gotPriv.IsPrivate || !bytes.Equal(gotPriv.PrivateChoice, priv.PrivateChoice) {
		t.Fatal("private round trip mismatch")
	}
}

func TestManagementSignatureRoundTrip(t *testing.T) {
	t.Parallel()

	sig := NewManagementSignature(3, []int{0, 2}, func(i int) [64]byte {
		var s [64]byte
		s[0] = byte(i)
		return s
	})
	body := EncodeManagementSignature(3, sig)
	got, err := DecodeManagementSignature(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Signatures) != 2 || !got.SignerBitmap.Get(0) || !got.SignerBitmap.Get(2) || got.SignerBitmap.Get(1) {
		t.Fatal("signature bitmap round trip mismatch")
	}
}
