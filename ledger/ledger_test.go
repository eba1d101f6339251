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
	"github.com/wyrmchain/wyrmd/certificate"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/fragment"
	"github.com/wyrmchain/wyrmd/transaction"
	"github.com/wyrmchain/wyrmd/value"
)

func testLedger(t *testing.T) (*Ledger, chainhash.Hash) {
	t.Helper()
	block0Hash := chainhash.HashB([]byte("block0"))
	l := New(block0Hash, Settings{
		SlotsPerEpoch: 100,
		Fee:           value.LinearFee{Constant: 1, Coefficient: 1},
	})
	return l, block0Hash
}

// seedUTXO plants a single UTXO output paying amt to pub's single
// address, as if block0's Initial fragment had already run.
func seedUTXO(t *testing.T, l *Ledger, pub ed25519.PublicKey, amt value.Value) (chainhash.Hash, uint8) {
	t.Helper()
	addr, err := address.NewSingle(address.Production, pub)
	if err != nil {
		t.Fatal(err)
	}
	fragID := chainhash.HashB([]byte("seed"))
	l.UTXOs[UTXOKey{FragmentID: fragID, Index: 0}] = transaction.Output{Address: addr, Value: amt}
	return fragID, 0
}

func TestApplyTransactionMovesValueAndCollectsFee(t *testing.T) {
	t.Parallel()

	l, block0Hash := testLedger(t)
	srcPub, srcPriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	dstPub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	fragID, idx := seedUTXO(t, l, srcPub, 1000)

	dstAddr, err := address.NewSingle(address.Production, dstPub)
	if err != nil {
		t.Fatal(err)
	}
	tx := transaction.Transaction{
		Inputs:  []transaction.Input{transaction.NewUTXOInput(fragID, idx, 1000)},
		Outputs: []transaction.Output{{Address: dstAddr, Value: 997}},
	}
	signDataHash, err := tx.SignDataHash()
	if err != nil {
		t.Fatal(err)
	}
	sig := ed25519.Sign(srcPriv, transaction.UTXOSignMessage(block0Hash, signDataHash))
	var witSig [64]byte
	copy(witSig[:], sig)
	tx.Witnesses = []transaction.Witness{{Kind: transaction.InputUTXO, Signature: witSig}}

	body, err := tx.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	f, err := fragment.New(fragment.TagTransaction, body)
	if err != nil {
		t.Fatal(err)
	}

	if err := l.ApplyFragment(blockdate.BlockDate{}, f); err != nil {
		t.Fatalf("ApplyFragment failed: %v", err)
	}
	if _, stillThere := l.UTXOs[UTXOKey{FragmentID: fragID, Index: idx}]; stillThere {
		t.Fatal("spent UTXO should be removed")
	}
	if l.Treasury != 3 {
		t.Fatalf("treasury = %s, want 3", l.Treasury)
	}
}

func TestApplyTransactionRejectsUnbalanced(t *testing.T) {
	t.Parallel()

	l, block0Hash := testLedger(t)
	srcPub, srcPriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	fragID, idx := seedUTXO(t, l, srcPub, 1000)
	dstAddr, err := address.NewSingle(address.Production, srcPub)
	if err != nil {
		t.Fatal(err)
	}

	tx := transaction.Transaction{
		Inputs:  []transaction.Input{transaction.NewUTXOInput(fragID, idx, 1000)},
		Outputs: []transaction.Output{{Address: dstAddr, Value: 1000}}, // leaves no room for any fee
	}
	signDataHash, err := tx.SignDataHash()
	if err != nil {
		t.Fatal(err)
	}
	sig := ed25519.Sign(srcPriv, transaction.UTXOSignMessage(block0Hash, signDataHash))
	var witSig [64]byte
	copy(witSig[:], sig)
	tx.Witnesses = []transaction.Witness{{Kind: transaction.InputUTXO, Signature: witSig}}

	body, err := tx.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	f, err := fragment.New(fragment.TagTransaction, body)
	if err != nil {
		t.Fatal(err)
	}

	err = l.ApplyFragment(blockdate.BlockDate{}, f)
	if err == nil {
		t.Fatal("expected NotProperlyBalanced error")
	}
	if err.(RuleError).ErrorCode != ErrNotProperlyBalanced {
		t.Fatalf("unexpected error code: %v", err.(RuleError).ErrorCode)
	}
	if _, gone := l.UTXOs[UTXOKey{FragmentID: fragID, Index: idx}]; !gone {
		t.Fatal("a rejected fragment must leave the ledger unchanged")
	}
}

func TestApplyPoolRegistration(t *testing.T) {
	t.Parallel()

	// Zero fee: the registration transaction has no inputs to pay one.
	block0Hash := chainhash.HashB([]byte("block0"))
	l := New(block0Hash, Settings{SlotsPerEpoch: 100})
	ownerPub, ownerPriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	rewardPub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}

	reg := certificate.PoolRegistration{
		Owners:              []ed25519.PublicKey{ownerPub},
		ManagementThreshold: 1,
		Tax:                 certificate.Tax{RatioNum: 1, RatioDenom: 10},
		RewardAccount:       rewardPub,
	}
	regBody, err := certificate.EncodePoolRegistration(reg)
	if err != nil {
		t.Fatal(err)
	}
	tx := transaction.Transaction{Payload: regBody}
	signDataHash, err := tx.SignDataHash()
	if err != nil {
		t.Fatal(err)
	}
	sig := certificate.NewManagementSignature(1, []int{0}, func(int) [64]byte {
		var s [64]byte
		copy(s[:], ed25519.Sign(ownerPriv, signDataHash[:]))
		return s
	})
	tx.PayloadAuth = certificate.EncodeManagementSignature(1, sig)

	body, err := tx.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	f, err := fragment.New(fragment.TagPoolRegistration, body)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.ApplyFragment(blockdate.BlockDate{}, f); err != nil {
		t.Fatalf("pool registration failed: %v", err)
	}

	id, err := reg.ID()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.Pools[id]; !ok {
		t.Fatal("pool should be registered")
	}

	_ = block0Hash
}

func TestApplyTransactionRejectsMissingWitness(t *testing.T) {
	t.Parallel()

	l, _ := testLedger(t)
	srcPub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	fragID, idx := seedUTXO(t, l, srcPub, 1000)
	dstAddr, err := address.NewSingle(address.Production, srcPub)
	if err != nil {
		t.Fatal(err)
	}

	// One input, zero witnesses: a structurally valid transaction
	// (nothing about the bytes is malformed) the ledger must still
	// reject, but only once it tries to apply it.
	tx := transaction.Transaction{
		Inputs:  []transaction.Input{transaction.NewUTXOInput(fragID, idx, 1000)},
		Outputs: []transaction.Output{{Address: dstAddr, Value: 998}},
	}
	body, err := tx.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	f, err := fragment.New(fragment.TagTransaction, body)
	if err != nil {
		t.Fatal(err)
	}

	err = l.ApplyFragment(blockdate.BlockDate{}, f)
	if err == nil {
		t.Fatal("expected NotEnoughSignatures error")
	}
	ruleErr, ok := err.(RuleError)
	if !ok || ruleErr.ErrorCode != ErrNotEnoughSignatures {
		t.Fatalf("unexpected error: %v", err)
	}
	if ruleErr.Actual != 0 || ruleErr.Expected != 1 {
		t.Fatalf("Actual/Expected = %d/%d, want 0/1", ruleErr.Actual, ruleErr.Expected)
	}
	if _, gone := l.UTXOs[UTXOKey{FragmentID: fragID, Index: idx}]; !gone {
		t.Fatal("a rejected fragment must leave the ledger unchanged")
	}
}

func TestApplyMultisigDescriptorAndSpend(t *testing.T) {
	t.Parallel()

	block0Hash := chainhash.HashB([]byte("block0"))
	l := New(block0Hash, Settings{SlotsPerEpoch: 100}) // zero fee keeps the balance arithmetic trivial
	pub1, priv1, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	pub2, priv2, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	desc := certificate.MultisigDescriptor{Owners: []ed25519.PublicKey{pub1, pub2}, Threshold: 2}
	id, err := desc.ID()
	if err != nil {
		t.Fatal(err)
	}

	// Fund the multisig id directly, as if an Initial fragment or an
	// earlier transaction's output had credited it.
	l.multisigOrCreate(id).Balance = 1000

	descPayload, err := certificate.EncodeMultisigDescriptor(desc)
	if err != nil {
		t.Fatal(err)
	}
	regTx := transaction.Transaction{Payload: append([]byte{byte(certificate.KindMultisigDescriptor)}, descPayload...)}
	regBody, err := regTx.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	regFrag, err := fragment.New(fragment.TagCertificate, regBody)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.ApplyFragment(blockdate.BlockDate{}, regFrag); err != nil {
		t.Fatalf("multisig descriptor registration failed: %v", err)
	}
	if !l.Multisigs[id].DescriptorRegistered {
		t.Fatal("descriptor should be registered")
	}

	dstPub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	dstAddr, err := address.NewSingle(address.Production, dstPub)
	if err != nil {
		t.Fatal(err)
	}
	tx := transaction.Transaction{
		Inputs:  []transaction.Input{transaction.NewMultisigInput(id, 1000)},
		Outputs: []transaction.Output{{Address: dstAddr, Value: 1000}},
	}
	signDataHash, err := tx.SignDataHash()
	if err != nil {
		t.Fatal(err)
	}
	msg := transaction.UTXOSignMessage(block0Hash, signDataHash)
	var sig1, sig2 [64]byte
	copy(sig1[:], ed25519.Sign(priv1, msg))
	copy(sig2[:], ed25519.Sign(priv2, msg))
	tx.Witnesses = []transaction.Witness{{Kind: transaction.InputMultisig, MultisigSignatures: [][64]byte{sig1, sig2}}}

	body, err := tx.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	f, err := fragment.New(fragment.TagTransaction, body)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.ApplyFragment(blockdate.BlockDate{}, f); err != nil {
		t.Fatalf("multisig spend failed: %v", err)
	}
	if l.Multisigs[id].Balance != 0 {
		t.Fatalf("multisig balance = %s, want 0", l.Multisigs[id].Balance)
	}
}

func TestApplyVoteCastWeightsAndReplacesBallot(t *testing.T) {
	t.Parallel()

	block0Hash := chainhash.HashB([]byte("block0"))
	l := New(block0Hash, Settings{SlotsPerEpoch: 100}) // zero fee: vote casts need not balance a fee
	voterPub, voterPriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	l.accountOrCreate(voterPub).Balance = 5000

	plan := certificate.VotePlan{
		VoteStart:  blockdate.BlockDate{Epoch: 0, Slot: 0},
		TallyStart: blockdate.BlockDate{Epoch: 0, Slot: 100},
		TallyEnd:   blockdate.BlockDate{Epoch: 0, Slot: 200},
		Proposals:  []certificate.Proposal{{NumOptions: 2}},
	}
	planBody := certificate.EncodeVotePlan(plan)
	planTx := transaction.Transaction{Payload: planBody}
	planFragBody, err := planTx.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	planFrag, err := fragment.New(fragment.TagVotePlan, planFragBody)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.ApplyFragment(blockdate.BlockDate{}, planFrag); err != nil {
		t.Fatalf("vote plan registration failed: %v", err)
	}
	planID := plan.ID()

	sinkPub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	sinkAddr, err := address.NewSingle(address.Production, sinkPub)
	if err != nil {
		t.Fatal(err)
	}
	const castWeight value.Value = 2 // balances with the zero-fee ledger above

	castChoice := func(choice uint8, counter uint32) error {
		cast := certificate.VoteCast{VotePlanID: planID, ProposalIndex: 0, PublicChoice: choice}
		castBody := certificate.EncodeVoteCast(cast)
		tx := transaction.Transaction{
			Inputs:  []transaction.Input{transaction.NewAccountInput(voterPub, 0, castWeight)},
			Outputs: []transaction.Output{{Address: sinkAddr, Value: castWeight}},
			Payload: castBody,
		}
		signDataHash, err := tx.SignDataHash()
		if err != nil {
			return err
		}
		sig := ed25519.Sign(voterPriv, transaction.AccountSignMessage(block0Hash, counter, signDataHash))
		var witSig [64]byte
		copy(witSig[:], sig)
		tx.Witnesses = []transaction.Witness{{Kind: transaction.InputAccount, Signature: witSig}}
		body, err := tx.Bytes()
		if err != nil {
			return err
		}
		f, err := fragment.New(fragment.TagVoteCast, body)
		if err != nil {
			return err
		}
		return l.ApplyFragment(blockdate.BlockDate{}, f)
	}

	if err := castChoice(0, 0); err != nil {
		t.Fatalf("first vote cast failed: %v", err)
	}
	state := l.VotePlans[planID]
	if w := state.Tally[0][0]; w != castWeight {
		t.Fatalf("option 0 tally = %s, want %s (weighted by input value)", w, castWeight)
	}

	// The same voter recasting on the same proposal replaces their
	// prior ballot rather than accumulating alongside it.
	if err := castChoice(1, 1); err != nil {
		t.Fatalf("second vote cast failed: %v", err)
	}
	if w := state.Tally[0][0]; w != 0 {
		t.Fatalf("option 0 tally after recast = %s, want 0", w)
	}
	if w := state.Tally[0][1]; w != castWeight {
		t.Fatalf("option 1 tally after recast = %s, want %s", w, castWeight)
	}
}
