// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"crypto/ed25519"
	"testing"

	"github.com/wyrmchain/wyrmd/address"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/codec"
)

func genKeyPair(t *testing.T, seed byte) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	priv := ed25519.NewKeyFromSeed(s)
	return priv.Public().(ed25519.PublicKey), priv
}

func TestSignDataHashExcludesWitnesses(t *testing.T) {
	t.Parallel()

	pk, _ := genKeyPair(t, 1)
	addr, err := address.NewSingle(address.Test, pk)
	if err != nil {
		t.Fatalf("NewSingle: %v", err)
	}

	tx := Transaction{
		Inputs:  []Input{NewUTXOInput(chainhash.Hash{1, 2, 3}, 0, 100)},
		Outputs: []Output{{Address: addr, Value: 90}},
	}
	h1, err := tx.SignDataHash()
	if err != nil {
		t.Fatalf("SignDataHash: %v", err)
	}

	tx.Witnesses = []Witness{{Kind: InputUTXO, Signature: [64]byte{0xFF}}}
	h2, err := tx.SignDataHash()
	if err != nil {
		t.Fatalf("SignDataHash after adding witness: %v", err)
	}
	if h1 != h2 {
		t.Fatal("SignDataHash must not depend on witnesses")
	}

	tx.PayloadAuth = []byte{0x01, 0x02}
	h3, err := tx.SignDataHash()
	if err != nil {
		t.Fatalf("SignDataHash after adding payload-auth: %v", err)
	}
	if h1 != h3 {
		t.Fatal("SignDataHash must not depend on payload-auth")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	spendPK, _ := genKeyPair(t, 2)
	addr, err := address.NewSingle(address.Production, spendPK)
	if err != nil {
		t.Fatalf("NewSingle: %v", err)
	}
	acctPK, _ := genKeyPair(t, 3)

	tx := Transaction{
		Inputs: []Input{
			NewUTXOInput(chainhash.Hash{9}, 1, 1000),
			NewAccountInput(acctPK, 2, 500),
		},
		Outputs: []Output{
			{Address: addr, Value: 1400},
		},
		Payload: []byte("cert body"),
		Witnesses: []Witness{
			{Kind: InputUTXO, Signature: [64]byte{1}},
			{Kind: InputAccount, SpendingCounter: 7, Signature: [64]byte{2}},
		},
	}

	raw, err := tx.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	decoded, err := DecodeAll(raw)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(decoded.Inputs) != 2 || len(decoded.Outputs) != 1 || len(decoded.Witnesses) != 2 {
		t.Fatalf("decoded shape mismatch: %+v", decoded)
	}
	if decoded.Inputs[1].Lane != 2 {
		t.Fatalf("account input lane = %d, want 2", decoded.Inputs[1].Lane)
	}
	if decoded.Witnesses[1].SpendingCounter != 7 {
		t.Fatalf("witness spending counter = %d, want 7", decoded.Witnesses[1].SpendingCounter)
	}
	if string(decoded.Payload) != "cert body" {
		t.Fatalf("payload = %q, want %q", decoded.Payload, "cert body")
	}
}

func TestDecodeAcceptsWitnessInputMismatch(t *testing.T) {
	t.Parallel()

	w := codec.NewWriter(0)
	w.U8(1) // one input
	in := NewUTXOInput(chainhash.Hash{1}, 0, 10)
	if err := in.encode(w); err != nil {
		t.Fatalf("encode input: %v", err)
	}
	w.U8(0) // zero outputs
	w.SizedBytes(nil)
	w.SizedBytes(nil)
	w.U8(0) // zero witnesses -- mismatched against 1 input

	tx, err := DecodeAll(w.Bytes())
	if err != nil {
		t.Fatalf("Decode should accept a witness/input count mismatch, got %v", err)
	}
	if len(tx.Inputs) != 1 || len(tx.Witnesses) != 0 {
		t.Fatalf("decoded %d inputs and %d witnesses, want 1 and 0", len(tx.Inputs), len(tx.Witnesses))
	}
}

func TestVerifyUTXOWitness(t *testing.T) {
	t.Parallel()

	pk, sk := genKeyPair(t, 4)
	addr, err := address.NewSingle(address.Production, pk)
	if err != nil {
		t.Fatalf("NewSingle: %v", err)
	}
	tx := Transaction{
		Inputs:  []Input{NewUTXOInput(chainhash.Hash{5}, 0, 100)},
		Outputs: []Output{{Address: addr, Value: 90}},
	}
	signData, err := tx.SignDataHash()
	if err != nil {
		t.Fatalf("SignDataHash: %v", err)
	}
	var block0 chainhash.Hash
	block0[0] = 0xAB

	sig := ed25519.Sign(sk, UTXOSignMessage(block0, signData))
	var w Witness
	w.Kind = InputUTXO
	copy(w.Signature[:], sig)

	if !VerifyUTXOWitness(pk, block0, signData, w) {
		t.Fatal("VerifyUTXOWitness should accept a correctly produced signature")
	}

	otherPK, _ := genKeyPair(t, 5)
	if VerifyUTXOWitness(otherPK, block0, signData, w) {
		t.Fatal("VerifyUTXOWitness should reject a signature checked against the wrong key")
	}
}

func TestVerifyAccountWitness(t *testing.T) {
	t.Parallel()

	acctPK, acctSK := genKeyPair(t, 6)
	tx := Transaction{
		Inputs: []Input{NewAccountInput(acctPK, 0, 42)},
	}
	signData, err := tx.SignDataHash()
	if err != nil {
		t.Fatalf("SignDataHash: %v", err)
	}
	var block0 chainhash.Hash

	const counter = uint32(3)
	sig := ed25519.Sign(acctSK, AccountSignMessage(block0, counter, signData))
	w := Witness{Kind: InputAccount, SpendingCounter: counter}
	copy(w.Signature[:], sig)

	if !VerifyAccountWitness(acctPK, block0, signData, counter, w) {
		t.Fatal("VerifyAccountWitness should accept a matching counter and signature")
	}
	if VerifyAccountWitness(acctPK, block0, signData, counter+1, w) {
		t.Fatal("VerifyAccountWitness should reject a mismatched expected counter")
	}
}
