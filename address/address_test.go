// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"crypto/ed25519"
	"testing"

	bech32pkg "github.com/wyrmchain/wyrmd/crypto/bech32"
)

func genKey(t *testing.T, seed byte) ed25519.PublicKey {
	t.Helper()
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	return ed25519.NewKeyFromSeed(s).Public().(ed25519.PublicKey)
}

func TestSingleRoundTrip(t *testing.T) {
	t.Parallel()

	pk := genKey(t, 1)
	addr, err := NewSingle(Production, pk)
	if err != nil {
		t.Fatalf("NewSingle: %v", err)
	}
	s := addr.String()
	decoded, err := Decode(s)
	if err != nil {
		t.Fatalf("Decode(%q): %v", s, err)
	}
	if decoded.Kind() != KindSingle {
		t.Fatalf("Kind = %v, want KindSingle", decoded.Kind())
	}
	spender, ok := decoded.(SpendingKeyer)
	if !ok {
		t.Fatal("decoded Single address should implement SpendingKeyer")
	}
	if !spender.SpendingKey().Equal(pk) {
		t.Fatal("decoded spending key does not match original")
	}
}

func TestGroupRoundTrip(t *testing.T) {
	t.Parallel()

	spendPK := genKey(t, 2)
	acctPK := genKey(t, 3)
	addr, err := NewGroup(Test, spendPK, acctPK)
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	decoded, err := Decode(addr.String())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Discrimination() != Test {
		t.Fatalf("Discrimination = %v, want Test", decoded.Discrimination())
	}
	ak, ok := decoded.(AccountKeyer)
	if !ok {
		t.Fatal("decoded Group address should implement AccountKeyer")
	}
	if !ak.AccountKey().Equal(acctPK) {
		t.Fatal("decoded account key does not match original")
	}
}

func TestAccountRoundTrip(t *testing.T) {
	t.Parallel()

	pk := genKey(t, 4)
	addr, err := NewAccount(Production, pk)
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	decoded, err := Decode(addr.String())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := decoded.(SpendingKeyer); ok {
		t.Fatal("Account address should not implement SpendingKeyer")
	}
}

func TestMultisigAndScriptRoundTrip(t *testing.T) {
	t.Parallel()

	var id [32]byte
	id[0] = 0xAB

	ms := NewMultisig(Test, id)
	decodedMS, err := Decode(ms.String())
	if err != nil {
		t.Fatalf("Decode multisig: %v", err)
	}
	if decodedMS.(MultisigIDer).MultisigID() != id {
		t.Fatal("decoded multisig id does not match original")
	}

	sc := NewScript(Production, id)
	decodedScript, err := Decode(sc.String())
	if err != nil {
		t.Fatalf("Decode script: %v", err)
	}
	if decodedScript.(ScriptIDer).ScriptID() != id {
		t.Fatal("decoded script id does not match original")
	}
}

func TestDecodeRejectsMismatchedHRP(t *testing.T) {
	t.Parallel()

	pk := genKey(t, 5)
	addr, err := NewSingle(Production, pk)
	if err != nil {
		t.Fatalf("NewSingle: %v", err)
	}
	raw := addr.Bytes()
	raw[0] |= discriminationBit // flip to Test in-payload without changing the HRP

	// Re-encode under the production HRP by hand to simulate a
	// corrupted or malicious address string.
	tampered, err := bech32pkg.EncodeFromBytes("addr", raw)
	if err != nil {
		t.Fatalf("EncodeFromBytes: %v", err)
	}
	if _, err := Decode(tampered); err == nil {
		t.Fatal("Decode should reject a payload discrimination that disagrees with the HRP")
	}
}
