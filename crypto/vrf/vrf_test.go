// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vrf

import "testing"

func TestEvaluateVerify(t *testing.T) {
	t.Parallel()

	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	sk, pk, err := GenerateFromSeed(seed)
	if err != nil {
		t.Fatalf("GenerateFromSeed: %v", err)
	}

	vrfSeed := []byte("epoch nonce || slot 42")
	output, proof, err := sk.Evaluate(vrfSeed)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	gotOutput, ok := Verify(pk, vrfSeed, proof)
	if !ok {
		t.Fatal("Verify rejected an honestly produced proof")
	}
	if gotOutput != output {
		t.Fatalf("Verify output = %x, want %x", gotOutput, output)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()

	seed := make([]byte, 32)
	seed[0] = 7
	sk, _, err := GenerateFromSeed(seed)
	if err != nil {
		t.Fatalf("GenerateFromSeed: %v", err)
	}

	vrfSeed := []byte("same input twice")
	out1, proof1, err := sk.Evaluate(vrfSeed)
	if err != nil {
		t.Fatalf("Evaluate (1): %v", err)
	}
	out2, proof2, err := sk.Evaluate(vrfSeed)
	if err != nil {
		t.Fatalf("Evaluate (2): %v", err)
	}
	if out1 != out2 {
		t.Fatal("Evaluate should be deterministic in its output for a fixed (key, seed)")
	}
	if proof1 != proof2 {
		t.Fatal("Evaluate should be deterministic in its proof for a fixed (key, seed)")
	}
}

func TestVerifyRejectsWrongSeed(t *testing.T) {
	t.Parallel()

	seed := make([]byte, 32)
	sk, pk, err := GenerateFromSeed(seed)
	if err != nil {
		t.Fatalf("GenerateFromSeed: %v", err)
	}
	_, proof, err := sk.Evaluate([]byte("seed one"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if _, ok := Verify(pk, []byte("seed two"), proof); ok {
		t.Fatal("Verify should reject a proof checked against the wrong seed")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	t.Parallel()

	seedA := make([]byte, 32)
	seedB := make([]byte, 32)
	seedB[0] = 1

	skA, _, err := GenerateFromSeed(seedA)
	if err != nil {
		t.Fatalf("GenerateFromSeed A: %v", err)
	}
	_, pkB, err := GenerateFromSeed(seedB)
	if err != nil {
		t.Fatalf("GenerateFromSeed B: %v", err)
	}

	vrfSeed := []byte("lottery seed")
	_, proof, err := skA.Evaluate(vrfSeed)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if _, ok := Verify(pkB, vrfSeed, proof); ok {
		t.Fatal("Verify should reject a proof against an unrelated public key")
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	t.Parallel()

	seed := make([]byte, 32)
	sk, pk, err := GenerateFromSeed(seed)
	if err != nil {
		t.Fatalf("GenerateFromSeed: %v", err)
	}
	vrfSeed := []byte("lottery seed")
	_, proof, err := sk.Evaluate(vrfSeed)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	proof.S[0] ^= 0xFF
	if _, ok := Verify(pk, vrfSeed, proof); ok {
		t.Fatal("Verify should reject a tampered proof")
	}
}
