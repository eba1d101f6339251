// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"crypto/ed25519"
	"testing"

	"github.com/wyrmchain/wyrmd/address"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/fragment"
	"github.com/wyrmchain/wyrmd/transaction"
	"github.com/wyrmchain/wyrmd/value"
)

func balancedTxBody(t *testing.T, inVal, outVal value.Value) []byte {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	addr, err := address.NewSingle(address.Production, pub)
	if err != nil {
		t.Fatal(err)
	}
	tx := transaction.Transaction{
		Inputs:  []transaction.Input{transaction.NewUTXOInput(chainhash.Hash{}, 0, inVal)},
		Outputs: []transaction.Output{{Address: addr, Value: outVal}},
		Witnesses: []transaction.Witness{
			{Kind: transaction.InputUTXO},
		},
	}
	body, err := tx.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestPushRejectsForbiddenTag(t *testing.T) {
	t.Parallel()

	p := New(DefaultCapacity, value.LinearFee{Constant: 1, Coefficient: 1}, nil)
	f, err := fragment.New(fragment.TagInitial, []byte{1})
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = p.Push(f.Bytes())
	if err == nil || err.(AdmissionError).Code != ErrNotAuthorizedFragment {
		t.Fatalf("expected ErrNotAuthorizedFragment, got %v", err)
	}
}

func TestPushRejectsUnbalancedTransaction(t *testing.T) {
	t.Parallel()

	p := New(DefaultCapacity, value.LinearFee{Constant: 1, Coefficient: 1}, nil)
	body := balancedTxBody(t, 100, 100) // leaves no room for any fee
	f, err := fragment.New(fragment.TagTransaction, body)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = p.Push(f.Bytes())
	if err == nil || err.(AdmissionError).Code != ErrNotProperlyBalanced {
		t.Fatalf("expected ErrNotProperlyBalanced, got %v", err)
	}
}

func TestPushAdmitsBalancedTransactionAndDedups(t *testing.T) {
	t.Parallel()

	p := New(DefaultCapacity, value.LinearFee{Constant: 1, Coefficient: 1}, nil)
	body := balancedTxBody(t, 103, 100) // fee = 1 + 1*(1+1) = 3
	f, err := fragment.New(fragment.TagTransaction, body)
	if err != nil {
		t.Fatal(err)
	}
	raw := f.Bytes()
	if _, _, err := p.Push(raw); err != nil {
		t.Fatalf("Push rejected a balanced transaction: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
	if _, _, err := p.Push(raw); err != nil {
		t.Fatalf("re-pushing the same fragment should be a no-op, got %v", err)
	}
	if p.Len() != 1 {
		t.Fatal("dedup by id failed")
	}
}

func TestResizeEvictsOldestFirst(t *testing.T) {
	t.Parallel()

	p := New(DefaultCapacity, value.LinearFee{}, nil) // zero fee: inputs must exactly equal outputs
	var ids []chainhash.Hash
	for i := 0; i < 3; i++ {
		f, err := fragment.New(fragment.TagTransaction, balancedTxBody(t, value.Value(100+i), value.Value(100+i)))
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := p.Push(f.Bytes()); err != nil {
			t.Fatalf("Push %d failed: %v", i, err)
		}
		ids = append(ids, f.ID())
	}
	evicted := p.Resize(1)
	if len(evicted) != 2 {
		t.Fatalf("Resize evicted %d fragments, want 2", len(evicted))
	}
	if evicted[0] != ids[0] || evicted[1] != ids[1] {
		t.Fatal("Resize should evict the two oldest fragments, oldest first")
	}
	if p.Len() != 1 {
		t.Fatalf("Len() after resize = %d, want 1", p.Len())
	}
}

func TestRemoveOldestOnEmptyPoolReportsNotOK(t *testing.T) {
	t.Parallel()

	p := New(DefaultCapacity, value.LinearFee{}, nil)
	if _, ok := p.RemoveOldest(); ok {
		t.Fatal("RemoveOldest on an empty pool should report ok=false")
	}
}
