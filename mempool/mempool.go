// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool implements the bounded, FIFO-ordered, fee/size-indexed
// fragment pool spec §4.7 describes. It plays the transaction-pool
// admission/eviction role other_examples' daglabs-btcd mining package
// plays (txPrioItem/txPriorityQueue's heap-ordered secondary indexes),
// generalized from a single fee-per-KB priority queue feeding block
// assembly directly to two independent secondary indexes (fee, size)
// sitting alongside a primary FIFO order, so future policy changes can
// pick a different traversal without restructuring admission.
package mempool

import (
	"fmt"

	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/fragment"
	"github.com/wyrmchain/wyrmd/fragstatus"
	"github.com/wyrmchain/wyrmd/transaction"
	"github.com/wyrmchain/wyrmd/value"
)

// ErrorCode identifies a kind of admission failure, mirroring spec
// §4.7's named rejections.
type ErrorCode int

const (
	ErrInvalidStructure ErrorCode = iota
	ErrNotAuthorizedFragment
	ErrNotProperlyBalanced
)

// AdmissionError describes why Push refused a fragment.
type AdmissionError struct {
	Code        ErrorCode
	Description string
}

func (e AdmissionError) Error() string { return e.Description }

func admissionError(c ErrorCode, format string, args ...interface{}) AdmissionError {
	return AdmissionError{Code: c, Description: fmt.Sprintf(format, args...)}
}

// DefaultCapacity is the pool's default bound, per spec §4.7.
const DefaultCapacity = 10_000

// Pool is a bounded fragment_id → Fragment map with FIFO, fee, and size
// secondary orderings.
type Pool struct {
	capacity int
	fee      value.LinearFee
	status   *fragstatus.Log

	fifo    *fifoIndex
	entries map[chainhash.Hash]fragment.Fragment
	feeIdx  *feeIndex
	sizeIdx *sizeIndex
}

// New returns an empty Pool bounded at capacity, charging fee for every
// admitted transaction's balance check, and recording admission
// outcomes in status.
func New(capacity int, fee value.LinearFee, status *fragstatus.Log) *Pool {
	return &Pool{
		capacity: capacity,
		fee:      fee,
		status:   status,
		fifo:     newFIFOIndex(),
		entries:  make(map[chainhash.Hash]fragment.Fragment),
		feeIdx:   newFeeIndex(),
		sizeIdx:  newSizeIndex(),
	}
}

// Len returns the number of fragments currently held.
func (p *Pool) Len() int { return len(p.entries) }

// Contains reports whether id is currently held.
func (p *Pool) Contains(id chainhash.Hash) bool {
	_, ok := p.entries[id]
	return ok
}

// Push decodes and admits raw as a fragment, returning the evicted
// fragment's id if admitting it pushed the pool over capacity. Pushing
// an already-present fragment is a no-op (evictedID, ok both zero).
func (p *Pool) Push(raw []byte) (evictedID chainhash.Hash, evicted bool, err error) {
	f, err := fragment.DecodeAll(raw)
	if err != nil {
		return chainhash.Hash{}, false, admissionError(ErrInvalidStructure, "mempool: %v", err)
	}
	if f.Tag.MempoolForbidden() {
		return chainhash.Hash{}, false, admissionError(ErrNotAuthorizedFragment, "mempool: fragment tag %s is never admitted to the mempool", f.Tag)
	}
	id := f.ID()
	if p.Contains(id) {
		return chainhash.Hash{}, false, nil
	}
	if fee, ok, err := p.balanceCheck(f); err != nil {
		log.Debugf("mempool: rejected fragment %s: %v", id, err)
		if p.status != nil {
			p.status.SetRejected(id, err)
		}
		return chainhash.Hash{}, false, err
	} else if ok {
		p.feeIdx.insert(id, fee)
	} else {
		p.feeIdx.insert(id, 0)
	}

	p.entries[id] = f
	p.fifo.pushBack(id)
	p.sizeIdx.insert(id, len(raw))
	if p.status != nil {
		p.status.Set(id, fragstatus.Status{Kind: fragstatus.Pending})
	}

	if p.capacity > 0 && len(p.entries) > p.capacity {
		oldest, ok := p.removeOldestLocked()
		if ok {
			log.Debugf("mempool: evicted %s at capacity %d", oldest.ID(), p.capacity)
			return oldest.ID(), true, nil
		}
	}
	return chainhash.Hash{}, false, nil
}

// balanceCheck runs spec §4.7's admission-time arithmetic check for
// transaction-shaped fragments (the bare transaction tag and every
// certificate tag, all of which wrap a transaction.Transaction). It
// reports the fee actually paid (for the fee secondary index) and
// whether the fragment is transaction-shaped at all; non-transaction
// fragments (none remain once Initial/OldUtxoDeclaration/update-system
// fragments are excluded by MempoolForbidden) pass through unscored.
func (p *Pool) balanceCheck(f fragment.Fragment) (paid value.Value, isTransaction bool, err error) {
	hasCertificate, numVotes, ok := certificateShape(f.Tag)
	if !ok {
		return 0, false, nil
	}
	tx, decodeErr := transaction.DecodeAll(f.Body)
	if decodeErr != nil {
		return 0, true, admissionError(ErrInvalidStructure, "mempool: %v", decodeErr)
	}

	inputValues := make([]value.Value, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputValues[i] = in.Value
	}
	outputValues := make([]value.Value, len(tx.Outputs))
	for i, out := range tx.Outputs {
		outputValues[i] = out.Value
	}
	totalIn, err := value.Sum(inputValues)
	if err != nil {
		return 0, true, admissionError(ErrNotProperlyBalanced, "mempool: %v", err)
	}
	totalOut, err := value.Sum(outputValues)
	if err != nil {
		return 0, true, admissionError(ErrNotProperlyBalanced, "mempool: %v", err)
	}
	requiredFee, err := p.fee.Fee(len(tx.Inputs), len(tx.Outputs), hasCertificate, numVotes)
	if err != nil {
		return 0, true, admissionError(ErrNotProperlyBalanced, "mempool: %v", err)
	}
	want, err := totalOut.Add(requiredFee)
	if err != nil {
		return 0, true, admissionError(ErrNotProperlyBalanced, "mempool: %v", err)
	}
	if totalIn != want {
		return 0, true, admissionError(ErrNotProperlyBalanced, "mempool: inputs sum to %s, need %s (outputs %s + fee %s)", totalIn, want, totalOut, requiredFee)
	}
	return requiredFee, true, nil
}

// certificateShape reports whether tag wraps a transaction.Transaction
// and, if so, the (hasCertificate, numVotes) pair value.LinearFee.Fee
// needs.
func certificateShape(tag fragment.Tag) (hasCertificate bool, numVotes int, isTxShaped bool) {
	switch tag {
	case fragment.TagTransaction:
		return false, 0, true
	case fragment.TagCertificate,
		fragment.TagStakeDelegation,
		fragment.TagOwnerStakeDelegation,
		fragment.TagPoolRegistration,
		fragment.TagPoolRetirement,
		fragment.TagPoolUpdate,
		fragment.TagVotePlan,
		fragment.TagVoteTally:
		return true, 0, true
	case fragment.TagVoteCast:
		return true, 1, true
	default:
		return false, 0, false
	}
}

// RemoveOldest pops and returns the FIFO-oldest fragment, or ok=false
// if the pool is empty.
func (p *Pool) RemoveOldest() (fragment.Fragment, bool) {
	return p.removeOldestLocked()
}

func (p *Pool) removeOldestLocked() (fragment.Fragment, bool) {
	id, ok := p.fifo.popFront()
	if !ok {
		return fragment.Fragment{}, false
	}
	f := p.entries[id]
	delete(p.entries, id)
	p.feeIdx.remove(id)
	p.sizeIdx.remove(id)
	if p.status != nil {
		p.status.SetRejected(id, fmt.Errorf("mempool: evicted at capacity"))
	}
	return f, true
}

// Remove drops id from the pool without marking it Rejected, for the
// block builder's commit path (§4.8): a fragment that made it into a
// block was not evicted, it succeeded.
func (p *Pool) Remove(id chainhash.Hash) (fragment.Fragment, bool) {
	f, ok := p.entries[id]
	if !ok {
		return fragment.Fragment{}, false
	}
	p.fifo.removeID(id)
	delete(p.entries, id)
	p.feeIdx.remove(id)
	p.sizeIdx.remove(id)
	return f, true
}

// Resize changes the pool's capacity, evicting oldest-first until the
// new capacity is satisfied, and returns every evicted id in eviction
// order.
func (p *Pool) Resize(newCapacity int) []chainhash.Hash {
	p.capacity = newCapacity
	var evicted []chainhash.Hash
	for newCapacity > 0 && len(p.entries) > newCapacity {
		f, ok := p.removeOldestLocked()
		if !ok {
			break
		}
		evicted = append(evicted, f.ID())
	}
	return evicted
}

// FIFOOrder returns every held fragment in FIFO order, the sequence
// the block builder replays candidates in.
func (p *Pool) FIFOOrder() []fragment.Fragment {
	ids := p.fifo.order()
	out := make([]fragment.Fragment, 0, len(ids))
	for _, id := range ids {
		out = append(out, p.entries[id])
	}
	return out
}

// PushFront reinserts a fragment at the FIFO head, preserving its
// earlier position relative to other returned fragments — the block
// builder's "returned-to-pool" path (§4.8's Output clause).
func (p *Pool) PushFront(f fragment.Fragment) {
	id := f.ID()
	if p.Contains(id) {
		return
	}
	p.entries[id] = f
	p.fifo.pushFront(id)
	p.feeIdx.insert(id, 0)
	p.sizeIdx.insert(id, len(f.Bytes()))
	if p.status != nil {
		p.status.Set(id, fragstatus.Status{Kind: fragstatus.Pending})
	}
}
