// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/wyrmchain/wyrmd/address"
	"github.com/wyrmchain/wyrmd/certificate"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/codec"
	"github.com/wyrmchain/wyrmd/transaction"
	"github.com/wyrmchain/wyrmd/value"
)

// initialEntryKind discriminates one entry of a genesis Initial
// fragment's body: spec §6's "initial funds ... initial certificates".
type initialEntryKind uint8

const (
	initialEntryFund initialEntryKind = 0
	initialEntryCert initialEntryKind = 1
)

// applyInitial applies every entry of a block0 Initial fragment
// directly into the ledger, grounded on original_source's
// testing/jormungandr-automation/src/testing/block0.rs replaying
// genesis construction through the same fragment-application path
// ordinary fragments use rather than a bespoke bootstrap function.
// Funds become UTXOs outright — there is no enclosing authority to
// verify a witness against, since block0 itself is the root of trust —
// and certificates register pools and vote plans directly, skipping both
// the management-signature check and the ValidateShape check that their
// dedicated certificate fragments go through.
func (l *Ledger) applyInitial(fragID chainhash.Hash, body []byte) error {
	r := codec.NewReader(body)
	count, err := r.U32()
	if err != nil {
		return ruleError(ErrInvalidStructure, "ledger: initial fragment: %v", err)
	}

	var index uint8
	for i := uint32(0); i < count; i++ {
		kindByte, err := r.U8()
		if err != nil {
			return ruleError(ErrInvalidStructure, "ledger: initial fragment entry %d: %v", i, err)
		}
		switch initialEntryKind(kindByte) {
		case initialEntryFund:
			if err := l.applyInitialFund(r, fragID, &index); err != nil {
				return err
			}
		case initialEntryCert:
			if err := l.applyInitialCert(r); err != nil {
				return err
			}
		default:
			return ruleError(ErrInvalidStructure, "ledger: initial fragment entry %d: unknown kind %d", i, kindByte)
		}
	}
	if err := r.AssertEmpty(); err != nil {
		return ruleError(ErrInvalidStructure, "ledger: initial fragment: %v", err)
	}
	return nil
}

// applyInitialFund reads one (address, value) pair and either credits a
// balance directly (account and multisig addresses) or mints a UTXO
// (single/script addresses), advancing index for every UTXO minted so
// each gets a distinct output index within fragID.
func (l *Ledger) applyInitialFund(r *codec.Reader, fragID chainhash.Hash, index *uint8) error {
	addrLen, err := r.U16()
	if err != nil {
		return ruleError(ErrInvalidStructure, "ledger: initial fund: %v", err)
	}
	raw, err := r.Bytes(int(addrLen))
	if err != nil {
		return ruleError(ErrInvalidStructure, "ledger: initial fund: %v", err)
	}
	addr, err := address.DecodeBytes(raw)
	if err != nil {
		return ruleError(ErrInvalidStructure, "ledger: initial fund: %v", err)
	}
	amt, err := r.U64()
	if err != nil {
		return ruleError(ErrInvalidStructure, "ledger: initial fund: %v", err)
	}

	if keyer, ok := addr.(address.AccountKeyer); ok {
		acc := l.accountOrCreate(keyer.AccountKey())
		total, err := acc.Balance.Add(value.Value(amt))
		if err != nil {
			return ruleError(ErrNotProperlyBalanced, "ledger: initial fund: %v", err)
		}
		acc.Balance = total
		return nil
	}
	if keyer, ok := addr.(address.MultisigIDer); ok {
		m := l.multisigOrCreate(keyer.MultisigID())
		total, err := m.Balance.Add(value.Value(amt))
		if err != nil {
			return ruleError(ErrNotProperlyBalanced, "ledger: initial fund: %v", err)
		}
		m.Balance = total
		return nil
	}

	l.UTXOs[UTXOKey{FragmentID: fragID, Index: *index}] = transaction.Output{Address: addr, Value: value.Value(amt)}
	*index++
	return nil
}

// applyInitialCert reads one length-prefixed (kind, payload) pair and
// registers its effect directly, trusting block0's contents the way
// every other genesis entry is trusted.
func (l *Ledger) applyInitialCert(r *codec.Reader) error {
	kindByte, err := r.U8()
	if err != nil {
		return ruleError(ErrInvalidStructure, "ledger: initial certificate: %v", err)
	}
	payloadLen, err := r.U32()
	if err != nil {
		return ruleError(ErrInvalidStructure, "ledger: initial certificate: %v", err)
	}
	payload, err := r.Bytes(int(payloadLen))
	if err != nil {
		return ruleError(ErrInvalidStructure, "ledger: initial certificate: %v", err)
	}

	switch certificate.Kind(kindByte) {
	case certificate.KindPoolRegistration:
		reg, err := certificate.DecodePoolRegistration(payload)
		if err != nil {
			return ruleError(ErrInvalidStructure, "ledger: initial pool registration: %v", err)
		}
		id, err := reg.ID()
		if err != nil {
			return ruleError(ErrInvalidStructure, "ledger: initial pool registration: %v", err)
		}
		if _, exists := l.Pools[id]; exists {
			return ruleError(ErrPoolAlreadyExists, "ledger: initial pool %s already registered", id)
		}
		l.Pools[id] = &Pool{Registration: reg}
		return nil

	case certificate.KindVotePlan:
		plan, err := certificate.DecodeVotePlan(payload)
		if err != nil {
			return ruleError(ErrInvalidStructure, "ledger: initial vote plan: %v", err)
		}
		id := plan.ID()
		if _, exists := l.VotePlans[id]; exists {
			return ruleError(ErrVotePlanAlreadyExists, "ledger: initial vote plan %s already registered", id)
		}
		l.VotePlans[id] = &VotePlanState{Plan: plan, Tally: make(map[uint8]map[uint8]value.Value), Ballots: make(map[uint8]map[string]Ballot)}
		return nil

	default:
		return ruleError(ErrInvalidStructure, "ledger: initial certificate: unsupported kind %d", kindByte)
	}
}
