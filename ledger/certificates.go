// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"
	"fmt"

	"github.com/wyrmchain/wyrmd/address"
	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/certificate"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/transaction"
	"github.com/wyrmchain/wyrmd/value"
)

func (l *Ledger) applyPoolRegistration(payload, authBytes []byte, signDataHash chainhash.Hash) error {
	cert, err := certificate.DecodePoolRegistration(payload)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	if err := cert.ValidateShape(); err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	id, err := cert.ID()
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	if _, exists := l.Pools[id]; exists {
		return ruleError(ErrPoolAlreadyExists, "ledger: pool %s already registered", id)
	}
	sig, err := certificate.DecodeManagementSignature(authBytes)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	if err := certificate.Verify(cert.Owners, cert.ManagementThreshold, signDataHash[:], sig); err != nil {
		return ruleError(ErrManagementSignatureInvalid, "ledger: pool registration %s: %v", id, err)
	}
	l.Pools[id] = &Pool{Registration: cert}
	return nil
}

func (l *Ledger) applyPoolUpdate(payload, authBytes []byte, signDataHash chainhash.Hash) error {
	cert, err := certificate.DecodePoolUpdate(payload)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	pool, ok := l.Pools[cert.PoolID]
	if !ok {
		return ruleError(ErrPoolNotFound, "ledger: no pool %s", cert.PoolID)
	}
	if pool.Retired {
		return ruleError(ErrPoolRetired, "ledger: pool %s is retired", cert.PoolID)
	}
	sig, err := certificate.DecodeManagementSignature(authBytes)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	reg := pool.Registration
	if err := certificate.Verify(reg.Owners, reg.ManagementThreshold, signDataHash[:], sig); err != nil {
		return ruleError(ErrManagementSignatureInvalid, "ledger: pool update %s: %v", cert.PoolID, err)
	}
	reg.Operators = cert.Operators
	reg.VRFPublicKey = cert.VRFPublicKey
	reg.KESPublicKey = cert.KESPublicKey
	reg.Tax = cert.Tax
	reg.RewardAccount = cert.RewardAccount
	pool.Registration = reg
	return nil
}

func (l *Ledger) applyPoolRetirement(payload, authBytes []byte, signDataHash chainhash.Hash) error {
	cert, err := certificate.DecodePoolRetirement(payload)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	pool, ok := l.Pools[cert.PoolID]
	if !ok {
		return ruleError(ErrPoolNotFound, "ledger: no pool %s", cert.PoolID)
	}
	if pool.Retired {
		return ruleError(ErrPoolRetired, "ledger: pool %s already retired", cert.PoolID)
	}
	sig, err := certificate.DecodeManagementSignature(authBytes)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	reg := pool.Registration
	if err := certificate.Verify(reg.Owners, reg.ManagementThreshold, signDataHash[:], sig); err != nil {
		return ruleError(ErrManagementSignatureInvalid, "ledger: pool retirement %s: %v", cert.PoolID, err)
	}
	pool.Retired = true
	pool.RetirementEpoch = cert.RetirementEpoch
	return nil
}

// applyStakeDelegation is authorized by the account's own Ed25519
// witness, already checked by applyTransactionCore against one of the
// transaction's account inputs; here we only require that input exist.
func (l *Ledger) applyStakeDelegation(payload []byte, tx transaction.Transaction) error {
	cert, err := certificate.DecodeStakeDelegation(payload)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	if err := cert.Delegation.ValidateShape(); err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	if !hasAccountInput(tx, cert.AccountKey) {
		return ruleError(ErrInvalidWitness, "ledger: stake delegation not authorized by any input on the named account")
	}
	acc := l.accountOrCreate(cert.AccountKey)
	acc.Delegation = cert.Delegation
	return nil
}

// applyOwnerStakeDelegation derives the delegating identity from the
// transaction's first input, per certificate.OwnerStakeDelegation's
// contract: no key of its own, authorized by whatever witness the
// enclosing transaction already carries on that input.
func (l *Ledger) applyOwnerStakeDelegation(payload []byte, tx transaction.Transaction, consumed []transaction.Output) error {
	cert, err := certificate.DecodeOwnerStakeDelegation(payload)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	if err := cert.Delegation.ValidateShape(); err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	if len(tx.Inputs) == 0 {
		return ruleError(ErrInvalidStructure, "ledger: owner stake delegation on a transaction with no inputs")
	}
	first := tx.Inputs[0]
	switch first.Kind {
	case transaction.InputAccount:
		acc := l.accountOrCreate(first.AccountKey)
		acc.Delegation = cert.Delegation
		return nil
	case transaction.InputUTXO:
		keyer, ok := consumed[0].Address.(address.SpendingKeyer)
		if !ok {
			return ruleError(ErrInvalidWitness, "ledger: owner stake delegation input has no spending key")
		}
		l.UTXODelegations[spendingKeyString(keyer.SpendingKey())] = cert.Delegation
		return nil
	default:
		return ruleError(ErrInvalidWitness, "ledger: owner stake delegation requires a UTXO or account first input")
	}
}

func hasAccountInput(tx transaction.Transaction, key []byte) bool {
	for _, in := range tx.Inputs {
		if in.Kind == transaction.InputAccount && bytes.Equal(in.AccountKey, key) {
			return true
		}
	}
	return false
}

func (l *Ledger) applyVotePlan(payload []byte) error {
	plan, err := certificate.DecodeVotePlan(payload)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	if err := plan.ValidateShape(); err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	id := plan.ID()
	if _, exists := l.VotePlans[id]; exists {
		return ruleError(ErrVotePlanAlreadyExists, "ledger: vote plan %s already registered", id)
	}
	l.VotePlans[id] = &VotePlanState{Plan: plan, Tally: make(map[uint8]map[uint8]value.Value), Ballots: make(map[uint8]map[string]Ballot)}
	return nil
}

// voterIdentity derives the (identity, weight) pair a VoteCast is
// counted under from the casting transaction's first input, the same
// input applyOwnerStakeDelegation derives a delegating identity from:
// there is no voter field on certificate.VoteCast itself, so the
// ballot is attributed to whoever authorized spending that input, and
// its weight to that input's value — the only stake figure available
// at apply time without a separate leader-selection-style snapshot of
// account balances (see DESIGN.md's vote-weight Open Question).
func voterIdentity(tx transaction.Transaction, consumed []transaction.Output) (string, value.Value, error) {
	if len(tx.Inputs) == 0 {
		return "", 0, fmt.Errorf("vote cast transaction has no inputs")
	}
	first := tx.Inputs[0]
	switch first.Kind {
	case transaction.InputAccount:
		return "account:" + accountKeyString(first.AccountKey), first.Value, nil
	case transaction.InputUTXO:
		keyer, ok := consumed[0].Address.(address.SpendingKeyer)
		if !ok {
			return "", 0, fmt.Errorf("vote cast UTXO input has no spending key")
		}
		return "utxo:" + spendingKeyString(keyer.SpendingKey()), first.Value, nil
	case transaction.InputMultisig:
		return fmt.Sprintf("multisig:%x", first.MultisigID), first.Value, nil
	default:
		return "", 0, fmt.Errorf("unsupported vote cast input kind")
	}
}

func (l *Ledger) applyVoteCast(now blockdate.BlockDate, payload []byte, tx transaction.Transaction, consumed []transaction.Output) error {
	cast, err := certificate.DecodeVoteCast(payload)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	state, ok := l.VotePlans[cast.VotePlanID]
	if !ok {
		return ruleError(ErrVotePlanNotFound, "ledger: no vote plan %s", cast.VotePlanID)
	}
	if !now.InWindow(state.Plan.VoteStart, state.Plan.TallyStart) {
		return ruleError(ErrVoteWindowClosed, "ledger: %s is outside vote plan %s's casting window", now, cast.VotePlanID)
	}
	if int(cast.ProposalIndex) >= len(state.Plan.Proposals) {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: "ledger: vote cast references an unknown proposal"}
	}
	if err := cast.ValidateShape(state.Plan.Proposals[cast.ProposalIndex]); err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	// Private casts pass the shape check above and are not recorded:
	// the ledger keeps no encrypted ballots, and they add nothing to
	// Tally.
	if cast.IsPrivate {
		return nil
	}
	voter, weight, err := voterIdentity(tx, consumed)
	if err != nil {
		return ruleError(ErrInvalidWitness, "ledger: vote cast: %v", err)
	}
	if state.Tally[cast.ProposalIndex] == nil {
		state.Tally[cast.ProposalIndex] = make(map[uint8]value.Value)
	}
	if state.Ballots[cast.ProposalIndex] == nil {
		state.Ballots[cast.ProposalIndex] = make(map[string]Ballot)
	}
	// A voter recasting on the same proposal replaces their prior
	// ballot rather than accumulating alongside it: subtract what they
	// previously contributed before adding the new choice's weight in.
	if prior, recast := state.Ballots[cast.ProposalIndex][voter]; recast {
		remaining, err := state.Tally[cast.ProposalIndex][prior.Choice].Sub(prior.Weight)
		if err != nil {
			return ruleError(ErrInvalidStructure, "ledger: vote tally underflow reverting prior ballot: %v", err)
		}
		state.Tally[cast.ProposalIndex][prior.Choice] = remaining
	}
	total, err := state.Tally[cast.ProposalIndex][cast.PublicChoice].Add(weight)
	if err != nil {
		return ruleError(ErrInvalidStructure, "ledger: vote tally overflow: %v", err)
	}
	state.Tally[cast.ProposalIndex][cast.PublicChoice] = total
	state.Ballots[cast.ProposalIndex][voter] = Ballot{Choice: cast.PublicChoice, Weight: weight}
	return nil
}

// applyMultisigDescriptor registers the owner set and threshold backing
// a multisig id. It travels through the generic certificate-bearing
// transaction tag (2), carries no payload-auth of its own (there is no
// prior owner set to authorize against — registration is first-come,
// unlike PoolRegistration, which its own owners must sign),
// and is rejected outright if something already registered the id.
func (l *Ledger) applyMultisigDescriptor(payload []byte) error {
	cert, err := certificate.DecodeMultisigDescriptor(payload)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	if err := cert.ValidateShape(); err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	id, err := cert.ID()
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	m := l.multisigOrCreate(id)
	if m.DescriptorRegistered {
		return ruleError(ErrMultisigDescriptorAlreadyExists, "ledger: multisig descriptor %x already registered", id)
	}
	m.Descriptor = cert
	m.DescriptorRegistered = true
	return nil
}

func (l *Ledger) applyVoteTally(now blockdate.BlockDate, payload []byte) error {
	tally, err := certificate.DecodeVoteTally(payload)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	state, ok := l.VotePlans[tally.VotePlanID]
	if !ok {
		return ruleError(ErrVotePlanNotFound, "ledger: no vote plan %s", tally.VotePlanID)
	}
	if !now.InWindow(state.Plan.TallyStart, state.Plan.TallyEnd) {
		return ruleError(ErrTallyWindowClosed, "ledger: %s is outside vote plan %s's tally window", now, tally.VotePlanID)
	}
	if state.Plan.PayloadType == certificate.PayloadPrivate && len(tally.Shares) == 0 {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: "ledger: private vote plan tally requires committee decryption shares"}
	}
	state.Closed = true
	return nil
}
