// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/wyrmchain/wyrmd/address"
	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/certificate"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/fragment"
	"github.com/wyrmchain/wyrmd/transaction"
	"github.com/wyrmchain/wyrmd/value"
)

// ApplyFragment validates and applies one fragment at the given
// ledger-logical date. On any error the ledger is left exactly as it
// was before the call, matching spec §4.4's atomicity rule: a plain
// transaction mutates the ledger only after every check has passed, and
// a certificate-bearing one, whose transaction effects are committed
// before its certificate is checked, is rolled back from a snapshot.
func (l *Ledger) ApplyFragment(now blockdate.BlockDate, f fragment.Fragment) error {
	fragID := f.ID()
	if err := l.applyFragment(now, f, fragID); err != nil {
		log.Debugf("ledger: rejected fragment %s (%s): %v", fragID, f.Tag, err)
		return err
	}
	log.Tracef("ledger: applied fragment %s (%s)", fragID, f.Tag)
	return nil
}

func (l *Ledger) applyFragment(now blockdate.BlockDate, f fragment.Fragment, fragID chainhash.Hash) error {
	switch f.Tag {
	case fragment.TagTransaction:
		tx, err := transaction.DecodeAll(f.Body)
		if err != nil {
			return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
		}
		_, _, err = l.applyTransactionCore(tx, fragID, false, 0)
		return err

	case fragment.TagCertificate:
		return l.applyGenericCertificateTransaction(now, f.Body, fragID)

	case fragment.TagStakeDelegation:
		return l.applyCertTx(now, f.Body, fragID, certificate.KindStakeDelegation)
	case fragment.TagOwnerStakeDelegation:
		return l.applyCertTx(now, f.Body, fragID, certificate.KindOwnerStakeDelegation)
	case fragment.TagPoolRegistration:
		return l.applyCertTx(now, f.Body, fragID, certificate.KindPoolRegistration)
	case fragment.TagPoolRetirement:
		return l.applyCertTx(now, f.Body, fragID, certificate.KindPoolRetirement)
	case fragment.TagPoolUpdate:
		return l.applyCertTx(now, f.Body, fragID, certificate.KindPoolUpdate)
	case fragment.TagVotePlan:
		return l.applyCertTx(now, f.Body, fragID, certificate.KindVotePlan)
	case fragment.TagVoteCast:
		return l.applyCertTx(now, f.Body, fragID, certificate.KindVoteCast)
	case fragment.TagVoteTally:
		return l.applyCertTx(now, f.Body, fragID, certificate.KindVoteTally)

	case fragment.TagInitial:
		return l.applyInitial(fragID, f.Body)

	case fragment.TagOldUtxoDeclaration, fragment.TagUpdateProposal, fragment.TagUpdateVote:
		return ruleError(ErrNotAuthorizedFragment, "ledger: fragment tag %s is not yet implemented by ApplyFragment", f.Tag)

	default:
		return ruleError(ErrInvalidStructure, "ledger: unknown fragment tag %d", byte(f.Tag))
	}
}

// applyGenericCertificateTransaction handles the tag-2 "Certificate-
// bearing Transaction" envelope: a transaction whose Payload begins
// with a one-byte certificate.Kind discriminator followed by that
// kind's encoding. The dedicated tags (5-12) never need this prefix
// since their fragment tag already names the kind; tag 2 exists for
// certificate kinds that have no dedicated tag of their own.
func (l *Ledger) applyGenericCertificateTransaction(now blockdate.BlockDate, body []byte, fragID chainhash.Hash) error {
	tx, err := transaction.DecodeAll(body)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	if len(tx.Payload) < 1 {
		return ruleError(ErrInvalidStructure, "ledger: certificate transaction has no payload")
	}
	kind := certificate.Kind(tx.Payload[0])
	return l.applyCertificateTx(now, tx, fragID, kind, tx.Payload[1:])
}

// applyCertTx decodes a dedicated-tag certificate fragment's body as a
// Transaction whose Payload is kind's encoding directly (no prefix
// byte, since the fragment tag already named kind).
func (l *Ledger) applyCertTx(now blockdate.BlockDate, body []byte, fragID chainhash.Hash, kind certificate.Kind) error {
	tx, err := transaction.DecodeAll(body)
	if err != nil {
		return RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}
	return l.applyCertificateTx(now, tx, fragID, kind, tx.Payload)
}

func (l *Ledger) applyCertificateTx(now blockdate.BlockDate, tx transaction.Transaction, fragID chainhash.Hash, kind certificate.Kind, payload []byte) (err error) {
	// applyTransactionCore commits its effects before the certificate
	// effect below is checked, so l is restored from this snapshot if
	// either step fails.
	snapshot := l.Clone()
	defer func() {
		if err != nil {
			*l = *snapshot
		}
	}()
	numVotes := 0
	if kind == certificate.KindVoteCast {
		numVotes = 1
	}
	signDataHash, consumed, err := l.applyTransactionCore(tx, fragID, true, numVotes)
	if err != nil {
		return err
	}

	switch kind {
	case certificate.KindPoolRegistration:
		return l.applyPoolRegistration(payload, tx.PayloadAuth, signDataHash)
	case certificate.KindPoolUpdate:
		return l.applyPoolUpdate(payload, tx.PayloadAuth, signDataHash)
	case certificate.KindPoolRetirement:
		return l.applyPoolRetirement(payload, tx.PayloadAuth, signDataHash)
	case certificate.KindStakeDelegation:
		return l.applyStakeDelegation(payload, tx)
	case certificate.KindOwnerStakeDelegation:
		return l.applyOwnerStakeDelegation(payload, tx, consumed)
	case certificate.KindVotePlan:
		return l.applyVotePlan(payload)
	case certificate.KindVoteCast:
		return l.applyVoteCast(now, payload, tx, consumed)
	case certificate.KindVoteTally:
		return l.applyVoteTally(now, payload)
	case certificate.KindMultisigDescriptor:
		return l.applyMultisigDescriptor(payload)
	default:
		return ruleError(ErrInvalidStructure, "ledger: unsupported certificate kind %d", byte(kind))
	}
}

// applyTransactionCore validates and applies a transaction's
// inputs/outputs/witnesses/fee, independent of any certificate effect.
// fragID is the enclosing fragment's content id (tag included), used to
// key the UTXOs this transaction creates. It returns the transaction's
// sign-data hash (reused as the message a certificate's management
// signature is checked against) and, parallel to tx.Inputs, the output
// each UTXO input consumed (zero-valued for non-UTXO inputs) — captured
// before deletion so a certificate effect keyed off an input's spent
// output, like OwnerStakeDelegation, still has it to look at.
func (l *Ledger) applyTransactionCore(tx transaction.Transaction, fragID chainhash.Hash, hasCertificate bool, numVotes int) (chainhash.Hash, []transaction.Output, error) {
	signDataHash, err := tx.SignDataHash()
	if err != nil {
		return chainhash.Hash{}, nil, RuleError{ErrorCode: ErrInvalidStructure, Description: err.Error()}
	}

	if len(tx.Witnesses) != len(tx.Inputs) {
		return signDataHash, nil, notEnoughSignatures(len(tx.Witnesses), len(tx.Inputs))
	}

	inputValues := make([]value.Value, len(tx.Inputs))
	consumed := make([]transaction.Output, len(tx.Inputs))
	for i, in := range tx.Inputs {
		switch in.Kind {
		case transaction.InputUTXO:
			key := UTXOKey{FragmentID: in.FragmentID, Index: in.OutputIndex}
			out, ok := l.UTXOs[key]
			if !ok {
				return signDataHash, nil, ruleError(ErrUTXONotFound, "ledger: no UTXO %s:%d", in.FragmentID, in.OutputIndex)
			}
			spendingKeyer, ok := out.Address.(address.SpendingKeyer)
			if !ok {
				return signDataHash, nil, ruleError(ErrInvalidWitness, "ledger: UTXO output address has no spending key")
			}
			if !transaction.VerifyUTXOWitness(spendingKeyer.SpendingKey(), l.Block0Hash, signDataHash, tx.Witnesses[i]) {
				return signDataHash, nil, ruleError(ErrInvalidWitness, "ledger: invalid UTXO witness on input %d", i)
			}
			consumed[i] = out

		case transaction.InputAccount:
			acc, ok := l.Accounts[accountKeyString(in.AccountKey)]
			if !ok {
				return signDataHash, nil, ruleError(ErrAccountNotFound, "ledger: no account for input %d", i)
			}
			if int(in.Lane) >= SpendingCounterLanes {
				return signDataHash, nil, ruleError(ErrBadSpendingCounter, "ledger: lane %d exceeds %d lanes", in.Lane, SpendingCounterLanes)
			}
			expected := acc.Counters[in.Lane]
			if !transaction.VerifyAccountWitness(in.AccountKey, l.Block0Hash, signDataHash, expected, tx.Witnesses[i]) {
				return signDataHash, nil, ruleError(ErrInvalidWitness, "ledger: invalid account witness on input %d", i)
			}
			if acc.Balance < in.Value {
				return signDataHash, nil, ruleError(ErrInsufficientFunds, "ledger: account balance %s below input %s", acc.Balance, in.Value)
			}

		case transaction.InputMultisig:
			m, ok := l.Multisigs[in.MultisigID]
			if !ok || !m.DescriptorRegistered {
				return signDataHash, nil, ruleError(ErrMultisigDescriptorNotFound, "ledger: no multisig descriptor registered for id %x", in.MultisigID)
			}
			if tx.Witnesses[i].Kind != transaction.InputMultisig {
				return signDataHash, nil, ruleError(ErrInvalidWitness, "ledger: witness %d is not a multisig witness", i)
			}
			msg := transaction.UTXOSignMessage(l.Block0Hash, signDataHash)
			if err := certificate.VerifyMultisigWitness(m.Descriptor, msg, tx.Witnesses[i].MultisigSignatures); err != nil {
				return signDataHash, nil, ruleError(ErrInvalidWitness, "ledger: multisig input %d: %v", i, err)
			}
			if m.Balance < in.Value {
				return signDataHash, nil, ruleError(ErrInsufficientFunds, "ledger: multisig balance %s below input %s", m.Balance, in.Value)
			}
		}
		inputValues[i] = in.Value
	}

	outputValues := make([]value.Value, len(tx.Outputs))
	for i, out := range tx.Outputs {
		outputValues[i] = out.Value
	}

	totalIn, err := value.Sum(inputValues)
	if err != nil {
		return signDataHash, nil, ruleError(ErrNotProperlyBalanced, "ledger: %v", err)
	}
	totalOut, err := value.Sum(outputValues)
	if err != nil {
		return signDataHash, nil, ruleError(ErrNotProperlyBalanced, "ledger: %v", err)
	}
	fee, err := l.Settings.Fee.Fee(len(tx.Inputs), len(tx.Outputs), hasCertificate, numVotes)
	if err != nil {
		return signDataHash, nil, ruleError(ErrNotProperlyBalanced, "ledger: %v", err)
	}
	wantIn, err := totalOut.Add(fee)
	if err != nil {
		return signDataHash, nil, ruleError(ErrNotProperlyBalanced, "ledger: %v", err)
	}
	if totalIn != wantIn {
		return signDataHash, nil, ruleError(ErrNotProperlyBalanced, "ledger: inputs sum to %s, need %s (outputs %s + fee %s)", totalIn, wantIn, totalOut, fee)
	}

	// Checks passed: commit every effect.
	for _, in := range tx.Inputs {
		switch in.Kind {
		case transaction.InputUTXO:
			delete(l.UTXOs, UTXOKey{FragmentID: in.FragmentID, Index: in.OutputIndex})
		case transaction.InputAccount:
			acc := l.Accounts[accountKeyString(in.AccountKey)]
			acc.Balance -= in.Value
			acc.Counters[in.Lane]++
		case transaction.InputMultisig:
			l.Multisigs[in.MultisigID].Balance -= in.Value
		}
	}
	for i, out := range tx.Outputs {
		// A Multisig-addressed output credits that id's ledger balance
		// directly rather than minting a UTXO: InputMultisig spends
		// against this balance (like InputAccount), not against a
		// specific prior output, so nothing could ever reference a
		// multisig UTXO entry as a locator.
		if keyer, ok := out.Address.(address.MultisigIDer); ok {
			m := l.multisigOrCreate(keyer.MultisigID())
			credited, err := m.Balance.Add(out.Value)
			if err != nil {
				return signDataHash, nil, ruleError(ErrNotProperlyBalanced, "ledger: multisig balance overflow: %v", err)
			}
			m.Balance = credited
			continue
		}
		l.UTXOs[UTXOKey{FragmentID: fragID, Index: uint8(i)}] = out
	}
	l.Treasury, err = l.Treasury.Add(fee)
	if err != nil {
		return signDataHash, nil, ruleError(ErrNotProperlyBalanced, "ledger: treasury overflow: %v", err)
	}
	return signDataHash, consumed, nil
}
