// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package leadership implements spec §4.6's two leader-election
// disciplines (BFT round-robin and GenesisPraos VRF-thresholded) behind
// one verification state machine, selected per block by the header's
// version tag. It plays the role blockchain/stakeext.go's
// lotteryDataForNode plays for exccd's ticket lottery, generalized from
// a fixed ticket-pool PRNG draw to a per-pool VRF evaluation weighted by
// stake share, plus the BFT schedule exccd has no analogue for at all.
package leadership

import (
	"fmt"

	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/chainhash"
)

// FailureKind enumerates spec §4.6's named verification failure kinds.
type FailureKind int

const (
	FailIncompatibleBlockVersion FailureKind = iota
	FailNoLeaderForThisSlot
	FailInvalidLeader
	FailInvalidLeaderSignature
	FailInvalidBlockMessage
	FailInvalidStateUpdate
)

var failureKindStrings = map[FailureKind]string{
	FailIncompatibleBlockVersion: "IncompatibleBlockVersion",
	FailNoLeaderForThisSlot:      "NoLeaderForThisSlot",
	FailInvalidLeader:            "InvalidLeader",
	FailInvalidLeaderSignature:   "InvalidLeaderSignature",
	FailInvalidBlockMessage:      "InvalidBlockMessage",
	FailInvalidStateUpdate:       "InvalidStateUpdate",
}

func (k FailureKind) String() string {
	if s, ok := failureKindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("Unknown FailureKind (%d)", int(k))
}

// VerifyError describes why a header was rejected by VerificationState.
type VerifyError struct {
	Kind        FailureKind
	Description string
}

func (e VerifyError) Error() string { return e.Description }

func verifyError(k FailureKind, format string, args ...interface{}) VerifyError {
	return VerifyError{Kind: k, Description: fmt.Sprintf(format, args...)}
}

// schemeKind discriminates which of spec §4.6's two disciplines (or
// neither) a VerificationState currently enforces.
type schemeKind int

const (
	schemeNone schemeKind = iota
	schemeBFT
	schemeGenesisPraos
)

// VerificationState is the active leadership discipline at a point in
// the chain: `{None, Bft(settings), GenesisPraos(snapshot)}` per spec
// §4.6. A new state replaces the old one wholesale at each epoch
// boundary; VerificationState itself is immutable once constructed.
type VerificationState struct {
	kind         schemeKind
	bft          BFTSettings
	genesisPraos GenesisPraosSnapshot
}

// None returns a VerificationState that only accepts VersionNone
// headers, used for block0 and test chains that skip consensus.
func None() VerificationState {
	return VerificationState{kind: schemeNone}
}

// NewBFT returns a VerificationState enforcing the fixed-leader-list
// round-robin schedule described by settings.
func NewBFT(settings BFTSettings) VerificationState {
	return VerificationState{kind: schemeBFT, bft: settings}
}

// NewGenesisPraos returns a VerificationState enforcing the per-pool
// VRF lottery described by snapshot.
func NewGenesisPraos(snapshot GenesisPraosSnapshot) VerificationState {
	return VerificationState{kind: schemeGenesisPraos, genesisPraos: snapshot}
}

// VerifyHeader checks h against the active discipline, returning the
// GenesisPraos VRF output (for nonce folding) when applicable; for BFT
// and None the returned hash is always the zero value.
func (v VerificationState) VerifyHeader(h block.Header) (chainhash.Hash, error) {
	out, err := v.verifyHeader(h)
	if err != nil {
		log.Debugf("leadership: rejected header at %s: %v", h.BlockDate, err)
	}
	return out, err
}

func (v VerificationState) verifyHeader(h block.Header) (chainhash.Hash, error) {
	switch v.kind {
	case schemeNone:
		if h.Version != block.VersionNone {
			return chainhash.Hash{}, verifyError(FailIncompatibleBlockVersion, "leadership: expected a version-none header, got %s", h.Version)
		}
		return chainhash.Hash{}, nil
	case schemeBFT:
		return chainhash.Hash{}, v.bft.verifyHeader(h)
	case schemeGenesisPraos:
		return v.genesisPraos.verifyHeader(h)
	default:
		return chainhash.Hash{}, verifyError(FailIncompatibleBlockVersion, "leadership: verification state has no active scheme")
	}
}
