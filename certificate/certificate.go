// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package certificate implements the certificate payloads spec §4.5
// describes: stake pool registration/update/retirement, account and
// owner stake delegation, and vote plan/cast/tally. Certificates travel
// as a transaction's payload (transaction.Transaction.Payload) and
// their effects are applied by the ledger package; this package owns
// only their shape, their canonical encoding, and the structural checks
// that don't require ledger state (owner/operator counts, threshold
// bounds). The owners'/operators' multisignature over a certificate's
// payload-auth is checked here with a jrick/bitset bitmap marking which
// owners signed, the same bitmap idiom the teacher's txscript engine
// uses to track which OP_CHECKMULTISIG keys have already consumed a
// signature.
package certificate

import (
	"crypto/ed25519"
	"fmt"

	"github.com/jrick/bitset"

	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/codec"
	"github.com/wyrmchain/wyrmd/crypto/kes"
	"github.com/wyrmchain/wyrmd/crypto/vrf"
	"github.com/wyrmchain/wyrmd/value"
)

// MaxPoolOwners and MaxPoolOperators are the default bounds spec §3
// places on a pool's owner and operator sets.
const (
	MaxPoolOwners    = 31
	MaxPoolOperators = 3
)

// PoolID identifies a stake pool by the content hash of its
// registration certificate.
type PoolID = chainhash.Hash

// ErrorCode identifies a certificate-shape validation failure that
// doesn't require ledger state to detect.
type ErrorCode int

const (
	ErrManagementThresholdZero ErrorCode = iota
	ErrManagementThresholdAboveOwners
	ErrTooManyOwners
	ErrTooManyOperators
	ErrNotEnoughSignatures
	ErrVoteOptionOutOfRange
)

var errorCodeStrings = map[ErrorCode]string{
	ErrManagementThresholdZero:        "ErrManagementThresholdZero",
	ErrManagementThresholdAboveOwners: "ErrManagementThresholdAboveOwners",
	ErrTooManyOwners:                  "ErrTooManyOwners",
	ErrTooManyOperators:               "ErrTooManyOperators",
	ErrNotEnoughSignatures:            "ErrNotEnoughSignatures",
	ErrVoteOptionOutOfRange:           "ErrVoteOptionOutOfRange",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(c))
}

// Error describes a certificate-shape validation failure.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

func (e Error) Error() string { return e.Description }

func shapeError(c ErrorCode, format string, args ...interface{}) error {
	return Error{ErrorCode: c, Description: fmt.Sprintf(format, args...)}
}

// Tax describes a pool's reward cut: a fixed amount taken first, then
// a ratio of what remains, optionally capped.
type Tax struct {
	Fixed      value.Value
	RatioNum   uint32
	RatioDenom uint32
	HasCap     bool
	Cap        value.Value
}

// PoolRegistration is the certificate that brings a stake pool into
// existence.
type PoolRegistration struct {
	Owners              []ed25519.PublicKey
	Operators           []ed25519.PublicKey
	ManagementThreshold uint8
	VRFPublicKey        vrf.PublicKey
	KESPublicKey        kes.PublicKey
	Tax                 Tax
	RewardAccount       ed25519.PublicKey
}

// ValidateShape checks the structural bounds spec §4.5/§9 (S3) place on
// a registration, independent of ledger state.
func (p PoolRegistration) ValidateShape() error {
	if len(p.Owners) > MaxPoolOwners {
		return shapeError(ErrTooManyOwners, "certificate: %d owners exceeds maximum %d", len(p.Owners), MaxPoolOwners)
	}
	if len(p.Operators) > MaxPoolOperators {
		return shapeError(ErrTooManyOperators, "certificate: %d operators exceeds maximum %d", len(p.Operators), MaxPoolOperators)
	}
	if p.ManagementThreshold == 0 {
		return shapeError(ErrManagementThresholdZero, "certificate: management threshold must be at least 1")
	}
	if int(p.ManagementThreshold) > len(p.Owners) {
		return shapeError(ErrManagementThresholdAboveOwners, "certificate: management threshold %d exceeds %d owners", p.ManagementThreshold, len(p.Owners))
	}
	return nil
}

// ID computes the pool's content-hash identity from its registration
// certificate.
func (p PoolRegistration) ID() (PoolID, error) {
	w := codec.NewWriter(256)
	if err := p.encode(w); err != nil {
		return PoolID{}, err
	}
	return chainhash.HashB(w.Bytes()), nil
}

func (p PoolRegistration) encode(w *codec.Writer) error {
	if len(p.Owners) > 0xFF || len(p.Operators) > 0xFF {
		return fmt.Errorf("certificate: owner/operator count exceeds wire limit")
	}
	w.U8(uint8(len(p.Owners)))
	for _, o := range p.Owners {
		if len(o) != ed25519.PublicKeySize {
			return fmt.Errorf("certificate: owner key must be %d bytes", ed25519.PublicKeySize)
		}
		w.RawBytes(o)
	}
	w.U8(uint8(len(p.Operators)))
	for _, o := range p.Operators {
		if len(o) != ed25519.PublicKeySize {
			return fmt.Errorf("certificate: operator key must be %d bytes", ed25519.PublicKeySize)
		}
		w.RawBytes(o)
	}
	w.U8(p.ManagementThreshold)
	w.RawBytes(p.VRFPublicKey[:])
	w.RawBytes(p.KESPublicKey[:])
	w.U64(uint64(p.Tax.Fixed))
	w.U32(p.Tax.RatioNum)
	w.U32(p.Tax.RatioDenom)
	if p.Tax.HasCap {
		w.U8(1)
		w.U64(uint64(p.Tax.Cap))
	} else {
		w.U8(0)
	}
	if len(p.RewardAccount) != ed25519.PublicKeySize {
		return fmt.Errorf("certificate: reward account key must be %d bytes", ed25519.PublicKeySize)
	}
	w.RawBytes(p.RewardAccount)
	return nil
}

// PoolUpdate replaces a pool's mutable fields. Authorization is a
// ManagementSignature against the pool's current owner set and
// threshold, checked by the ledger at apply time (it alone knows the
// pool's current owners).
type PoolUpdate struct {
	PoolID        PoolID
	Operators     []ed25519.PublicKey
	VRFPublicKey  vrf.PublicKey
	KESPublicKey  kes.PublicKey
	Tax           Tax
	RewardAccount ed25519.PublicKey
}

// PoolRetirement schedules a pool's retirement at RetirementEpoch.
// Once applied, retirement is terminal: see DESIGN.md's Open Question
// decision on pool-update authorization against a retired pool.
type PoolRetirement struct {
	PoolID          PoolID
	RetirementEpoch uint32
}

// ManagementSignature is the owners'/operators' multisignature
// authorizing a PoolRegistration, PoolUpdate, or PoolRetirement: a
// bitmap marking which of the pool's owners signed, paired with their
// signatures in bitmap order.
type ManagementSignature struct {
	SignerBitmap bitset.Bitset
	Signatures   [][64]byte
}

// Verify checks that sig carries at least threshold valid signatures
// by distinct owners over msg, and that len(Signatures) matches the
// number of set bits in SignerBitmap.
func Verify(owners []ed25519.PublicKey, threshold uint8, msg []byte, sig ManagementSignature) error {
	signerCount := 0
	sigIdx := 0
	for i := range owners {
		if !sig.SignerBitmap.Get(i) {
			continue
		}
		if sigIdx >= len(sig.Signatures) {
			return shapeError(ErrNotEnoughSignatures, "certificate: signer bitmap names more owners than signatures provided")
		}
		s := sig.Signatures[sigIdx]
		sigIdx++
		if !ed25519.Verify(owners[i], msg, s[:]) {
			return shapeError(ErrNotEnoughSignatures, "certificate: signature by owner %d does not verify", i)
		}
		signerCount++
	}
	if sigIdx != len(sig.Signatures) {
		return shapeError(ErrNotEnoughSignatures, "certificate: %d signatures provided but signer bitmap names %d owners", len(sig.Signatures), sigIdx)
	}
	if signerCount < int(threshold) {
		return shapeError(ErrNotEnoughSignatures, "certificate: %d valid signatures, need %d", signerCount, threshold)
	}
	return nil
}

// NewManagementSignature builds a ManagementSignature over numOwners
// owners from signFn's signature for each of signerIndexes, in
// ascending index order.
func NewManagementSignature(numOwners int, signerIndexes []int, signFn func(ownerIndex int) [64]byte) ManagementSignature {
	bm := bitset.NewBytes(numOwners)
	sorted := append([]int(nil), signerIndexes...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] < sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	sigs := make([][64]byte, 0, len(sorted))
	for _, idx := range sorted {
		bm.Set(idx)
		sigs = append(sigs, signFn(idx))
	}
	return ManagementSignature{SignerBitmap: bm, Signatures: sigs}
}
