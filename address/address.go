// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package address implements the discriminated address model spec §4.1
// describes: a (discrimination, kind) pair binary-serialized as a
// tagged byte sequence and text-serialized as bech32 (spec §6), with a
// small set of capability interfaces callers type-assert against to
// reach kind-specific data — the same approach the teacher's
// txscript/stdaddr package uses (see its Hash160er/AddressPubKeyHasher/
// StakeAddress interfaces) to let generic code handle addresses
// uniformly while kind-specific code narrows with a type assertion,
// generalized here from exccd's single secp256k1-hash160 address
// family to this protocol's five Ed25519-keyed kinds.
package address

import (
	"crypto/ed25519"
	"fmt"

	bech32pkg "github.com/wyrmchain/wyrmd/crypto/bech32"
)

// Discrimination selects which network an address belongs to. It is
// folded into the wire tag byte and into the bech32 human-readable
// part, never into the key material itself, so the same key can appear
// validly under either discrimination.
type Discrimination byte

const (
	Production Discrimination = iota
	Test
)

// String returns "production" or "test".
func (d Discrimination) String() string {
	if d == Test {
		return "test"
	}
	return "production"
}

// Kind identifies which of the five address shapes a value holds.
type Kind byte

const (
	KindSingle Kind = iota + 1
	KindGroup
	KindAccount
	KindMultisig
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindGroup:
		return "group"
	case KindAccount:
		return "account"
	case KindMultisig:
		return "multisig"
	case KindScript:
		return "script"
	default:
		return fmt.Sprintf("unknown kind (%d)", byte(k))
	}
}

const discriminationBit = 0x80

// hrpFor returns the bech32 human-readable part for d: "addr" for
// production, "ta" for test, per spec §6.
func hrpFor(d Discrimination) string {
	if d == Test {
		return "ta"
	}
	return "addr"
}

func discriminationFromHRP(hrp string) (Discrimination, error) {
	switch hrp {
	case "addr":
		return Production, nil
	case "ta":
		return Test, nil
	default:
		return 0, fmt.Errorf("address: unrecognized human-readable part %q", hrp)
	}
}

// Address is satisfied by every kind of address. Kind-specific data is
// reached through capability interfaces (SpendingKeyer, AccountKeyer,
// MultisigIDer, ScriptIDer), not through Address itself.
type Address interface {
	Discrimination() Discrimination
	Kind() Kind
	// Bytes returns the discrimination-tagged wire encoding.
	Bytes() []byte
	String() string
}

// SpendingKeyer is implemented by address kinds carrying a spending
// key usable directly as a UtxoWitness verification key: Single and
// Group.
type SpendingKeyer interface {
	SpendingKey() ed25519.PublicKey
}

// AccountKeyer is implemented by address kinds carrying a delegation
// account key: Group and Account.
type AccountKeyer interface {
	AccountKey() ed25519.PublicKey
}

// MultisigIDer is implemented by Multisig addresses.
type MultisigIDer interface {
	MultisigID() [32]byte
}

// ScriptIDer is implemented by Script addresses.
type ScriptIDer interface {
	ScriptID() [32]byte
}

func tagByte(k Kind, d Discrimination) byte {
	tag := byte(k)
	if d == Test {
		tag |= discriminationBit
	}
	return tag
}

func untag(tag byte) (Kind, Discrimination) {
	d := Production
	if tag&discriminationBit != 0 {
		d = Test
	}
	return Kind(tag &^ discriminationBit), d
}

// SingleAddress spends directly against a single Ed25519 key.
type SingleAddress struct {
	discrimination Discrimination
	spendingKey    ed25519.PublicKey
}

// NewSingle builds a Single address from a 32-byte spending key.
func NewSingle(d Discrimination, spendingKey ed25519.PublicKey) (*SingleAddress, error) {
	if len(spendingKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("address: spending key must be %d bytes, got %d", ed25519.PublicKeySize, len(spendingKey))
	}
	return &SingleAddress{discrimination: d, spendingKey: spendingKey}, nil
}

func (a *SingleAddress) Discrimination() Discrimination { return a.discrimination }
func (a *SingleAddress) Kind() Kind                      { return KindSingle }
func (a *SingleAddress) SpendingKey() ed25519.PublicKey  { return a.spendingKey }

func (a *SingleAddress) Bytes() []byte {
	out := make([]byte, 0, 1+ed25519.PublicKeySize)
	out = append(out, tagByte(KindSingle, a.discrimination))
	out = append(out, a.spendingKey...)
	return out
}

func (a *SingleAddress) String() string {
	return mustEncode(a.discrimination, a.Bytes())
}

// GroupAddress spends against a spending key while also delegating
// rewards to an account key.
type GroupAddress struct {
	discrimination Discrimination
	spendingKey    ed25519.PublicKey
	accountKey     ed25519.PublicKey
}

// NewGroup builds a Group address from a spending key and the account
// key it delegates to.
func NewGroup(d Discrimination, spendingKey, accountKey ed25519.PublicKey) (*GroupAddress, error) {
	if len(spendingKey) != ed25519.PublicKeySize || len(accountKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("address: group keys must each be %d bytes", ed25519.PublicKeySize)
	}
	return &GroupAddress{discrimination: d, spendingKey: spendingKey, accountKey: accountKey}, nil
}

func (a *GroupAddress) Discrimination() Discrimination { return a.discrimination }
func (a *GroupAddress) Kind() Kind                      { return KindGroup }
func (a *GroupAddress) SpendingKey() ed25519.PublicKey  { return a.spendingKey }
func (a *GroupAddress) AccountKey() ed25519.PublicKey   { return a.accountKey }

func (a *GroupAddress) Bytes() []byte {
	out := make([]byte, 0, 1+2*ed25519.PublicKeySize)
	out = append(out, tagByte(KindGroup, a.discrimination))
	out = append(out, a.spendingKey...)
	out = append(out, a.accountKey...)
	return out
}

func (a *GroupAddress) String() string {
	return mustEncode(a.discrimination, a.Bytes())
}

// AccountAddress identifies an account directly; it has no spending
// key of its own, only the account key that signs AccountWitnesses.
type AccountAddress struct {
	discrimination Discrimination
	accountKey     ed25519.PublicKey
}

// NewAccount builds an Account address from its account key.
func NewAccount(d Discrimination, accountKey ed25519.PublicKey) (*AccountAddress, error) {
	if len(accountKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("address: account key must be %d bytes, got %d", ed25519.PublicKeySize, len(accountKey))
	}
	return &AccountAddress{discrimination: d, accountKey: accountKey}, nil
}

func (a *AccountAddress) Discrimination() Discrimination { return a.discrimination }
func (a *AccountAddress) Kind() Kind                      { return KindAccount }
func (a *AccountAddress) AccountKey() ed25519.PublicKey   { return a.accountKey }

func (a *AccountAddress) Bytes() []byte {
	out := make([]byte, 0, 1+ed25519.PublicKeySize)
	out = append(out, tagByte(KindAccount, a.discrimination))
	out = append(out, a.accountKey...)
	return out
}

func (a *AccountAddress) String() string {
	return mustEncode(a.discrimination, a.Bytes())
}

// MultisigAddress identifies a multisig descriptor by id; the
// descriptor itself (threshold, owner keys) lives in the ledger's
// multisig registry, not in the address.
type MultisigAddress struct {
	discrimination Discrimination
	id             [32]byte
}

// NewMultisig builds a Multisig address from a 32-byte descriptor id.
func NewMultisig(d Discrimination, id [32]byte) *MultisigAddress {
	return &MultisigAddress{discrimination: d, id: id}
}

func (a *MultisigAddress) Discrimination() Discrimination { return a.discrimination }
func (a *MultisigAddress) Kind() Kind                      { return KindMultisig }
func (a *MultisigAddress) MultisigID() [32]byte            { return a.id }

func (a *MultisigAddress) Bytes() []byte {
	out := make([]byte, 0, 1+32)
	out = append(out, tagByte(KindMultisig, a.discrimination))
	out = append(out, a.id[:]...)
	return out
}

func (a *MultisigAddress) String() string {
	return mustEncode(a.discrimination, a.Bytes())
}

// ScriptAddress identifies a script by id.
type ScriptAddress struct {
	discrimination Discrimination
	id             [32]byte
}

// NewScript builds a Script address from a 32-byte script id.
func NewScript(d Discrimination, id [32]byte) *ScriptAddress {
	return &ScriptAddress{discrimination: d, id: id}
}

func (a *ScriptAddress) Discrimination() Discrimination { return a.discrimination }
func (a *ScriptAddress) Kind() Kind                      { return KindScript }
func (a *ScriptAddress) ScriptID() [32]byte               { return a.id }

func (a *ScriptAddress) Bytes() []byte {
	out := make([]byte, 0, 1+32)
	out = append(out, tagByte(KindScript, a.discrimination))
	out = append(out, a.id[:]...)
	return out
}

func (a *ScriptAddress) String() string {
	return mustEncode(a.discrimination, a.Bytes())
}

func mustEncode(d Discrimination, raw []byte) string {
	s, err := bech32pkg.EncodeFromBytes(hrpFor(d), raw)
	if err != nil {
		// Only reachable if raw exceeds bech32.MaxLength, which none of
		// these fixed-size encodings ever do.
		panic(err)
	}
	return s
}

// DecodeBytes parses a discrimination-tagged wire encoding into the
// concrete Address it names.
func DecodeBytes(raw []byte) (Address, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("address: empty encoding")
	}
	kind, d := untag(raw[0])
	body := raw[1:]
	switch kind {
	case KindSingle:
		if len(body) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("address: single address body has wrong length %d", len(body))
		}
		return NewSingle(d, append(ed25519.PublicKey(nil), body...))
	case KindGroup:
		if len(body) != 2*ed25519.PublicKeySize {
			return nil, fmt.Errorf("address: group address body has wrong length %d", len(body))
		}
		return NewGroup(d, append(ed25519.PublicKey(nil), body[:32]...), append(ed25519.PublicKey(nil), body[32:]...))
	case KindAccount:
		if len(body) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("address: account address body has wrong length %d", len(body))
		}
		return NewAccount(d, append(ed25519.PublicKey(nil), body...))
	case KindMultisig:
		if len(body) != 32 {
			return nil, fmt.Errorf("address: multisig address body has wrong length %d", len(body))
		}
		var id [32]byte
		copy(id[:], body)
		return NewMultisig(d, id), nil
	case KindScript:
		if len(body) != 32 {
			return nil, fmt.Errorf("address: script address body has wrong length %d", len(body))
		}
		var id [32]byte
		copy(id[:], body)
		return NewScript(d, id), nil
	default:
		return nil, fmt.Errorf("address: unrecognized kind tag %d", raw[0])
	}
}

// Decode parses a bech32-encoded address, checking that its
// human-readable part matches the discrimination tagged inside the
// payload.
func Decode(s string) (Address, error) {
	hrp, raw, err := bech32pkg.DecodeToBytes(s)
	if err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}
	wantDiscrimination, err := discriminationFromHRP(hrp)
	if err != nil {
		return nil, err
	}
	addr, err := DecodeBytes(raw)
	if err != nil {
		return nil, err
	}
	if addr.Discrimination() != wantDiscrimination {
		return nil, fmt.Errorf("address: human-readable part %q does not match encoded discrimination %v", hrp, addr.Discrimination())
	}
	return addr, nil
}
