// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fragment implements the tagged-union wire envelope spec
// §4.1/§7 describes for every ledger message: a u16 size prefix, a u8
// tag identifying the payload shape, and a tag-specific body, with the
// fragment's id defined as Blake2b-256 over tag‖body (the size prefix
// itself is never hashed). It plays the framing role the teacher's
// wire package plays for exccd's p2p messages, generalized from a
// magic-prefixed command-string envelope to this protocol's compact
// tag-byte envelope.
package fragment

import (
	"fmt"

	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/codec"
)

// Tag identifies a fragment's payload shape.
type Tag uint8

const (
	TagOldUtxoDeclaration   Tag = 0
	TagTransaction          Tag = 1
	TagCertificate          Tag = 2
	TagUpdateProposal       Tag = 3
	TagUpdateVote           Tag = 4
	TagStakeDelegation      Tag = 5
	TagOwnerStakeDelegation Tag = 6
	TagPoolRegistration     Tag = 7
	TagPoolRetirement       Tag = 8
	TagPoolUpdate           Tag = 9
	TagVotePlan             Tag = 10
	TagVoteCast             Tag = 11
	TagVoteTally            Tag = 12
	TagInitial              Tag = 13
)

func (t Tag) String() string {
	switch t {
	case TagOldUtxoDeclaration:
		return "old-utxo-declaration"
	case TagTransaction:
		return "transaction"
	case TagCertificate:
		return "certificate"
	case TagUpdateProposal:
		return "update-proposal"
	case TagUpdateVote:
		return "update-vote"
	case TagOwnerStakeDelegation:
		return "owner-stake-delegation"
	case TagStakeDelegation:
		return "stake-delegation"
	case TagPoolRegistration:
		return "pool-registration"
	case TagPoolRetirement:
		return "pool-retirement"
	case TagPoolUpdate:
		return "pool-update"
	case TagVotePlan:
		return "vote-plan"
	case TagVoteCast:
		return "vote-cast"
	case TagVoteTally:
		return "vote-tally"
	case TagInitial:
		return "initial"
	default:
		return fmt.Sprintf("unknown tag (%d)", byte(t))
	}
}

// MaxBodySize bounds a single fragment's tag-specific body, keeping
// (tag + body) representable in the u16 size prefix.
const MaxBodySize = 0xFFFE

// MempoolForbidden reports whether the protocol forbids fragments of
// this tag from ever entering the mempool: Initial only ever appears
// in block0, OldUtxoDeclaration and the update-system fragments are
// admitted solely by direct block application.
func (t Tag) MempoolForbidden() bool {
	switch t {
	case TagInitial, TagOldUtxoDeclaration, TagUpdateProposal, TagUpdateVote:
		return true
	default:
		return false
	}
}

// Fragment is the generic tagged envelope. Body holds the
// already-serialized, tag-specific payload; decoding that payload into
// a concrete transaction or certificate is the concern of the
// transaction and certificate packages, which both produce and
// consume Fragment values rather than duplicating the envelope.
type Fragment struct {
	Tag  Tag
	Body []byte
}

// New builds a Fragment, validating that body fits within the u16
// size prefix.
func New(tag Tag, body []byte) (Fragment, error) {
	if len(body) > MaxBodySize {
		return Fragment{}, fmt.Errorf("fragment: body of %d bytes exceeds maximum %d", len(body), MaxBodySize)
	}
	return Fragment{Tag: tag, Body: body}, nil
}

// ID computes the fragment's content id: Blake2b-256 over tag‖body.
// The size prefix is never part of the hashed input.
func (f Fragment) ID() chainhash.Hash {
	d := chainhash.NewDigest()
	d.Write([]byte{byte(f.Tag)})
	d.Write(f.Body)
	return d.Sum()
}

// Encode appends the fragment's wire form (size ‖ tag ‖ body) to w.
func (f Fragment) Encode(w *codec.Writer) {
	w.U16(uint16(1 + len(f.Body)))
	w.U8(byte(f.Tag))
	w.RawBytes(f.Body)
}

// Bytes returns the fragment's standalone wire encoding.
func (f Fragment) Bytes() []byte {
	w := codec.NewWriter(3 + len(f.Body))
	f.Encode(w)
	return w.Bytes()
}

// Decode reads one size-prefixed fragment from r.
func Decode(r *codec.Reader) (Fragment, error) {
	size, err := r.U16()
	if err != nil {
		return Fragment{}, err
	}
	if size < 1 {
		return Fragment{}, codec.StructureInvalidError("fragment: size prefix must cover at least the tag byte")
	}
	raw, err := r.Bytes(int(size))
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Tag: Tag(raw[0]), Body: append([]byte(nil), raw[1:]...)}, nil
}

// DecodeAll decodes a single standalone fragment from buf, requiring
// the entire buffer be consumed.
func DecodeAll(buf []byte) (Fragment, error) {
	var f Fragment
	err := codec.ReadAll(buf, func(r *codec.Reader) error {
		var innerErr error
		f, innerErr = Decode(r)
		return innerErr
	})
	return f, err
}
