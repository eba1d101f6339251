// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"crypto/ed25519"

	"github.com/jrick/bitset"

	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/codec"
	"github.com/wyrmchain/wyrmd/value"
)

// Kind identifies which certificate payload a generic certificate
// fragment carries. Values match the standalone fragment tags the
// fragment package assigns to each certificate type, so a Kind read
// off the wire and a fragment.Tag read off the wire are numerically
// interchangeable.
type Kind uint8

const (
	KindStakeDelegation      Kind = 5
	KindOwnerStakeDelegation Kind = 6
	KindPoolRegistration     Kind = 7
	KindPoolRetirement       Kind = 8
	KindPoolUpdate           Kind = 9
	KindVotePlan             Kind = 10
	KindVoteCast             Kind = 11
	KindVoteTally            Kind = 12

	// KindMultisigDescriptor has no standalone fragment tag of its own;
	// it only ever travels through the generic certificate-bearing
	// transaction tag (2).
	KindMultisigDescriptor Kind = 13
)

func encodeDelegation(w *codec.Writer, d Delegation) {
	w.U8(uint8(d.Kind))
	switch d.Kind {
	case DelegationFull:
		w.RawBytes(d.PoolID[:])
	case DelegationRatio:
		w.U8(d.TotalParts)
		w.U8(uint8(len(d.Parts)))
		for _, p := range d.Parts {
			w.RawBytes(p.PoolID[:])
			w.U8(p.Weight)
		}
	}
}

func decodeDelegation(r *codec.Reader) (Delegation, error) {
	kindByte, err := r.U8()
	if err != nil {
		return Delegation{}, err
	}
	d := Delegation{Kind: DelegationKind(kindByte)}
	switch d.Kind {
	case DelegationFull:
		if err := r.FixedBytes(d.PoolID[:]); err != nil {
			return Delegation{}, err
		}
	case DelegationRatio:
		d.TotalParts, err = r.U8()
		if err != nil {
			return Delegation{}, err
		}
		n, err := r.U8()
		if err != nil {
			return Delegation{}, err
		}
		d.Parts = make([]DelegationRatioPart, n)
		for i := range d.Parts {
			if err := r.FixedBytes(d.Parts[i].PoolID[:]); err != nil {
				return Delegation{}, err
			}
			d.Parts[i].Weight, err = r.U8()
			if err != nil {
				return Delegation{}, err
			}
		}
	}
	return d, nil
}

// EncodeStakeDelegation serializes a StakeDelegation certificate body.
func EncodeStakeDelegation(c StakeDelegation) []byte {
	w := codec.NewWriter(64)
	w.RawBytes(c.AccountKey)
	encodeDelegation(w, c.Delegation)
	return w.Bytes()
}

// DecodeStakeDelegation parses a StakeDelegation certificate body.
func DecodeStakeDelegation(body []byte) (StakeDelegation, error) {
	var c StakeDelegation
	err := codec.ReadAll(body, func(r *codec.Reader) error {
		key := make([]byte, ed25519.PublicKeySize)
		if err := r.FixedBytes(key); err != nil {
			return err
		}
		c.AccountKey = ed25519.PublicKey(key)
		d, err := decodeDelegation(r)
		if err != nil {
			return err
		}
		c.Delegation = d
		return nil
	})
	return c, err
}

// EncodeOwnerStakeDelegation serializes an OwnerStakeDelegation body.
func EncodeOwnerStakeDelegation(c OwnerStakeDelegation) []byte {
	w := codec.NewWriter(48)
	encodeDelegation(w, c.Delegation)
	return w.Bytes()
}

// DecodeOwnerStakeDelegation parses an OwnerStakeDelegation body.
func DecodeOwnerStakeDelegation(body []byte) (OwnerStakeDelegation, error) {
	var c OwnerStakeDelegation
	err := codec.ReadAll(body, func(r *codec.Reader) error {
		d, err := decodeDelegation(r)
		if err != nil {
			return err
		}
		c.Delegation = d
		return nil
	})
	return c, err
}

func encodeTax(w *codec.Writer, t Tax) {
	w.U64(uint64(t.Fixed))
	w.U32(t.RatioNum)
	w.U32(t.RatioDenom)
	if t.HasCap {
		w.U8(1)
		w.U64(uint64(t.Cap))
	} else {
		w.U8(0)
	}
}

func decodeTax(r *codec.Reader) (Tax, error) {
	var t Tax
	fixed, err := r.U64()
	if err != nil {
		return t, err
	}
	t.Fixed = value.Value(fixed)
	if t.RatioNum, err = r.U32(); err != nil {
		return t, err
	}
	if t.RatioDenom, err = r.U32(); err != nil {
		return t, err
	}
	hasCap, err := r.U8()
	if err != nil {
		return t, err
	}
	if hasCap == 1 {
		t.HasCap = true
		capV, err := r.U64()
		if err != nil {
			return t, err
		}
		t.Cap = value.Value(capV)
	}
	return t, nil
}

// EncodePoolRegistration serializes a PoolRegistration certificate body.
// This is the same layout PoolRegistration.encode uses for its id hash.
func EncodePoolRegistration(p PoolRegistration) ([]byte, error) {
	w := codec.NewWriter(256)
	if err := p.encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodePoolRegistration parses a PoolRegistration certificate body.
func DecodePoolRegistration(body []byte) (PoolRegistration, error) {
	var p PoolRegistration
	err := codec.ReadAll(body, func(r *codec.Reader) error {
		n, err := r.U8()
		if err != nil {
			return err
		}
		p.Owners = make([]ed25519.PublicKey, n)
		for i := range p.Owners {
			key := make([]byte, ed25519.PublicKeySize)
			if err := r.FixedBytes(key); err != nil {
				return err
			}
			p.Owners[i] = ed25519.PublicKey(key)
		}
		n, err = r.U8()
		if err != nil {
			return err
		}
		p.Operators = make([]ed25519.PublicKey, n)
		for i := range p.Operators {
			key := make([]byte, ed25519.PublicKeySize)
			if err := r.FixedBytes(key); err != nil {
				return err
			}
			p.Operators[i] = ed25519.PublicKey(key)
		}
		if p.ManagementThreshold, err = r.U8(); err != nil {
			return err
		}
		if err := r.FixedBytes(p.VRFPublicKey[:]); err != nil {
			return err
		}
		if err := r.FixedBytes(p.KESPublicKey[:]); err != nil {
			return err
		}
		tax, err := decodeTax(r)
		if err != nil {
			return err
		}
		p.Tax = tax
		key := make([]byte, ed25519.PublicKeySize)
		if err := r.FixedBytes(key); err != nil {
			return err
		}
		p.RewardAccount = ed25519.PublicKey(key)
		return nil
	})
	return p, err
}

// EncodePoolUpdate serializes a PoolUpdate certificate body.
func EncodePoolUpdate(p PoolUpdate) []byte {
	w := codec.NewWriter(192)
	w.RawBytes(p.PoolID[:])
	w.U8(uint8(len(p.Operators)))
	for _, o := range p.Operators {
		w.RawBytes(o)
	}
	w.RawBytes(p.VRFPublicKey[:])
	w.RawBytes(p.KESPublicKey[:])
	encodeTax(w, p.Tax)
	w.RawBytes(p.RewardAccount)
	return w.Bytes()
}

// DecodePoolUpdate parses a PoolUpdate certificate body.
func DecodePoolUpdate(body []byte) (PoolUpdate, error) {
	var p PoolUpdate
	err := codec.ReadAll(body, func(r *codec.Reader) error {
		if err := r.FixedBytes(p.PoolID[:]); err != nil {
			return err
		}
		n, err := r.U8()
		if err != nil {
			return err
		}
		p.Operators = make([]ed25519.PublicKey, n)
		for i := range p.Operators {
			key := make([]byte, ed25519.PublicKeySize)
			if err := r.FixedBytes(key); err != nil {
				return err
			}
			p.Operators[i] = ed25519.PublicKey(key)
		}
		if err := r.FixedBytes(p.VRFPublicKey[:]); err != nil {
			return err
		}
		if err := r.FixedBytes(p.KESPublicKey[:]); err != nil {
			return err
		}
		tax, err := decodeTax(r)
		if err != nil {
			return err
		}
		p.Tax = tax
		key := make([]byte, ed25519.PublicKeySize)
		if err := r.FixedBytes(key); err != nil {
			return err
		}
		p.RewardAccount = ed25519.PublicKey(key)
		return nil
	})
	return p, err
}

// EncodePoolRetirement serializes a PoolRetirement certificate body.
func EncodePoolRetirement(p PoolRetirement) []byte {
	w := codec.NewWriter(36)
	w.RawBytes(p.PoolID[:])
	w.U32(p.RetirementEpoch)
	return w.Bytes()
}

// DecodePoolRetirement parses a PoolRetirement certificate body.
func DecodePoolRetirement(body []byte) (PoolRetirement, error) {
	var p PoolRetirement
	err := codec.ReadAll(body, func(r *codec.Reader) error {
		if err := r.FixedBytes(p.PoolID[:]); err != nil {
			return err
		}
		var err error
		p.RetirementEpoch, err = r.U32()
		return err
	})
	return p, err
}

// EncodeManagementSignature serializes a ManagementSignature for use as
// a certificate's payload-auth.
func EncodeManagementSignature(numOwners int, s ManagementSignature) []byte {
	w := codec.NewWriter(8 + 64*len(s.Signatures))
	bitmapBytes := (numOwners + 7) / 8
	raw := []byte(s.SignerBitmap)
	w.U8(uint8(bitmapBytes))
	padded := make([]byte, bitmapBytes)
	copy(padded, raw)
	w.RawBytes(padded)
	w.U8(uint8(len(s.Signatures)))
	for _, sig := range s.Signatures {
		w.RawBytes(sig[:])
	}
	return w.Bytes()
}

// DecodeManagementSignature parses a ManagementSignature payload-auth.
func DecodeManagementSignature(body []byte) (ManagementSignature, error) {
	var s ManagementSignature
	err := codec.ReadAll(body, func(r *codec.Reader) error {
		bitmapBytes, err := r.U8()
		if err != nil {
			return err
		}
		raw, err := r.Bytes(int(bitmapBytes))
		if err != nil {
			return err
		}
		s.SignerBitmap = bitset.Bitset(append([]byte(nil), raw...))
		n, err := r.U8()
		if err != nil {
			return err
		}
		s.Signatures = make([][64]byte, n)
		for i := range s.Signatures {
			if err := r.FixedBytes(s.Signatures[i][:]); err != nil {
				return err
			}
		}
		return nil
	})
	return s, err
}

func encodeBlockDate(w *codec.Writer, bd blockdate.BlockDate) {
	w.U32(bd.Epoch)
	w.U32(bd.Slot)
}

func decodeBlockDate(r *codec.Reader) (blockdate.BlockDate, error) {
	epoch, err := r.U32()
	if err != nil {
		return blockdate.BlockDate{}, err
	}
	slot, err := r.U32()
	if err != nil {
		return blockdate.BlockDate{}, err
	}
	return blockdate.BlockDate{Epoch: epoch, Slot: slot}, nil
}

// EncodeVotePlan serializes a VotePlan certificate body.
func EncodeVotePlan(p VotePlan) []byte {
	w := codec.NewWriter(128)
	encodeBlockDate(w, p.VoteStart)
	encodeBlockDate(w, p.TallyStart)
	encodeBlockDate(w, p.TallyEnd)
	w.U8(uint8(len(p.Proposals)))
	for _, pr := range p.Proposals {
		w.RawBytes(pr.ExternalID[:])
		w.U8(pr.NumOptions)
		w.U8(pr.Action)
	}
	w.U8(uint8(p.PayloadType))
	w.SizedBytes(p.CommitteePublicKey)
	return w.Bytes()
}

// DecodeVotePlan parses a VotePlan certificate body.
func DecodeVotePlan(body []byte) (VotePlan, error) {
	var p VotePlan
	err := codec.ReadAll(body, func(r *codec.Reader) error {
		var err error
		if p.VoteStart, err = decodeBlockDate(r); err != nil {
			return err
		}
		if p.TallyStart, err = decodeBlockDate(r); err != nil {
			return err
		}
		if p.TallyEnd, err = decodeBlockDate(r); err != nil {
			return err
		}
		n, err := r.U8()
		if err != nil {
			return err
		}
		p.Proposals = make([]Proposal, n)
		for i := range p.Proposals {
			if err := r.FixedBytes(p.Proposals[i].ExternalID[:]); err != nil {
				return err
			}
			if p.Proposals[i].NumOptions, err = r.U8(); err != nil {
				return err
			}
			if p.Proposals[i].Action, err = r.U8(); err != nil {
				return err
			}
		}
		payloadType, err := r.U8()
		if err != nil {
			return err
		}
		p.PayloadType = PayloadType(payloadType)
		p.CommitteePublicKey, err = r.SizedBytes(256)
		return err
	})
	return p, err
}

// EncodeVoteCast serializes a VoteCast certificate body.
func EncodeVoteCast(c VoteCast) []byte {
	w := codec.NewWriter(48)
	w.RawBytes(c.VotePlanID[:])
	w.U8(c.ProposalIndex)
	if c.IsPrivate {
		w.U8(1)
		w.SizedBytes(c.PrivateChoice)
	} else {
		w.U8(0)
		w.U8(c.PublicChoice)
	}
	return w.Bytes()
}

// DecodeVoteCast parses a VoteCast certificate body.
func DecodeVoteCast(body []byte) (VoteCast, error) {
	var c VoteCast
	err := codec.ReadAll(body, func(r *codec.Reader) error {
		if err := r.FixedBytes(c.VotePlanID[:]); err != nil {
			return err
		}
		var err error
		if c.ProposalIndex, err = r.U8(); err != nil {
			return err
		}
		private, err := r.U8()
		if err != nil {
			return err
		}
		if private == 1 {
			c.IsPrivate = true
			c.PrivateChoice, err = r.SizedBytes(1024)
			return err
		}
		c.PublicChoice, err = r.U8()
		return err
	})
	return c, err
}

// EncodeVoteTally serializes a VoteTally certificate body.
func EncodeVoteTally(t VoteTally) []byte {
	w := codec.NewWriter(32 + 64*len(t.Shares))
	w.RawBytes(t.VotePlanID[:])
	w.U8(uint8(len(t.Shares)))
	for _, s := range t.Shares {
		w.U8(s.CommitteeMemberIndex)
		w.SizedBytes(s.Share)
	}
	return w.Bytes()
}

// DecodeVoteTally parses a VoteTally certificate body.
func DecodeVoteTally(body []byte) (VoteTally, error) {
	var t VoteTally
	err := codec.ReadAll(body, func(r *codec.Reader) error {
		if err := r.FixedBytes(t.VotePlanID[:]); err != nil {
			return err
		}
		n, err := r.U8()
		if err != nil {
			return err
		}
		t.Shares = make([]DecryptionShare, n)
		for i := range t.Shares {
			if t.Shares[i].CommitteeMemberIndex, err = r.U8(); err != nil {
				return err
			}
			t.Shares[i].Share, err = r.SizedBytes(1024)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return t, err
}

