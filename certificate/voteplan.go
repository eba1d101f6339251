// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"fmt"

	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/chainhash"
)

// PayloadType selects whether a vote plan's ballots are cast in the
// clear or as committee-decrypted private ballots.
type PayloadType uint8

const (
	PayloadPublic PayloadType = iota
	PayloadPrivate
)

// VotePlanID identifies a vote plan by the content hash of its
// registration certificate.
type VotePlanID = chainhash.Hash

// Proposal is one question on a vote plan's ballot.
type Proposal struct {
	ExternalID [32]byte
	NumOptions uint8
	Action     uint8
}

// VotePlan registers a voting procedure: a window in which ballots may
// be cast, a subsequent window in which the result may be tallied, and
// the set of proposals being voted on.
type VotePlan struct {
	VoteStart          blockdate.BlockDate
	TallyStart         blockdate.BlockDate
	TallyEnd           blockdate.BlockDate
	Proposals          []Proposal
	PayloadType        PayloadType
	CommitteePublicKey []byte // present iff PayloadType == PayloadPrivate
}

// ValidateShape checks the vote plan's internal ordering and, for
// private plans, that a committee key was supplied.
func (p VotePlan) ValidateShape() error {
	if !p.VoteStart.Before(p.TallyStart) {
		return fmt.Errorf("certificate: vote plan tally_start must be after vote_start")
	}
	if !p.TallyStart.Before(p.TallyEnd) {
		return fmt.Errorf("certificate: vote plan tally_end must be after tally_start")
	}
	if len(p.Proposals) == 0 {
		return fmt.Errorf("certificate: vote plan must declare at least one proposal")
	}
	if p.PayloadType == PayloadPrivate && len(p.CommitteePublicKey) == 0 {
		return fmt.Errorf("certificate: a private vote plan requires a committee election public key")
	}
	return nil
}

// ID computes the vote plan's content-hash identity.
func (p VotePlan) ID() chainhash.Hash {
	d := chainhash.NewDigest()
	var dateBuf [8]byte
	writeDate := func(bd blockdate.BlockDate) {
		dateBuf[0] = byte(bd.Epoch >> 24)
		dateBuf[1] = byte(bd.Epoch >> 16)
		dateBuf[2] = byte(bd.Epoch >> 8)
		dateBuf[3] = byte(bd.Epoch)
		dateBuf[4] = byte(bd.Slot >> 24)
		dateBuf[5] = byte(bd.Slot >> 16)
		dateBuf[6] = byte(bd.Slot >> 8)
		dateBuf[7] = byte(bd.Slot)
		d.Write(dateBuf[:])
	}
	writeDate(p.VoteStart)
	writeDate(p.TallyStart)
	writeDate(p.TallyEnd)
	for _, pr := range p.Proposals {
		d.Write(pr.ExternalID[:])
		d.Write([]byte{pr.NumOptions, pr.Action})
	}
	d.Write([]byte{byte(p.PayloadType)})
	d.Write(p.CommitteePublicKey)
	return d.Sum()
}

// VoteCast casts a ballot on one proposal of a registered vote plan.
// PublicChoice holds a single option index for a public plan;
// PrivateChoice holds an encrypted ballot whose size depends on the
// proposal's option count for a private plan. IsPrivate selects which.
type VoteCast struct {
	VotePlanID    VotePlanID
	ProposalIndex uint8
	PublicChoice  uint8
	PrivateChoice []byte
	IsPrivate     bool
}

// ValidateShape checks PublicChoice is within range for a public cast
// against the given proposal.
func (c VoteCast) ValidateShape(proposal Proposal) error {
	if c.IsPrivate {
		return nil
	}
	if c.PublicChoice >= proposal.NumOptions {
		return shapeError(ErrVoteOptionOutOfRange, "certificate: vote option %d is out of range for %d options", c.PublicChoice, proposal.NumOptions)
	}
	return nil
}

// DecryptionShare is one committee member's share of a private vote
// plan's tally decryption.
type DecryptionShare struct {
	CommitteeMemberIndex uint8
	Share                []byte
}

// VoteTally finalizes a vote plan. Shares is empty for a public plan
// (the ledger sums voting weight directly) and carries one entry per
// committee member for a private plan.
type VoteTally struct {
	VotePlanID VotePlanID
	Shares     []DecryptionShare
}
