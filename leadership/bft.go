// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leadership

import (
	"crypto/ed25519"

	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/blockdate"
)

// BFTSettings is the fixed, chain-wide ordered leader list spec §4.6's
// BFT discipline schedules slots against.
type BFTSettings struct {
	Leaders       []ed25519.PublicKey
	SlotsPerEpoch uint32
}

// LeaderForSlot returns `L[(e·slots_per_epoch + s) mod |L|]`, the
// leader spec §4.6 names for date.
func (s BFTSettings) LeaderForSlot(date blockdate.BlockDate) (ed25519.PublicKey, error) {
	if len(s.Leaders) == 0 {
		return nil, verifyError(FailNoLeaderForThisSlot, "leadership: BFT settings carry no leaders")
	}
	idx := (uint64(date.Epoch)*uint64(s.SlotsPerEpoch) + uint64(date.Slot)) % uint64(len(s.Leaders))
	return s.Leaders[idx], nil
}

func (s BFTSettings) verifyHeader(h block.Header) error {
	if h.Version != block.VersionBFT {
		return verifyError(FailIncompatibleBlockVersion, "leadership: expected a BFT header, got %s", h.Version)
	}
	leader, err := s.LeaderForSlot(h.BlockDate)
	if err != nil {
		return err
	}
	if !ed25519.PublicKey(h.BFTLeaderID).Equal(leader) {
		return verifyError(FailInvalidLeader, "leadership: header names a leader other than the one scheduled for %s", h.BlockDate)
	}
	if err := h.VerifyBFT(leader); err != nil {
		return verifyError(FailInvalidLeaderSignature, "leadership: %v", err)
	}
	return nil
}
