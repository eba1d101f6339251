// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"crypto/ed25519"
	"fmt"

	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/crypto/kes"
	"github.com/wyrmchain/wyrmd/crypto/vrf"
)

// VerifyBFT checks a VersionBFT header against leaderID, the leader
// spec §4.6 says the BFT schedule names for this header's slot. The
// caller (leadership.BFTSettings) is responsible for computing which key
// that is; this function checks that the header names that leader and
// that the header's signature verifies under it.
func (h Header) VerifyBFT(leaderID ed25519.PublicKey) error {
	if h.Version != VersionBFT {
		return fmt.Errorf("block: VerifyBFT called on a %s header", h.Version)
	}
	if !ed25519.PublicKey(h.BFTLeaderID).Equal(leaderID) {
		return fmt.Errorf("block: header leader id does not match the scheduled leader")
	}
	if !ed25519.Verify(leaderID, h.SignedBytes(), h.BFTSignature[:]) {
		return fmt.Errorf("block: BFT signature does not verify")
	}
	return nil
}

// VerifyGenesisPraos checks a VersionGenesisPraos header's VRF proof
// against vrfKey and its KES signature against kesKey at expectedPeriod.
// It returns the VRF output so the caller can run spec §4.6's lottery
// comparison against the pool's declared stake share; VerifyGenesisPraos
// itself only proves the proof and signature are well-formed, not that
// the pool actually won the slot.
func (h Header) VerifyGenesisPraos(vrfKey vrf.PublicKey, kesKey kes.PublicKey, seed []byte, expectedPeriod uint32) (lotteryOutput chainhash.Hash, err error) {
	if h.Version != VersionGenesisPraos {
		return lotteryOutput, fmt.Errorf("block: VerifyGenesisPraos called on a %s header", h.Version)
	}
	output, ok := vrf.Verify(vrfKey, seed, h.VRFProof)
	if !ok {
		return lotteryOutput, fmt.Errorf("block: VRF proof does not verify")
	}
	if err := kes.Verify(kesKey, h.SignedBytes(), h.KESSignature, expectedPeriod); err != nil {
		return lotteryOutput, fmt.Errorf("block: KES signature does not verify: %w", err)
	}
	return output, nil
}
