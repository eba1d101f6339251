// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leadership

import (
	"encoding/binary"
	"math"

	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/certificate"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/codec"
	"github.com/wyrmchain/wyrmd/crypto/kes"
	"github.com/wyrmchain/wyrmd/crypto/vrf"
	"github.com/wyrmchain/wyrmd/value"
)

// PoolStake is one active pool's leadership-relevant state as of an
// epoch's stake-distribution snapshot.
type PoolStake struct {
	PoolID certificate.PoolID
	VRFKey vrf.PublicKey
	KESKey kes.PublicKey
	Stake  value.Value
}

// GenesisPraosSnapshot is the per-epoch state spec §4.6's GenesisPraos
// discipline verifies headers against: every active pool's declared
// stake and keys, the total active stake those shares are measured
// against, the active slot coefficient, and the epoch seed (derived
// from the prior epoch's folded nonce).
type GenesisPraosSnapshot struct {
	Epoch                 uint32
	Nonce                 chainhash.Hash
	Pools                 []PoolStake
	TotalActiveStake      value.Value
	ActiveSlotCoefficient float64
}

// poolByID finds a snapshot's entry for id, or ok=false if id is not an
// active pool this epoch.
func (s GenesisPraosSnapshot) poolByID(id certificate.PoolID) (PoolStake, bool) {
	for _, p := range s.Pools {
		if p.PoolID == id {
			return p, true
		}
	}
	return PoolStake{}, false
}

// SlotSeed derives the per-slot VRF input: the epoch's nonce bound to
// this specific (epoch, slot), per spec §4.6 ("the per-epoch seed
// concatenated with the slot index").
func (s GenesisPraosSnapshot) SlotSeed(date blockdate.BlockDate) []byte {
	w := codec.NewWriter(chainhash.HashSize + 8)
	w.RawBytes(s.Nonce[:])
	w.U32(date.Epoch)
	w.U32(date.Slot)
	return w.Bytes()
}

// FoldNonce accumulates a GenesisPraos block's VRF output into the
// running per-epoch nonce: `Blake2b-256(prior_nonce ∥ vrf_output)`,
// grounded on chain-impl-mockchain's leadership nonce-folding (§C.4).
// The accumulated result from every block in an epoch seeds the next
// epoch's GenesisPraosSnapshot.Nonce.
func FoldNonce(prior chainhash.Hash, vrfOutput chainhash.Hash) chainhash.Hash {
	d := chainhash.NewDigest()
	d.Write(prior[:])
	d.Write(vrfOutput[:])
	return d.Sum()
}

// phi is the standard Praos leader-probability function: the chance a
// participant holding fraction alpha of the active stake leads any
// given slot, given an active slot coefficient f.
func phi(alpha, f float64) float64 {
	return 1 - math.Pow(1-f, alpha)
}

// lotteryValue maps a VRF output's leading 8 bytes onto the unit
// interval [0, 1), the "leading lottery value" spec §4.6 compares
// against the phi threshold.
func lotteryValue(output chainhash.Hash) float64 {
	v := binary.BigEndian.Uint64(output[:8])
	return float64(v) / (float64(math.MaxUint64) + 1)
}

// kesPeriodForSlot derives the KES period a GenesisPraos header at date
// must sign under: the slot's offset within its epoch. original_source's
// exact period-length-per-epoch constant is not recoverable from the
// pack, so this core uses the slot offset directly, one period per slot
// — the simplest schedule consistent with spec §4.6's "correct period"
// requirement without inventing an unretrievable constant.
func kesPeriodForSlot(date blockdate.BlockDate) uint32 {
	return date.Slot
}

func (s GenesisPraosSnapshot) verifyHeader(h block.Header) (chainhash.Hash, error) {
	if h.Version != block.VersionGenesisPraos {
		return chainhash.Hash{}, verifyError(FailIncompatibleBlockVersion, "leadership: expected a GenesisPraos header, got %s", h.Version)
	}
	pool, ok := s.poolByID(h.PoolID)
	if !ok {
		return chainhash.Hash{}, verifyError(FailInvalidLeader, "leadership: pool %s is not active this epoch", h.PoolID)
	}
	if s.TotalActiveStake == 0 {
		return chainhash.Hash{}, verifyError(FailNoLeaderForThisSlot, "leadership: no active stake recorded for epoch %d", s.Epoch)
	}

	seed := s.SlotSeed(h.BlockDate)
	output, err := h.VerifyGenesisPraos(pool.VRFKey, pool.KESKey, seed, kesPeriodForSlot(h.BlockDate))
	if err != nil {
		return chainhash.Hash{}, verifyError(FailInvalidLeaderSignature, "leadership: %v", err)
	}

	alpha := float64(pool.Stake) / float64(s.TotalActiveStake)
	threshold := phi(alpha, s.ActiveSlotCoefficient)
	if lotteryValue(output) >= threshold {
		return chainhash.Hash{}, verifyError(FailNoLeaderForThisSlot, "leadership: pool %s did not win slot %s's lottery", h.PoolID, h.BlockDate)
	}
	return output, nil
}
