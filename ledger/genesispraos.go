// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/wyrmchain/wyrmd/address"
	"github.com/wyrmchain/wyrmd/certificate"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/leadership"
	"github.com/wyrmchain/wyrmd/value"
)

// addDelegatedStake folds amount into byPool according to d's kind: all
// of it for DelegationFull, or a Weight/TotalParts share per part for
// DelegationRatio, mirroring certificate.Delegation.ValidateShape's own
// reading of Parts. DelegationNone contributes nothing.
func addDelegatedStake(byPool map[certificate.PoolID]value.Value, d certificate.Delegation, amount value.Value) {
	switch d.Kind {
	case certificate.DelegationFull:
		sum, err := byPool[d.PoolID].Add(amount)
		if err != nil {
			// A pool's total stake cannot realistically reach
			// MaxValue; this guards the accumulation the same way
			// every other ledger total does and simply stops
			// crediting further on overflow.
			return
		}
		byPool[d.PoolID] = sum
	case certificate.DelegationRatio:
		for _, part := range d.Parts {
			share, err := amount.Scale(uint64(part.Weight))
			if err != nil {
				continue
			}
			share = value.Value(uint64(share) / uint64(d.TotalParts))
			sum, err := byPool[part.PoolID].Add(share)
			if err != nil {
				continue
			}
			byPool[part.PoolID] = sum
		}
	}
}

// GenesisPraosSnapshot aggregates the ledger's current stake
// distribution into the per-epoch view leadership.GenesisPraos
// verifies headers against: every pool active at epoch, the stake
// delegated to it from both accounts (Accounts' own Delegation field)
// and UTXO addresses (recorded in UTXODelegations by an
// OwnerStakeDelegation certificate), and the total those shares are
// measured against. nonce is the caller's already-folded epoch seed
// (leadership.FoldNonce accumulates it block by block through the
// prior epoch); activeSlotCoefficient is carried from Settings.
func (l *Ledger) GenesisPraosSnapshot(epoch uint32, nonce chainhash.Hash) leadership.GenesisPraosSnapshot {
	stakeByPool := make(map[certificate.PoolID]value.Value)

	for _, acc := range l.Accounts {
		addDelegatedStake(stakeByPool, acc.Delegation, acc.Balance)
	}

	// UTXODelegations is keyed by spending key, not by output, so every
	// UTXO must be walked once to find the stake each delegated key
	// currently controls.
	utxoStake := make(map[string]value.Value)
	for _, out := range l.UTXOs {
		keyer, ok := out.Address.(address.SpendingKeyer)
		if !ok {
			continue
		}
		key := spendingKeyString(keyer.SpendingKey())
		if _, delegated := l.UTXODelegations[key]; !delegated {
			continue
		}
		sum, err := utxoStake[key].Add(out.Value)
		if err != nil {
			continue
		}
		utxoStake[key] = sum
	}
	for key, amount := range utxoStake {
		addDelegatedStake(stakeByPool, l.UTXODelegations[key], amount)
	}

	var pools []leadership.PoolStake
	var total value.Value
	for id, pool := range l.Pools {
		if !pool.ActiveAt(epoch) {
			continue
		}
		stake := stakeByPool[id]
		pools = append(pools, leadership.PoolStake{
			PoolID: id,
			VRFKey: pool.Registration.VRFPublicKey,
			KESKey: pool.Registration.KESPublicKey,
			Stake:  stake,
		})
		if sum, err := total.Add(stake); err == nil {
			total = sum
		}
	}

	return leadership.GenesisPraosSnapshot{
		Epoch:                 epoch,
		Nonce:                 nonce,
		Pools:                 pools,
		TotalActiveStake:      total,
		ActiveSlotCoefficient: l.Settings.ActiveSlotCoefficient,
	}
}
