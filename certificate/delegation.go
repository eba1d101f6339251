// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"crypto/ed25519"
	"fmt"
)

// DelegationKind selects an account's delegation shape.
type DelegationKind uint8

const (
	// DelegationNone means the account's stake does not count toward
	// any pool.
	DelegationNone DelegationKind = iota
	// DelegationFull delegates all of an account's stake to one pool.
	DelegationFull
	// DelegationRatio splits an account's stake across several pools
	// by integer weight.
	DelegationRatio
)

// DelegationRatioPart is one (pool, weight) pair of a Ratio
// delegation; the account's stake is split proportionally to Weight
// out of the delegation's TotalParts.
type DelegationRatioPart struct {
	PoolID PoolID
	Weight uint8
}

// Delegation is an account's current delegation target.
type Delegation struct {
	Kind       DelegationKind
	PoolID     PoolID                // meaningful when Kind == DelegationFull
	TotalParts uint8                 // meaningful when Kind == DelegationRatio
	Parts      []DelegationRatioPart // meaningful when Kind == DelegationRatio
}

// ValidateShape checks that a Ratio delegation's parts actually sum to
// TotalParts and that every weight is positive.
func (d Delegation) ValidateShape() error {
	if d.Kind != DelegationRatio {
		return nil
	}
	var sum int
	for _, p := range d.Parts {
		if p.Weight == 0 {
			return fmt.Errorf("certificate: ratio delegation part for pool %s has zero weight", p.PoolID)
		}
		sum += int(p.Weight)
	}
	if sum != int(d.TotalParts) {
		return fmt.Errorf("certificate: ratio delegation parts sum to %d, want %d", sum, d.TotalParts)
	}
	return nil
}

// StakeDelegation is an account's own certificate redirecting its
// delegation; it is authorized by AccountKey's own Ed25519 signature
// over the transaction, carried as the transaction's normal account
// witness rather than a separate payload-auth.
type StakeDelegation struct {
	AccountKey ed25519.PublicKey
	Delegation Delegation
}

// OwnerStakeDelegation redirects the delegation associated with a
// UTXO spending key rather than an account. It carries no key of its
// own: the ledger derives the owner identity from the same input
// witness that authorizes the enclosing transaction's first input,
// mirroring how original_source's owner-delegation certificates need
// no separate signature beyond the transaction's own.
type OwnerStakeDelegation struct {
	Delegation Delegation
}
