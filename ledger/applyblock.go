// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/wyrmchain/wyrmd/block"
)

// ApplyBlock validates b against parent (spec §3 invariants (d)/(e):
// content hash/size, chain length, block date, parent linkage) and
// then applies every fragment in b.Contents in order, against a clone
// of l. l itself is never mutated; on any failure — structural or from
// a single fragment — ApplyBlock returns that error and the clone is
// discarded, matching "apply_block consumes a validated block and
// yields a new ledger" (§4.4's Lifecycle note): prior ledger references,
// including l, stay valid for forks that never commit b.
func (l *Ledger) ApplyBlock(parent block.Header, b block.Block) (*Ledger, error) {
	if err := b.Validate(parent); err != nil {
		return nil, ruleError(ErrInvalidStructure, "ledger: %v", err)
	}

	next := l.Clone()
	for _, f := range b.Contents {
		if err := next.ApplyFragment(b.Header.BlockDate, f); err != nil {
			log.Warnf("ledger: block at %s rejected: %v", b.Header.BlockDate, err)
			return nil, err
		}
	}
	log.Debugf("ledger: applied block at %s (%d fragments)", b.Header.BlockDate, len(b.Contents))
	return next, nil
}
