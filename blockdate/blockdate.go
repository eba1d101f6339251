// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockdate implements the (epoch, slot) pair spec §3/§4.6
// uses everywhere a point in the chain's logical time is compared:
// block headers, vote plan windows, and leadership schedules. It is
// its own package rather than living inside block or ledger because
// certificate, block, and leadership all need it without importing
// one another.
package blockdate

import "fmt"

// BlockDate identifies a slot within an epoch. The zero value is the
// genesis date (epoch 0, slot 0).
type BlockDate struct {
	Epoch uint32
	Slot  uint32
}

// Compare returns -1, 0, or 1 as d is lexicographically less than,
// equal to, or greater than other, ordered first by Epoch then by
// Slot, per spec invariant (d).
func (d BlockDate) Compare(other BlockDate) int {
	switch {
	case d.Epoch < other.Epoch:
		return -1
	case d.Epoch > other.Epoch:
		return 1
	case d.Slot < other.Slot:
		return -1
	case d.Slot > other.Slot:
		return 1
	default:
		return 0
	}
}

// Before reports whether d is strictly earlier than other.
func (d BlockDate) Before(other BlockDate) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly later than other.
func (d BlockDate) After(other BlockDate) bool { return d.Compare(other) > 0 }

// InWindow reports whether d lies in [start, end), the half-open
// window shape spec §4.5 uses for vote casting and tallying.
func (d BlockDate) InWindow(start, end BlockDate) bool {
	return !d.Before(start) && d.Before(end)
}

// String renders the date as "epoch.slot".
func (d BlockDate) String() string {
	return fmt.Sprintf("%d.%d", d.Epoch, d.Slot)
}
