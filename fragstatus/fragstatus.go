// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fragstatus implements the fragment status log mempool
// admission and the block builder both write through, and the external
// REST front-end (out of scope here) reads: a bounded record of *why*
// a fragment left the pool, grounded on original_source's
// FragmentLog/FragmentStatus (§C.1).
package fragstatus

import (
	"sync"

	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/chainhash"
)

// Kind discriminates a Status's variant.
type Kind int

const (
	// Pending means the fragment is in the mempool awaiting inclusion.
	Pending Kind = iota
	// Rejected means the fragment was refused admission or trial-apply
	// and will never be reconsidered.
	Rejected
	// InABlock means the fragment was included in an accepted block.
	InABlock
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Rejected:
		return "rejected"
	case InABlock:
		return "in-a-block"
	default:
		return "unknown"
	}
}

// Status is one fragment's current disposition.
type Status struct {
	Kind Kind

	// Reason is set only for Rejected: the error message chain that
	// caused rejection.
	Reason string

	// Date and BlockHash are set only for InABlock: the block date and
	// content hash the fragment was included under.
	Date      blockdate.BlockDate
	BlockHash chainhash.Hash
}

// Log is a bounded fragment_id → Status map. It evicts the oldest
// insertion once full, the same FIFO-eviction shape mempool.Pool uses,
// so a fragment's status survives exactly as long as the mempool slot
// it once occupied would have.
type Log struct {
	mu      sync.Mutex
	maxSize int
	order   []chainhash.Hash
	entries map[chainhash.Hash]Status
}

// New returns an empty Log retaining at most maxSize entries.
func New(maxSize int) *Log {
	return &Log{maxSize: maxSize, entries: make(map[chainhash.Hash]Status)}
}

// Set records id's status, evicting the oldest entry if the log is at
// capacity and id is not already present.
func (l *Log) Set(id chainhash.Hash, status Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.entries[id]; !exists {
		if l.maxSize > 0 && len(l.order) >= l.maxSize {
			oldest := l.order[0]
			l.order = l.order[1:]
			delete(l.entries, oldest)
		}
		l.order = append(l.order, id)
	}
	l.entries[id] = status
}

// SetRejected is a convenience wrapper recording a Rejected status with
// reason derived from err.
func (l *Log) SetRejected(id chainhash.Hash, err error) {
	l.Set(id, Status{Kind: Rejected, Reason: err.Error()})
}

// SetInABlock is a convenience wrapper recording an InABlock status.
func (l *Log) SetInABlock(id chainhash.Hash, date blockdate.BlockDate, blockHash chainhash.Hash) {
	l.Set(id, Status{Kind: InABlock, Date: date, BlockHash: blockHash})
}

// Get returns id's recorded status and whether one exists.
func (l *Log) Get(id chainhash.Hash) (Status, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.entries[id]
	return s, ok
}
