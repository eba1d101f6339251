// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leadership

import (
	"sync"

	"github.com/wyrmchain/wyrmd/blockdate"
)

// Outcome records what happened (or is still pending) for a slot this
// node was, or might be, scheduled to lead. Grounded on
// chain-impl-mockchain's per-slot leadership log (§C.2).
type Outcome int

const (
	// OutcomeNone means this node was never scheduled to lead the slot.
	OutcomeNone Outcome = iota
	// OutcomePending means a block is being built for a slot this node
	// leads, but it has not yet been produced.
	OutcomePending
	// OutcomeLeader means this node produced and accepted a block for
	// the slot.
	OutcomeLeader
	// OutcomeNotLeader means the slot was checked and this node was not
	// the scheduled leader after all (e.g. a GenesisPraos lottery loss
	// discovered only after the snapshot settled).
	OutcomeNotLeader
	// OutcomeRejected means this node built a block for the slot but it
	// was rejected (by the ledger or by a peer).
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePending:
		return "pending"
	case OutcomeLeader:
		return "leader"
	case OutcomeNotLeader:
		return "not-leader"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Schedule is a bounded, concurrency-safe log of per-slot leadership
// outcomes, keyed by block date. The block builder does not read it.
type Schedule struct {
	mu      sync.Mutex
	maxSize int
	order   []blockdate.BlockDate
	records map[blockdate.BlockDate]Outcome
}

// NewSchedule returns an empty Schedule retaining at most maxSize
// records, evicting the oldest entry (by insertion order) once full.
func NewSchedule(maxSize int) *Schedule {
	return &Schedule{
		maxSize: maxSize,
		records: make(map[blockdate.BlockDate]Outcome),
	}
}

// Record sets date's outcome, evicting the oldest entry if the
// schedule is at capacity and date is not already present.
func (s *Schedule) Record(date blockdate.BlockDate, outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[date]; !exists {
		if s.maxSize > 0 && len(s.order) >= s.maxSize {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.records, oldest)
		}
		s.order = append(s.order, date)
	}
	s.records[date] = outcome
}

// Outcome returns date's recorded outcome, or OutcomeNone if nothing
// was ever recorded for it.
func (s *Schedule) Outcome(date blockdate.BlockDate) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[date]
}
