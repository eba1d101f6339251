// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockbuilder selects fragments from a mempool into a block
// under a size budget and two wall-clock deadlines (spec §4.8). It
// plays the template-building role internal/mining played for exccd,
// generalized from "assemble a block of transactions ranked by fee
// rate" to "trial-apply each candidate against a ledger snapshot and
// race that trial against a soft and a hard deadline", since this
// ledger's apply step can fail for reasons a fee-rate heuristic alone
// can't predict (bad witnesses, stale spending counters, retired
// pools).
package blockbuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/fragment"
	"github.com/wyrmchain/wyrmd/fragstatus"
	"github.com/wyrmchain/wyrmd/ledger"
	"github.com/wyrmchain/wyrmd/mempool"
)

// Result is Build's outcome: the block's contents in final order, the
// ledger reached by applying them in sequence, and how many candidates
// were rejected outright (as opposed to merely returned to the pool).
type Result struct {
	Contents      []fragment.Fragment
	Ledger        *ledger.Ledger
	RejectedCount int
}

// Build drains pool in FIFO order against a trial ledger seeded from l,
// committing every fragment that applies cleanly within space and time
// budget. l itself is never mutated: Result.Ledger is a fresh snapshot.
// ctx governs early cancellation on top of the two deadlines spec §4.8
// names; softDeadline and hardDeadline are absolute times.
func Build(ctx context.Context, now blockdate.BlockDate, l *ledger.Ledger, pool *mempool.Pool, status *fragstatus.Log, softDeadline, hardDeadline time.Time) Result {
	working := l.Clone()
	maxSize := int64(working.Settings.BlockContentMaxSize)
	spaceLeft := maxSize

	softCtx, cancelSoft := context.WithDeadline(ctx, softDeadline)
	defer cancelSoft()
	hardCtx, cancelHard := context.WithDeadline(ctx, hardDeadline)
	defer cancelHard()

	var contents []fragment.Fragment
	var returned []fragment.Fragment
	rejected := 0

	reject := func(f fragment.Fragment, err error) {
		if status != nil {
			status.SetRejected(f.ID(), err)
		}
		pool.Remove(f.ID())
		rejected++
	}
	commit := func(f fragment.Fragment, trial *ledger.Ledger, sz int64) {
		working = trial
		spaceLeft -= sz
		contents = append(contents, f)
		pool.Remove(f.ID())
	}

candidates:
	for _, f := range pool.FIFOOrder() {
		select {
		case <-ctx.Done():
			returned = append(returned, f)
			break candidates
		default:
		}

		if spaceLeft == 0 {
			returned = append(returned, f)
			continue
		}

		raw := f.Bytes()
		sz := int64(len(raw))
		if sz > maxSize {
			reject(f, fmt.Errorf("blockbuilder: fragment exceeds max block size"))
			continue
		}
		if sz > spaceLeft {
			returned = append(returned, f)
			continue
		}

		trial := working.Clone()
		applied := make(chan error, 1)
		go func(frag fragment.Fragment) { applied <- trial.ApplyFragment(now, frag) }(f)

		select {
		case err := <-applied:
			if err != nil {
				reject(f, err)
				continue
			}
			commit(f, trial, sz)

		case <-softCtx.Done():
			if len(contents) > 0 {
				returned = append(returned, f)
				break candidates
			}
			select {
			case err := <-applied:
				if err != nil {
					reject(f, err)
					continue
				}
				commit(f, trial, sz)
			case <-hardCtx.Done():
				reject(f, fmt.Errorf("blockbuilder: cannot process a single fragment within the given time bounds"))
			}
		}
	}

	// Re-queue returned fragments preserving their original relative
	// order at the FIFO head: push in reverse so the earliest-returned
	// ends up frontmost.
	for i := len(returned) - 1; i >= 0; i-- {
		pool.PushFront(returned[i])
	}

	log.Debugf("blockbuilder: built block at %s: %d committed, %d rejected, %d returned",
		now, len(contents), rejected, len(returned))
	return Result{Contents: contents, Ledger: working, RejectedCount: rejected}
}
