// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdate

import "testing"

func TestCompare(t *testing.T) {
	t.Parallel()

	a := BlockDate{Epoch: 1, Slot: 5}
	b := BlockDate{Epoch: 1, Slot: 10}
	c := BlockDate{Epoch: 2, Slot: 0}

	if !a.Before(b) {
		t.Fatal("a should be before b")
	}
	if !b.Before(c) {
		t.Fatal("b should be before c (epoch dominates slot)")
	}
	if !c.After(a) {
		t.Fatal("c should be after a")
	}
	if a.Compare(a) != 0 {
		t.Fatal("a should compare equal to itself")
	}
}

func TestInWindow(t *testing.T) {
	t.Parallel()

	start := BlockDate{Epoch: 1, Slot: 0}
	end := BlockDate{Epoch: 2, Slot: 0}

	if !(BlockDate{Epoch: 1, Slot: 50}).InWindow(start, end) {
		t.Fatal("a date inside the window should report true")
	}
	if (BlockDate{Epoch: 2, Slot: 0}).InWindow(start, end) {
		t.Fatal("the window's end date is exclusive")
	}
	if !(BlockDate{Epoch: 1, Slot: 0}).InWindow(start, end) {
		t.Fatal("the window's start date is inclusive")
	}
}
