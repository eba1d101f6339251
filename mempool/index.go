// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"container/heap"

	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/value"
)

// fifoIndex is the pool's primary ordering: insertion order, the
// sequence the block builder replays candidates in.
type fifoIndex struct {
	list []chainhash.Hash
}

func newFIFOIndex() *fifoIndex { return &fifoIndex{} }

func (f *fifoIndex) pushBack(id chainhash.Hash)  { f.list = append(f.list, id) }
func (f *fifoIndex) pushFront(id chainhash.Hash) { f.list = append([]chainhash.Hash{id}, f.list...) }

func (f *fifoIndex) popFront() (chainhash.Hash, bool) {
	if len(f.list) == 0 {
		return chainhash.Hash{}, false
	}
	id := f.list[0]
	f.list = f.list[1:]
	return id, true
}

func (f *fifoIndex) removeID(id chainhash.Hash) {
	for i, cur := range f.list {
		if cur == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return
		}
	}
}

func (f *fifoIndex) order() []chainhash.Hash {
	return append([]chainhash.Hash(nil), f.list...)
}

// prioItem is one entry in a fee or size priority queue, grounded on
// other_examples' txPrioItem — an id paired with the score it's
// ordered by. index tracks its current heap slot so arbitrary entries
// (not just the root) can be removed in O(log n), the one thing
// txPrioItem's per-block-rebuilt queue never needed to support.
type prioItem struct {
	id    chainhash.Hash
	score uint64
	index int
}

type prioQueue []*prioItem

func (pq prioQueue) Len() int            { return len(pq) }
func (pq prioQueue) Less(i, j int) bool  { return pq[i].score < pq[j].score }
func (pq prioQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *prioQueue) Push(x interface{}) {
	item := x.(*prioItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *prioQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// scoreIndex is a min-ordered secondary index over fragment ids,
// usable for either the fee index or the size index depending on what
// score each insert is called with.
type scoreIndex struct {
	pq   prioQueue
	byID map[chainhash.Hash]*prioItem
}

func newScoreIndex() *scoreIndex {
	return &scoreIndex{byID: make(map[chainhash.Hash]*prioItem)}
}

func (s *scoreIndex) insert(id chainhash.Hash, score uint64) {
	if item, ok := s.byID[id]; ok {
		item.score = score
		heap.Fix(&s.pq, item.index)
		return
	}
	item := &prioItem{id: id, score: score}
	heap.Push(&s.pq, item)
	s.byID[id] = item
}

func (s *scoreIndex) remove(id chainhash.Hash) {
	item, ok := s.byID[id]
	if !ok {
		return
	}
	heap.Remove(&s.pq, item.index)
	delete(s.byID, id)
}

// feeIndex orders fragments by the fee they pay (§4.7's fee index).
type feeIndex struct{ *scoreIndex }

func newFeeIndex() *feeIndex { return &feeIndex{newScoreIndex()} }

func (f *feeIndex) insert(id chainhash.Hash, fee value.Value) {
	f.scoreIndex.insert(id, uint64(fee))
}

// sizeIndex orders fragments by their serialized byte size (§4.7's
// size index).
type sizeIndex struct{ *scoreIndex }

func newSizeIndex() *sizeIndex { return &sizeIndex{newScoreIndex()} }

func (s *sizeIndex) insert(id chainhash.Hash, size int) {
	s.scoreIndex.insert(id, uint64(size))
}
