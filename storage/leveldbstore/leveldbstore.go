// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package leveldbstore implements storage.Store over
// github.com/syndtr/goleveldb, the same on-disk KV engine the teacher's
// database package wraps for exccd's chain state. Blocks are keyed by
// their header id; a single reserved key tracks the current tip.
package leveldbstore

import (
	"bytes"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/storage"
)

// blockKeyPrefix namespaces block records from the tip pointer, the
// only other entry this store keeps.
const blockKeyPrefix = 'b'

var tipKey = []byte{'t'}

// Store is a goleveldb-backed storage.Store.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if absent) a Store at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func blockKey(hash chainhash.Hash) []byte {
	key := make([]byte, 1+chainhash.HashSize)
	key[0] = blockKeyPrefix
	copy(key[1:], hash[:])
	return key
}

// Get implements storage.Store.
func (s *Store) Get(hash chainhash.Hash) (block.Block, bool, error) {
	raw, err := s.db.Get(blockKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return block.Block{}, false, nil
	}
	if err != nil {
		return block.Block{}, false, fmt.Errorf("leveldbstore: get %s: %w", hash, err)
	}
	b, err := block.DecodeAll(raw)
	if err != nil {
		return block.Block{}, false, fmt.Errorf("leveldbstore: decode %s: %w", hash, err)
	}
	return b, true, nil
}

// Put implements storage.Store, updating the tip pointer if b's
// ChainLength is the greatest seen so far.
func (s *Store) Put(b block.Block) error {
	raw, err := b.Bytes()
	if err != nil {
		return fmt.Errorf("leveldbstore: encode: %w", err)
	}
	id, err := b.Header.ID()
	if err != nil {
		return fmt.Errorf("leveldbstore: id: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put(blockKey(id), raw)

	tip, haveTip, err := s.tipLocked()
	if err != nil {
		return err
	}
	if !haveTip || b.Header.ChainLength > tip.ChainLength {
		batch.Put(tipKey, id[:])
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("leveldbstore: put %s: %w", id, err)
	}
	return nil
}

func (s *Store) tipLocked() (block.Header, bool, error) {
	raw, err := s.db.Get(tipKey, nil)
	if err == leveldb.ErrNotFound {
		return block.Header{}, false, nil
	}
	if err != nil {
		return block.Header{}, false, fmt.Errorf("leveldbstore: tip pointer: %w", err)
	}
	var id chainhash.Hash
	copy(id[:], raw)
	b, ok, err := s.Get(id)
	if err != nil {
		return block.Header{}, false, err
	}
	if !ok {
		return block.Header{}, false, fmt.Errorf("leveldbstore: tip pointer %s has no stored block", id)
	}
	return b.Header, true, nil
}

// Tip implements storage.Store.
func (s *Store) Tip() (block.Header, error) {
	h, ok, err := s.tipLocked()
	if err != nil {
		return block.Header{}, err
	}
	if !ok {
		return block.Header{}, leveldb.ErrNotFound
	}
	return h, nil
}

// FindClosestAncestor implements storage.Store by walking backward from
// to along ParentHash links.
func (s *Store) FindClosestAncestor(from []chainhash.Hash, to chainhash.Hash) (storage.Ancestor, bool, error) {
	cur := to
	var distance uint32
	for {
		b, ok, err := s.Get(cur)
		if err != nil {
			return storage.Ancestor{}, false, err
		}
		if !ok {
			return storage.Ancestor{}, false, nil
		}
		for _, candidate := range from {
			if candidate == cur {
				return storage.Ancestor{Hash: cur, Distance: distance}, true, nil
			}
		}
		if b.Header.ChainLength == 0 {
			return storage.Ancestor{}, false, nil
		}
		cur = b.Header.ParentHash
		distance++
	}
}

// SendBranchWith implements storage.Store by reconstructing the path
// backward from to to from, then replaying it forward through mapFn and
// sink.
func (s *Store) SendBranchWith(from, to chainhash.Hash, depthLimit uint32, mapFn func(block.Block) block.Block, sink func(block.Block) error) error {
	var path []block.Block
	cur := to
	for {
		if bytes.Equal(cur[:], from[:]) {
			break
		}
		if uint32(len(path)) >= depthLimit {
			return fmt.Errorf("leveldbstore: branch from %s to %s exceeds depth limit %d", from, to, depthLimit)
		}
		b, ok, err := s.Get(cur)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("leveldbstore: %s is not an ancestor of %s", from, to)
		}
		path = append(path, b)
		cur = b.Header.ParentHash
	}

	for i := len(path) - 1; i >= 0; i-- {
		if err := sink(mapFn(path[i])); err != nil {
			return err
		}
	}
	return nil
}
