// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"fmt"

	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/codec"
	"github.com/wyrmchain/wyrmd/fragment"
)

// Block is a Header plus its ordered Contents: the concatenation of
// every fragment's own size-prefixed wire encoding, per spec §3.
type Block struct {
	Header   Header
	Contents []fragment.Fragment
}

// ContentBytes returns the exact byte sequence ContentHash is computed
// over: each fragment's standalone (size ‖ tag ‖ body) encoding, back
// to back, in order.
func (b Block) ContentBytes() []byte {
	w := codec.NewWriter(256)
	for _, f := range b.Contents {
		f.Encode(w)
	}
	return w.Bytes()
}

// ContentHash computes Blake2b-256 over ContentBytes.
func (b Block) ContentHash() chainhash.Hash {
	return chainhash.HashB(b.ContentBytes())
}

// Finalize sets Header.ContentSize and Header.ContentHash from the
// current Contents, matching spec invariant (e). Callers still need to
// fill in BlockDate, ChainLength, ParentHash, and the version-specific
// suffix themselves before the header is ready to sign.
func (b *Block) Finalize() {
	content := b.ContentBytes()
	b.Header.ContentSize = uint32(len(content))
	b.Header.ContentHash = chainhash.HashB(content)
}

// Encode appends the block's wire form (header, then contents) to w.
func (b Block) Encode(w *codec.Writer) error {
	if err := b.Header.Encode(w); err != nil {
		return err
	}
	for _, f := range b.Contents {
		f.Encode(w)
	}
	return nil
}

// Bytes returns the block's standalone wire encoding.
func (b Block) Bytes() ([]byte, error) {
	w := codec.NewWriter(512)
	if err := b.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeAll decodes a single standalone block from buf, requiring the
// entire buffer be consumed.
func DecodeAll(buf []byte) (Block, error) {
	var b Block
	err := codec.ReadAll(buf, func(r *codec.Reader) error {
		h, err := DecodeHeader(r)
		if err != nil {
			return err
		}
		b.Header = h
		contentBuf, err := r.Bytes(int(h.ContentSize))
		if err != nil {
			return err
		}
		cr := codec.NewReader(contentBuf)
		for cr.Len() > 0 {
			f, err := fragment.Decode(cr)
			if err != nil {
				return err
			}
			b.Contents = append(b.Contents, f)
		}
		return nil
	})
	return b, err
}

// Validate checks this block's header against spec invariants (d) and
// (e) given its immediate parent. It does not apply the block's
// fragments to a ledger; that is ledger.ApplyFragment's job, one
// fragment at a time, once the header itself has been accepted.
func (b Block) Validate(parent Header) error {
	content := b.ContentBytes()
	if int(b.Header.ContentSize) != len(content) {
		return fmt.Errorf("block: content_size %d does not match actual content length %d", b.Header.ContentSize, len(content))
	}
	if b.Header.ContentHash != chainhash.HashB(content) {
		return fmt.Errorf("block: content_hash does not match contents")
	}
	parentID, err := parent.ID()
	if err != nil {
		return err
	}
	if b.Header.ParentHash != parentID {
		return fmt.Errorf("block: parent_hash does not match parent header's id")
	}
	if b.Header.ChainLength != parent.ChainLength+1 {
		return fmt.Errorf("block: chain_length %d is not parent's %d + 1", b.Header.ChainLength, parent.ChainLength)
	}
	if !b.Header.BlockDate.After(parent.BlockDate) {
		return fmt.Errorf("block: block_date %s does not strictly follow parent's %s", b.Header.BlockDate, parent.BlockDate)
	}
	return nil
}
