// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import "encoding/binary"

// Reader decodes big-endian primitives from an in-memory byte slice. It
// never allocates on the read path beyond what the caller's destination
// requires, and it never panics: every read that would run past the end
// of buf returns NotEnoughBytesError instead.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Len() < n {
		return nil, NotEnoughBytesError(r.Len(), n)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a big-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// U64 reads a big-endian uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// U128 reads a big-endian 128-bit quantity as (high, low) uint64 halves.
func (r *Reader) U128() (hi uint64, lo uint64, err error) {
	hi, err = r.U64()
	if err != nil {
		return 0, 0, err
	}
	lo, err = r.U64()
	if err != nil {
		return 0, 0, err
	}
	return hi, lo, nil
}

// Bytes reads exactly n raw bytes. The returned slice aliases the
// reader's backing array and must be copied by the caller if it will
// outlive subsequent reads from a reused buffer.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// FixedBytes reads exactly len(dst) bytes into dst.
func (r *Reader) FixedBytes(dst []byte) error {
	b, err := r.take(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// SizedBytes reads a u16 length prefix followed by that many raw bytes,
// failing with SizeTooBigError if the prefix exceeds maxSize.
func (r *Reader) SizedBytes(maxSize uint16) ([]byte, error) {
	n, err := r.U16()
	if err != nil {
		return nil, err
	}
	if n > maxSize {
		return nil, SizeTooBigError(uint64(n), uint64(maxSize))
	}
	return r.take(int(n))
}

// AssertEmpty fails with UnconsumedDataError if any bytes remain.
func (r *Reader) AssertEmpty() error {
	if r.Len() != 0 {
		return UnconsumedDataError(r.Len())
	}
	return nil
}

// ReadAll decodes buf with decode, then requires the entire buffer was
// consumed. This is the top-level helper spec §4.1 requires for every
// outermost decode (fragments, block headers, block0 documents): it is
// never valid for a fully-formed wire message to have trailing bytes.
func ReadAll(buf []byte, decode func(r *Reader) error) error {
	r := NewReader(buf)
	if err := decode(r); err != nil {
		return err
	}
	return r.AssertEmpty()
}
