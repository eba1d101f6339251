// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import "encoding/binary"

// Writer accumulates a big-endian encoded byte sequence. The zero value
// is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with cap bytes of initial capacity
// preallocated.
func NewWriter(cap int) *Writer {
	return &Writer{buf: make([]byte, 0, cap)}
}

// Bytes returns the accumulated byte sequence.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// U8 appends one byte.
func (w *Writer) U8(v uint8) {
	w.buf = append(w.buf, v)
}

// U16 appends a big-endian uint16.
func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// U32 appends a big-endian uint32.
func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// U64 appends a big-endian uint64.
func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// U128 appends a big-endian 128-bit quantity given as (high, low)
// uint64 halves.
func (w *Writer) U128(hi, lo uint64) {
	w.U64(hi)
	w.U64(lo)
}

// RawBytes appends raw bytes with no length prefix.
func (w *Writer) RawBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// SizedBytes appends a u16 length prefix followed by b. It panics if
// len(b) overflows a uint16, which indicates a caller bug (every sized
// field in this protocol is bounded well under 64KiB by construction).
func (w *Writer) SizedBytes(b []byte) {
	if len(b) > 0xFFFF {
		panic("codec: SizedBytes: payload exceeds uint16 length prefix")
	}
	w.U16(uint16(len(b)))
	w.RawBytes(b)
}
