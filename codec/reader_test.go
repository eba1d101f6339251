// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import (
	"errors"
	"testing"
)

func TestReaderPrimitives(t *testing.T) {
	t.Parallel()

	w := NewWriter(0)
	w.U8(0x11)
	w.U16(0x2233)
	w.U32(0x44556677)
	w.U64(0x8899aabbccddeeff)
	w.SizedBytes([]byte("hello"))

	r := NewReader(w.Bytes())
	if v, err := r.U8(); err != nil || v != 0x11 {
		t.Fatalf("U8 = %#x, %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 0x2233 {
		t.Fatalf("U16 = %#x, %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 0x44556677 {
		t.Fatalf("U32 = %#x, %v", v, err)
	}
	if v, err := r.U64(); err != nil || v != 0x8899aabbccddeeff {
		t.Fatalf("U64 = %#x, %v", v, err)
	}
	b, err := r.SizedBytes(100)
	if err != nil || string(b) != "hello" {
		t.Fatalf("SizedBytes = %q, %v", b, err)
	}
	if err := r.AssertEmpty(); err != nil {
		t.Fatalf("AssertEmpty: %v", err)
	}
}

func TestReaderNotEnoughBytes(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.U32(); !errors.Is(err, ErrNotEnoughBytes) {
		t.Fatalf("expected ErrNotEnoughBytes, got %v", err)
	}
}

func TestReaderUnconsumedData(t *testing.T) {
	t.Parallel()

	err := ReadAll([]byte{0x01, 0x02, 0x03}, func(r *Reader) error {
		_, err := r.U8()
		return err
	})
	if !errors.Is(err, ErrUnconsumedData) {
		t.Fatalf("expected ErrUnconsumedData, got %v", err)
	}
}

func TestReaderSizeTooBig(t *testing.T) {
	t.Parallel()

	w := NewWriter(0)
	w.SizedBytes(make([]byte, 300))

	r := NewReader(w.Bytes())
	if _, err := r.SizedBytes(100); !errors.Is(err, ErrSizeTooBig) {
		t.Fatalf("expected ErrSizeTooBig, got %v", err)
	}
}

func TestUnknownTagError(t *testing.T) {
	t.Parallel()

	err := UnknownTagError(255)
	if !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}
