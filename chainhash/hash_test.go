// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import "testing"

func TestHashRoundTrip(t *testing.T) {
	t.Parallel()

	h := HashB([]byte("jotunheim"))
	s := h.String()

	parsed, err := NewHashFromStr(s)
	if err != nil {
		t.Fatalf("NewHashFromStr: %v", err)
	}
	if parsed != h {
		t.Fatalf("round trip mismatch: got %v, want %v", parsed, h)
	}
}

func TestDigestIncremental(t *testing.T) {
	t.Parallel()

	whole := HashB([]byte("foobar"))

	d := NewDigest()
	d.Write([]byte("foo"))
	d.Write([]byte("bar"))
	if got := d.Sum(); got != whole {
		t.Fatalf("incremental digest = %v, want %v", got, whole)
	}
}

func TestZeroHash(t *testing.T) {
	t.Parallel()

	var h Hash
	if !h.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	if HashB([]byte{}).IsZero() {
		t.Fatal("hash of empty input should not be the zero hash")
	}
}
