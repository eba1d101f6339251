// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bech32

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeBytesRoundTrip(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 32)
	for i := range payload {
		payload[i] = byte(i * 3)
	}
	s, err := EncodeFromBytes("addr", payload)
	if err != nil {
		t.Fatalf("EncodeFromBytes: %v", err)
	}

	hrp, decoded, err := DecodeToBytes(s)
	if err != nil {
		t.Fatalf("DecodeToBytes: %v", err)
	}
	if hrp != "addr" {
		t.Fatalf("hrp = %q, want %q", hrp, "addr")
	}
	if !bytes.Equal(decoded, payload) {
		t.Fatalf("decoded payload = %x, want %x", decoded, payload)
	}
}

func TestDecodeRejectsBadChecksum(t *testing.T) {
	t.Parallel()

	s, err := EncodeFromBytes("ed25519pk", []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("EncodeFromBytes: %v", err)
	}
	tampered := []byte(s)
	last := tampered[len(tampered)-1]
	if last == 'q' {
		tampered[len(tampered)-1] = 'p'
	} else {
		tampered[len(tampered)-1] = 'q'
	}
	if _, _, err := DecodeToBytes(string(tampered)); err == nil {
		t.Fatal("Decode should reject a tampered checksum")
	}
}

func TestDecodeRejectsMixedCase(t *testing.T) {
	t.Parallel()

	s, err := EncodeFromBytes("pool", []byte{0xAB, 0xCD})
	if err != nil {
		t.Fatalf("EncodeFromBytes: %v", err)
	}
	b := []byte(s)
	b[0] -= 'a' - 'A' // flip just the first rune so the string is mixed case
	if _, _, err := Decode(string(b)); err == nil {
		t.Fatal("Decode should reject mixed-case input")
	}
}

func TestKnownVectorRoundTrip(t *testing.T) {
	t.Parallel()

	hrp := "split"
	data, err := ConvertBits([]byte("idempotent check"), 8, 5, true)
	if err != nil {
		t.Fatalf("ConvertBits: %v", err)
	}
	encoded, err := Encode(hrp, data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	gotHRP, gotData, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gotHRP != hrp {
		t.Fatalf("hrp = %q, want %q", gotHRP, hrp)
	}
	if !bytes.Equal(gotData, data) {
		t.Fatalf("data = %v, want %v", gotData, data)
	}
}
