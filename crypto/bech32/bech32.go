// Copyright (c) 2017 Takatoshi Nakagawa
// Copyright (c) 2019 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bech32 implements the Bech32 text encoding spec §6 uses for
// every human-facing key, address, and certificate: a human-readable
// prefix, a '1' separator, a base-32 payload, and a BCH checksum that
// detects transcription errors up to several characters long. The
// retrieval pack's bech32 module shipped only a go.mod with no source,
// so this package is written directly against the BIP-0173 reference
// algorithm rather than adapted from a teacher file, in the style the
// teacher's other small self-contained encoders (chainhash, dcrutil's
// base58) use: a charset table, two pure encode/decode functions, and
// no package-level state.
package bech32

import (
	"fmt"
	"strings"
)

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// MaxLength is the maximum total encoded length spec §6 permits for a
// bech32 string (human-readable part + separator + data + checksum).
const MaxLength = 1023

var charsetRev = buildReverseCharset()

func buildReverseCharset() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i, c := range charset {
		rev[c] = int8(i)
	}
	return rev
}

func polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		b := byte(chk >> 25)
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (b>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for _, c := range hrp {
		out = append(out, byte(c)>>5)
	}
	out = append(out, 0)
	for _, c := range hrp {
		out = append(out, byte(c)&31)
	}
	return out
}

func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ 1
	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

func verifyChecksum(hrp string, data []byte) bool {
	return polymod(append(hrpExpand(hrp), data...)) == 1
}

// Encode renders hrp and the 5-bit-per-byte data as a bech32 string.
// data must already be grouped into 5-bit values, as ConvertBits
// produces; Encode does not itself regroup 8-bit bytes.
func Encode(hrp string, data []byte) (string, error) {
	if len(hrp) < 1 {
		return "", fmt.Errorf("bech32: human-readable part must not be empty")
	}
	for _, c := range hrp {
		if c < 33 || c > 126 {
			return "", fmt.Errorf("bech32: human-readable part contains invalid character %q", c)
		}
	}
	combined := append(data, createChecksum(hrp, data)...)
	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(combined))
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, b := range combined {
		if int(b) >= len(charset) {
			return "", fmt.Errorf("bech32: invalid 5-bit value %d", b)
		}
		sb.WriteByte(charset[b])
	}
	out := sb.String()
	if len(out) > MaxLength {
		return "", fmt.Errorf("bech32: encoded length %d exceeds maximum %d", len(out), MaxLength)
	}
	return out, nil
}

// Decode parses a bech32 string into its human-readable part and
// 5-bit-per-byte data payload (checksum stripped), verifying the BCH
// checksum.
func Decode(s string) (hrp string, data []byte, err error) {
	if len(s) < 8 || len(s) > MaxLength {
		return "", nil, fmt.Errorf("bech32: invalid length %d", len(s))
	}
	lower := strings.ToLower(s)
	upper := strings.ToUpper(s)
	if s != lower && s != upper {
		return "", nil, fmt.Errorf("bech32: mixed case is not allowed")
	}
	s = lower

	sep := strings.LastIndexByte(s, '1')
	if sep < 1 || sep+7 > len(s) {
		return "", nil, fmt.Errorf("bech32: separator '1' not found in a valid position")
	}
	hrp = s[:sep]
	for _, c := range hrp {
		if c < 33 || c > 126 {
			return "", nil, fmt.Errorf("bech32: human-readable part contains invalid character %q", c)
		}
	}

	dataPart := s[sep+1:]
	data = make([]byte, len(dataPart))
	for i := 0; i < len(dataPart); i++ {
		c := dataPart[i]
		if c >= 128 || charsetRev[c] == -1 {
			return "", nil, fmt.Errorf("bech32: invalid character %q in data part", c)
		}
		data[i] = byte(charsetRev[c])
	}

	if !verifyChecksum(hrp, data) {
		return "", nil, fmt.Errorf("bech32: invalid checksum")
	}
	return hrp, data[:len(data)-6], nil
}

// ConvertBits regroups a slice of fromBits-per-byte values into
// toBits-per-byte values, used to go between 8-bit payload bytes and
// the 5-bit values Encode/Decode operate on. When pad is true, the
// final group is zero-padded; when false, a non-zero partial final
// group is an error.
func ConvertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	if fromBits < 1 || fromBits > 8 || toBits < 1 || toBits > 8 {
		return nil, fmt.Errorf("bech32: bit group sizes must be in [1, 8]")
	}
	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1
	out := make([]byte, 0, (len(data)*int(fromBits)+int(toBits)-1)/int(toBits))
	for _, b := range data {
		if uint32(b)>>fromBits != 0 {
			return nil, fmt.Errorf("bech32: input value %d exceeds %d bits", b, fromBits)
		}
		acc = acc<<fromBits | uint32(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte((acc>>bits)&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte((acc<<(toBits-bits))&maxv))
		}
	} else if bits >= fromBits || (acc<<(toBits-bits))&maxv != 0 {
		return nil, fmt.Errorf("bech32: non-zero padding in final group")
	}
	return out, nil
}

// EncodeFromBytes converts raw 8-bit payload bytes to 5-bit groups and
// bech32-encodes them under hrp, the common case for fixed-width keys,
// hashes, and addresses.
func EncodeFromBytes(hrp string, payload []byte) (string, error) {
	data, err := ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return Encode(hrp, data)
}

// DecodeToBytes parses s and converts its 5-bit payload back to 8-bit
// bytes, the inverse of EncodeFromBytes.
func DecodeToBytes(s string) (hrp string, payload []byte, err error) {
	hrp, data, err := Decode(s)
	if err != nil {
		return "", nil, err
	}
	payload, err = ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("bech32: %w", err)
	}
	return hrp, payload, nil
}
