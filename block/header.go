// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package block implements the header/contents shape spec §3/§4.6
// describes: a fixed prefix common to every header (version, content
// size, block date, chain length, content hash, parent hash) followed
// by a version-specific suffix carrying whatever proves the block's
// producer was entitled to the slot. It plays the role wire.BlockHeader
// plays for exccd, generalized from a single proof-of-work suffix to
// three interchangeable leadership proofs (BFT, GenesisPraos, none).
package block

import (
	"crypto/ed25519"
	"fmt"

	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/certificate"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/codec"
	"github.com/wyrmchain/wyrmd/crypto/kes"
	"github.com/wyrmchain/wyrmd/crypto/vrf"
)

// Version selects which leadership discipline produced a header's
// suffix.
type Version uint16

const (
	// VersionNone marks a header with no leadership suffix at all:
	// block0 and test chains that skip consensus entirely.
	VersionNone Version = 0
	// VersionBFT marks a header signed by one of a fixed leader list.
	VersionBFT Version = 1
	// VersionGenesisPraos marks a header produced by a stake pool that
	// won the per-slot VRF lottery.
	VersionGenesisPraos Version = 2
)

func (v Version) String() string {
	switch v {
	case VersionNone:
		return "none"
	case VersionBFT:
		return "bft"
	case VersionGenesisPraos:
		return "genesis-praos"
	default:
		return fmt.Sprintf("unknown version (%d)", uint16(v))
	}
}

// Header is the fixed prefix shared by every block plus whichever
// version-specific suffix Version selects. Only the fields matching
// Version are meaningful; the zero value of the others is ignored by
// Encode and never populated by Decode.
type Header struct {
	Version     Version
	ContentSize uint32
	BlockDate   blockdate.BlockDate
	ChainLength uint32
	ContentHash chainhash.Hash
	ParentHash  chainhash.Hash

	// BFT suffix.
	BFTLeaderID  ed25519.PublicKey
	BFTSignature [64]byte

	// GenesisPraos suffix.
	PoolID       certificate.PoolID
	VRFProof     vrf.Proof
	KESSignature kes.Signature
}

// SignedBytes returns the fixed prefix alone: the exact message a BFT
// Ed25519 signature or a GenesisPraos KES signature is computed over.
// It never includes the suffix being computed, so signing and
// verifying both start from the same bytes regardless of version.
func (h Header) SignedBytes() []byte {
	w := codec.NewWriter(2 + 4 + 8 + 4 + chainhash.HashSize*2)
	h.encodePrefix(w)
	return w.Bytes()
}

func (h Header) encodePrefix(w *codec.Writer) {
	w.U16(uint16(h.Version))
	w.U32(h.ContentSize)
	w.U32(h.BlockDate.Epoch)
	w.U32(h.BlockDate.Slot)
	w.U32(h.ChainLength)
	w.RawBytes(h.ContentHash[:])
	w.RawBytes(h.ParentHash[:])
}

// Encode appends the header's full wire form (prefix plus whichever
// suffix Version selects) to w.
func (h Header) Encode(w *codec.Writer) error {
	h.encodePrefix(w)
	switch h.Version {
	case VersionNone:
		return nil
	case VersionBFT:
		if len(h.BFTLeaderID) != ed25519.PublicKeySize {
			return fmt.Errorf("block: BFT header leader id must be %d bytes, got %d", ed25519.PublicKeySize, len(h.BFTLeaderID))
		}
		w.RawBytes(h.BFTLeaderID)
		w.RawBytes(h.BFTSignature[:])
		return nil
	case VersionGenesisPraos:
		w.RawBytes(h.PoolID[:])
		w.RawBytes(h.VRFProof.Bytes())
		encodeKESSignature(w, h.KESSignature)
		return nil
	default:
		return fmt.Errorf("block: unknown header version %d", uint16(h.Version))
	}
}

// Bytes returns the header's standalone wire encoding.
func (h Header) Bytes() ([]byte, error) {
	w := codec.NewWriter(128)
	if err := h.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ID is the header's content id, Blake2b-256 over its full wire
// encoding (prefix and suffix both): the value a child block's
// ParentHash must equal, per spec invariant (d).
func (h Header) ID() (chainhash.Hash, error) {
	b, err := h.Bytes()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.HashB(b), nil
}

func encodeKESSignature(w *codec.Writer, s kes.Signature) {
	w.U32(s.Period)
	w.RawBytes(s.LeafSig[:])
	w.RawBytes(s.LeafPK[:])
	w.U8(uint8(len(s.Path)))
	for i, h := range s.Path {
		w.RawBytes(h[:])
		if s.IsRight[i] {
			w.U8(1)
		} else {
			w.U8(0)
		}
	}
}

func decodeKESSignature(r *codec.Reader) (kes.Signature, error) {
	var s kes.Signature
	var err error
	if s.Period, err = r.U32(); err != nil {
		return s, err
	}
	if err := r.FixedBytes(s.LeafSig[:]); err != nil {
		return s, err
	}
	if err := r.FixedBytes(s.LeafPK[:]); err != nil {
		return s, err
	}
	pathLen, err := r.U8()
	if err != nil {
		return s, err
	}
	s.Path = make([]chainhash.Hash, pathLen)
	s.IsRight = make([]bool, pathLen)
	for i := 0; i < int(pathLen); i++ {
		if err := r.FixedBytes(s.Path[i][:]); err != nil {
			return s, err
		}
		bit, err := r.U8()
		if err != nil {
			return s, err
		}
		s.IsRight[i] = bit != 0
	}
	return s, nil
}

// decodeHeaderBody reads the rest of a Header of the given version from
// r. The version itself has already been read by the caller
// (DecodeHeader), so it is passed in rather than re-read.
func decodeHeaderBody(r *codec.Reader, version Version, h *Header) error {
	var err error
	if h.ContentSize, err = r.U32(); err != nil {
		return err
	}
	if h.BlockDate.Epoch, err = r.U32(); err != nil {
		return err
	}
	if h.BlockDate.Slot, err = r.U32(); err != nil {
		return err
	}
	if h.ChainLength, err = r.U32(); err != nil {
		return err
	}
	if err := r.FixedBytes(h.ContentHash[:]); err != nil {
		return err
	}
	if err := r.FixedBytes(h.ParentHash[:]); err != nil {
		return err
	}
	switch version {
	case VersionNone:
		return nil
	case VersionBFT:
		leader := make([]byte, ed25519.PublicKeySize)
		if err := r.FixedBytes(leader); err != nil {
			return err
		}
		h.BFTLeaderID = leader
		return r.FixedBytes(h.BFTSignature[:])
	case VersionGenesisPraos:
		if err := r.FixedBytes(h.PoolID[:]); err != nil {
			return err
		}
		var gamma, c, s [32]byte
		if err := r.FixedBytes(gamma[:]); err != nil {
			return err
		}
		if err := r.FixedBytes(c[:]); err != nil {
			return err
		}
		if err := r.FixedBytes(s[:]); err != nil {
			return err
		}
		h.VRFProof = vrf.Proof{Gamma: gamma, C: c, S: s}
		sig, err := decodeKESSignature(r)
		if err != nil {
			return err
		}
		h.KESSignature = sig
		return nil
	default:
		return codec.StructureInvalidError(fmt.Sprintf("block: unknown header version %d", uint16(version)))
	}
}

// DecodeHeader reads a standalone Header from r.
func DecodeHeader(r *codec.Reader) (Header, error) {
	versionRaw, err := r.U16()
	if err != nil {
		return Header{}, err
	}
	h := Header{Version: Version(versionRaw)}
	if err := decodeHeaderBody(r, h.Version, &h); err != nil {
		return Header{}, err
	}
	return h, nil
}
