// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"crypto/ed25519"
	"fmt"

	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/codec"
)

// MultisigDescriptor names the owner keys and signature threshold a
// MultisigAddress's id resolves to: an address.MultisigAddress only
// references this descriptor by id, per that type's own doc comment —
// the descriptor itself is registered into the ledger once, the same
// way a PoolRegistration brings a pool into existence before anything
// can delegate to it.
type MultisigDescriptor struct {
	Owners    []ed25519.PublicKey
	Threshold uint8
}

// ValidateShape checks the threshold is satisfiable by the owner set,
// mirroring PoolRegistration.ValidateShape's management-threshold checks.
func (d MultisigDescriptor) ValidateShape() error {
	if len(d.Owners) == 0 {
		return shapeError(ErrTooManyOwners, "certificate: multisig descriptor has no owners")
	}
	if d.Threshold == 0 {
		return shapeError(ErrManagementThresholdZero, "certificate: multisig threshold must be at least 1")
	}
	if int(d.Threshold) > len(d.Owners) {
		return shapeError(ErrManagementThresholdAboveOwners, "certificate: multisig threshold %d exceeds %d owners", d.Threshold, len(d.Owners))
	}
	return nil
}

// ID computes the descriptor's content-hash identity: the same id an
// address.MultisigAddress and a transaction.Input's MultisigID carry.
func (d MultisigDescriptor) ID() ([32]byte, error) {
	w := codec.NewWriter(2 + ed25519.PublicKeySize*len(d.Owners))
	if err := d.encode(w); err != nil {
		return [32]byte{}, err
	}
	return chainhash.HashB(w.Bytes()), nil
}

func (d MultisigDescriptor) encode(w *codec.Writer) error {
	if len(d.Owners) > 0xFF {
		return fmt.Errorf("certificate: multisig owner count exceeds wire limit")
	}
	w.U8(uint8(len(d.Owners)))
	for _, o := range d.Owners {
		if len(o) != ed25519.PublicKeySize {
			return fmt.Errorf("certificate: multisig owner key must be %d bytes", ed25519.PublicKeySize)
		}
		w.RawBytes(o)
	}
	w.U8(d.Threshold)
	return nil
}

// EncodeMultisigDescriptor serializes a MultisigDescriptor certificate body.
func EncodeMultisigDescriptor(d MultisigDescriptor) ([]byte, error) {
	w := codec.NewWriter(2 + ed25519.PublicKeySize*len(d.Owners))
	if err := d.encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeMultisigDescriptor parses a MultisigDescriptor certificate body.
func DecodeMultisigDescriptor(body []byte) (MultisigDescriptor, error) {
	var d MultisigDescriptor
	err := codec.ReadAll(body, func(r *codec.Reader) error {
		n, err := r.U8()
		if err != nil {
			return err
		}
		d.Owners = make([]ed25519.PublicKey, n)
		for i := range d.Owners {
			key := make([]byte, ed25519.PublicKeySize)
			if err := r.FixedBytes(key); err != nil {
				return err
			}
			d.Owners[i] = ed25519.PublicKey(key)
		}
		d.Threshold, err = r.U8()
		return err
	})
	return d, err
}

// VerifyMultisigWitness checks that sigs carries at least d.Threshold
// valid signatures by distinct owners of d over msg, in ascending
// owner-index order — the same threshold shape certificate.Verify
// checks for pool management, generalized to a flat signature list
// since a MultisigWitness carries no signer bitmap of its own (spec
// §4.4: "witness is a threshold sub-witness set").
func VerifyMultisigWitness(d MultisigDescriptor, msg []byte, sigs [][64]byte) error {
	if len(sigs) > len(d.Owners) {
		return shapeError(ErrNotEnoughSignatures, "certificate: %d multisig signatures exceeds %d owners", len(sigs), len(d.Owners))
	}
	signerCount := 0
	ownerIdx := 0
	for _, sig := range sigs {
		verified := false
		for ; ownerIdx < len(d.Owners); ownerIdx++ {
			if ed25519.Verify(d.Owners[ownerIdx], msg, sig[:]) {
				ownerIdx++
				verified = true
				break
			}
		}
		if !verified {
			return shapeError(ErrNotEnoughSignatures, "certificate: multisig signature does not match any remaining owner")
		}
		signerCount++
	}
	if signerCount < int(d.Threshold) {
		return shapeError(ErrNotEnoughSignatures, "certificate: %d valid multisig signatures, need %d", signerCount, d.Threshold)
	}
	return nil
}
