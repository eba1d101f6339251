// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg decodes the block0 genesis document (spec §6) and
// turns it into the genesis Block and the initial ledger.Settings. It
// plays the role the teacher's MainNetParams/TestNetParams functions
// play for exccd — the one place a network's identity is pinned down —
// generalized from a set of compiled-in constant functions to a parsed
// YAML document, since this protocol (unlike Decred's) configures each
// network at genesis time rather than at compile time.
package chaincfg

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wyrmchain/wyrmd/address"
	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/blockdate"
	"github.com/wyrmchain/wyrmd/certificate"
	"github.com/wyrmchain/wyrmd/codec"
	"github.com/wyrmchain/wyrmd/crypto/kes"
	"github.com/wyrmchain/wyrmd/crypto/vrf"
	"github.com/wyrmchain/wyrmd/fragment"
	"github.com/wyrmchain/wyrmd/ledger"
	"github.com/wyrmchain/wyrmd/value"
)

// FeeConfig mirrors value.LinearFee in the document's units.
type FeeConfig struct {
	Constant           uint64 `yaml:"constant"`
	Coefficient        uint64 `yaml:"coefficient"`
	Certificate        uint64 `yaml:"certificate"`
	PerVoteCertificate uint64 `yaml:"per_vote_certificate"`
}

// FundConfig is one Initial-fragment fund entry: an address (bech32
// text form, spec §6) credited with value at genesis.
type FundConfig struct {
	Address string `yaml:"address"`
	Value   uint64 `yaml:"value"`
}

// PoolConfig is one Initial-fragment pool registration, hex-encoding
// every key the way the document encodes raw bytes throughout.
type PoolConfig struct {
	Owners              []string `yaml:"owners"`
	Operators           []string `yaml:"operators"`
	ManagementThreshold uint8    `yaml:"management_threshold"`
	VRFPublicKey        string   `yaml:"vrf_public_key"`
	KESPublicKey        string   `yaml:"kes_public_key"`
	RewardAccount       string   `yaml:"reward_account"`
	TaxFixed            uint64   `yaml:"tax_fixed"`
	TaxRatioNum         uint32   `yaml:"tax_ratio_num"`
	TaxRatioDenom       uint32   `yaml:"tax_ratio_denom"`
}

// Block0Config is the block0 genesis document's full decoded shape.
type Block0Config struct {
	Discrimination        string       `yaml:"discrimination"`
	SlotsPerEpoch         uint32       `yaml:"slots_per_epoch"`
	BlockContentMaxSize   uint32       `yaml:"block_content_max_size"`
	ActiveSlotCoefficient float64      `yaml:"active_slot_coefficient"`
	Fee                   FeeConfig    `yaml:"fee"`
	BFTLeaders            []string     `yaml:"bft_leaders"`
	InitialFunds          []FundConfig `yaml:"initial_funds"`
	InitialPools          []PoolConfig `yaml:"initial_pools"`
}

// Decode parses a block0 genesis document from r.
func Decode(r io.Reader) (*Block0Config, error) {
	var cfg Block0Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("chaincfg: decode block0 document: %w", err)
	}
	return &cfg, nil
}

// discrimination maps the document's string field to address.Discrimination.
func (c *Block0Config) discrimination() (address.Discrimination, error) {
	switch c.Discrimination {
	case "", "production":
		return address.Production, nil
	case "test":
		return address.Test, nil
	default:
		return 0, fmt.Errorf("chaincfg: unknown discrimination %q", c.Discrimination)
	}
}

// Settings converts the document's fee/epoch/leader fields into a
// ledger.Settings ready to seed a fresh ledger.
func (c *Block0Config) Settings() (ledger.Settings, error) {
	leaders := make([]ed25519.PublicKey, len(c.BFTLeaders))
	for i, hexKey := range c.BFTLeaders {
		raw, err := hex.DecodeString(hexKey)
		if err != nil {
			return ledger.Settings{}, fmt.Errorf("chaincfg: bft leader %d: %w", i, err)
		}
		if len(raw) != ed25519.PublicKeySize {
			return ledger.Settings{}, fmt.Errorf("chaincfg: bft leader %d: want %d bytes, got %d", i, ed25519.PublicKeySize, len(raw))
		}
		leaders[i] = ed25519.PublicKey(raw)
	}

	return ledger.Settings{
		BFTLeaders:    leaders,
		SlotsPerEpoch: c.SlotsPerEpoch,
		Fee: value.LinearFee{
			Constant:              value.Value(c.Fee.Constant),
			Coefficient:           value.Value(c.Fee.Coefficient),
			CertificateFee:        value.Value(c.Fee.Certificate),
			PerVoteCertificateFee: value.Value(c.Fee.PerVoteCertificate),
		},
		BlockContentMaxSize:   c.BlockContentMaxSize,
		ActiveSlotCoefficient: c.ActiveSlotCoefficient,
	}, nil
}

// GenesisBlock builds the genesis Block: a single Initial fragment
// (the wire format ledger.applyInitial expects — see DESIGN.md's
// Initial-fragment Open Question decision) wrapped in a header-only
// block with no leadership suffix, chain length 0, and a zero parent,
// per DESIGN.md's block-id Open Question decision.
func (c *Block0Config) GenesisBlock() (block.Block, error) {
	disc, err := c.discrimination()
	if err != nil {
		return block.Block{}, err
	}

	entries := make([][]byte, 0, len(c.InitialFunds)+len(c.InitialPools))
	for i, fund := range c.InitialFunds {
		entry, err := encodeFundEntry(disc, fund)
		if err != nil {
			return block.Block{}, fmt.Errorf("chaincfg: initial fund %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	for i, pool := range c.InitialPools {
		entry, err := encodePoolEntry(pool)
		if err != nil {
			return block.Block{}, fmt.Errorf("chaincfg: initial pool %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	w := codec.NewWriter(64 * len(entries))
	w.U32(uint32(len(entries)))
	for _, e := range entries {
		w.RawBytes(e)
	}

	f, err := fragment.New(fragment.TagInitial, w.Bytes())
	if err != nil {
		return block.Block{}, fmt.Errorf("chaincfg: build initial fragment: %w", err)
	}

	b := block.Block{Contents: []fragment.Fragment{f}}
	b.Header.BlockDate = blockdate.BlockDate{Epoch: 0, Slot: 0}
	b.Header.ChainLength = 0
	b.Finalize()
	return b, nil
}

// encodeFundEntry matches ledger.applyInitialFund's expected bytes: a
// one-byte kind tag, then a length-prefixed address, then a u64 value.
func encodeFundEntry(disc address.Discrimination, fund FundConfig) ([]byte, error) {
	addr, err := address.Decode(fund.Address)
	if err != nil {
		return nil, err
	}
	if addr.Discrimination() != disc {
		return nil, fmt.Errorf("address %q does not match document discrimination", fund.Address)
	}
	raw := addr.Bytes()

	w := codec.NewWriter(4 + len(raw) + 8)
	w.U8(0) // initialEntryFund
	w.U16(uint16(len(raw)))
	w.RawBytes(raw)
	w.U64(fund.Value)
	return w.Bytes(), nil
}

// encodePoolEntry matches ledger.applyInitialCert's expected bytes: a
// one-byte kind tag, then a one-byte certificate.Kind, then a
// length-prefixed PoolRegistration payload.
func encodePoolEntry(cfg PoolConfig) ([]byte, error) {
	owners, err := decodeKeys(cfg.Owners)
	if err != nil {
		return nil, fmt.Errorf("owners: %w", err)
	}
	operators, err := decodeKeys(cfg.Operators)
	if err != nil {
		return nil, fmt.Errorf("operators: %w", err)
	}
	vrfKey, err := decodeFixed32(cfg.VRFPublicKey)
	if err != nil {
		return nil, fmt.Errorf("vrf_public_key: %w", err)
	}
	kesKey, err := decodeFixed32(cfg.KESPublicKey)
	if err != nil {
		return nil, fmt.Errorf("kes_public_key: %w", err)
	}
	rewardRaw, err := hex.DecodeString(cfg.RewardAccount)
	if err != nil {
		return nil, fmt.Errorf("reward_account: %w", err)
	}
	if len(rewardRaw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("reward_account: want %d bytes, got %d", ed25519.PublicKeySize, len(rewardRaw))
	}

	reg := certificate.PoolRegistration{
		Owners:              owners,
		Operators:           operators,
		ManagementThreshold: cfg.ManagementThreshold,
		VRFPublicKey:        vrf.PublicKey(vrfKey),
		KESPublicKey:        kes.PublicKey(kesKey),
		RewardAccount:       ed25519.PublicKey(rewardRaw),
		Tax: certificate.Tax{
			Fixed:      value.Value(cfg.TaxFixed),
			RatioNum:   cfg.TaxRatioNum,
			RatioDenom: cfg.TaxRatioDenom,
		},
	}
	if err := reg.ValidateShape(); err != nil {
		return nil, err
	}
	payload, err := certificate.EncodePoolRegistration(reg)
	if err != nil {
		return nil, err
	}

	w := codec.NewWriter(6 + len(payload))
	w.U8(1) // initialEntryCert
	w.U8(uint8(certificate.KindPoolRegistration))
	w.U32(uint32(len(payload)))
	w.RawBytes(payload)
	return w.Bytes(), nil
}

func decodeKeys(hexKeys []string) ([]ed25519.PublicKey, error) {
	keys := make([]ed25519.PublicKey, len(hexKeys))
	for i, h := range hexKeys {
		raw, err := hex.DecodeString(h)
		if err != nil {
			return nil, err
		}
		if len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("key %d: want %d bytes, got %d", i, ed25519.PublicKeySize, len(raw))
		}
		keys[i] = ed25519.PublicKey(raw)
	}
	return keys, nil
}

func decodeFixed32(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("want 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
