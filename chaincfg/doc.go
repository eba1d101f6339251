// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg decodes the block0 genesis document each network
// defines (mainnet, testnet, a developer's regression-test network)
// and turns it into that network's genesis Block and starting
// ledger.Settings.
//
// A node selects a network by pointing at that network's block0
// document:
//
//	f, err := os.Open("mainnet-block0.yaml")
//	if err != nil {
//	        log.Fatal(err)
//	}
//	defer f.Close()
//	cfg, err := chaincfg.Decode(f)
//	if err != nil {
//	        log.Fatal(err)
//	}
//	genesis, err := cfg.GenesisBlock()
//	if err != nil {
//	        log.Fatal(err)
//	}
//	settings, err := cfg.Settings()
//	if err != nil {
//	        log.Fatal(err)
//	}
//
// General node configuration — listen addresses, data directories, RPC
// credentials — is an external collaborator's concern and is out of
// scope here.
package chaincfg
