// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the network-specific parameters (genesis block,
// address prefixes, soft-fork activation heights, difficulty-retarget
// constants) that distinguish CRW mainnet from its test networks.
package chaincfg

import (
	"time"

	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/wire"
)

// Params defines a CRW network by its genesis block, address encoding and
// the various soft-fork activation heights the chain engine gates script
// verification flags on.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net wire.CRWNet

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// DNSSeeds defines a list of DNS seeds for the network that are used
	// as one method to discover peers.
	DNSSeeds []string

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *wire.MsgBlock

	// GenesisHash is the starting block hash.
	GenesisHash *chainhash.Hash

	// PowLimitBits defines the highest allowed proof of work value for a
	// block, in compact "bits" form.
	PowLimitBits uint32

	// TargetTimespan is the desired amount of time that should elapse
	// before the block difficulty requirement is examined to determine
	// how it should be changed.
	TargetTimespan time.Duration

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// RetargetAdjustmentFactor is the adjustment factor used to limit the
	// minimum and maximum amount of adjustment that can occur between
	// difficulty retargets.
	RetargetAdjustmentFactor int64

	// SubsidyHalvingInterval is the number of blocks after which the
	// subsidy is reduced by half.
	SubsidyHalvingInterval int32

	// CoinbaseMaturity is the number of blocks required before newly
	// generated coins may be spent.
	CoinbaseMaturity uint16

	// BIP16Height is the first block at which pay-to-script-hash
	// semantics take effect.
	BIP16Height int32

	// BIP66Height is the first block at which strict DER signatures are
	// required.
	BIP66Height int32

	// BIP65Height is the first block at which OP_CHECKLOCKTIMEVERIFY is
	// enforced.
	BIP65Height int32

	// BIP68Height is the first block at which relative lock-times
	// (OP_CHECKSEQUENCEVERIFY, nSequence-based BIP68) are enforced.
	BIP68Height int32

	// SegwitHeight is the first block at which segregated witness
	// verification (BIP-141/143/144) is enforced.
	SegwitHeight int32

	// MaxReorgDepth bounds how many best-chain blocks a reorganization may
	// detach (best height minus fork height) before the chain engine
	// refuses it, guarding against deep history rewrites. It is also how
	// many blocks of undo data are retained.
	MaxReorgDepth int32

	// PubKeyHashAddrID is the prefix byte used for P2PKH addresses.
	PubKeyHashAddrID byte

	// ScriptHashAddrID is the prefix byte used for P2SH addresses.
	ScriptHashAddrID byte

	// PrivateKeyID is the prefix byte used for WIF private keys.
	PrivateKeyID byte

	// Bech32HRPSegwit is the human-readable part used for bech32-encoded
	// segwit addresses (P2WPKH/P2WSH).
	Bech32HRPSegwit string
}

// MainNetParams defines the network parameters for the main CRW network.
var MainNetParams = Params{
	Name:        "mainnet",
	Net:         wire.MainNet,
	DefaultPort: "9340",
	DNSSeeds: []string{
		"seed1.crown.tech",
		"seed2.crown.tech",
	},

	GenesisBlock: &genesisBlock,
	GenesisHash:  &genesisHash,

	PowLimitBits:             0x1e0fffff,
	TargetTimespan:           time.Minute * 60,
	TargetTimePerBlock:       time.Minute * 1,
	RetargetAdjustmentFactor: 4,
	SubsidyHalvingInterval:   2100000,
	CoinbaseMaturity:         30,

	BIP16Height:  0,
	BIP66Height:  0,
	BIP65Height:  0,
	BIP68Height:  0,
	SegwitHeight: 0,

	MaxReorgDepth: 100,

	PubKeyHashAddrID: 0x00,
	ScriptHashAddrID: 0x05,
	PrivateKeyID:     0x80,
	Bech32HRPSegwit:  "crwn",
}

// TestNetParams defines the network parameters for the CRW test network.
var TestNetParams = Params{
	Name:        "testnet",
	Net:         wire.TestNet,
	DefaultPort: "19340",
	DNSSeeds: []string{
		"testseed1.crown.tech",
	},

	GenesisBlock: &testNetGenesisBlock,
	GenesisHash:  &testNetGenesisHash,

	PowLimitBits:             0x1e0fffff,
	TargetTimespan:           time.Minute * 60,
	TargetTimePerBlock:       time.Minute * 1,
	RetargetAdjustmentFactor: 4,
	SubsidyHalvingInterval:   2100000,
	CoinbaseMaturity:         10,

	BIP16Height:  0,
	BIP66Height:  0,
	BIP65Height:  0,
	BIP68Height:  0,
	SegwitHeight: 0,

	MaxReorgDepth: 1000,

	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,
	Bech32HRPSegwit:  "tcrwn",
}

// RegressionNetParams defines the network parameters used by regtest, where
// blocks can be mined on demand by test tooling.
var RegressionNetParams = Params{
	Name:        "regtest",
	Net:         wire.TestNet, // regtest reuses the test network magic
	DefaultPort: "19444",
	DNSSeeds:    nil,

	GenesisBlock: &regTestGenesisBlock,
	GenesisHash:  &regTestGenesisHash,

	PowLimitBits:             0x207fffff,
	TargetTimespan:           time.Minute * 60,
	TargetTimePerBlock:       time.Minute * 1,
	RetargetAdjustmentFactor: 4,
	SubsidyHalvingInterval:   150,
	CoinbaseMaturity:         1,

	BIP16Height:  0,
	BIP66Height:  0,
	BIP65Height:  0,
	BIP68Height:  0,
	SegwitHeight: 0,

	MaxReorgDepth: 1000000,

	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,
	Bech32HRPSegwit:  "crwrt",
}
