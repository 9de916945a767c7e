// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/txscript/opcode"
	"github.com/defunctec/crownj/txscript/scriptbuilder"
	"github.com/defunctec/crownj/wire"
)

// genesisCoinbaseTx builds the single coinbase transaction every genesis
// block consists of. msg is embedded in the scriptSig the way Satoshi's
// original genesis block embeds a newspaper headline -- it has no
// consensus meaning, it just makes each network's genesis coinbase
// distinct and unspendable.
func genesisCoinbaseTx(msg string) wire.MsgTx {
	tx := wire.NewMsgTx(1)

	sigScript, err := scriptbuilder.NewScriptBuilder().
		AddInt64(486604799).
		AddInt64(4).
		AddData([]byte(msg)).
		Script()
	if err != nil {
		panic(err)
	}

	pkScript, err := scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_RETURN).
		Script()
	if err != nil {
		panic(err)
	}

	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, 0xffffffff), sigScript, nil))
	tx.AddTxOut(wire.NewTxOut(0, pkScript))
	return *tx
}

// genesisMerkleRoot is the merkle root of a block consisting only of the
// genesis coinbase transaction: the transaction's own hash.
func genesisMerkleRoot(tx wire.MsgTx) chainhash.Hash {
	return tx.TxHash()
}

var genesisCoinbase = genesisCoinbaseTx("Crown 2026-07-30 Full validation chain engine specification distilled")
var genesisMerkle = genesisMerkleRoot(genesisCoinbase)

// genesisBlock defines the genesis block for CRW mainnet.
var genesisBlock = wire.MsgBlock{
	Header: wire.BlockHeader{
		Version:    1,
		PrevBlock:  chainhash.Hash{},
		MerkleRoot: genesisMerkle,
		Timestamp:  time.Unix(1469000000, 0),
		Bits:       0x1e0fffff,
		Nonce:      12345,
	},
	Transactions: []*wire.MsgTx{&genesisCoinbase},
}

var genesisHash = genesisBlock.BlockHash()

var testNetCoinbase = genesisCoinbaseTx("Crown testnet 2026-07-30 Full validation chain engine specification distilled")
var testNetMerkle = genesisMerkleRoot(testNetCoinbase)

// testNetGenesisBlock defines the genesis block for the CRW test network.
var testNetGenesisBlock = wire.MsgBlock{
	Header: wire.BlockHeader{
		Version:    1,
		PrevBlock:  chainhash.Hash{},
		MerkleRoot: testNetMerkle,
		Timestamp:  time.Unix(1469000001, 0),
		Bits:       0x1e0fffff,
		Nonce:      54321,
	},
	Transactions: []*wire.MsgTx{&testNetCoinbase},
}

var testNetGenesisHash = testNetGenesisBlock.BlockHash()

var regTestCoinbase = genesisCoinbaseTx("Crown regtest 2026-07-30 Full validation chain engine specification distilled")
var regTestMerkle = genesisMerkleRoot(regTestCoinbase)

// regTestGenesisBlock defines the genesis block used by regtest, where the
// low difficulty bits let test tooling mine it (and every subsequent block)
// instantly.
var regTestGenesisBlock = wire.MsgBlock{
	Header: wire.BlockHeader{
		Version:    1,
		PrevBlock:  chainhash.Hash{},
		MerkleRoot: regTestMerkle,
		Timestamp:  time.Unix(1469000002, 0),
		Bits:       0x207fffff,
		Nonce:      1,
	},
	Transactions: []*wire.MsgTx{&regTestCoinbase},
}

var regTestGenesisHash = regTestGenesisBlock.BlockHash()
