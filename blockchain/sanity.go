// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"time"

	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/wire"
)

// MaxBlockWeight bounds a block's on-wire size, matching wire.MaxBlockPayload.
const MaxBlockWeight = wire.MaxBlockPayload

// maxTimeOffset bounds how far into the future a block's timestamp may be
// relative to the validator's own clock (BIP-specified "2 hours").
const maxTimeOffset = 2 * time.Hour

// MedianTimeSource reports the network-adjusted time used as the upper
// bound on a block timestamp, kept as an interface so tests can supply a
// fixed clock.
type MedianTimeSource interface {
	AdjustedTime() time.Time
}

// CheckTransactionSanity performs a set of context-free checks on a
// transaction, checking things like the number and bounds of inputs and
// outputs, and the lack of duplicate inputs.
func CheckTransactionSanity(tx *btcutil.Tx) er.R {
	msgTx := tx.MsgTx()

	if len(msgTx.TxIn) == 0 {
		return ErrNoTxInputs.Default()
	}
	if len(msgTx.TxOut) == 0 {
		return ErrNoTxOutputs.Default()
	}

	var totalSatoshi int64
	for _, txOut := range msgTx.TxOut {
		if txOut.Value < 0 || txOut.Value > btcutil.MaxSatoshi {
			return ErrBadTxOutValue.Detail("transaction output value out of range")
		}
		totalSatoshi += txOut.Value
		if totalSatoshi < 0 || totalSatoshi > btcutil.MaxSatoshi {
			return ErrBadTxOutValue.Detail("total transaction output value out of range")
		}
	}

	existingOutpoints := make(map[wire.OutPoint]struct{}, len(msgTx.TxIn))
	for _, txIn := range msgTx.TxIn {
		if _, exists := existingOutpoints[txIn.PreviousOutPoint]; exists {
			return ErrDuplicateTxInputs.Default()
		}
		existingOutpoints[txIn.PreviousOutPoint] = struct{}{}
	}

	if IsCoinBaseTx(msgTx) {
		slen := len(msgTx.TxIn[0].SignatureScript)
		if slen < 2 || slen > 100 {
			return ErrBadCoinbaseScriptLen.Default()
		}
	} else {
		for _, txIn := range msgTx.TxIn {
			if txIn.PreviousOutPoint.IsNull() {
				return ErrBadTxOutValue.Detail("transaction input refers to a null previous outpoint")
			}
		}
	}

	return nil
}

// CheckBlockSanity performs a set of context-free checks on a block:
// coinbase-first, no further coinbases, merkle root match, proof-of-work
// below the target implied by the header's Bits, and a timestamp no more
// than maxTimeOffset past the supplied time source's adjusted time.
func CheckBlockSanity(block *btcutil.Block, powLimit *big.Int, timeSource MedianTimeSource) er.R {
	msgBlock := block.MsgBlock()

	header := &msgBlock.Header
	if err := checkProofOfWork(header, powLimit); err != nil {
		return err
	}

	if timeSource != nil && header.Timestamp.After(timeSource.AdjustedTime().Add(maxTimeOffset)) {
		return ErrTimeTooNew.Default()
	}

	transactions := msgBlock.Transactions
	if len(transactions) == 0 {
		return ErrNoTransactions.Default()
	}
	if !IsCoinBaseTx(transactions[0]) {
		return ErrFirstTxNotCoinbase.Default()
	}
	for _, tx := range transactions[1:] {
		if IsCoinBaseTx(tx) {
			return ErrMultipleCoinbases.Default()
		}
	}

	existingTxHashes := make(map[chainhash.Hash]struct{}, len(transactions))
	txs := make([]*btcutil.Tx, 0, len(transactions))
	for _, tx := range transactions {
		wrapped := btcutil.NewTx(tx)
		if err := CheckTransactionSanity(wrapped); err != nil {
			return err
		}
		h := *wrapped.Hash()
		if _, exists := existingTxHashes[h]; exists {
			return ErrDuplicateTx.Default()
		}
		existingTxHashes[h] = struct{}{}
		txs = append(txs, wrapped)
	}

	calculatedMerkleRoot := calcMerkleRoot(txs)
	if !header.MerkleRoot.IsEqual(&calculatedMerkleRoot) {
		return ErrBadMerkleRoot.Default()
	}

	return nil
}

func checkProofOfWork(header *wire.BlockHeader, powLimit *big.Int) er.R {
	target := compactToBig(header.Bits)
	if target.Sign() <= 0 {
		return ErrBadBits.Detail("proof-of-work target is zero or negative")
	}
	if target.Cmp(powLimit) > 0 {
		return ErrBadBits.Detail("proof-of-work target exceeds the network's power limit")
	}

	hash := header.BlockHash()
	hashNum := hashToBig(&hash)
	if hashNum.Cmp(target) > 0 {
		return ErrHighHash.Default()
	}
	return nil
}

// hashToBig interprets a hash as a little-endian uint256 and returns its
// value as a big.Int, matching Bitcoin-derived chains' "treat the double-
// sha256 digest as a number" proof-of-work comparison.
func hashToBig(hash *chainhash.Hash) *big.Int {
	buf := *hash
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// calcMerkleRoot builds the merkle tree of tx hashes (duplicating the last
// node of an odd-sized level, the same convention Bitcoin-derived chains
// all use) and returns its root.
func calcMerkleRoot(txs []*btcutil.Tx) chainhash.Hash {
	if len(txs) == 0 {
		return chainhash.Hash{}
	}
	level := make([]chainhash.Hash, len(txs))
	for i, tx := range txs {
		level[i] = *tx.Hash()
	}
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := range next {
			var buf [64]byte
			copy(buf[:32], level[2*i][:])
			copy(buf[32:], level[2*i+1][:])
			next[i] = chainhash.DoubleHashH(buf[:])
		}
		level = next
	}
	return level[0]
}
