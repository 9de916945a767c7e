// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcutil

import (
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/wire"
)

// TxIndexUnknown is the value returned for a transaction index that is
// unknown, such as when a transaction has not been inserted into a block.
const TxIndexUnknown = -1

// Tx wraps a wire.MsgTx, providing additional lazily-computed context (its
// hash and its position within an enclosing block) that callers across the
// chain engine, indexers, and wallet all want without recomputing it.
type Tx struct {
	msgTx   *wire.MsgTx
	txHash  *chainhash.Hash
	txIndex int
}

// NewTx returns a new instance of a transaction given an underlying
// wire.MsgTx, setting the index to TxIndexUnknown.
func NewTx(msgTx *wire.MsgTx) *Tx {
	return &Tx{msgTx: msgTx, txIndex: TxIndexUnknown}
}

// MsgTx returns the underlying wire.MsgTx for the transaction.
func (t *Tx) MsgTx() *wire.MsgTx { return t.msgTx }

// Hash returns the hash of the transaction, computing and caching it on
// first use.
func (t *Tx) Hash() *chainhash.Hash {
	if t.txHash == nil {
		h := t.msgTx.TxHash()
		t.txHash = &h
	}
	return t.txHash
}

// Index returns the saved index of the transaction within a block. This
// value will be TxIndexUnknown if it hasn't been set.
func (t *Tx) Index() int { return t.txIndex }

// SetIndex sets the index of the transaction within a block.
func (t *Tx) SetIndex(index int) { t.txIndex = index }
