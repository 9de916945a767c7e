// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcutil

import (
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/wire"
)

// BlockHeightUnknown is returned by Height when a Block hasn't been told
// what height it occupies in the chain.
const BlockHeightUnknown = -1

// Block wraps a wire.MsgBlock, adding the chain height the block engine
// assigned it once connected, and lazily-wrapped/cached Tx views of its
// transactions.
type Block struct {
	msgBlock *wire.MsgBlock
	hash     *chainhash.Hash
	height   int32
	txs      []*Tx
}

// NewBlock returns a new instance of a block given an underlying
// wire.MsgBlock, with height set to BlockHeightUnknown.
func NewBlock(msgBlock *wire.MsgBlock) *Block {
	return &Block{msgBlock: msgBlock, height: BlockHeightUnknown}
}

// MsgBlock returns the underlying wire.MsgBlock for the block.
func (b *Block) MsgBlock() *wire.MsgBlock { return b.msgBlock }

// Hash returns the block identifier hash, computing and caching it on
// first use.
func (b *Block) Hash() *chainhash.Hash {
	if b.hash == nil {
		h := b.msgBlock.BlockHash()
		b.hash = &h
	}
	return b.hash
}

// Height returns the saved height of the block in the chain, or
// BlockHeightUnknown if it hasn't been set.
func (b *Block) Height() int32 { return b.height }

// SetHeight sets the height of the block in the chain.
func (b *Block) SetHeight(height int32) { b.height = height }

// Transactions returns the transactions of the block, lazily wrapping and
// caching each wire.MsgTx in a Tx with its block index set.
func (b *Block) Transactions() []*Tx {
	if b.txs == nil {
		b.txs = make([]*Tx, len(b.msgBlock.Transactions))
		for i, tx := range b.msgBlock.Transactions {
			newTx := NewTx(tx)
			newTx.SetIndex(i)
			b.txs[i] = newTx
		}
	}
	return b.txs
}

// Tx returns the transaction at the given index in the block, or nil if
// txNum is out of range.
func (b *Block) Tx(txNum int) *Tx {
	txs := b.Transactions()
	if txNum < 0 || txNum >= len(txs) {
		return nil
	}
	return txs[txNum]
}
