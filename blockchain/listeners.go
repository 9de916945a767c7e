// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/defunctec/crownj/btcutil"

// NewBestBlock is fired once a block becomes the new tip of the best
// chain, whether by linear extension or by reorg.
type NewBestBlock struct {
	Block  *btcutil.Block
	Height int32
}

// Reorganize is fired whenever the best chain's tip changes by detaching
// one or more blocks and attaching one or more different blocks, carrying
// the full set of blocks disconnected and connected in the switch.
type Reorganize struct {
	Detached []*btcutil.Block
	Attached []*btcutil.Block
}

// TransactionReceivedInBlock is fired once per transaction as its
// containing block is connected to the best chain, alongside the set of
// outputs it spent, so an index can update without re-deriving spend
// information itself.
type TransactionReceivedInBlock struct {
	Tx     *btcutil.Tx
	Block  *btcutil.Block
	Height int32
	Spent  []SpentTxOut
}

// BlockConnected is fired once per block connected to the best chain,
// carrying every output spent by any of its transactions in input order
// grouped by tx (the whole-block counterpart to TransactionReceivedInBlock),
// for a secondary index that wants to apply one update per block rather
// than per transaction.
type BlockConnected struct {
	Block *btcutil.Block
	Spent []SpentTxOut
}

// BlockDisconnected is fired once per block removed from the best chain,
// mirroring BlockConnected.
type BlockDisconnected struct {
	Block *btcutil.Block
	Spent []SpentTxOut
}

// Listeners fans out chain events to subscribers. Subscription is
// one-way: the chain engine never holds a reference back into a listener
// beyond the channel it was handed, so a slow or gone subscriber can never
// reach back into the engine's own state.
type Listeners struct {
	bestBlock         []chan<- *NewBestBlock
	reorganize        []chan<- *Reorganize
	txReceived        []chan<- *TransactionReceivedInBlock
	blockConnected    []chan<- *BlockConnected
	blockDisconnected []chan<- *BlockDisconnected
}

// NewListeners returns an empty set of listeners.
func NewListeners() *Listeners {
	return &Listeners{}
}

func (l *Listeners) SubscribeBestBlock(ch chan<- *NewBestBlock) {
	l.bestBlock = append(l.bestBlock, ch)
}

func (l *Listeners) SubscribeReorganize(ch chan<- *Reorganize) {
	l.reorganize = append(l.reorganize, ch)
}

func (l *Listeners) SubscribeTransactionReceived(ch chan<- *TransactionReceivedInBlock) {
	l.txReceived = append(l.txReceived, ch)
}

func (l *Listeners) SubscribeBlockConnected(ch chan<- *BlockConnected) {
	l.blockConnected = append(l.blockConnected, ch)
}

func (l *Listeners) SubscribeBlockDisconnected(ch chan<- *BlockDisconnected) {
	l.blockDisconnected = append(l.blockDisconnected, ch)
}

func (l *Listeners) fireBestBlock(ev *NewBestBlock) {
	for _, ch := range l.bestBlock {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (l *Listeners) fireReorganize(ev *Reorganize) {
	for _, ch := range l.reorganize {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (l *Listeners) fireTxReceived(ev *TransactionReceivedInBlock) {
	for _, ch := range l.txReceived {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (l *Listeners) fireBlockConnected(ev *BlockConnected) {
	for _, ch := range l.blockConnected {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (l *Listeners) fireBlockDisconnected(ev *BlockDisconnected) {
	for _, ch := range l.blockDisconnected {
		select {
		case ch <- ev:
		default:
		}
	}
}
