// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/txscript/parsescript"
	"github.com/defunctec/crownj/wire"
)

// UtxoEntry houses details about an individual unspent transaction output,
// the unit the UTXO-backed block store persists.
type UtxoEntry struct {
	amount      int64
	pkScript    []byte
	blockHeight int32
	isCoinBase  bool
	spent       bool
}

func (e *UtxoEntry) Amount() int64        { return e.amount }
func (e *UtxoEntry) PkScript() []byte     { return e.pkScript }
func (e *UtxoEntry) BlockHeight() int32   { return e.blockHeight }
func (e *UtxoEntry) IsCoinBase() bool     { return e.isCoinBase }
func (e *UtxoEntry) IsSpent() bool        { return e.spent }
func (e *UtxoEntry) Spend()               { e.spent = true }

// Clone returns a deep copy of the entry, used when a view needs its own
// mutable snapshot of an entry it didn't itself create.
func (e *UtxoEntry) Clone() *UtxoEntry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// SpentTxOut contains the information about an output that was spent in a
// block, allowing the effect of the block to be undone on disconnect and
// handed to indexers.
type SpentTxOut struct {
	Amount     int64
	PkScript   []byte
	Height     int32
	IsCoinBase bool
}

// UtxoViewpoint represents a view into the set of unspent transaction
// outputs as of a particular point in the chain, scoped to just the
// outputs a given set of transactions reference.
type UtxoViewpoint struct {
	entries map[wire.OutPoint]*UtxoEntry
}

// NewUtxoViewpoint returns a new empty unspent transaction output view.
func NewUtxoViewpoint() *UtxoViewpoint {
	return &UtxoViewpoint{entries: make(map[wire.OutPoint]*UtxoEntry)}
}

// Entries returns the underlying map of the view.
func (v *UtxoViewpoint) Entries() map[wire.OutPoint]*UtxoEntry { return v.entries }

// LookupEntry returns information about a given transaction output according
// to the current state of the view, or nil if it has no entry.
func (v *UtxoViewpoint) LookupEntry(outpoint wire.OutPoint) *UtxoEntry {
	return v.entries[outpoint]
}

// addTxOut adds a single transaction output to the view, ignoring
// unspendable outputs entirely (they can never be spent, so the store
// never needs to track them).
func (v *UtxoViewpoint) addTxOut(outpoint wire.OutPoint, txOut *wire.TxOut, isCoinBase bool, blockHeight int32) {
	if parsescript.IsUnspendable(txOut.PkScript) {
		return
	}
	entry := &UtxoEntry{
		amount:      txOut.Value,
		pkScript:    txOut.PkScript,
		blockHeight: blockHeight,
		isCoinBase:  isCoinBase,
	}
	v.entries[outpoint] = entry
}

// AddTxOuts adds every output of tx to the view as unspent, to be called
// the moment a transaction is connected to the chain.
func (v *UtxoViewpoint) AddTxOuts(tx *btcutil.Tx, blockHeight int32) {
	isCoinBase := IsCoinBaseTx(tx.MsgTx())
	prevOut := wire.OutPoint{Hash: *tx.Hash()}
	for txOutIdx, txOut := range tx.MsgTx().TxOut {
		prevOut.Index = uint32(txOutIdx)
		v.addTxOut(prevOut, txOut, isCoinBase, blockHeight)
	}
}

// connectTransaction updates the view by marking every output tx spends as
// spent, recording each in stxos for undo purposes, then adds tx's own
// outputs as newly unspent. One SpentTxOut is appended per input, in input
// order, even in the defensive nil-entry case, so stxos stays index-aligned
// with tx.MsgTx().TxIn for disconnectTransaction — checkConnectBlock is
// expected to have already verified every input exists and is unspent.
func (v *UtxoViewpoint) connectTransaction(tx *btcutil.Tx, blockHeight int32, stxos *[]SpentTxOut) {
	if !IsCoinBaseTx(tx.MsgTx()) {
		for _, txIn := range tx.MsgTx().TxIn {
			entry := v.entries[txIn.PreviousOutPoint]
			var stxo SpentTxOut
			if entry != nil {
				stxo = SpentTxOut{
					Amount:     entry.Amount(),
					PkScript:   entry.PkScript(),
					Height:     entry.BlockHeight(),
					IsCoinBase: entry.IsCoinBase(),
				}
				entry.Spend()
			}
			if stxos != nil {
				*stxos = append(*stxos, stxo)
			}
		}
	}
	v.AddTxOuts(tx, blockHeight)
}

// disconnectTransaction reverses connectTransaction's effect using the
// previously recorded stxos, restoring every spent input and removing tx's
// own outputs (they never existed from the perspective of the chain once
// the block that created them is disconnected). stxos must hold exactly
// one entry per tx input, in input order, as produced by connectTransaction.
func (v *UtxoViewpoint) disconnectTransaction(tx *btcutil.Tx, stxos []SpentTxOut) {
	for txOutIdx := range tx.MsgTx().TxOut {
		delete(v.entries, wire.OutPoint{Hash: *tx.Hash(), Index: uint32(txOutIdx)})
	}
	if IsCoinBaseTx(tx.MsgTx()) {
		return
	}
	for i := len(tx.MsgTx().TxIn) - 1; i >= 0; i-- {
		stxo := stxos[i]
		txIn := tx.MsgTx().TxIn[i]
		v.entries[txIn.PreviousOutPoint] = &UtxoEntry{
			amount:      stxo.Amount,
			pkScript:    stxo.PkScript,
			blockHeight: stxo.Height,
			isCoinBase:  stxo.IsCoinBase,
		}
	}
}

// IsCoinBaseTx determines whether a transaction is a coinbase transaction:
// exactly one input, whose previous outpoint is null.
func IsCoinBaseTx(msgTx *wire.MsgTx) bool {
	return len(msgTx.TxIn) == 1 && msgTx.TxIn[0].PreviousOutPoint.IsNull()
}
