// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg/chainhash"
)

// defaultTransactionAlloc is the default size used for the backing array
// for transactions. The array will dynamically grow as needed, but this
// figure is intended to provide enough space for the number of
// transactions in a typical block without needing to grow the backing
// array multiple times.
const defaultTransactionAlloc = 2048

// maxTxPerBlock is the maximum number of transactions that could possibly
// fit into a block, derived from the minimum serialized tx size.
const maxTxPerBlock = (MaxBlockPayload / minTxPayload) + 1

// minTxPayload is the minimum payload size for a transaction: version 4 +
// var-int num tx in 1 + var-int num tx out 1 + lock time 4.
const minTxPayload = 10

// MsgBlock implements the Message interface and represents a CRW block
// message. It is used to deliver block and transaction information in
// response to a getdata message (MsgGetData) for a given block hash.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) er.R {
	msg.Transactions = append(msg.Transactions, tx)
	return nil
}

// ClearTransactions removes all transactions from the message.
func (msg *MsgBlock) ClearTransactions() {
	msg.Transactions = make([]*MsgTx, 0, defaultTransactionAlloc)
}

// BlockHash computes the block identifier hash for the block.
func (msg *MsgBlock) BlockHash() chainhash.Hash { return msg.Header.BlockHash() }

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgBlock) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	if err := readBlockHeader(r, pver, &msg.Header); err != nil {
		return err
	}

	txCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if txCount > maxTxPerBlock {
		return messageError("MsgBlock.BtcDecode", fmt.Sprintf(
			"too many transactions to fit into a block [count %d, max %d]", txCount, maxTxPerBlock))
	}

	msg.Transactions = make([]*MsgTx, 0, txCount)
	for i := uint64(0); i < txCount; i++ {
		tx := MsgTx{}
		if err := tx.BtcDecode(r, pver, enc); err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, &tx)
	}
	return nil
}

// Deserialize decodes a block from r into the receiver using the long-term
// storage format.
func (msg *MsgBlock) Deserialize(r io.Reader) er.R {
	return msg.BtcDecode(r, 0, WitnessEncoding)
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgBlock) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	if err := writeBlockHeader(w, pver, &msg.Header); err != nil {
		return err
	}
	if err := WriteVarInt(w, pver, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.BtcEncode(w, pver, enc); err != nil {
			return err
		}
	}
	return nil
}

// Serialize encodes the block to w using the long-term storage format.
func (msg *MsgBlock) Serialize(w io.Writer) er.R { return msg.BtcEncode(w, 0, WitnessEncoding) }

// SerializeSize returns the number of bytes it would take to serialize the
// block, including witness data where present.
func (msg *MsgBlock) SerializeSize() int {
	n := blockHeaderLen + VarIntSerializeSize(uint64(len(msg.Transactions)))
	for _, tx := range msg.Transactions {
		n += tx.SerializeSize()
	}
	return n
}

// Command returns the protocol command string for MsgBlock.
func (msg *MsgBlock) Command() string { return CmdBlock }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgBlock.
func (msg *MsgBlock) MaxPayloadLength(pver uint32) uint32 { return MaxBlockPayload }

// TxHashes returns a slice of hashes of all of the transactions in the
// block, used to build the merkle root.
func (msg *MsgBlock) TxHashes() ([]chainhash.Hash, er.R) {
	hashes := make([]chainhash.Hash, 0, len(msg.Transactions))
	for _, tx := range msg.Transactions {
		hashes = append(hashes, tx.TxHash())
	}
	return hashes, nil
}

// NewMsgBlock returns a new CRW block message that conforms to the Message
// interface using the provided header.
func NewMsgBlock(blockHeader *BlockHeader) *MsgBlock {
	return &MsgBlock{
		Header:       *blockHeader,
		Transactions: make([]*MsgTx, 0, defaultTransactionAlloc),
	}
}
