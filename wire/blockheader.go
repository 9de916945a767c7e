// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg/chainhash"
)

// MaxBlockHeaderPayload is the number of bytes in a block header:
// version 4 + prev block 32 + merkle root 32 + timestamp 4 + bits 4 +
// nonce 4, plus the transaction count var-int which is always zero on
// the wire form of a bare header.
const MaxBlockHeaderPayload = 16 + (chainhash.HashSize * 2) + 9

// BlockHeader defines information about a block and is used in the CRW
// block (MsgBlock) and headers (MsgHeaders) messages.
type BlockHeader struct {
	// Version of the block. This is not the same as the protocol version.
	Version int32

	// PrevBlock is the hash of the previous block header in the chain.
	PrevBlock chainhash.Hash

	// MerkleRoot is the merkle tree reference to hash of all transactions
	// for the block.
	MerkleRoot chainhash.Hash

	// Timestamp of the block as claimed by the miner.
	Timestamp time.Time

	// Bits is the difficulty target for the block, in compact form.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32
}

// blockHeaderLen is a constant used for calculating block header
// hashes.
const blockHeaderLen = 80

// BlockHash computes the block identifier hash for the given header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, blockHeaderLen))
	_ = writeBlockHeader(buf, 0, h)
	return chainhash.DoubleHashH(buf.Bytes())
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (h *BlockHeader) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	return readBlockHeader(r, pver, h)
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (h *BlockHeader) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	return writeBlockHeader(w, pver, h)
}

// NewBlockHeader returns a new BlockHeader using the provided version,
// previous block hash, merkle root hash, difficulty bits, and nonce used to
// generate the block with defaults for the remaining fields.
func NewBlockHeader(version int32, prevHash, merkleRootHash *chainhash.Hash, bits uint32, nonce uint32) *BlockHeader {
	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Timestamp:  time.Unix(time.Now().Unix(), 0),
		Bits:       bits,
		Nonce:      nonce,
	}
}

func readBlockHeader(r io.Reader, pver uint32, h *BlockHeader) er.R {
	version, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	h.Version = int32(version)

	if _, errr := io.ReadFull(r, h.PrevBlock[:]); errr != nil {
		return er.E(errr)
	}
	if _, errr := io.ReadFull(r, h.MerkleRoot[:]); errr != nil {
		return er.E(errr)
	}

	ts, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(ts), 0)

	bits, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	h.Bits = bits

	nonce, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	h.Nonce = nonce
	return nil
}

func writeBlockHeader(w io.Writer, pver uint32, h *BlockHeader) er.R {
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(h.Version)); err != nil {
		return err
	}
	if _, errr := w.Write(h.PrevBlock[:]); errr != nil {
		return er.E(errr)
	}
	if _, errr := w.Write(h.MerkleRoot[:]); errr != nil {
		return er.E(errr)
	}
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, littleEndian, h.Bits); err != nil {
		return err
	}
	return binarySerializer.PutUint32(w, littleEndian, h.Nonce)
}
