// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/database"
	"github.com/defunctec/crownj/wire"
)

// Bucket names for the store's on-disk layout: headers keyed by hash,
// blocks keyed by hash, utxo keyed by txid‖vout, undo keyed by height, and
// chainstate holding the handful of fixed chain-head settings.
var (
	headersBucketName    = []byte("headers")
	blocksBucketName     = []byte("blocks")
	utxoBucketName       = []byte("utxo")
	undoBucketName       = []byte("undo")
	chainStateBucketName = []byte("chainstate")

	chainStateKeyBestHash   = []byte("besthash")
	chainStateKeyBestHeight = []byte("bestheight")
)

// createBuckets creates the top-level buckets this package owns, if they
// don't already exist.
func createBuckets(dbTx database.Tx) er.R {
	meta := dbTx.Metadata()
	for _, name := range [][]byte{headersBucketName, blocksBucketName, utxoBucketName, undoBucketName, chainStateBucketName} {
		if meta.Bucket(name) == nil {
			if _, err := meta.CreateBucket(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// encodeHeaderEntry serializes a stored header entry: the 80-byte header,
// the block's height, and its cumulative work as a big-endian big.Int.
func encodeHeaderEntry(header *wire.BlockHeader, height int32, work *big.Int) ([]byte, er.R) {
	var buf bytes.Buffer
	if err := header.BtcEncode(&buf, 0, wire.WitnessEncoding); err != nil {
		return nil, err
	}
	var heightBuf [4]byte
	binary.LittleEndian.PutUint32(heightBuf[:], uint32(height))
	buf.Write(heightBuf[:])

	workBytes := work.Bytes()
	var workLen [2]byte
	binary.LittleEndian.PutUint16(workLen[:], uint16(len(workBytes)))
	buf.Write(workLen[:])
	buf.Write(workBytes)

	return buf.Bytes(), nil
}

func decodeHeaderEntry(b []byte) (wire.BlockHeader, int32, *big.Int, er.R) {
	r := bytes.NewReader(b)
	var header wire.BlockHeader
	if err := header.BtcDecode(r, 0, wire.WitnessEncoding); err != nil {
		return header, 0, nil, err
	}
	var heightBuf [4]byte
	if _, rerr := r.Read(heightBuf[:]); rerr != nil {
		return header, 0, nil, er.E(rerr)
	}
	height := int32(binary.LittleEndian.Uint32(heightBuf[:]))

	var workLen [2]byte
	if _, rerr := r.Read(workLen[:]); rerr != nil {
		return header, 0, nil, er.E(rerr)
	}
	workBytes := make([]byte, binary.LittleEndian.Uint16(workLen[:]))
	if _, rerr := r.Read(workBytes); rerr != nil {
		return header, 0, nil, er.E(rerr)
	}
	return header, height, new(big.Int).SetBytes(workBytes), nil
}

func putHeader(dbTx database.Tx, node *blockNode) er.R {
	enc, err := encodeHeaderEntry(&node.header, node.height, node.workSum)
	if err != nil {
		return err
	}
	return dbTx.Metadata().Bucket(headersBucketName).Put(node.hash[:], enc)
}

func getHeader(dbTx database.Tx, hash *chainhash.Hash) (wire.BlockHeader, int32, *big.Int, er.R) {
	enc := dbTx.Metadata().Bucket(headersBucketName).Get(hash[:])
	if enc == nil {
		return wire.BlockHeader{}, 0, nil, ErrChainTipUnknown.Default()
	}
	return decodeHeaderEntry(enc)
}

// putBlock persists a block's full serialized body (transactions
// included) keyed by hash, so that every accepted block — side-chain
// candidates included — can later be replayed by a reorg without relying
// on whichever one happened to still be held in memory.
func putBlock(dbTx database.Tx, hash *chainhash.Hash, block *btcutil.Block) er.R {
	var buf bytes.Buffer
	if err := block.MsgBlock().Serialize(&buf); err != nil {
		return err
	}
	return dbTx.Metadata().Bucket(blocksBucketName).Put(hash[:], buf.Bytes())
}

// getBlock reconstructs a previously stored block by hash, restoring its
// height from the caller-supplied node since the wire encoding carries
// only the header and transactions.
func getBlock(dbTx database.Tx, hash *chainhash.Hash, height int32) (*btcutil.Block, er.R) {
	enc := dbTx.Metadata().Bucket(blocksBucketName).Get(hash[:])
	if enc == nil {
		return nil, ErrChainTipUnknown.Detail("no stored block body for this hash")
	}
	var msgBlock wire.MsgBlock
	if err := msgBlock.Deserialize(bytes.NewReader(enc)); err != nil {
		return nil, err
	}
	block := btcutil.NewBlock(&msgBlock)
	block.SetHeight(height)
	return block, nil
}

func setChainHead(dbTx database.Tx, node *blockNode) er.R {
	meta := dbTx.Metadata().Bucket(chainStateBucketName)
	if err := meta.Put(chainStateKeyBestHash, node.hash[:]); err != nil {
		return err
	}
	var heightBuf [4]byte
	binary.LittleEndian.PutUint32(heightBuf[:], uint32(node.height))
	return meta.Put(chainStateKeyBestHeight, heightBuf[:])
}

func getChainHead(dbTx database.Tx) (*chainhash.Hash, er.R) {
	meta := dbTx.Metadata().Bucket(chainStateBucketName)
	b := meta.Get(chainStateKeyBestHash)
	if b == nil {
		return nil, ErrChainTipUnknown.Default()
	}
	var h chainhash.Hash
	copy(h[:], b)
	return &h, nil
}

// utxoKey is the flattened txid‖vout key an entry is stored under.
func utxoKey(op wire.OutPoint) []byte {
	key := make([]byte, chainhash.HashSize+4)
	copy(key, op.Hash[:])
	binary.LittleEndian.PutUint32(key[chainhash.HashSize:], op.Index)
	return key
}

func encodeUtxoEntry(e *UtxoEntry) []byte {
	buf := make([]byte, 0, 13+len(e.pkScript))
	var amtBuf [8]byte
	binary.LittleEndian.PutUint64(amtBuf[:], uint64(e.amount))
	buf = append(buf, amtBuf[:]...)
	var heightBuf [4]byte
	binary.LittleEndian.PutUint32(heightBuf[:], uint32(e.blockHeight))
	buf = append(buf, heightBuf[:]...)
	flags := byte(0)
	if e.isCoinBase {
		flags |= 1
	}
	buf = append(buf, flags)
	buf = append(buf, e.pkScript...)
	return buf
}

func decodeUtxoEntry(b []byte) *UtxoEntry {
	amount := int64(binary.LittleEndian.Uint64(b[:8]))
	height := int32(binary.LittleEndian.Uint32(b[8:12]))
	isCoinBase := b[12]&1 != 0
	pkScript := append([]byte(nil), b[13:]...)
	return &UtxoEntry{amount: amount, pkScript: pkScript, blockHeight: height, isCoinBase: isCoinBase}
}

// putUtxoView persists every unspent entry in view and removes every
// entry view marked spent, applying the net effect of connecting a block
// to the on-disk UTXO set.
func putUtxoView(dbTx database.Tx, view *UtxoViewpoint) er.R {
	bucket := dbTx.Metadata().Bucket(utxoBucketName)
	for op, entry := range view.entries {
		if entry.IsSpent() {
			if err := bucket.Delete(utxoKey(op)); err != nil {
				return err
			}
			continue
		}
		if err := bucket.Put(utxoKey(op), encodeUtxoEntry(entry)); err != nil {
			return err
		}
	}
	return nil
}

// fetchUtxoEntry reads a single UTXO directly from the database, used to
// lazily populate a view for inputs not already produced earlier in the
// same block.
func fetchUtxoEntry(dbTx database.Tx, op wire.OutPoint) *UtxoEntry {
	b := dbTx.Metadata().Bucket(utxoBucketName).Get(utxoKey(op))
	if b == nil {
		return nil
	}
	return decodeUtxoEntry(b)
}

// putUndoBlock persists the spent-transaction-output records needed to
// reverse a block's effect on the UTXO set, keyed by height, keeping at
// most maxReorgDepth of them.
func putUndoBlock(dbTx database.Tx, height int32, stxos []SpentTxOut, maxReorgDepth int32) er.R {
	bucket := dbTx.Metadata().Bucket(undoBucketName)
	var buf bytes.Buffer
	for _, s := range stxos {
		var amt [8]byte
		binary.LittleEndian.PutUint64(amt[:], uint64(s.Amount))
		buf.Write(amt[:])
		var h [4]byte
		binary.LittleEndian.PutUint32(h[:], uint32(s.Height))
		buf.Write(h[:])
		flags := byte(0)
		if s.IsCoinBase {
			flags |= 1
		}
		buf.WriteByte(flags)
		var slen [4]byte
		binary.LittleEndian.PutUint32(slen[:], uint32(len(s.PkScript)))
		buf.Write(slen[:])
		buf.Write(s.PkScript)
	}

	var heightKey [4]byte
	binary.LittleEndian.PutUint32(heightKey[:], uint32(height))
	if err := bucket.Put(heightKey[:], buf.Bytes()); err != nil {
		return err
	}

	if height > maxReorgDepth {
		var pruneKey [4]byte
		binary.LittleEndian.PutUint32(pruneKey[:], uint32(height-maxReorgDepth))
		_ = bucket.Delete(pruneKey[:])
	}
	return nil
}

func getUndoBlock(dbTx database.Tx, height int32) ([]SpentTxOut, er.R) {
	bucket := dbTx.Metadata().Bucket(undoBucketName)
	var heightKey [4]byte
	binary.LittleEndian.PutUint32(heightKey[:], uint32(height))
	b := bucket.Get(heightKey[:])
	if b == nil {
		return nil, ErrReorgTooDeep.Detail("no undo record for this height, reorg exceeds retained depth")
	}

	var stxos []SpentTxOut
	r := bytes.NewReader(b)
	for r.Len() > 0 {
		var amt [8]byte
		if _, err := r.Read(amt[:]); err != nil {
			return nil, er.E(err)
		}
		var h [4]byte
		if _, err := r.Read(h[:]); err != nil {
			return nil, er.E(err)
		}
		flags, err := r.ReadByte()
		if err != nil {
			return nil, er.E(err)
		}
		var slen [4]byte
		if _, err := r.Read(slen[:]); err != nil {
			return nil, er.E(err)
		}
		script := make([]byte, binary.LittleEndian.Uint32(slen[:]))
		if _, err := r.Read(script); err != nil {
			return nil, er.E(err)
		}
		stxos = append(stxos, SpentTxOut{
			Amount:     int64(binary.LittleEndian.Uint64(amt[:])),
			Height:     int32(binary.LittleEndian.Uint32(h[:])),
			IsCoinBase: flags&1 != 0,
			PkScript:   script,
		})
	}
	return stxos, nil
}
