// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/txscript/opcode"
	"github.com/defunctec/crownj/txscript/parsescript"
	"github.com/defunctec/crownj/wire"
)

// SigHashType represents the hash type bits at the end of a signature,
// selecting which parts of the transaction the signature commits to.
type SigHashType uint32

const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	sigHashMask = 0x1f
)

var errInvalidSigHashSingleIndex = er.NewErrorType("txscript").Code("ErrInvalidSigHashSingleIndex")

// CalcSignatureHash computes the legacy (pre-segwit) signature hash for the
// idx'th input of tx spending a previous output locked by subScript,
// matching the exact transformation the reference SignatureHash applies:
// strip OP_CODESEPARATOR, then blank out the inputs/outputs the hashType
// excludes, before double-sha256'ing the result.
func CalcSignatureHash(subScript []parsescript.ParsedOpcode, hashType SigHashType, tx *wire.MsgTx, idx int) ([]byte, er.R) {
	if idx >= len(tx.TxIn) {
		return nil, errInvalidSigHashSingleIndex.Detail("idx out of range for tx")
	}

	subScript = parsescript.RemoveOpcode(subScript, opcode.OP_CODESEPARATOR)

	txCopy := tx.Copy()
	for i := range txCopy.TxIn {
		if i == idx {
			raw, err := parsescript.UnparseScript(subScript)
			if err != nil {
				return nil, err
			}
			txCopy.TxIn[i].SignatureScript = raw
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
		txCopy.TxIn[i].Witness = nil
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0]
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	case SigHashSingle:
		if idx >= len(txCopy.TxOut) {
			return nil, errInvalidSigHashSingleIndex.Detail("SIGHASH_SINGLE with no matching output")
		}
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	default:
		// SigHashAll and SigHashOld commit to every input and output as-is.
	}

	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	var buf bytes.Buffer
	if err := txCopy.SerializeNoWitness(&buf); err != nil {
		return nil, err
	}
	var hashTypeBuf [4]byte
	binary.LittleEndian.PutUint32(hashTypeBuf[:], uint32(hashType))
	buf.Write(hashTypeBuf[:])

	return chainhash.DoubleHashB(buf.Bytes()), nil
}

// calcWitnessSignatureHash computes the BIP-143 signature hash used for
// P2WPKH/P2WSH inputs, which commits to the spent amount and to the
// aggregate of all prevouts/sequences/outputs rather than re-serializing
// the whole (potentially large) transaction for every input.
func calcWitnessSignatureHash(subScript []parsescript.ParsedOpcode, hashType SigHashType, tx *wire.MsgTx, idx int, amount int64) ([]byte, er.R) {
	if idx >= len(tx.TxIn) {
		return nil, errInvalidSigHashSingleIndex.Detail("idx out of range for tx")
	}

	var hashPrevouts, hashSequence, hashOutputs chainhash.Hash

	if hashType&SigHashAnyOneCanPay == 0 {
		var b bytes.Buffer
		for _, in := range tx.TxIn {
			b.Write(in.PreviousOutPoint.Hash[:])
			var idxBuf [4]byte
			binary.LittleEndian.PutUint32(idxBuf[:], in.PreviousOutPoint.Index)
			b.Write(idxBuf[:])
		}
		hashPrevouts = chainhash.DoubleHashH(b.Bytes())
	}

	if hashType&SigHashAnyOneCanPay == 0 &&
		hashType&sigHashMask != SigHashSingle &&
		hashType&sigHashMask != SigHashNone {
		var b bytes.Buffer
		for _, in := range tx.TxIn {
			var seqBuf [4]byte
			binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
			b.Write(seqBuf[:])
		}
		hashSequence = chainhash.DoubleHashH(b.Bytes())
	}

	if hashType&sigHashMask != SigHashSingle && hashType&sigHashMask != SigHashNone {
		var b bytes.Buffer
		for _, out := range tx.TxOut {
			if err := wire.WriteTxOut(&b, 0, out); err != nil {
				return nil, err
			}
		}
		hashOutputs = chainhash.DoubleHashH(b.Bytes())
	} else if hashType&sigHashMask == SigHashSingle && idx < len(tx.TxOut) {
		var b bytes.Buffer
		if err := wire.WriteTxOut(&b, 0, tx.TxOut[idx]); err != nil {
			return nil, err
		}
		hashOutputs = chainhash.DoubleHashH(b.Bytes())
	}

	var sigHashBuf bytes.Buffer

	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], uint32(tx.Version))
	sigHashBuf.Write(verBuf[:])

	sigHashBuf.Write(hashPrevouts[:])
	sigHashBuf.Write(hashSequence[:])

	in := tx.TxIn[idx]
	sigHashBuf.Write(in.PreviousOutPoint.Hash[:])
	var outIdxBuf [4]byte
	binary.LittleEndian.PutUint32(outIdxBuf[:], in.PreviousOutPoint.Index)
	sigHashBuf.Write(outIdxBuf[:])

	rawScript, err := parsescript.UnparseScript(subScript)
	if err != nil {
		return nil, err
	}
	if err := wire.WriteVarInt(&sigHashBuf, 0, uint64(len(rawScript))); err != nil {
		return nil, err
	}
	sigHashBuf.Write(rawScript)

	var amtBuf [8]byte
	binary.LittleEndian.PutUint64(amtBuf[:], uint64(amount))
	sigHashBuf.Write(amtBuf[:])

	var seqBuf [4]byte
	binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
	sigHashBuf.Write(seqBuf[:])

	sigHashBuf.Write(hashOutputs[:])

	var lockBuf [4]byte
	binary.LittleEndian.PutUint32(lockBuf[:], tx.LockTime)
	sigHashBuf.Write(lockBuf[:])

	var hashTypeBuf [4]byte
	binary.LittleEndian.PutUint32(hashTypeBuf[:], uint32(hashType))
	sigHashBuf.Write(hashTypeBuf[:])

	return chainhash.DoubleHashB(sigHashBuf.Bytes()), nil
}

// p2pkhScriptForHash160 builds the implicit P2PKH script a P2WPKH witness
// program's sighash commits to, per BIP-143: "the scriptCode is
// 0x1976a914{20-byte-hash}88ac".
func p2pkhScriptForHash160(hash160 []byte) []parsescript.ParsedOpcode {
	return []parsescript.ParsedOpcode{
		{Opcode: opcode.OP_DUP},
		{Opcode: opcode.OP_HASH160},
		{Opcode: byte(opcode.OP_DATA_1 + 19), Data: hash160},
		{Opcode: opcode.OP_EQUALVERIFY},
		{Opcode: opcode.OP_CHECKSIG},
	}
}
