// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/wire/constants"
)

const (
	// defaultTxInOutAlloc is the default size used for the backing array for
	// transaction inputs and outputs.  The array will dynamically grow as needed,
	// but this figure is intended to provide enough space for the number of
	// inputs and outputs in a typical transaction without needing to grow the
	// backing array multiple times.
	defaultTxInOutAlloc = 15

	// minTxInPayload is the minimum payload size for a transaction input.
	minTxInPayload = 9 + chainhash.HashSize

	// maxTxInPerMessage is the maximum number of transactions inputs that
	// a transaction which fits into a message could possibly have.
	maxTxInPerMessage = (MaxBlockPayload / minTxInPayload) + 1

	// maxTxOutPerMessage is the maximum number of transactions outputs that
	// a transaction which fits into a message could possibly have.
	maxTxOutPerMessage = (MaxBlockPayload / constants.MinTxOutPayload) + 1

	// freeListMaxScriptSize is the size of each buffer in the free list
	// that is used for deserializing scripts from the wire before they are
	// concatenated into a single contiguous buffer.
	freeListMaxScriptSize = 512

	// freeListMaxItems is the number of buffers to keep in the free list.
	freeListMaxItems = 12500

	// maxWitnessItemsPerInput is the maximum number of witness items to be
	// read for the witness data for a single TxIn.
	maxWitnessItemsPerInput = 500000

	// maxWitnessItemSize is the maximum allowed size for an item within an
	// input's witness data.
	maxWitnessItemSize = 11000

	// MaxTxSize is the block-size-limit bound on a single transaction's
	// serialized size.
	MaxTxSize = MaxBlockPayload
)

// witnessMarkerBytes are a pair of bytes specific to the witness encoding.
// The first byte is an always 0x00 marker byte distinguishing a witness
// transaction from a legacy one; the second, currently always 0x01, is the
// Flag field.
var witnessMarkerBytes = []byte{0x00, 0x01}

// scriptFreeList defines a free list of byte slices used to provide
// temporary buffers for deserializing scripts, greatly reducing the number
// of allocations required.
type scriptFreeList chan []byte

func (c scriptFreeList) Borrow(size uint64) []byte {
	if size > freeListMaxScriptSize {
		return make([]byte, size)
	}
	var buf []byte
	select {
	case buf = <-c:
	default:
		buf = make([]byte, freeListMaxScriptSize)
	}
	return buf[:size]
}

func (c scriptFreeList) Return(buf []byte) {
	if cap(buf) != freeListMaxScriptSize {
		return
	}
	select {
	case c <- buf:
	default:
	}
}

var scriptPool scriptFreeList = make(chan []byte, freeListMaxItems)

// OutPoint defines a CRW data type used to track previous transaction
// outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new CRW transaction outpoint with the provided hash
// and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// IsNull returns true if the outpoint is the all-zero hash, 0xFFFFFFFF
// index sentinel that marks a coinbase input.
func (o *OutPoint) IsNull() bool {
	return o.Index == constants.MaxPrevOutIndex && o.Hash == (chainhash.Hash{})
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// TxIn defines a CRW transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Witness          TxWitness
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	return 40 + VarIntSerializeSize(uint64(len(t.SignatureScript))) + len(t.SignatureScript)
}

// NewTxIn returns a new CRW transaction input with the provided previous
// outpoint, signature script and witness, using the default max sequence.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Witness:          witness,
		Sequence:         constants.MaxTxInSequenceNum,
	}
}

// IsCoinBase reports whether this input is the null-outpoint sentinel
// marking a coinbase input.
func (t *TxIn) IsCoinBase() bool {
	return t.PreviousOutPoint.IsNull()
}

// TxWitness is the witness stack for a TxIn: a slice of byte slices.
type TxWitness [][]byte

// SerializeSize returns the number of bytes it would take to serialize the
// witness.
func (t TxWitness) SerializeSize() int {
	n := VarIntSerializeSize(uint64(len(t)))
	for _, witItem := range t {
		n += VarIntSerializeSize(uint64(len(witItem)))
		n += len(witItem)
	}
	return n
}

// TxOut defines a CRW transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// NewTxOut returns a new CRW transaction output.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// MsgTx implements the Message interface and represents a CRW tx message.
//
// Use AddTxIn and AddTxOut to build up the list of transaction inputs and
// outputs.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) { msg.TxIn = append(msg.TxIn, ti) }

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) { msg.TxOut = append(msg.TxOut, to) }

// TxHash generates the "txid" for the transaction: sha256d of the
// non-witness serialization.
func (msg *MsgTx) TxHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSizeStripped()))
	_ = msg.SerializeNoWitness(buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// WitnessHash generates the "wtxid": the hash of the transaction serialized
// with witness data included. If the transaction carries no witness data, wtxid == txid.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	if msg.HasWitness() {
		buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
		_ = msg.Serialize(buf)
		return chainhash.DoubleHashH(buf.Bytes())
	}
	return msg.TxHash()
}

// Copy creates a deep copy of a transaction so the original is unaffected
// by mutations to the copy.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		newOutPoint := OutPoint{Hash: oldTxIn.PreviousOutPoint.Hash, Index: oldTxIn.PreviousOutPoint.Index}

		var newScript []byte
		if len(oldTxIn.SignatureScript) > 0 {
			newScript = make([]byte, len(oldTxIn.SignatureScript))
			copy(newScript, oldTxIn.SignatureScript)
		}

		newTxIn := TxIn{
			PreviousOutPoint: newOutPoint,
			SignatureScript:  newScript,
			Sequence:         oldTxIn.Sequence,
		}

		if len(oldTxIn.Witness) != 0 {
			newTxIn.Witness = make([][]byte, len(oldTxIn.Witness))
			for i, oldItem := range oldTxIn.Witness {
				newItem := make([]byte, len(oldItem))
				copy(newItem, oldItem)
				newTxIn.Witness[i] = newItem
			}
		}

		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	for _, oldTxOut := range msg.TxOut {
		var newScript []byte
		if len(oldTxOut.PkScript) > 0 {
			newScript = make([]byte, len(oldTxOut.PkScript))
			copy(newScript, oldTxOut.PkScript)
		}
		newTx.TxOut = append(newTx.TxOut, &TxOut{Value: oldTxOut.Value, PkScript: newScript})
	}

	return &newTx
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	version, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	msg.Version = int32(version)

	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}

	// A count of zero indicates this is a transaction with witness data:
	// the next byte is the Flag field, then the real input count follows.
	var flag [1]byte
	if count == 0 && enc&WitnessEncoding != 0 {
		if _, errr := io.ReadFull(r, flag[:]); errr != nil {
			return er.E(errr)
		}
		if flag[0] != 0x01 {
			return messageError("MsgTx.BtcDecode", fmt.Sprintf("witness tx but flag byte is %x", flag))
		}
		count, err = ReadVarInt(r, pver)
		if err != nil {
			return err
		}
	}

	if count > uint64(maxTxInPerMessage) {
		return messageError("MsgTx.BtcDecode", fmt.Sprintf(
			"too many input transactions to fit into max message size [count %d, max %d]", count, maxTxInPerMessage))
	}

	returnScriptBuffers := func() {
		for _, txIn := range msg.TxIn {
			if txIn == nil {
				continue
			}
			if txIn.SignatureScript != nil {
				scriptPool.Return(txIn.SignatureScript)
			}
			for _, witnessElem := range txIn.Witness {
				if witnessElem != nil {
					scriptPool.Return(witnessElem)
				}
			}
		}
		for _, txOut := range msg.TxOut {
			if txOut == nil || txOut.PkScript == nil {
				continue
			}
			scriptPool.Return(txOut.PkScript)
		}
	}

	var totalScriptSize uint64
	txIns := make([]TxIn, count)
	msg.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		ti := &txIns[i]
		msg.TxIn[i] = ti
		if err := readTxIn(r, pver, ti); err != nil {
			returnScriptBuffers()
			return err
		}
		totalScriptSize += uint64(len(ti.SignatureScript))
	}

	count, err = ReadVarInt(r, pver)
	if err != nil {
		returnScriptBuffers()
		return err
	}
	if count > uint64(maxTxOutPerMessage) {
		returnScriptBuffers()
		return messageError("MsgTx.BtcDecode", fmt.Sprintf(
			"too many output transactions to fit into max message size [count %d, max %d]", count, maxTxOutPerMessage))
	}

	txOuts := make([]TxOut, count)
	msg.TxOut = make([]*TxOut, count)
	for i := uint64(0); i < count; i++ {
		to := &txOuts[i]
		msg.TxOut[i] = to
		if err := readTxOut(r, pver, to); err != nil {
			returnScriptBuffers()
			return err
		}
		totalScriptSize += uint64(len(to.PkScript))
	}

	if flag[0] != 0 && enc&WitnessEncoding != 0 {
		for _, txin := range msg.TxIn {
			witCount, err := ReadVarInt(r, pver)
			if err != nil {
				returnScriptBuffers()
				return err
			}
			if witCount > maxWitnessItemsPerInput {
				returnScriptBuffers()
				return messageError("MsgTx.BtcDecode", fmt.Sprintf(
					"too many witness items to fit into max message size [count %d, max %d]", witCount, maxWitnessItemsPerInput))
			}
			txin.Witness = make([][]byte, witCount)
			for j := uint64(0); j < witCount; j++ {
				txin.Witness[j], err = readScript(r, pver, maxWitnessItemSize, "script witness item")
				if err != nil {
					returnScriptBuffers()
					return err
				}
				totalScriptSize += uint64(len(txin.Witness[j]))
			}
		}
	}

	msg.LockTime, err = binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		returnScriptBuffers()
		return err
	}

	// Collapse all the borrowed per-script buffers into one contiguous
	// allocation and return the originals to the pool.
	var offset uint64
	scripts := make([]byte, totalScriptSize)
	for i := 0; i < len(msg.TxIn); i++ {
		signatureScript := msg.TxIn[i].SignatureScript
		copy(scripts[offset:], signatureScript)
		scriptSize := uint64(len(signatureScript))
		end := offset + scriptSize
		msg.TxIn[i].SignatureScript = scripts[offset:end:end]
		offset += scriptSize
		scriptPool.Return(signatureScript)

		for j := 0; j < len(msg.TxIn[i].Witness); j++ {
			witnessElem := msg.TxIn[i].Witness[j]
			copy(scripts[offset:], witnessElem)
			witnessElemSize := uint64(len(witnessElem))
			end := offset + witnessElemSize
			msg.TxIn[i].Witness[j] = scripts[offset:end:end]
			offset += witnessElemSize
			scriptPool.Return(witnessElem)
		}
	}
	for i := 0; i < len(msg.TxOut); i++ {
		pkScript := msg.TxOut[i].PkScript
		copy(scripts[offset:], pkScript)
		scriptSize := uint64(len(pkScript))
		end := offset + scriptSize
		msg.TxOut[i].PkScript = scripts[offset:end:end]
		offset += scriptSize
		scriptPool.Return(pkScript)
	}

	return nil
}

// Deserialize decodes a transaction from r using the long-term storage
// format, which is identical to the wire format at protocol version 0.
func (msg *MsgTx) Deserialize(r io.Reader) er.R {
	return msg.BtcDecode(r, 0, WitnessEncoding)
}

// DeserializeNoWitness decodes a transaction from r, requiring the legacy
// (non-witness) serialization format.
func (msg *MsgTx) DeserializeNoWitness(r io.Reader) er.R {
	return msg.BtcDecode(r, 0, BaseEncoding)
}

func write32(w io.Writer, x uint32) er.R {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], x)
	_, err := w.Write(b[:])
	return er.E(err)
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	if err := write32(w, uint32(msg.Version)); err != nil {
		return err
	}

	doWitness := enc&WitnessEncoding != 0 && msg.HasWitness()
	if doWitness {
		if _, errr := w.Write(witnessMarkerBytes); errr != nil {
			return er.E(errr)
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
			return err
		}
		if err := WriteVarBytes(w, pver, ti.SignatureScript); err != nil {
			return err
		}
		if err := write32(w, ti.Sequence); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := WriteTxOut(w, pver, to); err != nil {
			return err
		}
	}

	if doWitness {
		for _, ti := range msg.TxIn {
			if err := writeTxWitness(w, pver, ti.Witness); err != nil {
				return err
			}
		}
	}

	return binarySerializer.PutUint32(w, littleEndian, msg.LockTime)
}

// HasWitness returns true if any of the inputs within the transaction carry
// witness data.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if len(txIn.Witness) != 0 {
			return true
		}
	}
	return false
}

// Serialize encodes the transaction to w, including witness data if present.
func (msg *MsgTx) Serialize(w io.Writer) er.R {
	return msg.BtcEncode(w, 0, WitnessEncoding)
}

// SerializeNoWitness encodes the transaction to w using the legacy,
// non-witness serialization even if witness data is present.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) er.R {
	return msg.BtcEncode(w, 0, BaseEncoding)
}

func (msg *MsgTx) baseSize() int {
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) + VarIntSerializeSize(uint64(len(msg.TxOut)))
	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}
	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}
	return n
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction, including witness data if present.
func (msg *MsgTx) SerializeSize() int {
	n := msg.baseSize()
	if msg.HasWitness() {
		n += 2
		for _, txin := range msg.TxIn {
			n += txin.Witness.SerializeSize()
		}
	}
	return n
}

// SerializeSizeStripped returns the number of bytes it would take to
// serialize the transaction, excluding any witness data.
func (msg *MsgTx) SerializeSizeStripped() int {
	return msg.baseSize()
}

// Command returns the protocol command string for MsgTx.
func (msg *MsgTx) Command() string { return CmdTx }

// MaxPayloadLength returns the maximum length the payload can be for MsgTx.
func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 { return MaxBlockPayload }

// NewMsgTx returns a new CRW tx message with the given version and no
// inputs or outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}

func readOutPoint(r io.Reader, op *OutPoint) er.R {
	if _, errr := io.ReadFull(r, op.Hash[:]); errr != nil {
		return er.E(errr)
	}
	v, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	op.Index = v
	return nil
}

func writeOutPoint(w io.Writer, op *OutPoint) er.R {
	if _, errr := w.Write(op.Hash[:]); errr != nil {
		return er.E(errr)
	}
	return binarySerializer.PutUint32(w, littleEndian, op.Index)
}

// readScript reads a variable length byte array representing a script,
// rejecting lengths beyond maxAllowed to guard against memory-exhaustion
// attacks from malformed input.
func readScript(r io.Reader, pver uint32, maxAllowed uint32, fieldName string) ([]byte, er.R) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return nil, err
	}
	if count > uint64(maxAllowed) {
		return nil, messageError("readScript", fmt.Sprintf(
			"%s is larger than the max allowed size [count %d, max %d]", fieldName, count, maxAllowed))
	}
	b := scriptPool.Borrow(count)
	if _, errr := io.ReadFull(r, b); errr != nil {
		scriptPool.Return(b)
		return nil, er.E(errr)
	}
	return b, nil
}

func readTxIn(r io.Reader, pver uint32, ti *TxIn) er.R {
	if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
		return err
	}
	sigScript, err := readScript(r, pver, MaxMessagePayload, "transaction input signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = sigScript
	return readElement(r, &ti.Sequence)
}

func readTxOut(r io.Reader, pver uint32, to *TxOut) er.R {
	if err := readElement(r, &to.Value); err != nil {
		return err
	}
	var errR er.R
	to.PkScript, errR = readScript(r, pver, MaxMessagePayload, "transaction output public key script")
	return errR
}

// WriteTxOut encodes to into the CRW protocol encoding for a transaction
// output to w. Exported so txscript can compute BIP-143 sighashes, which
// re-serialize the spending transaction's outputs.
func WriteTxOut(w io.Writer, pver uint32, to *TxOut) er.R {
	if err := binarySerializer.PutUint64(w, littleEndian, uint64(to.Value)); err != nil {
		return err
	}
	return WriteVarBytes(w, pver, to.PkScript)
}

func writeTxWitness(w io.Writer, pver uint32, wit [][]byte) er.R {
	if err := WriteVarInt(w, pver, uint64(len(wit))); err != nil {
		return err
	}
	for _, item := range wit {
		if err := WriteVarBytes(w, pver, item); err != nil {
			return err
		}
	}
	return nil
}
