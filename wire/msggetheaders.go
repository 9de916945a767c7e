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

// MaxBlockLocatorsPerMsg is the maximum number of block locator hashes
// allowed per message.
const MaxBlockLocatorsPerMsg = 500

// MsgGetHeaders implements the Message interface and represents a CRW
// getheaders message, used to request a list of block headers starting
// after the last known hash in BlockLocatorHashes.
type MsgGetHeaders struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []*chainhash.Hash
	HashStop           chainhash.Hash
}

// AddBlockLocatorHash adds a new block locator hash to the message.
func (msg *MsgGetHeaders) AddBlockLocatorHash(hash *chainhash.Hash) er.R {
	if len(msg.BlockLocatorHashes)+1 > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetHeaders.AddBlockLocatorHash", fmt.Sprintf(
			"too many block locator hashes for message [max %d]", MaxBlockLocatorsPerMsg))
	}
	msg.BlockLocatorHashes = append(msg.BlockLocatorHashes, hash)
	return nil
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgGetHeaders) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	v, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = v

	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetHeaders.BtcDecode", fmt.Sprintf(
			"too many block locator hashes for message [count %d, max %d]", count, MaxBlockLocatorsPerMsg))
	}

	locatorHashes := make([]chainhash.Hash, count)
	msg.BlockLocatorHashes = make([]*chainhash.Hash, 0, count)
	for i := uint64(0); i < count; i++ {
		hash := &locatorHashes[i]
		if _, errr := io.ReadFull(r, hash[:]); errr != nil {
			return er.E(errr)
		}
		msg.BlockLocatorHashes = append(msg.BlockLocatorHashes, hash)
	}

	_, errr := io.ReadFull(r, msg.HashStop[:])
	return er.E(errr)
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgGetHeaders) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	count := len(msg.BlockLocatorHashes)
	if count > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetHeaders.BtcEncode", fmt.Sprintf(
			"too many block locator hashes for message [count %d, max %d]", count, MaxBlockLocatorsPerMsg))
	}

	if err := binarySerializer.PutUint32(w, littleEndian, msg.ProtocolVersion); err != nil {
		return err
	}
	if err := WriteVarInt(w, pver, uint64(count)); err != nil {
		return err
	}
	for _, hash := range msg.BlockLocatorHashes {
		if _, errr := w.Write(hash[:]); errr != nil {
			return er.E(errr)
		}
	}
	_, errr := w.Write(msg.HashStop[:])
	return er.E(errr)
}

// Command returns the protocol command string for MsgGetHeaders.
func (msg *MsgGetHeaders) Command() string { return CmdGetHeaders }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgGetHeaders.
func (msg *MsgGetHeaders) MaxPayloadLength(pver uint32) uint32 {
	return 4 + MaxVarIntPayload + (MaxBlockLocatorsPerMsg * chainhash.HashSize) + chainhash.HashSize
}

// NewMsgGetHeaders returns a new CRW getheaders message that conforms to
// the Message interface.
func NewMsgGetHeaders() *MsgGetHeaders {
	return &MsgGetHeaders{
		ProtocolVersion:    ProtocolVersion,
		BlockLocatorHashes: make([]*chainhash.Hash, 0, MaxBlockLocatorsPerMsg),
	}
}
