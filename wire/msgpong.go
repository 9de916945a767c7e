// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/defunctec/crownj/btcutil/er"
)

// MsgPong implements the Message interface and represents a CRW pong
// message, sent in reply to a ping carrying the same nonce.
type MsgPong struct {
	Nonce uint64
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgPong) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	nonce, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return err
	}
	msg.Nonce = nonce
	return nil
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgPong) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	return binarySerializer.PutUint64(w, littleEndian, msg.Nonce)
}

// Command returns the protocol command string for MsgPong.
func (msg *MsgPong) Command() string { return CmdPong }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgPong.
func (msg *MsgPong) MaxPayloadLength(pver uint32) uint32 { return 8 }

// NewMsgPong returns a new CRW pong message with the given nonce.
func NewMsgPong(nonce uint64) *MsgPong { return &MsgPong{Nonce: nonce} }
