// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/defunctec/crownj/btcutil/er"
)

// MsgPing implements the Message interface and represents a CRW ping
// message, used to confirm a peer is still responsive.
type MsgPing struct {
	Nonce uint64
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgPing) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	nonce, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return err
	}
	msg.Nonce = nonce
	return nil
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgPing) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	return binarySerializer.PutUint64(w, littleEndian, msg.Nonce)
}

// Command returns the protocol command string for MsgPing.
func (msg *MsgPing) Command() string { return CmdPing }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgPing.
func (msg *MsgPing) MaxPayloadLength(pver uint32) uint32 { return 8 }

// NewMsgPing returns a new CRW ping message with the given nonce.
func NewMsgPing(nonce uint64) *MsgPing { return &MsgPing{Nonce: nonce} }
