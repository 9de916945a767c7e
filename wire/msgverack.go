// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/defunctec/crownj/btcutil/er"
)

// MsgVerAck defines a CRW verack message, sent in response to a version
// message to acknowledge the connection handshake.
type MsgVerAck struct{}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface). verack carries no payload.
func (msg *MsgVerAck) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R { return nil }

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface). verack carries no payload.
func (msg *MsgVerAck) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R { return nil }

// Command returns the protocol command string for MsgVerAck.
func (msg *MsgVerAck) Command() string { return CmdVerAck }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgVerAck.
func (msg *MsgVerAck) MaxPayloadLength(pver uint32) uint32 { return 0 }

// NewMsgVerAck returns a new CRW verack message.
func NewMsgVerAck() *MsgVerAck { return &MsgVerAck{} }
