// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/defunctec/crownj/btcutil/er"
)

// MsgSendHeaders implements the Message interface and represents a CRW
// sendheaders message, sent after the handshake to ask that new blocks be
// announced via headers rather than inv messages. It carries no payload.
type MsgSendHeaders struct{}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface). sendheaders carries no
// payload.
func (msg *MsgSendHeaders) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R { return nil }

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface). sendheaders carries no payload.
func (msg *MsgSendHeaders) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R { return nil }

// Command returns the protocol command string for MsgSendHeaders.
func (msg *MsgSendHeaders) Command() string { return CmdSendHeaders }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgSendHeaders.
func (msg *MsgSendHeaders) MaxPayloadLength(pver uint32) uint32 { return 0 }

// NewMsgSendHeaders returns a new CRW sendheaders message.
func NewMsgSendHeaders() *MsgSendHeaders { return &MsgSendHeaders{} }
