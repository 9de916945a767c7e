// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/defunctec/crownj/btcutil/er"
)

// MsgMemPool implements the Message interface and represents a CRW mempool
// message, used to request the hashes of all transactions currently in a
// peer's mempool. It carries no payload.
type MsgMemPool struct{}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface). mempool carries no payload.
func (msg *MsgMemPool) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R { return nil }

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface). mempool carries no payload.
func (msg *MsgMemPool) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R { return nil }

// Command returns the protocol command string for MsgMemPool.
func (msg *MsgMemPool) Command() string { return CmdMemPool }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgMemPool.
func (msg *MsgMemPool) MaxPayloadLength(pver uint32) uint32 { return 0 }

// NewMsgMemPool returns a new CRW mempool message.
func NewMsgMemPool() *MsgMemPool { return &MsgMemPool{} }
