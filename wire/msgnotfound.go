// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/defunctec/crownj/btcutil/er"
)

// MsgNotFound implements the Message interface and represents a CRW
// notfound message, sent in response to a getdata request for an item the
// peer could not supply.
type MsgNotFound struct {
	InvList []*InvVect
}

// AddInvVect adds an inventory vector to the message.
func (msg *MsgNotFound) AddInvVect(iv *InvVect) er.R {
	if len(msg.InvList)+1 > maxInvPerMsg {
		return messageError("MsgNotFound.AddInvVect", fmt.Sprintf("too many inv vectors for message [max %d]", maxInvPerMsg))
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgNotFound) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	invList, err := decodeInvList(r, pver, "MsgNotFound.BtcDecode")
	if err != nil {
		return err
	}
	msg.InvList = invList
	return nil
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgNotFound) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	return encodeInvList(w, pver, msg.InvList, "MsgNotFound.BtcEncode")
}

// Command returns the protocol command string for MsgNotFound.
func (msg *MsgNotFound) Command() string { return CmdNotFound }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgNotFound.
func (msg *MsgNotFound) MaxPayloadLength(pver uint32) uint32 { return maxInvPayload }

// NewMsgNotFound returns a new CRW notfound message that conforms to the
// Message interface.
func NewMsgNotFound() *MsgNotFound {
	return &MsgNotFound{InvList: make([]*InvVect, 0, defaultTxInOutAlloc)}
}
