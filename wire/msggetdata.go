// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/defunctec/crownj/btcutil/er"
)

// MsgGetData implements the Message interface and represents a CRW getdata
// message, used to request one or more transactions and/or blocks
// previously advertised via an inv message.
type MsgGetData struct {
	InvList []*InvVect
}

// AddInvVect adds an inventory vector to the message.
func (msg *MsgGetData) AddInvVect(iv *InvVect) er.R {
	if len(msg.InvList)+1 > maxInvPerMsg {
		return messageError("MsgGetData.AddInvVect", fmt.Sprintf("too many inv vectors for message [max %d]", maxInvPerMsg))
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgGetData) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	invList, err := decodeInvList(r, pver, "MsgGetData.BtcDecode")
	if err != nil {
		return err
	}
	msg.InvList = invList
	return nil
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgGetData) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	return encodeInvList(w, pver, msg.InvList, "MsgGetData.BtcEncode")
}

// Command returns the protocol command string for MsgGetData.
func (msg *MsgGetData) Command() string { return CmdGetData }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgGetData.
func (msg *MsgGetData) MaxPayloadLength(pver uint32) uint32 { return maxInvPayload }

// NewMsgGetData returns a new CRW getdata message that conforms to the
// Message interface.
func NewMsgGetData() *MsgGetData {
	return &MsgGetData{InvList: make([]*InvVect, 0, defaultTxInOutAlloc)}
}
