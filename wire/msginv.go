// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/defunctec/crownj/btcutil/er"
)

// decodeInvList reads a var-int-prefixed list of inventory vectors shared by
// inv, getdata and notfound, rejecting lists over maxInvPerMsg entries.
func decodeInvList(r io.Reader, pver uint32, caller string) ([]*InvVect, er.R) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return nil, err
	}
	if count > maxInvPerMsg {
		return nil, messageError(caller, fmt.Sprintf(
			"too many inventory vectors for message [count %d, max %d]", count, maxInvPerMsg))
	}

	invList := make([]*InvVect, count)
	ivs := make([]InvVect, count)
	for i := uint64(0); i < count; i++ {
		iv := &ivs[i]
		if err := readInvVect(r, pver, iv); err != nil {
			return nil, err
		}
		invList[i] = iv
	}
	return invList, nil
}

func encodeInvList(w io.Writer, pver uint32, invList []*InvVect, caller string) er.R {
	if len(invList) > maxInvPerMsg {
		return messageError(caller, fmt.Sprintf(
			"too many inventory vectors for message [count %d, max %d]", len(invList), maxInvPerMsg))
	}
	if err := WriteVarInt(w, pver, uint64(len(invList))); err != nil {
		return err
	}
	for _, iv := range invList {
		if err := writeInvVect(w, pver, iv); err != nil {
			return err
		}
	}
	return nil
}

// MsgInv implements the Message interface and represents a CRW inv message.
// It is used to advertise a peer's knowledge of transactions and/or blocks.
type MsgInv struct {
	InvList []*InvVect
}

// AddInvVect adds an inventory vector to the message.
func (msg *MsgInv) AddInvVect(iv *InvVect) er.R {
	if len(msg.InvList)+1 > maxInvPerMsg {
		return messageError("MsgInv.AddInvVect", fmt.Sprintf("too many inv vectors for message [max %d]", maxInvPerMsg))
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgInv) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	invList, err := decodeInvList(r, pver, "MsgInv.BtcDecode")
	if err != nil {
		return err
	}
	msg.InvList = invList
	return nil
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgInv) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	return encodeInvList(w, pver, msg.InvList, "MsgInv.BtcEncode")
}

// Command returns the protocol command string for MsgInv.
func (msg *MsgInv) Command() string { return CmdInv }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgInv.
func (msg *MsgInv) MaxPayloadLength(pver uint32) uint32 { return maxInvPayload }

// NewMsgInv returns a new CRW inv message that conforms to the Message
// interface.
func NewMsgInv() *MsgInv { return &MsgInv{InvList: make([]*InvVect, 0, defaultTxInOutAlloc)} }

// NewMsgInvSizeHint returns a new CRW inv message with a pre-allocated
// backing array sized for sizeHint entries.
func NewMsgInvSizeHint(sizeHint uint) *MsgInv {
	if sizeHint > maxInvPerMsg {
		sizeHint = maxInvPerMsg
	}
	return &MsgInv{InvList: make([]*InvVect, 0, sizeHint)}
}
