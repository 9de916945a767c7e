// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/defunctec/crownj/btcutil/er"
)

// MaxBlockHeadersPerMsg is the maximum number of block headers that can be
// in a single CRW headers message.
const MaxBlockHeadersPerMsg = 2000

// MsgHeaders implements the Message interface and represents a CRW headers
// message, sent in response to a getheaders message.
type MsgHeaders struct {
	Headers []*BlockHeader
}

// AddBlockHeader adds a new block header to the message.
func (msg *MsgHeaders) AddBlockHeader(bh *BlockHeader) er.R {
	if len(msg.Headers)+1 > MaxBlockHeadersPerMsg {
		return messageError("MsgHeaders.AddBlockHeader", fmt.Sprintf(
			"too many block headers for message [max %d]", MaxBlockHeadersPerMsg))
	}
	msg.Headers = append(msg.Headers, bh)
	return nil
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgHeaders) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > MaxBlockHeadersPerMsg {
		return messageError("MsgHeaders.BtcDecode", fmt.Sprintf(
			"too many block headers for message [count %d, max %d]", count, MaxBlockHeadersPerMsg))
	}

	msg.Headers = make([]*BlockHeader, 0, count)
	for i := uint64(0); i < count; i++ {
		bh := BlockHeader{}
		if err := readBlockHeader(r, pver, &bh); err != nil {
			return err
		}

		// Each header is followed by a var-int transaction count, which is
		// always zero for a bare header, per the headers message format.
		txCount, err := ReadVarInt(r, pver)
		if err != nil {
			return err
		}
		if txCount > 0 {
			return messageError("MsgHeaders.BtcDecode", "headers message indicates non-zero transaction count")
		}
		msg.Headers = append(msg.Headers, &bh)
	}
	return nil
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgHeaders) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	count := len(msg.Headers)
	if count > MaxBlockHeadersPerMsg {
		return messageError("MsgHeaders.BtcEncode", fmt.Sprintf(
			"too many block headers for message [count %d, max %d]", count, MaxBlockHeadersPerMsg))
	}

	if err := WriteVarInt(w, pver, uint64(count)); err != nil {
		return err
	}
	for _, bh := range msg.Headers {
		if err := writeBlockHeader(w, pver, bh); err != nil {
			return err
		}
		if err := WriteVarInt(w, pver, 0); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for MsgHeaders.
func (msg *MsgHeaders) Command() string { return CmdHeaders }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgHeaders.
func (msg *MsgHeaders) MaxPayloadLength(pver uint32) uint32 {
	return MaxVarIntPayload + (MaxBlockHeadersPerMsg * (MaxBlockHeaderPayload + 1))
}

// NewMsgHeaders returns a new CRW headers message that conforms to the
// Message interface.
func NewMsgHeaders() *MsgHeaders {
	return &MsgHeaders{Headers: make([]*BlockHeader, 0, MaxBlockHeadersPerMsg)}
}
