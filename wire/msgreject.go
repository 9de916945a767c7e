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

// RejectCode represents a numeric value by which a remote peer indicates
// why a message was rejected.
type RejectCode uint8

const (
	RejectMalformed       RejectCode = 0x01
	RejectInvalid         RejectCode = 0x10
	RejectObsolete        RejectCode = 0x11
	RejectDuplicate       RejectCode = 0x12
	RejectNonstandard     RejectCode = 0x40
	RejectDust            RejectCode = 0x41
	RejectInsufficientFee RejectCode = 0x42
	RejectCheckpoint      RejectCode = 0x43
)

// String returns a human-readable representation of the rejection code.
func (code RejectCode) String() string {
	switch code {
	case RejectMalformed:
		return "REJECT_MALFORMED"
	case RejectInvalid:
		return "REJECT_INVALID"
	case RejectObsolete:
		return "REJECT_OBSOLETE"
	case RejectDuplicate:
		return "REJECT_DUPLICATE"
	case RejectNonstandard:
		return "REJECT_NONSTANDARD"
	case RejectDust:
		return "REJECT_DUST"
	case RejectInsufficientFee:
		return "REJECT_INSUFFICIENTFEE"
	case RejectCheckpoint:
		return "REJECT_CHECKPOINT"
	default:
		return fmt.Sprintf("Unknown RejectCode (%d)", uint8(code))
	}
}

// MsgReject implements the Message interface and represents a CRW reject
// message, sent to inform the remote peer that one of its previous
// messages was rejected.
type MsgReject struct {
	// Cmd is the command for the message which was rejected.
	Cmd string

	// RejectCode is a code indicating why the message was rejected.
	RejectCode RejectCode

	// Reason is a human-readable string with specific details.
	Reason string

	// Hash identifies a specific block or transaction that was rejected,
	// only present when Cmd is "tx" or "block".
	Hash chainhash.Hash
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgReject) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	cmd, err := ReadVarString(r, pver)
	if err != nil {
		return err
	}
	msg.Cmd = cmd

	rc, errr := binarySerializer.Uint8(r)
	if errr != nil {
		return errr
	}
	msg.RejectCode = RejectCode(rc)

	reason, err := ReadVarString(r, pver)
	if err != nil {
		return err
	}
	msg.Reason = reason

	if msg.Cmd == CmdBlock || msg.Cmd == CmdTx {
		if _, errr := io.ReadFull(r, msg.Hash[:]); errr != nil {
			return er.E(errr)
		}
	}
	return nil
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgReject) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	if err := WriteVarString(w, pver, msg.Cmd); err != nil {
		return err
	}
	if err := binarySerializer.PutUint8(w, uint8(msg.RejectCode)); err != nil {
		return err
	}
	if err := WriteVarString(w, pver, msg.Reason); err != nil {
		return err
	}
	if msg.Cmd == CmdBlock || msg.Cmd == CmdTx {
		if _, errr := w.Write(msg.Hash[:]); errr != nil {
			return er.E(errr)
		}
	}
	return nil
}

// Command returns the protocol command string for MsgReject.
func (msg *MsgReject) Command() string { return CmdReject }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgReject.
func (msg *MsgReject) MaxPayloadLength(pver uint32) uint32 {
	plen := uint32(MaxMessagePayload)
	return plen
}

// NewMsgReject returns a new CRW reject message that conforms to the
// Message interface.
func NewMsgReject(command string, code RejectCode, reason string) *MsgReject {
	return &MsgReject{Cmd: command, RejectCode: code, Reason: reason}
}
