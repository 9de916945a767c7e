// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg/chainhash"
)

// Message is the interface every wire protocol message type implements.
type Message interface {
	BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R
	BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R
	Command() string
	MaxPayloadLength(pver uint32) uint32
}

func makeEmptyMessage(command string) (Message, er.R) {
	switch command {
	case CmdVersion:
		return &MsgVersion{}, nil
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	case CmdInv:
		return &MsgInv{}, nil
	case CmdGetData:
		return &MsgGetData{}, nil
	case CmdGetHeaders:
		return &MsgGetHeaders{}, nil
	case CmdHeaders:
		return &MsgHeaders{}, nil
	case CmdBlock:
		return &MsgBlock{}, nil
	case CmdTx:
		return &MsgTx{}, nil
	case CmdMemPool:
		return &MsgMemPool{}, nil
	case CmdNotFound:
		return &MsgNotFound{}, nil
	case CmdReject:
		return &MsgReject{}, nil
	case CmdGetBlocks:
		return &MsgGetBlocks{}, nil
	case CmdSendHeaders:
		return &MsgSendHeaders{}, nil
	default:
		return nil, messageError("makeEmptyMessage", fmt.Sprintf("unhandled command [%s]", command))
	}
}

// messageHeader holds the decoded fields of a message frame header:
// magic(4) || command(12) || payload-length(4, LE) || checksum(4, first 4
// bytes of sha256d(payload)).
type messageHeader struct {
	magic    CRWNet
	command  string
	length   uint32
	checksum [4]byte
}

func readMessageHeader(r io.Reader) (*messageHeader, int, er.R) {
	var hb [MessageHeaderSize]byte
	n, errr := io.ReadFull(r, hb[:])
	if errr != nil {
		return nil, n, er.E(errr)
	}

	hdr := &messageHeader{}
	hdr.magic = CRWNet(binary.LittleEndian.Uint32(hb[0:4]))

	var command [CommandSize]byte
	copy(command[:], hb[4:16])
	hdr.command = string(bytes.TrimRight(command[:], "\x00"))

	hdr.length = binary.LittleEndian.Uint32(hb[16:20])
	copy(hdr.checksum[:], hb[20:24])
	return hdr, n, nil
}

func writeMessageHeader(w io.Writer, magic CRWNet, command string, payload []byte) er.R {
	if len(command) > CommandSize {
		return messageError("writeMessageHeader", fmt.Sprintf("command [%s] is too long", command))
	}
	var hb [MessageHeaderSize]byte
	binary.LittleEndian.PutUint32(hb[0:4], uint32(magic))
	copy(hb[4:16], command)
	binary.LittleEndian.PutUint32(hb[16:20], uint32(len(payload)))
	checksum := chainhash.DoubleHashB(payload)
	copy(hb[20:24], checksum[:4])
	_, err := w.Write(hb[:])
	return er.E(err)
}

// WriteMessage writes a complete bitcoin Message to w including the frame
// header, for the specified protocol version, network and encoding.
func WriteMessage(w io.Writer, msg Message, pver uint32, magic CRWNet) er.R {
	return WriteMessageWithEncoding(w, msg, pver, magic, BaseEncoding)
}

// WriteMessageWithEncoding is WriteMessage with an explicit MessageEncoding,
// used to request witness-inclusive serialization of transaction/block
// payloads.
func WriteMessageWithEncoding(w io.Writer, msg Message, pver uint32, magic CRWNet, enc MessageEncoding) er.R {
	cmd := msg.Command()
	if len(cmd) > CommandSize {
		return messageError("WriteMessage", fmt.Sprintf("command [%s] is too long", cmd))
	}

	var bw bytes.Buffer
	if err := msg.BtcEncode(&bw, pver, enc); err != nil {
		return err
	}
	payload := bw.Bytes()
	lenp := len(payload)

	mpl := msg.MaxPayloadLength(pver)
	if uint32(lenp) > mpl {
		return messageError("WriteMessage", fmt.Sprintf(
			"message payload is too large - encoded %d bytes, but maximum message payload is %d bytes", lenp, mpl))
	}

	if err := writeMessageHeader(w, magic, cmd, payload); err != nil {
		return err
	}
	_, errr := w.Write(payload)
	return er.E(errr)
}

// ReadMessage reads, validates, and parses the next bitcoin Message from r
// for the specified protocol version and network. It returns the parsed
// Message and the raw payload bytes (for callers that need to re-verify a
// checksum or re-hash for compact relay).
func ReadMessage(r io.Reader, pver uint32, magic CRWNet) (Message, []byte, er.R) {
	return ReadMessageWithEncoding(r, pver, magic, BaseEncoding)
}

// ReadMessageWithEncoding is ReadMessage with an explicit MessageEncoding.
func ReadMessageWithEncoding(r io.Reader, pver uint32, magic CRWNet, enc MessageEncoding) (Message, []byte, er.R) {
	hdr, _, err := readMessageHeader(r)
	if err != nil {
		return nil, nil, err
	}
	if hdr.magic != magic {
		return nil, nil, messageError("ReadMessage", fmt.Sprintf("unexpected network magic %x", uint32(hdr.magic)))
	}
	if hdr.length > MaxMessagePayload {
		return nil, nil, messageError("ReadMessage", fmt.Sprintf("payload length %d exceeds max %d", hdr.length, MaxMessagePayload))
	}

	msg, err := makeEmptyMessage(hdr.command)
	if err != nil {
		return nil, nil, err
	}
	if hdr.length > msg.MaxPayloadLength(pver) {
		return nil, nil, messageError("ReadMessage", fmt.Sprintf(
			"payload of %d bytes exceeds max length for command [%s]", hdr.length, hdr.command))
	}

	payload := make([]byte, hdr.length)
	if _, errr := io.ReadFull(r, payload); errr != nil {
		return nil, nil, er.E(errr)
	}

	checksum := chainhash.DoubleHashB(payload)
	if !bytes.Equal(checksum[:4], hdr.checksum[:]) {
		return nil, nil, messageError("ReadMessage", fmt.Sprintf(
			"checksum failed for command [%s]: expected %x, got %x", hdr.command, hdr.checksum, checksum[:4]))
	}

	if err := msg.BtcDecode(bytes.NewReader(payload), pver, enc); err != nil {
		return nil, nil, err
	}
	return msg, payload, nil
}
