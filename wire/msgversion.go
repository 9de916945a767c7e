// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/defunctec/crownj/btcutil/er"
)

// MaxUserAgentLen is the maximum allowed length for the user agent field in
// a version message.
const MaxUserAgentLen = 256

// DefaultUserAgent is the user agent advertised by this implementation,
// used as part of the user agent string when a client is not overriding it.
const DefaultUserAgent = "/crownj:0.1.0/"

// MsgVersion implements the Message interface and represents a CRW version
// message. It is exchanged by peers at the start of a connection as part of
// the handshake.
type MsgVersion struct {
	// Version of the protocol the transmitting node is using.
	ProtocolVersion int32

	// Services the node supports.
	Services ServiceFlag

	// Time the message was generated.
	Timestamp time.Time

	// Address of the remote peer.
	AddrYou NetAddress

	// Address of the local peer.
	AddrMe NetAddress

	// Unique value associated with the message transmitted by a given
	// peer, used to detect self-connections.
	Nonce uint64

	// User agent string, e.g. "/crownj:0.1.0/".
	UserAgent string

	// Last block seen by the sending peer.
	LastBlock int32

	// Whether or not the receiving peer should relay transactions before
	// receiving a filterload message.
	DisableRelayTx bool
}

// HasService returns whether the specified service is supported by the peer
// that sent the message.
func (msg *MsgVersion) HasService(service ServiceFlag) bool {
	return msg.Services&service == service
}

// AddService adds service as a supported service by the peer generating the
// message.
func (msg *MsgVersion) AddService(service ServiceFlag) { msg.Services |= service }

// AddUserAgent adds a user agent component to the version message's user
// agent string, in the form "name:version" wrapped in slashes.
func (msg *MsgVersion) AddUserAgent(name, version string, comments ...string) er.R {
	newUserAgent := fmt.Sprintf("%s:%s", name, version)
	if len(comments) != 0 {
		newUserAgent = fmt.Sprintf("%s(%s)", newUserAgent, strings.Join(comments, "; "))
	}
	newUserAgent = fmt.Sprintf("%s%s/", msg.UserAgent, newUserAgent)
	if len(newUserAgent) > MaxUserAgentLen {
		return messageError("MsgVersion.AddUserAgent", fmt.Sprintf(
			"user agent exceeds maximum length [%d]", MaxUserAgentLen))
	}
	msg.UserAgent = newUserAgent
	return nil
}

// BtcDecode decodes r using the CRW wire protocol encoding into the
// receiver (part of the Message interface).
func (msg *MsgVersion) BtcDecode(r io.Reader, pver uint32, enc MessageEncoding) er.R {
	pv, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = int32(pv)

	svc, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return err
	}
	msg.Services = ServiceFlag(svc)

	ts, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return err
	}
	msg.Timestamp = time.Unix(int64(ts), 0)

	if err := readNetAddress(r, pver, &msg.AddrYou, false); err != nil {
		return err
	}
	if err := readNetAddress(r, pver, &msg.AddrMe, false); err != nil {
		return err
	}

	nonce, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return err
	}
	msg.Nonce = nonce

	ua, err := ReadVarString(r, pver)
	if err != nil {
		return err
	}
	if len(ua) > MaxUserAgentLen {
		return messageError("MsgVersion.BtcDecode", fmt.Sprintf(
			"user agent length %d exceeds max %d", len(ua), MaxUserAgentLen))
	}
	msg.UserAgent = ua

	lastBlock, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	msg.LastBlock = int32(lastBlock)

	// The relay field is optional: the remaining bytes of the message may
	// be absent entirely for very old peers, so any error reading it just
	// means the field was omitted rather than a malformed message.
	relay, errr := binarySerializer.Uint8(r)
	if errr != nil {
		msg.DisableRelayTx = false
		return nil
	}
	msg.DisableRelayTx = relay == 0
	return nil
}

// BtcEncode encodes the receiver to w using the CRW wire protocol encoding
// (part of the Message interface).
func (msg *MsgVersion) BtcEncode(w io.Writer, pver uint32, enc MessageEncoding) er.R {
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(msg.ProtocolVersion)); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, littleEndian, uint64(msg.Services)); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, littleEndian, uint64(msg.Timestamp.Unix())); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &msg.AddrYou, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &msg.AddrMe, false); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, littleEndian, msg.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, pver, msg.UserAgent); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(msg.LastBlock)); err != nil {
		return err
	}
	var relay uint8
	if !msg.DisableRelayTx {
		relay = 1
	}
	return binarySerializer.PutUint8(w, relay)
}

// Command returns the protocol command string for MsgVersion.
func (msg *MsgVersion) Command() string { return CmdVersion }

// MaxPayloadLength returns the maximum length the payload can be for
// MsgVersion.
func (msg *MsgVersion) MaxPayloadLength(pver uint32) uint32 {
	return 4 + 8 + 8 + maxNetAddressPayload(pver)*2 + 8 + uint32(VarIntSerializeSize(MaxUserAgentLen)) + MaxUserAgentLen + 4 + 1
}

// NewMsgVersion returns a new CRW version message that conforms to the
// Message interface using the passed parameters and defaults for the
// remaining fields.
func NewMsgVersion(me *NetAddress, you *NetAddress, nonce uint64, lastBlock int32) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion),
		Services:        0,
		Timestamp:       time.Unix(time.Now().Unix(), 0),
		AddrYou:         *you,
		AddrMe:          *me,
		Nonce:           nonce,
		UserAgent:       DefaultUserAgent,
		LastBlock:       lastBlock,
		DisableRelayTx:  false,
	}
}
