// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

// ProtocolVersion is the latest protocol version this package understands.
const ProtocolVersion uint32 = 70016

// MaxMessagePayload is the maximum bytes a message payload can be.
const MaxMessagePayload = 32 * 1024 * 1024

// MaxBlockPayload is the maximum number of bytes a block message payload
// can be.
const MaxBlockPayload = 8 * 1024 * 1024

// CRWNet describes the Bitcoin-derived network a message belongs to,
// encoded as the 4-byte magic at the start of every frame.
type CRWNet uint32

const (
	// MainNet is the main CRW network.
	MainNet CRWNet = 0xc4a3b2e1
	// TestNet is the CRW test network.
	TestNet CRWNet = 0x0b11091a
	// RegTest is the regression test network, used for deterministic
	// local testing of the chain engine.
	RegTest CRWNet = 0xfabfb5da
)

func (n CRWNet) String() string {
	switch n {
	case MainNet:
		return "MainNet"
	case TestNet:
		return "TestNet"
	case RegTest:
		return "RegTest"
	default:
		return "Unknown"
	}
}

// ServiceFlag identifies services supported by a peer, advertised in its
// version message.
type ServiceFlag uint64

const (
	SFNodeNetwork ServiceFlag = 1 << iota
	SFNodeGetUTXO
	SFNodeWitness
	SFNodeBloom
)

// MessageEncoding specifies how a message's optional/variable fields (e.g.
// transaction witnesses) should be encoded; see the BaseEncoding/
// WitnessEncoding split below.
type MessageEncoding uint32

const (
	BaseEncoding      MessageEncoding = 0
	WitnessEncoding   MessageEncoding = 1 << 0
	EptfEncoding      MessageEncoding = 1 << 1
	ForceEptfEncoding MessageEncoding = 1 << 2
)

// Command strings for every message type this package defines.
const (
	CmdVersion     = "version"
	CmdVerAck      = "verack"
	CmdPing        = "ping"
	CmdPong        = "pong"
	CmdInv         = "inv"
	CmdGetData     = "getdata"
	CmdGetHeaders  = "getheaders"
	CmdHeaders     = "headers"
	CmdBlock       = "block"
	CmdTx          = "tx"
	CmdMemPool     = "mempool"
	CmdNotFound    = "notfound"
	CmdReject      = "reject"
	CmdGetBlocks   = "getblocks"
	CmdSendHeaders = "sendheaders"
)

// CommandSize is the fixed width, NUL-padded command field in a message
// frame header.
const CommandSize = 12

// MessageHeaderSize is magic(4) + command(12) + payload-length(4) +
// checksum(4).
const MessageHeaderSize = 4 + CommandSize + 4 + 4
